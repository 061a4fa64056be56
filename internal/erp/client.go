package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the directory has no matching record.
var ErrNotFound = errors.New("erp: employee not found")

// StatusActive is the only employee status granted access.
const StatusActive = "Active"

// Client wraps the ERP backend's employee resource API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
}

// Config holds the credentials required by the client.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
}

// New creates a directory client authenticated with an API key pair.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("erp: base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, errors.New("erp: api key and secret are required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
	}, nil
}

// EmployeeSummary is the projection returned by filtered searches.
type EmployeeSummary struct {
	ID     string `json:"name"`
	Status string `json:"status"`
}

// Employee is the full directory record.
type Employee struct {
	ID            string `json:"name"`
	EmployeeName  string `json:"employee_name"`
	FirstName     string `json:"first_name"`
	CompanyEmail  string `json:"company_email"`
	CellNumber    string `json:"cell_number"`
	Status        string `json:"status"`
	Company       string `json:"company"`
	Department    string `json:"department"`
	Designation   string `json:"designation"`
	Grade         string `json:"grade"`
	DateOfJoining string `json:"date_of_joining"`
	DateOfBirth   string `json:"date_of_birth"`
}

// Active reports whether the record grants access.
func (e *Employee) Active() bool {
	return e != nil && e.Status == StatusActive
}

// SearchByCell returns summaries of employees with an exact cell number match.
func (c *Client) SearchByCell(ctx context.Context, cell string) ([]EmployeeSummary, error) {
	return c.search(ctx, "cell_number", cell)
}

// SearchByEmail returns summaries of employees with an exact company email match.
func (c *Client) SearchByEmail(ctx context.Context, email string) ([]EmployeeSummary, error) {
	return c.search(ctx, "company_email", email)
}

func (c *Client) search(ctx context.Context, field, value string) ([]EmployeeSummary, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("erp: empty %s filter", field)
	}

	filters, err := json.Marshal([][]string{{field, "=", value}})
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("filters", string(filters))
	q.Set("fields", `["name","status"]`)
	q.Set("limit_page_length", "2")

	endpoint := c.baseURL + "/api/resource/Employee?" + q.Encode()
	req, err := c.newRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []EmployeeSummary `json:"data"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Get fetches the full employee record by its internal identifier.
func (c *Client) Get(ctx context.Context, id string) (*Employee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("erp: empty employee id")
	}

	endpoint := c.baseURL + "/api/resource/Employee/" + url.PathEscape(id)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("erp api: status %d", resp.StatusCode)
	}

	var payload struct {
		Data *Employee `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return nil, ErrNotFound
	}
	return payload.Data, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+c.apiKey+":"+c.apiSecret)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("erp api: status %d", resp.StatusCode)
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
