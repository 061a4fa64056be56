package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.onesignal.com"

// Client wraps the notification service's subscriber API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	apiKey     string
	fcmAuthID  string
}

// Config holds credentials for the subscriber API. FCMAuthID names the
// integration slot device tokens are attached under; optional.
type Config struct {
	BaseURL   string
	AppID     string
	APIKey    string
	FCMAuthID string
}

// New creates a subscriber client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AppID) == "" {
		return nil, errors.New("notify: app id is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("notify: api key is required")
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultAPIBase
	}

	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(base, "/"),
		appID:      cfg.AppID,
		apiKey:     cfg.APIKey,
		fcmAuthID:  cfg.FCMAuthID,
	}, nil
}

// Contact holds the subscriber's reachable channels.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"sms,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Profile identifies a subscriber by the employee identifier.
type Profile struct {
	ExternalID string
	Contact    Contact
}

// CreateSubscriber registers a subscriber profile. A conflict response
// means the profile already exists and is treated as success.
func (c *Client) CreateSubscriber(ctx context.Context, profile Profile) error {
	if strings.TrimSpace(profile.ExternalID) == "" {
		return errors.New("notify: empty external id")
	}

	body := map[string]any{
		"identity":   map[string]string{"external_id": profile.ExternalID},
		"properties": profile.Contact,
	}

	endpoint := fmt.Sprintf("%s/apps/%s/users", c.baseURL, url.PathEscape(c.appID))
	status, err := c.send(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	if status == http.StatusConflict {
		return nil
	}
	if status >= 400 {
		return fmt.Errorf("notify api: create status %d", status)
	}
	return nil
}

// UpdateSubscriber refreshes the contact fields of an existing profile.
func (c *Client) UpdateSubscriber(ctx context.Context, externalID string, contact Contact) error {
	if strings.TrimSpace(externalID) == "" {
		return errors.New("notify: empty external id")
	}

	body := map[string]any{"properties": contact}
	endpoint := fmt.Sprintf("%s/apps/%s/users/by/external_id/%s",
		c.baseURL, url.PathEscape(c.appID), url.PathEscape(externalID))
	status, err := c.send(ctx, http.MethodPatch, endpoint, body)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("notify api: update status %d", status)
	}
	return nil
}

// AttachDeviceToken links a push client identifier to the profile under
// the configured integration slot. No-op when no slot is configured.
func (c *Client) AttachDeviceToken(ctx context.Context, externalID, playerID string) error {
	if c.fcmAuthID == "" {
		return nil
	}
	if strings.TrimSpace(externalID) == "" || strings.TrimSpace(playerID) == "" {
		return errors.New("notify: empty external id or player id")
	}

	body := map[string]any{
		"subscription": map[string]string{
			"id":      playerID,
			"type":    "FCM",
			"auth_id": c.fcmAuthID,
		},
	}
	endpoint := fmt.Sprintf("%s/apps/%s/users/by/external_id/%s/subscriptions",
		c.baseURL, url.PathEscape(c.appID), url.PathEscape(externalID))
	status, err := c.send(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	if status == http.StatusConflict {
		return nil
	}
	if status >= 400 {
		return fmt.Errorf("notify api: attach status %d", status)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
