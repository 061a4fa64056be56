package erp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, APIKey: "key", APISecret: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Config{BaseURL: "https://erp.example"}); err == nil {
		t.Fatal("expected error without credentials")
	}
	if _, err := New(Config{APIKey: "k", APISecret: "s"}); err == nil {
		t.Fatal("expected error without base url")
	}
}

func TestSearchByCell(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token key:secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if r.URL.Path != "/api/resource/Employee" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var filters [][]string
		if err := json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters); err != nil {
			t.Fatalf("filters: %v", err)
		}
		if len(filters) != 1 || filters[0][0] != "cell_number" || filters[0][2] != "9876543210" {
			t.Errorf("unexpected filters %v", filters)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"name": "HR-EMP-00042", "status": "Active"}},
		})
	})

	summaries, err := client.SearchByCell(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "HR-EMP-00042" || summaries[0].Status != "Active" {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.SearchByEmail(context.Background(), "a@org.com"); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}

func TestGet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/resource/Employee/HR-EMP-00042" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{
				"name":          "HR-EMP-00042",
				"employee_name": "Asha Nair",
				"company_email": "asha@org.com",
				"status":        "Active",
			},
		})
	})

	record, err := client.Get(context.Background(), "HR-EMP-00042")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.EmployeeName != "Asha Nair" || !record.Active() {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestGetNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.Get(context.Background(), "HR-EMP-99999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
