package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/resource-planner/internal/config"
	"github.com/example/resource-planner/internal/persistence/sqlite"
)

func testConfig() config.Config {
	return config.Config{
		HTTPPort:                   0,
		SessionTTL:                 time.Hour,
		WarningCacheTTL:            time.Second,
		WarningCacheSize:           16,
		AlertReevaluationBatchDays: 7,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage, err := sqlite.Open(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate storage: %v", err)
	}

	t.Setenv("PLANNER_BOOTSTRAP_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("PLANNER_BOOTSTRAP_ADMIN_PASSWORD", "bootstrap-secret")

	services := buildServices(testConfig(), storage, logger)
	if err := bootstrapAdmin(context.Background(), storage, services.auth, logger); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	server := httptest.NewServer(buildHandler(services, logger))
	t.Cleanup(server.Close)
	return server
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(server.URL+"/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(resp.Body)
		t.Fatalf("login returned status %d: %s", resp.StatusCode, payload)
	}
	token := resp.Header.Get("X-Session-Token")
	if token == "" {
		t.Fatal("login response is missing the session token header")
	}
	return token
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, server.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, raw
}

func TestServerRejectsUnauthenticatedRequests(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, server, http.MethodGet, "/employees", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", resp.StatusCode)
	}
}

func TestServerEndToEndPlanningFlow(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin@example.com", "bootstrap-secret")

	resp, raw := doJSON(t, server, http.MethodPost, "/employees", token, map[string]any{
		"name":          "Dana Field",
		"email":         "dana@example.com",
		"qualification": "ENGINEER",
		"weekly_hours":  40,
		"available":     true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create employee returned %d: %s", resp.StatusCode, raw)
	}
	var employeeBody struct {
		Employee struct {
			ID string `json:"id"`
		} `json:"employee"`
	}
	if err := json.Unmarshal(raw, &employeeBody); err != nil {
		t.Fatalf("decode employee response: %v", err)
	}
	employeeID := employeeBody.Employee.ID
	if employeeID == "" {
		t.Fatal("create employee response is missing the ID")
	}

	resp, raw = doJSON(t, server, http.MethodPost, "/entries", token, map[string]any{
		"employee_id": employeeID,
		"date":        "2024-03-11",
		"start":       "09:00",
		"end":         "17:00",
		"status_code": "ACTIVE",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create entry returned %d: %s", resp.StatusCode, raw)
	}
	var entryBody struct {
		Entry struct {
			ID   string `json:"id"`
			Date string `json:"date"`
		} `json:"entry"`
		Warnings []json.RawMessage `json:"warnings"`
	}
	if err := json.Unmarshal(raw, &entryBody); err != nil {
		t.Fatalf("decode entry response: %v", err)
	}
	if entryBody.Entry.Date != "2024-03-11" {
		t.Fatalf("entry date round-tripped as %q", entryBody.Entry.Date)
	}
	if len(entryBody.Warnings) != 0 {
		t.Fatalf("expected no warnings for a first entry, got %d", len(entryBody.Warnings))
	}

	path := fmt.Sprintf("/employees/%s/availability?from=2024-03-11&to=2024-03-12", employeeID)
	resp, raw = doJSON(t, server, http.MethodGet, path, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("availability returned %d: %s", resp.StatusCode, raw)
	}
	var availabilityBody struct {
		Timeline struct {
			EmployeeID string `json:"employee_id"`
			Days       []struct {
				Date     string   `json:"date"`
				State    string   `json:"state"`
				EntryIDs []string `json:"entry_ids"`
			} `json:"days"`
		} `json:"timeline"`
	}
	if err := json.Unmarshal(raw, &availabilityBody); err != nil {
		t.Fatalf("decode availability response: %v", err)
	}
	if availabilityBody.Timeline.EmployeeID != employeeID {
		t.Fatalf("timeline belongs to %q, want %q", availabilityBody.Timeline.EmployeeID, employeeID)
	}
	if len(availabilityBody.Timeline.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(availabilityBody.Timeline.Days))
	}
	first := availabilityBody.Timeline.Days[0]
	if first.State != "SCHEDULED" {
		t.Fatalf("expected the booked day to be SCHEDULED, got %q", first.State)
	}
	if len(first.EntryIDs) != 1 || first.EntryIDs[0] != entryBody.Entry.ID {
		t.Fatalf("booked day references entries %v, want [%s]", first.EntryIDs, entryBody.Entry.ID)
	}
	if availabilityBody.Timeline.Days[1].State != "FREE" {
		t.Fatalf("expected the empty day to be FREE, got %q", availabilityBody.Timeline.Days[1].State)
	}
}

func TestServerRevokedSessionIsRejected(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin@example.com", "bootstrap-secret")

	resp, raw := doJSON(t, server, http.MethodDelete, "/sessions/current", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout returned %d: %s", resp.StatusCode, raw)
	}

	resp, _ = doJSON(t, server, http.MethodGet, "/employees", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}
