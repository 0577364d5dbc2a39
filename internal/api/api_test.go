package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"saucebottle/internal/db"
	"saucebottle/internal/model"
	"saucebottle/internal/store"
)

// newTestServer wires a handler against an in-memory engine.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	registry := db.NewRegistry()
	t.Cleanup(func() { _ = registry.Close() })

	engine, err := registry.Get(db.Config{URL: "sqlite://:memory:"})
	if err != nil {
		t.Fatalf("failed to open test engine: %v", err)
	}
	if err := store.Schema(context.Background(), engine); err != nil {
		t.Fatalf("schema bootstrap failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(db.NewFactory(engine), logger)

	server := httptest.NewServer(handler.Router(nil))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return resp, raw
}

func createPolitician(t *testing.T, server *httptest.Server, name string) model.Politician {
	t.Helper()

	resp, raw := doJSON(t, http.MethodPost, server.URL+"/api/v1/politicians", map[string]any{
		"name":  name,
		"party": "Independent",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}

	var p model.Politician
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("failed to decode politician: %v", err)
	}
	return p
}

// wireError mirrors the published error payload.
type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details []struct {
		Field   *string `json:"field"`
		Message string  `json:"message"`
		Code    *string `json:"code"`
	} `json:"details"`
	StatusCode int `json:"status_code"`
}

func decodeWireError(t *testing.T, raw []byte) wireError {
	t.Helper()
	var we wireError
	if err := json.Unmarshal(raw, &we); err != nil {
		t.Fatalf("failed to decode error payload %s: %v", raw, err)
	}
	return we
}

func TestPoliticians_CreateAndFetch(t *testing.T) {
	server := newTestServer(t)

	created := createPolitician(t, server, "Jane Citizen")
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	resp, raw := doJSON(t, http.MethodGet, server.URL+"/api/v1/politicians/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}

	var got model.Politician
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("failed to decode politician: %v", err)
	}
	if got.Name != "Jane Citizen" {
		t.Errorf("expected name Jane Citizen, got %s", got.Name)
	}

	resp, raw = doJSON(t, http.MethodGet, server.URL+"/api/v1/politicians", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list []model.Politician
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 politician, got %d", len(list))
	}
}

func TestPoliticians_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, raw := doJSON(t, http.MethodGet, server.URL+"/api/v1/politicians/42", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, raw)
	}

	we := decodeWireError(t, raw)
	if we.Error != "EntityNotFound" {
		t.Errorf("expected EntityNotFound, got %s", we.Error)
	}
	if we.StatusCode != http.StatusNotFound {
		t.Errorf("expected status_code 404 in payload, got %d", we.StatusCode)
	}
}

func TestPoliticians_DuplicateName(t *testing.T) {
	server := newTestServer(t)

	createPolitician(t, server, "Jane Citizen")

	resp, raw := doJSON(t, http.MethodPost, server.URL+"/api/v1/politicians", map[string]any{
		"name": "Jane Citizen",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, raw)
	}

	we := decodeWireError(t, raw)
	if we.Error != "DuplicateEntity" {
		t.Errorf("expected DuplicateEntity, got %s", we.Error)
	}
}

func TestPoliticians_ValidationCollectsAllFields(t *testing.T) {
	server := newTestServer(t)

	resp, raw := doJSON(t, http.MethodPost, server.URL+"/api/v1/politicians", map[string]any{
		"date_elected": "not-a-date",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, raw)
	}

	we := decodeWireError(t, raw)
	if we.Error != "ValidationFailure" {
		t.Errorf("expected ValidationFailure, got %s", we.Error)
	}
	if len(we.Details) != 2 {
		t.Fatalf("expected 2 detail entries, got %d: %s", len(we.Details), raw)
	}

	paths := map[string]bool{}
	for _, d := range we.Details {
		if d.Field == nil || d.Code == nil {
			t.Fatalf("expected field and code on validation details, got %s", raw)
		}
		paths[*d.Field] = true
	}
	if !paths["body.name"] || !paths["body.date_elected"] {
		t.Errorf("expected body.name and body.date_elected, got %v", paths)
	}
}

func TestPoliticians_InvalidPathID(t *testing.T) {
	server := newTestServer(t)

	resp, raw := doJSON(t, http.MethodGet, server.URL+"/api/v1/politicians/abc", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, raw)
	}

	we := decodeWireError(t, raw)
	if len(we.Details) != 1 || we.Details[0].Field == nil || *we.Details[0].Field != "path.id" {
		t.Errorf("expected path.id detail, got %s", raw)
	}
}

func TestPoliticians_UpdateAndDelete(t *testing.T) {
	server := newTestServer(t)

	created := createPolitician(t, server, "Jane Citizen")

	resp, raw := doJSON(t, http.MethodPut, server.URL+"/api/v1/politicians/1", map[string]any{
		"name":  "Jane Citizen",
		"party": "Greens",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var updated model.Politician
	if err := json.Unmarshal(raw, &updated); err != nil {
		t.Fatalf("failed to decode politician: %v", err)
	}
	if updated.Party != "Greens" {
		t.Errorf("expected party Greens, got %s", updated.Party)
	}
	if updated.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, updated.ID)
	}

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/v1/politicians/1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/politicians/1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestStatements_CreateListAndFilter(t *testing.T) {
	server := newTestServer(t)

	p := createPolitician(t, server, "Jane Citizen")

	resp, raw := doJSON(t, http.MethodPost, server.URL+"/api/v1/statements", map[string]any{
		"content":       "We will fix it",
		"politician_id": p.ID,
		"date_made":     "2025-03-10",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, http.MethodGet, server.URL+"/api/v1/statements?politician_id=1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var list []model.Statement
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(list))
	}
	if list[0].ReviewStatus != model.ReviewStatusPending {
		t.Errorf("expected default review status, got %s", list[0].ReviewStatus)
	}

	// Statement count is maintained on the politician.
	resp, raw = doJSON(t, http.MethodGet, server.URL+"/api/v1/politicians/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got model.Politician
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("failed to decode politician: %v", err)
	}
	if got.StatementCount != 1 {
		t.Errorf("expected statement count 1, got %d", got.StatementCount)
	}
}

func TestStatements_InvertedDateRange(t *testing.T) {
	server := newTestServer(t)

	resp, raw := doJSON(t, http.MethodGet,
		server.URL+"/api/v1/statements?date_from=2025-06-01&date_to=2025-01-01", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, raw)
	}

	we := decodeWireError(t, raw)
	if we.Error != "InvalidRange" {
		t.Errorf("expected InvalidRange, got %s", we.Error)
	}
}

func TestStatements_CreateForMissingPolitician(t *testing.T) {
	server := newTestServer(t)

	resp, raw := doJSON(t, http.MethodPost, server.URL+"/api/v1/statements", map[string]any{
		"content":       "orphan",
		"politician_id": 999,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, raw)
	}
}

func TestStatements_Bulk(t *testing.T) {
	server := newTestServer(t)

	p := createPolitician(t, server, "Jane Citizen")

	statements := make([]map[string]any, 0, 5)
	for i := 0; i < 5; i++ {
		statements = append(statements, map[string]any{
			"content":       "bulk statement",
			"politician_id": p.ID,
		})
	}

	resp, raw := doJSON(t, http.MethodPost, server.URL+"/api/v1/statements/bulk", map[string]any{
		"statements": statements,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}

	var result bulkCreateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("failed to decode bulk response: %v", err)
	}
	if result.Created != 5 {
		t.Errorf("expected 5 created, got %d", result.Created)
	}
}

func TestStatements_BulkValidationIndexesFields(t *testing.T) {
	server := newTestServer(t)

	resp, raw := doJSON(t, http.MethodPost, server.URL+"/api/v1/statements/bulk", map[string]any{
		"statements": []map[string]any{
			{"content": "fine", "politician_id": 1},
			{"politician_id": 1},
		},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, raw)
	}

	we := decodeWireError(t, raw)
	if len(we.Details) != 1 {
		t.Fatalf("expected 1 detail entry, got %d: %s", len(we.Details), raw)
	}
	if *we.Details[0].Field != "body.statements.1.content" {
		t.Errorf("expected indexed field path, got %s", *we.Details[0].Field)
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, raw := doJSON(t, http.MethodGet, server.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var health healthResponse
	if err := json.Unmarshal(raw, &health); err != nil {
		t.Fatalf("failed to decode health: %v", err)
	}
	if health.Status != "ok" || health.Service != ServiceName {
		t.Errorf("unexpected health payload: %+v", health)
	}

	resp, raw = doJSON(t, http.MethodGet, server.URL+"/health/db", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var dbHealth dbHealthResponse
	if err := json.Unmarshal(raw, &dbHealth); err != nil {
		t.Fatalf("failed to decode db health: %v", err)
	}
	if dbHealth.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %s", dbHealth.Backend)
	}
}

func TestUnknownBodyFieldRejected(t *testing.T) {
	server := newTestServer(t)

	resp, raw := doJSON(t, http.MethodPost, server.URL+"/api/v1/politicians", map[string]any{
		"name":    "Jane Citizen",
		"mystery": "field",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, raw)
	}
}

func TestServiceInfoEndpoints(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/", "/api/v1/"} {
		resp, raw := doJSON(t, http.MethodGet, server.URL+path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, resp.StatusCode)
		}
		var info infoResponse
		if err := json.Unmarshal(raw, &info); err != nil {
			t.Fatalf("failed to decode info: %v", err)
		}
		if info.Service != ServiceName {
			t.Errorf("expected service name in %s payload, got %s", path, info.Service)
		}
	}
}
