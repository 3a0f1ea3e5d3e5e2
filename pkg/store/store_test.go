package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, AnonKey: "anon-key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{AnonKey: "k"}); err == nil {
		t.Error("expected error for missing URL")
	}
	if _, err := New(Config{URL: "http://localhost"}); err == nil {
		t.Error("expected error for missing anon key")
	}
}

func TestQuery_BuildsFiltersAndHeaders(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey string
	var gotQuery url.Values

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		w.Write([]byte(`[]`))
	})

	var out []map[string]any
	err := c.WithToken("user-token").
		From("appointments").
		Select("*").
		Gte("date", "2025-03-01").
		Lte("date", "2025-03-31").
		Order("date", true).
		Order("time_slot", true).
		Range(20, 10).
		Get(context.Background(), &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if gotPath != "/rest/v1/appointments" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer user-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotAPIKey != "anon-key" {
		t.Errorf("apikey header = %q", gotAPIKey)
	}
	if got := gotQuery["date"]; len(got) != 2 || got[0] != "gte.2025-03-01" || got[1] != "lte.2025-03-31" {
		t.Errorf("date filters = %v", got)
	}
	if got := gotQuery.Get("order"); got != "date.asc,time_slot.asc" {
		t.Errorf("order = %q", got)
	}
	if gotQuery.Get("limit") != "10" || gotQuery.Get("offset") != "20" {
		t.Errorf("pagination = limit %q offset %q", gotQuery.Get("limit"), gotQuery.Get("offset"))
	}
}

func TestQuery_SingleNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.pgrst.object+json" {
			t.Errorf("missing single-object accept header")
		}
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`))
	})

	var out map[string]any
	err := c.WithToken("tok").From("patients").Eq("id", "missing").Single().Get(context.Background(), &out)
	if !IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestQuery_ForbiddenMapsRLSCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"42501","message":"new row violates row-level security policy"}`))
	})

	n, err := c.WithToken("tok").From("patients").Eq("id", "x").Delete(context.Background())
	if n != 0 {
		t.Errorf("deleted = %d, want 0", n)
	}
	if !IsForbidden(err) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestQuery_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"22P02","message":"invalid input syntax for type uuid"}`))
	})

	var out []map[string]any
	err := c.Anon().From("patients").Eq("id", "nope").Get(context.Background(), &out)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsNotFound(err) || IsForbidden(err) {
		t.Errorf("generic upstream error misclassified: %v", err)
	}
	if got := UpstreamMessage(err); got != "invalid input syntax for type uuid" {
		t.Errorf("UpstreamMessage = %q", got)
	}
}

func TestDelete_CountsRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
	})

	n, err := c.WithToken("tok").From("visits").Eq("patient_id", "p1").Delete(context.Background())
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
}

func TestRPC_PostsArgs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/rpc/analytics_patients_by_year" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`[{"year":2025,"count":12}]`))
	})

	var out []map[string]any
	err := c.WithToken("tok").RPC(context.Background(), "analytics_patients_by_year", map[string]any{"p_year": 2025}, &out)
	if err != nil {
		t.Fatalf("RPC failed: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("rows = %d", len(out))
	}
}
