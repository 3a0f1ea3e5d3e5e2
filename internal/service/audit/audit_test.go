package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/novadent/novadent_backend/pkg/store"
)

func fakeSession(t *testing.T, handler http.HandlerFunc) *store.Session {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := store.New(store.Config{URL: srv.URL, AnonKey: "anon"})
	if err != nil {
		t.Fatal(err)
	}
	return client.WithToken("tok")
}

func TestRecentRejectsUnknownAction(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no store call expected")
	})
	if _, err := New().Recent(context.Background(), db, RecentRequest{Action: "TRUNCATE"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestRecentQuery(t *testing.T) {
	var gotQuery string
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})
	svc := New()

	if _, err := svc.Recent(context.Background(), db, RecentRequest{Action: "update", Limit: 999, Offset: -5}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotQuery, "action=eq.UPDATE") {
		t.Errorf("action filter missing: %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "limit=200") {
		t.Errorf("limit not capped: %s", gotQuery)
	}
	if strings.Contains(gotQuery, "offset=") {
		t.Errorf("negative offset not reset: %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "order=happened_at.desc") {
		t.Errorf("ordering missing: %s", gotQuery)
	}

	if _, err := svc.Recent(context.Background(), db, RecentRequest{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotQuery, "limit=50") {
		t.Errorf("default limit missing: %s", gotQuery)
	}
}

func TestRecentDecodesViewColumns(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{
			"id":"e1","table_name":"patients","action":"UPDATE",
			"row_id":"p1","actor_id":"u1","actor_email":"doc@clinic.test",
			"old_data":{"name":"Jan"},"new_data":{"name":"Jane"},
			"happened_at":"2025-03-01T10:00:00Z"
		}]`))
	})

	entries, err := New().Recent(context.Background(), db, RecentRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	e := entries[0]
	if e.RowID == nil || *e.RowID != "p1" {
		t.Errorf("row_id = %v", e.RowID)
	}
	if e.ActorID == nil || *e.ActorID != "u1" {
		t.Errorf("actor_id = %v", e.ActorID)
	}
	if e.HappenedAt != "2025-03-01T10:00:00Z" {
		t.Errorf("happened_at = %q", e.HappenedAt)
	}
	if string(e.OldData) == "" || string(e.NewData) == "" {
		t.Error("old/new data not decoded")
	}
}
