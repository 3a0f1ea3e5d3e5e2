package camp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
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
	return client.Anon()
}

func strPtr(s string) *string { return &s }

func TestCreateValidation(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no store call expected")
	})
	svc := New(nil, "")

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing name", CreateRequest{Phone: "123"}},
		{"blank phone", CreateRequest{Name: "School", Phone: "  "}},
		{"bad email", CreateRequest{Name: "School", Phone: "123", Email: strPtr("not-an-email")}},
	}
	for _, c := range cases {
		if _, err := svc.Create(context.Background(), db, c.req); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v", c.name, err)
		}
	}
}

func TestCreateAcceptsBlankEmail(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"s1","name":"School","phone":"123","status":"New"}]`))
	})
	got, err := New(nil, "").Create(context.Background(), db, CreateRequest{
		Name: "School", Phone: "123", Email: strPtr("  "),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "s1" {
		t.Errorf("id = %q", got.ID)
	}
}

func TestCreateMapsDOB(t *testing.T) {
	var gotRow map[string]any
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotRow)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"s1","name":"School","dob":"2010-05-15","phone":"123","status":"New"}]`))
	})

	got, err := New(nil, "").Create(context.Background(), db, CreateRequest{
		Name: "School", Phone: "123", DOB: strPtr("2010-05-15"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotRow["dob"] != "2010-05-15" {
		t.Errorf("dob not in row: %v", gotRow)
	}
	if got.DOB == nil || *got.DOB != "2010-05-15" {
		t.Errorf("dob = %v", got.DOB)
	}
}

func TestUpdateRejectsBadEmail(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no store call expected")
	})
	_, err := New(nil, "").Update(context.Background(), db, "s1", UpdateRequest{Email: strPtr("not-an-email")})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestLogsFilter(t *testing.T) {
	var gotPath, gotQuery string
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})
	svc := New(nil, "")

	if _, err := svc.Logs(context.Background(), db, ""); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/rest/v1/user_submissions_who" {
		t.Errorf("path = %q", gotPath)
	}
	if strings.Contains(gotQuery, "submission_id") {
		t.Errorf("unexpected filter: %s", gotQuery)
	}

	if _, err := svc.Logs(context.Background(), db, "s1"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotQuery, "submission_id=eq.s1") {
		t.Errorf("filter missing: %s", gotQuery)
	}
}
