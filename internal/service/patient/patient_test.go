package patient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

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

func TestCreateCallsInitialsRPC(t *testing.T) {
	var gotPath string
	var gotArgs map[string]any
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotArgs)
		w.Write([]byte(`{"id":"p1","name":"Jane Doe","emergency_contact_name":"John Doe"}`))
	})

	contact := "John Doe"
	got, err := New().Create(context.Background(), db, CreateRequest{
		Name:                 "  Jane Doe  ",
		EmergencyContactName: &contact,
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/rest/v1/rpc/create_patient_with_initials" {
		t.Errorf("path = %q", gotPath)
	}
	if gotArgs["p_name"] != "Jane Doe" {
		t.Errorf("name not trimmed: %v", gotArgs["p_name"])
	}
	if gotArgs["p_emergency_contact_name"] != "John Doe" {
		t.Errorf("emergency contact arg = %v", gotArgs["p_emergency_contact_name"])
	}
	if got.EmergencyContactName == nil || *got.EmergencyContactName != "John Doe" {
		t.Errorf("emergency contact = %v", got.EmergencyContactName)
	}
}

func TestUpdateMapsEmergencyContact(t *testing.T) {
	var gotPatch map[string]any
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotPatch)
		w.Write([]byte(`[{"id":"p1","name":"Jane"}]`))
	})

	phone := "5550001111"
	if _, err := New().Update(context.Background(), db, "p1", UpdateRequest{EmergencyContactPhone: &phone}); err != nil {
		t.Fatal(err)
	}
	if gotPatch["emergency_contact_phone"] != "5550001111" {
		t.Errorf("patch = %v", gotPatch)
	}
}

func TestCreateRequiresName(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no store call expected")
	})
	if _, err := New().Create(context.Background(), db, CreateRequest{Name: "   "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestListSearch(t *testing.T) {
	var gotQuery string
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})
	if _, err := New().List(context.Background(), db, ListRequest{Search: "jane", Offset: 10, Limit: 25}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotQuery, "name=ilike.%2Ajane%2A") {
		t.Errorf("search filter missing: %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "limit=25") || !strings.Contains(gotQuery, "offset=10") {
		t.Errorf("pagination missing: %s", gotQuery)
	}
}

func TestDeleteOwnership(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	deletes := 0
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"id":"p1","name":"Jane","created_by":"` + owner.String() + `"}`))
		case http.MethodDelete:
			deletes++
			w.Write([]byte(`[{"id":"p1"}]`))
		}
	})
	svc := New()

	if err := svc.Delete(context.Background(), db, "p1", stranger); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete err = %v", err)
	}
	if deletes != 0 {
		t.Error("delete was issued for non-creator")
	}
	if err := svc.Delete(context.Background(), db, "p1", owner); err != nil {
		t.Fatalf("owner delete err = %v", err)
	}
	if deletes != 1 {
		t.Error("owner delete not issued")
	}
}

func TestUpdateEmptyPatch(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no store call expected")
	})
	if _, err := New().Update(context.Background(), db, "p1", UpdateRequest{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"code":"PGRST116","message":"no rows"}`))
	})
	if _, err := New().Get(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
