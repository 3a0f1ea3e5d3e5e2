package medicalhistory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
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

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestUpsertBuildsSparseRow(t *testing.T) {
	var gotRow map[string]any
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotRow)
		w.Write([]byte(`[{"id":"h1","patient_id":"p1","allergy":"Yes","allergy_detail":"penicillin","diabetes":true}]`))
	})

	saved, err := New().Upsert(context.Background(), db, "p1", UpsertRequest{
		Allergy:       strptr("Yes"),
		AllergyDetail: strptr("penicillin"),
		Diabetes:      boolptr(true),
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotRow["patient_id"] != "p1" {
		t.Errorf("patient_id = %v", gotRow["patient_id"])
	}
	if gotRow["allergy"] != "Yes" || gotRow["allergy_detail"] != "penicillin" {
		t.Errorf("allergy pair = %v / %v", gotRow["allergy"], gotRow["allergy_detail"])
	}
	if gotRow["diabetes"] != true {
		t.Errorf("diabetes = %v", gotRow["diabetes"])
	}
	// Sparse: untouched questions do not appear in the row at all.
	if _, present := gotRow["hypertension"]; present {
		t.Error("unset flag included in row")
	}
	if _, present := gotRow["pregnancy"]; present {
		t.Error("unset answer included in row")
	}
	if saved.AllergyDetail == nil || *saved.AllergyDetail != "penicillin" {
		t.Errorf("saved detail = %v", saved.AllergyDetail)
	}
	if !saved.Diabetes {
		t.Error("saved diabetes flag lost")
	}
}

func TestUpsertClearsAnswer(t *testing.T) {
	var gotBody string
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Write([]byte(`[{"id":"h1","patient_id":"p1"}]`))
	})

	if _, err := New().Upsert(context.Background(), db, "p1", UpsertRequest{Allergy: strptr("")}); err != nil {
		t.Fatal(err)
	}
	var row map[string]any
	json.Unmarshal([]byte(gotBody), &row)
	v, present := row["allergy"]
	if !present || v != nil {
		t.Errorf("empty answer should clear to null, got %v (present=%v)", v, present)
	}
}

func TestUpsertRejectsBadAnswer(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no store call expected")
	})
	_, err := New().Upsert(context.Background(), db, "p1", UpsertRequest{TakingMedication: strptr("maybe")})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestUpsertEmptyBody(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no store call expected")
	})
	if _, err := New().Upsert(context.Background(), db, "p1", UpsertRequest{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestGetByPatientAbsent(t *testing.T) {
	db := fakeSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	hist, err := New().GetByPatient(context.Background(), db, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if hist != nil {
		t.Errorf("expected nil history, got %+v", hist)
	}
}
