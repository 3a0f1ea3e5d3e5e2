package visit

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

func TestToNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{1500.5, 1500.5},
		{int(200), 200},
		{"350", 350},
		{" 12.5 ", 12.5},
		{"abc", 0},
		{nil, 0},
		{true, 0},
		{json.Number("42"), 42},
	}
	for _, c := range cases {
		if got := toNumber(c.in); got != c.want {
			t.Errorf("toNumber(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"2025-03-01", "2025-03-01"},
		{"2025-03-01T10:30:00Z", "2025-03-01"},
		{"01/03/2025", "2025-03-01"},
		{"not a date", ""},
		{nil, ""},
		{42, ""},
	}
	for _, c := range cases {
		if got := normalizeDate(c.in); got != c.want {
			t.Errorf("normalizeDate(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeProcedureMirrorsDateKeys(t *testing.T) {
	p := sanitizeProcedure(Procedure{
		"name":      "Root canal",
		"total":     "5000",
		"paid":      2000.0,
		"visitDate": "2025-03-01T09:00:00Z",
	})
	if p["total"] != 5000.0 || p["paid"] != 2000.0 {
		t.Errorf("money coercion: total=%v paid=%v", p["total"], p["paid"])
	}
	if p["visitDate"] != "2025-03-01" || p["visit_date"] != "2025-03-01" {
		t.Errorf("date mirror: %v / %v", p["visitDate"], p["visit_date"])
	}
	if p["name"] != "Root canal" {
		t.Errorf("unrelated key touched: %v", p["name"])
	}
}

func TestNewProcedureDefaults(t *testing.T) {
	p := newProcedure(Procedure{"name": "Scaling"})
	if p["total"] != 0.0 || p["paid"] != 0.0 || p["due"] != 0.0 {
		t.Errorf("money defaults: %v", p)
	}
	if id, _ := p["id"].(string); id == "" {
		t.Error("no element id assigned")
	}

	p = newProcedure(Procedure{"total": 5000.0, "paid": 6000.0})
	if p["due"] != 0.0 {
		t.Errorf("due must not go negative, got %v", p["due"])
	}
}

// fakeVisitStore serves one visit row and records the procedure arrays
// written back to it.
type fakeVisitStore struct {
	t       *testing.T
	visit   string
	writes  []json.RawMessage
	session *store.Session
}

func newFakeVisitStore(t *testing.T, procedures string) *fakeVisitStore {
	t.Helper()
	f := &fakeVisitStore{t: t}
	f.visit = `{"id":"v1","patient_id":"p1","date":"2025-03-01","procedures":` + procedures + `}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(f.visit))
		case http.MethodPatch:
			raw, _ := io.ReadAll(r.Body)
			var patch struct {
				Procedures json.RawMessage `json:"procedures"`
			}
			if err := json.Unmarshal(raw, &patch); err != nil {
				t.Fatalf("bad patch body: %v", err)
			}
			f.writes = append(f.writes, patch.Procedures)
			w.Write([]byte(`[{"id":"v1","patient_id":"p1","date":"2025-03-01","procedures":` + string(patch.Procedures) + `}]`))
		default:
			t.Errorf("unexpected %s", r.Method)
		}
	}))
	t.Cleanup(srv.Close)
	client, err := store.New(store.Config{URL: srv.URL, AnonKey: "anon"})
	if err != nil {
		t.Fatal(err)
	}
	f.session = client.WithToken("tok")
	return f
}

func TestAddProcedureAppends(t *testing.T) {
	f := newFakeVisitStore(t, `[{"id":"e1","name":"A","total":100,"paid":0,"due":100}]`)
	got, err := New().AddProcedure(context.Background(), f.session, "v1", Procedure{"name": "B", "total": 250.0, "paid": 100.0})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Procedures) != 2 {
		t.Fatalf("array length = %d", len(got.Procedures))
	}
	if got.Procedures[0]["name"] != "A" {
		t.Error("existing element moved")
	}
	added := got.Procedures[1]
	if added["name"] != "B" || added["due"] != 150.0 {
		t.Errorf("appended element: %v", added)
	}
}

func TestUpdateProcedureByIndex(t *testing.T) {
	f := newFakeVisitStore(t, `[{"id":"e1","name":"A","total":100,"paid":0,"due":100},{"id":"e2","name":"B","total":200,"paid":0,"due":200}]`)
	got, err := New().UpdateProcedure(context.Background(), f.session, "v1", 1, Procedure{"paid": 50.0})
	if err != nil {
		t.Fatal(err)
	}
	b := got.Procedures[1]
	if b["name"] != "B" || b["total"] != 200.0 || b["paid"] != 50.0 || b["due"] != 150.0 {
		t.Errorf("merged element: %v", b)
	}
	a := got.Procedures[0]
	if a["paid"] != 0.0 {
		t.Errorf("neighbor touched: %v", a)
	}
}

func TestProcedureIndexOutOfRange(t *testing.T) {
	f := newFakeVisitStore(t, `[{"id":"e1","name":"A"}]`)
	svc := New()

	if _, err := svc.UpdateProcedure(context.Background(), f.session, "v1", 1, Procedure{"paid": 1.0}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("update err = %v", err)
	}
	if _, err := svc.UpdateProcedure(context.Background(), f.session, "v1", -1, Procedure{"paid": 1.0}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("negative index err = %v", err)
	}
	if _, err := svc.DeleteProcedure(context.Background(), f.session, "v1", 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("delete err = %v", err)
	}
	if len(f.writes) != 0 {
		t.Errorf("stored array was modified %d times", len(f.writes))
	}
}

func TestDeleteProcedureSplices(t *testing.T) {
	f := newFakeVisitStore(t, `[{"id":"eA","name":"A"},{"id":"eB","name":"B"},{"id":"eC","name":"C"}]`)
	got, err := New().DeleteProcedure(context.Background(), f.session, "v1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Procedures) != 2 || got.Procedures[0]["name"] != "A" || got.Procedures[1]["name"] != "C" {
		t.Fatalf("spliced array: %v", got.Procedures)
	}
	// Index 1 now addresses what used to be C.
	f.visit = `{"id":"v1","patient_id":"p1","date":"2025-03-01","procedures":[{"id":"eA","name":"A"},{"id":"eC","name":"C"}]}`
	got, err = New().UpdateProcedure(context.Background(), f.session, "v1", 1, Procedure{"note": "seen"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Procedures[1]["name"] != "C" || got.Procedures[1]["note"] != "seen" {
		t.Errorf("post-splice index target: %v", got.Procedures[1])
	}
}

func TestVisitNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"code":"PGRST116","message":"no rows"}`))
	}))
	t.Cleanup(srv.Close)
	client, err := store.New(store.Config{URL: srv.URL, AnonKey: "anon"})
	if err != nil {
		t.Fatal(err)
	}
	db := client.WithToken("tok")

	if _, err := New().Get(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get err = %v", err)
	}
	if _, err := New().AddProcedure(context.Background(), db, "missing", Procedure{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("add err = %v", err)
	}
}

func TestCreateMapsChiefComplaint(t *testing.T) {
	var gotRow map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotRow)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"v1","patient_id":"p1","date":"2025-03-01","chief_complaint":"severe toothache","procedures":[]}]`))
	}))
	t.Cleanup(srv.Close)
	client, err := store.New(store.Config{URL: srv.URL, AnonKey: "anon"})
	if err != nil {
		t.Fatal(err)
	}

	complaint := "severe toothache"
	notes := "x"
	got, err := New().Create(context.Background(), client.WithToken("tok"), "p1", CreateRequest{
		Date:           "2025-03-01",
		ChiefComplaint: &complaint,
		Notes:          &notes,
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotRow["chief_complaint"] != "severe toothache" {
		t.Errorf("chief complaint not in insert row: %v", gotRow)
	}
	if got.ChiefComplaint == nil || *got.ChiefComplaint != "severe toothache" {
		t.Errorf("chief complaint = %v", got.ChiefComplaint)
	}
}

func TestUpdateMapsChiefComplaint(t *testing.T) {
	var gotPatch map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotPatch)
		w.Write([]byte(`[{"id":"v1","patient_id":"p1","date":"2025-03-01","chief_complaint":"follow-up pain","procedures":[]}]`))
	}))
	t.Cleanup(srv.Close)
	client, err := store.New(store.Config{URL: srv.URL, AnonKey: "anon"})
	if err != nil {
		t.Fatal(err)
	}

	complaint := "follow-up pain"
	if _, err := New().Update(context.Background(), client.WithToken("tok"), "v1", UpdateRequest{ChiefComplaint: &complaint}); err != nil {
		t.Fatal(err)
	}
	if gotPatch["chief_complaint"] != "follow-up pain" {
		t.Errorf("patch = %v", gotPatch)
	}
}

func TestUpdateVisitEmptyPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no store call expected")
	}))
	t.Cleanup(srv.Close)
	client, err := store.New(store.Config{URL: srv.URL, AnonKey: "anon"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New().Update(context.Background(), client.WithToken("tok"), "v1", UpdateRequest{}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v", err)
	}
}
