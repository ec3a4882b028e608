package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hackathon-bot/internal/metrics"
	"hackathon-bot/internal/models"
	"hackathon-bot/internal/service"
	"hackathon-bot/internal/sheets"
	"hackathon-bot/internal/store"
)

type env struct {
	st      *store.Store
	handler http.Handler
	owner   *models.Hacker
	other   *models.Hacker
	admin   *models.Hacker
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	m := metrics.New()
	st := store.New(sheets.NewMemory(), sheets.WithObserver(m))
	if err := st.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := st.Hackathons.Create(ctx, &models.Hackathon{Name: "Hack", MaxTeamSize: 3, Default: true}); err != nil {
		t.Fatalf("create hackathon: %v", err)
	}
	mk := func(name string, roles ...string) *models.Hacker {
		h, err := st.Hackers.Create(ctx, &models.Hacker{Name: name, Roles: roles})
		if err != nil {
			t.Fatalf("create hacker: %v", err)
		}
		return h
	}
	return &env{
		st: st,
		handler: NewRouter(Deps{
			Projects:      service.NewProjects(st, nil),
			Registrations: service.NewRegistrations(st),
			Hackers:       service.NewHackers(st, nil),
			Metrics:       m.Handler(),
		}),
		owner: mk("Owner"),
		other: mk("Other"),
		admin: mk("Admin", models.RoleAdmin),
	}
}

func (e *env) do(t *testing.T, method, path string, actor *models.Hacker, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		req.Header.Set(HeaderHacker, actor.ID)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) createProject(t *testing.T) projectView {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/projects", e.owner,
		`{"title":"Lookers","description":"Dashboards","technologies":["Go"],"more_info":"https://example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body)
	}
	var v projectView
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestCreateAndGetProject(t *testing.T) {
	e := newEnv(t)
	created := e.createProject(t)
	if created.OwnerID != e.owner.ID || len(created.Members) != 1 {
		t.Fatalf("unexpected project %+v", created)
	}
	if !created.CanUpdate || created.Membership != "leave" {
		t.Fatalf("owner view: can_update=%v membership=%q", created.CanUpdate, created.Membership)
	}

	rec := e.do(t, http.MethodGet, "/api/projects/"+created.ID, e.other, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	var got projectView
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CanUpdate || got.Membership != "join" {
		t.Fatalf("other view: can_update=%v membership=%q", got.CanUpdate, got.Membership)
	}
}

func TestListProjects(t *testing.T) {
	e := newEnv(t)
	e.createProject(t)
	e.createProject(t)

	rec := e.do(t, http.MethodGet, "/api/projects", nil, "")
	var list []projectView
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d projects, want 2", len(list))
	}
}

func TestErrorMapping(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)

	tests := []struct {
		name   string
		method string
		path   string
		actor  *models.Hacker
		body   string
		want   int
	}{
		{"missing actor", http.MethodPost, "/api/projects", nil, `{}`, http.StatusUnauthorized},
		{"validation", http.MethodPost, "/api/projects", e.owner, `{"title":"","description":""}`, http.StatusUnprocessableEntity},
		{"malformed body", http.MethodPost, "/api/projects", e.owner, `{"title":`, http.StatusBadRequest},
		{"not owner", http.MethodPut, "/api/projects/" + p.ID, e.other,
			`{"version":"` + p.Version + `","title":"x","description":"y"}`, http.StatusForbidden},
		{"stale version", http.MethodPut, "/api/projects/" + p.ID, e.owner,
			`{"version":"2000-01-01T00:00:00Z","title":"x","description":"y"}`, http.StatusConflict},
		{"update without version", http.MethodPut, "/api/projects/" + p.ID, e.owner,
			`{"title":"x","description":"y"}`, http.StatusBadRequest},
		{"lock without version", http.MethodPost, "/api/projects/" + p.ID + "/lock", e.admin,
			`{"locked":true}`, http.StatusBadRequest},
		{"delete without version", http.MethodDelete, "/api/projects/" + p.ID, e.admin, "", http.StatusBadRequest},
		{"unknown project", http.MethodGet, "/api/projects/nope", nil, "", http.StatusNotFound},
		{"lock by owner", http.MethodPost, "/api/projects/" + p.ID + "/lock", e.owner,
			`{"version":"` + p.Version + `","locked":true}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.method, tt.path, tt.actor, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestUpdateThenStaleUpdateConflicts(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)
	body := `{"version":"` + p.Version + `","title":"New","description":"Desc"}`

	if rec := e.do(t, http.MethodPut, "/api/projects/"+p.ID, e.owner, body); rec.Code != http.StatusOK {
		t.Fatalf("first update: status %d body %s", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodPut, "/api/projects/"+p.ID, e.owner, body); rec.Code != http.StatusConflict {
		t.Fatalf("second update: status %d, want 409", rec.Code)
	}
}

func TestVersionlessWriteAfterUpdateIsRefused(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)

	first := `{"version":"` + p.Version + `","title":"New","description":"Desc"}`
	if rec := e.do(t, http.MethodPut, "/api/projects/"+p.ID, e.owner, first); rec.Code != http.StatusOK {
		t.Fatalf("first update: status %d body %s", rec.Code, rec.Body)
	}
	rec := e.do(t, http.MethodPut, "/api/projects/"+p.ID, e.owner, `{"title":"Blind","description":"Desc"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("versionless update: status %d, want 400", rec.Code)
	}

	got, err := e.st.Project(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Title != "New" {
		t.Fatalf("title = %q, versionless write was applied", got.Title)
	}
}

func TestMembershipJoinAndLeave(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)

	for _, want := range []string{"join", "leave"} {
		rec := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/membership", e.other, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", want, rec.Code)
		}
		var out struct {
			Action string `json:"action"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Action != want {
			t.Fatalf("action %q, want %q", out.Action, want)
		}
	}
}

func TestAdminLocksAndDeletes(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)

	rec := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/lock", e.admin,
		`{"version":"`+p.Version+`","locked":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("lock: status %d body %s", rec.Code, rec.Body)
	}
	var locked projectView
	if err := json.NewDecoder(rec.Body).Decode(&locked); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !locked.Locked {
		t.Fatal("project not locked")
	}

	rec = e.do(t, http.MethodDelete, "/api/projects/"+p.ID+"?version="+locked.Version, e.admin, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d body %s", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodGet, "/api/projects/"+p.ID, nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", rec.Code)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	e := newEnv(t)
	if rec := e.do(t, http.MethodPost, "/api/registrations", e.other, ""); rec.Code != http.StatusCreated {
		t.Fatalf("first: status %d body %s", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodPost, "/api/registrations", e.other, ""); rec.Code != http.StatusOK {
		t.Fatalf("second: status %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.createProject(t)
	rec := e.do(t, http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sheet_operations_total") {
		t.Fatal("metrics output missing sheet_operations_total")
	}
}
