package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hackathon-bot/internal/lifecycle"
	"hackathon-bot/internal/logging"
	"hackathon-bot/internal/models"
	"hackathon-bot/internal/sheets"
)

// HeaderHacker carries the acting hacker's id.
const HeaderHacker = "X-Hacker-ID"

type projectView struct {
	ID           string    `json:"id"`
	Version      string    `json:"version"`
	OwnerID      string    `json:"owner_id"`
	HackathonID  string    `json:"hackathon_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DateCreated  time.Time `json:"date_created"`
	ProjectType  string    `json:"project_type"`
	Contestant   bool      `json:"contestant"`
	Locked       bool      `json:"locked"`
	Technologies []string  `json:"technologies"`
	MoreInfo     string    `json:"more_info"`
	Members      []string  `json:"members"`
	Judges       []string  `json:"judges"`
	CanUpdate    bool      `json:"can_update"`
	Membership   string    `json:"membership"`
}

type projectBody struct {
	Version      string   `json:"version"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ProjectType  string   `json:"project_type"`
	Contestant   bool     `json:"contestant"`
	Locked       bool     `json:"locked"`
	Technologies []string `json:"technologies"`
	MoreInfo     string   `json:"more_info"`
	Judges       []string `json:"judges"`
}

func (b projectBody) input() lifecycle.ProjectInput {
	return lifecycle.ProjectInput{
		Title:        b.Title,
		Description:  b.Description,
		ProjectType:  b.ProjectType,
		Contestant:   b.Contestant,
		Locked:       b.Locked,
		Technologies: b.Technologies,
		MoreInfo:     b.MoreInfo,
		Judges:       b.Judges,
	}
}

type lockBody struct {
	Version string `json:"version"`
	Locked  bool   `json:"locked"`
}

func view(p *models.Project, actor *models.Hacker, hackathon *models.Hackathon) projectView {
	return projectView{
		ID:           p.ID,
		Version:      p.Version,
		OwnerID:      p.OwnerID,
		HackathonID:  p.HackathonID,
		Title:        p.Title,
		Description:  p.Description,
		DateCreated:  p.DateCreated,
		ProjectType:  p.ProjectType,
		Contestant:   p.Contestant,
		Locked:       p.Locked,
		Technologies: p.Technologies,
		MoreInfo:     p.MoreInfo,
		Members:      p.Members,
		Judges:       p.Judges,
		CanUpdate:    lifecycle.CanUpdateProject(actor, p, lifecycle.OpEdit),
		Membership:   lifecycle.Membership(actor, hackathon, p).String(),
	}
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := s.actor(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hackathon, err := s.currentHackathon(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	projects, err := s.deps.Projects.Store().ProjectsFor(ctx, hackathon.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]projectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, view(p, actor, hackathon))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.Projects.Store().Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hackathon, _ := s.currentHackathon(r)
	writeJSON(w, http.StatusOK, view(p, actor, hackathon))
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body projectBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	hackathon, err := s.currentHackathon(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.Projects.Create(r.Context(), actor, hackathon, body.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view(p, actor, hackathon))
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body projectBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.loadVersioned(r, body.Version)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err = s.deps.Projects.Update(r.Context(), actor, p, body.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hackathon, _ := s.currentHackathon(r)
	writeJSON(w, http.StatusOK, view(p, actor, hackathon))
}

func (s *Server) lockProject(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body lockBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.loadVersioned(r, body.Version)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err = s.deps.Projects.SetLocked(r.Context(), actor, p, body.Locked)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hackathon, _ := s.currentHackathon(r)
	writeJSON(w, http.StatusOK, view(p, actor, hackathon))
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.loadVersioned(r, r.URL.Query().Get("version"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Projects.Delete(r.Context(), actor, p); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) changeMembership(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hackathon, err := s.currentHackathon(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.Projects.Store().Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	action, err := s.deps.Projects.ChangeMembership(r.Context(), actor, hackathon, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"action":  action.String(),
		"project": view(p, actor, hackathon),
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hackathon, err := s.currentHackathon(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reg, created, err := s.deps.Registrations.Register(r.Context(), actor, hackathon)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"id":              reg.ID,
		"user_id":         reg.UserID,
		"hackathon_id":    reg.HackathonID,
		"date_registered": reg.DateRegistered,
		"attended":        reg.Attended,
	})
}

// ---------- helpers ----------

var errNoActor = errors.New("missing " + HeaderHacker + " header")

func (s *Server) actor(r *http.Request, required bool) (*models.Hacker, error) {
	id := r.Header.Get(HeaderHacker)
	if id == "" {
		if required {
			return nil, errNoActor
		}
		return nil, nil
	}
	return s.deps.Hackers.ByID(r.Context(), id)
}

func (s *Server) currentHackathon(r *http.Request) (*models.Hackathon, error) {
	h, ok, err := s.deps.Projects.Store().Hackathons.Current(r.Context())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &sheets.NotFoundError{Table: "hackathons", ID: "current"}
	}
	return h, nil
}

var errNoVersion = errors.New("version is required")

// loadVersioned reads the project in the URL and stamps it with the version
// the client last saw, so a stale client gets a conflict. A write without a
// version is refused.
func (s *Server) loadVersioned(r *http.Request, version string) (*models.Project, error) {
	if version == "" {
		return nil, badRequest{errNoVersion}
	}
	p, err := s.deps.Projects.Store().Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	p.Version = version
	return p, nil
}

type badRequest struct{ err error }

func (e badRequest) Error() string { return "bad request: " + e.err.Error() }

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest{err}
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *lifecycle.ValidationError
		aerr *lifecycle.AuthorizationError
		breq badRequest
	)
	status := http.StatusInternalServerError
	body := map[string]any{"error": err.Error()}
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body["fields"] = verr.Fields
	case errors.As(err, &aerr):
		status = http.StatusForbidden
	case errors.Is(err, errNoActor):
		status = http.StatusUnauthorized
	case errors.As(err, &breq):
		status = http.StatusBadRequest
	case errors.Is(err, sheets.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, sheets.ErrNotFound):
		status = http.StatusNotFound
	}
	logging.FromContext(r.Context()).Warn("request failed",
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
