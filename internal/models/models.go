package models

import (
	"slices"
	"strings"
	"time"

	"hackathon-bot/internal/sheets"
)

const (
	RoleAdmin = "admin"
	RoleJudge = "judge"
	RoleStaff = "staff"
)

// Project fields are declared in the sheet's column order.
type Project struct {
	sheets.RowMeta
	OwnerID      string
	HackathonID  string
	Title        string
	Description  string
	DateCreated  time.Time
	ProjectType  string
	Contestant   bool
	Locked       bool
	Technologies []string
	MoreInfo     string

	// Members and Judges are not stored in the projects tab; they are
	// filled in from team_members and judgings.
	Members []string // hacker ids
	Judges  []string // judge names
}

func (p *Project) Prepare(now time.Time) {
	if p.DateCreated.IsZero() {
		p.DateCreated = now
	}
	if p.ProjectType == "" {
		p.ProjectType = "Open"
	}
}

func (p *Project) IsMember(hackerID string) bool {
	return slices.Contains(p.Members, hackerID)
}

type Registration struct {
	sheets.RowMeta
	UserID         string
	HackathonID    string
	DateRegistered time.Time
	Attended       bool
}

// Prepare runs on create. A registration only exists because the hacker
// showed up, so it is always marked attended.
func (r *Registration) Prepare(now time.Time) {
	if r.DateRegistered.IsZero() {
		r.DateRegistered = now
	}
	r.Attended = true
}

type TeamMember struct {
	sheets.RowMeta
	UserID           string
	ProjectID        string
	DateJoined       time.Time
	Responsibilities string
}

func (m *TeamMember) Prepare(now time.Time) {
	if m.DateJoined.IsZero() {
		m.DateJoined = now
	}
}

type Judging struct {
	sheets.RowMeta
	UserID    string
	ProjectID string
	Execution int
	Ambition  int
	Coolness  int
	Impact    int
	Score     int
	Notes     string
}

type Hacker struct {
	sheets.RowMeta
	Name  string
	Roles []string
	TgID  string
}

func (h *Hacker) HasRole(role string) bool {
	return slices.ContainsFunc(h.Roles, func(r string) bool { return strings.EqualFold(r, role) })
}

func (h *Hacker) CanAdmin() bool { return h != nil && h.HasRole(RoleAdmin) }
func (h *Hacker) CanJudge() bool { return h != nil && h.HasRole(RoleJudge) }
func (h *Hacker) CanStaff() bool { return h != nil && h.HasRole(RoleStaff) }

// Elevated reports whether the hacker bypasses ownership checks.
func (h *Hacker) Elevated() bool {
	return h.CanAdmin() || h.CanJudge() || h.CanStaff()
}

// Grant adds role unless the hacker already has it.
func (h *Hacker) Grant(role string) {
	if !h.HasRole(role) {
		h.Roles = append(h.Roles, role)
	}
}

type Hackathon struct {
	sheets.RowMeta
	Name          string
	Description   string
	Location      string
	Date          time.Time
	DurationDays  int
	MaxTeamSize   int
	JudgingStarts time.Time
	JudgingStops  time.Time
	Default       bool
}
