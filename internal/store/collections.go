package store

import (
	"context"

	"hackathon-bot/internal/models"
	"hackathon-bot/internal/sheets"
)

type Projects struct {
	*sheets.Table[*models.Project]
}

func (p *Projects) ForHackathon(ctx context.Context, hackathonID string) ([]*models.Project, error) {
	return p.Filter(ctx, func(pr *models.Project) bool { return pr.HackathonID == hackathonID })
}

type Registrations struct {
	*sheets.Table[*models.Registration]
}

func (r *Registrations) ForHackathon(ctx context.Context, hackathonID string) ([]*models.Registration, error) {
	return r.Filter(ctx, func(reg *models.Registration) bool { return reg.HackathonID == hackathonID })
}

func (r *Registrations) Find(ctx context.Context, userID, hackathonID string) (*models.Registration, bool, error) {
	return r.Table.Find(ctx, func(reg *models.Registration) bool {
		return reg.UserID == userID && reg.HackathonID == hackathonID
	})
}

type TeamMembers struct {
	*sheets.Table[*models.TeamMember]
}

func (t *TeamMembers) ForProject(ctx context.Context, projectID string) ([]*models.TeamMember, error) {
	return t.Filter(ctx, func(m *models.TeamMember) bool { return m.ProjectID == projectID })
}

func (t *TeamMembers) Find(ctx context.Context, userID, projectID string) (*models.TeamMember, bool, error) {
	return t.Table.Find(ctx, func(m *models.TeamMember) bool {
		return m.UserID == userID && m.ProjectID == projectID
	})
}

type Judgings struct {
	*sheets.Table[*models.Judging]
}

func (j *Judgings) ForProject(ctx context.Context, projectID string) ([]*models.Judging, error) {
	return j.Filter(ctx, func(jd *models.Judging) bool { return jd.ProjectID == projectID })
}

func (j *Judgings) Find(ctx context.Context, userID, projectID string) (*models.Judging, bool, error) {
	return j.Table.Find(ctx, func(jd *models.Judging) bool {
		return jd.UserID == userID && jd.ProjectID == projectID
	})
}

type Hackers struct {
	*sheets.Table[*models.Hacker]
}

// Judges returns every hacker with the judge role.
func (h *Hackers) Judges(ctx context.Context) ([]*models.Hacker, error) {
	return h.Filter(ctx, (*models.Hacker).CanJudge)
}

func (h *Hackers) ByTelegramID(ctx context.Context, tgID string) (*models.Hacker, bool, error) {
	return h.Find(ctx, func(hk *models.Hacker) bool { return hk.TgID == tgID })
}

type Hackathons struct {
	*sheets.Table[*models.Hackathon]
}

// Current returns the hackathon flagged default, else the latest one.
func (h *Hackathons) Current(ctx context.Context) (*models.Hackathon, bool, error) {
	all, err := h.List(ctx)
	if err != nil {
		return nil, false, err
	}
	var latest *models.Hackathon
	for _, hk := range all {
		if hk.Default {
			return hk, true, nil
		}
		if latest == nil || hk.Date.After(latest.Date) {
			latest = hk
		}
	}
	return latest, latest != nil, nil
}
