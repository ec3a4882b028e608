// Package service applies lifecycle decisions to the store. Every method
// reads what it needs, asks lifecycle for a decision and performs the
// resulting writes explicitly. Nothing is retried: a *sheets.ConflictError
// means the caller must re-read and try again.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"hackathon-bot/internal/lifecycle"
	"hackathon-bot/internal/models"
	"hackathon-bot/internal/store"
)

type Projects struct {
	store  *store.Store
	logger *slog.Logger
}

func NewProjects(st *store.Store, logger *slog.Logger) *Projects {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projects{store: st, logger: logger}
}

func (s *Projects) Store() *store.Store { return s.store }

// Create stores a new project owned by actor, with actor as its first member.
func (s *Projects) Create(ctx context.Context, actor *models.Hacker, hackathon *models.Hackathon, in lifecycle.ProjectInput) (*models.Project, error) {
	if !lifecycle.CanUpdateProject(actor, nil, lifecycle.OpNew) {
		return nil, denied(actor, "create", "a project")
	}
	if hackathon == nil {
		return nil, fmt.Errorf("create project: no current hackathon")
	}
	if in.Locked && !lifecycle.CanLockProject(actor) {
		return nil, denied(actor, "lock", "a project")
	}
	if err := lifecycle.ValidateProject(in); err != nil {
		return nil, err
	}

	p := &models.Project{OwnerID: actor.ID, HackathonID: hackathon.ID}
	applyInput(p, in)
	p, err := s.store.Projects.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.TeamMembers.Create(ctx, &models.TeamMember{UserID: actor.ID, ProjectID: p.ID}); err != nil {
		return nil, fmt.Errorf("add owner to team: %w", err)
	}
	p.Members = []string{actor.ID}

	if lifecycle.CanChangeJudges(actor) {
		if err := s.applyJudges(ctx, p, nil, in.Judges); err != nil {
			return nil, err
		}
	}
	s.logger.Info("project created", "project", p.ID, "owner", actor.ID, "hackathon", hackathon.ID)
	return p, nil
}

// Update replaces project's editable fields with in. project must be the
// hydrated row as last read by the caller; its version guards the write.
// project is left as it was when the write fails.
func (s *Projects) Update(ctx context.Context, actor *models.Hacker, project *models.Project, in lifecycle.ProjectInput) (*models.Project, error) {
	if !lifecycle.CanUpdateProject(actor, project, lifecycle.OpEdit) {
		return nil, denied(actor, "update", "project "+project.ID)
	}
	if in.Locked != project.Locked && !lifecycle.CanLockProject(actor) {
		return nil, denied(actor, "lock", "project "+project.ID)
	}
	if err := lifecycle.ValidateProject(in); err != nil {
		return nil, err
	}

	before := *project
	applyInput(project, in)
	if _, err := s.store.Projects.Update(ctx, project); err != nil {
		*project = before
		return nil, err
	}

	if lifecycle.CanChangeJudges(actor) {
		if err := s.applyJudges(ctx, project, before.Judges, in.Judges); err != nil {
			return nil, err
		}
	}
	return project, nil
}

// SetLocked flips the lock flag and nothing else.
func (s *Projects) SetLocked(ctx context.Context, actor *models.Hacker, project *models.Project, locked bool) (*models.Project, error) {
	if !lifecycle.CanLockProject(actor) {
		return nil, denied(actor, "lock", "project "+project.ID)
	}
	if project.Locked == locked {
		return project, nil
	}
	project.Locked = locked
	if _, err := s.store.Projects.Update(ctx, project); err != nil {
		project.Locked = !locked
		return nil, err
	}
	s.logger.Info("project lock changed", "project", project.ID, "locked", locked, "by", actor.ID)
	return project, nil
}

// ChangeMembership joins or leaves project for actor, as decided by
// lifecycle.Membership, and returns what was done.
func (s *Projects) ChangeMembership(ctx context.Context, actor *models.Hacker, hackathon *models.Hackathon, project *models.Project) (lifecycle.MembershipAction, error) {
	action := lifecycle.Membership(actor, hackathon, project)
	switch action {
	case lifecycle.Join:
		members, err := s.store.TeamMembers.ForProject(ctx, project.ID)
		if err != nil {
			return lifecycle.NoChange, err
		}
		if len(members) >= hackathon.MaxTeamSize {
			// filled up since project was read
			return lifecycle.NoChange, nil
		}
		if _, err := s.store.TeamMembers.Create(ctx, &models.TeamMember{UserID: actor.ID, ProjectID: project.ID}); err != nil {
			return lifecycle.NoChange, err
		}
		project.Members = append(project.Members, actor.ID)
	case lifecycle.Leave:
		m, ok, err := s.store.TeamMembers.Find(ctx, actor.ID, project.ID)
		if err != nil {
			return lifecycle.NoChange, err
		}
		if ok {
			if err := s.store.TeamMembers.Delete(ctx, m); err != nil {
				return lifecycle.NoChange, err
			}
		}
		project.Members = remove(project.Members, actor.ID)
	default:
		return lifecycle.NoChange, nil
	}
	s.logger.Info("membership changed", "project", project.ID, "hacker", actor.ID, "action", action.String())
	return action, nil
}

// Delete removes project and then its team and judging rows.
func (s *Projects) Delete(ctx context.Context, actor *models.Hacker, project *models.Project) error {
	if !lifecycle.CanDeleteProject(actor, project) {
		return denied(actor, "delete", "project "+project.ID)
	}
	if err := s.store.Projects.Delete(ctx, project); err != nil {
		return err
	}
	members, err := s.store.TeamMembers.ForProject(ctx, project.ID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := s.store.TeamMembers.Delete(ctx, m); err != nil {
			return fmt.Errorf("delete team member %s: %w", m.ID, err)
		}
	}
	judgings, err := s.store.Judgings.ForProject(ctx, project.ID)
	if err != nil {
		return err
	}
	for _, j := range judgings {
		if err := s.store.Judgings.Delete(ctx, j); err != nil {
			return fmt.Errorf("delete judging %s: %w", j.ID, err)
		}
	}
	s.logger.Info("project deleted", "project", project.ID, "by", actor.ID)
	return nil
}

// applyJudges reconciles the judge names against the current judge pool and
// writes the resulting judging rows.
func (s *Projects) applyJudges(ctx context.Context, project *models.Project, oldNames, newNames []string) error {
	pool, err := s.store.Hackers.Judges(ctx)
	if err != nil {
		return err
	}
	change := lifecycle.Reconcile(oldNames, newNames, pool, func(h *models.Hacker) string { return h.Name })
	if unknown := unresolved(pool, oldNames, newNames); len(unknown) > 0 {
		s.logger.Debug("ignoring judge names not in pool", "project", project.ID, "names", unknown)
	}

	for _, judge := range change.Added {
		if _, err := s.store.Judgings.Create(ctx, &models.Judging{UserID: judge.ID, ProjectID: project.ID}); err != nil {
			return fmt.Errorf("add judge %s: %w", judge.Name, err)
		}
		project.Judges = append(project.Judges, judge.Name)
	}
	for _, judge := range change.Removed {
		j, ok, err := s.store.Judgings.Find(ctx, judge.ID, project.ID)
		if err != nil {
			return err
		}
		if ok {
			if err := s.store.Judgings.Delete(ctx, j); err != nil {
				return fmt.Errorf("remove judge %s: %w", judge.Name, err)
			}
		}
		project.Judges = remove(project.Judges, judge.Name)
	}
	return nil
}

func applyInput(p *models.Project, in lifecycle.ProjectInput) {
	p.Title = in.Title
	p.Description = in.Description
	if in.ProjectType != "" {
		p.ProjectType = in.ProjectType
	}
	p.Contestant = in.Contestant
	p.Locked = in.Locked
	p.Technologies = in.Technologies
	p.MoreInfo = in.MoreInfo
}

// InputFrom returns the editable fields of p, so callers can change a few
// and pass the rest through unchanged.
func InputFrom(p *models.Project) lifecycle.ProjectInput {
	return lifecycle.ProjectInput{
		Title:        p.Title,
		Description:  p.Description,
		ProjectType:  p.ProjectType,
		Contestant:   p.Contestant,
		Locked:       p.Locked,
		Technologies: p.Technologies,
		MoreInfo:     p.MoreInfo,
		Judges:       p.Judges,
	}
}

func denied(actor *models.Hacker, action, target string) error {
	id := ""
	if actor != nil {
		id = actor.ID
	}
	return &lifecycle.AuthorizationError{Actor: id, Action: action, Target: target}
}

func unresolved(pool []*models.Hacker, nameLists ...[]string) []string {
	known := make(map[string]bool, len(pool))
	for _, h := range pool {
		known[h.Name] = true
	}
	var out []string
	for _, names := range nameLists {
		for _, n := range names {
			if !known[n] {
				known[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

func remove(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
