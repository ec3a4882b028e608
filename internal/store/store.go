// Package store exposes the spreadsheet tabs as typed collections.
package store

import (
	"context"
	"errors"

	"hackathon-bot/internal/models"
	"hackathon-bot/internal/sheets"
)

type Store struct {
	Projects      *Projects
	Registrations *Registrations
	TeamMembers   *TeamMembers
	Judgings      *Judgings
	Hackers       *Hackers
	Hackathons    *Hackathons
}

func New(backend sheets.Backend, opts ...sheets.Option) *Store {
	return &Store{
		Projects:      &Projects{sheets.NewTable(backend, projectCodec(), opts...)},
		Registrations: &Registrations{sheets.NewTable(backend, registrationCodec(), opts...)},
		TeamMembers:   &TeamMembers{sheets.NewTable(backend, teamMemberCodec(), opts...)},
		Judgings:      &Judgings{sheets.NewTable(backend, judgingCodec(), opts...)},
		Hackers:       &Hackers{sheets.NewTable(backend, hackerCodec(), opts...)},
		Hackathons:    &Hackathons{sheets.NewTable(backend, hackathonCodec(), opts...)},
	}
}

// Init makes sure every tab exists with the expected header.
func (s *Store) Init(ctx context.Context) error {
	inits := []func(context.Context) error{
		s.Projects.Init,
		s.Registrations.Init,
		s.TeamMembers.Init,
		s.Judgings.Init,
		s.Hackers.Init,
		s.Hackathons.Init,
	}
	var errs []error
	for _, fn := range inits {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Project reads one project with its members and judges filled in.
func (s *Store) Project(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.Projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, []*models.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ProjectsFor lists a hackathon's projects with members and judges filled in.
func (s *Store) ProjectsFor(ctx context.Context, hackathonID string) ([]*models.Project, error) {
	ps, err := s.Projects.ForHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *Store) hydrate(ctx context.Context, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	members, err := s.TeamMembers.List(ctx)
	if err != nil {
		return err
	}
	judgings, err := s.Judgings.List(ctx)
	if err != nil {
		return err
	}
	hackers, err := s.Hackers.List(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(hackers))
	for _, h := range hackers {
		names[h.ID] = h.Name
	}

	byID := make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		p.Members, p.Judges = nil, nil
		byID[p.ID] = p
	}
	for _, m := range members {
		if p, ok := byID[m.ProjectID]; ok {
			p.Members = append(p.Members, m.UserID)
		}
	}
	for _, j := range judgings {
		p, ok := byID[j.ProjectID]
		if !ok {
			continue
		}
		if name, ok := names[j.UserID]; ok {
			p.Judges = append(p.Judges, name)
		}
	}
	return nil
}
