package service

import (
	"context"
	"fmt"

	"hackathon-bot/internal/models"
	"hackathon-bot/internal/store"
)

type Registrations struct {
	store *store.Store
}

func NewRegistrations(st *store.Store) *Registrations {
	return &Registrations{store: st}
}

// Register returns actor's registration for hackathon, creating it when
// missing. A new registration is marked attended.
func (s *Registrations) Register(ctx context.Context, actor *models.Hacker, hackathon *models.Hackathon) (*models.Registration, bool, error) {
	if actor == nil || hackathon == nil {
		return nil, false, fmt.Errorf("register: hacker and hackathon are required")
	}
	reg, ok, err := s.store.Registrations.Find(ctx, actor.ID, hackathon.ID)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return reg, false, nil
	}
	reg, err = s.store.Registrations.Create(ctx, &models.Registration{UserID: actor.ID, HackathonID: hackathon.ID})
	if err != nil {
		return nil, false, err
	}
	return reg, true, nil
}
