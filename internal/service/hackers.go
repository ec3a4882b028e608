package service

import (
	"context"
	"strconv"

	"hackathon-bot/internal/models"
	"hackathon-bot/internal/sheets"
	"hackathon-bot/internal/store"
)

// Hackers resolves who is acting. Hackers are maintained in the sheet by
// organizers; ids listed as admins in config get the admin role on top.
type Hackers struct {
	store    *store.Store
	adminTGs map[int64]bool
}

func NewHackers(st *store.Store, adminTGIDs []int64) *Hackers {
	admins := make(map[int64]bool, len(adminTGIDs))
	for _, id := range adminTGIDs {
		admins[id] = true
	}
	return &Hackers{store: st, adminTGs: admins}
}

// ByID returns the hacker with the given row id.
func (s *Hackers) ByID(ctx context.Context, id string) (*models.Hacker, error) {
	h, err := s.store.Hackers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.grant(h)
	return h, nil
}

// ByTelegram returns the hacker linked to a Telegram user.
func (s *Hackers) ByTelegram(ctx context.Context, tgID int64) (*models.Hacker, error) {
	key := strconv.FormatInt(tgID, 10)
	h, ok, err := s.store.Hackers.ByTelegramID(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &sheets.NotFoundError{Table: store.TabHackers, ID: "tg:" + key}
	}
	s.grant(h)
	return h, nil
}

func (s *Hackers) grant(h *models.Hacker) {
	if h.TgID == "" {
		return
	}
	if id, err := strconv.ParseInt(h.TgID, 10, 64); err == nil && s.adminTGs[id] {
		h.Grant(models.RoleAdmin)
	}
}
