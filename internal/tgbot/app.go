// Package tgbot is the Telegram surface: hackers register with /start and
// browse, join and leave projects with /projects.
package tgbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hackathon-bot/internal/lifecycle"
	"hackathon-bot/internal/models"
	"hackathon-bot/internal/service"
	"hackathon-bot/internal/sheets"
)

const (
	cbMember = "p:member:"
	cbLock   = "p:lock:"
)

type App struct {
	bot           *tgbotapi.BotAPI
	projects      *service.Projects
	registrations *service.Registrations
	hackers       *service.Hackers
	logger        *slog.Logger
}

func New(token string, projects *service.Projects, registrations *service.Registrations, hackers *service.Hackers, logger *slog.Logger) (*App, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	b.Debug = false
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		bot:           b,
		projects:      projects,
		registrations: registrations,
		hackers:       hackers,
		logger:        logger.With("component", "tgbot"),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := a.bot.GetUpdatesChan(u)
	defer a.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				if err := a.handleMessage(ctx, upd.Message); err != nil {
					a.logger.Error("handle message", "tg_id", upd.Message.From.ID, "error", err)
				}
			} else if upd.CallbackQuery != nil {
				if err := a.handleCallback(ctx, upd.CallbackQuery); err != nil {
					a.logger.Error("handle callback", "tg_id", upd.CallbackQuery.From.ID, "data", upd.CallbackQuery.Data, "error", err)
				}
			}
		}
	}
}

func (a *App) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := a.bot.Send(msg)
	return err
}

// ---------- Message handling ----------

func (a *App) handleMessage(ctx context.Context, m *tgbotapi.Message) error {
	if m.From == nil {
		return nil
	}
	chatID := m.Chat.ID
	switch strings.TrimSpace(m.Text) {
	case "/start":
		return a.start(ctx, chatID, m.From.ID)
	case "/projects":
		return a.listProjects(ctx, chatID, m.From.ID)
	default:
		return a.SendText(chatID, "Commands: /start to register, /projects to see projects.")
	}
}

func (a *App) start(ctx context.Context, chatID, tgID int64) error {
	actor, ok, err := a.actor(ctx, chatID, tgID)
	if !ok {
		return err
	}
	hackathon, err := a.currentHackathon(ctx)
	if err != nil {
		return err
	}
	if hackathon == nil {
		return a.SendText(chatID, "There is no hackathon to register for yet.")
	}
	_, created, err := a.registrations.Register(ctx, actor, hackathon)
	if err != nil {
		return err
	}
	if !created {
		return a.SendText(chatID, fmt.Sprintf("%s, you are already registered for %s.", actor.Name, hackathon.Name))
	}
	a.logger.Info("hacker registered", "hacker", actor.ID, "hackathon", hackathon.ID)
	return a.SendText(chatID, fmt.Sprintf("Welcome, %s! You are registered for %s.", actor.Name, hackathon.Name))
}

func (a *App) listProjects(ctx context.Context, chatID, tgID int64) error {
	actor, ok, err := a.actor(ctx, chatID, tgID)
	if !ok {
		return err
	}
	hackathon, err := a.currentHackathon(ctx)
	if err != nil {
		return err
	}
	if hackathon == nil {
		return a.SendText(chatID, "There is no hackathon yet.")
	}
	projects, err := a.projects.Store().ProjectsFor(ctx, hackathon.ID)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return a.SendText(chatID, "No projects yet.")
	}
	for _, p := range projects {
		msg := tgbotapi.NewMessage(chatID, projectText(p))
		if kb, ok := projectKeyboard(actor, hackathon, p); ok {
			msg.ReplyMarkup = kb
		}
		if _, err := a.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Callback handling ----------

func (a *App) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q.Message == nil {
		return nil
	}
	chatID := q.Message.Chat.ID

	action, id, ok := parseCallback(q.Data)
	if !ok {
		a.answer(q, "")
		return nil
	}
	actor, ok, err := a.actor(ctx, chatID, q.From.ID)
	if !ok {
		a.answer(q, "")
		return err
	}
	hackathon, err := a.currentHackathon(ctx)
	if err != nil {
		a.answer(q, "")
		return err
	}
	p, err := a.projects.Store().Project(ctx, id)
	if err != nil {
		a.answer(q, "Project not found")
		return err
	}

	var note string
	switch action {
	case cbMember:
		done, err := a.projects.ChangeMembership(ctx, actor, hackathon, p)
		if err != nil {
			a.answer(q, "Try again")
			return err
		}
		note = map[lifecycle.MembershipAction]string{
			lifecycle.Join:     "Joined",
			lifecycle.Leave:    "Left",
			lifecycle.NoChange: "Nothing changed",
		}[done]
	case cbLock:
		if _, err := a.projects.SetLocked(ctx, actor, p, !p.Locked); err != nil {
			var aerr *lifecycle.AuthorizationError
			if errors.As(err, &aerr) {
				a.answer(q, "Not allowed")
				return nil
			}
			a.answer(q, "Try again")
			return err
		}
		note = "Locked"
		if !p.Locked {
			note = "Unlocked"
		}
	}
	a.answer(q, note)

	kb, hasKB := projectKeyboard(actor, hackathon, p)
	edit := tgbotapi.NewEditMessageText(chatID, q.Message.MessageID, projectText(p))
	if hasKB {
		edit.ReplyMarkup = &kb
	}
	_, err = a.bot.Send(edit)
	return err
}

func (a *App) answer(q *tgbotapi.CallbackQuery, text string) {
	if _, err := a.bot.Request(tgbotapi.NewCallback(q.ID, text)); err != nil {
		a.logger.Warn("answer callback", "error", err)
	}
}

// ---------- helpers ----------

// actor resolves the Telegram user. ok is false when the caller should stop;
// unknown users are told so and err is nil.
func (a *App) actor(ctx context.Context, chatID, tgID int64) (*models.Hacker, bool, error) {
	h, err := a.hackers.ByTelegram(ctx, tgID)
	if errors.Is(err, sheets.ErrNotFound) {
		return nil, false, a.SendText(chatID, fmt.Sprintf("You are not on the hacker list yet. Ask an organizer to add Telegram id %d.", tgID))
	}
	if err != nil {
		return nil, false, err
	}
	return h, true, nil
}

func (a *App) currentHackathon(ctx context.Context) (*models.Hackathon, error) {
	h, ok, err := a.projects.Store().Hackathons.Current(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return h, nil
}

func parseCallback(data string) (action, id string, ok bool) {
	for _, prefix := range []string{cbMember, cbLock} {
		if rest, found := strings.CutPrefix(data, prefix); found && rest != "" {
			return prefix, rest, true
		}
	}
	return "", "", false
}

func projectText(p *models.Project) string {
	var b strings.Builder
	b.WriteString(p.Title)
	if p.Locked {
		b.WriteString(" [locked]")
	}
	b.WriteString("\n")
	b.WriteString(p.Description)
	if len(p.Technologies) > 0 {
		fmt.Fprintf(&b, "\nTech: %s", strings.Join(p.Technologies, ", "))
	}
	fmt.Fprintf(&b, "\nTeam: %d", len(p.Members))
	if len(p.Judges) > 0 {
		fmt.Fprintf(&b, "\nJudges: %s", strings.Join(p.Judges, ", "))
	}
	if p.MoreInfo != "" && p.MoreInfo != sheets.Unset {
		fmt.Fprintf(&b, "\n%s", p.MoreInfo)
	}
	return b.String()
}

// projectKeyboard shows the membership button when it would do something
// and the lock toggle to those allowed to use it.
func projectKeyboard(actor *models.Hacker, hackathon *models.Hackathon, p *models.Project) (tgbotapi.InlineKeyboardMarkup, bool) {
	var row []tgbotapi.InlineKeyboardButton
	switch lifecycle.Membership(actor, hackathon, p) {
	case lifecycle.Join:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Join", cbMember+p.ID))
	case lifecycle.Leave:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Leave", cbMember+p.ID))
	}
	if lifecycle.CanLockProject(actor) {
		label := "Lock"
		if p.Locked {
			label = "Unlock"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbLock+p.ID))
	}
	if len(row) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}
