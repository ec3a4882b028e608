package store

import (
	"context"
	"slices"
	"testing"
	"time"

	"hackathon-bot/internal/models"
	"hackathon-bot/internal/sheets"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(sheets.NewMemory())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestProjectLayout(t *testing.T) {
	want := []string{
		"_id", "_updated", "_user_id", "_hackathon_id", "title", "description", "date_created",
		"project_type", "contestant", "locked", "technologies", "more_info",
	}
	if got := newTestStore(t).Projects.Header(); !slices.Equal(got, want) {
		t.Fatalf("header = %v, want %v", got, want)
	}
}

func TestProjectCodecRoundTrip(t *testing.T) {
	codec := projectCodec()
	rows := [][]string{
		{"u1", "h1", "Lookers", "A thing", "2020-10-07T18:30:00Z", "Open", "TRUE", "FALSE", "LookML,Python", sheets.Unset},
		{"u2", "h1", "Other", "", sheets.Unset, "Invite Only", "FALSE", "TRUE", "", "https://example.com"},
	}
	for _, cells := range rows {
		p, errs := codec.Decode(sheets.Record{ID: "p", Version: "v", Cells: cells})
		if len(errs) != 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		if got := codec.Encode(p).Cells; !slices.Equal(got, cells) {
			t.Fatalf("round trip:\n got %q\nwant %q", got, cells)
		}
	}
}

func TestRegistrationCreateMarksAttended(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	reg, err := s.Registrations.Create(ctx, &models.Registration{UserID: "u1", HackathonID: "h1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !reg.Attended || reg.DateRegistered.IsZero() {
		t.Fatalf("registration not prepared: %+v", reg)
	}

	got, ok, err := s.Registrations.Find(ctx, "u1", "h1")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if !got.Attended {
		t.Fatal("attended not persisted")
	}
	if _, ok, _ := s.Registrations.Find(ctx, "u1", "h2"); ok {
		t.Fatal("found registration for other hackathon")
	}
}

func TestForHackathonFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, h := range []string{"h1", "h2", "h1"} {
		if _, err := s.Registrations.Create(ctx, &models.Registration{UserID: "u", HackathonID: h}); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := s.Projects.Create(ctx, &models.Project{Title: "t", HackathonID: h}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	regs, err := s.Registrations.ForHackathon(ctx, "h1")
	if err != nil || len(regs) != 2 {
		t.Fatalf("registrations: %d, %v", len(regs), err)
	}
	projects, err := s.Projects.ForHackathon(ctx, "h2")
	if err != nil || len(projects) != 1 {
		t.Fatalf("projects: %d, %v", len(projects), err)
	}
}

func TestHackathonsCurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Hackathons.Current(ctx); ok || err != nil {
		t.Fatalf("empty table: ok=%v err=%v", ok, err)
	}

	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	old, _ := s.Hackathons.Create(ctx, &models.Hackathon{Name: "old", Date: base})
	newer, _ := s.Hackathons.Create(ctx, &models.Hackathon{Name: "newer", Date: base.AddDate(1, 0, 0)})

	cur, _, _ := s.Hackathons.Current(ctx)
	if cur.ID != newer.ID {
		t.Fatalf("current = %s, want latest", cur.Name)
	}

	old.Default = true
	if _, err := s.Hackathons.Update(ctx, old); err != nil {
		t.Fatalf("update: %v", err)
	}
	cur, _, _ = s.Hackathons.Current(ctx)
	if cur.ID != old.ID {
		t.Fatalf("current = %s, want default", cur.Name)
	}
}

func TestProjectHydration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := s.Hackers.Create(ctx, &models.Hacker{Name: "Alice", Roles: []string{models.RoleJudge}})
	bob, _ := s.Hackers.Create(ctx, &models.Hacker{Name: "Bob"})
	p, _ := s.Projects.Create(ctx, &models.Project{Title: "p", HackathonID: "h1"})
	other, _ := s.Projects.Create(ctx, &models.Project{Title: "q", HackathonID: "h1"})

	_, _ = s.TeamMembers.Create(ctx, &models.TeamMember{UserID: bob.ID, ProjectID: p.ID})
	_, _ = s.TeamMembers.Create(ctx, &models.TeamMember{UserID: alice.ID, ProjectID: other.ID})
	_, _ = s.Judgings.Create(ctx, &models.Judging{UserID: alice.ID, ProjectID: p.ID})
	_, _ = s.Judgings.Create(ctx, &models.Judging{UserID: "gone", ProjectID: p.ID})

	got, err := s.Project(ctx, p.ID)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if !slices.Equal(got.Members, []string{bob.ID}) {
		t.Fatalf("members = %v", got.Members)
	}
	if !slices.Equal(got.Judges, []string{"Alice"}) {
		t.Fatalf("judges = %v", got.Judges)
	}

	all, err := s.ProjectsFor(ctx, "h1")
	if err != nil || len(all) != 2 {
		t.Fatalf("projects for: %d, %v", len(all), err)
	}
	if !slices.Equal(all[1].Members, []string{alice.ID}) {
		t.Fatalf("other members = %v", all[1].Members)
	}

	judges, err := s.Hackers.Judges(ctx)
	if err != nil || len(judges) != 1 || judges[0].Name != "Alice" {
		t.Fatalf("judges: %v, %v", judges, err)
	}
}

func TestInitRejectsReorderedTab(t *testing.T) {
	backend := sheets.NewMemory()
	ctx := context.Background()
	if err := backend.EnsureTable(ctx, TabHackers, []string{"_id", "_updated", "roles", "name", "tg_id"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := New(backend).Init(ctx); err == nil {
		t.Fatal("expected header mismatch")
	}
}
