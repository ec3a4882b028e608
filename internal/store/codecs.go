package store

import (
	"time"

	"hackathon-bot/internal/models"
	"hackathon-bot/internal/sheets"
)

// Tab names in the spreadsheet.
const (
	TabProjects      = "projects"
	TabRegistrations = "registrations"
	TabTeamMembers   = "team_members"
	TabJudgings      = "judgings"
	TabHackers       = "hackers"
	TabHackathons    = "hackathons"
)

// Column lists below must follow the sheet's column order, not field order.

func projectCodec() *sheets.Codec[*models.Project] {
	type P = *models.Project
	return sheets.NewCodec(TabProjects, func() P { return &models.Project{} },
		sheets.String("_user_id", func(p P) *string { return &p.OwnerID }),
		sheets.String("_hackathon_id", func(p P) *string { return &p.HackathonID }),
		sheets.String("title", func(p P) *string { return &p.Title }),
		sheets.String("description", func(p P) *string { return &p.Description }),
		sheets.Time("date_created", func(p P) *time.Time { return &p.DateCreated }),
		sheets.String("project_type", func(p P) *string { return &p.ProjectType }),
		sheets.Bool("contestant", func(p P) *bool { return &p.Contestant }),
		sheets.Bool("locked", func(p P) *bool { return &p.Locked }),
		sheets.List("technologies", func(p P) *[]string { return &p.Technologies }),
		sheets.OptionalString("more_info", func(p P) *string { return &p.MoreInfo }),
	)
}

func registrationCodec() *sheets.Codec[*models.Registration] {
	type R = *models.Registration
	return sheets.NewCodec(TabRegistrations, func() R { return &models.Registration{} },
		sheets.String("_user_id", func(r R) *string { return &r.UserID }),
		sheets.String("hackathon_id", func(r R) *string { return &r.HackathonID }),
		sheets.Time("date_registered", func(r R) *time.Time { return &r.DateRegistered }),
		sheets.Bool("attended", func(r R) *bool { return &r.Attended }),
	)
}

func teamMemberCodec() *sheets.Codec[*models.TeamMember] {
	type M = *models.TeamMember
	return sheets.NewCodec(TabTeamMembers, func() M { return &models.TeamMember{} },
		sheets.String("_user_id", func(m M) *string { return &m.UserID }),
		sheets.String("project_id", func(m M) *string { return &m.ProjectID }),
		sheets.Time("date_joined", func(m M) *time.Time { return &m.DateJoined }),
		sheets.OptionalString("responsibilities", func(m M) *string { return &m.Responsibilities }),
	)
}

func judgingCodec() *sheets.Codec[*models.Judging] {
	type J = *models.Judging
	return sheets.NewCodec(TabJudgings, func() J { return &models.Judging{} },
		sheets.String("_user_id", func(j J) *string { return &j.UserID }),
		sheets.String("project_id", func(j J) *string { return &j.ProjectID }),
		sheets.Int("execution", func(j J) *int { return &j.Execution }),
		sheets.Int("ambition", func(j J) *int { return &j.Ambition }),
		sheets.Int("coolness", func(j J) *int { return &j.Coolness }),
		sheets.Int("impact", func(j J) *int { return &j.Impact }),
		sheets.Int("score", func(j J) *int { return &j.Score }),
		sheets.OptionalString("notes", func(j J) *string { return &j.Notes }),
	)
}

func hackerCodec() *sheets.Codec[*models.Hacker] {
	type H = *models.Hacker
	return sheets.NewCodec(TabHackers, func() H { return &models.Hacker{} },
		sheets.String("name", func(h H) *string { return &h.Name }),
		sheets.List("roles", func(h H) *[]string { return &h.Roles }),
		sheets.String("tg_id", func(h H) *string { return &h.TgID }),
	)
}

func hackathonCodec() *sheets.Codec[*models.Hackathon] {
	type H = *models.Hackathon
	return sheets.NewCodec(TabHackathons, func() H { return &models.Hackathon{} },
		sheets.String("name", func(h H) *string { return &h.Name }),
		sheets.OptionalString("description", func(h H) *string { return &h.Description }),
		sheets.OptionalString("location", func(h H) *string { return &h.Location }),
		sheets.Time("date", func(h H) *time.Time { return &h.Date }),
		sheets.Int("duration_days", func(h H) *int { return &h.DurationDays }),
		sheets.Int("max_team_size", func(h H) *int { return &h.MaxTeamSize }),
		sheets.Time("judging_starts", func(h H) *time.Time { return &h.JudgingStarts }),
		sheets.Time("judging_stops", func(h H) *time.Time { return &h.JudgingStops }),
		sheets.Bool("default", func(h H) *bool { return &h.Default }),
	)
}
