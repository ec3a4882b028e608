package lifecycle

import (
	"testing"

	"hackathon-bot/internal/models"
)

func TestCanUpdateProject(t *testing.T) {
	owner := hacker("owner")
	other := hacker("other")
	admin := hacker("admin", models.RoleAdmin)
	judge := hacker("judge", models.RoleJudge)
	staff := hacker("staff", models.RoleStaff)

	unlocked := &models.Project{OwnerID: "owner"}
	locked := &models.Project{OwnerID: "owner", Locked: true}

	tests := []struct {
		name    string
		actor   *models.Hacker
		project *models.Project
		op      Op
		want    bool
	}{
		{"owner unlocked", owner, unlocked, OpEdit, true},
		{"owner locked", owner, locked, OpEdit, false},
		{"admin locked", admin, locked, OpEdit, true},
		{"judge locked", judge, locked, OpEdit, true},
		{"staff locked", staff, locked, OpEdit, true},
		{"other unlocked", other, unlocked, OpEdit, false},
		{"new project", other, nil, OpNew, true},
		{"edit without project", other, nil, OpEdit, false},
		{"no actor", nil, unlocked, OpNew, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanUpdateProject(tc.actor, tc.project, tc.op); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanLockProject(t *testing.T) {
	if CanLockProject(hacker("owner")) {
		t.Error("plain hacker should not lock")
	}
	if CanLockProject(nil) {
		t.Error("nil actor should not lock")
	}
	for _, role := range []string{models.RoleAdmin, models.RoleJudge, models.RoleStaff} {
		if !CanLockProject(hacker("x", role)) {
			t.Errorf("%s should lock", role)
		}
	}
}

func TestCanDeleteAndJudges(t *testing.T) {
	owner := hacker("owner")
	if !CanDeleteProject(owner, &models.Project{OwnerID: "owner"}) {
		t.Error("owner should delete unlocked project")
	}
	if CanDeleteProject(owner, &models.Project{OwnerID: "owner", Locked: true}) {
		t.Error("owner should not delete locked project")
	}
	if CanChangeJudges(hacker("j", models.RoleJudge)) {
		t.Error("judges should not assign judges")
	}
	if !CanChangeJudges(hacker("a", models.RoleAdmin)) {
		t.Error("admin should assign judges")
	}
}
