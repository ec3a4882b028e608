package lifecycle

import (
	"fmt"

	"hackathon-bot/internal/models"
)

// Op says whether a project is being created or edited.
type Op string

const (
	OpNew  Op = "new"
	OpEdit Op = "edit"
)

// AuthorizationError is returned when an access rule denies an action
// before anything reaches the store.
type AuthorizationError struct {
	Actor  string
	Action string
	Target string
}

func (e *AuthorizationError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("hacker %q may not %s", e.Actor, e.Action)
	}
	return fmt.Sprintf("hacker %q may not %s %s", e.Actor, e.Action, e.Target)
}

// CanUpdateProject: admins, judges and staff always; anyone creating a new
// project; otherwise only the owner, and only while the project is unlocked.
func CanUpdateProject(actor *models.Hacker, project *models.Project, op Op) bool {
	if actor == nil {
		return false
	}
	if actor.Elevated() {
		return true
	}
	if op == OpNew {
		return true
	}
	return project != nil && project.OwnerID == actor.ID && !project.Locked
}

// CanLockProject is never granted to plain members or owners.
func CanLockProject(actor *models.Hacker) bool {
	return actor.Elevated()
}

// CanDeleteProject follows the edit rule for existing projects.
func CanDeleteProject(actor *models.Hacker, project *models.Project) bool {
	return project != nil && CanUpdateProject(actor, project, OpEdit)
}

// CanChangeJudges limits judge assignment to admins.
func CanChangeJudges(actor *models.Hacker) bool {
	return actor.CanAdmin()
}
