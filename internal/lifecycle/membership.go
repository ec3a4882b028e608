package lifecycle

import "hackathon-bot/internal/models"

type MembershipAction int

const (
	NoChange MembershipAction = iota
	Join
	Leave
)

func (a MembershipAction) String() string {
	switch a {
	case Join:
		return "join"
	case Leave:
		return "leave"
	default:
		return "nochange"
	}
}

// Membership decides what the actor's membership button does for project.
// Locked projects and a missing hackathon or project never change.
func Membership(actor *models.Hacker, hackathon *models.Hackathon, project *models.Project) MembershipAction {
	if actor == nil || hackathon == nil || project == nil || project.Locked {
		return NoChange
	}
	if project.IsMember(actor.ID) {
		return Leave
	}
	if len(project.Members) < hackathon.MaxTeamSize {
		return Join
	}
	return NoChange
}
