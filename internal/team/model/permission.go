package model

// Action is an operation a user may attempt on a team.
type Action string

const (
	ActionUpdate         Action = "update"
	ActionDisband        Action = "disband"
	ActionAddMember      Action = "add_member"
	ActionKick           Action = "kick"
	ActionTransfer       Action = "transfer"
	ActionInvite         Action = "invite"
	ActionLeave          Action = "leave"
	ActionRecordActivity Action = "record_activity"
	ActionJoin           Action = "join"
)

// CanPerform reports whether userID may perform action on t.
func CanPerform(t *Team, userID string, action Action) bool {
	if t == nil || userID == "" {
		return false
	}
	member := t.ActiveMember(userID)

	switch action {
	case ActionUpdate, ActionDisband, ActionAddMember, ActionKick, ActionTransfer, ActionInvite:
		return member != nil && member.Role == RoleLeader && t.LeaderID == userID
	case ActionLeave, ActionRecordActivity:
		return member != nil
	case ActionJoin:
		return member == nil && t.IsPublic && t.AllowDirectJoin && t.Status != StatusDisbanded
	default:
		return false
	}
}
