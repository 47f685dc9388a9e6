package game

import (
	"time"
)

// Role is a player's secret power assignment for one game.
type Role string

const (
	RoleVillager  Role = "villager"
	RoleWerewolf  Role = "werewolf"
	RoleSeer      Role = "seer"
	RoleWitch     Role = "witch"
	RoleBodyguard Role = "bodyguard"
	RoleHunter    Role = "hunter"
)

// NightOrder is the fixed sequence of role solicitations during the night
// phase. Roles with no living holder are skipped.
var NightOrder = []Role{RoleWerewolf, RoleSeer, RoleWitch, RoleBodyguard, RoleHunter}

// ValidRole reports whether r belongs to the known role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleVillager, RoleWerewolf, RoleSeer, RoleWitch, RoleBodyguard, RoleHunter:
		return true
	}
	return false
}

// Phase governs which actions are valid for a room.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseNight    Phase = "night"
	PhaseDay      Phase = "day"
	PhaseVoting   Phase = "voting"
	PhaseConclude Phase = "conclude"
	PhaseEnded    Phase = "ended"
)

type PlayerStatus string

const (
	StatusPending  PlayerStatus = "pending"
	StatusApproved PlayerStatus = "approved"
	StatusRejected PlayerStatus = "rejected"
	StatusHost     PlayerStatus = "host"
)

// Player is one connected participant of a room. The ID is the opaque
// session (socket) id of the connection that joined.
type Player struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	AvatarKey int          `json:"avatar_key"`
	Status    PlayerStatus `json:"status"`
	Alive     bool         `json:"alive"`
	Ready     bool         `json:"ready"`
	Role      Role         `json:"role,omitempty"`
}

// RoomAction is one entry of a room's append-only audit trail.
type RoomAction struct {
	Type      string    `json:"type"`
	Actor     string    `json:"actor,omitempty"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Room is one game session, identified by a generated code. Players are
// kept in join order.
type Room struct {
	Code    string
	HostID  string
	Players []*Player
	Phase   Phase
	Round   int
	Actions []RoomAction

	// bcrypt hash of the room passcode; empty for open rooms.
	passcodeHash []byte
}

// Player returns the room member with the given id, or nil.
func (r *Room) Player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ApprovedPlayers returns the members with approved status, in join order.
func (r *Room) ApprovedPlayers() []*Player {
	var approved []*Player
	for _, p := range r.Players {
		if p.Status == StatusApproved {
			approved = append(approved, p)
		}
	}
	return approved
}

// AppendAction records an audit entry on the room.
func (r *Room) AppendAction(actionType, actor, target string) RoomAction {
	action := RoomAction{
		Type:      actionType,
		Actor:     actor,
		Target:    target,
		Timestamp: time.Now(),
	}
	r.Actions = append(r.Actions, action)
	return action
}
