package game

// NightAction is the payload a player submits for their role's night
// step. One concrete variant exists per acting role, so a submission can
// never be applied to the wrong step.
type NightAction interface {
	// ActingRole names the night step this action belongs to.
	ActingRole() Role
}

// WerewolfVote is one werewolf's pick for the pack's victim. The pack
// target is the plurality of all werewolf votes.
type WerewolfVote struct {
	TargetID string
}

func (WerewolfVote) ActingRole() Role { return RoleWerewolf }

// SeerCheck is the seer's nightly investigation target.
type SeerCheck struct {
	TargetID string
}

func (SeerCheck) ActingRole() Role { return RoleSeer }

// WitchAction carries both witch decisions: whether to spend the heal
// potion on tonight's werewolf victim, and an optional poison target.
type WitchAction struct {
	Heal           bool
	PoisonTargetID string
}

func (WitchAction) ActingRole() Role { return RoleWitch }

// BodyguardProtect is the bodyguard's protection target for the night.
type BodyguardProtect struct {
	TargetID string
}

func (BodyguardProtect) ActingRole() Role { return RoleBodyguard }

// HunterShot declares the hunter's revenge target. The shot only fires
// when the hunter dies; an empty target means the hunter holds fire.
type HunterShot struct {
	TargetID string
}

func (HunterShot) ActingRole() Role { return RoleHunter }
