package game

// Death causes reported with night and voting results.
const (
	CauseNone      = "none"
	CauseWerewolf  = "werewolf"
	CauseWitch     = "witch"
	CauseProtected = "protected"
	CauseVote      = "vote"
	CauseHunter    = "hunter"
)

// Winner values for the end-of-game broadcast.
const (
	WinnerVillagers  = "villagers"
	WinnerWerewolves = "werewolves"
)

// WitchState tracks the witch's two single-use potions. The Used flags
// are permanent for the game; the targets are round-scoped.
type WitchState struct {
	HealUsed     bool
	PoisonUsed   bool
	HealTarget   string
	PoisonTarget string
}

// GameState is the per-room session state, created when all approved
// players are ready. Players is the Room's own player list, not a copy.
type GameState struct {
	RoomCode string
	Phase    Phase
	Round    int
	Players  []*Player
	GMRoomID string

	WerewolfTarget   string
	SeerTarget       string
	BodyguardTarget  string
	HunterTarget     string
	Witch            WitchState
	LastProtected    string
	CurrentNightStep Role

	ballots []Ballot
	voted   map[string]bool
}

// Player returns the session member with the given id, or nil.
func (gs *GameState) Player(id string) *Player {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AlivePlayers returns the living members in join order.
func (gs *GameState) AlivePlayers() []*Player {
	var alive []*Player
	for _, p := range gs.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// PlayersByRole returns the living holders of a role.
func (gs *GameState) PlayersByRole(role Role) []*Player {
	var holders []*Player
	for _, p := range gs.Players {
		if p.Alive && p.Role == role {
			holders = append(holders, p)
		}
	}
	return holders
}

// clearNightTargets resets the round-scoped action slots. LastProtected
// and the witch potion flags survive across rounds. HunterTarget is not
// cleared here: the declaration must outlive night resolution so that a
// hunter voted out the following day still fires the declared shot. It
// is reset when a new night begins or when the shot lands.
func (gs *GameState) clearNightTargets() {
	gs.WerewolfTarget = ""
	gs.SeerTarget = ""
	gs.BodyguardTarget = ""
	gs.Witch.HealTarget = ""
	gs.Witch.PoisonTarget = ""
	gs.CurrentNightStep = ""
}

// NightResult is the deterministic outcome of one night's actions.
type NightResult struct {
	Died  []string
	Cause string
}

// ResolveNight combines the recorded night actions into the final death
// set. Precedence, in order, later rules overriding earlier ones:
// the bodyguard negates the werewolf kill on a matching target; the
// witch's heal negates it when aimed at the original werewolf target;
// poison kills unconditionally; a surviving werewolf target dies; and
// every dead hunter's declared revenge shot lands regardless of any
// protection on its target. The reported cause is the dominant one,
// last-write-wins; a night with no recorded actions reports a neutral
// cause. Round-scoped targets are cleared afterwards; LastProtected
// persists for next round's candidate exclusion.
func ResolveNight(gs *GameState) NightResult {
	result := NightResult{Cause: CauseNone}

	target := gs.WerewolfTarget
	if target != "" && gs.BodyguardTarget == target {
		target = ""
		result.Cause = CauseProtected
	}
	if gs.WerewolfTarget != "" && gs.Witch.HealUsed && gs.Witch.HealTarget == gs.WerewolfTarget {
		target = ""
		result.Cause = CauseProtected
	}
	if gs.Witch.PoisonUsed && gs.Witch.PoisonTarget != "" {
		result.Died = appendUnique(result.Died, gs.Witch.PoisonTarget)
		result.Cause = CauseWitch
	}
	if target != "" {
		result.Died = appendUnique(result.Died, target)
		result.Cause = CauseWerewolf
	}

	// Collect hunters among the dead before marking, then let their
	// declared shots land.
	var deadHunters []*Player
	for _, id := range result.Died {
		if p := gs.Player(id); p != nil {
			if p.Role == RoleHunter {
				deadHunters = append(deadHunters, p)
			}
			p.Alive = false
		}
	}
	if len(deadHunters) > 0 && gs.HunterTarget != "" {
		result.Died = appendUnique(result.Died, gs.HunterTarget)
		if shot := gs.Player(gs.HunterTarget); shot != nil {
			shot.Alive = false
		}
		gs.HunterTarget = ""
	}

	gs.clearNightTargets()
	return result
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// CheckWin evaluates the win condition over the living players. It is
// called after every elimination event. Returns the winner, or "" while
// the game continues.
func CheckWin(gs *GameState) string {
	var werewolves, others int
	for _, p := range gs.AlivePlayers() {
		if p.Role == RoleWerewolf {
			werewolves++
		} else {
			others++
		}
	}
	if werewolves == 0 {
		return WinnerVillagers
	}
	if werewolves >= others {
		return WinnerWerewolves
	}
	return ""
}
