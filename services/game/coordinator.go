package game

import (
	game_constants "Howler/constants/game"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ErrGameStateNotFound = errors.New("game state not found")
	ErrWrongPhase        = errors.New("action not valid in the current phase")
	ErrGameEnded         = errors.New("game already ended")
	ErrNightInProgress   = errors.New("night phase advances automatically")
	ErrBarrierOpen       = errors.New("a response barrier is already open for this room")
)

// Broadcaster is the outbound boundary: the socket layer implements it,
// tests substitute a recorder.
type Broadcaster interface {
	ToRoom(roomCode string, event string, payload gin.H)
	ToPlayer(playerID string, event string, payload gin.H)
}

// StateMirror mirrors room state into an external read model (Redis),
// so the REST surface never touches the live state machine.
type StateMirror interface {
	SaveSnapshot(room *Room, state *GameState)
	AppendAction(roomCode string, action RoomAction)
}

// Archiver persists a finished game's outcome.
type Archiver interface {
	ArchiveGame(roomCode string, winner string, rounds int, players []*Player) error
}

// Coordinator is the per-room phase state machine. It sequences the
// night sub-steps role by role, waits on one response barrier at a time,
// delegates resolution to the night and voting engines, and checks the
// win condition after every elimination. All GameState mutation is
// serialized by the coordinator mutex; the barriers are the only
// suspension points and serialize their own submissions.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	states   map[string]*GameState
	barriers map[string]*Barrier

	broadcast Broadcaster
	scheduler *TaskScheduler

	// Optional collaborators, wired by main.
	Mirror   StateMirror
	Archiver Archiver

	VotingTimeout    time.Duration
	NightStepTimeout time.Duration
	NightStartPause  time.Duration
	NightResultPause time.Duration
}

func NewCoordinator(registry *Registry, broadcast Broadcaster) *Coordinator {
	return &Coordinator{
		registry:         registry,
		states:           make(map[string]*GameState),
		barriers:         make(map[string]*Barrier),
		broadcast:        broadcast,
		scheduler:        NewTaskScheduler(),
		VotingTimeout:    game_constants.VOTING_TIMEOUT,
		NightStepTimeout: game_constants.NIGHT_STEP_TIMEOUT,
		NightStartPause:  game_constants.NIGHT_START_PAUSE,
		NightResultPause: game_constants.NIGHT_RESULT_PAUSE,
	}
}

// InitSession creates the GameState for a room once every approved
// player is ready. The state owns the room's approved players directly,
// it does not fork them. A room with a live session keeps it: a
// re-delivered ready event must not revive dead players or reset the
// phase of a running game.
func (c *Coordinator) InitSession(roomCode, gmRoomID string) error {
	room, ok := c.registry.Room(roomCode)
	if !ok {
		return ErrRoomNotFound
	}
	approved := room.ApprovedPlayers()
	if len(approved) == 0 {
		return fmt.Errorf("room %s has no approved players", roomCode)
	}
	round := room.Round
	if round == 0 {
		round = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, exists := c.states[roomCode]; exists && existing.Phase != PhaseEnded {
		return nil
	}
	for _, p := range approved {
		p.Alive = true
	}
	c.states[roomCode] = &GameState{
		RoomCode: roomCode,
		Phase:    PhaseWaiting,
		Round:    round,
		Players:  approved,
		GMRoomID: gmRoomID,
	}
	return nil
}

// SetGMRoom binds the GM's private narration room.
func (c *Coordinator) SetGMRoom(roomCode, gmRoomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[roomCode]
	if !ok {
		return false
	}
	state.GMRoomID = gmRoomID
	return true
}

// State returns the live session for a room.
func (c *Coordinator) State(roomCode string) (*GameState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[roomCode]
	return state, ok
}

// AdvancePhase is the host's "next phase" trigger. Night advances by
// itself once its barriers resolve; voting concludes early on a host
// override.
func (c *Coordinator) AdvancePhase(roomCode string) error {
	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok {
		c.mu.Unlock()
		return ErrGameStateNotFound
	}
	phase, round := state.Phase, state.Round
	c.mu.Unlock()

	switch phase {
	case PhaseWaiting, PhaseConclude:
		return c.StartNight(roomCode)
	case PhaseNight:
		return ErrNightInProgress
	case PhaseDay:
		return c.StartVoting(roomCode)
	case PhaseVoting:
		c.ConcludeVoting(roomCode, round)
		return nil
	default:
		return ErrGameEnded
	}
}

// StartNight moves the room into the night phase and launches the night
// loop. From conclude the round counter increments.
func (c *Coordinator) StartNight(roomCode string) error {
	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok {
		c.mu.Unlock()
		return ErrGameStateNotFound
	}
	if state.Phase != PhaseWaiting && state.Phase != PhaseConclude {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	if state.Phase == PhaseConclude {
		state.Round++
	}
	state.Phase = PhaseNight
	state.clearNightTargets()
	state.HunterTarget = ""
	state.resetBallots()
	c.mu.Unlock()

	c.registry.SetPhase(roomCode, PhaseNight)
	c.scheduler.Cancel(roomCode)
	go c.runNight(roomCode)
	return nil
}

// runNight walks the fixed role order, soliciting each role with a
// response barrier and applying the answers, then resolves the night.
func (c *Coordinator) runNight(roomCode string) {
	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok {
		c.mu.Unlock()
		return
	}
	round := state.Round
	gmRoom := state.GMRoomID
	c.mu.Unlock()

	log.Printf("[NIGHT] Starting night %d for room %s", round, roomCode)
	c.mirrorRoom(roomCode)
	c.broadcast.ToRoom(roomCode, "phase_changed", gin.H{"phase": PhaseNight, "round": round})
	c.narrateNight(gmRoom, "night_start", "start", "Night falls. Everyone, close your eyes.", nil, nil)

	// Give clients a moment to render the phase change.
	time.Sleep(c.NightStartPause)

	for _, role := range NightOrder {
		c.mu.Lock()
		state, ok = c.states[roomCode]
		if !ok || state.Phase != PhaseNight {
			c.mu.Unlock()
			return
		}
		holders := state.PlayersByRole(role)
		if len(holders) == 0 {
			c.mu.Unlock()
			continue
		}
		state.CurrentNightStep = role
		holderIDs := make([]string, len(holders))
		roster := make([]gin.H, len(holders))
		for i, p := range holders {
			holderIDs[i] = p.ID
			roster[i] = gin.H{"id": p.ID, "username": p.Username}
		}
		request := c.buildRoleRequest(state, role)
		c.mu.Unlock()

		c.narrateNight(gmRoom, string(role), "start",
			fmt.Sprintf("%s, wake up.", roleDisplayName(role)), roster, nil)

		barrier, err := c.openBarrier(roomCode, holderIDs, c.nightSubmitHook(roomCode))
		if err != nil {
			log.Printf("[NIGHT-ERROR] Could not open %s barrier for room %s: %v", role, roomCode, err)
			continue
		}
		for _, id := range holderIDs {
			c.broadcast.ToPlayer(id, "role_action_request", request)
		}

		responses := barrier.Await(c.NightStepTimeout)
		c.closeBarrier(roomCode, barrier)
		if len(responses) < len(holderIDs) {
			log.Printf("[NIGHT-WARN] %s step for room %s resolved with %d/%d responses",
				role, roomCode, len(responses), len(holderIDs))
		}

		c.mu.Lock()
		c.applyNightResponses(state, role, responses)
		state.CurrentNightStep = ""
		c.mu.Unlock()

		c.narrateNight(gmRoom, string(role), "complete",
			fmt.Sprintf("%s, close your eyes.", roleDisplayName(role)), nil, responseRoster(responses))
	}

	c.resolveNight(roomCode)
}

// nightSubmitHook records a hunter's declaration the moment it is
// submitted, without waiting for the step to resolve.
func (c *Coordinator) nightSubmitHook(roomCode string) func(string, NightAction) {
	return func(playerID string, action NightAction) {
		shot, ok := action.(HunterShot)
		if !ok || shot.TargetID == "" {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if state, exists := c.states[roomCode]; exists {
			state.HunterTarget = shot.TargetID
		}
	}
}

// SubmitNightAction feeds one player's role response into the room's
// open barrier. Duplicate or out-of-step submissions are silently
// dropped (accepted=false); a missing game state is the only error.
func (c *Coordinator) SubmitNightAction(roomCode, playerID string, action NightAction) (accepted bool, err error) {
	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok {
		c.mu.Unlock()
		return false, ErrGameStateNotFound
	}
	barrier, open := c.barriers[roomCode]
	step := state.CurrentNightStep
	c.mu.Unlock()

	if !open || action.ActingRole() != step {
		return false, nil
	}
	return barrier.Submit(playerID, action), nil
}

func (c *Coordinator) openBarrier(roomCode string, expected []string, hook func(string, NightAction)) (*Barrier, error) {
	if len(expected) == 0 {
		return nil, errors.New("no expected responders")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.barriers[roomCode]; ok && existing.State() == BarrierOpen {
		return nil, ErrBarrierOpen
	}
	barrier := newBarrier(expected, hook)
	c.barriers[roomCode] = barrier
	return barrier, nil
}

func (c *Coordinator) closeBarrier(roomCode string, barrier *Barrier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.barriers[roomCode] == barrier {
		delete(c.barriers, roomCode)
	}
}

// buildRoleRequest assembles the role-specific solicitation payload.
// Candidate lists differ per role; only the seer's list carries the
// werewolf flag, so the ground truth never reaches other roles.
func (c *Coordinator) buildRoleRequest(state *GameState, role Role) gin.H {
	request := gin.H{"role": role}
	var candidates []gin.H

	switch role {
	case RoleWerewolf:
		for _, p := range state.AlivePlayers() {
			if p.Role == RoleWerewolf {
				continue
			}
			candidates = append(candidates, gin.H{"id": p.ID, "username": p.Username})
		}
		request["message"] = "Werewolves, choose tonight's victim."
	case RoleSeer:
		for _, p := range state.AlivePlayers() {
			if p.Role == RoleSeer {
				continue
			}
			candidates = append(candidates, gin.H{
				"id":          p.ID,
				"username":    p.Username,
				"is_red_flag": p.Role == RoleWerewolf,
			})
		}
		request["message"] = "Seer, choose someone to inspect."
	case RoleWitch:
		for _, p := range state.AlivePlayers() {
			candidates = append(candidates, gin.H{"id": p.ID, "username": p.Username})
		}
		request["message"] = "Witch, wake up."
		request["killed_player_id"] = state.WerewolfTarget
		request["can_heal"] = !state.Witch.HealUsed
		request["can_poison"] = !state.Witch.PoisonUsed
	case RoleBodyguard:
		for _, p := range state.AlivePlayers() {
			if p.ID == state.LastProtected {
				continue
			}
			candidates = append(candidates, gin.H{"id": p.ID, "username": p.Username})
		}
		request["message"] = "Bodyguard, choose someone to protect."
		request["last_protected"] = state.LastProtected
	case RoleHunter:
		for _, p := range state.AlivePlayers() {
			candidates = append(candidates, gin.H{"id": p.ID, "username": p.Username})
		}
		request["message"] = "Hunter, declare your revenge target."
	}

	request["candidates"] = candidates
	return request
}

// applyNightResponses folds a resolved step's answers into the state.
// Caller holds the coordinator mutex.
func (c *Coordinator) applyNightResponses(state *GameState, role Role, responses []BarrierResponse) {
	switch role {
	case RoleWerewolf:
		var ballots []Ballot
		for _, resp := range responses {
			if vote, ok := resp.Action.(WerewolfVote); ok && vote.TargetID != "" {
				ballots = append(ballots, Ballot{VoterID: resp.PlayerID, TargetID: vote.TargetID})
			}
		}
		target, _ := TallyVotes(ballots)
		state.WerewolfTarget = target
	case RoleSeer:
		for _, resp := range responses {
			if check, ok := resp.Action.(SeerCheck); ok && check.TargetID != "" {
				state.SeerTarget = check.TargetID
				break
			}
		}
	case RoleWitch:
		for _, resp := range responses {
			action, ok := resp.Action.(WitchAction)
			if !ok {
				continue
			}
			if action.Heal && !state.Witch.HealUsed && state.WerewolfTarget != "" {
				state.Witch.HealUsed = true
				state.Witch.HealTarget = state.WerewolfTarget
			}
			if action.PoisonTargetID != "" && !state.Witch.PoisonUsed {
				state.Witch.PoisonUsed = true
				state.Witch.PoisonTarget = action.PoisonTargetID
			}
			break
		}
	case RoleBodyguard:
		for _, resp := range responses {
			protect, ok := resp.Action.(BodyguardProtect)
			if !ok || protect.TargetID == "" || protect.TargetID == state.LastProtected {
				continue
			}
			state.BodyguardTarget = protect.TargetID
			state.LastProtected = protect.TargetID
			break
		}
	case RoleHunter:
		for _, resp := range responses {
			if shot, ok := resp.Action.(HunterShot); ok && shot.TargetID != "" {
				state.HunterTarget = shot.TargetID
				break
			}
		}
	}
}

// resolveNight runs the night resolution engine, checks the win
// condition and either ends the game or schedules the day phase.
func (c *Coordinator) resolveNight(roomCode string) {
	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok || state.Phase != PhaseNight {
		c.mu.Unlock()
		return
	}
	result := ResolveNight(state)
	winner := CheckWin(state)
	gmRoom := state.GMRoomID
	var diedNames []string
	for _, id := range result.Died {
		if p := state.Player(id); p != nil {
			diedNames = append(diedNames, p.Username)
		}
	}
	c.mu.Unlock()

	log.Printf("[NIGHT-RESOLVE] Room %s: %d death(s), cause=%s, winner=%q",
		roomCode, len(result.Died), result.Cause, winner)
	c.recordAction(roomCode, "night_resolved", "", strings.Join(result.Died, ","))
	c.mirrorRoom(roomCode)

	c.broadcast.ToRoom(roomCode, "night_result", gin.H{
		"died_player_ids": result.Died,
		"cause":           result.Cause,
	})
	if winner != "" {
		c.endGame(roomCode, winner)
		return
	}

	message := "The sun rises. Nobody died last night."
	if len(diedNames) > 0 {
		message = fmt.Sprintf("The sun rises. Last night we lost: %s.", strings.Join(diedNames, ", "))
	}
	c.narrateNight(gmRoom, "night_end", "end", message, nil, nil)
	c.scheduler.Schedule(roomCode, c.NightResultPause, func() {
		if err := c.StartDay(roomCode); err != nil {
			log.Printf("[NIGHT-RESOLVE-ERROR] Could not start day for room %s: %v", roomCode, err)
		}
	})
}

// StartDay opens the discussion phase. No player action is collected;
// the host advances to voting.
func (c *Coordinator) StartDay(roomCode string) error {
	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok {
		c.mu.Unlock()
		return ErrGameStateNotFound
	}
	if state.Phase != PhaseNight {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	state.Phase = PhaseDay
	gmRoom := state.GMRoomID
	c.mu.Unlock()

	c.registry.SetPhase(roomCode, PhaseDay)
	c.mirrorRoom(roomCode)
	c.broadcast.ToRoom(roomCode, "phase_changed", gin.H{"phase": PhaseDay})
	c.narrateVoting(gmRoom, "phase_changed", "Daytime. Discuss your suspicions.")
	return nil
}

// StartVoting opens the voting window and arms its deadline. The
// deadline task force-tallies whatever ballots exist.
func (c *Coordinator) StartVoting(roomCode string) error {
	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok {
		c.mu.Unlock()
		return ErrGameStateNotFound
	}
	if state.Phase != PhaseDay {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	state.Phase = PhaseVoting
	state.resetBallots()
	round := state.Round
	gmRoom := state.GMRoomID
	c.mu.Unlock()

	c.registry.SetPhase(roomCode, PhaseVoting)
	c.scheduler.Schedule(roomCode, c.VotingTimeout, func() {
		c.ConcludeVoting(roomCode, round)
	})

	c.mirrorRoom(roomCode)
	c.broadcast.ToRoom(roomCode, "phase_changed", gin.H{
		"phase":           PhaseVoting,
		"timeout_seconds": int(c.VotingTimeout.Seconds()),
	})
	c.narrateVoting(gmRoom, "phase_changed",
		fmt.Sprintf("Voting begins. You have %d seconds.", int(c.VotingTimeout.Seconds())))
	return nil
}

// SubmitVote registers one living player's ballot during the voting
// window. The first ballot per voter is kept.
func (c *Coordinator) SubmitVote(roomCode, playerID, targetID string) (accepted bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[roomCode]
	if !ok {
		return false, ErrGameStateNotFound
	}
	if state.Phase != PhaseVoting {
		return false, ErrWrongPhase
	}
	voter := state.Player(playerID)
	if voter == nil || !voter.Alive {
		return false, nil
	}
	return state.RecordVote(playerID, targetID), nil
}

// ConcludeVoting tallies the ballots, applies the elimination (with the
// hunter's deferred revenge shot when the hunter is voted out), checks
// the win condition and advances to conclude or ended. The expectedRound
// guard makes a stale deadline callback harmless.
func (c *Coordinator) ConcludeVoting(roomCode string, expectedRound int) {
	c.scheduler.Cancel(roomCode)

	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok || state.Phase != PhaseVoting || state.Round != expectedRound {
		if ok {
			log.Printf("[VOTING-WARN] Stale or invalid tally for room %s (phase=%s round=%d expected=%d), skipping",
				roomCode, state.Phase, state.Round, expectedRound)
		}
		c.mu.Unlock()
		return
	}

	eliminatedID, votes := TallyVotes(state.ballots)
	cause := CauseVote
	hunterShotID := ""
	if eliminated := state.Player(eliminatedID); eliminated != nil {
		eliminated.Alive = false
		if eliminated.Role == RoleHunter {
			// The hunter's own death stands; the round does not conclude
			// until the declared shot resolves, which it does right here.
			cause = CauseHunter
			if state.HunterTarget != "" && state.HunterTarget != eliminatedID {
				if shot := state.Player(state.HunterTarget); shot != nil && shot.Alive {
					shot.Alive = false
					hunterShotID = shot.ID
				}
			}
			state.HunterTarget = ""
		}
	}
	winner := CheckWin(state)
	if winner == "" {
		state.Phase = PhaseConclude
	}
	state.resetBallots()
	gmRoom := state.GMRoomID
	eliminatedName := ""
	if p := state.Player(eliminatedID); p != nil {
		eliminatedName = p.Username
	}
	c.mu.Unlock()

	log.Printf("[VOTING] Room %s: eliminated=%q (%d votes), cause=%s, winner=%q",
		roomCode, eliminatedID, votes, cause, winner)
	if winner == "" {
		c.registry.SetPhase(roomCode, PhaseConclude)
	}
	c.recordAction(roomCode, "vote_concluded", "", eliminatedID)
	c.mirrorRoom(roomCode)

	payload := gin.H{
		"eliminated_player_id": eliminatedID,
		"cause":                cause,
	}
	if hunterShotID != "" {
		payload["hunter_shot_player_id"] = hunterShotID
	}
	c.broadcast.ToRoom(roomCode, "voting_result", payload)

	if eliminatedID == "" {
		c.narrateVoting(gmRoom, "voting_ended", "The vote ended with no elimination.")
	} else {
		c.narrateVoting(gmRoom, "voting_ended", fmt.Sprintf("%s was voted out.", eliminatedName))
	}

	if winner != "" {
		c.endGame(roomCode, winner)
		return
	}
	c.broadcast.ToRoom(roomCode, "phase_changed", gin.H{"phase": PhaseConclude})
}

// endGame moves the room to the terminal phase and archives the result.
func (c *Coordinator) endGame(roomCode, winner string) {
	c.mu.Lock()
	state, ok := c.states[roomCode]
	if !ok {
		c.mu.Unlock()
		return
	}
	state.Phase = PhaseEnded
	gmRoom := state.GMRoomID
	rounds := state.Round
	players := append([]*Player(nil), state.Players...)
	barrier := c.barriers[roomCode]
	delete(c.barriers, roomCode)
	c.mu.Unlock()

	if barrier != nil {
		barrier.Discard()
	}
	c.scheduler.Cancel(roomCode)

	log.Printf("[GAME-END] Room %s: winner=%s after %d round(s)", roomCode, winner, rounds)
	c.registry.SetPhase(roomCode, PhaseEnded)
	c.recordAction(roomCode, "game_ended", "", winner)
	c.mirrorRoom(roomCode)

	c.broadcast.ToRoom(roomCode, "game_ended", gin.H{"winner": winner})
	if gmRoom != "" {
		c.broadcast.ToRoom(gmRoom, "gm_game_ended", gin.H{
			"type":    "game_ended",
			"message": fmt.Sprintf("The game is over. The %s win!", winner),
			"winner":  winner,
		})
	}

	if c.Archiver != nil {
		if err := c.Archiver.ArchiveGame(roomCode, winner, rounds, players); err != nil {
			log.Printf("[GAME-END-ERROR] Could not archive game for room %s: %v", roomCode, err)
		}
	}
}

func (c *Coordinator) mirrorRoom(roomCode string) {
	if c.Mirror == nil {
		return
	}
	room, ok := c.registry.Room(roomCode)
	if !ok {
		return
	}
	state, _ := c.State(roomCode)
	c.Mirror.SaveSnapshot(room, state)
}

func (c *Coordinator) recordAction(roomCode, actionType, actor, target string) {
	action, ok := c.registry.RecordAction(roomCode, actionType, actor, target)
	if ok && c.Mirror != nil {
		c.Mirror.AppendAction(roomCode, action)
	}
}

func (c *Coordinator) narrateNight(gmRoom, step, action, message string, players []gin.H, responses []gin.H) {
	if gmRoom == "" {
		return
	}
	payload := gin.H{
		"step":      step,
		"action":    action,
		"message":   message,
		"timestamp": time.Now().UnixMilli(),
	}
	if players != nil {
		payload["players"] = players
	}
	if responses != nil {
		payload["responses"] = responses
	}
	c.broadcast.ToRoom(gmRoom, "gm_night_action", payload)
}

func (c *Coordinator) narrateVoting(gmRoom, eventType, message string) {
	if gmRoom == "" {
		return
	}
	c.broadcast.ToRoom(gmRoom, "gm_voting_action", gin.H{
		"type":    eventType,
		"message": message,
	})
}

func responseRoster(responses []BarrierResponse) []gin.H {
	roster := make([]gin.H, len(responses))
	for i, resp := range responses {
		roster[i] = gin.H{"player_id": resp.PlayerID}
	}
	return roster
}

func roleDisplayName(role Role) string {
	switch role {
	case RoleWerewolf:
		return "Werewolves"
	case RoleSeer:
		return "Seer"
	case RoleWitch:
		return "Witch"
	case RoleBodyguard:
		return "Bodyguard"
	case RoleHunter:
		return "Hunter"
	default:
		return "Villagers"
	}
}
