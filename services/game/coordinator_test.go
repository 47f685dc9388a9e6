package game

import (
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// recordedEvent is one captured broadcast. Target is the room code (or
// GM room id) for room events, the player id for direct events.
type recordedEvent struct {
	Target  string
	Direct  bool
	Event   string
	Payload gin.H
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
	notify chan recordedEvent
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{notify: make(chan recordedEvent, 256)}
}

func (f *fakeBroadcaster) ToRoom(roomCode, event string, payload gin.H) {
	f.record(recordedEvent{Target: roomCode, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) ToPlayer(playerID, event string, payload gin.H) {
	f.record(recordedEvent{Target: playerID, Direct: true, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) record(ev recordedEvent) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	f.notify <- ev
}

// waitFor blocks until an event with the given name reaches the given
// target, skipping everything else in between.
func (f *fakeBroadcaster) waitFor(t *testing.T, target, event string) gin.H {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-f.notify:
			if ev.Target == target && ev.Event == event {
				return ev.Payload
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q to %q", event, target)
			return nil
		}
	}
}

// setupSession builds a registry room with the given secret roles, an
// initialized session and fast test timings.
func setupSession(t *testing.T, roles map[string]Role) (*Coordinator, *fakeBroadcaster, string) {
	t.Helper()
	reg := NewRegistry()
	room, err := reg.CreateRoom("gm", 0, "narrator", "")
	assert.NoError(t, err)
	for id, role := range roles {
		assert.NoError(t, reg.AddPlayer(room.Code, &Player{ID: id, Username: id}, ""))
		assert.True(t, reg.ApprovePlayer(room.Code, id))
		room.Player(id).Role = role
	}

	fb := newFakeBroadcaster()
	c := NewCoordinator(reg, fb)
	c.NightStartPause = 0
	c.NightResultPause = 5 * time.Millisecond
	c.NightStepTimeout = 200 * time.Millisecond
	c.VotingTimeout = time.Second
	assert.NoError(t, c.InitSession(room.Code, "gm_"+room.Code))
	return c, fb, room.Code
}

func TestFullRoundCycle(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "s1": RoleSeer,
		"v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager, "v4": RoleVillager,
	})

	assert.NoError(t, c.StartNight(code))
	payload := fb.waitFor(t, code, "phase_changed")
	assert.Equal(t, PhaseNight, payload["phase"])
	assert.Equal(t, 1, payload["round"])

	// Werewolf step.
	request := fb.waitFor(t, "w1", "role_action_request")
	assert.Equal(t, RoleWerewolf, request["role"])
	accepted, err := c.SubmitNightAction(code, "w1", WerewolfVote{TargetID: "v1"})
	assert.NoError(t, err)
	assert.True(t, accepted)

	// Seer step; only the seer's candidate list carries the werewolf flag.
	request = fb.waitFor(t, "s1", "role_action_request")
	flagged := map[string]bool{}
	for _, candidate := range request["candidates"].([]gin.H) {
		flagged[candidate["id"].(string)] = candidate["is_red_flag"].(bool)
	}
	assert.True(t, flagged["w1"])
	assert.False(t, flagged["v1"])
	accepted, err = c.SubmitNightAction(code, "s1", SeerCheck{TargetID: "w1"})
	assert.NoError(t, err)
	assert.True(t, accepted)

	// Witch, bodyguard and hunter have no holders and are skipped.
	payload = fb.waitFor(t, code, "night_result")
	assert.Equal(t, []string{"v1"}, payload["died_player_ids"])
	assert.Equal(t, CauseWerewolf, payload["cause"])

	payload = fb.waitFor(t, code, "phase_changed")
	assert.Equal(t, PhaseDay, payload["phase"])

	assert.NoError(t, c.AdvancePhase(code))
	payload = fb.waitFor(t, code, "phase_changed")
	assert.Equal(t, PhaseVoting, payload["phase"])

	for voter, target := range map[string]string{"w1": "v2", "s1": "v2", "v3": "v2", "v4": "w1"} {
		accepted, err := c.SubmitVote(code, voter, target)
		assert.NoError(t, err)
		assert.True(t, accepted)
	}

	t.Run("Dead players cannot vote", func(t *testing.T) {
		accepted, err := c.SubmitVote(code, "v1", "w1")
		assert.NoError(t, err)
		assert.False(t, accepted)
	})

	// Host forces the tally before the deadline.
	assert.NoError(t, c.AdvancePhase(code))
	payload = fb.waitFor(t, code, "voting_result")
	assert.Equal(t, "v2", payload["eliminated_player_id"])
	assert.Equal(t, CauseVote, payload["cause"])

	payload = fb.waitFor(t, code, "phase_changed")
	assert.Equal(t, PhaseConclude, payload["phase"])

	// Next round.
	assert.NoError(t, c.AdvancePhase(code))
	payload = fb.waitFor(t, code, "phase_changed")
	assert.Equal(t, PhaseNight, payload["phase"])
	assert.Equal(t, 2, payload["round"])

	state, ok := c.State(code)
	assert.True(t, ok)
	assert.Equal(t, 2, state.Round)
}

func TestNightStepTimeoutForcesProgress(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager,
	})
	c.NightStepTimeout = 50 * time.Millisecond

	assert.NoError(t, c.StartNight(code))
	fb.waitFor(t, "w1", "role_action_request")

	t.Run("Night cannot be advanced by the host", func(t *testing.T) {
		assert.ErrorIs(t, c.AdvancePhase(code), ErrNightInProgress)
	})

	// Nobody answers; the step force-resolves and the night ends bloodless.
	payload := fb.waitFor(t, code, "night_result")
	assert.Empty(t, payload["died_player_ids"])
	assert.Equal(t, CauseNone, payload["cause"])

	payload = fb.waitFor(t, code, "phase_changed")
	assert.Equal(t, PhaseDay, payload["phase"])
}

func TestVotingDeadlineForcesTally(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager,
	})
	c.NightStepTimeout = 30 * time.Millisecond
	c.VotingTimeout = 60 * time.Millisecond

	assert.NoError(t, c.StartNight(code))
	fb.waitFor(t, code, "night_result")
	fb.waitFor(t, code, "phase_changed") // day
	assert.NoError(t, c.AdvancePhase(code))
	fb.waitFor(t, code, "phase_changed") // voting

	// Nobody votes; the deadline elects nobody and the round concludes.
	payload := fb.waitFor(t, code, "voting_result")
	assert.Equal(t, "", payload["eliminated_player_id"])

	payload = fb.waitFor(t, code, "phase_changed")
	assert.Equal(t, PhaseConclude, payload["phase"])
}

func TestVillagersWinWhenLastWerewolfIsVoted(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager,
	})

	assert.NoError(t, c.StartNight(code))
	fb.waitFor(t, "w1", "role_action_request")
	_, err := c.SubmitNightAction(code, "w1", WerewolfVote{TargetID: "v1"})
	assert.NoError(t, err)
	fb.waitFor(t, code, "night_result")
	fb.waitFor(t, code, "phase_changed") // day

	assert.NoError(t, c.AdvancePhase(code))
	fb.waitFor(t, code, "phase_changed") // voting
	for _, voter := range []string{"v2", "v3"} {
		accepted, err := c.SubmitVote(code, voter, "w1")
		assert.NoError(t, err)
		assert.True(t, accepted)
	}
	assert.NoError(t, c.AdvancePhase(code))

	payload := fb.waitFor(t, code, "voting_result")
	assert.Equal(t, "w1", payload["eliminated_player_id"])
	payload = fb.waitFor(t, code, "game_ended")
	assert.Equal(t, WinnerVillagers, payload["winner"])

	t.Run("Ended games cannot advance", func(t *testing.T) {
		assert.ErrorIs(t, c.AdvancePhase(code), ErrGameEnded)
	})
}

func TestWerewolvesWinOnParityAfterNight(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "v1": RoleVillager, "v2": RoleVillager,
	})

	assert.NoError(t, c.StartNight(code))
	fb.waitFor(t, "w1", "role_action_request")
	_, err := c.SubmitNightAction(code, "w1", WerewolfVote{TargetID: "v1"})
	assert.NoError(t, err)

	payload := fb.waitFor(t, code, "night_result")
	assert.Equal(t, []string{"v1"}, payload["died_player_ids"])
	payload = fb.waitFor(t, code, "game_ended")
	assert.Equal(t, WinnerWerewolves, payload["winner"])
}

func TestHunterVotedOutFiresDeclaredShot(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "h1": RoleHunter,
		"v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager,
	})

	assert.NoError(t, c.StartNight(code))
	fb.waitFor(t, "w1", "role_action_request")
	_, err := c.SubmitNightAction(code, "w1", WerewolfVote{TargetID: "v1"})
	assert.NoError(t, err)

	// The hunter declares a target but survives the night.
	fb.waitFor(t, "h1", "role_action_request")
	accepted, err := c.SubmitNightAction(code, "h1", HunterShot{TargetID: "w1"})
	assert.NoError(t, err)
	assert.True(t, accepted)

	fb.waitFor(t, code, "night_result")
	fb.waitFor(t, code, "phase_changed") // day
	assert.NoError(t, c.AdvancePhase(code))
	fb.waitFor(t, code, "phase_changed") // voting

	for _, voter := range []string{"w1", "v2", "v3"} {
		accepted, err := c.SubmitVote(code, voter, "h1")
		assert.NoError(t, err)
		assert.True(t, accepted)
	}
	assert.NoError(t, c.AdvancePhase(code))

	// The hunter dies, the declared shot takes the werewolf with them,
	// and the villagers win on the spot.
	payload := fb.waitFor(t, code, "voting_result")
	assert.Equal(t, "h1", payload["eliminated_player_id"])
	assert.Equal(t, CauseHunter, payload["cause"])
	assert.Equal(t, "w1", payload["hunter_shot_player_id"])

	payload = fb.waitFor(t, code, "game_ended")
	assert.Equal(t, WinnerVillagers, payload["winner"])
}

func TestReadyRedeliveryKeepsRunningSession(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager,
	})

	assert.NoError(t, c.StartNight(code))
	fb.waitFor(t, "w1", "role_action_request")
	_, err := c.SubmitNightAction(code, "w1", WerewolfVote{TargetID: "v1"})
	assert.NoError(t, err)
	fb.waitFor(t, code, "night_result")

	// A duplicate ready event re-triggers session creation; the running
	// session must survive it untouched.
	assert.NoError(t, c.InitSession(code, "gm_"+code))

	state, ok := c.State(code)
	assert.True(t, ok)
	assert.False(t, state.Player("v1").Alive)
	assert.NotEqual(t, PhaseWaiting, state.Phase)
}

func TestBodyguardCannotProtectSamePlayerTwice(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "b1": RoleBodyguard,
		"v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager,
	})

	// Round 1: the bodyguard saves the werewolf victim.
	assert.NoError(t, c.StartNight(code))
	fb.waitFor(t, "w1", "role_action_request")
	_, err := c.SubmitNightAction(code, "w1", WerewolfVote{TargetID: "v1"})
	assert.NoError(t, err)

	request := fb.waitFor(t, "b1", "role_action_request")
	assert.Equal(t, "", request["last_protected"])
	accepted, err := c.SubmitNightAction(code, "b1", BodyguardProtect{TargetID: "v1"})
	assert.NoError(t, err)
	assert.True(t, accepted)

	payload := fb.waitFor(t, code, "night_result")
	assert.Empty(t, payload["died_player_ids"])
	assert.Equal(t, CauseProtected, payload["cause"])

	fb.waitFor(t, code, "phase_changed") // day
	assert.NoError(t, c.AdvancePhase(code))
	fb.waitFor(t, code, "phase_changed") // voting
	assert.NoError(t, c.AdvancePhase(code))
	fb.waitFor(t, code, "voting_result")
	fb.waitFor(t, code, "phase_changed") // conclude

	// Round 2: the round-1 target is off the candidate list.
	assert.NoError(t, c.AdvancePhase(code))
	fb.waitFor(t, "w1", "role_action_request")
	_, err = c.SubmitNightAction(code, "w1", WerewolfVote{TargetID: "v1"})
	assert.NoError(t, err)

	request = fb.waitFor(t, "b1", "role_action_request")
	assert.Equal(t, "v1", request["last_protected"])
	for _, candidate := range request["candidates"].([]gin.H) {
		assert.NotEqual(t, "v1", candidate["id"])
	}

	// The submission lands on the barrier but the repeat protection is
	// discarded, leaving the victim exposed.
	accepted, err = c.SubmitNightAction(code, "b1", BodyguardProtect{TargetID: "v1"})
	assert.NoError(t, err)
	assert.True(t, accepted)

	payload = fb.waitFor(t, code, "night_result")
	assert.Equal(t, []string{"v1"}, payload["died_player_ids"])
	assert.Equal(t, CauseWerewolf, payload["cause"])
}

func TestSubmitNightActionGuards(t *testing.T) {
	c, _, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager,
	})

	t.Run("Unknown room", func(t *testing.T) {
		_, err := c.SubmitNightAction("ZZZZZZ", "w1", WerewolfVote{TargetID: "v1"})
		assert.ErrorIs(t, err, ErrGameStateNotFound)
	})

	t.Run("No open barrier", func(t *testing.T) {
		accepted, err := c.SubmitNightAction(code, "w1", WerewolfVote{TargetID: "v1"})
		assert.NoError(t, err)
		assert.False(t, accepted)
	})
}

func TestGMNarrationStaysInGMRoom(t *testing.T) {
	c, fb, code := setupSession(t, map[string]Role{
		"w1": RoleWerewolf, "v1": RoleVillager, "v2": RoleVillager, "v3": RoleVillager,
	})
	c.NightStepTimeout = 30 * time.Millisecond
	gmRoom := "gm_" + code

	assert.NoError(t, c.StartNight(code))
	payload := fb.waitFor(t, gmRoom, "gm_night_action")
	assert.Equal(t, "night_start", payload["step"])

	fb.waitFor(t, code, "night_result")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, ev := range fb.events {
		if ev.Target == code {
			assert.NotContains(t, []string{"gm_night_action", "gm_voting_action", "gm_game_ended"}, ev.Event)
		}
	}
}
