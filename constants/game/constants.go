package game_constants

import "time"

// Room codes are generated from this charset and collision-checked against
// the registry before being issued.
const ROOM_CODE_CHARSET = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const ROOM_CODE_LENGTH = 6

const MIN_PLAYERS_TO_START = 4

// ---------------------------------------------------------------
// TIMEOUTS
// ---------------------------------------------------------------
const (
	// Voting force-tallies whatever ballots exist when this expires.
	VOTING_TIMEOUT = 60 * time.Second

	// A night-step barrier force-resolves with partial responses after
	// this long, so a disconnected seer cannot stall the round forever.
	NIGHT_STEP_TIMEOUT = 90 * time.Second

	// Pause between the night result broadcast and the day phase, so
	// clients can render the reveal.
	NIGHT_RESULT_PAUSE = 3 * time.Second

	// Pause between the night-start narration and the first role
	// solicitation.
	NIGHT_START_PAUSE = 1 * time.Second
)
