package game

// Ballot is one cast vote, kept in cast order. The cast order is load
// bearing: it is the tie-break for the tally.
type Ballot struct {
	VoterID  string
	TargetID string
}

// RecordVote registers a player's vote. Voting is idempotent per player:
// the first submission is kept and later ones are ignored, so duplicate
// delivery or a change of heart cannot double-count. Returns whether the
// ballot was accepted.
func (gs *GameState) RecordVote(voterID, targetID string) bool {
	if gs.voted == nil {
		gs.voted = make(map[string]bool)
	}
	if gs.voted[voterID] {
		return false
	}
	gs.voted[voterID] = true
	gs.ballots = append(gs.ballots, Ballot{VoterID: voterID, TargetID: targetID})
	return true
}

func (gs *GameState) resetBallots() {
	gs.ballots = nil
	gs.voted = nil
}

// Ballots returns the recorded votes in cast order.
func (gs *GameState) Ballots() []Ballot {
	return append([]Ballot(nil), gs.ballots...)
}

// TallyVotes picks the plurality target of the ballots. Ties resolve to
// the target that reached the winning count first in cast order, so the
// outcome is deterministic for any ballot sequence. Returns the winning
// target and its vote count; an empty ballot list elects nobody.
func TallyVotes(ballots []Ballot) (targetID string, votes int) {
	counts := make(map[string]int)
	for _, ballot := range ballots {
		if ballot.TargetID == "" {
			continue
		}
		counts[ballot.TargetID]++
		// Strictly greater keeps the earlier target on ties.
		if counts[ballot.TargetID] > votes {
			votes = counts[ballot.TargetID]
			targetID = ballot.TargetID
		}
	}
	return targetID, votes
}
