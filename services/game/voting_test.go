package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordVoteKeepsFirstBallot(t *testing.T) {
	gs := &GameState{}

	assert.True(t, gs.RecordVote("p1", "p2"))
	assert.False(t, gs.RecordVote("p1", "p3"))
	assert.True(t, gs.RecordVote("p2", "p3"))

	ballots := gs.Ballots()
	assert.Len(t, ballots, 2)
	assert.Equal(t, Ballot{VoterID: "p1", TargetID: "p2"}, ballots[0])
}

func TestTallyVotesPlurality(t *testing.T) {
	// 8 voters, 5 on p9 and 3 on p2.
	ballots := []Ballot{
		{"p1", "p9"}, {"p2", "p9"}, {"p3", "p2"}, {"p4", "p9"},
		{"p5", "p2"}, {"p6", "p9"}, {"p7", "p2"}, {"p8", "p9"},
	}

	target, votes := TallyVotes(ballots)
	assert.Equal(t, "p9", target)
	assert.Equal(t, 5, votes)
}

func TestTallyVotesTieBreak(t *testing.T) {
	t.Run("Earlier target wins a tie", func(t *testing.T) {
		ballots := []Ballot{
			{"p1", "a"}, {"p2", "b"}, {"p3", "b"}, {"p4", "a"},
		}
		target, votes := TallyVotes(ballots)
		// Both end at two votes; "b" reached two first.
		assert.Equal(t, "b", target)
		assert.Equal(t, 2, votes)
	})

	t.Run("Same ballots always tally the same", func(t *testing.T) {
		ballots := []Ballot{{"p1", "a"}, {"p2", "b"}, {"p3", "a"}, {"p4", "b"}}
		first, _ := TallyVotes(ballots)
		for i := 0; i < 20; i++ {
			target, _ := TallyVotes(ballots)
			assert.Equal(t, first, target)
		}
	})
}

func TestTallyVotesEmptyAndAbstentions(t *testing.T) {
	target, votes := TallyVotes(nil)
	assert.Empty(t, target)
	assert.Zero(t, votes)

	// Blank targets are abstentions.
	target, votes = TallyVotes([]Ballot{{"p1", ""}, {"p2", ""}, {"p3", "a"}})
	assert.Equal(t, "a", target)
	assert.Equal(t, 1, votes)
}

func TestResetBallots(t *testing.T) {
	gs := &GameState{}
	assert.True(t, gs.RecordVote("p1", "p2"))

	gs.resetBallots()
	assert.Empty(t, gs.Ballots())
	// The voter can vote again in the next round.
	assert.True(t, gs.RecordVote("p1", "p3"))
}
