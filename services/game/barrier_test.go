package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarrierResolvesWhenAllRespond(t *testing.T) {
	b := newBarrier([]string{"w1", "w2"}, nil)

	assert.True(t, b.Submit("w1", WerewolfVote{TargetID: "v1"}))
	assert.Equal(t, BarrierOpen, b.State())
	assert.True(t, b.Submit("w2", WerewolfVote{TargetID: "v1"}))

	responses := b.Await(time.Second)
	assert.Equal(t, BarrierResolved, b.State())
	assert.Len(t, responses, 2)
	assert.Equal(t, "w1", responses[0].PlayerID)
	assert.Equal(t, "w2", responses[1].PlayerID)
}

func TestBarrierIgnoresDuplicatesAndStrangers(t *testing.T) {
	b := newBarrier([]string{"w1", "w2"}, nil)

	assert.True(t, b.Submit("w1", WerewolfVote{TargetID: "v1"}))

	t.Run("Duplicate submission", func(t *testing.T) {
		assert.False(t, b.Submit("w1", WerewolfVote{TargetID: "v2"}))
	})

	t.Run("Unexpected responder", func(t *testing.T) {
		assert.False(t, b.Submit("intruder", WerewolfVote{TargetID: "v2"}))
	})

	assert.True(t, b.Submit("w2", WerewolfVote{TargetID: "v1"}))
	responses := b.Await(time.Second)
	assert.Len(t, responses, 2)
	// The first submission is the one that counted.
	assert.Equal(t, "v1", responses[0].Action.(WerewolfVote).TargetID)

	t.Run("Submission after resolution", func(t *testing.T) {
		assert.False(t, b.Submit("w2", WerewolfVote{TargetID: "v3"}))
	})
}

func TestBarrierTimeoutKeepsPartialResponses(t *testing.T) {
	b := newBarrier([]string{"w1", "w2", "w3"}, nil)

	assert.True(t, b.Submit("w2", WerewolfVote{TargetID: "v1"}))

	start := time.Now()
	responses := b.Await(50 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, BarrierResolved, b.State())
	assert.Len(t, responses, 1)
	assert.Equal(t, "w2", responses[0].PlayerID)
}

func TestBarrierConcurrentSubmissionsResolveOnce(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4", "p5"}
	b := newBarrier(ids, nil)

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			// Two racing deliveries per responder; one wins.
			b.Submit(id, SeerCheck{TargetID: "v1"})
			b.Submit(id, SeerCheck{TargetID: "v2"})
		}(id)
	}
	wg.Wait()

	responses := b.Await(time.Second)
	assert.Len(t, responses, len(ids))
	seen := map[string]bool{}
	for _, resp := range responses {
		assert.False(t, seen[resp.PlayerID])
		seen[resp.PlayerID] = true
	}
}

func TestBarrierSubmitHook(t *testing.T) {
	var hooked []string
	b := newBarrier([]string{"h1"}, func(playerID string, action NightAction) {
		hooked = append(hooked, playerID)
	})

	assert.True(t, b.Submit("h1", HunterShot{TargetID: "v1"}))
	assert.False(t, b.Submit("h1", HunterShot{TargetID: "v2"}))
	assert.Equal(t, []string{"h1"}, hooked)
}

func TestBarrierDiscard(t *testing.T) {
	b := newBarrier([]string{"w1", "w2"}, nil)
	assert.True(t, b.Submit("w1", WerewolfVote{TargetID: "v1"}))

	b.Discard()
	assert.Equal(t, BarrierDiscarded, b.State())

	responses := b.Await(time.Second)
	assert.Len(t, responses, 1)

	t.Run("Discard twice is harmless", func(t *testing.T) {
		b.Discard()
		assert.Equal(t, BarrierDiscarded, b.State())
	})

	t.Run("No submissions after discard", func(t *testing.T) {
		assert.False(t, b.Submit("w2", WerewolfVote{TargetID: "v1"}))
	})
}
