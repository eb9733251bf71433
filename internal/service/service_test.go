package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentLocks_Exclusive(t *testing.T) {
	locks := NewTournamentLocks()
	id := uuid.New()

	unlock := locks.Lock(id)

	acquired := make(chan struct{})
	go func() {
		release := locks.Lock(id)
		close(acquired)
		release()
	}()

	// Other tournaments are not blocked
	locks.Lock(uuid.New())()

	select {
	case <-acquired:
		t.Fatal("second writer entered while the tournament was locked")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	require.Eventually(t, func() bool {
		select {
		case <-acquired:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return locks.len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestTournamentLocks_EvictsReleasedEntries(t *testing.T) {
	locks := NewTournamentLocks()

	var wg sync.WaitGroup
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	counters := make([]int, len(ids))

	for i := range 30 {
		slot := i % len(ids)
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(ids[slot])
			defer unlock()
			// Each counter is only touched under its own tournament lock
			counters[slot]++
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{10, 10, 10}, counters)
	assert.Equal(t, 0, locks.len())
}
