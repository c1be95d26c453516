package engine_test

import (
	"testing"

	"github.com/citysim-lab/fuzzylight/engine"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotValidate(t *testing.T) {
	assert.NoError(t, engine.TrafficSnapshot{}.Validate())
	assert.NoError(t, engine.TrafficSnapshot{
		ActiveIndex: 3,
		ActiveQueue: 12,
		Waiting:     [3]int{1, 2, 3},
		LongestWait: 500,
		Inside:      4,
	}.Validate())

	for _, s := range []engine.TrafficSnapshot{
		{ActiveIndex: -1},
		{ActiveIndex: engine.LaneCount},
		{ActiveQueue: -1},
		{Waiting: [3]int{-1, 0, 0}},
		{Waiting: [3]int{0, 0, -5}},
		{LongestWait: -1},
		{Inside: -1},
	} {
		assert.ErrorIs(t, s.Validate(), engine.ErrInvalidInput)
	}
}

func TestWaitingTotal(t *testing.T) {
	assert.Equal(t, 0, engine.TrafficSnapshot{}.WaitingTotal())
	assert.Equal(t, 9, engine.TrafficSnapshot{Waiting: [3]int{4, 0, 5}}.WaitingTotal())
}
