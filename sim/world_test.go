package sim_test

import (
	"testing"

	"github.com/citysim-lab/fuzzylight/engine"
	"github.com/citysim-lab/fuzzylight/engine/signal"
	"github.com/citysim-lab/fuzzylight/sim"
	"github.com/citysim-lab/fuzzylight/utils/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quiet 无随机到达的世界配置，便于确定性断言
func quiet(surges ...config.Surge) config.Sim {
	return config.Sim{
		Seed:         1,
		ArrivalRates: []float64{0, 0, 0, 0},
		CrossTicks:   5,
		Surges:       surges,
	}
}

func TestWorldSurge(t *testing.T) {
	w := sim.NewWorld(quiet(config.Surge{Tick: 3, Lane: 2, Count: 7}), 1.0)

	w.Apply(2)
	assert.Equal(t, []int{0, 0, 0, 0}, w.QueueLengths())
	w.Apply(3)
	assert.Equal(t, []int{0, 0, 7, 0}, w.QueueLengths())
	assert.Equal(t, 7, w.Arrived)
}

func TestWorldSnapshotOrdering(t *testing.T) {
	w := sim.NewWorld(quiet(
		config.Surge{Tick: 0, Lane: 0, Count: 1},
		config.Surge{Tick: 0, Lane: 1, Count: 2},
		config.Surge{Tick: 0, Lane: 2, Count: 3},
		config.Surge{Tick: 0, Lane: 3, Count: 4},
	), 1.0)
	w.Apply(0)

	// Waiting按相位顺序排列
	s := w.Snapshot(10, 1)
	assert.Equal(t, 1, s.ActiveIndex)
	assert.Equal(t, 2, s.ActiveQueue)
	assert.Equal(t, [3]int{3, 4, 1}, s.Waiting)
	// 队首在tick 0到达，至tick 10已等待10tick
	assert.Equal(t, 10, s.LongestWait)
	assert.NoError(t, s.Validate())
}

func TestWorldDischarge(t *testing.T) {
	w := sim.NewWorld(quiet(config.Surge{Tick: 0, Lane: 0, Count: 3}), 1.0)
	w.Apply(0)
	green := signal.Status{State: signal.Green, PhaseIndex: 0}

	// interval=1秒 => 放行间隔2tick；每次放行进入路口，5tick后离开
	w.Step(0, green)
	assert.Equal(t, []int{2, 0, 0, 0}, w.QueueLengths())
	assert.Equal(t, 1, w.Snapshot(0, 0).Inside)

	// 车头时距未到不放行
	w.Step(1, green)
	assert.Equal(t, []int{2, 0, 0, 0}, w.QueueLengths())

	// tick2、tick4继续按车头时距放行，队列清空
	w.Step(2, green)
	w.Step(3, green)
	w.Step(4, green)
	assert.Equal(t, []int{0, 0, 0, 0}, w.QueueLengths())
	assert.Equal(t, 3, w.Snapshot(4, 0).Inside)

	// 第一辆在tick 0+5穿越完毕离开路口
	w.Step(5, green)
	assert.Equal(t, 2, w.Snapshot(5, 0).Inside)
	assert.Equal(t, 3, w.Departed)
}

func TestWorldNoDischargeOffGreen(t *testing.T) {
	w := sim.NewWorld(quiet(config.Surge{Tick: 0, Lane: 0, Count: 3}), 1.0)
	w.Apply(0)
	for tick, st := range []signal.Status{
		{State: signal.Yellow, PhaseIndex: 0},
		{State: signal.AllRed, PhaseIndex: 0},
	} {
		w.Step(tick, st)
		assert.Equal(t, []int{3, 0, 0, 0}, w.QueueLengths())
	}
	assert.Zero(t, w.Departed)
}

func TestWorldDeterministic(t *testing.T) {
	c := config.Sim{Seed: 42, ArrivalRates: []float64{0.3, 0.1, 0.2, 0.05}, CrossTicks: 5}
	a := sim.NewWorld(c, 1.0)
	b := sim.NewWorld(c, 1.0)
	for tick := 0; tick < 200; tick++ {
		a.Apply(tick)
		b.Apply(tick)
	}
	require.Equal(t, a.QueueLengths(), b.QueueLengths())
	require.Equal(t, a.Arrived, b.Arrived)
	assert.Positive(t, a.Arrived)
}

func TestWorldSnapshotFeedsEngine(t *testing.T) {
	w := sim.NewWorld(quiet(config.Surge{Tick: 0, Lane: 1, Count: 6}), 1.0)
	w.Apply(0)
	s := w.Snapshot(0, 0)
	require.NoError(t, s.Validate())
	assert.Equal(t, engine.TrafficSnapshot{
		ActiveIndex: 0,
		ActiveQueue: 0,
		Waiting:     [3]int{6, 0, 0},
	}, s)
}
