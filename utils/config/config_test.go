package config_test

import (
	"testing"

	"github.com/citysim-lab/fuzzylight/engine"
	"github.com/citysim-lab/fuzzylight/engine/signal"
	"github.com/citysim-lab/fuzzylight/utils/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func baseConfig() config.Config {
	return config.Config{
		Control: config.Control{Step: config.ControlStep{Total: 1000}},
	}
}

func TestRuntimeConfigDefaults(t *testing.T) {
	rc, err := config.NewRuntimeConfig(baseConfig())
	require.NoError(t, err)

	assert.InDelta(t, 1.0/60, rc.C.Step.Interval, 1e-12)
	assert.Equal(t, config.DefaultLogEvery, rc.C.LogEvery)
	assert.Len(t, rc.All.Sim.ArrivalRates, engine.LaneCount)
	assert.Equal(t, config.DefaultCrossTicks, rc.All.Sim.CrossTicks)
	assert.Len(t, rc.Rules, 9)
	assert.Equal(t, signal.DefaultTiming(), rc.Timing)
	// 默认标定下引擎可正常构造
	assert.NoError(t, rc.Fuzzy.Clearance.Validate())
}

func TestRuntimeConfigValidation(t *testing.T) {
	c := baseConfig()
	c.Control.Step.Total = 0
	_, err := config.NewRuntimeConfig(c)
	assert.ErrorIs(t, err, engine.ErrConfig)

	c = baseConfig()
	c.Sim.ArrivalRates = []float64{0.1, 0.1}
	_, err = config.NewRuntimeConfig(c)
	assert.ErrorIs(t, err, engine.ErrConfig)

	c = baseConfig()
	c.Sim.ArrivalRates = []float64{0.1, -0.1, 0.1, 0.1}
	_, err = config.NewRuntimeConfig(c)
	assert.ErrorIs(t, err, engine.ErrConfig)

	c = baseConfig()
	c.Sim.Surges = []config.Surge{{Tick: 10, Lane: 4, Count: 5}}
	_, err = config.NewRuntimeConfig(c)
	assert.ErrorIs(t, err, engine.ErrConfig)

	c = baseConfig()
	c.Sim.Surges = []config.Surge{{Tick: 10, Lane: 1, Count: 0}}
	_, err = config.NewRuntimeConfig(c)
	assert.ErrorIs(t, err, engine.ErrConfig)

	c = baseConfig()
	c.Output.URI = "mongodb://localhost:27017"
	_, err = config.NewRuntimeConfig(c)
	assert.ErrorIs(t, err, engine.ErrConfig)
}

func TestRuntimeConfigOverrides(t *testing.T) {
	c := baseConfig()
	timing := signal.DefaultTiming()
	timing.AllRedExit = signal.ExitOr
	c.Engine.FSM = &timing
	c.Engine.Weights = map[string]float64{"R5": 2.0}

	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, signal.ExitOr, rc.Timing.AllRedExit)
	assert.Equal(t, 2.0, rc.Fuzzy.Weights["R5"])
}

func TestConfigYAML(t *testing.T) {
	data := `
control:
  step:
    start: 0
    total: 36000
    interval: 0.016666667
  log_every: 1200
engine:
  weights:
    R5: 1.8
  fsm:
    switch_threshold: 35
    yellow_ticks: 45
    all_red_min_ticks: 15
    all_red_exit: or
sim:
  seed: 7
  arrival_rates: [0.02, 0.01, 0.02, 0.01]
  cross_ticks: 90
  surges:
    - {tick: 600, lane: 2, count: 15}
output:
  uri: mongodb://localhost:27017
  db: fuzzylight
  col: trace
`
	var c config.Config
	require.NoError(t, yaml.Unmarshal([]byte(data), &c))
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)

	assert.Equal(t, 36000, rc.C.Step.Total)
	assert.Equal(t, 1200, rc.C.LogEvery)
	assert.Equal(t, signal.ExitOr, rc.Timing.AllRedExit)
	assert.Equal(t, 1.8, rc.Fuzzy.Weights["R5"])
	assert.Equal(t, []config.Surge{{Tick: 600, Lane: 2, Count: 15}}, rc.All.Sim.Surges)
	assert.Equal(t, "trace", rc.All.Output.Col)
}
