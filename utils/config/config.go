package config

import (
	"fmt"

	"github.com/citysim-lab/fuzzylight/engine"
	"github.com/citysim-lab/fuzzylight/engine/fuzzy"
	"github.com/citysim-lab/fuzzylight/engine/signal"
)

// 仿真默认参数
const (
	DefaultInterval    = 1.0 / 60 // 默认每tick时长（秒），60tick/秒
	DefaultArrivalRate = 0.02     // 默认每车道每tick到达率
	DefaultCrossTicks  = 90       // 默认路口穿越时长（tick）
	DefaultLogEvery    = 600      // 默认进度日志间隔（tick）
)

// RuntimeConfig 运行时配置
// 功能：将YAML配置与默认标定合并为运行时可用的完整配置
// 说明：构造时完成全部校验，此后不可变
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	Fuzzy  fuzzy.Config  // 合并后的模糊引擎配置
	Rules  []fuzzy.Rule  // 规则集
	Timing signal.Timing // 合并后的状态机定时
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值、合并引擎配置并校验
// 参数：c-原始配置对象
// 返回：运行时配置，配置非法时返回包装了ErrConfig的错误
// 算法说明：
// 1. 控制配置：interval默认1/60秒，total必须为正，日志间隔默认600tick
// 2. 引擎配置：fuzzy/fsm为空时取默认标定，权重覆盖并入fuzzy配置
// 3. 仿真配置：到达率长度必须等于车道数且非负，脉冲的车道/数量校验
// 说明：引擎与状态机配置的深度校验由各自的构造函数完成，这里只做结构校验
func NewRuntimeConfig(c Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{All: c, C: c.Control}

	if rc.C.Step.Interval == 0 {
		rc.C.Step.Interval = DefaultInterval
	}
	if rc.C.Step.Interval < 0 {
		return nil, fmt.Errorf("%w: step interval %v negative", engine.ErrConfig, rc.C.Step.Interval)
	}
	if rc.C.Step.Total <= 0 {
		return nil, fmt.Errorf("%w: step total %d not positive", engine.ErrConfig, rc.C.Step.Total)
	}
	if rc.C.LogEvery == 0 {
		rc.C.LogEvery = DefaultLogEvery
	}

	rc.Fuzzy = fuzzy.DefaultConfig()
	if c.Engine.Fuzzy != nil {
		rc.Fuzzy = *c.Engine.Fuzzy
	}
	if len(c.Engine.Weights) > 0 {
		rc.Fuzzy.Weights = c.Engine.Weights
	}
	rc.Rules = fuzzy.DefaultRules()

	rc.Timing = signal.DefaultTiming()
	if c.Engine.FSM != nil {
		rc.Timing = *c.Engine.FSM
	}

	if rates := rc.All.Sim.ArrivalRates; len(rates) > 0 {
		if len(rates) != engine.LaneCount {
			return nil, fmt.Errorf("%w: arrival rates length %d (want %d)", engine.ErrConfig, len(rates), engine.LaneCount)
		}
		for i, r := range rates {
			if r < 0 {
				return nil, fmt.Errorf("%w: arrival rate %v at lane %d negative", engine.ErrConfig, r, i)
			}
		}
	} else {
		rc.All.Sim.ArrivalRates = []float64{DefaultArrivalRate, DefaultArrivalRate, DefaultArrivalRate, DefaultArrivalRate}
	}
	if rc.All.Sim.CrossTicks == 0 {
		rc.All.Sim.CrossTicks = DefaultCrossTicks
	}
	if rc.All.Sim.CrossTicks < 0 {
		return nil, fmt.Errorf("%w: cross ticks %d negative", engine.ErrConfig, rc.All.Sim.CrossTicks)
	}
	for _, s := range rc.All.Sim.Surges {
		if s.Lane < 0 || s.Lane >= engine.LaneCount {
			return nil, fmt.Errorf("%w: surge lane %d out of [0,%d)", engine.ErrConfig, s.Lane, engine.LaneCount)
		}
		if s.Count <= 0 {
			return nil, fmt.Errorf("%w: surge count %d not positive", engine.ErrConfig, s.Count)
		}
		if s.Tick < 0 {
			return nil, fmt.Errorf("%w: surge tick %d negative", engine.ErrConfig, s.Tick)
		}
	}

	if c.Output.URI != "" {
		if c.Output.DB == "" || c.Output.Col == "" {
			return nil, fmt.Errorf("%w: output db/col must be set when uri is set", engine.ErrConfig)
		}
	}

	return rc, nil
}
