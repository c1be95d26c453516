// 提供信号灯相位状态机
// 在GREEN状态下消费模糊推理得分，按自适应绿灯时长约束驱动GREEN->YELLOW->ALL_RED->GREEN循环
package signal

import (
	"fmt"

	"github.com/citysim-lab/fuzzylight/engine"
	"github.com/citysim-lab/fuzzylight/engine/fuzzy"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "signal")
)

// State 信号灯状态
type State int32

const (
	Green  State = iota // 绿灯，当前相位放行
	Yellow              // 黄灯，过渡清空
	AllRed              // 全红，等待路口清空
)

// String 状态名
func (s State) String() string {
	switch s {
	case Green:
		return "GREEN"
	case Yellow:
		return "YELLOW"
	case AllRed:
		return "ALL_RED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ExitPolicy 全红退出条件的组合方式
type ExitPolicy string

const (
	ExitAnd ExitPolicy = "and" // 路口清空且达到最短全红时间（保守读法，默认）
	ExitOr  ExitPolicy = "or"  // 路口清空或达到最短全红时间
)

// Timing 状态机定时配置
// 功能：切换阈值与各状态的定时参数，启动时校验一次后不可变
type Timing struct {
	SwitchThreshold float64    `yaml:"switch_threshold"` // 绿灯切换的得分阈值
	YellowTicks     int        `yaml:"yellow_ticks"`     // 黄灯固定时长（tick）
	AllRedMinTicks  int        `yaml:"all_red_min_ticks"` // 全红最短时长（tick）
	AllRedExit      ExitPolicy `yaml:"all_red_exit"`     // 全红退出策略
}

// DefaultTiming 默认定时配置
func DefaultTiming() Timing {
	return Timing{
		SwitchThreshold: 35,
		YellowTicks:     45,
		AllRedMinTicks:  15,
		AllRedExit:      ExitAnd,
	}
}

// Validate 校验定时配置
// 返回：非法配置返回包装了ErrConfig的错误
func (t Timing) Validate() error {
	if t.SwitchThreshold < 0 || t.SwitchThreshold > 100 {
		return fmt.Errorf("%w: switch threshold %v out of [0,100]", engine.ErrConfig, t.SwitchThreshold)
	}
	if t.YellowTicks <= 0 {
		return fmt.Errorf("%w: yellow ticks %d not positive", engine.ErrConfig, t.YellowTicks)
	}
	if t.AllRedMinTicks < 0 {
		return fmt.Errorf("%w: all-red min ticks %d negative", engine.ErrConfig, t.AllRedMinTicks)
	}
	if t.AllRedExit != ExitAnd && t.AllRedExit != ExitOr {
		return fmt.Errorf("%w: all-red exit policy %q (want %q or %q)", engine.ErrConfig, t.AllRedExit, ExitAnd, ExitOr)
	}
	return nil
}

// Status 状态机对外快照
// 功能：一次Advance之后的全部状态，消费方（输出、日志）在tick之间只读
type Status struct {
	State      State // 当前信号状态
	PhaseIndex int   // 当前绿灯相位索引
	Timer      int   // 当前状态内已经过的tick数
	MinGreen   int   // 本次绿灯的最短时长（tick）
	MaxGreen   int   // 本次绿灯的最长时长（tick）
}

// Controller 信号灯状态机控制器
// 功能：持有相位索引、状态计时与自适应绿灯时长边界，每tick推进一次
// 说明：进程生命周期对象；状态仅由Advance写入，无并发写者，无需加锁
type Controller struct {
	eng    *fuzzy.Engine
	timing Timing

	state      State
	phaseIndex int
	timer      int
	minGreen   int
	maxGreen   int

	lastDecision engine.DecisionResult // 最近一次绿灯求值结果，供只读消费
}

// greenBounds 按新绿灯车道的队列长度计算自适应绿灯时长边界
// 算法说明：
// 1. 队列≤2辆：最短绿灯30tick；≤5辆：50tick；更大队列按40+8q线性增长，上限120
// 2. 最长绿灯按100+15q线性增长，上限300
func greenBounds(queue int) (minGreen, maxGreen int) {
	switch {
	case queue <= 2:
		minGreen = 30
	case queue <= 5:
		minGreen = 50
	default:
		minGreen = min(120, 40+queue*8)
	}
	maxGreen = min(300, 100+queue*15)
	return
}

// NewController 创建信号灯状态机
// 功能：校验定时配置并以GREEN、相位0、零负载边界初始化
// 参数：eng-模糊推理引擎，timing-定时配置
// 返回：初始化完成的控制器，配置非法时返回包装了ErrConfig的错误
func NewController(eng *fuzzy.Engine, timing Timing) (*Controller, error) {
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{eng: eng, timing: timing, state: Green}
	c.minGreen, c.maxGreen = greenBounds(0)
	return c, nil
}

// Status 当前状态快照
func (c *Controller) Status() Status {
	return Status{
		State:      c.state,
		PhaseIndex: c.phaseIndex,
		Timer:      c.timer,
		MinGreen:   c.minGreen,
		MaxGreen:   c.maxGreen,
	}
}

// LastDecision 最近一次绿灯状态下的推理结果
// 说明：黄灯/全红期间不求值，保留上一次绿灯的结果
func (c *Controller) LastDecision() engine.DecisionResult {
	return c.lastDecision
}

// Advance 推进状态机一个tick
// 功能：状态计时加一，按当前状态执行转移判定；每个仿真tick恰好调用一次
// 参数：snapshot-本tick交通快照
// 返回：推进后的状态快照；快照非法时返回包装了ErrInvalidInput的错误
// 算法说明：
// 1. GREEN：调用模糊引擎求值，满足任一触发条件则转YELLOW：
//   - 超过最短绿灯且得分低于切换阈值
//   - 超过最长绿灯
//   - 当前车道排空且他处有车等待
//
// 2. YELLOW：固定时长到期后转ALL_RED
// 3. ALL_RED：按退出策略组合「路口清空」与「达到最短全红」两个条件，
//    退出时相位轮转到下一车道、按新车道队列重算绿灯边界
// 4. 每次转移将计时归零；仅ALL_RED->GREEN转移改变相位索引
// 说明：仅GREEN状态消费得分；状态机内部不变量被破坏时直接panic
func (c *Controller) Advance(snapshot engine.TrafficSnapshot) (Status, error) {
	if c.timer < 0 || c.phaseIndex < 0 || c.phaseIndex >= engine.LaneCount {
		log.Panicf("fsm invariant violated: timer=%d phase=%d", c.timer, c.phaseIndex)
	}
	if err := snapshot.Validate(); err != nil {
		return c.Status(), err
	}
	c.timer++
	switch c.state {
	case Green:
		res, err := c.eng.Evaluate(snapshot)
		if err != nil {
			return c.Status(), err
		}
		c.lastDecision = res
		shouldSwitch := c.timer > c.minGreen && res.FinalScore < c.timing.SwitchThreshold
		if c.timer > c.maxGreen {
			shouldSwitch = true
		}
		if snapshot.ActiveQueue == 0 && snapshot.WaitingTotal() > 0 {
			shouldSwitch = true
		}
		if shouldSwitch {
			c.state = Yellow
			c.timer = 0
		}
	case Yellow:
		if c.timer > c.timing.YellowTicks {
			c.state = AllRed
			c.timer = 0
		}
	case AllRed:
		clear := snapshot.Inside == 0
		timed := c.timer > c.timing.AllRedMinTicks
		exit := clear && timed
		if c.timing.AllRedExit == ExitOr {
			exit = clear || timed
		}
		if exit {
			c.phaseIndex = (c.phaseIndex + 1) % engine.LaneCount
			c.state = Green
			c.timer = 0
			// Waiting[0]即下一相位的队列
			c.minGreen, c.maxGreen = greenBounds(snapshot.Waiting[0])
		}
	default:
		log.Panicf("fsm in unknown state %d", c.state)
	}
	return c.Status(), nil
}
