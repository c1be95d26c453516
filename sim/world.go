// 提供决策引擎的外部驱动世界：四车道排队、随机到达与绿灯放行
// 不做车辆运动学与渲染，只维护引擎所需的标量计数与等待时长
package sim

import (
	"math"

	"github.com/citysim-lab/fuzzylight/engine"
	"github.com/citysim-lab/fuzzylight/engine/signal"
	"github.com/citysim-lab/fuzzylight/utils/config"
	"github.com/citysim-lab/fuzzylight/utils/container"
	"github.com/citysim-lab/fuzzylight/utils/randengine"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "sim")
)

// car 排队中的单辆车，只记录到达tick用于推导等待时长
type car struct {
	arrival int
}

// World 交通世界
// 功能：维护四个车道的FIFO队列、路口内穿越车辆与到达过程，
// 每tick产出一份新的TrafficSnapshot供决策引擎消费
// 说明：引擎只读快照；surge等外部刺激一律先写入世界、再经快照进入引擎
type World struct {
	gen    *randengine.Engine
	rates  []float64
	surges *container.Schedule[config.Surge]

	queues   [engine.LaneCount]container.Queue[car]
	crossing container.Queue[int] // 路口内车辆的离开tick

	headway    int // 绿灯放行间隔（tick），由饱和车头时距换算
	crossTicks int // 穿越路口所需tick

	nextRelease int // 下一次放行的最早tick

	// 统计量（只读消费，不参与决策）
	Arrived  int // 累计到达车辆
	Departed int // 累计放行车辆
}

// NewWorld 创建交通世界
// 功能：按配置初始化到达过程、放行节奏与脉冲调度
// 参数：c-仿真配置（到达率、穿越时长、脉冲、种子），interval-每tick时长（秒）
// 算法说明：放行间隔 = 饱和车头时距(2秒/辆) / interval，四舍五入到tick
func NewWorld(c config.Sim, interval float64) *World {
	w := &World{
		gen:        randengine.New(c.Seed),
		rates:      c.ArrivalRates,
		surges:     container.NewSchedule[config.Surge](),
		headway:    int(math.Round(2.0 / interval)),
		crossTicks: c.CrossTicks,
	}
	for _, s := range c.Surges {
		w.surges.Add(s.Tick, s)
	}
	return w
}

// Apply 应用本tick的外部到达
// 功能：按到达率生成泊松到达，并注入所有到期的脉冲
// 参数：tick-当前tick
// 说明：必须在本tick的快照构造之前调用（外部刺激不绕过状态机判定）
func (w *World) Apply(tick int) {
	for lane, rate := range w.rates {
		n := w.gen.Poisson(rate)
		for i := 0; i < n; i++ {
			w.queues[lane].Push(car{arrival: tick})
			w.Arrived++
		}
	}
	for _, s := range w.surges.PopDue(tick) {
		log.Debugf("surge: +%d cars at lane %d (tick %d)", s.Count, s.Lane, tick)
		for i := 0; i < s.Count; i++ {
			w.queues[s.Lane].Push(car{arrival: tick})
			w.Arrived++
		}
	}
}

// Snapshot 构造当前tick的交通快照
// 功能：汇总当前绿灯车道队列、其余车道队列、绿灯队首等待与路口内车辆数
// 参数：tick-当前tick，phase-当前绿灯相位索引
// 说明：每tick重新构造，不跨tick缓存；Waiting按相位顺序排列
func (w *World) Snapshot(tick, phase int) engine.TrafficSnapshot {
	s := engine.TrafficSnapshot{
		ActiveIndex: phase,
		ActiveQueue: w.queues[phase].Len(),
		Inside:      w.crossing.Len(),
	}
	for i := 0; i < engine.LaneCount-1; i++ {
		s.Waiting[i] = w.queues[(phase+1+i)%engine.LaneCount].Len()
	}
	// 队首即当前绿灯队列中等待最久的车
	if head, ok := w.queues[phase].Front(); ok {
		s.LongestWait = tick - head.arrival
	}
	return s
}

// Step 按本tick的信号状态推进世界
// 功能：绿灯下按饱和节奏放行队首车辆进入路口，并让已穿越的车辆离开
// 参数：tick-当前tick，status-本tick Advance之后的信号状态
func (w *World) Step(tick int, status signal.Status) {
	if status.State == signal.Green && tick >= w.nextRelease {
		if _, ok := w.queues[status.PhaseIndex].Pop(); ok {
			w.crossing.Push(tick + w.crossTicks)
			w.nextRelease = tick + w.headway
			w.Departed++
		}
	}
	for {
		exit, ok := w.crossing.Front()
		if !ok || exit > tick {
			break
		}
		w.crossing.Pop()
	}
}

// QueueLengths 四个车道的当前队列长度（按车道序）
func (w *World) QueueLengths() []int {
	return lo.Map(w.queues[:], func(q container.Queue[car], _ int) int { return q.Len() })
}
