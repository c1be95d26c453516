// 仿真任务装配与主循环
package task

import (
	"fmt"
	"sync/atomic"

	"github.com/citysim-lab/fuzzylight/clock"
	"github.com/citysim-lab/fuzzylight/engine/fuzzy"
	"github.com/citysim-lab/fuzzylight/engine/signal"
	"github.com/citysim-lab/fuzzylight/recorder"
	"github.com/citysim-lab/fuzzylight/sim"
	"github.com/citysim-lab/fuzzylight/utils/config"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "task")
)

// Context 仿真任务上下文
// 功能：持有一次仿真任务的全部组件与状态，替代全局变量
// 说明：时钟、世界、推理引擎、信号状态机与轨迹输出在此装配
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 交通世界
	world *sim.World
	// 模糊推理引擎
	engine *fuzzy.Engine
	// 信号灯状态机
	controller *signal.Controller
	// 轨迹输出
	recorder *recorder.Recorder

	// 运行时配置
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建仿真任务上下文
// 功能：校验配置并装配时钟、世界、引擎、状态机与输出
// 参数：job-任务名，c-原始配置
// 返回：装配完成的上下文，配置非法或输出连接失败时返回错误
func NewContext(job string, c config.Config) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	eng, err := fuzzy.New(rc.Fuzzy, rc.Rules)
	if err != nil {
		return nil, err
	}
	controller, err := signal.NewController(eng, rc.Timing)
	if err != nil {
		return nil, err
	}
	rec, err := recorder.New(rc.All.Output)
	if err != nil {
		return nil, err
	}
	return &Context{
		job:           job,
		clock:         clock.New(rc.C.Step),
		world:         sim.NewWorld(rc.All.Sim, rc.C.Step.Interval),
		engine:        eng,
		controller:    controller,
		recorder:      rec,
		runtimeConfig: rc,
	}, nil
}

// Run 运行仿真主循环
// 功能：逐tick推进世界与状态机直至模拟区间结束或收到关闭指令
// 返回：快照契约违例等不可恢复错误，正常结束返回nil
// 算法说明（每tick，单线程顺序执行）：
// 1. 应用本tick外部到达（含surge脉冲），先于快照构造
// 2. 按状态机当前相位构造交通快照
// 3. Advance推进状态机（仅绿灯状态下内部求值）
// 4. 按推进后的信号状态放行车辆、推进路口内穿越
// 5. 写入轨迹文档，按间隔输出进度日志
// 说明：快照非法说明上游契约被破坏，按致命错误终止，不做投机恢复
func (ctx *Context) Run() error {
	rc := ctx.runtimeConfig
	log.Infof("job %s: %d ticks from tick %d (dt=%.4fs)",
		ctx.job, rc.C.Step.Total, rc.C.Step.Start, rc.C.Step.Interval)
	for !ctx.clock.Done() {
		if ctx.closed.Load() {
			log.Infof("job %s closed at %v", ctx.job, ctx.clock)
			break
		}
		tick := ctx.clock.Tick
		ctx.world.Apply(tick)
		snapshot := ctx.world.Snapshot(tick, ctx.controller.Status().PhaseIndex)
		status, err := ctx.controller.Advance(snapshot)
		if err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		ctx.world.Step(tick, status)
		decision := ctx.controller.LastDecision()
		ctx.recorder.Write(recorder.Record{
			Tick:   tick,
			T:      ctx.clock.T,
			Phase:  status.PhaseIndex,
			State:  status.State.String(),
			Timer:  status.Timer,
			Score:  decision.FinalScore,
			Base:   decision.BaseScore,
			Queues: ctx.world.QueueLengths(),
			Inside: snapshot.Inside,
		})
		if tick%rc.C.LogEvery == 0 {
			log.Infof("%v: %s phase=%d timer=%d score=%.1f queues=%v arrived=%d departed=%d",
				ctx.clock, status.State, status.PhaseIndex, status.Timer,
				decision.FinalScore, ctx.world.QueueLengths(), ctx.world.Arrived, ctx.world.Departed)
		}
		ctx.clock.Step()
	}
	log.Infof("job %s finished at %v: arrived=%d departed=%d",
		ctx.job, ctx.clock, ctx.world.Arrived, ctx.world.Departed)
	return nil
}

// Close 请求停止主循环并释放输出资源
// 说明：任意tick之间停止都不会破坏状态机一致性
func (ctx *Context) Close() {
	ctx.closed.Store(true)
	ctx.recorder.Close()
}
