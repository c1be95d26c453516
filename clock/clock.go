package clock

import (
	"fmt"

	"github.com/citysim-lab/fuzzylight/utils/config"
)

// Clock 仿真时钟
// 功能：管理固定步长仿真的tick推进与时间换算
// 说明：维护当前tick与仿真时间，模拟区间为[START, END)
type Clock struct {
	DT         float64 // 每tick时间间隔（秒）
	START_TICK int     // 起始tick
	END_TICK   int     // 结束tick

	T    float64 // 当前仿真时间（秒）
	Tick int     // 当前tick
}

// New 根据配置创建时钟
// 参数：stepConfig-控制步配置（起始tick、总tick数、每tick间隔）
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_TICK: stepConfig.Start,
		END_TICK:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟状态
// 功能：回到起始tick并重算当前时间
func (c *Clock) Init() {
	c.Tick = c.START_TICK
	c.T = float64(c.Tick) * c.DT
}

// Done 是否已到达模拟区间终点
func (c *Clock) Done() bool {
	return c.Tick >= c.END_TICK
}

// Step 推进一个tick
func (c *Clock) Step() {
	c.Tick++
	c.T = float64(c.Tick) * c.DT
}

// String 当前时钟的可读表示
func (c *Clock) String() string {
	return fmt.Sprintf("tick %d (t=%.2fs)", c.Tick, c.T)
}
