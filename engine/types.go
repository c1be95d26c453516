// 决策引擎的公共类型定义，供fuzzy与signal等子包共享使用
package engine

import (
	"errors"
	"fmt"
)

// LaneCount 路口相位数，即可获得绿灯的车道组数量
const LaneCount = 4

var (
	// ErrConfig 配置错误，启动时校验失败，引擎不允许启动
	ErrConfig = errors.New("fuzzylight: invalid config")
	// ErrInvalidInput 输入错误，快照违反输入契约（上游错误，不可恢复）
	ErrInvalidInput = errors.New("fuzzylight: invalid snapshot")
)

// TrafficSnapshot 每tick的交通状态快照
// 功能：描述一次决策所需的全部外部输入，由驱动方每tick重新构造
// 说明：引擎只读不写；负值或越界的相位索引视为上游契约违例（ErrInvalidInput）
type TrafficSnapshot struct {
	ActiveIndex int                // 当前绿灯相位索引，取值[0,4)
	ActiveQueue int                // 当前绿灯车道排队车辆数
	Waiting     [LaneCount - 1]int // 其余车道排队车辆数，按相位顺序：Waiting[i]对应相位(ActiveIndex+1+i)%4
	LongestWait int                // 绿灯外排队车辆中最长等待时间（tick）
	Inside      int                // 当前处于路口内部的车辆数
}

// Validate 校验快照是否满足输入契约
// 功能：检查相位索引范围与各计数的非负性
// 返回：违反契约时返回包装了ErrInvalidInput的错误，否则返回nil
func (s TrafficSnapshot) Validate() error {
	if s.ActiveIndex < 0 || s.ActiveIndex >= LaneCount {
		return fmt.Errorf("%w: active index %d out of [0,%d)", ErrInvalidInput, s.ActiveIndex, LaneCount)
	}
	if s.ActiveQueue < 0 {
		return fmt.Errorf("%w: negative active queue %d", ErrInvalidInput, s.ActiveQueue)
	}
	for i, q := range s.Waiting {
		if q < 0 {
			return fmt.Errorf("%w: negative waiting queue %d at %d", ErrInvalidInput, q, i)
		}
	}
	if s.LongestWait < 0 {
		return fmt.Errorf("%w: negative wait %d", ErrInvalidInput, s.LongestWait)
	}
	if s.Inside < 0 {
		return fmt.Errorf("%w: negative inside count %d", ErrInvalidInput, s.Inside)
	}
	return nil
}

// WaitingTotal 其余车道排队车辆总数
func (s TrafficSnapshot) WaitingTotal() int {
	total := 0
	for _, q := range s.Waiting {
		total += q
	}
	return total
}

// DecisionResult 一次模糊推理的完整输出
// 功能：记录去模糊化得到的基础得分、三项后处理调整量与最终得分
// 说明：FinalScore恒在[0,100]内；得分越低越倾向于切换相位
type DecisionResult struct {
	BaseScore      float64 // 去模糊化基础得分
	BatchBonus     float64 // 批量通行奖励（≥0）
	EmptyPenalty   float64 // 空车道惩罚（≤0）
	UrgencyPenalty float64 // 紧迫惩罚（≤0）
	FinalScore     float64 // 最终得分，钳制到[0,100]
}
