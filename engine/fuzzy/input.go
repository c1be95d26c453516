package fuzzy

import (
	"github.com/citysim-lab/fuzzylight/engine"
	"github.com/samber/lo"
)

// 输入推导常数（交通工程参数）
const (
	// SaturationHeadway 饱和车头时距，绿灯下车辆依次通过的间隔（秒/辆）
	SaturationHeadway = 2.0
	// PatienceTicks 耐心阈值，紧迫指数的等待时间归一化尺度（tick）
	// 按tick而非秒计，与原始等待计量保持同一尺度
	PatienceTicks = 45.0
)

// Inputs 模糊推理的三个标量输入
// 功能：由原始交通快照推导得到，每次求值重新计算，不跨tick缓存
type Inputs struct {
	Clearance float64 // 清空时间（秒）：排空当前绿灯队列所需时间
	Imbalance float64 // 不平衡比：最大等待队列与当前队列之比（公平性代理）
	Urgency   float64 // 紧迫指数：最长等待按队列压力加权
}

// DeriveInputs 从交通快照推导模糊输入
// 功能：计算清空时间、不平衡比与紧迫指数
// 参数：snapshot-已通过校验的交通快照
// 返回：三个标量输入
// 算法说明：
// 1. 清空时间 = 当前队列 × 饱和车头时距
// 2. 不平衡比 = 最大等待队列 / (当前队列+1)，+1避免除零
// 3. 紧迫指数 = (最长等待/45) × (1+最大等待队列/10)，时间压力与队列压力相乘
func DeriveInputs(snapshot engine.TrafficSnapshot) Inputs {
	active := float64(snapshot.ActiveQueue)
	maxWaiting := float64(lo.Max(snapshot.Waiting[:]))
	return Inputs{
		Clearance: active * SaturationHeadway,
		Imbalance: maxWaiting / (active + 1),
		Urgency:   float64(snapshot.LongestWait) / PatienceTicks * (1 + maxWaiting/10),
	}
}
