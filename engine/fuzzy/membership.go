// 提供基于模糊推理的信号决策引擎
// 实现梯形隶属度函数、规则求值与重心法去模糊化，输出0-100的保持/切换得分
package fuzzy

import (
	"fmt"

	"github.com/citysim-lab/fuzzylight/engine"
)

// 语言变量名（输入维度）
const (
	InputClearance = "clearance" // 清空时间（秒）
	InputImbalance = "imbalance" // 排队不平衡比
	InputUrgency   = "urgency"   // 紧迫指数
)

// 语言项名（隶属集合）
const (
	TermLow    = "low"    // 低档（short/low）
	TermMedium = "medium" // 中档
	TermHigh   = "high"   // 高档（long/high）
)

// Set 梯形隶属度集合
// 功能：以四点(a,b,c,d)描述一个语言项的梯形隶属度函数
// 说明：要求a≤b≤c≤d且a<d，在配置加载时校验，求值阶段不再检查
type Set struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
}

// Validate 校验梯形参数
// 功能：检查四点单调且不退化为单点
// 返回：非法参数返回包装了ErrConfig的错误
func (s Set) Validate() error {
	if !(s.A <= s.B && s.B <= s.C && s.C <= s.D) {
		return fmt.Errorf("%w: trapezoid (%v,%v,%v,%v) not monotonic", engine.ErrConfig, s.A, s.B, s.C, s.D)
	}
	if s.A == s.D {
		return fmt.Errorf("%w: degenerate trapezoid at %v", engine.ErrConfig, s.A)
	}
	return nil
}

// Degree 计算x对该集合的隶属度
// 功能：梯形隶属度求值，结果落在[0,1]
// 算法说明：
// 1. x≤a或x≥d时隶属度为0
// 2. b≤x≤c时处于平台区，隶属度为1
// 3. a<x<b时处于上升沿，线性插值(x-a)/(b-a)
// 4. c<x<d时处于下降沿，线性插值(d-x)/(d-c)
func (s Set) Degree(x float64) float64 {
	switch {
	case x <= s.A || x >= s.D:
		return 0
	case s.B <= x && x <= s.C:
		return 1
	case x < s.B:
		return (x - s.A) / (s.B - s.A)
	default:
		return (s.D - x) / (s.D - s.C)
	}
}

// Partition 单个输入维度上的三档隶属集合划分
type Partition struct {
	Low    Set `yaml:"low"`
	Medium Set `yaml:"medium"`
	High   Set `yaml:"high"`
}

// Validate 校验划分内全部集合
func (p Partition) Validate() error {
	for _, s := range []Set{p.Low, p.Medium, p.High} {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// set 按语言项名取集合
func (p Partition) set(term string) (Set, bool) {
	switch term {
	case TermLow:
		return p.Low, true
	case TermMedium:
		return p.Medium, true
	case TermHigh:
		return p.High, true
	default:
		return Set{}, false
	}
}
