// 随机数引擎，包装了golang.org/x/exp/rand，供到达过程等随机源使用
package randengine

import (
	"flag"
	"math"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "种子偏移量，用于调整随机数序列") // 不改代码即可切换随机数序列
)

// Engine 随机数引擎
// 功能：基于golang.org/x/exp/rand提供确定性随机数生成
// 说明：固定种子下序列可复现，用于到达过程与测试
type Engine struct {
	*rand.Rand
}

// New 创建随机数引擎
// 参数：seed-随机数种子（叠加全局种子偏移量）
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Bernoulli 以概率p返回true
// 说明：p≤0恒为false，p≥1恒为true
func (e *Engine) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return e.Float64() < p
}

// Poisson 按参数lambda生成泊松分布随机数
// 算法说明：Knuth乘积法；每tick到达率远小于1，迭代次数很少
func (e *Engine) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	threshold := math.Exp(-lambda)
	l := 1.0
	k := 0
	for {
		l *= e.Float64()
		if l <= threshold {
			return k
		}
		k++
	}
}
