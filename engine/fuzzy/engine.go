package fuzzy

import (
	"fmt"

	"github.com/citysim-lab/fuzzylight/engine"
	"github.com/samber/lo"
)

// Epsilon 去模糊化分母保护项
// 说明：全部规则无激活时，ε质量位于中性重心，使基础得分退化为中性值50
const Epsilon = 0.001

// Centroids 输出论域上三个单点重心的位置
type Centroids struct {
	Switch   float64 `yaml:"switch"`   // 切换重心
	Conflict float64 `yaml:"conflict"` // 冲突（中性）重心
	Keep     float64 `yaml:"keep"`     // 保持重心
}

// PostConfig 后处理调整参数
// 功能：三项独立调整的阈值与幅度，均基于原始值而非隶属度
type PostConfig struct {
	BatchQueueMin   int     `yaml:"batch_queue_min"`   // 批量奖励的最小队列（不含）
	BatchUrgencyMax float64 `yaml:"batch_urgency_max"` // 批量奖励允许的紧迫上限（不含）
	BatchPerCar     float64 `yaml:"batch_per_car"`     // 每辆超出车的奖励
	BatchCap        float64 `yaml:"batch_cap"`         // 批量奖励上限
	EmptyQueueMax   int     `yaml:"empty_queue_max"`   // 空车道惩罚的队列上限（含）
	EmptyWaitingMin int     `yaml:"empty_waiting_min"` // 空车道惩罚要求的最大等待队列（不含）
	EmptyPenalty    float64 `yaml:"empty_penalty"`     // 空车道惩罚值（负数）
	UrgencyLimit    float64 `yaml:"urgency_limit"`     // 紧迫惩罚的触发阈值（不含）
	UrgencyGain     float64 `yaml:"urgency_gain"`      // 超出阈值每单位的惩罚幅度
}

// Config 模糊引擎配置
// 功能：三个输入维度的隶属划分、规则权重覆盖、重心与后处理参数
// 说明：启动时加载并校验一次，此后不可变
type Config struct {
	Clearance Partition          `yaml:"clearance"`         // 清空时间划分
	Imbalance Partition          `yaml:"imbalance"`         // 不平衡比划分
	Urgency   Partition          `yaml:"urgency"`           // 紧迫指数划分
	Weights   map[string]float64 `yaml:"weights,omitempty"` // 规则权重覆盖，规则ID->权重
	Centroids Centroids          `yaml:"centroids"`         // 输出重心
	Post      PostConfig         `yaml:"post"`              // 后处理参数
}

// DefaultConfig 默认引擎配置
// 功能：返回按交通工程标定的默认隶属划分、重心与后处理参数
// 说明：清空时间单位为秒，不平衡比与紧迫指数为无量纲
func DefaultConfig() Config {
	return Config{
		Clearance: Partition{
			Low:    Set{0, 0, 4, 10},
			Medium: Set{6, 12, 20, 30},
			High:   Set{20, 30, 60, 60},
		},
		Imbalance: Partition{
			Low:    Set{0, 0, 0.5, 1.5},
			Medium: Set{0.8, 1.5, 2.5, 4.0},
			High:   Set{2.5, 4.0, 10, 10},
		},
		Urgency: Partition{
			Low:    Set{0, 0, 0.3, 0.7},
			Medium: Set{0.5, 0.8, 1.2, 1.8},
			High:   Set{1.2, 1.8, 5.0, 5.0},
		},
		Centroids: Centroids{Switch: 15, Conflict: 50, Keep: 85},
		Post: PostConfig{
			BatchQueueMin:   5,
			BatchUrgencyMax: 1.5,
			BatchPerCar:     2,
			BatchCap:        12,
			EmptyQueueMax:   1,
			EmptyWaitingMin: 2,
			EmptyPenalty:    -25,
			UrgencyLimit:    2.0,
			UrgencyGain:     10,
		},
	}
}

// DefaultRules 默认规则集
// 功能：返回9条固定规则：3条保持、4条切换、2条冲突
// 说明：前件以表达式树描述，权重可被Config.Weights按ID覆盖
func DefaultRules() []Rule {
	return []Rule{
		// 保持：当前队列仍需较长清空时间且无高紧迫
		{ID: "R1", Category: Keep, Weight: 1.4,
			Antecedent: And(Term(InputClearance, TermHigh), Not(Term(InputUrgency, TermHigh)))},
		// 保持：服务均衡、中等清空且无高紧迫
		{ID: "R2", Category: Keep, Weight: 1.2,
			Antecedent: And(Term(InputImbalance, TermLow), Term(InputClearance, TermMedium), Not(Term(InputUrgency, TermHigh)))},
		// 保持：让当前批量通过（中/长清空、低不平衡、低紧迫）
		{ID: "R3", Category: Keep, Weight: 1.3,
			Antecedent: And(Or(Term(InputClearance, TermMedium), Term(InputClearance, TermHigh)), Term(InputImbalance, TermLow), Term(InputUrgency, TermLow))},
		// 切换：等待车道被冷落且当前队列不大
		{ID: "R4", Category: Switch, Weight: 1.3,
			Antecedent: And(Term(InputImbalance, TermHigh), Or(Term(InputClearance, TermLow), Term(InputClearance, TermMedium)))},
		// 切换：等待司机高度紧迫
		{ID: "R5", Category: Switch, Weight: 1.5,
			Antecedent: Term(InputUrgency, TermHigh)},
		// 切换：当前车道近空而他处排队
		{ID: "R6", Category: Switch, Weight: 1.6,
			Antecedent: And(Term(InputClearance, TermLow), Or(Term(InputImbalance, TermMedium), Term(InputImbalance, TermHigh)))},
		// 切换：中等不平衡叠加中等紧迫
		{ID: "R7", Category: Switch, Weight: 0.9,
			Antecedent: And(Term(InputImbalance, TermMedium), Term(InputUrgency, TermMedium))},
		// 冲突：清空需求与紧迫需求同时强烈
		{ID: "R8", Category: Conflict, Weight: 0.7,
			Antecedent: And(Term(InputClearance, TermHigh), Term(InputUrgency, TermHigh))},
		// 冲突：三个维度全部中等
		{ID: "R9", Category: Conflict, Weight: 0.9,
			Antecedent: And(Term(InputClearance, TermMedium), Term(InputImbalance, TermMedium), Term(InputUrgency, TermMedium))},
	}
}

// Engine 模糊推理引擎
// 功能：模糊化->规则求值->去模糊化->后处理的纯计算管线
// 说明：不持有跨tick状态，Evaluate可在同一tick内多次调用且结果一致
type Engine struct {
	cfg        Config
	rules      []Rule
	partitions map[string]Partition
}

// New 创建模糊推理引擎
// 功能：校验隶属划分与规则集并应用权重覆盖
// 参数：cfg-引擎配置，rules-规则集（通常为DefaultRules）
// 返回：初始化完成的引擎，配置非法时返回包装了ErrConfig的错误
func New(cfg Config, rules []Rule) (*Engine, error) {
	partitions := map[string]Partition{
		InputClearance: cfg.Clearance,
		InputImbalance: cfg.Imbalance,
		InputUrgency:   cfg.Urgency,
	}
	for name, p := range partitions {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w (input %q)", err, name)
		}
	}
	rules = append([]Rule(nil), rules...)
	for id := range cfg.Weights {
		if !lo.ContainsBy(rules, func(r Rule) bool { return r.ID == id }) {
			return nil, fmt.Errorf("%w: weight override for unknown rule %q", engine.ErrConfig, id)
		}
	}
	for i, r := range rules {
		if w, ok := cfg.Weights[r.ID]; ok {
			rules[i].Weight = w
		}
	}
	if err := validateRules(rules, partitions); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, rules: rules, partitions: partitions}, nil
}

// Fuzzify 计算三个输入在各自划分上的隶属度
func (e *Engine) Fuzzify(in Inputs) Degrees {
	values := map[string]float64{
		InputClearance: in.Clearance,
		InputImbalance: in.Imbalance,
		InputUrgency:   in.Urgency,
	}
	d := make(Degrees, len(e.partitions))
	for name, p := range e.partitions {
		x := values[name]
		d[name] = map[string]float64{
			TermLow:    p.Low.Degree(x),
			TermMedium: p.Medium.Degree(x),
			TermHigh:   p.High.Degree(x),
		}
	}
	return d
}

// categoryTotals 按类别聚合规则激活度
// 功能：每个类别取该类规则加权激活度的最大值（Mamdani蕴含聚合，最强规则主导）
func (e *Engine) categoryTotals(d Degrees) (keep, switch_, conflict float64) {
	for _, r := range e.rules {
		a := r.Activation(d)
		switch r.Category {
		case Keep:
			keep = max(keep, a)
		case Switch:
			switch_ = max(switch_, a)
		case Conflict:
			conflict = max(conflict, a)
		}
	}
	return
}

// defuzzify 重心法去模糊化
// 功能：对三个输出单点重心做加权平均，得到基础得分
// 说明：ε质量挂在中性重心上，全部激活为零时得分恰为中性值
func (e *Engine) defuzzify(keep, switch_, conflict float64) float64 {
	c := e.cfg.Centroids
	num := keep*c.Keep + switch_*c.Switch + conflict*c.Conflict + Epsilon*c.Conflict
	den := keep + switch_ + conflict + Epsilon
	return num / den
}

// postProcess 三项独立的得分调整
// 功能：批量奖励、空车道惩罚与紧迫惩罚，相互无交互项，求和后钳制
func (e *Engine) postProcess(snapshot engine.TrafficSnapshot, in Inputs, res *engine.DecisionResult) {
	p := e.cfg.Post
	maxWaiting := lo.Max(snapshot.Waiting[:])
	if snapshot.ActiveQueue > p.BatchQueueMin && in.Urgency < p.BatchUrgencyMax {
		res.BatchBonus = min(p.BatchCap, float64(snapshot.ActiveQueue-p.BatchQueueMin)*p.BatchPerCar)
	}
	if snapshot.ActiveQueue <= p.EmptyQueueMax && maxWaiting > p.EmptyWaitingMin {
		res.EmptyPenalty = p.EmptyPenalty
	}
	if in.Urgency > p.UrgencyLimit {
		res.UrgencyPenalty = -p.UrgencyGain * (in.Urgency - p.UrgencyLimit)
	}
	score := res.BaseScore + res.BatchBonus + res.EmptyPenalty + res.UrgencyPenalty
	res.FinalScore = max(0, min(100, score))
}

// Evaluate 对一份快照执行完整推理
// 功能：推导输入->模糊化->规则求值->去模糊化->后处理
// 参数：snapshot-本tick交通快照
// 返回：完整决策结果；快照违反输入契约时返回包装了ErrInvalidInput的错误
// 说明：纯函数，无副作用，可供可视化等消费方任意次调用
func (e *Engine) Evaluate(snapshot engine.TrafficSnapshot) (engine.DecisionResult, error) {
	if err := snapshot.Validate(); err != nil {
		return engine.DecisionResult{}, err
	}
	in := DeriveInputs(snapshot)
	d := e.Fuzzify(in)
	keep, switch_, conflict := e.categoryTotals(d)
	res := engine.DecisionResult{BaseScore: e.defuzzify(keep, switch_, conflict)}
	e.postProcess(snapshot, in, &res)
	return res, nil
}
