package fuzzy

import (
	"fmt"

	"github.com/citysim-lab/fuzzylight/engine"
)

// Category 规则结论类别
// 说明：类别决定规则在输出论域上的重心位置（KEEP=85 / CONFLICT=50 / SWITCH=15）
type Category int

const (
	Keep     Category = iota // 保持当前绿灯
	Switch                   // 切换到下一相位
	Conflict                 // 双方需求均强，难以取舍
)

// String 类别名
func (c Category) String() string {
	switch c {
	case Keep:
		return "KEEP"
	case Switch:
		return "SWITCH"
	case Conflict:
		return "CONFLICT"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Degrees 模糊化结果，输入维度->语言项->隶属度
type Degrees map[string]map[string]float64

// Expr 规则前件表达式
// 功能：在隶属度上求值的表达式树节点，AND取min、OR取max、NOT取1-x
// 说明：规则以数据形式描述，便于逐条单元测试与增删规则
type Expr interface {
	// Eval 在给定隶属度上求值，结果落在[0,1]
	Eval(d Degrees) float64
	// terms 收集表达式引用的全部语言项，用于配置校验
	terms() []termRef
}

type termRef struct {
	input string
	term  string
}

type termExpr termRef

func (e termExpr) Eval(d Degrees) float64 { return d[e.input][e.term] }
func (e termExpr) terms() []termRef       { return []termRef{termRef(e)} }

type andExpr []Expr

func (e andExpr) Eval(d Degrees) float64 {
	v := 1.0
	for _, sub := range e {
		if s := sub.Eval(d); s < v {
			v = s
		}
	}
	return v
}

func (e andExpr) terms() (refs []termRef) {
	for _, sub := range e {
		refs = append(refs, sub.terms()...)
	}
	return
}

type orExpr []Expr

func (e orExpr) Eval(d Degrees) float64 {
	v := 0.0
	for _, sub := range e {
		if s := sub.Eval(d); s > v {
			v = s
		}
	}
	return v
}

func (e orExpr) terms() (refs []termRef) {
	for _, sub := range e {
		refs = append(refs, sub.terms()...)
	}
	return
}

type notExpr struct{ sub Expr }

func (e notExpr) Eval(d Degrees) float64 { return 1 - e.sub.Eval(d) }
func (e notExpr) terms() []termRef       { return e.sub.terms() }

// Term 引用某输入维度的某语言项的隶属度
func Term(input, term string) Expr { return termExpr{input: input, term: term} }

// And 取各子表达式的最小值
func And(subs ...Expr) Expr { return andExpr(subs) }

// Or 取各子表达式的最大值
func Or(subs ...Expr) Expr { return orExpr(subs) }

// Not 取1减子表达式
func Not(sub Expr) Expr { return notExpr{sub: sub} }

// Rule 单条推理规则
// 功能：以数据描述一条规则：标识、结论类别、前件表达式与权重
type Rule struct {
	ID         string   // 规则标识
	Category   Category // 结论类别
	Antecedent Expr     // 前件表达式
	Weight     float64  // 规则权重
}

// Activation 计算规则的加权激活度
// 功能：前件求值后乘以权重；前件≤1故激活度不超过权重
func (r Rule) Activation(d Degrees) float64 {
	return r.Antecedent.Eval(d) * r.Weight
}

// validateRules 校验规则集
// 功能：检查权重为正且引用的语言项在隶属划分中均有定义
// 返回：存在未定义语言项或非法权重时返回包装了ErrConfig的错误
func validateRules(rules []Rule, partitions map[string]Partition) error {
	for _, r := range rules {
		if r.Antecedent == nil {
			return fmt.Errorf("%w: rule %s has no antecedent", engine.ErrConfig, r.ID)
		}
		if r.Weight <= 0 {
			return fmt.Errorf("%w: rule %s weight %v not positive", engine.ErrConfig, r.ID, r.Weight)
		}
		for _, ref := range r.Antecedent.terms() {
			p, ok := partitions[ref.input]
			if !ok {
				return fmt.Errorf("%w: rule %s references unknown input %q", engine.ErrConfig, r.ID, ref.input)
			}
			if _, ok := p.set(ref.term); !ok {
				return fmt.Errorf("%w: rule %s references unknown term %q of input %q", engine.ErrConfig, r.ID, ref.term, ref.input)
			}
		}
	}
	return nil
}
