package config

import (
	"github.com/citysim-lab/fuzzylight/engine/fuzzy"
	"github.com/citysim-lab/fuzzylight/engine/signal"
)

// ControlStep 指定模拟时间范围和间隔的配置项
// 功能：定义仿真tick范围与每tick对应的仿真时间
type ControlStep struct {
	Start    int     `yaml:"start"`    // 开始tick
	Total    int     `yaml:"total"`    // 总tick数
	Interval float64 `yaml:"interval"` // 每tick的时间间隔（秒），默认1/60
}

// Control 模拟器控制配置
type Control struct {
	Step     ControlStep `yaml:"step"`
	LogEvery int         `yaml:"log_every,omitempty"` // 进度日志间隔（tick），默认600
}

// EngineConfig 决策引擎配置
// 功能：隶属划分、规则权重与状态机定时；为空的部分使用默认标定
type EngineConfig struct {
	Fuzzy   *fuzzy.Config      `yaml:"fuzzy,omitempty"`   // 模糊引擎配置，为空则使用默认标定
	Weights map[string]float64 `yaml:"weights,omitempty"` // 规则权重覆盖，规则ID->权重
	FSM     *signal.Timing     `yaml:"fsm,omitempty"`     // 状态机定时，为空则使用默认定时
}

// Surge 到达脉冲配置
// 功能：在指定tick向指定车道一次性注入若干车辆（对应交互式的surge操作）
// 说明：脉冲作用于快照来源，在下一tick输入推导前生效，不绕过状态机判定
type Surge struct {
	Tick  int `yaml:"tick"`  // 注入tick
	Lane  int `yaml:"lane"`  // 目标车道，取值[0,4)
	Count int `yaml:"count"` // 注入车辆数
}

// Sim 交通世界配置
// 功能：到达过程、路口穿越时长与随机种子
type Sim struct {
	Seed         uint64    `yaml:"seed"`                    // 随机种子
	ArrivalRates []float64 `yaml:"arrival_rates,omitempty"` // 每车道每tick到达率，长度4，默认均为0.02
	CrossTicks   int       `yaml:"cross_ticks,omitempty"`   // 车辆穿越路口所需tick数，默认90
	Surges       []Surge   `yaml:"surges,omitempty"`        // 到达脉冲列表
}

// Output 轨迹输出配置
// 功能：MongoDB输出目标，URI为空则禁用输出
type Output struct {
	URI string `yaml:"uri,omitempty"` // MongoDB连接字符串
	DB  string `yaml:"db,omitempty"`  // 数据库名
	Col string `yaml:"col,omitempty"` // 集合名
}

// Config YAML配置文件的根结构
type Config struct {
	Control Control      `yaml:"control"`          // 模拟过程控制
	Engine  EngineConfig `yaml:"engine,omitempty"` // 决策引擎
	Sim     Sim          `yaml:"sim,omitempty"`    // 交通世界
	Output  Output       `yaml:"output,omitempty"` // 轨迹输出
}
