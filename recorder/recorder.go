// 提供仿真轨迹的MongoDB输出
// 每tick一条文档，批量写入；未配置URI时整体禁用
package recorder

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/citysim-lab/fuzzylight/utils/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	batchSize = flag.Int("output.batch", 500, "轨迹输出的批量写入大小")

	log = logrus.WithField("module", "recorder")
)

// Record 单tick的轨迹文档
type Record struct {
	Tick   int     `bson:"tick"`   // tick
	T      float64 `bson:"t"`      // 仿真时间（秒）
	Phase  int     `bson:"phase"`  // 绿灯相位索引
	State  string  `bson:"state"`  // 信号状态
	Timer  int     `bson:"timer"`  // 状态内计时（tick）
	Score  float64 `bson:"score"`  // 最终得分
	Base   float64 `bson:"base"`   // 基础得分
	Queues []int   `bson:"queues"` // 四车道队列长度
	Inside int     `bson:"inside"` // 路口内车辆数
}

// Recorder 轨迹记录器
// 功能：缓冲每tick的轨迹文档，按批量阈值异步于决策逻辑落库
// 说明：URI为空时记录器为禁用态，所有方法空操作
type Recorder struct {
	client *mongo.Client
	col    *mongo.Collection
	buf    []interface{}
	closed bool
}

// New 创建轨迹记录器
// 功能：按输出配置连接MongoDB；URI为空则返回禁用态记录器
// 参数：out-输出配置
// 返回：记录器实例，连接失败时返回错误
func New(out config.Output) (*Recorder, error) {
	if out.URI == "" {
		log.Warn("output uri not set, trace recording disabled")
		return &Recorder{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(out.URI))
	if err != nil {
		return nil, fmt.Errorf("recorder: connect %s: %w", out.URI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("recorder: ping %s: %w", out.URI, err)
	}
	log.Infof("recording trace to %s.%s", out.DB, out.Col)
	return &Recorder{
		client: client,
		col:    client.Database(out.DB).Collection(out.Col),
	}, nil
}

// Enabled 记录器是否启用
func (r *Recorder) Enabled() bool {
	return r.col != nil
}

// Write 追加一条轨迹文档
// 说明：达到批量阈值时同步落库；落库失败只告警，不中断仿真
func (r *Recorder) Write(rec Record) {
	if !r.Enabled() {
		return
	}
	r.buf = append(r.buf, rec)
	if len(r.buf) >= *batchSize {
		r.flush()
	}
}

// flush 批量写入缓冲中的全部文档
func (r *Recorder) flush() {
	if len(r.buf) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := r.col.InsertMany(ctx, r.buf); err != nil {
		log.Warnf("insert %d records failed: %v", len(r.buf), err)
	}
	r.buf = r.buf[:0]
}

// Close 落库尾部缓冲并断开连接（幂等）
func (r *Recorder) Close() {
	if !r.Enabled() || r.closed {
		return
	}
	r.closed = true
	r.flush()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.client.Disconnect(ctx); err != nil {
		log.Warnf("disconnect failed: %v", err)
	}
}
