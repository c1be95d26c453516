package container

import "container/heap"

// scheduleItem 调度堆中的单个事件
type scheduleItem[T any] struct {
	tick  int
	value T
}

// scheduleHeap 按tick排序的小顶堆
type scheduleHeap[T any] []scheduleItem[T]

func (h scheduleHeap[T]) Len() int            { return len(h) }
func (h scheduleHeap[T]) Less(i, j int) bool  { return h[i].tick < h[j].tick }
func (h scheduleHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scheduleHeap[T]) Push(x interface{}) { *h = append(*h, x.(scheduleItem[T])) }
func (h *scheduleHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Schedule 按tick触发的事件调度器
// 功能：以小顶堆维护未来事件，逐tick弹出所有到期事件
// 说明：同一tick可挂多个事件；非并发安全
type Schedule[T any] struct {
	h scheduleHeap[T]
}

// NewSchedule 创建事件调度器
func NewSchedule[T any]() *Schedule[T] {
	return &Schedule[T]{h: make(scheduleHeap[T], 0)}
}

// Len 未触发事件数
func (s *Schedule[T]) Len() int {
	return s.h.Len()
}

// Add 在指定tick挂一个事件
func (s *Schedule[T]) Add(tick int, value T) {
	heap.Push(&s.h, scheduleItem[T]{tick: tick, value: value})
}

// PopDue 弹出所有tick≤now的到期事件
// 返回：到期事件列表，按tick升序
func (s *Schedule[T]) PopDue(now int) []T {
	var due []T
	for s.h.Len() > 0 && s.h[0].tick <= now {
		item := heap.Pop(&s.h).(scheduleItem[T])
		due = append(due, item.value)
	}
	return due
}
