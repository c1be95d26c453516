// 通用容器，提供仿真所需的FIFO队列与按tick排序的事件调度堆
package container

// Queue 泛型FIFO队列
// 功能：车道排队等先进先出场景的环形缓冲队列
// 说明：零值可用；非并发安全，仿真为单线程逐tick推进，无并发写者
type Queue[T any] struct {
	data []T
	head int
}

// Len 队列长度
func (q *Queue[T]) Len() int {
	return len(q.data) - q.head
}

// Push 入队到队尾
func (q *Queue[T]) Push(v T) {
	q.data = append(q.data, v)
}

// Front 队首元素
// 返回：队首元素与是否非空
func (q *Queue[T]) Front() (T, bool) {
	if q.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.data[q.head], true
}

// Pop 弹出队首元素
// 返回：队首元素与是否非空
// 说明：已弹出空间超过一半时压缩底层切片，避免长期仿真下内存只增不减
func (q *Queue[T]) Pop() (T, bool) {
	v, ok := q.Front()
	if !ok {
		return v, false
	}
	var zero T
	q.data[q.head] = zero
	q.head++
	if q.head > len(q.data)/2 {
		q.data = append(q.data[:0], q.data[q.head:]...)
		q.head = 0
	}
	return v, true
}

// Each 按入队顺序遍历
func (q *Queue[T]) Each(f func(v T)) {
	for _, v := range q.data[q.head:] {
		f(v)
	}
}
