// internal/ring/ring.go

// Package ring 提供固定容量的環狀緩衝區。
// 寫滿之後，新元素覆蓋最舊的元素；Total 記錄自建立以來的寫入總數（單調遞增）。
// 本型別不含鎖，由持有者負責同步。
package ring

// Ring 為泛型環狀緩衝區。
type Ring[T any] struct {
	buf   []T
	next  int    // 下一個寫入位置
	size  int    // 目前有效元素數
	total uint64 // 累計寫入次數
}

// New 建立容量為 capacity 的 Ring；capacity < 1 時視為 1。
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push 寫入 v，回傳被覆蓋的舊元素（若有）。
func (r *Ring[T]) Push(v T) (evicted T, overwritten bool) {
	if r.size == len(r.buf) {
		evicted, overwritten = r.buf[r.next], true
	} else {
		r.size++
	}
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	r.total++
	return evicted, overwritten
}

// Items 依寫入順序（最舊在前）回傳元素的複本。
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.size)
	start := (r.next - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Last 回傳最新寫入的元素。
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.buf[(r.next-1+len(r.buf))%len(r.buf)], true
}

func (r *Ring[T]) Len() int      { return r.size }
func (r *Ring[T]) Cap() int      { return len(r.buf) }
func (r *Ring[T]) Total() uint64 { return r.total }

// Reset 清空內容並歸零計數。
func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.next, r.size, r.total = 0, 0, 0
}
