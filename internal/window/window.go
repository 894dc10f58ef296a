// Package window implements a fixed-capacity sliding window of unique numbers.
package window

import "sync"

// Window keeps at most capacity unique values ordered by arrival, oldest first.
type Window struct {
	mu       sync.Mutex
	capacity int
	values   []float64
}

// New creates an empty window. A non-positive capacity is treated as 1.
func New(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{
		capacity: capacity,
		values:   make([]float64, 0, capacity),
	}
}

// Capacity returns the maximum number of values held.
func (w *Window) Capacity() int {
	return w.capacity
}

// Snapshot returns a copy of the current contents.
func (w *Window) Snapshot() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return clone(w.values)
}

// Update absorbs incoming values and returns the contents before and after.
//
// Values already in the window, and repeats within the batch, are ignored. When the
// remaining values do not fit, the oldest entries are evicted from the front, one per
// value that overflows. If the batch alone exceeds capacity, only its last capacity
// values survive.
func (w *Window) Update(incoming []float64) (prev, curr []float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev = clone(w.values)

	fresh := w.unique(incoming)
	if len(fresh) == 0 {
		return prev, clone(w.values)
	}

	// Filling the free slots and then evicting one oldest entry per leftover value
	// leaves exactly the newest capacity values.
	next := make([]float64, 0, len(w.values)+len(fresh))
	next = append(next, w.values...)
	next = append(next, fresh...)
	if len(next) > w.capacity {
		next = next[len(next)-w.capacity:]
	}

	w.values = append(w.values[:0:0], next...)
	return prev, clone(w.values)
}

func (w *Window) unique(incoming []float64) []float64 {
	seen := make(map[float64]struct{}, len(w.values)+len(incoming))
	for _, v := range w.values {
		seen[v] = struct{}{}
	}

	fresh := make([]float64, 0, len(incoming))
	for _, v := range incoming {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		fresh = append(fresh, v)
	}
	return fresh
}

func clone(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
