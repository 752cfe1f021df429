package window

import (
	"sync"

	"snaptile/internal/platform"
)

// MonitorResolver maps opaque platform monitor handles to small integers
// that stay stable for the session. First-seen monitors keep their
// platform-declared index; handles that appear later (hot-plug) get the
// next unused integer so already-assigned indices never shift.
type MonitorResolver struct {
	mu      sync.Mutex
	indices map[platform.MonitorHandle]int
	used    map[int]bool
}

func NewMonitorResolver() *MonitorResolver {
	return &MonitorResolver{
		indices: make(map[platform.MonitorHandle]int),
		used:    make(map[int]bool),
	}
}

// Seed records the platform-declared index for each monitor not seen
// before. A declared index that is already taken falls through to the
// next free integer.
func (r *MonitorResolver) Seed(monitors []platform.MonitorDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range monitors {
		if _, ok := r.indices[m.Handle]; ok {
			continue
		}
		idx := m.Index
		if idx < 0 || r.used[idx] {
			idx = r.nextFreeLocked()
		}
		r.indices[m.Handle] = idx
		r.used[idx] = true
	}
}

// IndexFor resolves a handle to its session index, assigning the next
// unused integer to handles never seen before. The zero handle is the
// "unknown monitor" fallback and always resolves to 0.
func (r *MonitorResolver) IndexFor(h platform.MonitorHandle) int {
	if h == 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.indices[h]; ok {
		return idx
	}
	idx := r.nextFreeLocked()
	r.indices[h] = idx
	r.used[idx] = true
	return idx
}

func (r *MonitorResolver) nextFreeLocked() int {
	for i := 0; ; i++ {
		if !r.used[i] {
			return i
		}
	}
}
