package window

import (
	"testing"

	"snaptile/internal/platform"
)

func TestMonitorResolver_KeepsPlatformDeclaredIndices(t *testing.T) {
	r := NewMonitorResolver()
	r.Seed([]platform.MonitorDescriptor{
		{Handle: 100, Index: 0},
		{Handle: 200, Index: 1},
	})

	if got := r.IndexFor(100); got != 0 {
		t.Fatalf("expected index 0 for handle 100, got %d", got)
	}
	if got := r.IndexFor(200); got != 1 {
		t.Fatalf("expected index 1 for handle 200, got %d", got)
	}
}

func TestMonitorResolver_DuplicateDeclaredIndexFallsToNextFree(t *testing.T) {
	r := NewMonitorResolver()
	r.Seed([]platform.MonitorDescriptor{
		{Handle: 100, Index: 0},
		{Handle: 200, Index: 0},
	})

	if got := r.IndexFor(100); got != 0 {
		t.Fatalf("expected index 0 for handle 100, got %d", got)
	}
	if got := r.IndexFor(200); got != 1 {
		t.Fatalf("expected index 1 for handle 200, got %d", got)
	}
}

func TestMonitorResolver_IndicesStableAcrossHotPlug(t *testing.T) {
	r := NewMonitorResolver()
	r.Seed([]platform.MonitorDescriptor{
		{Handle: 100, Index: 0},
		{Handle: 200, Index: 1},
	})

	// A new monitor appears; existing assignments must not shift.
	if got := r.IndexFor(300); got != 2 {
		t.Fatalf("expected index 2 for new handle, got %d", got)
	}
	if got := r.IndexFor(100); got != 0 {
		t.Fatalf("handle 100 shifted to %d", got)
	}
	if got := r.IndexFor(200); got != 1 {
		t.Fatalf("handle 200 shifted to %d", got)
	}

	// Re-seeding with the same monitors is a no-op.
	r.Seed([]platform.MonitorDescriptor{
		{Handle: 200, Index: 0},
		{Handle: 100, Index: 1},
	})
	if got := r.IndexFor(100); got != 0 {
		t.Fatalf("re-seed changed handle 100 to %d", got)
	}
}

func TestMonitorResolver_ZeroHandleIsUnknownMonitor(t *testing.T) {
	r := NewMonitorResolver()
	if got := r.IndexFor(0); got != 0 {
		t.Fatalf("expected 0 for the zero handle, got %d", got)
	}
}
