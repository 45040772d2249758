package watch

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"
)

// recorder collects debouncer flushes.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) flush(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.batches)
}

func TestDebouncer_SingleEvent(t *testing.T) {
	var r recorder
	d := NewDebouncer(50*time.Millisecond, r.flush)
	defer d.Stop()

	d.Add("core/src/main/java/A.java")
	time.Sleep(150 * time.Millisecond)

	got := r.snapshot()
	if len(got) != 1 || !slices.Equal(got[0], []string{"core/src/main/java/A.java"}) {
		t.Errorf("unexpected batches: %v", got)
	}
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	var r recorder
	d := NewDebouncer(100*time.Millisecond, r.flush)
	defer d.Stop()

	d.Add("web/pom.xml")
	time.Sleep(20 * time.Millisecond)
	d.Add("core/pom.xml")
	d.Add("web/pom.xml")
	time.Sleep(20 * time.Millisecond)
	d.Add("api/pom.xml")

	time.Sleep(250 * time.Millisecond)

	got := r.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 flush, got %d: %v", len(got), got)
	}
	want := []string{"api/pom.xml", "core/pom.xml", "web/pom.xml"}
	if !slices.Equal(got[0], want) {
		t.Errorf("expected %v, got %v", want, got[0])
	}
}

func TestDebouncer_FlushNow(t *testing.T) {
	var r recorder
	d := NewDebouncer(time.Second, r.flush)
	defer d.Stop()

	d.Add("b")
	d.Add("a")
	d.FlushNow()

	got := r.snapshot()
	if len(got) != 1 || !slices.Equal(got[0], []string{"a", "b"}) {
		t.Errorf("unexpected batches: %v", got)
	}
	if n := d.PendingCount(); n != 0 {
		t.Errorf("expected nothing pending after flush, got %d", n)
	}
}

func TestDebouncer_FlushNowEmpty(t *testing.T) {
	var r recorder
	d := NewDebouncer(time.Second, r.flush)
	defer d.Stop()

	d.FlushNow()

	if got := r.snapshot(); len(got) != 0 {
		t.Errorf("empty flush should not call onFlush, got %v", got)
	}
}

func TestDebouncer_StopFlushesAndIgnoresLaterEvents(t *testing.T) {
	var r recorder
	d := NewDebouncer(50*time.Millisecond, r.flush)

	d.Add("src")
	d.Stop()
	d.Add("lib")
	time.Sleep(100 * time.Millisecond)

	got := r.snapshot()
	if len(got) != 1 || !slices.Equal(got[0], []string{"src"}) {
		t.Errorf("unexpected batches: %v", got)
	}
}

func TestDebouncer_PendingCount(t *testing.T) {
	d := NewDebouncer(time.Second, func([]string) {})
	defer d.Stop()

	if count := d.PendingCount(); count != 0 {
		t.Errorf("expected 0 pending, got %d", count)
	}

	d.Add("src")
	d.Add("lib")
	d.Add("src")

	if count := d.PendingCount(); count != 2 {
		t.Errorf("expected 2 pending, got %d", count)
	}
}

func TestDebouncer_MaxPendingFlushesImmediately(t *testing.T) {
	var r recorder
	d := NewDebouncer(time.Minute, r.flush)
	defer d.Stop()

	for i := 0; i < MaxPending; i++ {
		d.Add(fmt.Sprintf("file%04d", i))
	}

	got := r.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected an immediate flush at the limit, got %d flushes", len(got))
	}
	if len(got[0]) != MaxPending {
		t.Errorf("expected %d paths, got %d", MaxPending, len(got[0]))
	}
	if n := d.PendingCount(); n != 0 {
		t.Errorf("expected nothing pending, got %d", n)
	}
}
