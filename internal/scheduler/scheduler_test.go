package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/m-adamski/timeseries-data-provider/internal/source"
)

// fakeFetcher counts calls per source and tracks concurrency.
type fakeFetcher struct {
	mu       sync.Mutex
	calls    map[string]int
	inflight map[string]int
	maxPer   map[string]int
	block    chan struct{} // when non-nil, Fetch waits on it or ctx
	err      error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls:    make(map[string]int),
		inflight: make(map[string]int),
		maxPer:   make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, def source.Definition) (float64, error) {
	f.mu.Lock()
	f.calls[def.Name]++
	f.inflight[def.Name]++
	if f.inflight[def.Name] > f.maxPer[def.Name] {
		f.maxPer[def.Name] = f.inflight[def.Name]
	}
	block := f.block
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight[def.Name]--
		f.mu.Unlock()
	}()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func (f *fakeFetcher) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

type ingestCall struct {
	source string
	value  float64
	at     time.Time
}

type fakeIngestor struct {
	mu    sync.Mutex
	calls []ingestCall
}

func (f *fakeIngestor) Ingest(_ context.Context, source string, value float64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ingestCall{source, value, at})
	return nil
}

type pruneCall struct {
	source string
	cutoff time.Time
}

type fakePruner struct {
	mu    sync.Mutex
	calls []pruneCall
}

func (f *fakePruner) Prune(_ context.Context, source string, cutoff time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pruneCall{source, cutoff})
	return nil
}

func (f *fakePruner) snapshot() []pruneCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pruneCall(nil), f.calls...)
}

func def(name string, interval time.Duration) source.Definition {
	return source.Definition{Name: name, Active: true, PollInterval: interval}
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// runTicks drives the scheduler with a simulated one-second tick for total.
func runTicks(s *Scheduler, total time.Duration) {
	for elapsed := time.Duration(0); elapsed <= total; elapsed += time.Second {
		s.Tick(t0.Add(elapsed))
	}
	s.Wait()
}

// ===== Fetch timing =====

func TestFetchCountUnderSimulatedClock(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		total    time.Duration
	}{
		{"every tick", time.Second, 10 * time.Second},
		{"five seconds", 5 * time.Second, 60 * time.Second},
		{"seven seconds", 7 * time.Second, 60 * time.Second},
		{"longer than run", time.Minute, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			s := New([]source.Definition{def("cpu", tt.interval)}, f, &fakeIngestor{}, nil, Config{})

			runTicks(s, tt.total)

			floor := int(tt.total / tt.interval)
			got := f.count("cpu")
			if got < floor || got > floor+1 {
				t.Errorf("fetches = %d, want between %d and %d", got, floor, floor+1)
			}
		})
	}
}

func TestFirstTickFetchesImmediately(t *testing.T) {
	f := newFakeFetcher()
	ing := &fakeIngestor{}
	s := New([]source.Definition{def("cpu", time.Hour)}, f, ing, nil, Config{})

	s.Tick(t0)
	s.Wait()

	if f.count("cpu") != 1 {
		t.Fatalf("fetches after first tick = %d, want 1", f.count("cpu"))
	}
	if len(ing.calls) != 1 || !ing.calls[0].at.Equal(t0) || ing.calls[0].source != "cpu" {
		t.Errorf("ingest calls = %+v, want one cpu sample stamped %v", ing.calls, t0)
	}
}

func TestSourcesAreIndependent(t *testing.T) {
	f := newFakeFetcher()
	s := New([]source.Definition{
		def("fast", time.Second),
		def("slow", 10*time.Second),
	}, f, &fakeIngestor{}, nil, Config{})

	runTicks(s, 20*time.Second)

	if got := f.count("fast"); got != 21 {
		t.Errorf("fast fetches = %d, want 21", got)
	}
	if got := f.count("slow"); got != 3 {
		t.Errorf("slow fetches = %d, want 3", got)
	}
}

func TestNonSchedulableSourcesIgnored(t *testing.T) {
	f := newFakeFetcher()
	inactive := def("disk", time.Second)
	inactive.Active = false

	s := New([]source.Definition{inactive, def("nointerval", 0)}, f, &fakeIngestor{}, nil, Config{})
	runTicks(s, 5*time.Second)

	if len(s.Sources()) != 0 {
		t.Errorf("Sources() = %d, want 0", len(s.Sources()))
	}
	if f.count("disk")+f.count("nointerval") != 0 {
		t.Error("non-schedulable sources were fetched")
	}
}

func TestNoDuplicateConcurrentFetch(t *testing.T) {
	f := newFakeFetcher()
	f.block = make(chan struct{})
	s := New([]source.Definition{def("cpu", 5*time.Second)}, f, &fakeIngestor{}, nil, Config{})

	// Ticks within one interval while the first fetch is still running.
	for i := 0; i < 5; i++ {
		s.Tick(t0.Add(time.Duration(i) * time.Second))
	}

	close(f.block)
	s.Wait()

	if got := f.count("cpu"); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	if f.maxPer["cpu"] != 1 {
		t.Errorf("max concurrent fetches = %d, want 1", f.maxPer["cpu"])
	}
}

func TestFetchFailureSkipsIngest(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("unreachable")
	ing := &fakeIngestor{}
	s := New([]source.Definition{def("cpu", time.Second)}, f, ing, nil, Config{})

	runTicks(s, 3*time.Second)

	if f.count("cpu") != 4 {
		t.Errorf("fetches = %d, want 4 (no retry, no backoff)", f.count("cpu"))
	}
	if len(ing.calls) != 0 {
		t.Errorf("ingest calls = %d, want 0", len(ing.calls))
	}
}

// ===== Prune timing =====

func TestPruneCutoff(t *testing.T) {
	d := def("cpu", time.Second)
	d.Retention = source.Retention{Active: true, Age: time.Hour, CheckInterval: 10 * time.Second}

	p := &fakePruner{}
	s := New([]source.Definition{d}, newFakeFetcher(), &fakeIngestor{}, p, Config{})

	runTicks(s, 25*time.Second)

	calls := p.snapshot()
	sort.Slice(calls, func(i, j int) bool { return calls[i].cutoff.Before(calls[j].cutoff) })
	if len(calls) != 3 {
		t.Fatalf("prunes = %d, want 3", len(calls))
	}
	for i, c := range calls {
		now := t0.Add(time.Duration(i) * 10 * time.Second)
		want := now.Add(-time.Hour)
		if c.source != "cpu" || !c.cutoff.Equal(want) {
			t.Errorf("prune[%d] = %s at %v, want cpu at %v", i, c.source, c.cutoff, want)
		}
	}
}

func TestRetentionInactiveNeverPrunes(t *testing.T) {
	tests := []struct {
		name      string
		retention source.Retention
	}{
		{"inactive", source.Retention{Active: false, Age: time.Hour, CheckInterval: time.Second}},
		{"zero age", source.Retention{Active: true, Age: 0, CheckInterval: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := def("cpu", time.Second)
			d.Retention = tt.retention

			p := &fakePruner{}
			s := New([]source.Definition{d}, newFakeFetcher(), &fakeIngestor{}, p, Config{})
			runTicks(s, 10*time.Second)

			if n := len(p.snapshot()); n != 0 {
				t.Errorf("prunes = %d, want 0", n)
			}
		})
	}
}

func TestDue(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{"never run", time.Time{}, t0, true},
		{"before interval", t0, t0.Add(4 * time.Second), false},
		{"exactly interval", t0, t0.Add(5 * time.Second), true},
		{"after interval", t0, t0.Add(6 * time.Second), true},
	}
	for _, tt := range tests {
		if got := due(tt.last, 5*time.Second, tt.now); got != tt.want {
			t.Errorf("%s: due() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// ===== Lifecycle =====

func TestStartStop(t *testing.T) {
	f := newFakeFetcher()
	s := New([]source.Definition{def("cpu", 10*time.Millisecond)}, f, &fakeIngestor{}, nil, Config{
		TickInterval:  10 * time.Millisecond,
		ShutdownGrace: time.Second,
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.count("cpu") < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if f.count("cpu") < 2 {
		t.Errorf("fetches = %d, want at least 2", f.count("cpu"))
	}

	after := f.count("cpu")
	s.Tick(time.Now().Add(time.Hour))
	s.Wait()
	if f.count("cpu") != after {
		t.Error("Tick() after Stop() dispatched work")
	}
}

func TestStopGraceExpires(t *testing.T) {
	f := newFakeFetcher()
	f.block = make(chan struct{}) // never closed; released by ctx cancel
	s := New([]source.Definition{def("cpu", time.Hour)}, f, &fakeIngestor{}, nil, Config{
		TickInterval:  time.Hour,
		ShutdownGrace: 50 * time.Millisecond,
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for f.count("cpu") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.count("cpu") == 0 {
		t.Fatal("immediate tick did not dispatch a fetch")
	}

	if err := s.Stop(); !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("Stop() error = %v, want ErrShutdownTimeout", err)
	}
	s.Wait() // cancelled context releases the blocked fetch
}
