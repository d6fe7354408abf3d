package profile_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/probekit/probekit/internal/profile"
)

func mustSession(t *testing.T, name string) *profile.Session {
	t.Helper()
	s, err := profile.NewSession(name)
	if err != nil {
		t.Fatalf("NewSession(%q): %v", name, err)
	}
	return s
}

func TestNewSessionRejectsEmptyName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		if _, err := profile.NewSession(name); err == nil {
			t.Errorf("expected error for session name %q", name)
		}
	}
}

func TestNewSessionAssignsID(t *testing.T) {
	a := mustSession(t, "a")
	b := mustSession(t, "b")
	if a.ID() == b.ID() {
		t.Error("expected distinct session identifiers")
	}
	if a.Name() != "a" {
		t.Errorf("expected name 'a', got %q", a.Name())
	}
}

func TestStartTwiceFails(t *testing.T) {
	s := mustSession(t, "s")

	if err := s.Start(); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	started := s.StartedAt()

	err := s.Start()
	if !errors.Is(err, profile.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if !s.Running() {
		t.Error("failed Start must leave session running")
	}
	if s.StartedAt() != started {
		t.Error("failed Start must not change the start instant")
	}
}

func TestStopWithoutStartFails(t *testing.T) {
	s := mustSession(t, "s")

	err := s.Stop()
	if !errors.Is(err, profile.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
	if !s.StoppedAt().IsZero() {
		t.Error("failed Stop must leave the stop instant unset")
	}
}

func TestStopTwiceFails(t *testing.T) {
	s := mustSession(t, "s")
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); !errors.Is(err, profile.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning on second Stop, got %v", err)
	}
}

func TestRestartAfterStop(t *testing.T) {
	s := mustSession(t, "s")
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("expected restart after stop to succeed, got %v", err)
	}
	if !s.Running() {
		t.Error("expected session running after restart")
	}
	if !s.StoppedAt().IsZero() {
		t.Error("expected stop instant cleared on restart")
	}
}

func TestDurationLifecycle(t *testing.T) {
	s := mustSession(t, "s")

	if s.Duration() != 0 {
		t.Errorf("expected zero duration before start, got %s", s.Duration())
	}

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if s.Duration() <= 0 {
		t.Error("expected live duration while running")
	}

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	frozen := s.Duration()
	if frozen <= 0 {
		t.Errorf("expected positive duration after stop, got %s", frozen)
	}
	time.Sleep(5 * time.Millisecond)
	if s.Duration() != frozen {
		t.Errorf("duration drifted after stop: %s != %s", s.Duration(), frozen)
	}
}

func TestAddOperationUpdatesSums(t *testing.T) {
	s := mustSession(t, "s")

	m1 := profile.OperationMetrics{Name: "op1", Duration: 100 * time.Millisecond, MemoryUsed: 1024, Allocations: 10}
	m2 := profile.OperationMetrics{Name: "op2", Duration: 200 * time.Millisecond, MemoryUsed: 2048, Allocations: 20}
	if err := s.AddOperation(m1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOperation(m2); err != nil {
		t.Fatal(err)
	}

	if got := s.TotalMemoryUsed(); got != 3072 {
		t.Errorf("expected total memory 3072, got %d", got)
	}
	if got := s.TotalAllocations(); got != 30 {
		t.Errorf("expected total allocations 30, got %d", got)
	}
	if got := s.AverageOperationDuration(); got != 150*time.Millisecond {
		t.Errorf("expected average 150ms, got %s", got)
	}
}

func TestAddOperationRejectsInvalidMetrics(t *testing.T) {
	s := mustSession(t, "s")

	cases := []profile.OperationMetrics{
		{Name: "", Duration: time.Millisecond},
		{Name: "op", Duration: -time.Millisecond},
		{Name: "op", Duration: time.Millisecond, Allocations: -1},
	}
	for _, m := range cases {
		if err := s.AddOperation(m); err == nil {
			t.Errorf("expected error for metrics %+v", m)
		}
	}
	if s.Operations().Len() != 0 {
		t.Error("rejected metrics must not be appended")
	}
	if s.TotalMemoryUsed() != 0 || s.TotalAllocations() != 0 {
		t.Error("rejected metrics must not change the running sums")
	}
}

func TestAddOperationValidInAnyState(t *testing.T) {
	s := mustSession(t, "s")
	m := profile.OperationMetrics{Name: "op", Duration: time.Millisecond}

	if err := s.AddOperation(m); err != nil {
		t.Errorf("add before start: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOperation(m); err != nil {
		t.Errorf("add while running: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOperation(m); err != nil {
		t.Errorf("add after stop: %v", err)
	}
	if s.Operations().Len() != 3 {
		t.Errorf("expected 3 operations, got %d", s.Operations().Len())
	}
}

func TestAverageOperationDurationEmpty(t *testing.T) {
	s := mustSession(t, "s")
	if s.AverageOperationDuration() != 0 {
		t.Errorf("expected zero average with no operations, got %s", s.AverageOperationDuration())
	}
}

func TestClearResetsOperationsAndSums(t *testing.T) {
	s := mustSession(t, "s")
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	started := s.StartedAt()

	_ = s.AddOperation(profile.OperationMetrics{Name: "op", Duration: time.Millisecond, MemoryUsed: 100, Allocations: 1})
	_ = s.AddOperation(profile.OperationMetrics{Name: "op", Duration: time.Millisecond, MemoryUsed: 100, Allocations: 1})

	s.Clear()

	if s.Operations().Len() != 0 {
		t.Errorf("expected empty operations after Clear, got %d", s.Operations().Len())
	}
	if s.TotalMemoryUsed() != 0 || s.TotalAllocations() != 0 {
		t.Error("expected running sums reset to zero after Clear")
	}
	if s.AverageOperationDuration() != 0 {
		t.Error("expected zero average after Clear")
	}
	if !s.Running() {
		t.Error("Clear must not change the running state")
	}
	if s.StartedAt() != started {
		t.Error("Clear must not change the start instant")
	}
}

func TestOperationsViewIsLiveAndStable(t *testing.T) {
	s := mustSession(t, "s")

	view := s.Operations()
	if view != s.Operations() {
		t.Fatal("expected the same view instance across calls")
	}
	if view.Len() != 0 {
		t.Fatalf("expected empty view, got len %d", view.Len())
	}

	_ = s.AddOperation(profile.OperationMetrics{Name: "op1", Duration: time.Millisecond})
	_ = s.AddOperation(profile.OperationMetrics{Name: "op2", Duration: 2 * time.Millisecond})

	// The cached reference observes later appends.
	if view.Len() != 2 {
		t.Fatalf("expected cached view to see 2 operations, got %d", view.Len())
	}
	if view.At(0).Name != "op1" || view.At(1).Name != "op2" {
		t.Error("expected append order preserved in view")
	}

	snap := view.Snapshot()
	_ = s.AddOperation(profile.OperationMetrics{Name: "op3", Duration: time.Millisecond})
	if len(snap) != 2 {
		t.Error("snapshot must not grow with later appends")
	}
	if view.Len() != 3 {
		t.Error("live view must grow with later appends")
	}
}

func TestConcurrentLifecycleAndAppends(t *testing.T) {
	s := mustSession(t, "s")

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	wg.Add(workers + 1)

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = s.Start()
			_ = s.Stop()
		}
	}()
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				err := s.AddOperation(profile.OperationMetrics{
					Name:        "op",
					Duration:    time.Microsecond,
					MemoryUsed:  8,
					Allocations: 1,
				})
				if err != nil {
					t.Errorf("unexpected AddOperation error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	want := workers * perWorker
	if got := s.Operations().Len(); got != want {
		t.Errorf("expected %d operations, got %d", want, got)
	}
	if got := s.TotalAllocations(); got != int64(want) {
		t.Errorf("expected allocations sum %d, got %d", want, got)
	}
	if got := s.TotalMemoryUsed(); got != int64(want*8) {
		t.Errorf("expected memory sum %d, got %d", want*8, got)
	}
}

func TestSessionScenario(t *testing.T) {
	s := mustSession(t, "S1")

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	_ = s.AddOperation(profile.OperationMetrics{Name: "op1", Duration: 100 * time.Millisecond, MemoryUsed: 1024, Allocations: 10})
	_ = s.AddOperation(profile.OperationMetrics{Name: "op2", Duration: 200 * time.Millisecond, MemoryUsed: 2048, Allocations: 20})
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	if s.Operations().Len() != 2 {
		t.Errorf("expected 2 operations, got %d", s.Operations().Len())
	}
	if s.TotalMemoryUsed() != 3072 {
		t.Errorf("expected total memory 3072, got %d", s.TotalMemoryUsed())
	}
	if s.TotalAllocations() != 30 {
		t.Errorf("expected total allocations 30, got %d", s.TotalAllocations())
	}
	if s.AverageOperationDuration() != 150*time.Millisecond {
		t.Errorf("expected average 150ms, got %s", s.AverageOperationDuration())
	}
	if s.Duration() <= 0 {
		t.Error("expected positive duration")
	}
	if s.Duration() != s.Duration() {
		t.Error("expected stable duration across reads after stop")
	}
}

func TestSnapshotAggregates(t *testing.T) {
	s := mustSession(t, "snap")
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	_ = s.AddOperation(profile.OperationMetrics{Name: "a", Duration: 10 * time.Millisecond, MemoryUsed: 100, Allocations: 1})
	_ = s.AddOperation(profile.OperationMetrics{Name: "b", Duration: 30 * time.Millisecond, MemoryUsed: 200, Allocations: 2})

	st := s.Snapshot()
	if st.SessionName != "snap" || !st.Running {
		t.Errorf("unexpected snapshot identity: %+v", st)
	}
	if st.Operations != 2 || st.TotalMemoryUsed != 300 || st.TotalAllocations != 3 {
		t.Errorf("unexpected snapshot sums: %+v", st)
	}
	if st.MinDuration != 10*time.Millisecond || st.MaxDuration != 30*time.Millisecond {
		t.Errorf("unexpected snapshot min/max: %+v", st)
	}
	if st.AverageDuration != 20*time.Millisecond {
		t.Errorf("expected average 20ms, got %s", st.AverageDuration)
	}
	if st.Duration <= 0 {
		t.Error("expected positive window duration while running")
	}
}
