package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeStore struct {
	jobs       []Job
	printed    map[int64]bool
	pendingErr error
	markErr    error
	categories map[string]int
	fetchCalls int
	reportFrom time.Time
	reportTo   time.Time
}

func newFakeStore(jobs ...Job) *fakeStore {
	return &fakeStore{jobs: jobs, printed: make(map[int64]bool)}
}

func (f *fakeStore) PendingJobs(ctx context.Context) ([]Job, error) {
	f.fetchCalls++
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	var out []Job
	for _, j := range f.jobs {
		if !f.printed[j.ID] {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeStore) JobByID(ctx context.Context, id int64) (Job, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			j.Printed = f.printed[id]
			return j, nil
		}
	}
	return Job{}, ErrJobNotFound
}

func (f *fakeStore) MarkPrinted(ctx context.Context, id int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.printed[id] = true
	return nil
}

func (f *fakeStore) CategoriesByDescription(ctx context.Context, descs []string) (map[string]int, error) {
	out := make(map[string]int)
	for _, d := range descs {
		if cat, ok := f.categories[d]; ok {
			out[d] = cat
		}
	}
	return out, nil
}

func (f *fakeStore) ClosedOrders(ctx context.Context, from, to time.Time) ([]Order, error) {
	f.reportFrom, f.reportTo = from, to
	return nil, nil
}

func (f *fakeStore) DishSales(ctx context.Context, from, to time.Time) ([]DishSale, error) {
	return nil, nil
}

type fakeSink struct {
	prints [][]Directive
	failOn func(ds []Directive) bool
	err    error
}

func (f *fakeSink) Print(address string, timeout time.Duration, ds []Directive) error {
	if f.failOn != nil && f.failOn(ds) {
		return errors.New("printer unreachable")
	}
	if f.err != nil {
		return f.err
	}
	f.prints = append(f.prints, ds)
	return nil
}

func (f *fakeSink) Check(address string, timeout time.Duration) error {
	return f.err
}

type fakeAddr struct {
	addr string
	err  error
}

func (f *fakeAddr) PrinterAddress(ctx context.Context) (string, error) {
	return f.addr, f.err
}

type recordedEvent struct {
	kind    string
	jobID   int64
	outcome Outcome
}

type fakeNotifier struct {
	events []recordedEvent
}

func (f *fakeNotifier) Publish(kind string, jobID int64, outcome Outcome) {
	f.events = append(f.events, recordedEvent{kind, jobID, outcome})
}

func ticketMentions(ds []Directive, text string) bool {
	for _, d := range ds {
		if d.Op == OpPrintln && strings.Contains(d.Text, text) {
			return true
		}
	}
	return false
}

func testJob(id int64, items ...Item) Job {
	takeaway := false
	return Job{
		ID:      id,
		Comment: "",
		Order: &Order{
			ID:        id * 10,
			CreatedAt: time.Now(),
			Takeaway:  &takeaway,
			Tables:    []int{int(id)},
			Items:     items,
		},
	}
}

func newTestService(store JobStore, sink Sink, addr AddressSource, n Notifier) *PrintService {
	return NewPrintService(store, sink, addr, n, time.Second, time.Second)
}

func TestRunCycle_SuccessMarksPrinted(t *testing.T) {
	store := newFakeStore(testJob(1, Item{Quantity: 1, Description: "Arroz"}))
	sink := &fakeSink{}
	sched := NewScheduler(newTestService(store, sink, &fakeAddr{addr: "10.0.0.5"}, nil),
		store, &fakeAddr{addr: "10.0.0.5"}, nil, time.Second)

	sched.RunCycle(context.Background())

	if !store.printed[1] {
		t.Errorf("successful job must transition to printed")
	}
	if len(sink.prints) != 1 {
		t.Errorf("expected 1 print, got %d", len(sink.prints))
	}

	// A printed job is never re-offered.
	sched.RunCycle(context.Background())
	if len(sink.prints) != 1 {
		t.Errorf("printed job was printed again: %d prints", len(sink.prints))
	}
}

func TestRunCycle_FailedJobStaysPendingAndRetries(t *testing.T) {
	store := newFakeStore(testJob(1, Item{Quantity: 1, Description: "Arroz"}))
	sink := &fakeSink{err: errors.New("printer unreachable")}
	addr := &fakeAddr{addr: "10.0.0.5"}
	sched := NewScheduler(newTestService(store, sink, addr, nil), store, addr, nil, time.Second)

	sched.RunCycle(context.Background())

	if store.printed[1] {
		t.Fatalf("failed job must stay pending")
	}

	// Printer recovers; next cycle picks the job up again.
	sink.err = nil
	sched.RunCycle(context.Background())
	if !store.printed[1] {
		t.Errorf("pending job must be retried on the next cycle")
	}
}

func TestRunCycle_FailureIsolatedPerJob(t *testing.T) {
	store := newFakeStore(
		testJob(1, Item{Quantity: 1, Description: "Arroz"}),
		testJob(2, Item{Quantity: 2, Description: "Tacos"}),
	)
	sink := &fakeSink{failOn: func(ds []Directive) bool {
		return ticketMentions(ds, "COMANDA #1")
	}}
	addr := &fakeAddr{addr: "10.0.0.5"}
	sched := NewScheduler(newTestService(store, sink, addr, nil), store, addr, nil, time.Second)

	sched.RunCycle(context.Background())

	if store.printed[1] {
		t.Errorf("job 1 should have failed")
	}
	if !store.printed[2] {
		t.Errorf("job 1's failure must not prevent job 2 from printing")
	}
}

func TestRunCycle_FetchErrorTakesNoStateAction(t *testing.T) {
	store := newFakeStore(testJob(1))
	store.pendingErr = errors.New("connection refused")
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	addr := &fakeAddr{addr: "10.0.0.5"}
	sched := NewScheduler(newTestService(store, sink, addr, notifier), store, addr, notifier, time.Second)

	sched.RunCycle(context.Background())

	if len(sink.prints) != 0 {
		t.Errorf("nothing must print when the fetch fails")
	}
	if len(store.printed) != 0 {
		t.Errorf("no job state must change when the fetch fails")
	}
	if len(notifier.events) == 0 || notifier.events[0].outcome.State != OutcomeError {
		t.Errorf("fetch failure must emit an error event, got %+v", notifier.events)
	}
}

func TestRunCycle_NoAddressSkipsFetchAndReportsOnce(t *testing.T) {
	store := newFakeStore(testJob(1))
	addr := &fakeAddr{addr: ""}
	notifier := &fakeNotifier{}
	sched := NewScheduler(newTestService(store, &fakeSink{}, addr, nil), store, addr, notifier, time.Second)

	sched.RunCycle(context.Background())

	if store.fetchCalls != 0 {
		t.Errorf("cycle must not query the repository without a printer address")
	}
	if len(notifier.events) != 1 {
		t.Fatalf("missing printer address must emit one event, got %d", len(notifier.events))
	}
	if ev := notifier.events[0]; ev.outcome.State != OutcomeError || ev.kind != "poll" {
		t.Errorf("unexpected event %+v", ev)
	}

	// Still unconfigured: the event is not repeated every tick.
	sched.RunCycle(context.Background())
	if len(notifier.events) != 1 {
		t.Errorf("missing-address event must fire once per transition, got %d", len(notifier.events))
	}

	// Operator configures the address; a later removal raises it again.
	addr.addr = "10.0.0.5"
	sched.RunCycle(context.Background())
	addr.addr = ""
	sched.RunCycle(context.Background())
	if got := len(notifier.events); got != 2 {
		t.Errorf("expected a second event after the address was cleared, got %d", got)
	}
}

func TestRunCycle_MarkErrorLeavesJobPending(t *testing.T) {
	store := newFakeStore(testJob(1, Item{Quantity: 1, Description: "Arroz"}))
	store.markErr = errors.New("update failed")
	sink := &fakeSink{}
	addr := &fakeAddr{addr: "10.0.0.5"}
	sched := NewScheduler(newTestService(store, sink, addr, nil), store, addr, nil, time.Second)

	sched.RunCycle(context.Background())

	if store.printed[1] {
		t.Errorf("job must remain pending when the state update fails")
	}

	store.markErr = nil
	sched.RunCycle(context.Background())
	if !store.printed[1] {
		t.Errorf("job must be re-offered after a state-update failure")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	store := newFakeStore()
	addr := &fakeAddr{addr: "10.0.0.5"}
	sched := NewScheduler(newTestService(store, &fakeSink{}, addr, nil), store, addr, nil, 10*time.Millisecond)

	sched.Start()
	time.Sleep(50 * time.Millisecond)
	sched.Stop()

	if store.fetchCalls == 0 {
		t.Errorf("scheduler never polled")
	}
	calls := store.fetchCalls
	time.Sleep(30 * time.Millisecond)
	if store.fetchCalls != calls {
		t.Errorf("scheduler kept polling after Stop")
	}

	// Stop twice is safe.
	sched.Stop()
}

func TestReprint_DoesNotAlterPrintState(t *testing.T) {
	job := testJob(4, Item{Quantity: 1, Description: "Arroz"})
	store := newFakeStore(job)
	store.printed[4] = true
	sink := &fakeSink{}
	svc := newTestService(store, sink, &fakeAddr{addr: "10.0.0.5"}, nil)

	out := svc.Reprint(context.Background(), 4)

	if out.State != OutcomeSuccess {
		t.Fatalf("expected success, got %+v", out)
	}
	if len(sink.prints) != 1 {
		t.Fatalf("expected 1 print, got %d", len(sink.prints))
	}
	if !ticketMentions(sink.prints[0], "REIMPRESIÓN") {
		t.Errorf("reprint ticket must carry the reprint footer")
	}
	if !store.printed[4] {
		t.Errorf("reprint must not flip an already printed job back")
	}
}

func TestReprint_ResolvesCategoriesForMarkerItems(t *testing.T) {
	job := testJob(5,
		Item{Quantity: 2, Description: "Arroz", CategoryID: 2},
		Item{Quantity: 1, Description: "Sopa", CategoryID: CategoryBroth},
	)
	job.Comment = "REIMPRESIÓN - Solo: 2x Arroz, 1x Sopa|Sin cebolla"
	store := newFakeStore(job)
	store.categories = map[string]int{"Sopa": CategoryBroth, "Arroz": 2}
	sink := &fakeSink{}
	svc := newTestService(store, sink, &fakeAddr{addr: "10.0.0.5"}, nil)

	out := svc.Reprint(context.Background(), 5)
	if out.State != OutcomeSuccess {
		t.Fatalf("expected success, got %+v", out)
	}

	var lines []string
	for _, d := range sink.prints[0] {
		if d.Op == OpPrintln {
			lines = append(lines, d.Text)
		}
	}
	var sopaIdx, arrozIdx = -1, -1
	for i, l := range lines {
		if strings.Contains(l, "Sopa") {
			sopaIdx = i
		}
		if strings.Contains(l, "Arroz") && arrozIdx == -1 {
			arrozIdx = i
		}
	}
	if sopaIdx < 0 || arrozIdx < 0 || sopaIdx > arrozIdx {
		t.Errorf("resolved broth item must print first, lines: %v", lines)
	}
}

func TestReprint_UnknownJob(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeSink{}, &fakeAddr{addr: "10.0.0.5"}, nil)

	out := svc.Reprint(context.Background(), 99)
	if out.State != OutcomeError {
		t.Errorf("expected error outcome for unknown job, got %+v", out)
	}
}

func TestTestPrint_NoAddressFailsFast(t *testing.T) {
	store := newFakeStore()
	sink := &fakeSink{}
	svc := newTestService(store, sink, &fakeAddr{addr: ""}, nil)

	out := svc.TestPrint(context.Background())
	if out.State != OutcomeError {
		t.Fatalf("expected error outcome, got %+v", out)
	}
	if len(sink.prints) != 0 {
		t.Errorf("must not dial without a configured address")
	}
}

func TestDailyReport_WindowIsLocalCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	store := newFakeStore()
	svc := newTestService(store, &fakeSink{}, &fakeAddr{addr: "10.0.0.5"}, nil)
	// Spring-forward day: 23 hours long, so a flat +24h would spill into
	// the next day.
	svc.now = func() time.Time { return time.Date(2026, 3, 8, 12, 0, 0, 0, loc) }

	if out := svc.DailyReport(context.Background()); out.State != OutcomeSuccess {
		t.Fatalf("expected success, got %+v", out)
	}

	wantFrom := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	wantTo := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	if !store.reportFrom.Equal(wantFrom) || !store.reportTo.Equal(wantTo) {
		t.Errorf("window = [%v, %v), want [%v, %v)", store.reportFrom, store.reportTo, wantFrom, wantTo)
	}
	if got := store.reportTo.Sub(store.reportFrom); got != 23*time.Hour {
		t.Errorf("spring-forward day spans %v, want 23h", got)
	}
}

func TestCheckPrinter(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeSink{}, &fakeAddr{addr: "10.0.0.5"}, nil)
	if out := svc.CheckPrinter(context.Background()); out.State != OutcomeSuccess {
		t.Errorf("expected success, got %+v", out)
	}

	svc = newTestService(store, &fakeSink{err: errors.New("refused")}, &fakeAddr{addr: "10.0.0.5"}, nil)
	if out := svc.CheckPrinter(context.Background()); out.State != OutcomeError {
		t.Errorf("expected error, got %+v", out)
	}
}
