package report

import (
	"strings"
	"time"
)

// SuiteEvent describes a suite being entered or left.
type SuiteEvent struct {
	Name  string
	Path  []string
	Depth int

	// Set on exit only.
	Result        Result
	NumberOfTests int
}

// TestEvent describes a settled test.
type TestEvent struct {
	Name     string
	Path     []string
	Depth    int
	Result   Result
	Reason   string
	Failure  FailureKind
	Duration time.Duration
}

// HookEvent describes a failed before-all or after-all hook, which turns every
// test of the suite into a failure.
type HookEvent struct {
	Suite  string
	Path   []string
	Depth  int
	Hook   string
	Reason string
}

// PathString joins the event path with slashes.
func (e TestEvent) PathString() string {
	return strings.Join(e.Path, "/")
}

// Observer receives traversal events while a run progresses. Observers are a
// side channel: they never change the reports being built.
type Observer interface {
	SuiteEntered(ev SuiteEvent)
	SuiteExited(ev SuiteEvent)
	TestSettled(ev TestEvent)
	HookFailed(ev HookEvent)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) SuiteEntered(SuiteEvent) {}
func (NopObserver) SuiteExited(SuiteEvent)  {}
func (NopObserver) TestSettled(TestEvent)   {}
func (NopObserver) HookFailed(HookEvent)    {}

// Observers fans every event out to each observer in order.
type Observers []Observer

// Ensure interface compliance.
var (
	_ Observer = NopObserver{}
	_ Observer = Observers(nil)
)

func (o Observers) SuiteEntered(ev SuiteEvent) {
	for _, obs := range o {
		obs.SuiteEntered(ev)
	}
}

func (o Observers) SuiteExited(ev SuiteEvent) {
	for _, obs := range o {
		obs.SuiteExited(ev)
	}
}

func (o Observers) TestSettled(ev TestEvent) {
	for _, obs := range o {
		obs.TestSettled(ev)
	}
}

func (o Observers) HookFailed(ev HookEvent) {
	for _, obs := range o {
		obs.HookFailed(ev)
	}
}
