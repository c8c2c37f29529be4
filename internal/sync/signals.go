package sync

// Connectivity is the external online/offline signal. The orchestrator
// consumes it, never computes it.
type Connectivity interface {
	Online() bool
	QueuedCount() int
}

// Navigator receives the orchestrator's navigation outputs as discrete,
// testable signals; the orchestrator never performs navigation itself.
// RedirectTo fires when the client-local identifier is reconciled to a
// server identifier; NavigateAway fires after a successful submission.
type Navigator interface {
	RedirectTo(id string)
	NavigateAway()
}

// StaticConnectivity is a fixed connectivity signal, useful for CLI runs
// and tests.
type StaticConnectivity struct {
	IsOnline bool
	Queued   int
}

func (s StaticConnectivity) Online() bool     { return s.IsOnline }
func (s StaticConnectivity) QueuedCount() int { return s.Queued }

// NopNavigator discards navigation signals.
type NopNavigator struct{}

func (NopNavigator) RedirectTo(string) {}
func (NopNavigator) NavigateAway()     {}
