// Package interfaces holds the trace-hook contract the controller reports
// through, kept separate from the root package so internal/* components
// never need to import it and the root package can re-export the type
// without exposing its own internals to them.
package interfaces

// Observer receives trace hooks as the controller ticks. Implementations
// must be safe to call synchronously from within a single Tick call; the
// controller never calls an Observer method concurrently with another.
type Observer interface {
	// ObserveCommandIssued fires the cycle a command is actually issued
	// to a bank (not when it is merely generated/enqueued).
	ObserveCommandIssued(bankID int, cmdType string, cycle uint64)

	// ObserveRequestCompleted fires once per request, the cycle its ack is
	// emitted. That is the cycle its terminal command completes, or a later
	// one when that cycle's single ack slot was already taken.
	ObserveRequestCompleted(reqID uint64, accessType string, serviceLatency, queueLatency uint64)

	// ObserveRowOutcome fires once per request with whether its row was a
	// hit (no PRECHARGE/ACTIVATE needed).
	ObserveRowOutcome(bankID int, hit bool)

	// ObserveQueueOccupancy fires every tick with the current aggregate
	// per-bank request queue occupancy.
	ObserveQueueOccupancy(occupancy int, cycle uint64)
}

// NopObserver implements Observer with no-ops; it is the default when a
// caller does not supply one.
type NopObserver struct{}

func (NopObserver) ObserveCommandIssued(int, string, uint64)              {}
func (NopObserver) ObserveRequestCompleted(uint64, string, uint64, uint64) {}
func (NopObserver) ObserveRowOutcome(int, bool)                            {}
func (NopObserver) ObserveQueueOccupancy(int, uint64)                      {}
