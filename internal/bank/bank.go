// Package bank implements the per-bank state machine. A Bank holds exactly
// one in-flight command at a time and exposes only the transitions the
// rest of the core needs: issue a command, ask when it completes, and
// collect the completion. Nothing here calls back into the controller —
// the controller drains completions by polling DueAt/Complete on its own
// schedule, which keeps ordering explicit and avoids a bank-to-controller
// pointer cycle.
package bank

import "github.com/MEEPproject/coyote-sub002/internal/command"

// State is one of the six states a bank may occupy.
type State uint8

const (
	Closed State = iota
	Opening
	Open
	Closing
	Reading
	Writing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case Opening:
		return "OPENING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case Reading:
		return "READING"
	case Writing:
		return "WRITING"
	default:
		return "UNKNOWN"
	}
}

// Timing holds the per-bank delay parameters (independent of the named
// JEDEC timing table owned by internal/timing): how long the bank itself
// is occupied servicing each command type.
type Timing struct {
	Open          uint64
	Close         uint64
	Read          uint64
	Write         uint64
	LatencyFactor uint64 // multiplies Read/Write, models burst/data-bus stretch
}

// Bank is a single DRAM bank's state machine.
type Bank struct {
	ID    int
	state State

	currentRow int
	rowValid   bool

	pending    *command.BankCommand
	completeAt uint64

	CountActivate  uint64
	CountPrecharge uint64
	CountRead      uint64
	CountWrite     uint64
}

// New returns a bank in the CLOSED state.
func New(id int) *Bank {
	return &Bank{ID: id, state: Closed}
}

// State returns the bank's current state.
func (b *Bank) State() State { return b.state }

// IsOpen reports whether the bank is fully OPEN (row valid, ready for
// READ/WRITE).
func (b *Bank) IsOpen() bool { return b.state == Open }

// IsReady reports whether the bank can accept a new command class: OPEN
// (read/write/precharge-eligible) or CLOSED (activate-eligible).
func (b *Bank) IsReady() bool { return b.state == Open || b.state == Closed }

// Busy reports whether a command is currently in flight.
func (b *Bank) Busy() bool { return b.pending != nil }

// CurrentRow returns the open row and whether it is valid (an ACTIVATE has
// completed since the last PRECHARGE).
func (b *Bank) CurrentRow() (row int, ok bool) { return b.currentRow, b.rowValid }

// DueAt reports the cycle the in-flight command completes, if any.
func (b *Bank) DueAt() (cycle uint64, ok bool) {
	if b.pending == nil {
		return 0, false
	}
	return b.completeAt, true
}

// Issue transitions the bank into the transient state for cmd and records
// when it will complete. It is an error to call Issue while the bank is
// already busy; callers (the command scheduler's issue step) are expected
// to have checked Busy() first.
func (b *Bank) Issue(cmd *command.BankCommand, cycle uint64, t Timing) {
	cmd.IssueCycle = cycle

	var delay uint64
	switch cmd.Type {
	case command.Activate:
		b.state = Opening
		delay = t.Open
	case command.Precharge:
		b.state = Closing
		delay = t.Close
	case command.Read:
		b.state = Reading
		delay = t.Read * latencyFactor(t)
	case command.Write:
		b.state = Writing
		delay = t.Write * latencyFactor(t)
	}

	b.pending = cmd
	b.completeAt = cycle + delay
}

func latencyFactor(t Timing) uint64 {
	if t.LatencyFactor == 0 {
		return 1
	}
	return t.LatencyFactor
}

// Complete retires the in-flight command, applying its terminal state
// transition, and returns it. Panics if the bank has no in-flight command;
// callers must check DueAt first.
func (b *Bank) Complete() *command.BankCommand {
	cmd := b.pending
	if cmd == nil {
		panic("bank: Complete called with no in-flight command")
	}
	switch cmd.Type {
	case command.Activate:
		b.state = Open
		b.currentRow = cmd.Row
		b.rowValid = true
		b.CountActivate++
	case command.Precharge:
		b.state = Closed
		b.rowValid = false
		b.CountPrecharge++
	case command.Read:
		b.state = Open
		b.CountRead++
	case command.Write:
		b.state = Open
		b.CountWrite++
	}
	b.pending = nil
	return cmd
}
