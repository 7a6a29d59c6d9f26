// Package cmdsched implements the command-reordering policies that decide,
// each controller tick, which one pending BankCommand (if any) is legal to
// issue right now. Every policy shares the same contract: AddCommand
// enqueues a candidate, HasCommands reports whether any candidate is
// queued, and GetNextCommand consults the timing ledger and either issues
// (removing and recording) exactly one command or returns nil.
package cmdsched

import (
	"github.com/MEEPproject/coyote-sub002/internal/command"
	"github.com/MEEPproject/coyote-sub002/internal/timing"
)

// Scheduler reorders queued BankCommands subject to timing legality.
type Scheduler interface {
	AddCommand(cmd *command.BankCommand)
	HasCommands() bool
	GetNextCommand(ledger *timing.Ledger, cycle uint64) *command.BankCommand
}

// FIFO always considers the queue head; if it fails timing, nothing is
// issued this cycle even if a later command would pass (head-of-line
// blocking).
type FIFO struct {
	queue []*command.BankCommand
}

func NewFIFO() *FIFO { return &FIFO{} }

func (s *FIFO) AddCommand(cmd *command.BankCommand) { s.queue = append(s.queue, cmd) }
func (s *FIFO) HasCommands() bool                   { return len(s.queue) > 0 }

func (s *FIFO) GetNextCommand(ledger *timing.Ledger, cycle uint64) *command.BankCommand {
	if len(s.queue) == 0 {
		return nil
	}
	head := s.queue[0]
	if !ledger.CheckTiming(head, cycle) {
		return nil
	}
	s.queue = s.queue[1:]
	ledger.Record(head, cycle)
	return head
}

// OldestReady scans the full queue in arrival order and issues the first
// command whose timing passes, regardless of position.
type OldestReady struct {
	queue []*command.BankCommand
}

func NewOldestReady() *OldestReady { return &OldestReady{} }

func (s *OldestReady) AddCommand(cmd *command.BankCommand) { s.queue = append(s.queue, cmd) }
func (s *OldestReady) HasCommands() bool                   { return len(s.queue) > 0 }

func (s *OldestReady) GetNextCommand(ledger *timing.Ledger, cycle uint64) *command.BankCommand {
	for i, c := range s.queue {
		if ledger.CheckTiming(c, cycle) {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			ledger.Record(c, cycle)
			return c
		}
	}
	return nil
}

// FIFOWithPriorities keeps a separate priority queue (fed by commands
// marked HighPriority, typically ACTIVATE/PRECHARGE under a Greedy request
// scheduler) that is always tried before the normal FIFO queue. Both
// queues use head-of-line FIFO semantics individually.
type FIFOWithPriorities struct {
	priority []*command.BankCommand
	normal   []*command.BankCommand
}

func NewFIFOWithPriorities() *FIFOWithPriorities { return &FIFOWithPriorities{} }

func (s *FIFOWithPriorities) AddCommand(cmd *command.BankCommand) {
	if cmd.HighPriority {
		s.priority = append(s.priority, cmd)
	} else {
		s.normal = append(s.normal, cmd)
	}
}

func (s *FIFOWithPriorities) HasCommands() bool {
	return len(s.priority) > 0 || len(s.normal) > 0
}

func (s *FIFOWithPriorities) GetNextCommand(ledger *timing.Ledger, cycle uint64) *command.BankCommand {
	if len(s.priority) > 0 {
		head := s.priority[0]
		if ledger.CheckTiming(head, cycle) {
			s.priority = s.priority[1:]
			ledger.Record(head, cycle)
			return head
		}
		if len(s.normal) == 0 {
			return nil
		}
	}
	if len(s.normal) == 0 {
		return nil
	}
	head := s.normal[0]
	if !ledger.CheckTiming(head, cycle) {
		return nil
	}
	s.normal = s.normal[1:]
	ledger.Record(head, cycle)
	return head
}

// ReadWriteOverPrecharge keeps reads/writes and activates/precharges in
// separate queues and always prefers a read/write head over a row-management
// head, checking timing only on the one chosen head (no further scan).
type ReadWriteOverPrecharge struct {
	readWrite         []*command.BankCommand
	activatePrecharge []*command.BankCommand
}

func NewReadWriteOverPrecharge() *ReadWriteOverPrecharge { return &ReadWriteOverPrecharge{} }

func (s *ReadWriteOverPrecharge) AddCommand(cmd *command.BankCommand) {
	if cmd.IsAccess() {
		s.readWrite = append(s.readWrite, cmd)
	} else {
		s.activatePrecharge = append(s.activatePrecharge, cmd)
	}
}

func (s *ReadWriteOverPrecharge) HasCommands() bool {
	return len(s.readWrite) > 0 || len(s.activatePrecharge) > 0
}

func (s *ReadWriteOverPrecharge) GetNextCommand(ledger *timing.Ledger, cycle uint64) *command.BankCommand {
	var chosen *command.BankCommand
	fromReadWrite := false
	if len(s.readWrite) > 0 {
		chosen = s.readWrite[0]
		fromReadWrite = true
	} else if len(s.activatePrecharge) > 0 {
		chosen = s.activatePrecharge[0]
	} else {
		return nil
	}
	if !ledger.CheckTiming(chosen, cycle) {
		return nil
	}
	if fromReadWrite {
		s.readWrite = s.readWrite[1:]
	} else {
		s.activatePrecharge = s.activatePrecharge[1:]
	}
	ledger.Record(chosen, cycle)
	return chosen
}

// ReadWriteOverPrechargeOldestReady is a variant of ReadWriteOverPrecharge
// that, instead of giving up when the preferred queue's head fails timing,
// scans the rest of that queue for the oldest command that passes before
// falling back to the other queue. This is what the original implementation
// names "oldest_rw_over_precharge" — its one name for this family names the
// scanning behavior, not the head-only one.
type ReadWriteOverPrechargeOldestReady struct {
	readWrite         []*command.BankCommand
	activatePrecharge []*command.BankCommand
}

func NewReadWriteOverPrechargeOldestReady() *ReadWriteOverPrechargeOldestReady {
	return &ReadWriteOverPrechargeOldestReady{}
}

func (s *ReadWriteOverPrechargeOldestReady) AddCommand(cmd *command.BankCommand) {
	if cmd.IsAccess() {
		s.readWrite = append(s.readWrite, cmd)
	} else {
		s.activatePrecharge = append(s.activatePrecharge, cmd)
	}
}

func (s *ReadWriteOverPrechargeOldestReady) HasCommands() bool {
	return len(s.readWrite) > 0 || len(s.activatePrecharge) > 0
}

func (s *ReadWriteOverPrechargeOldestReady) GetNextCommand(ledger *timing.Ledger, cycle uint64) *command.BankCommand {
	if c, ok := scanAndTake(&s.readWrite, ledger, cycle); ok {
		return c
	}
	if c, ok := scanAndTake(&s.activatePrecharge, ledger, cycle); ok {
		return c
	}
	return nil
}

func scanAndTake(queue *[]*command.BankCommand, ledger *timing.Ledger, cycle uint64) (*command.BankCommand, bool) {
	q := *queue
	for i, c := range q {
		if ledger.CheckTiming(c, cycle) {
			*queue = append(q[:i], q[i+1:]...)
			ledger.Record(c, cycle)
			return c, true
		}
	}
	return nil, false
}
