// Package memtile implements the core of a cycle-accurate DRAM
// memory-controller simulation model: address decoding, per-bank request
// scheduling, and command scheduling/timing, tied together by a
// cooperative per-cycle Controller (spec.md component F).
//
// The package consumes a tick signal carrying the current cycle and
// inbound Requests, and produces Acks plus a Stats snapshot; the ISA-level
// simulator, interconnect, and discrete-event framework that would drive
// it in a full system are external collaborators (spec.md section 1) and
// are represented here only by the cmd/dramsim-trace harness's simple
// cycle-stepping loop.
package memtile

import (
	"github.com/MEEPproject/coyote-sub002/internal/command"
	"github.com/MEEPproject/coyote-sub002/internal/interfaces"
	"github.com/MEEPproject/coyote-sub002/internal/logging"
)

// Logger is an alias of internal/logging.Logger (section 2.1 of
// SPEC_FULL.md): a small leveled logger wrapping log.Logger.
type Logger = logging.Logger

// AccessType classifies an inbound memory access. It is an alias of the
// command package's type so the root API and the internal scheduling
// packages never disagree on the four-way classification.
type AccessType = command.AccessType

const (
	Load      = command.Load
	Fetch     = command.Fetch
	Store     = command.Store
	Writeback = command.Writeback
)

// Observer receives trace hooks as the controller ticks (spec.md section
// 1, trace hooks). It is an alias of internal/interfaces.Observer so
// callers outside this module never need to import an internal path.
type Observer = interfaces.Observer

// NopObserver is the default, no-op Observer.
type NopObserver = interfaces.NopObserver

// Request is the inbound-port descriptor (spec.md section 6): a
// cache-line-granularity memory access arriving from the upstream
// collaborator (an ISA-level simulator or equivalent).
type Request struct {
	Address uint64
	Type    AccessType
	Size    uint32
	CoreID  int
	PC      uint64

	// LatencyFactor is the request-supplied READ/WRITE burst multiplier
	// (spec.md section 4.B, "mem_op_latency_factor" in section 6). If
	// zero, the controller derives it as ceil(Size / 32).
	LatencyFactor uint64

	// id is assigned by the controller on arrival; it is how an Ack
	// correlates back to this Request's identity (spec.md section 3:
	// "identity preserved across commands that serve it").
	id uint64

	// Decoded fields, stamped exactly once by the address decoder.
	Rank int
	Bank int
	Row  int
	Col  int

	// Timestamps, in controller cycles.
	ArrivalCycle      uint64
	FirstCommandCycle uint64
	firstCommandSet   bool

	// Statistics flags set during scheduling (spec.md section 3).
	ClosesRow bool
	MissesRow bool
}

// Ack is the outbound-port descriptor (spec.md section 6): the
// acknowledgement of a completed Request, carrying its service latency.
type Ack struct {
	Request        Request
	CompletionCycle uint64
	ServiceLatency  uint64 // CompletionCycle - ArrivalCycle
	QueueLatency    uint64 // FirstCommandCycle - ArrivalCycle
}

// BankParams are the per-bank geometry and timing tunables of spec.md
// section 6's "Per-bank" options. The model applies one BankParams value
// to every bank; spec.md does not provide for per-bank heterogeneity.
type BankParams struct {
	NumRows           int
	NumColumns        int
	ColumnElementSize int

	DelayOpen  uint64
	DelayClose uint64
	DelayRead  uint64
	DelayWrite uint64
}

// ControllerParams are the recognized configuration options of spec.md
// section 6.
type ControllerParams struct {
	NumBanks         int
	NumBanksPerGroup int
	WriteAllocate    bool

	// RequestReorderingPolicy is one of "fifo", "access_type", "greedy".
	RequestReorderingPolicy string
	// CommandReorderingPolicy is one of "fifo", "oldest_ready",
	// "fifo_with_priorities", "oldest_rw_over_precharge" (the scanning
	// variant, matching the original's one name for this family), or
	// "read_write_over_precharge" (the head-only variant).
	CommandReorderingPolicy string
	// AddressPolicy is one of "open_page", "close_page",
	// "row_bank_column_bank_group_interleave", "row_column_bank",
	// "bank_row_column".
	AddressPolicy string

	UnusedLSBs uint

	// MemSpec is an ordered list of "NAME:cycles" pairs (spec.md section
	// 6). Names it omits default to 0; an unknown name is a fatal
	// configuration error. Nil means DefaultMemSpec.
	MemSpec []string

	Bank BankParams

	Observer Observer
	Logger   *Logger
}
