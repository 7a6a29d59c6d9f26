package memtile

import (
	"strings"

	"github.com/MEEPproject/coyote-sub002/internal/address"
	"github.com/MEEPproject/coyote-sub002/internal/bank"
	"github.com/MEEPproject/coyote-sub002/internal/cmdsched"
	"github.com/MEEPproject/coyote-sub002/internal/command"
	"github.com/MEEPproject/coyote-sub002/internal/constants"
	"github.com/MEEPproject/coyote-sub002/internal/logging"
	"github.com/MEEPproject/coyote-sub002/internal/reqsched"
	"github.com/MEEPproject/coyote-sub002/internal/timing"
)

// Controller is the single cooperative unit of progress (spec.md
// component F, "Controller Tick"): it owns the request scheduler and
// command scheduler, holds non-owning references to the banks, and drives
// all of it one cycle at a time via Tick. It is not safe for concurrent
// use — the whole model is single-threaded by design (spec.md section 5).
type Controller struct {
	params ControllerParams

	decoder  *address.Decoder
	banks    []*bank.Bank
	bankTime bank.Timing
	table    *timing.Table
	ledger   *timing.Ledger
	cmdSched cmdsched.Scheduler
	reqSched reqsched.Scheduler

	pending map[uint64]*Request
	nextID  uint64

	pendingAcks      []Ack
	cycle            uint64
	lastSampleCycle  uint64
	commandBusFreeAt uint64
	idle             bool

	stats    Stats
	observer Observer
	logger   *Logger
}

// NewController validates params and builds a Controller. Every failure
// mode spec.md section 7 calls fatal (unknown mem_spec name, an
// out-of-range timing, an unrecognized address policy, or geometry that
// can't be decoded) is returned as a *ConfigError; unrecognized
// request/command reordering policy names are not fatal — they log a
// warning and fall back to "fifo", per spec.md section 7's distinction
// between mandatory and optional fields.
func NewController(params ControllerParams) (*Controller, error) {
	if params.NumBanks <= 0 {
		return nil, newConfigError("NewController", ErrCodeInvalidGeometry, "num_banks must be positive")
	}
	if params.NumBanksPerGroup <= 0 {
		params.NumBanksPerGroup = params.NumBanks
	}
	if params.Bank.NumRows <= 0 || params.Bank.NumColumns <= 0 {
		return nil, newConfigError("NewController", ErrCodeInvalidGeometry, "num_rows and num_columns must be positive")
	}

	logger := params.Logger
	if logger == nil {
		logger = logging.Default()
	}
	observer := params.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	// address_policy is a mandatory field (spec.md section 7): an
	// unrecognized value means requests decode to the wrong bank/row/col
	// silently, a correctness bug rather than a scheduling tradeoff, so
	// it is fatal rather than warn-and-fallback like the two reordering
	// policies below.
	addrPolicy, ok := address.ParsePolicy(strings.ToUpper(params.AddressPolicy))
	if !ok {
		return nil, newConfigError("NewController", ErrCodeUnknownPolicy,
			"unknown address_policy "+params.AddressPolicy)
	}

	geom := address.Geometry{
		NumBanks:       params.NumBanks,
		NumBanksPerGrp: params.NumBanksPerGroup,
		NumRowsPerBank: params.Bank.NumRows,
		NumColsPerBank: params.Bank.NumColumns,
		UnusedLSBs:     params.UnusedLSBs,
	}
	decoder := address.NewDecoder(addrPolicy, geom)

	table, err := timing.ParseMemSpec(params.resolvedMemSpec())
	if err != nil {
		code := ErrCodeUnknownTimingParam
		if strings.Contains(err.Error(), "out of range") {
			code = ErrCodeTimingOutOfRange
		}
		return nil, wrapConfigError("NewController", code, err)
	}

	ledger := timing.NewLedger(table, params.NumBanks)
	ledger.SetBurstLength(1)

	banks := make([]*bank.Bank, params.NumBanks)
	for i := range banks {
		banks[i] = bank.New(i)
	}

	cmdSched := newCommandScheduler(params.CommandReorderingPolicy, logger)
	reqSched := newRequestScheduler(params.RequestReorderingPolicy, params.NumBanks, params.WriteAllocate, logger)

	return &Controller{
		params: params,
		decoder: decoder,
		banks:   banks,
		bankTime: bank.Timing{
			Open:  params.Bank.DelayOpen,
			Close: params.Bank.DelayClose,
			Read:  params.Bank.DelayRead,
			Write: params.Bank.DelayWrite,
		},
		table:    table,
		ledger:   ledger,
		cmdSched: cmdSched,
		reqSched: reqSched,
		pending:  make(map[uint64]*Request),
		idle:     true,
		observer: observer,
		logger:   logger,
	}, nil
}

func newCommandScheduler(policy string, logger *Logger) cmdsched.Scheduler {
	switch strings.ToLower(policy) {
	case "", "fifo":
		return cmdsched.NewFIFO()
	case "oldest_ready":
		return cmdsched.NewOldestReady()
	case "fifo_with_priorities":
		return cmdsched.NewFIFOWithPriorities()
	case "oldest_rw_over_precharge":
		return cmdsched.NewReadWriteOverPrechargeOldestReady()
	case "read_write_over_precharge":
		return cmdsched.NewReadWriteOverPrecharge()
	default:
		logger.Warn("unknown command_reordering_policy, falling back to fifo", "policy", policy)
		return cmdsched.NewFIFO()
	}
}

func newRequestScheduler(policy string, numBanks int, writeAllocate bool, logger *Logger) reqsched.Scheduler {
	switch strings.ToLower(policy) {
	case "", "fifo":
		return reqsched.NewFifoRr(numBanks, writeAllocate)
	case "access_type":
		return reqsched.NewFifoRrAccessTypePriority(numBanks, writeAllocate)
	case "greedy":
		return reqsched.NewGreedy(numBanks, writeAllocate)
	default:
		logger.Warn("unknown request_reordering_policy, falling back to fifo", "policy", policy)
		return reqsched.NewFifoRr(numBanks, writeAllocate)
	}
}

// OnRequest is the controller's inbound-port entry point (spec.md section
// 9: "on_request"). It decodes the address exactly once, stamps arrival
// timestamps, and enqueues the request with the request scheduler. cycle
// is the current tick signal; callers normally invoke OnRequest for all
// requests that arrived this cycle before calling Tick(cycle).
func (c *Controller) OnRequest(cycle uint64, req Request) *Request {
	bankID, row, col := c.decoder.Decode(req.Address)
	req.Rank = 0
	req.Bank = bankID
	req.Row = row
	req.Col = col
	req.ArrivalCycle = cycle

	if req.LatencyFactor == 0 {
		req.LatencyFactor = ceilDiv(uint64(req.Size), constants.BytesPerBurstUnit)
		if req.LatencyFactor == 0 {
			req.LatencyFactor = 1
		}
	}

	c.nextID++
	req.id = c.nextID
	pub := &req
	c.pending[pub.id] = pub

	c.reqSched.PutRequest(&command.Request{
		ID:            pub.id,
		Type:          pub.Type,
		Bank:          bankID,
		Row:           row,
		Col:           col,
		ArrivalCycle:  cycle,
		LatencyFactor: pub.LatencyFactor,
	})

	if c.reqSched.HasBanksToSchedule() {
		c.idle = false
	}
	return pub
}

func ceilDiv(n, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	return (n + d - 1) / d
}

// Idle reports whether the controller has no outstanding work and does
// not need another Tick scheduled (spec.md section 9's "idle" flag); a
// discrete-event driver can use this to stop stepping cycles until the
// next OnRequest call.
func (c *Controller) Idle() bool { return c.idle }

// Stats returns a snapshot of the accumulated statistics.
func (c *Controller) Stats() Stats { return c.stats }

// Tick runs one cycle of the controller's cooperative schedule (spec.md
// section 4.F): drain a completed bank command into an ack if one is due,
// sample queue occupancy, turn ready requests into commands, issue at
// most one command system-wide, and report whether more work remains.
func (c *Controller) Tick(cycle uint64) []Ack {
	c.cycle = cycle
	sentThisCycle := false
	var acks []Ack

	// Bank completions due this cycle. Ascending bank id gives a
	// deterministic order when multiple banks complete on the same
	// cycle (spec.md section 5).
	for _, b := range c.banks {
		due, ok := b.DueAt()
		if !ok || due > cycle {
			continue
		}
		cmd := b.Complete()
		serviced, _ := c.reqSched.NotifyCommandCompletion(cmd)
		if serviced == nil {
			continue
		}
		ack := c.buildAck(serviced, cycle)
		delete(c.pending, serviced.ID)
		if !sentThisCycle {
			acks = append(acks, ack)
			sentThisCycle = true
			c.recordAck(ack)
		} else {
			c.pendingAcks = append(c.pendingAcks, ack)
		}
	}

	// Drain one queued ack if the bank-completion pass above didn't
	// already use this cycle's single ack slot (spec.md section 5: "at
	// most one [ack] per cycle").
	if !sentThisCycle && len(c.pendingAcks) > 0 {
		ack := c.pendingAcks[0]
		c.pendingAcks = c.pendingAcks[1:]
		acks = append(acks, ack)
		sentThisCycle = true
		c.recordAck(ack)
	}

	occupancy := c.reqSched.QueueOccupancy()
	c.stats.sampleOccupancy(occupancy, cycle-c.lastSampleCycle)
	c.lastSampleCycle = cycle
	c.observer.ObserveQueueOccupancy(occupancy, cycle)

	for c.reqSched.HasBanksToSchedule() {
		bankID, ok := c.reqSched.NextBank()
		if !ok {
			break
		}
		cmd := c.reqSched.CommandFor(bankID, c.banks[bankID])
		if cmd == nil {
			continue
		}
		cmd.EnqueueCycle = cycle
		c.stampRequestStats(cmd, cycle)
		c.cmdSched.AddCommand(cmd)
	}

	if cycle >= c.commandBusFreeAt && c.cmdSched.HasCommands() {
		if cmd := c.cmdSched.GetNextCommand(c.ledger, cycle); cmd != nil {
			bt := c.bankTime
			bt.LatencyFactor = cmd.Req.LatencyFactor
			c.banks[cmd.Bank].Issue(cmd, cycle, bt)
			c.observer.ObserveCommandIssued(cmd.Bank, cmd.Type.String(), cycle)
			if cmd.Type == command.Activate {
				c.commandBusFreeAt = cycle + constants.CommandBusCyclesActivate
			} else {
				c.commandBusFreeAt = cycle + constants.CommandBusCyclesNormal
			}
		}
	}

	c.idle = !(c.cmdSched.HasCommands() || c.reqSched.HasBanksToSchedule() || len(c.pendingAcks) > 0 || c.anyBankBusy())
	return acks
}

// anyBankBusy reports whether some bank has a command in flight. The model
// is polling, not event-driven: nothing re-wakes the controller when a bank
// completes, so idle must stay false while a completion is still pending,
// even though the command and request schedulers are both empty in the
// meantime.
func (c *Controller) anyBankBusy() bool {
	for _, b := range c.banks {
		if _, ok := b.DueAt(); ok {
			return true
		}
	}
	return false
}

// stampRequestStats records the closes_row/misses_row flags and the
// first-command timestamp on the owning public Request the first time
// any command is generated for it (spec.md section 4.F step 3).
func (c *Controller) stampRequestStats(cmd *command.BankCommand, cycle uint64) {
	pub, ok := c.pending[cmd.Req.ID]
	if !ok {
		return
	}
	switch cmd.Type {
	case command.Precharge:
		pub.ClosesRow = true
	case command.Activate:
		pub.MissesRow = true
	}
	if !pub.firstCommandSet {
		pub.FirstCommandCycle = cycle
		pub.firstCommandSet = true
		c.observer.ObserveRowOutcome(cmd.Bank, cmd.Type == command.Read || cmd.Type == command.Write)
	}
}

func (c *Controller) buildAck(serviced *command.Request, cycle uint64) Ack {
	pub, ok := c.pending[serviced.ID]
	if !ok {
		return Ack{}
	}
	return Ack{
		Request:         *pub,
		CompletionCycle: cycle,
		ServiceLatency:  cycle - pub.ArrivalCycle,
		QueueLatency:    pub.FirstCommandCycle - pub.ArrivalCycle,
	}
}

func (c *Controller) recordAck(ack Ack) {
	c.stats.recordAck(ack)
	c.observer.ObserveRequestCompleted(ack.Request.id, ack.Request.Type.String(), ack.ServiceLatency, ack.QueueLatency)
}
