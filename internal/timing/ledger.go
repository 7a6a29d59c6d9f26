package timing

import "github.com/MEEPproject/coyote-sub002/internal/command"

// Ledger tracks, per bank and per command type, the cycle timestamps
// needed to enforce the Table's constraints. It is the only mutable state
// the timing checker owns; CheckTiming never mutates it — Record does,
// and the command scheduler calls Record only for the command it actually
// issues.
type Ledger struct {
	table *Table

	burstLength uint64

	lastByType        [4]uint64
	lastReadByBank    []uint64
	lastWriteByBank   []uint64
	lastActivateByBank []uint64
	lastPrechargeByBank []uint64
	accessAfterActivate []bool
}

// NewLedger creates a ledger for numBanks banks against table.
func NewLedger(table *Table, numBanks int) *Ledger {
	return &Ledger{
		table:               table,
		burstLength:         1,
		lastReadByBank:      make([]uint64, numBanks),
		lastWriteByBank:     make([]uint64, numBanks),
		lastActivateByBank:  make([]uint64, numBanks),
		lastPrechargeByBank: make([]uint64, numBanks),
		accessAfterActivate: make([]bool, numBanks),
	}
}

// SetBurstLength configures the burst length added to the WR (write to
// precharge) and WTRL (write to read) windows. The RTW window has no burst
// term.
func (l *Ledger) SetBurstLength(burst uint64) {
	l.burstLength = burst
}

// CheckTiming reports whether cmd may legally be issued at cycle,
// according to the JEDEC-style rules in spec.md section 4.C. It does not
// mutate the ledger.
func (l *Ledger) CheckTiming(cmd *command.BankCommand, cycle uint64) bool {
	b := cmd.Bank
	t := l.table
	switch cmd.Type {
	case command.Activate:
		meetActivateToActivate := cycle >= l.lastByType[command.Activate]+t.Get(RRDS)
		meetActivateSameBank := cycle >= l.lastActivateByBank[b]+t.Get(RC)
		meetPrechargeToActivate := cycle >= l.lastPrechargeByBank[b]+t.Get(RP)
		return meetActivateToActivate && meetActivateSameBank && meetPrechargeToActivate

	case command.Precharge:
		meetReadToPrecharge := cycle >= l.lastByType[command.Read]+t.Get(RTP)
		meetWriteToPrecharge := cycle >= l.lastWriteByBank[b]+t.Get(WR)+t.Get(WL)+l.burstLength
		meetActivateToPrecharge := cycle >= l.lastActivateByBank[b]+t.Get(RAS)+t.Get(RP)
		return meetReadToPrecharge && meetActivateToPrecharge && meetWriteToPrecharge

	case command.Read:
		meetReadToRead := cycle >= l.lastByType[command.Read]+t.Get(CCDS)
		meetActivateNewBankToRead := l.accessAfterActivate[b] || cycle >= l.lastActivateByBank[b]+t.Get(RCDRD)
		meetWriteToRead := cycle >= l.lastWriteByBank[b]+t.Get(WTRL)+t.Get(WL)+l.burstLength
		return meetReadToRead && meetActivateNewBankToRead && meetWriteToRead

	case command.Write:
		meetWriteToWrite := cycle >= l.lastByType[command.Write]+t.Get(CCDS)
		meetReadToWrite := cycle >= l.lastReadByBank[b]+t.Get(RTW)
		// spec.md section 9: enforce this symmetrically with the READ rule
		// above. The original model's equivalent clause omits the
		// "cycle >=" comparison, making it trivially true whenever the bank
		// has ever been activated; that asymmetry is not carried forward.
		meetActivateNewBankToWrite := l.accessAfterActivate[b] || cycle >= l.lastActivateByBank[b]+t.Get(RCDWR)
		return meetWriteToWrite && meetReadToWrite && meetActivateNewBankToWrite
	}
	return true
}

// Record updates the ledger for a command that was just issued at cycle.
// Call this only for the command actually selected by the scheduler, not
// for every candidate checked.
func (l *Ledger) Record(cmd *command.BankCommand, cycle uint64) {
	b := cmd.Bank
	l.lastByType[cmd.Type] = cycle
	switch cmd.Type {
	case command.Activate:
		l.lastActivateByBank[b] = cycle
		l.accessAfterActivate[b] = false
	case command.Precharge:
		l.lastPrechargeByBank[b] = cycle
	case command.Read:
		l.lastReadByBank[b] = cycle
		l.accessAfterActivate[b] = true
	case command.Write:
		l.lastWriteByBank[b] = cycle
		l.accessAfterActivate[b] = true
	}
}
