package bank

import (
	"testing"

	"github.com/MEEPproject/coyote-sub002/internal/command"
)

func defaultTiming() Timing {
	return Timing{Open: 50, Close: 50, Read: 20, Write: 20, LatencyFactor: 1}
}

func TestNew_StartsClosed(t *testing.T) {
	b := New(0)
	if b.State() != Closed {
		t.Fatalf("New bank state = %v, want Closed", b.State())
	}
	if b.Busy() {
		t.Fatal("New bank should not be busy")
	}
	if _, ok := b.DueAt(); ok {
		t.Fatal("New bank should have no due time")
	}
	if _, ok := b.CurrentRow(); ok {
		t.Fatal("New bank should have no valid row")
	}
}

func TestIssueActivate_TransitionsAndCompletes(t *testing.T) {
	b := New(1)
	cmd := &command.BankCommand{Type: command.Activate, Bank: 1, Row: 42, Req: &command.Request{ID: 1}}

	b.Issue(cmd, 100, defaultTiming())
	if b.State() != Opening {
		t.Fatalf("state after Issue(Activate) = %v, want Opening", b.State())
	}
	due, ok := b.DueAt()
	if !ok || due != 150 {
		t.Fatalf("DueAt() = (%d,%v), want (150,true)", due, ok)
	}

	completed := b.Complete()
	if completed != cmd {
		t.Fatal("Complete() did not return the issued command")
	}
	if b.State() != Open {
		t.Fatalf("state after Complete() = %v, want Open", b.State())
	}
	row, valid := b.CurrentRow()
	if !valid || row != 42 {
		t.Fatalf("CurrentRow() = (%d,%v), want (42,true)", row, valid)
	}
	if b.CountActivate != 1 {
		t.Fatalf("CountActivate = %d, want 1", b.CountActivate)
	}
}

func TestIssuePrecharge_ClosesBank(t *testing.T) {
	b := New(0)
	activate := &command.BankCommand{Type: command.Activate, Bank: 0, Row: 5, Req: &command.Request{ID: 1}}
	b.Issue(activate, 0, defaultTiming())
	b.Complete()

	precharge := &command.BankCommand{Type: command.Precharge, Bank: 0, Row: 5, Req: &command.Request{ID: 2}}
	b.Issue(precharge, 50, defaultTiming())
	if b.State() != Closing {
		t.Fatalf("state after Issue(Precharge) = %v, want Closing", b.State())
	}
	b.Complete()
	if b.State() != Closed {
		t.Fatalf("state after Complete() = %v, want Closed", b.State())
	}
	if b.CountPrecharge != 1 {
		t.Fatalf("CountPrecharge = %d, want 1", b.CountPrecharge)
	}
}

func TestIssueReadWrite_LatencyFactorMultipliesDelay(t *testing.T) {
	b := New(0)
	activate := &command.BankCommand{Type: command.Activate, Bank: 0, Row: 1, Req: &command.Request{ID: 1}}
	b.Issue(activate, 0, defaultTiming())
	b.Complete()

	read := &command.BankCommand{Type: command.Read, Bank: 0, Row: 1, Req: &command.Request{ID: 2}}
	timing := defaultTiming()
	timing.LatencyFactor = 4
	b.Issue(read, 100, timing)

	due, ok := b.DueAt()
	if !ok || due != 100+20*4 {
		t.Fatalf("DueAt() = (%d,%v), want (%d,true)", due, ok, 100+20*4)
	}
	b.Complete()
	if b.CountRead != 1 {
		t.Fatalf("CountRead = %d, want 1", b.CountRead)
	}
}

func TestComplete_PanicsWithNoPendingCommand(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Complete() on an idle bank should panic")
		}
	}()
	New(0).Complete()
}
