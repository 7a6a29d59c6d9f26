package reqsched

import (
	"testing"

	"github.com/MEEPproject/coyote-sub002/internal/bank"
	"github.com/MEEPproject/coyote-sub002/internal/command"
)

// openBank returns a bank that has completed an ACTIVATE to row, so its
// state is OPEN and CurrentRow() reports (row, true).
func openBank(id, row int) *bank.Bank {
	b := bank.New(id)
	cmd := &command.BankCommand{Type: command.Activate, Bank: id, Row: row, Req: &command.Request{ID: 1}}
	b.Issue(cmd, 0, bank.Timing{Open: 1})
	b.Complete()
	return b
}

func TestFifoRr_RoundRobinsOverBanksWithWork(t *testing.T) {
	s := NewFifoRr(4, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0})
	s.PutRequest(&command.Request{ID: 2, Bank: 1})
	// Bank 0 already has work queued; this should not re-add it to the
	// schedule list.
	s.PutRequest(&command.Request{ID: 3, Bank: 0})

	if !s.HasBanksToSchedule() {
		t.Fatal("expected banks to schedule")
	}
	first, ok := s.NextBank()
	if !ok || first != 0 {
		t.Fatalf("NextBank() = (%d,%v), want (0,true)", first, ok)
	}
	second, ok := s.NextBank()
	if !ok || second != 1 {
		t.Fatalf("NextBank() = (%d,%v), want (1,true)", second, ok)
	}
	if s.HasBanksToSchedule() {
		t.Fatal("expected no more banks to schedule after draining both")
	}
}

func TestCommandFor_ClosedBankActivates(t *testing.T) {
	s := NewFifoRr(1, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Row: 7, Type: command.Load})
	b := bank.New(0)

	cmd := s.CommandFor(0, b)
	if cmd.Type != command.Activate || cmd.Row != 7 {
		t.Fatalf("CommandFor(closed bank) = %+v, want ACTIVATE row 7", cmd)
	}
}

func TestCommandFor_RowConflictPrecharges(t *testing.T) {
	s := NewFifoRr(1, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Row: 9, Type: command.Load})
	b := openBank(0, 3) // open on a different row

	cmd := s.CommandFor(0, b)
	if cmd.Type != command.Precharge {
		t.Fatalf("CommandFor(row conflict) = %+v, want PRECHARGE", cmd)
	}
}

func TestCommandFor_RowHitLoadReads(t *testing.T) {
	s := NewFifoRr(1, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Row: 3, Col: 5, Type: command.Load})
	b := openBank(0, 3)

	cmd := s.CommandFor(0, b)
	if cmd.Type != command.Read || !cmd.CompletesRequest {
		t.Fatalf("CommandFor(row-hit LOAD) = %+v, want completing READ", cmd)
	}
}

func TestCommandFor_FetchAlsoReads(t *testing.T) {
	s := NewFifoRr(1, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Row: 3, Type: command.Fetch})
	b := openBank(0, 3)

	cmd := s.CommandFor(0, b)
	if cmd.Type != command.Read || !cmd.CompletesRequest {
		t.Fatalf("CommandFor(row-hit FETCH) = %+v, want completing READ", cmd)
	}
}

func TestCommandFor_WriteAllocateStoreReadsThenWrites(t *testing.T) {
	s := NewFifoRr(1, true)
	req := &command.Request{ID: 1, Bank: 0, Row: 3, Type: command.Store}
	s.PutRequest(req)
	b := openBank(0, 3)

	allocate := s.CommandFor(0, b)
	if allocate.Type != command.Read || allocate.CompletesRequest {
		t.Fatalf("CommandFor(cold STORE, write-allocate) = %+v, want non-completing READ", allocate)
	}

	if _, ok := s.NotifyCommandCompletion(allocate); ok {
		t.Fatal("the allocate READ must not complete the request")
	}
	if !req.AllocateDone {
		t.Fatal("NotifyCommandCompletion(allocate READ) should set AllocateDone")
	}

	write := s.CommandFor(0, b)
	if write.Type != command.Write || !write.CompletesRequest {
		t.Fatalf("CommandFor(STORE after allocate) = %+v, want completing WRITE", write)
	}
}

func TestCommandFor_StoreWithoutWriteAllocateWritesDirectly(t *testing.T) {
	s := NewFifoRr(1, false)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Row: 3, Type: command.Store})
	b := openBank(0, 3)

	cmd := s.CommandFor(0, b)
	if cmd.Type != command.Write || !cmd.CompletesRequest {
		t.Fatalf("CommandFor(STORE, write_allocate=false) = %+v, want completing WRITE", cmd)
	}
}

func TestCommandFor_WritebackWrites(t *testing.T) {
	s := NewFifoRr(1, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Row: 3, Type: command.Writeback})
	b := openBank(0, 3)

	cmd := s.CommandFor(0, b)
	if cmd.Type != command.Write || !cmd.CompletesRequest {
		t.Fatalf("CommandFor(WRITEBACK) = %+v, want completing WRITE", cmd)
	}
}

func TestNotifyCommandCompletion_ActivateAndPrechargeDontServiceRequests(t *testing.T) {
	s := NewFifoRr(1, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Row: 0, Type: command.Load})

	act := &command.BankCommand{Type: command.Activate, Bank: 0, Row: 0}
	serviced, wasServiced := s.NotifyCommandCompletion(act)
	if serviced != nil || wasServiced {
		t.Fatalf("ACTIVATE completion should never service a request, got %+v", serviced)
	}
	pre := &command.BankCommand{Type: command.Precharge, Bank: 0, Row: 0}
	serviced, wasServiced = s.NotifyCommandCompletion(pre)
	if serviced != nil || wasServiced {
		t.Fatalf("PRECHARGE completion should never service a request, got %+v", serviced)
	}
}

func TestNotifyCommandCompletion_ReadServicesLoadAndDequeues(t *testing.T) {
	s := NewFifoRr(1, true)
	req := &command.Request{ID: 1, Bank: 0, Row: 0, Type: command.Load}
	s.PutRequest(req)
	if _, ok := s.NextBank(); !ok {
		t.Fatal("expected bank 0 to be schedulable")
	}

	read := &command.BankCommand{Type: command.Read, Bank: 0, Row: 0, Req: req, CompletesRequest: true}
	serviced, wasServiced := s.NotifyCommandCompletion(read)
	if !wasServiced || serviced != req {
		t.Fatalf("READ completion should service the LOAD, got %+v, %v", serviced, wasServiced)
	}
	if s.HasBanksToSchedule() {
		t.Fatal("queue should be empty after the only request was serviced")
	}
}

func TestFifoRrAccessTypePriority_FetchBeforeLoadBeforeStore(t *testing.T) {
	s := NewFifoRrAccessTypePriority(1, true)
	// Arrival order deliberately inverted from priority order.
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Type: command.Store})
	s.PutRequest(&command.Request{ID: 2, Bank: 0, Type: command.Load})
	s.PutRequest(&command.Request{ID: 3, Bank: 0, Type: command.Fetch})

	b := bank.New(0)
	cmd := s.CommandFor(0, b) // bank closed -> ACTIVATE for the head request regardless of type
	if cmd.Req.ID != 3 {
		t.Fatalf("head request by priority should be the FETCH (id 3), got id %d", cmd.Req.ID)
	}

	b = openBank(0, 0)
	cmd = s.CommandFor(0, b)
	if cmd.Req.Type != command.Fetch {
		t.Fatalf("CommandFor should still pick FETCH first, got %v", cmd.Req.Type)
	}
	s.NotifyCommandCompletion(&command.BankCommand{Type: command.Read, Bank: 0, Row: 0, Req: cmd.Req, CompletesRequest: true})

	cmd = s.CommandFor(0, b)
	if cmd.Req.Type != command.Load {
		t.Fatalf("LOAD should be picked second, got %v", cmd.Req.Type)
	}
	s.NotifyCommandCompletion(&command.BankCommand{Type: command.Read, Bank: 0, Row: 0, Req: cmd.Req, CompletesRequest: true})

	cmd = s.CommandFor(0, b)
	if cmd.Req.Type != command.Store {
		t.Fatalf("STORE should be picked last, got %v", cmd.Req.Type)
	}
}

func TestFifoRrAccessTypePriority_WritebackJoinsStoreQueue(t *testing.T) {
	s := NewFifoRrAccessTypePriority(1, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Type: command.Writeback})
	b := bank.New(0)
	cmd := s.CommandFor(0, b)
	if cmd.Req.Type != command.Writeback {
		t.Fatalf("writeback request should be schedulable from the store sub-queue, got %+v", cmd.Req)
	}
}

func TestGreedy_RowMissRequeuesToFront(t *testing.T) {
	s := NewGreedy(2, true)
	req1 := &command.Request{ID: 1, Bank: 0, Row: 5, Type: command.Load}
	s.PutRequest(req1)
	if _, ok := s.NextBank(); !ok {
		t.Fatal("expected bank 0 to be schedulable")
	}
	// Bank 1 now queues behind (nothing queued for bank 0 in toSchedule).
	s.PutRequest(&command.Request{ID: 2, Bank: 1, Row: 0, Type: command.Load})
	// A second, row-missing request lands behind req1 on bank 0.
	s.PutRequest(&command.Request{ID: 3, Bank: 0, Row: 9, Type: command.Load})

	// req1's READ completes and dequeues it, leaving req3 (a row miss
	// against the row req1 was serviced on) as bank 0's new head.
	lastCmd := &command.BankCommand{Type: command.Read, Bank: 0, Row: 5, Req: req1, CompletesRequest: true}
	serviced, hasWork := s.NotifyCommandCompletion(lastCmd)
	if serviced != req1 {
		t.Fatalf("READ completion should service req1, got %+v", serviced)
	}
	if !hasWork {
		t.Fatal("bank 0 still has request id 3 queued")
	}

	// Bank 0 should have jumped ahead of bank 1 because request 3 is a row
	// miss (row 9 != 5).
	next, ok := s.NextBank()
	if !ok || next != 0 {
		t.Fatalf("NextBank() = (%d,%v), want (0,true) — greedy should prioritize the row-miss bank", next, ok)
	}
	next, ok = s.NextBank()
	if !ok || next != 1 {
		t.Fatalf("NextBank() = (%d,%v), want (1,true)", next, ok)
	}
}

func TestGreedy_RowHitRequeuesToBack(t *testing.T) {
	s := NewGreedy(2, true)
	req1 := &command.Request{ID: 1, Bank: 0, Row: 5, Type: command.Load}
	s.PutRequest(req1)
	s.NextBank()
	s.PutRequest(&command.Request{ID: 2, Bank: 1, Row: 0, Type: command.Load})
	// Second request on bank 0 hits the same row req1 was serviced on.
	s.PutRequest(&command.Request{ID: 3, Bank: 0, Row: 5, Type: command.Load})

	lastCmd := &command.BankCommand{Type: command.Read, Bank: 0, Row: 5, Req: req1, CompletesRequest: true}
	s.NotifyCommandCompletion(lastCmd)

	next, _ := s.NextBank()
	if next != 1 {
		t.Fatalf("row-hit completion should requeue to the back; NextBank() = %d, want 1", next)
	}
	next, _ = s.NextBank()
	if next != 0 {
		t.Fatalf("NextBank() = %d, want 0 second", next)
	}
}

func TestGreedy_MarksRowManagementCommandsHighPriority(t *testing.T) {
	s := NewGreedy(1, true)
	s.PutRequest(&command.Request{ID: 1, Bank: 0, Row: 5, Type: command.Load})
	b := bank.New(0)

	activate := s.CommandFor(0, b)
	if !activate.HighPriority {
		t.Fatal("Greedy should mark ACTIVATE commands HighPriority")
	}

	b = openBank(0, 1) // open on a different row so the next command is PRECHARGE
	precharge := s.CommandFor(0, b)
	if !precharge.HighPriority {
		t.Fatal("Greedy should mark PRECHARGE commands HighPriority")
	}

	b2 := openBank(0, 5)
	read := s.CommandFor(0, b2)
	if read.HighPriority {
		t.Fatal("Greedy should not mark READ/WRITE commands HighPriority")
	}
}

func TestQueueOccupancy_CountsAcrossBanks(t *testing.T) {
	s := NewFifoRr(2, true)
	if s.QueueOccupancy() != 0 {
		t.Fatal("fresh scheduler should have zero occupancy")
	}
	s.PutRequest(&command.Request{ID: 1, Bank: 0})
	s.PutRequest(&command.Request{ID: 2, Bank: 1})
	s.PutRequest(&command.Request{ID: 3, Bank: 0})
	if got := s.QueueOccupancy(); got != 3 {
		t.Fatalf("QueueOccupancy() = %d, want 3", got)
	}
}
