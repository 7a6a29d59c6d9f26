package memtile

import "sync"

// MockObserver is a recording Observer for tests, grounded on the
// teacher's testing.go mock-collaborator pattern (a simple struct that
// appends every call to a slice under a mutex, with no behavior beyond
// recording). It is safe for concurrent use even though Controller itself
// is not, so a test can inspect it from a separate goroutine if needed.
type MockObserver struct {
	mu sync.Mutex

	CommandsIssued   []CommandIssuedEvent
	RequestsComplete []RequestCompletedEvent
	RowOutcomes      []RowOutcomeEvent
	Occupancies      []OccupancyEvent
}

// CommandIssuedEvent records one ObserveCommandIssued call.
type CommandIssuedEvent struct {
	BankID  int
	CmdType string
	Cycle   uint64
}

// RequestCompletedEvent records one ObserveRequestCompleted call.
type RequestCompletedEvent struct {
	ReqID          uint64
	AccessType     string
	ServiceLatency uint64
	QueueLatency   uint64
}

// RowOutcomeEvent records one ObserveRowOutcome call.
type RowOutcomeEvent struct {
	BankID int
	Hit    bool
}

// OccupancyEvent records one ObserveQueueOccupancy call.
type OccupancyEvent struct {
	Occupancy int
	Cycle     uint64
}

func NewMockObserver() *MockObserver { return &MockObserver{} }

func (m *MockObserver) ObserveCommandIssued(bankID int, cmdType string, cycle uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandsIssued = append(m.CommandsIssued, CommandIssuedEvent{bankID, cmdType, cycle})
}

func (m *MockObserver) ObserveRequestCompleted(reqID uint64, accessType string, serviceLatency, queueLatency uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestsComplete = append(m.RequestsComplete, RequestCompletedEvent{reqID, accessType, serviceLatency, queueLatency})
}

func (m *MockObserver) ObserveRowOutcome(bankID int, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RowOutcomes = append(m.RowOutcomes, RowOutcomeEvent{bankID, hit})
}

func (m *MockObserver) ObserveQueueOccupancy(occupancy int, cycle uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Occupancies = append(m.Occupancies, OccupancyEvent{occupancy, cycle})
}

// RunUntilIdle feeds reqs (each tagged with its arrival cycle, assumed
// sorted ascending) through c and ticks until every request has been
// acknowledged or maxCycles is reached, returning every Ack produced in
// completion order. It is a deterministic single-threaded test helper,
// not part of the public simulation API.
func RunUntilIdle(c *Controller, reqs []struct {
	Cycle   uint64
	Request Request
}, maxCycles uint64) []Ack {
	var acks []Ack
	i := 0
	for cycle := uint64(0); cycle < maxCycles; cycle++ {
		for i < len(reqs) && reqs[i].Cycle == cycle {
			c.OnRequest(cycle, reqs[i].Request)
			i++
		}
		acks = append(acks, c.Tick(cycle)...)
		if i >= len(reqs) && c.Idle() {
			break
		}
	}
	return acks
}
