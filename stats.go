package memtile

// typeStats accumulates the per-access-type counters spec.md section 4.F
// requires: request count, bytes, total service latency, total queue
// latency. Unlike the teacher's Metrics (atomic.Uint64 fields, built for
// concurrent I/O callbacks), these are updated only from within a single
// Tick call, so plain uint64s suffice — the controller is single-threaded
// by construction (spec.md section 5).
type typeStats struct {
	Requests     uint64
	Bytes        uint64
	TotalLatency uint64 // sum of (completion - arrival) across requests
	TotalQueued  uint64 // sum of (first command generated - arrival)
}

func (s *typeStats) record(bytes, serviceLatency, queueLatency uint64) {
	s.Requests++
	s.Bytes += bytes
	s.TotalLatency += serviceLatency
	s.TotalQueued += queueLatency
}

// AvgLatency and AvgQueueLatency are derived ratios (spec.md section 6,
// "Statistics exposed"); both are zero if no requests of this type
// completed.
func (s typeStats) AvgLatency() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.TotalLatency) / float64(s.Requests)
}

func (s typeStats) AvgQueueLatency() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.TotalQueued) / float64(s.Requests)
}

// Stats is the end-of-run statistics snapshot (spec.md section 6):
// per-access-type counters plus aggregate queue-occupancy sampling.
type Stats struct {
	Load      typeStats
	Fetch     typeStats
	Store     typeStats
	Writeback typeStats

	// occupancySum/occupancyWeight accumulate a time-weighted average of
	// the request scheduler's queue occupancy (spec.md section 4.F step
	// 2: "weighted by (t - last_sample_t)").
	occupancySum    float64
	occupancyWeight uint64
	occupancyMax    int
}

// AvgQueueOccupancy is the time-weighted average request-queue occupancy
// observed across the run.
func (s Stats) AvgQueueOccupancy() float64 {
	if s.occupancyWeight == 0 {
		return 0
	}
	return s.occupancySum / float64(s.occupancyWeight)
}

// MaxQueueOccupancy is the largest request-queue occupancy observed.
func (s Stats) MaxQueueOccupancy() int { return s.occupancyMax }

func (s *Stats) sampleOccupancy(occupancy int, weight uint64) {
	if weight == 0 {
		return
	}
	s.occupancySum += float64(occupancy) * float64(weight)
	s.occupancyWeight += weight
	if occupancy > s.occupancyMax {
		s.occupancyMax = occupancy
	}
}

func (s *Stats) byType(t AccessType) *typeStats {
	switch t {
	case Load:
		return &s.Load
	case Fetch:
		return &s.Fetch
	case Store:
		return &s.Store
	default: // Writeback
		return &s.Writeback
	}
}

func (s *Stats) recordAck(ack Ack) {
	s.byType(ack.Request.Type).record(uint64(ack.Request.Size), ack.ServiceLatency, ack.QueueLatency)
}
