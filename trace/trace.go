// Package trace reads and generates cycle-stamped memory access traces for
// driving a memtile.Controller outside of a full ISA-level simulator.
// Grounded on the sharded, lock-protected storage shape the teacher used
// for its in-memory block backend: a trace.Reader owns one buffered
// decoder and is safe to call from a single consumer goroutine only, the
// same contract the teacher's Memory type held for a single ublk queue.
package trace

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MEEPproject/coyote-sub002/internal/command"
	memtile "github.com/MEEPproject/coyote-sub002"
)

// Entry is one line of a trace: the cycle it arrives on plus the memtile
// Request fields needed to replay it.
type Entry struct {
	Cycle   uint64
	Request memtile.Request
}

// Reader parses a CSV trace of the form:
//
//	cycle,address,type,core_id,pc,size
//
// where type is one of LOAD, FETCH, STORE, WRITEBACK (case-insensitive).
// address and pc are parsed as hexadecimal if prefixed with "0x", decimal
// otherwise. A leading header line ("cycle,address,...") is tolerated and
// skipped.
type Reader struct {
	r      *csv.Reader
	line   int
	header bool
}

// NewReader wraps r as a trace Reader.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{r: cr}
}

// Next returns the next trace entry, or io.EOF when the trace is exhausted.
func (t *Reader) Next() (Entry, error) {
	for {
		fields, err := t.r.Read()
		if err != nil {
			return Entry{}, err
		}
		t.line++
		if len(fields) == 0 {
			continue
		}
		if t.line == 1 && !isNumeric(fields[0]) {
			// header row, skip
			continue
		}
		return parseEntry(fields, t.line)
	}
}

// ReadAll drains the trace into a slice, stopping at io.EOF.
func (t *Reader) ReadAll() ([]Entry, error) {
	var entries []Entry
	for {
		e, err := t.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	return err == nil
}

func parseEntry(fields []string, line int) (Entry, error) {
	if len(fields) < 3 {
		return Entry{}, fmt.Errorf("trace: line %d: want at least cycle,address,type, got %d fields", line, len(fields))
	}
	cycle, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("trace: line %d: bad cycle: %w", line, err)
	}
	addr, err := parseUintAny(fields[1])
	if err != nil {
		return Entry{}, fmt.Errorf("trace: line %d: bad address: %w", line, err)
	}
	accessType, err := parseAccessType(fields[2])
	if err != nil {
		return Entry{}, fmt.Errorf("trace: line %d: %w", line, err)
	}

	e := Entry{
		Cycle: cycle,
		Request: memtile.Request{
			Address: addr,
			Type:    accessType,
			Size:    32,
		},
	}
	if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
		coreID, err := strconv.Atoi(strings.TrimSpace(fields[3]))
		if err != nil {
			return Entry{}, fmt.Errorf("trace: line %d: bad core_id: %w", line, err)
		}
		e.Request.CoreID = coreID
	}
	if len(fields) > 4 && strings.TrimSpace(fields[4]) != "" {
		pc, err := parseUintAny(fields[4])
		if err != nil {
			return Entry{}, fmt.Errorf("trace: line %d: bad pc: %w", line, err)
		}
		e.Request.PC = pc
	}
	if len(fields) > 5 && strings.TrimSpace(fields[5]) != "" {
		size, err := strconv.ParseUint(strings.TrimSpace(fields[5]), 10, 32)
		if err != nil {
			return Entry{}, fmt.Errorf("trace: line %d: bad size: %w", line, err)
		}
		e.Request.Size = uint32(size)
	}
	return e, nil
}

func parseUintAny(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseAccessType(s string) (memtile.AccessType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOAD":
		return memtile.Load, nil
	case "FETCH":
		return memtile.Fetch, nil
	case "STORE":
		return memtile.Store, nil
	case "WRITEBACK":
		return memtile.Writeback, nil
	default:
		return 0, fmt.Errorf("unknown access type %q", s)
	}
}

// Generator produces a synthetic load for exercising a Controller without
// a recorded trace: a fixed-stride address stream from a base address,
// cycling through a caller-supplied sequence of access types. Every
// generated request has Size 32.
type Generator struct {
	stride   uint64
	addr     uint64
	n        uint64
	count    uint64
	pattern  []command.AccessType
	patternI int
}

// NewGenerator builds a Generator that emits n requests, stride bytes
// apart starting at base, cycling through pattern (defaulting to a single
// LOAD if empty).
func NewGenerator(base, stride, n uint64, pattern []command.AccessType) *Generator {
	if len(pattern) == 0 {
		pattern = []command.AccessType{command.Load}
	}
	return &Generator{stride: stride, addr: base, n: n, pattern: pattern}
}

// Next returns the next synthetic request, or ok=false once n requests
// have been produced.
func (g *Generator) Next() (memtile.Request, bool) {
	if g.count >= g.n {
		return memtile.Request{}, false
	}
	req := memtile.Request{
		Address: g.addr,
		Type:    g.pattern[g.patternI%len(g.pattern)],
		Size:    32,
	}
	g.addr += g.stride
	g.count++
	g.patternI++
	return req, true
}
