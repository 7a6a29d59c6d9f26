// Package timing owns the named JEDEC-style timing parameters and the
// per-bank ledger used to enforce them.
package timing

import (
	"fmt"
	"strconv"
	"strings"
)

// Param names one of the 27 timing constraints tracked by the table.
type Param uint8

const (
	CCDL Param = iota
	CCDS
	CKE
	QSCK
	FAW
	PL
	RAS
	RC
	RCDRD
	RCDWR
	REFI
	REFISB
	RFC
	RFCSB
	RL
	RP
	RRDL
	RRDS
	RREFD
	RTP
	RTW
	WL
	WR
	WTRL
	WTRS
	XP
	XS
	numParams
)

var paramNames = [numParams]string{
	CCDL: "CCDL", CCDS: "CCDS", CKE: "CKE", QSCK: "QSCK", FAW: "FAW", PL: "PL",
	RAS: "RAS", RC: "RC", RCDRD: "RCDRD", RCDWR: "RCDWR", REFI: "REFI",
	REFISB: "REFISB", RFC: "RFC", RFCSB: "RFCSB", RL: "RL", RP: "RP",
	RRDL: "RRDL", RRDS: "RRDS", RREFD: "RREFD", RTP: "RTP", RTW: "RTW",
	WL: "WL", WR: "WR", WTRL: "WTRL", WTRS: "WTRS", XP: "XP", XS: "XS",
}

func (p Param) String() string {
	if int(p) < 0 || p >= numParams {
		return "UNKNOWN"
	}
	return paramNames[p]
}

func parseParamName(name string) (Param, bool) {
	for i, n := range paramNames {
		if n == name {
			return Param(i), true
		}
	}
	return 0, false
}

// DefaultMemSpec is the default "NAME:cycles" list (spec.md section 6),
// matching the original model's defaults exactly.
var DefaultMemSpec = []string{
	"CCDL:3", "CCDS:2", "CKE:8", "QSCK:1", "FAW:16", "PL:0", "RAS:28",
	"RC:42", "RCDRD:12", "RCDWR:6", "REFI:3900", "REFISB:244", "RFC:220",
	"RFCSB:96", "RL:17", "RP:14", "RRDL:6", "RRDS:4", "RREFD:8", "RTP:5",
	"RTW:18", "WL:7", "WR:14", "WTRL:9", "WTRS:4", "XP:8", "XS:216",
}

// Table holds the resolved cycle count for every named timing parameter.
type Table struct {
	values [numParams]uint64
}

// NewTable builds a Table from DefaultMemSpec.
func NewTable() *Table {
	t := &Table{}
	// ParseMemSpec never fails on DefaultMemSpec; ignore the impossible error.
	_ = t.applyMemSpec(DefaultMemSpec)
	return t
}

// ParseMemSpec builds a Table from a list of "NAME:cycles" entries (spec.md
// section 6). Names absent from entries default to 0, per spec.md section
// 6 ("missing names default to 0") — callers that want the JEDEC-ish
// defaults for unlisted parameters should start from DefaultMemSpec and
// override individual entries rather than passing a partial list.
func ParseMemSpec(entries []string) (*Table, error) {
	t := &Table{}
	if err := t.applyMemSpec(entries); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) applyMemSpec(entries []string) error {
	for _, e := range entries {
		name, value, found := strings.Cut(e, ":")
		if !found {
			return fmt.Errorf("timing: malformed mem_spec entry %q, want NAME:cycles", e)
		}
		name = strings.TrimSpace(name)
		p, ok := parseParamName(name)
		if !ok {
			return fmt.Errorf("timing: unknown timing parameter %q", name)
		}
		// spec.md section 7: a negative or >u16 timing value is a fatal
		// configuration error; ParseUint with bitSize 16 rejects both in
		// one check (a "-1" fails as unsigned, as does anything > 65535).
		cycles, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
		if err != nil {
			return fmt.Errorf("timing: timing out of range for %q: %w", name, err)
		}
		t.values[p] = cycles
	}
	return nil
}

// Get returns the configured cycle count for p.
func (t *Table) Get(p Param) uint64 {
	return t.values[p]
}
