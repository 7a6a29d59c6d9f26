// Package constants holds the default configuration values named in
// spec.md section 6: per-bank geometry/timing defaults and the
// controller-wide defaults applied when a caller does not override them.
package constants

const (
	// DefaultNumBanks is the number of banks handled when unconfigured.
	DefaultNumBanks = 8

	// DefaultNumBanksPerGroup is used by the bank-group interleaving
	// address policy.
	DefaultNumBanksPerGroup = 4

	// DefaultUnusedLSBs is the number of low address bits below
	// cache-line granularity.
	DefaultUnusedLSBs = 5

	// DefaultWriteAllocate mirrors the original model's default: a STORE
	// triggers an allocate READ before its WRITE.
	DefaultWriteAllocate = true

	// Default*Policy are the configuration string defaults.
	DefaultRequestReorderingPolicy = "fifo"
	DefaultCommandReorderingPolicy = "fifo"
	DefaultAddressPolicy           = "close_page"

	// Per-bank geometry defaults.
	DefaultNumRows           = 65536
	DefaultNumColumns        = 1024
	DefaultColumnElementSize = 8

	// Per-bank delay defaults, in cycles.
	DefaultDelayOpen  = 50
	DefaultDelayClose = 50
	DefaultDelayRead  = 20
	DefaultDelayWrite = 20

	// BytesPerBurstUnit is the native burst width (32B) used to derive a
	// request's READ/WRITE latency factor when the caller does not supply
	// mem_op_latency_factor directly (spec.md section 4.B).
	BytesPerBurstUnit = 32

	// CommandBusCyclesNormal and CommandBusCyclesActivate are the number
	// of command-bus cycles consumed by an issued command before another
	// may be issued (spec.md section 5: ACTIVATE is the one two-cycle
	// command).
	CommandBusCyclesNormal   = 1
	CommandBusCyclesActivate = 2
)
