package memtile

import (
	"github.com/MEEPproject/coyote-sub002/internal/constants"
	"github.com/MEEPproject/coyote-sub002/internal/timing"
)

// DefaultControllerParams returns the spec.md section 6 defaults.
func DefaultControllerParams() ControllerParams {
	return ControllerParams{
		NumBanks:                constants.DefaultNumBanks,
		NumBanksPerGroup:        constants.DefaultNumBanksPerGroup,
		WriteAllocate:           constants.DefaultWriteAllocate,
		RequestReorderingPolicy: constants.DefaultRequestReorderingPolicy,
		CommandReorderingPolicy: constants.DefaultCommandReorderingPolicy,
		AddressPolicy:           constants.DefaultAddressPolicy,
		UnusedLSBs:              constants.DefaultUnusedLSBs,
		MemSpec:                 nil, // nil means timing.DefaultMemSpec
		Bank: BankParams{
			NumRows:           constants.DefaultNumRows,
			NumColumns:        constants.DefaultNumColumns,
			ColumnElementSize: constants.DefaultColumnElementSize,
			DelayOpen:         constants.DefaultDelayOpen,
			DelayClose:        constants.DefaultDelayClose,
			DelayRead:         constants.DefaultDelayRead,
			DelayWrite:        constants.DefaultDelayWrite,
		},
	}
}

// resolvedMemSpec returns p.MemSpec, or timing.DefaultMemSpec if p did not
// set one.
func (p ControllerParams) resolvedMemSpec() []string {
	if p.MemSpec == nil {
		return timing.DefaultMemSpec
	}
	return p.MemSpec
}
