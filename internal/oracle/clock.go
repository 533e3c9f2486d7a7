// Package oracle normalizes the two supported on-chain oracle account
// formats into a common OraclePrice{sell, avg, buy, live} triple.
package oracle

import "encoding/binary"

// Clock is the subset of the Solana clock sysvar the normalizer needs. It is
// always supplied explicitly by the caller; this package never reads an
// ambient clock.
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

const (
	clockSysvarSize       = 40
	clockOffSlot          = 0
	clockOffUnixTimestamp = 32
)

// DecodeClockSysvar decodes the fixed 40-byte Clock sysvar account
// (slot, epoch_start_timestamp, epoch, leader_schedule_epoch, unix_timestamp).
func DecodeClockSysvar(data []byte) (Clock, error) {
	if len(data) != clockSysvarSize {
		return Clock{}, &WrongSizeError{Expected: clockSysvarSize, Got: len(data)}
	}
	return Clock{
		Slot:          binary.LittleEndian.Uint64(data[clockOffSlot : clockOffSlot+8]),
		UnixTimestamp: int64(binary.LittleEndian.Uint64(data[clockOffUnixTimestamp : clockOffUnixTimestamp+8])),
	}, nil
}
