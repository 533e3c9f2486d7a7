package fundaccounts

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Small little-endian readers at fixed offsets. They do no bounds checks of
// their own and return no error: every caller checks the whole buffer's size
// first, and every offset passed in lies inside that size.

func readU64(data []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(data[offset : offset+8])
}

func readU32(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset : offset+4])
}

func readI32(data []byte, offset int) int32 {
	return int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
}

func readI64(data []byte, offset int) int64 {
	return int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
}

func readPubkey(data []byte, offset int) solana.PublicKey {
	var pk solana.PublicKey
	copy(pk[:], data[offset:offset+32])
	return pk
}
