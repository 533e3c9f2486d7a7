package fundaccounts

import "github.com/gagliardetto/solana-go"

// Byte offsets for FundState, little-endian, fixed layout. Gaps between
// named fields are reserved on-chain space this core never reads.
const (
	offManager             = 16
	offHost                = 128
	offNumOfTokens          = 168
	offCurrentCompToken     = 176
	offCurrentCompAmount    = 336
	offTargetWeight         = 656
	offWeightSum            = 816
	offRebalanceThreshold   = 1024
	offLpOffsetThreshold    = 1040
	offLpDisabled           = 9432
)

// FundState is the fund's current composition, target weights, and the
// rebalance/weight-band parameters that gate swap admission.
type FundState struct {
	Manager            solana.PublicKey
	Host               solana.PublicKey
	NumOfTokens        uint64
	CurrentCompToken   [NFund]uint64
	CurrentCompAmount  [NFund]uint64
	TargetWeight       [NFund]uint64
	WeightSum          uint64
	RebalanceThreshold uint64
	LpOffsetThreshold  uint64
	LpDisabled         uint64
}

// LoadFundState decodes a FundState from an account buffer. The buffer must
// be exactly FundStateSize bytes; any other size is rejected before a
// single field is read.
func LoadFundState(data []byte) (*FundState, error) {
	if len(data) != FundStateSize {
		return nil, wrongSize("FundState", FundStateSize, len(data))
	}

	fs := &FundState{
		Manager:            readPubkey(data, offManager),
		Host:               readPubkey(data, offHost),
		NumOfTokens:        readU64(data, offNumOfTokens),
		WeightSum:          readU64(data, offWeightSum),
		RebalanceThreshold: readU64(data, offRebalanceThreshold),
		LpOffsetThreshold:  readU64(data, offLpOffsetThreshold),
		LpDisabled:         readU64(data, offLpDisabled),
	}
	for i := 0; i < NFund; i++ {
		fs.CurrentCompToken[i] = readU64(data, offCurrentCompToken+i*8)
		fs.CurrentCompAmount[i] = readU64(data, offCurrentCompAmount+i*8)
		fs.TargetWeight[i] = readU64(data, offTargetWeight+i*8)
	}
	return fs, nil
}

// PositionOfToken returns the index within CurrentCompToken[0:NumOfTokens]
// holding tokenID, or -1 if the fund does not currently hold that token.
func (fs *FundState) PositionOfToken(tokenID uint64) int {
	for i := uint64(0); i < fs.NumOfTokens && i < NFund; i++ {
		if fs.CurrentCompToken[i] == tokenID {
			return int(i)
		}
	}
	return -1
}
