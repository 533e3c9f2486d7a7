package fundaccounts

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/symmetryfi/fund-quoter/internal/oracleprice"
)

// TokenSettings is one entry of the token registry: the token's mint,
// decimals, oracle wiring, fee tiers, and swap eligibility flags. Every
// field below is laid out contiguously in the on-chain record, which lets
// the whole 199-byte slice decode in one pass.
type TokenSettings struct {
	TokenMint           solana.PublicKey
	Decimals            uint8
	ExternalID          [30]uint8 // free-form id, unused by the pricing core
	PDATokenAccount     solana.PublicKey
	OracleType          uint8
	OracleAccount       solana.PublicKey
	OracleIndex         uint8
	OracleConfidencePct uint8
	FixedConfidenceBps  uint8
	FeeAfterTWBps       uint8
	FeeBeforeTWBps      uint8
	IsLive              uint8
	LPOn                uint8
	UseCurveData        uint8
	AdditionalData      [63]uint8

	// OraclePrice is attached after oracle decoding during an update cycle;
	// it is not part of the on-chain byte layout.
	OraclePrice oracleprice.OraclePrice `bin:"-"`
}

// SymmetryBps, HostBps and ManagerBps are the fee-split shares carried in
// AdditionalData[60:63] of TokenList.List[0] only — see §4.F step 10.
func (ts *TokenSettings) SymmetryBps() uint64 { return uint64(ts.AdditionalData[60]) }
func (ts *TokenSettings) HostBps() uint64     { return uint64(ts.AdditionalData[61]) }
func (ts *TokenSettings) ManagerBps() uint64  { return uint64(ts.AdditionalData[62]) }

func decodeTokenSettings(data []byte) (TokenSettings, error) {
	var ts TokenSettings
	decoder := bin.NewBinDecoder(data)
	if err := decoder.Decode(&ts); err != nil {
		return TokenSettings{}, err
	}
	return ts, nil
}
