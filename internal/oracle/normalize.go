package oracle

import (
	"encoding/binary"

	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
	"github.com/symmetryfi/fund-quoter/internal/fundmath"
	"github.com/symmetryfi/fund-quoter/internal/oracleprice"
)

const (
	typePyth  = 0
	typeTable = 1

	pythAccountSize  = fundaccounts.OracleTypeV0Size
	tableAccountSize = fundaccounts.OracleTypeV1Size

	pythOffExpo      = 20
	pythOffValidSlot = 40
	pythOffPrice     = 208
	pythOffConf      = 216
	pythOffStatus    = 224
	pythStatusTrading = 1
	pythLivenessSlots = 50

	tableMantissaBase  = 9
	tableTimestampSkew = 400 // write_timestamp offset is mantissa offset + 400

	tableConfidenceFloorBps = 9900
	tableConfidenceFastAge  = 10
	tableConfidenceSlowAge  = 30
	tableLivenessAgeSeconds = 40
)

// Normalize turns a raw oracle account buffer into an OraclePrice, given the
// owning token's settings and the current chain clock. The account's size
// must match the expected size for settings.OracleType; any other failure
// mode (stale data, wide confidence, unknown type) is absorbed into
// Live == 0 rather than returned as an error, per §4.C.
func Normalize(data []byte, settings fundaccounts.TokenSettings, clock Clock) (oracleprice.OraclePrice, error) {
	switch settings.OracleType {
	case typePyth:
		if len(data) != pythAccountSize {
			return oracleprice.OraclePrice{}, &WrongSizeError{Expected: pythAccountSize, Got: len(data)}
		}
		return normalizePyth(data, settings, clock), nil
	case typeTable:
		if len(data) != tableAccountSize {
			return oracleprice.OraclePrice{}, &WrongSizeError{Expected: tableAccountSize, Got: len(data)}
		}
		return normalizeTable(data, settings, clock), nil
	default:
		return oracleprice.OraclePrice{}, nil
	}
}

func normalizePyth(data []byte, settings fundaccounts.TokenSettings, clock Clock) oracleprice.OraclePrice {
	expo := int32(binary.LittleEndian.Uint32(data[pythOffExpo : pythOffExpo+4]))
	validSlot := binary.LittleEndian.Uint64(data[pythOffValidSlot : pythOffValidSlot+8])
	price := int64(binary.LittleEndian.Uint64(data[pythOffPrice : pythOffPrice+8]))
	conf := binary.LittleEndian.Uint64(data[pythOffConf : pythOffConf+8])
	status := binary.LittleEndian.Uint32(data[pythOffStatus : pythOffStatus+4])

	live := uint8(1)
	if clock.Slot >= validSlot+pythLivenessSlots {
		live = 0
	}
	if status != pythStatusTrading {
		live = 0
	}
	if price < 0 {
		live = 0
	}
	if price >= 0 && conf*10 > uint64(price) {
		live = 0
	}

	// expo is documented on-chain as always negative; a non-negative expo is
	// an open question in the source program (§9) and is treated here as a
	// dead oracle rather than risking an undefined shift direction.
	if expo >= 0 {
		return oracleprice.OraclePrice{Live: 0}
	}
	pow := pow10(uint32(-expo))

	avgPrice := fundmath.MulDiv(uint64(price), fundaccounts.OneUSD, pow)
	confidence := fundmath.MulDiv(conf, fundaccounts.OneUSD, pow)
	baseConfidence := fundmath.MulDiv(confidence, uint64(settings.OracleConfidencePct), 100)

	return finish(avgPrice, baseConfidence, settings.FixedConfidenceBps, live)
}

func normalizeTable(data []byte, settings fundaccounts.TokenSettings, clock Clock) oracleprice.OraclePrice {
	mantissaOffset := tableMantissaBase + int(settings.OracleIndex)*8
	timestampOffset := mantissaOffset + tableTimestampSkew

	mantissa := binary.LittleEndian.Uint64(data[mantissaOffset : mantissaOffset+8])
	writeTimestamp := int64(binary.LittleEndian.Uint64(data[timestampOffset : timestampOffset+8]))

	age := clock.UnixTimestamp - writeTimestamp

	live := uint8(1)
	if age > tableLivenessAgeSeconds {
		live = 0
	}

	c := uint64(settings.OracleConfidencePct)
	var timeBasedConfidenceBps uint64
	switch {
	case age > tableConfidenceSlowAge:
		timeBasedConfidenceBps = tableConfidenceFloorBps
	case age > tableConfidenceFastAge:
		timeBasedConfidenceBps = c + uint64(2*(age-tableConfidenceFastAge))
	default:
		timeBasedConfidenceBps = c
	}

	avgPrice := fundmath.MulDiv(mantissa, 10_000-c, 10_000)
	baseConfidence := fundmath.MulDiv(avgPrice, timeBasedConfidenceBps, 10_000)

	return finish(avgPrice, baseConfidence, settings.FixedConfidenceBps, live)
}

func finish(avgPrice, baseConfidence uint64, fixedConfidenceBps uint8, live uint8) oracleprice.OraclePrice {
	additional := fundmath.MulDiv(avgPrice, uint64(fixedConfidenceBps), 10_000)

	// The sell price is clamped at zero when the band is wider than the
	// average price, so SellPrice <= AvgPrice always holds.
	var sellPrice uint64
	if baseConfidence+additional < avgPrice {
		sellPrice = avgPrice - baseConfidence - additional
	}

	return oracleprice.OraclePrice{
		SellPrice: sellPrice,
		AvgPrice:  avgPrice,
		BuyPrice:  avgPrice + baseConfidence + additional,
		Live:      live,
	}
}

func pow10(exp uint32) uint64 {
	result := uint64(1)
	for i := uint32(0); i < exp; i++ {
		result *= 10
	}
	return result
}
