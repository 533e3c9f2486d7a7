package oracle

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
)

func pythBuffer(expo int32, validSlot uint64, price int64, conf uint64, status uint32) []byte {
	buf := make([]byte, pythAccountSize)
	binary.LittleEndian.PutUint32(buf[pythOffExpo:pythOffExpo+4], uint32(expo))
	binary.LittleEndian.PutUint64(buf[pythOffValidSlot:pythOffValidSlot+8], validSlot)
	binary.LittleEndian.PutUint64(buf[pythOffPrice:pythOffPrice+8], uint64(price))
	binary.LittleEndian.PutUint64(buf[pythOffConf:pythOffConf+8], conf)
	binary.LittleEndian.PutUint32(buf[pythOffStatus:pythOffStatus+4], status)
	return buf
}

func tableBuffer(oracleIndex uint8, mantissa uint64, writeTimestamp int64) []byte {
	buf := make([]byte, tableAccountSize)
	mantissaOffset := tableMantissaBase + int(oracleIndex)*8
	timestampOffset := mantissaOffset + tableTimestampSkew
	binary.LittleEndian.PutUint64(buf[mantissaOffset:mantissaOffset+8], mantissa)
	binary.LittleEndian.PutUint64(buf[timestampOffset:timestampOffset+8], uint64(writeTimestamp))
	return buf
}

func pythSettings(confidencePct, fixedConfidenceBps uint8) fundaccounts.TokenSettings {
	return fundaccounts.TokenSettings{OracleType: 0, OracleConfidencePct: confidencePct, FixedConfidenceBps: fixedConfidenceBps}
}

func tableSettings(oracleIndex, confidencePct, fixedConfidenceBps uint8) fundaccounts.TokenSettings {
	return fundaccounts.TokenSettings{OracleType: 1, OracleIndex: oracleIndex, OracleConfidencePct: confidencePct, FixedConfidenceBps: fixedConfidenceBps}
}

func TestNormalizePythLive(t *testing.T) {
	// expo=-8, price=100_00000000 ($100), conf=1000000 (0.01), well within
	// the 10x-confidence liveness band.
	data := pythBuffer(-8, 100, 100_00000000, 1_000_000, pythStatusTrading)
	settings := pythSettings(100, 0)

	price, err := Normalize(data, settings, Clock{Slot: 110})
	require.NoError(t, err)
	require.True(t, price.IsLive())

	// avg = 100_00000000 * OneUSD / 1e8 = 100 * OneUSD
	wantAvg := uint64(100) * fundaccounts.OneUSD
	require.Equal(t, wantAvg, price.AvgPrice)
	require.True(t, price.SellPrice <= price.AvgPrice)
	require.True(t, price.AvgPrice <= price.BuyPrice)
}

func TestNormalizePythStatusNotTrading(t *testing.T) {
	data := pythBuffer(-8, 100, 100_00000000, 1_000_000, 0)
	settings := pythSettings(100, 0)
	price, err := Normalize(data, settings, Clock{Slot: 110})
	require.NoError(t, err)
	require.False(t, price.IsLive())
}

func TestNormalizePythStaleSlot(t *testing.T) {
	data := pythBuffer(-8, 100, 100_00000000, 1_000_000, pythStatusTrading)
	settings := pythSettings(100, 0)
	price, err := Normalize(data, settings, Clock{Slot: 100 + pythLivenessSlots})
	require.NoError(t, err)
	require.False(t, price.IsLive())
}

func TestNormalizePythWideConfidence(t *testing.T) {
	// conf*10 > price triggers dead.
	data := pythBuffer(-8, 100, 1000, 101, pythStatusTrading)
	settings := pythSettings(100, 0)
	price, err := Normalize(data, settings, Clock{Slot: 100})
	require.NoError(t, err)
	require.False(t, price.IsLive())
}

func TestNormalizePythNegativePrice(t *testing.T) {
	data := pythBuffer(-8, 100, -1, 0, pythStatusTrading)
	settings := pythSettings(100, 0)
	price, err := Normalize(data, settings, Clock{Slot: 100})
	require.NoError(t, err)
	require.False(t, price.IsLive())
}

func TestNormalizePythNonNegativeExpoIsDead(t *testing.T) {
	data := pythBuffer(0, 100, 100_00000000, 1_000_000, pythStatusTrading)
	settings := pythSettings(100, 0)
	price, err := Normalize(data, settings, Clock{Slot: 100})
	require.NoError(t, err)
	require.Equal(t, uint8(0), price.Live)
}

func TestNormalizePythWrongSize(t *testing.T) {
	_, err := Normalize(make([]byte, pythAccountSize-1), pythSettings(100, 0), Clock{})
	require.Error(t, err)
	var wrongSize *WrongSizeError
	require.ErrorAs(t, err, &wrongSize)
}

func TestNormalizeTableFreshFullConfidence(t *testing.T) {
	data := tableBuffer(0, 1_000_000, 1000)
	settings := tableSettings(0, 100, 0)

	price, err := Normalize(data, settings, Clock{UnixTimestamp: 1005}) // age=5, <= fast threshold
	require.NoError(t, err)
	require.True(t, price.IsLive())

	wantAvg := uint64(1_000_000) * (10_000 - 100) / 10_000
	require.Equal(t, wantAvg, price.AvgPrice)
}

func TestNormalizeTableAgingLinearInterpolation(t *testing.T) {
	data := tableBuffer(0, 1_000_000, 1000)
	settings := tableSettings(0, 100, 0)

	// age=20, between fast(10) and slow(30): confidence bps = 100 + 2*(20-10) = 120
	price, err := Normalize(data, settings, Clock{UnixTimestamp: 1020})
	require.NoError(t, err)
	require.True(t, price.IsLive())
}

func TestNormalizeTableStaleFloorsConfidenceButStaysLiveUntilAgeLimit(t *testing.T) {
	data := tableBuffer(0, 1_000_000, 1000)
	settings := tableSettings(0, 100, 0)

	// age=35: beyond slow(30) but within the 40s liveness window.
	price, err := Normalize(data, settings, Clock{UnixTimestamp: 1035})
	require.NoError(t, err)
	require.True(t, price.IsLive())
}

func TestNormalizeTableTooOldIsDead(t *testing.T) {
	data := tableBuffer(0, 1_000_000, 1000)
	settings := tableSettings(0, 100, 0)

	price, err := Normalize(data, settings, Clock{UnixTimestamp: 1041})
	require.NoError(t, err)
	require.False(t, price.IsLive())
}

func TestNormalizeTableWrongSize(t *testing.T) {
	_, err := Normalize(make([]byte, tableAccountSize+1), tableSettings(0, 100, 0), Clock{})
	require.Error(t, err)
}

func TestNormalizeUnknownOracleTypeIsInertNotError(t *testing.T) {
	settings := fundaccounts.TokenSettings{OracleType: 200}
	price, err := Normalize([]byte{}, settings, Clock{})
	require.NoError(t, err)
	require.Equal(t, uint8(0), price.Live)
}

func TestDecodeClockSysvar(t *testing.T) {
	buf := make([]byte, clockSysvarSize)
	binary.LittleEndian.PutUint64(buf[clockOffSlot:clockOffSlot+8], 42)
	binary.LittleEndian.PutUint64(buf[clockOffUnixTimestamp:clockOffUnixTimestamp+8], uint64(1_700_000_000))

	clock, err := DecodeClockSysvar(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(42), clock.Slot)
	require.Equal(t, int64(1_700_000_000), clock.UnixTimestamp)
}

func TestDecodeClockSysvarWrongSize(t *testing.T) {
	_, err := DecodeClockSysvar(make([]byte, clockSysvarSize-1))
	require.Error(t, err)
}
