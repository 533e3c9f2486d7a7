package fundaccounts

const (
	offCurveBuy  = 8
	offCurveSell = 32008
	curveStride  = 160 // NPoint*8 amounts + NPoint*8 prices
)

// TokenPriceData is one token's piecewise-linear curve: NPoint (amount,
// price) pairs, amount in the token's smallest unit and price in ONE_USD
// units per whole token.
type TokenPriceData struct {
	Amount [NPoint]uint64
	Price  [NPoint]uint64
}

// CurveData holds the buy-side and sell-side curve tables for every token
// in the registry.
type CurveData struct {
	Buy  [NPool]TokenPriceData
	Sell [NPool]TokenPriceData
}

// LoadCurveData decodes a CurveData from an account buffer, which must be
// exactly CurveDataSize bytes.
func LoadCurveData(data []byte) (*CurveData, error) {
	if len(data) != CurveDataSize {
		return nil, wrongSize("CurveData", CurveDataSize, len(data))
	}

	cd := &CurveData{}
	for i := 0; i < NPool; i++ {
		buyBase := offCurveBuy + i*curveStride
		sellBase := offCurveSell + i*curveStride
		for j := 0; j < NPoint; j++ {
			cd.Buy[i].Amount[j] = readU64(data, buyBase+j*8)
			cd.Buy[i].Price[j] = readU64(data, buyBase+NPoint*8+j*8)
			cd.Sell[i].Amount[j] = readU64(data, sellBase+j*8)
			cd.Sell[i].Price[j] = readU64(data, sellBase+NPoint*8+j*8)
		}
	}
	return cd, nil
}
