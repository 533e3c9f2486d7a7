// Package oracleprice holds the common oracle price representation shared
// between the account-decoding and oracle-normalization layers, split into
// its own package to avoid a dependency cycle between them.
package oracleprice

// OraclePrice is the normalized {sell, avg, buy, live} triple produced from
// either supported oracle account format. When Live is 1, SellPrice <=
// AvgPrice <= BuyPrice always holds.
type OraclePrice struct {
	SellPrice uint64
	AvgPrice  uint64
	BuyPrice  uint64
	Live      uint8
}

// IsLive reports whether downstream pricing may use this oracle reading.
func (p OraclePrice) IsLive() bool { return p.Live == 1 }
