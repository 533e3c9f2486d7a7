package fundaccounts

const (
	offTokenListNumTokens = 8
	offTokenListEntries   = 16
)

// TokenList is the registry of up to NPool supported tokens.
type TokenList struct {
	NumTokens uint64
	List      [NPool]TokenSettings
}

// LoadTokenList decodes a TokenList from an account buffer. Only the first
// NumTokens entries are parsed; the remaining positions stay zero-valued.
func LoadTokenList(data []byte) (*TokenList, error) {
	if len(data) != TokenListSize {
		return nil, wrongSize("TokenList", TokenListSize, len(data))
	}

	tl := &TokenList{
		NumTokens: readU64(data, offTokenListNumTokens),
	}
	for i := uint64(0); i < tl.NumTokens && i < NPool; i++ {
		start := offTokenListEntries + int(i)*tokenSettingsSize
		settings, err := decodeTokenSettings(data[start : start+tokenSettingsSize])
		if err != nil {
			return nil, err
		}
		tl.List[i] = settings
	}
	return tl, nil
}

// IndexOfMint returns the registry index of mint, or -1 if not present.
func (tl *TokenList) IndexOfMint(mint [32]byte) int {
	for i := uint64(0); i < tl.NumTokens && i < NPool; i++ {
		if tl.List[i].TokenMint == mint {
			return int(i)
		}
	}
	return -1
}
