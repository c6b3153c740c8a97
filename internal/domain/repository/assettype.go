package repository

// AssetType partitions stored series by market segment.
type AssetType string

const (
	AssetCrypto AssetType = "crypto"
	AssetEquity AssetType = "equity"
	AssetMetal  AssetType = "metal"
	AssetIndex  AssetType = "index"
)

// IsValidAssetType returns true if at is a supported asset type.
func IsValidAssetType(at AssetType) bool {
	switch at {
	case AssetCrypto, AssetEquity, AssetMetal, AssetIndex:
		return true
	default:
		return false
	}
}

// DefaultAssetType returns the default asset type.
func DefaultAssetType() AssetType { return AssetCrypto }

// NormalizeAssetType converts a raw string to a valid asset type (or default).
func NormalizeAssetType(s string) AssetType {
	if s == "" {
		return DefaultAssetType()
	}
	at := AssetType(s)
	if IsValidAssetType(at) {
		return at
	}
	return DefaultAssetType()
}
