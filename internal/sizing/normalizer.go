package sizing

import (
	"fmt"
	"strings"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// Brand identifies a shoe manufacturer with its own sizing last.
type Brand string

const (
	BrandNike   Brand = "nike"
	BrandAdidas Brand = "adidas"
)

// Region identifies a size encoding.
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
	RegionCN Region = "cn"
)

// brandKeywords maps display-name keywords to brands. Inference is a
// case-insensitive substring match.
var brandKeywords = []struct {
	keyword string
	brand   Brand
}{
	{"nike", BrandNike},
	{"jordan", BrandNike},
	{"yeezy", BrandAdidas},
	{"adidas", BrandAdidas},
}

// InferBrand guesses the brand from a product display name. ok is false when
// no keyword matches; callers skip the record rather than fail the batch.
func InferBrand(displayName string) (Brand, bool) {
	lower := strings.ToLower(displayName)
	for _, bk := range brandKeywords {
		if strings.Contains(lower, bk.keyword) {
			return bk.brand, true
		}
	}
	return "", false
}

// Normalizer converts brand/region-encoded sizes to canonical US sizes.
type Normalizer struct {
	euCharts map[Brand]*Chart // brand EU -> US
	cnChart  *Chart           // US -> CN
}

// NewNormalizer builds a Normalizer with all brand charts loaded and their
// inverses precomputed.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		euCharts: map[Brand]*Chart{
			BrandNike:   NewChart("eu-nike-men", nikeEUToUSMen),
			BrandAdidas: NewChart("eu-adidas-men", adidasEUToUSMen),
		},
		cnChart: NewChart("us-cn-men", usToCNMen),
	}
}

// Chart returns the EU chart for a brand, for tests and chart-wide sweeps.
func (n *Normalizer) Chart(brand Brand) (*Chart, bool) {
	c, ok := n.euCharts[brand]
	return c, ok
}

// Normalize converts size from the given brand/region encoding to the
// canonical US size. Normalizing an already-US size returns it unchanged.
func (n *Normalizer) Normalize(brand Brand, region Region, size float64) (float64, error) {
	switch region {
	case RegionUS:
		return size, nil
	case RegionEU:
		chart, ok := n.euCharts[brand]
		if !ok {
			return 0, fmt.Errorf("sizing: brand %q: %w", brand, domain.ErrUnknownBrand)
		}
		return chart.Forward(size)
	case RegionCN:
		return n.cnChart.Inverse(size)
	default:
		return 0, fmt.Errorf("sizing: region %q: %w", region, domain.ErrSizeNotFound)
	}
}

// CanonicalSize strips redundant decimal noise from a size token so venues
// that encode sizes inconsistently still match: "9.0" and "9" both become
// "9", "9.50" becomes "9.5", "10" stays "10".
func CanonicalSize(token string) string {
	token = strings.TrimSpace(token)
	if !strings.Contains(token, ".") {
		return token
	}
	token = strings.TrimRight(token, "0")
	return strings.TrimSuffix(token, ".")
}

// FormatSize renders a numeric size as its canonical token.
func FormatSize(size float64) string {
	return CanonicalSize(fmt.Sprintf("%.1f", size))
}
