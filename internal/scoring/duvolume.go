package scoring

import (
	"time"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// DuVolumeConfig holds the du_volume_volatility strategy's constants.
type DuVolumeConfig struct {
	// VolumeFloor and VolumeCap clamp the transactions/day multiplier.
	VolumeFloor float64 `toml:"volume_floor"`
	VolumeCap   float64 `toml:"volume_cap"`
	// Recency discounts: newly released items have thin, unstable markets;
	// pre-release pricing is barely meaningful at all.
	PreReleaseDiscount float64 `toml:"pre_release_discount"`
	Under14dDiscount   float64 `toml:"under_14d_discount"`
	Under30dDiscount   float64 `toml:"under_30d_discount"`
}

// DefaultDuVolumeConfig returns the strategy's default constants.
func DefaultDuVolumeConfig() DuVolumeConfig {
	return DuVolumeConfig{
		VolumeFloor:        0.5,
		VolumeCap:          2.0,
		PreReleaseDiscount: 0.1,
		Under14dDiscount:   0.3,
		Under30dDiscount:   0.5,
	}
}

// DuVolumeVolatility scores by crossing margin rate times a clamped
// cross-border demand signal, discounted by recency of release. Entries
// without a cross-border listing score zero (their demand is unknown).
type DuVolumeVolatility struct {
	cfg DuVolumeConfig
}

// NewDuVolumeVolatility creates the strategy.
func NewDuVolumeVolatility(cfg DuVolumeConfig) DuVolumeVolatility {
	return DuVolumeVolatility{cfg: cfg}
}

// Name returns the strategy identifier.
func (DuVolumeVolatility) Name() string { return "du_volume_volatility" }

// Score multiplies the crossing margin rate by the clamped volume signal and
// the release-recency discount. An observed volume of exactly 0 is flagged
// as approximated rather than zeroing the score.
func (d DuVolumeVolatility) Score(e *domain.MatchedEntry) (float64, float64, bool) {
	if e.DU == nil {
		return 0, 0, false
	}

	volume := e.DuVolume
	if volume < d.cfg.VolumeFloor {
		volume = d.cfg.VolumeFloor
	}
	if volume > d.cfg.VolumeCap {
		volume = d.cfg.VolumeCap
	}

	score := e.CrossingMarginRate * volume
	score *= d.releaseDiscount(e)

	return score, volume, e.DuVolume == 0
}

func (d DuVolumeVolatility) releaseDiscount(e *domain.MatchedEntry) float64 {
	if e.ReleaseDate == "" {
		return 1
	}
	release, err := time.Parse("2006-01-02", e.ReleaseDate)
	if err != nil {
		return 1
	}

	days := e.ObservedAt.Sub(release).Seconds() / 86400
	switch {
	case days < 0:
		return d.cfg.PreReleaseDiscount
	case days < 14:
		return d.cfg.Under14dDiscount
	case days < 30:
		return d.cfg.Under30dDiscount
	default:
		return 1
	}
}
