package domain

// Tier is the rank label derived from karma.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// RankFor maps a karma balance to its tier. Pure; callers must invoke it
// inside the same transaction as any karma write they persist it with.
func RankFor(karma int64) Tier {
	switch {
	case karma < 100:
		return TierBronze
	case karma < 500:
		return TierSilver
	case karma < 2000:
		return TierGold
	case karma < 5000:
		return TierPlatinum
	default:
		return TierDiamond
	}
}
