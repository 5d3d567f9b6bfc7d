// Package ranking computes the time-decaying popularity score that orders
// the trending feed.
package ranking

import (
	"math"
	"time"
)

type Config struct {
	Gravity   float64 // 时间重力，>1 so older items decay faster than they accumulate likes
	AgeOffset float64 // hours added to the age to avoid a blow-up for brand-new items
}

var DefaultConfig = Config{
	Gravity:   1.8,
	AgeOffset: 2.0,
}

// Score maps a like count and an age in hours to a popularity score.
// It is monotonic: more likes never lower the score, more age never raises
// it. Pure function, no side effects.
func Score(likes int64, ageHours float64) float64 {
	return DefaultConfig.Score(likes, ageHours)
}

func (c Config) Score(likes int64, ageHours float64) float64 {
	if likes < 0 {
		likes = 0
	}
	if ageHours < 0 {
		ageHours = 0
	}
	return float64(likes) / math.Pow(ageHours+c.AgeOffset, c.Gravity)
}

// AgeHours returns the age of a creation timestamp in hours, floored at 0
// for clock-skewed rows.
func AgeHours(createdAt time.Time, now time.Time) float64 {
	h := now.Sub(createdAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}
