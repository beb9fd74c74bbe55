package kalshi

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"TempQuant/internal/domain/models"
)

// EventTicker builds the exchange event ticker for a series on a local
// calendar date, e.g. KXHIGHNY + 2026-04-05 -> KXHIGHNY-26APR05.
func EventTicker(series string, date time.Time) string {
	return series + "-" + strings.ToUpper(date.Format("06Jan02"))
}

var (
	rangePat   = regexp.MustCompile(`(-?\d+(?:\.\d+)?)°?\s*(?:to|-)\s*(-?\d+(?:\.\d+)?)°?`)
	atMostPat  = regexp.MustCompile(`(?:≤\s*|)(-?\d+(?:\.\d+)?)°?\s*(?:or below|or lower|or less)`)
	atLeastPat = regexp.MustCompile(`(?:≥\s*|)(-?\d+(?:\.\d+)?)°?\s*(?:or above|or higher|or more)`)
	leadingLE  = regexp.MustCompile(`^≤\s*(-?\d+(?:\.\d+)?)`)
	leadingGE  = regexp.MustCompile(`^≥\s*(-?\d+(?:\.\d+)?)`)
)

// ParseBucket derives a market's temperature bucket. Strike fields are
// authoritative when the exchange populates them; the display subtitle is
// the fallback.
func ParseBucket(floorStrike, capStrike *float64, subtitle string) (models.Bucket, bool) {
	if floorStrike != nil || capStrike != nil {
		b := models.Bucket{Low: floorStrike, High: capStrike}
		if b.Valid() {
			return b, true
		}
		return models.Bucket{}, false
	}
	return parseSubtitle(subtitle)
}

func parseSubtitle(subtitle string) (models.Bucket, bool) {
	s := strings.TrimSpace(subtitle)
	if s == "" {
		return models.Bucket{}, false
	}

	if m := atMostPat.FindStringSubmatch(s); m != nil {
		return atMost(m[1])
	}
	if m := atLeastPat.FindStringSubmatch(s); m != nil {
		return atLeast(m[1])
	}
	if m := leadingLE.FindStringSubmatch(s); m != nil {
		return atMost(m[1])
	}
	if m := leadingGE.FindStringSubmatch(s); m != nil {
		return atLeast(m[1])
	}
	if m := rangePat.FindStringSubmatch(s); m != nil {
		low, err1 := strconv.ParseFloat(m[1], 64)
		high, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil || low > high {
			return models.Bucket{}, false
		}
		return models.ClosedBucket(low, high), true
	}
	return models.Bucket{}, false
}

func atMost(raw string) (models.Bucket, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.Bucket{}, false
	}
	return models.AtMostBucket(v), true
}

func atLeast(raw string) (models.Bucket, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.Bucket{}, false
	}
	return models.AtLeastBucket(v), true
}
