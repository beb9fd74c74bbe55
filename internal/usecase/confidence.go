package usecase

import (
	"math"

	"TempQuant/internal/domain/models"
	"TempQuant/pkg/util"
)

// EnsembleBucketConfidence is the empirical probability that the realized
// high lands in the bucket: the fraction of ensemble members whose rounded
// temperature falls inside it. Members round because contracts settle on
// whole-degree observations.
func EnsembleBucketConfidence(members []float64, bucket models.Bucket) float64 {
	if len(members) == 0 {
		return 0
	}
	hits := 0
	for _, m := range members {
		if bucket.Contains(float64(util.RoundDegree(m))) {
			hits++
		}
	}
	return float64(hits) / float64(len(members))
}

// NormalBucketConfidence is the parametric probability under a Normal
// centered at the point forecast: Phi((high-mu)/sigma) - Phi((low-mu)/sigma),
// with open bounds contributing 1 and 0.
func NormalBucketConfidence(mu, sigma float64, bucket models.Bucket) float64 {
	if sigma <= 0 {
		return 0
	}
	upper := 1.0
	if bucket.High != nil {
		upper = normalCDF((*bucket.High - mu) / sigma)
	}
	lower := 0.0
	if bucket.Low != nil {
		lower = normalCDF((*bucket.Low - mu) / sigma)
	}
	p := upper - lower
	if p < 0 {
		return 0
	}
	return p
}

func normalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
