package usecase

import (
	"math"
	"testing"

	"TempQuant/internal/domain/models"
)

func TestEnsembleBucketConfidenceBounds(t *testing.T) {
	members := []float64{36.2, 37.8, 38.1, 39.6, 40.4, 41.0, 42.9, 38.8, 39.2, 40.1}
	for _, bucket := range []models.Bucket{
		models.AtMostBucket(40),
		models.AtLeastBucket(38),
		models.ClosedBucket(38, 40),
	} {
		p := EnsembleBucketConfidence(members, bucket)
		if p < 0 || p > 1 {
			t.Fatalf("bucket %s: confidence %f out of [0,1]", bucket, p)
		}
	}
}

func TestEnsembleBucketConfidenceEmpty(t *testing.T) {
	if p := EnsembleBucketConfidence(nil, models.AtMostBucket(40)); p != 0 {
		t.Fatalf("empty members: got %f, want 0", p)
	}
}

func TestEnsembleBucketConfidenceRoundsMembers(t *testing.T) {
	// 40.4 rounds to 40 and lands inside ≤40; 40.6 rounds to 41 and does
	// not.
	if p := EnsembleBucketConfidence([]float64{40.4}, models.AtMostBucket(40)); p != 1 {
		t.Fatalf("40.4 vs ≤40: got %f, want 1", p)
	}
	if p := EnsembleBucketConfidence([]float64{40.6}, models.AtMostBucket(40)); p != 0 {
		t.Fatalf("40.6 vs ≤40: got %f, want 0", p)
	}
}

func TestEnsembleBucketConfidenceOpenBoundEquivalence(t *testing.T) {
	members := []float64{35, 38, 41, 44}
	nilBound := EnsembleBucketConfidence(members, models.AtMostBucket(40))
	infBound := EnsembleBucketConfidence(members, models.ClosedBucket(math.Inf(-1), 40))
	if nilBound != infBound {
		t.Fatalf("nil bound %f != infinite bound %f", nilBound, infBound)
	}
}

func TestNormalBucketConfidenceScenario(t *testing.T) {
	// Forecast 38, bucket ≤40, sigma 2: Phi(1.0) ≈ 0.8413.
	p := NormalBucketConfidence(38, 2, models.AtMostBucket(40))
	if math.Abs(p-0.8413) > 0.001 {
		t.Fatalf("got %f, want ≈0.8413", p)
	}
}

func TestNormalBucketConfidenceClosedBucket(t *testing.T) {
	// Symmetric bucket around the mean: Phi(1)-Phi(-1) ≈ 0.6827.
	p := NormalBucketConfidence(38, 2, models.ClosedBucket(36, 40))
	if math.Abs(p-0.6827) > 0.001 {
		t.Fatalf("got %f, want ≈0.6827", p)
	}
}

func TestNormalBucketConfidenceZeroSigma(t *testing.T) {
	if p := NormalBucketConfidence(38, 0, models.AtMostBucket(40)); p != 0 {
		t.Fatalf("got %f, want 0", p)
	}
}
