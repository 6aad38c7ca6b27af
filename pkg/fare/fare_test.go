package fare

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"rideshare/pkg/logger"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
	}
}

func TestLocalEstimateDaytimeRange(t *testing.T) {
	t.Parallel()
	est := &LocalEstimator{Rand: rand.New(rand.NewSource(1)), Now: fixedClock(12)}

	got, err := est.Estimate(context.Background(), "Thavhani Mall", "Univen Library", false)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got.Fare < 20 || got.Fare >= 70 {
		t.Errorf("daytime solo fare: got %v, want in [20, 70)", got.Fare)
	}
	if strings.Contains(got.Reasoning, "surcharge") {
		t.Errorf("daytime reasoning mentions surcharge: %q", got.Reasoning)
	}
}

func TestLocalEstimateNightSurcharge(t *testing.T) {
	t.Parallel()
	est := &LocalEstimator{Rand: rand.New(rand.NewSource(1)), Now: fixedClock(23)}

	got, err := est.Estimate(context.Background(), "Thavhani Mall", "Univen Library", false)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !strings.Contains(got.Reasoning, "night-time surcharge") {
		t.Errorf("night reasoning: got %q, want surcharge note", got.Reasoning)
	}
}

func TestLocalEstimateSharedDiscount(t *testing.T) {
	t.Parallel()
	seed := int64(7)
	solo := &LocalEstimator{Rand: rand.New(rand.NewSource(seed)), Now: fixedClock(12)}
	shared := &LocalEstimator{Rand: rand.New(rand.NewSource(seed)), Now: fixedClock(12)}

	soloEst, _ := solo.Estimate(context.Background(), "Thavhani Mall", "Univen Library", false)
	sharedEst, _ := shared.Estimate(context.Background(), "Thavhani Mall", "Univen Library", true)

	if sharedEst.Fare >= soloEst.Fare {
		t.Errorf("shared fare %v not discounted below solo fare %v", sharedEst.Fare, soloEst.Fare)
	}
	if !strings.Contains(sharedEst.Reasoning, "shared ride") {
		t.Errorf("shared reasoning: got %q, want discount note", sharedEst.Reasoning)
	}
}

type failingEstimator struct{}

func (failingEstimator) Estimate(context.Context, string, string, bool) (*Estimate, error) {
	return nil, errors.New("boom")
}

func TestServiceFallsBackOnPrimaryError(t *testing.T) {
	t.Parallel()
	svc := NewService(failingEstimator{}, &LocalEstimator{Rand: rand.New(rand.NewSource(3)), Now: fixedClock(12)}, logger.NewNop())

	got, err := svc.Estimate(context.Background(), "Thavhani Mall", "Univen Library", false)
	if err != nil {
		t.Fatalf("Estimate: got error %v, want recovered fallback", err)
	}
	if got.Fare <= 0 {
		t.Errorf("fallback fare: got %v, want positive", got.Fare)
	}
}

func TestServiceUnconfiguredUsesFallback(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, &LocalEstimator{Rand: rand.New(rand.NewSource(3)), Now: fixedClock(12)}, logger.NewNop())

	got, err := svc.Estimate(context.Background(), "Thavhani Mall", "Univen Library", true)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got.Fare <= 0 {
		t.Errorf("fallback fare: got %v, want positive", got.Fare)
	}
}

func TestIsNightTimeBoundaries(t *testing.T) {
	t.Parallel()
	cases := []struct {
		hour int
		want bool
	}{
		{21, false},
		{22, true},
		{23, true},
		{0, true},
		{5, true},
		{6, false},
		{12, false},
	}
	for _, tc := range cases {
		if got := isNightTime(fixedClock(tc.hour)()); got != tc.want {
			t.Errorf("isNightTime(hour=%d): got %v, want %v", tc.hour, got, tc.want)
		}
	}
}
