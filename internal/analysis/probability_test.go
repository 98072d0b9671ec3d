package analysis

import (
	"math"
	"testing"

	"github.com/chrissnell/outdoorrisk/internal/riskerr"
	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

func TestClopperPearsonEdgeCases(t *testing.T) {
	// No trials: maximally uncertain
	lo, hi, err := ClopperPearson(0, 0, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo != 0 || hi != 1 {
		t.Errorf("n=0 interval = (%v, %v), want (0, 1)", lo, hi)
	}

	// Zero successes in 100 trials: upper bound is the rule-of-three region
	lo, hi, err = ClopperPearson(0, 100, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo != 0 {
		t.Errorf("k=0 lower = %v, want 0", lo)
	}
	if hi <= 0.030 || hi >= 0.040 {
		t.Errorf("k=0, n=100 upper = %v, want in (0.030, 0.040)", hi)
	}

	// All successes: mirror image
	lo, hi, err = ClopperPearson(100, 100, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hi != 1 {
		t.Errorf("k=n upper = %v, want 1", hi)
	}
	if lo <= 0.960 || lo >= 0.970 {
		t.Errorf("k=n=100 lower = %v, want in (0.960, 0.970)", lo)
	}
}

func TestClopperPearsonGeneralCase(t *testing.T) {
	// 50/100 at 95%: the textbook interval is about [0.398, 0.602]
	lo, hi, err := ClopperPearson(50, 100, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lo-0.3983) > 0.002 {
		t.Errorf("lower = %v, want about 0.398", lo)
	}
	if math.Abs(hi-0.6017) > 0.002 {
		t.Errorf("upper = %v, want about 0.602", hi)
	}

	// Symmetric around 0.5 for k = n/2
	if math.Abs((lo+hi)-1.0) > 1e-9 {
		t.Errorf("interval (%v, %v) not symmetric around 0.5", lo, hi)
	}
}

func TestClopperPearsonContainsPointEstimate(t *testing.T) {
	cases := []struct{ k, n int }{
		{1, 10}, {3, 20}, {7, 8}, {15, 100}, {99, 100},
	}
	for _, c := range cases {
		lo, hi, err := ClopperPearson(c.k, c.n, 0.95)
		if err != nil {
			t.Fatalf("unexpected error for %d/%d: %v", c.k, c.n, err)
		}
		p := float64(c.k) / float64(c.n)
		if !(0 <= lo && lo <= p && p <= hi && hi <= 1) {
			t.Errorf("%d/%d: 0 ≤ %v ≤ %v ≤ %v ≤ 1 violated", c.k, c.n, lo, hi, p)
		}
	}
}

func TestClopperPearsonWidthShrinksWithN(t *testing.T) {
	// Same proportion, growing n: interval must narrow
	prev := math.Inf(1)
	for _, c := range []struct{ k, n int }{{2, 10}, {20, 100}, {200, 1000}} {
		lo, hi, err := ClopperPearson(c.k, c.n, 0.95)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		width := hi - lo
		if width >= prev {
			t.Errorf("width %v at n=%d did not shrink from %v", width, c.n, prev)
		}
		prev = width
	}
}

func TestClopperPearsonValidation(t *testing.T) {
	if _, _, err := ClopperPearson(5, 3, 0.95); !riskerr.IsKind(err, riskerr.KindValidation) {
		t.Error("k > n should be a validation error")
	}
	if _, _, err := ClopperPearson(-1, 3, 0.95); !riskerr.IsKind(err, riskerr.KindValidation) {
		t.Error("negative k should be a validation error")
	}
	if _, _, err := ClopperPearson(1, 3, 1.0); !riskerr.IsKind(err, riskerr.KindValidation) {
		t.Error("level 1.0 should be a validation error")
	}
}

func testCollection() *samples.Collection {
	return &samples.Collection{
		Samples: []samples.Sample{
			{Year: 2020, TemperatureC: 42.0, RelativeHumidity: 10.0, WindSpeedMS: 2.0},
			{Year: 2021, TemperatureC: 20.0, RelativeHumidity: 50.0, WindSpeedMS: 2.0},
			{Year: 2022, TemperatureC: 20.0, RelativeHumidity: 50.0, WindSpeedMS: 12.0},
		},
		CoverageAdequate: true,
	}
}

func TestProbability(t *testing.T) {
	col := testCollection()
	settings := config.Default()

	hot, err := Probability(col, KindHot, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hot.PositiveSamples != 1 || hot.TotalSamples != 3 {
		t.Errorf("hot k/n = %d/%d, want 1/3", hot.PositiveSamples, hot.TotalSamples)
	}
	if math.Abs(hot.Probability-1.0/3.0) > 1e-12 {
		t.Errorf("hot probability = %v, want 1/3", hot.Probability)
	}
	if hot.CILower > hot.Probability || hot.CIUpper < hot.Probability {
		t.Errorf("interval (%v, %v) does not contain %v", hot.CILower, hot.CIUpper, hot.Probability)
	}
	if hot.CoverageYears != 3 {
		t.Errorf("coverage years = %d, want 3", hot.CoverageYears)
	}

	any, err := Probability(col, KindAny, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One hot sample plus one windy sample
	if any.PositiveSamples != 2 {
		t.Errorf("any k = %d, want 2", any.PositiveSamples)
	}

	multiple, err := Probability(col, KindMultiple, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if multiple.PositiveSamples != 0 {
		t.Errorf("multiple k = %d, want 0", multiple.PositiveSamples)
	}
}

func TestProbabilityErrors(t *testing.T) {
	settings := config.Default()

	if _, err := Probability(&samples.Collection{}, KindHot, settings); !riskerr.IsKind(err, riskerr.KindValidation) {
		t.Error("empty collection should be a validation error")
	}
	if _, err := Probability(testCollection(), Kind("sweltering"), settings); !riskerr.IsKind(err, riskerr.KindValidation) {
		t.Error("unknown kind should be a validation error")
	}
}

func TestProbabilities(t *testing.T) {
	results, err := Probabilities(testCollection(), config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(Kinds) {
		t.Fatalf("got %d results, want %d", len(results), len(Kinds))
	}
	for _, kind := range Kinds {
		if results[kind] == nil {
			t.Errorf("missing result for kind %q", kind)
		}
	}
}
