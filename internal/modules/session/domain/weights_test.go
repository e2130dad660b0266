package domain

import (
	"math"
	"math/rand"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCategoryWeightsSumToOne(t *testing.T) {
	t.Parallel()
	params := DefaultWeightParams()
	for p := 0.0; p <= 1.0; p += 0.05 {
		for f := 0.0; f <= 1.0; f += 0.05 {
			w := CategoryWeights(p, f, params)
			if !approx(w.Sum(), 1) {
				t.Fatalf("progress=%v focus=%v sum=%v", p, f, w.Sum())
			}
			for b, v := range w {
				if v < 0 {
					t.Fatalf("negative weight for %s: %v", Bucket(b), v)
				}
			}
		}
	}
}

func TestCategoryWeightsBaseline(t *testing.T) {
	t.Parallel()
	w := CategoryWeights(0, 0.5, DefaultWeightParams())
	want := Weights{0.5, 0.2, 0.15, 0.15}
	for i := range w {
		if !approx(w[i], want[i]) {
			t.Fatalf("bucket %s = %v want %v", Bucket(i), w[i], want[i])
		}
	}
}

func TestCategoryWeightsShiftWithProgressAndFocus(t *testing.T) {
	t.Parallel()
	params := DefaultWeightParams()
	base := CategoryWeights(0.25, 0.5, params)
	late := CategoryWeights(0.95, 0.5, params)
	if late[BucketSpecial] <= base[BucketSpecial] {
		t.Fatalf("late progress must raise special weight: %v <= %v", late[BucketSpecial], base[BucketSpecial])
	}
	tired := CategoryWeights(0.25, 0.2, params)
	if tired[BucketPhysical] <= base[BucketPhysical] || tired[BucketSpecial] >= base[BucketSpecial] {
		t.Fatalf("low focus must favour physical: %+v vs %+v", tired, base)
	}
	confident := CategoryWeights(0.25, 0.9, params)
	if confident[BucketPhysical] >= base[BucketPhysical] || confident[BucketSocial] <= base[BucketSocial] {
		t.Fatalf("high focus must favour social: %+v vs %+v", confident, base)
	}
}

func TestWeightsNormalizeAllZeroIsUniform(t *testing.T) {
	t.Parallel()
	w := Weights{-1, 0, 0, 0}.Normalize()
	for i := range w {
		if !approx(w[i], 0.25) {
			t.Fatalf("bucket %d = %v", i, w[i])
		}
	}
}

func TestMaskDropsEmptyBuckets(t *testing.T) {
	t.Parallel()
	w := Weights{0.5, 0.2, 0.15, 0.15}
	masked, ok := w.Mask([BucketCount]bool{false, true, false, true})
	if !ok {
		t.Fatalf("expected available buckets")
	}
	if masked[BucketSpecial] != 0 || masked[BucketPsychological] != 0 {
		t.Fatalf("masked buckets must be zero: %+v", masked)
	}
	if !approx(masked.Sum(), 1) {
		t.Fatalf("masked sum = %v", masked.Sum())
	}
	if _, ok := w.Mask([BucketCount]bool{}); ok {
		t.Fatalf("no available buckets must report false")
	}
}

func TestSampleFollowsCumulativeDistribution(t *testing.T) {
	t.Parallel()
	w := Weights{0.5, 0.2, 0.15, 0.15}
	cases := map[float64]Bucket{
		0:     BucketSpecial,
		0.49:  BucketSpecial,
		0.5:   BucketPhysical,
		0.69:  BucketPhysical,
		0.71:  BucketPsychological,
		0.9:   BucketSocial,
		0.999: BucketSocial,
	}
	for r, want := range cases {
		if got := w.Sample(r); got != want {
			t.Fatalf("sample(%v) = %s want %s", r, got, want)
		}
	}
}

func TestPoolPickOnlyReturnsAvailableEntries(t *testing.T) {
	t.Parallel()
	pool := NewPool([]CatalogEntry{
		{ID: "noise", Category: CategoryEnvironment, Effect: EffectNone},
		{ID: "thirst", Category: CategoryBiological, Effect: EffectNone},
	})
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		entry, ok := pool.Pick(CategoryWeights(0.9, 0.9, DefaultWeightParams()), rng)
		if !ok {
			t.Fatalf("pick must succeed")
		}
		if BucketOf(entry) != BucketPhysical {
			t.Fatalf("picked from empty bucket: %+v", entry)
		}
	}
	if _, ok := NewPool(nil).Pick(Weights{1}, rng); ok {
		t.Fatalf("empty pool must not pick")
	}
}

func TestBucketOfSpecialOverridesCategory(t *testing.T) {
	t.Parallel()
	if got := BucketOf(CatalogEntry{Category: CategorySocial, Effect: EffectRabbitHole}); got != BucketSpecial {
		t.Fatalf("special entry bucket = %s", got)
	}
	if got := BucketOf(CatalogEntry{Category: CategoryBiological}); got != BucketPhysical {
		t.Fatalf("biological bucket = %s", got)
	}
}

func TestBoostTiltsTowardsHintedCategory(t *testing.T) {
	t.Parallel()
	params := DefaultWeightParams()
	for _, hint := range Categories {
		base := CategoryWeights(0.3, 0.5, params)
		b := BucketOfCategory(hint)
		boosted := base.Boost(b, params.HintBoost)
		if !approx(boosted.Sum(), 1) {
			t.Fatalf("%s: boosted sum = %v", hint, boosted.Sum())
		}
		if boosted[b] <= base[b] {
			t.Fatalf("%s: bucket %s not raised: %v <= %v", hint, b, boosted[b], base[b])
		}
		for other := range boosted {
			if Bucket(other) != b && boosted[other] >= base[other] {
				t.Fatalf("%s: bucket %s must shrink: %v >= %v", hint, Bucket(other), boosted[other], base[other])
			}
		}
	}
	if got := (Weights{1, 1, 1, 1}).Boost(Bucket(-1), 1); !approx(got[0], 0.25) {
		t.Fatalf("unknown bucket must only normalize: %+v", got)
	}
}
