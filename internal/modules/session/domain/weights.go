package domain

import "math/rand"

// Bucket groups catalog categories for weighted selection. Environment and
// biological entries share the physical bucket; special entries sit in
// their own bucket whatever their category.
type Bucket int

const (
	BucketSpecial Bucket = iota
	BucketPhysical
	BucketPsychological
	BucketSocial
	BucketCount
)

func (b Bucket) String() string {
	switch b {
	case BucketSpecial:
		return "special"
	case BucketPhysical:
		return "physical"
	case BucketPsychological:
		return "psychological"
	case BucketSocial:
		return "social"
	default:
		return "unknown"
	}
}

func BucketOf(entry CatalogEntry) Bucket {
	if entry.Special() {
		return BucketSpecial
	}
	return BucketOfCategory(entry.Category)
}

// BucketOfCategory maps a category to its ordinary bucket.
func BucketOfCategory(c Category) Bucket {
	switch c {
	case CategoryEnvironment, CategoryBiological:
		return BucketPhysical
	case CategoryPsychological:
		return BucketPsychological
	default:
		return BucketSocial
	}
}

type Weights [BucketCount]float64

func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Normalize scales the weights to sum to 1. Negative weights are clamped to
// zero first; an all-zero vector becomes uniform.
func (w Weights) Normalize() Weights {
	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
	}
	total := w.Sum()
	if total <= 0 {
		for i := range w {
			w[i] = 1 / float64(BucketCount)
		}
		return w
	}
	for i := range w {
		w[i] /= total
	}
	return w
}

// Boost adds delta to bucket b and renormalizes.
func (w Weights) Boost(b Bucket, delta float64) Weights {
	if b < 0 || b >= BucketCount {
		return w.Normalize()
	}
	w[b] += delta
	return w.Normalize()
}

// Mask zeroes buckets that are not available and renormalizes. It reports
// false when no bucket is available.
func (w Weights) Mask(available [BucketCount]bool) (Weights, bool) {
	anyAvailable := false
	for i := range w {
		if !available[i] {
			w[i] = 0
			continue
		}
		anyAvailable = true
	}
	if !anyAvailable {
		return Weights{}, false
	}
	if w.Sum() <= 0 {
		for i := range w {
			if available[i] {
				w[i] = 1
			}
		}
	}
	return w.Normalize(), true
}

// Sample walks the cumulative distribution with r in [0, 1).
func (w Weights) Sample(r float64) Bucket {
	cumulative := 0.0
	last := BucketCount
	for i, v := range w {
		if v <= 0 {
			continue
		}
		last = Bucket(i)
		cumulative += v
		if r < cumulative {
			return Bucket(i)
		}
	}
	return last
}

type WeightParams struct {
	Base Weights

	// Past LateProgress the special weight grows linearly up to LateSpecialBoost.
	LateProgress     float64
	LateSpecialBoost float64

	// Below LowFocus the player is tired: physical up, special down.
	LowFocus          float64
	FatiguePhysical   float64
	FatigueSpecialCut float64

	// Above HighFocus the player is confident: physical down, special and social up.
	HighFocus             float64
	ConfidentPhysicalCut  float64
	ConfidentSpecialBoost float64
	ConfidentSocialBoost  float64

	// HintBoost is added to the bucket a wildcard firing hints at.
	HintBoost float64
}

func DefaultWeightParams() WeightParams {
	return WeightParams{
		Base:                  Weights{BucketSpecial: 0.5, BucketPhysical: 0.2, BucketPsychological: 0.15, BucketSocial: 0.15},
		LateProgress:          0.5,
		LateSpecialBoost:      0.2,
		LowFocus:              0.4,
		FatiguePhysical:       0.2,
		FatigueSpecialCut:     0.1,
		HighFocus:             0.7,
		ConfidentPhysicalCut:  0.1,
		ConfidentSpecialBoost: 0.05,
		ConfidentSocialBoost:  0.1,
		HintBoost:             0.15,
	}
}

// CategoryWeights is the pure weighting function: progress and focus are
// ratios in [0, 1]; the result always sums to 1.
func CategoryWeights(progress, focus float64, p WeightParams) Weights {
	w := p.Base
	if progress > p.LateProgress && p.LateProgress < 1 {
		scale := (progress - p.LateProgress) / (1 - p.LateProgress)
		if scale > 1 {
			scale = 1
		}
		w[BucketSpecial] += p.LateSpecialBoost * scale
	}
	switch {
	case focus < p.LowFocus:
		w[BucketPhysical] += p.FatiguePhysical
		w[BucketSpecial] -= p.FatigueSpecialCut
	case focus > p.HighFocus:
		w[BucketPhysical] -= p.ConfidentPhysicalCut
		w[BucketSpecial] += p.ConfidentSpecialBoost
		w[BucketSocial] += p.ConfidentSocialBoost
	}
	return w.Normalize()
}

// Pool indexes catalog entries by bucket.
type Pool struct {
	buckets [BucketCount][]CatalogEntry
	byID    map[string]CatalogEntry
}

func NewPool(entries []CatalogEntry) Pool {
	pool := Pool{byID: make(map[string]CatalogEntry, len(entries))}
	for _, entry := range entries {
		b := BucketOf(entry)
		pool.buckets[b] = append(pool.buckets[b], entry)
		pool.byID[entry.ID] = entry
	}
	return pool
}

func (p Pool) Size() int {
	return len(p.byID)
}

func (p Pool) Entry(id string) (CatalogEntry, bool) {
	entry, ok := p.byID[id]
	return entry, ok
}

func (p Pool) Available() [BucketCount]bool {
	var out [BucketCount]bool
	for i, entries := range p.buckets {
		out[i] = len(entries) > 0
	}
	return out
}

// Pick draws a bucket from the masked weights, then an entry uniformly
// within it. It reports false for an empty pool.
func (p Pool) Pick(w Weights, rng *rand.Rand) (CatalogEntry, bool) {
	masked, ok := w.Mask(p.Available())
	if !ok {
		return CatalogEntry{}, false
	}
	entries := p.buckets[masked.Sample(rng.Float64())]
	if len(entries) == 0 {
		return CatalogEntry{}, false
	}
	return entries[rng.Intn(len(entries))], true
}
