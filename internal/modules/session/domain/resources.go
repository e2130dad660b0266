package domain

const (
	ResourceMin = 0
	ResourceMax = 100
)

// Resources holds the two bounded counters. Every mutation clamps to
// [ResourceMin, ResourceMax].
type Resources struct {
	Score int
	Focus int
}

func NewResources(score, focus int) Resources {
	return Resources{Score: Clamp(score), Focus: Clamp(focus)}
}

func (r *Resources) AddScore(delta int) {
	r.Score = Clamp(r.Score + delta)
}

func (r *Resources) AddFocus(delta int) {
	r.Focus = Clamp(r.Focus + delta)
}

func (r Resources) Depleted() bool {
	return r.Score <= ResourceMin
}

func (r Resources) FocusRatio() float64 {
	return float64(r.Focus) / float64(ResourceMax)
}

func Clamp(v int) int {
	if v < ResourceMin {
		return ResourceMin
	}
	if v > ResourceMax {
		return ResourceMax
	}
	return v
}
