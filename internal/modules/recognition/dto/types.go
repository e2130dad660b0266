package dto

import "time"

type RecognizerInfo struct {
	Name          string
	Version       string
	Enabled       bool
	Binary        string
	MinConfidence float64
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Vocabulary      []string
	Error           string
}

type Label struct {
	Name       string
	Confidence float64
}

type Frame struct {
	Sequence   int64
	Labels     []Label
	CapturedAt time.Time
}

func (f Frame) Names() []string {
	out := make([]string, 0, len(f.Labels))
	for _, label := range f.Labels {
		out = append(out, label.Name)
	}
	return out
}
