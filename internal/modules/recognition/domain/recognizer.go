package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrRecognizerDisabled = errors.New("recognizer is disabled")
	ErrChecksumMismatch   = errors.New("recognizer checksum mismatch")
	ErrRecognizerTimeout  = errors.New("recognizer timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest registers one recognizer binary.
type Manifest struct {
	Name          string  `json:"name"`
	Version       string  `json:"version"`
	Binary        string  `json:"binary"`
	SHA256        string  `json:"sha256"`
	Enabled       bool    `json:"enabled"`
	MinConfidence float64 `json:"min_confidence"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("recognizer name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("recognizer version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("recognizer binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("recognizer sha256 must be lowercase 64-char hex")
	}
	if m.MinConfidence < 0 || m.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be within [0, 1]")
	}
	return nil
}

type Metadata struct {
	Name       string
	Version    string
	Vocabulary []string
}

type Label struct {
	Name       string
	Confidence float64
}

// Frame is one recognition pass over the camera image.
type Frame struct {
	Sequence   int64
	Labels     []Label
	CapturedAt time.Time
}

// Filter keeps labels at or above min confidence, lowercased and without
// duplicates, in frame order.
func (f Frame) Filter(min float64) Frame {
	out := Frame{Sequence: f.Sequence, CapturedAt: f.CapturedAt}
	seen := map[string]struct{}{}
	for _, label := range f.Labels {
		name := strings.ToLower(strings.TrimSpace(label.Name))
		if name == "" || label.Confidence < min {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out.Labels = append(out.Labels, Label{Name: name, Confidence: label.Confidence})
	}
	return out
}

func (f Frame) Names() []string {
	out := make([]string, 0, len(f.Labels))
	for _, label := range f.Labels {
		out = append(out, label.Name)
	}
	return out
}
