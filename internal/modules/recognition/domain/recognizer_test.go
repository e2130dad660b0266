package domain_test

import (
	"strings"
	"testing"

	"distracted/internal/modules/recognition/domain"
)

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	sha := strings.Repeat("a", 64)
	cases := []struct {
		name      string
		manifest  domain.Manifest
		shouldErr bool
	}{
		{name: "valid", manifest: domain.Manifest{Name: "r", Version: "1", Binary: "/tmp/r", SHA256: sha, Enabled: true, MinConfidence: 0.5}, shouldErr: false},
		{name: "missing name", manifest: domain.Manifest{Version: "1", Binary: "/tmp/r", SHA256: sha}, shouldErr: true},
		{name: "missing version", manifest: domain.Manifest{Name: "r", Binary: "/tmp/r", SHA256: sha}, shouldErr: true},
		{name: "missing binary", manifest: domain.Manifest{Name: "r", Version: "1", SHA256: sha}, shouldErr: true},
		{name: "uppercase sha", manifest: domain.Manifest{Name: "r", Version: "1", Binary: "/tmp/r", SHA256: strings.Repeat("A", 64)}, shouldErr: true},
		{name: "confidence above one", manifest: domain.Manifest{Name: "r", Version: "1", Binary: "/tmp/r", SHA256: sha, MinConfidence: 1.5}, shouldErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestFrameFilterDropsLowConfidenceAndDuplicates(t *testing.T) {
	t.Parallel()
	frame := domain.Frame{Sequence: 3, Labels: []domain.Label{
		{Name: "Cup", Confidence: 0.9},
		{Name: "chair", Confidence: 0.2},
		{Name: " cup ", Confidence: 0.8},
		{Name: "", Confidence: 1},
		{Name: "keys", Confidence: 0.5},
	}}
	got := frame.Filter(0.5).Names()
	if len(got) != 2 || got[0] != "cup" || got[1] != "keys" {
		t.Fatalf("unexpected labels: %v", got)
	}
}
