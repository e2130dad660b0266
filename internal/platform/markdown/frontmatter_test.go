package markdown_test

import (
	"strings"
	"testing"

	"distracted/internal/platform/markdown"
)

type header struct {
	ID    string `yaml:"id"`
	Score int    `yaml:"score"`
}

func TestFrontmatterRoundTripKeepsBody(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.RenderFrontmatter(header{ID: "ses-1", Score: 60}, "# Report\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(rendered, "---\nid: ses-1\nscore: 60\n---\n") {
		t.Fatalf("unexpected header: %q", rendered)
	}
	var got header
	body, err := markdown.SplitFrontmatter(rendered, &got)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if got.ID != "ses-1" || got.Score != 60 {
		t.Fatalf("unexpected meta: %+v", got)
	}
	if !strings.Contains(body, "# Report") {
		t.Fatalf("body lost: %q", body)
	}
}

func TestSplitFrontmatterMissingClosing(t *testing.T) {
	t.Parallel()
	var got header
	if _, err := markdown.SplitFrontmatter("---\nid: x\n", &got); err == nil {
		t.Fatalf("expected error for unterminated header")
	}
	body, err := markdown.SplitFrontmatter("plain body", &got)
	if err != nil || body != "plain body" {
		t.Fatalf("plain content should pass through, got %q %v", body, err)
	}
}
