package out

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"distracted/internal/platform/markdown"
)

func TestVaultReportStoreWritesDatedNote(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewVaultReportStore(filepath.Join(dir, "reports"))
	started := time.Date(2026, 5, 1, 8, 15, 30, 0, time.UTC)
	path, err := store.Save(context.Background(), sampleReport("sess-a", started))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, "reports", "2026", "05", "01") {
		t.Fatalf("unexpected dir: %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "081530-desk-sess-a") {
		t.Fatalf("unexpected name: %s", filepath.Base(path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var meta struct {
		SessionID  string `yaml:"session_id"`
		State      string `yaml:"state"`
		FinalScore int    `yaml:"final_score"`
		Seed       int64  `yaml:"seed"`
	}
	body, err := markdown.SplitFrontmatter(string(raw), &meta)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta.SessionID != "sess-a" || meta.State != "completed" || meta.FinalScore != 80 || meta.Seed != 99 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if !strings.Contains(body, "| 2 | Find a mug | cup | timeout | 20.0s |") {
		t.Fatalf("task table missing:\n%s", body)
	}
	if !strings.Contains(body, "- 170s One more video (psychological, wildcard): abandoned") {
		t.Fatalf("distraction list missing:\n%s", body)
	}
}
