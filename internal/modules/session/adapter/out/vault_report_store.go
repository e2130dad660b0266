package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"distracted/internal/modules/session/domain"
	"distracted/internal/platform/markdown"
	"distracted/internal/platform/slug"
)

// VaultReportStore writes each finished session as a markdown note with
// YAML frontmatter under reports/YYYY/MM/DD.
type VaultReportStore struct {
	reportsDir string
}

func NewVaultReportStore(reportsDir string) *VaultReportStore {
	return &VaultReportStore{reportsDir: reportsDir}
}

func (s *VaultReportStore) Save(_ context.Context, report domain.Report) (string, error) {
	date := report.StartedAt.UTC()
	dir := filepath.Join(s.reportsDir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(report.ChapterTitle+" "+report.SessionID))
	path := filepath.Join(dir, name)

	meta := map[string]any{
		"schema_version":          domain.SchemaVersion,
		"session_id":              report.SessionID,
		"chapter_id":              report.ChapterID,
		"seed":                    report.Seed,
		"state":                   string(report.State),
		"started_at":              report.StartedAt.Format(time.RFC3339),
		"ended_at":                report.EndedAt.Format(time.RFC3339),
		"elapsed_seconds":         report.ElapsedSeconds,
		"tasks_completed":         report.TasksCompleted,
		"tasks_skipped":           report.TasksSkipped,
		"distractions_triggered":  report.DistractionsTriggered,
		"distractions_resolved":   report.DistractionsResolved,
		"distractions_suppressed": report.DistractionsSuppressed,
		"final_score":             report.FinalScore,
		"final_focus":             report.FinalFocus,
	}
	rendered, err := markdown.RenderFrontmatter(meta, renderReportBody(report))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write report note: %w", err)
	}
	return path, nil
}

func renderReportBody(report domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", report.ChapterTitle, report.State)
	fmt.Fprintf(&b, "- Session: %s\n- Seed: %d\n- Elapsed: %ds\n- Score: %d\n- Focus: %d\n\n",
		report.SessionID, report.Seed, report.ElapsedSeconds, report.FinalScore, report.FinalFocus)

	b.WriteString("## Tasks\n\n")
	if len(report.Tasks) == 0 {
		b.WriteString("No tasks finished.\n")
	} else {
		b.WriteString("| # | Task | Label | Outcome | Took |\n|---|------|-------|---------|------|\n")
		for i, rec := range report.Tasks {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %.1fs |\n", i+1, rec.Title, rec.TargetLabel, rec.Outcome, rec.Took.Seconds())
		}
	}

	b.WriteString("\n## Distractions\n\n")
	if len(report.Distractions) == 0 {
		b.WriteString("None.\n")
	}
	for _, ev := range report.Distractions {
		at := ev.TriggeredAt.Sub(report.StartedAt).Seconds()
		fmt.Fprintf(&b, "- %.0fs %s (%s, %s): %s\n", at, ev.Title, ev.Category, ev.Source, ev.Resolution)
	}
	return b.String()
}
