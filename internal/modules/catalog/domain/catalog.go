package domain

import (
	"fmt"
	"strings"
)

const SchemaVersion = 1

type Category string

const (
	CategoryEnvironment   Category = "environment"
	CategoryBiological    Category = "biological"
	CategoryPsychological Category = "psychological"
	CategorySocial        Category = "social"
)

type SpecialEffect string

const (
	EffectNone          SpecialEffect = "none"
	EffectRabbitHole    SpecialEffect = "rabbit-hole"
	EffectWorkingMemory SpecialEffect = "working-memory-failure"
)

type TaskSpec struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	TargetLabel string `yaml:"target_label"`
	Difficulty  int    `yaml:"difficulty"`
}

type Chapter struct {
	ID    string     `yaml:"id"`
	Title string     `yaml:"title"`
	Tasks []TaskSpec `yaml:"tasks"`
}

type DistractionSpec struct {
	ID            string        `yaml:"id"`
	Category      Category      `yaml:"category"`
	Title         string        `yaml:"title"`
	Description   string        `yaml:"description"`
	TargetLabel   string        `yaml:"target_label"`
	CostSeconds   int           `yaml:"cost_seconds"`
	SpecialEffect SpecialEffect `yaml:"special_effect"`
}

type Catalog struct {
	SchemaVersion int               `yaml:"schema_version"`
	Chapters      []Chapter         `yaml:"chapters"`
	Distractions  []DistractionSpec `yaml:"distractions"`
}

func (c Category) Validate() error {
	switch c {
	case CategoryEnvironment, CategoryBiological, CategoryPsychological, CategorySocial:
		return nil
	default:
		return fmt.Errorf("unknown category %q", string(c))
	}
}

func (e SpecialEffect) Validate() error {
	switch e {
	case EffectNone, EffectRabbitHole, EffectWorkingMemory:
		return nil
	default:
		return fmt.Errorf("unknown special effect %q", string(e))
	}
}

// Normalized fills defaults: an empty effect means none.
func (d DistractionSpec) Normalized() DistractionSpec {
	if d.SpecialEffect == "" {
		d.SpecialEffect = EffectNone
	}
	d.TargetLabel = NormalizeLabel(d.TargetLabel)
	return d
}

func (d DistractionSpec) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("distraction id is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("distraction %s: title is required", d.ID)
	}
	if err := d.Category.Validate(); err != nil {
		return fmt.Errorf("distraction %s: %w", d.ID, err)
	}
	if err := d.SpecialEffect.Validate(); err != nil {
		return fmt.Errorf("distraction %s: %w", d.ID, err)
	}
	if d.SpecialEffect == EffectNone && d.TargetLabel == "" {
		return fmt.Errorf("distraction %s: target label is required", d.ID)
	}
	if d.CostSeconds <= 0 {
		return fmt.Errorf("distraction %s: cost must be positive", d.ID)
	}
	return nil
}

func (t TaskSpec) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if t.TargetLabel == "" {
		return fmt.Errorf("task %s: target label is required", t.ID)
	}
	if t.Difficulty < 0 {
		return fmt.Errorf("task %s: difficulty must be non-negative", t.ID)
	}
	return nil
}

func (c Chapter) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("chapter id is required")
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("chapter %s: at least one task is required", c.ID)
	}
	for _, task := range c.Tasks {
		if err := task.Validate(); err != nil {
			return fmt.Errorf("chapter %s: %w", c.ID, err)
		}
	}
	return nil
}

// Normalized returns a copy with defaults applied to every entry.
func (c Catalog) Normalized() Catalog {
	out := Catalog{SchemaVersion: c.SchemaVersion}
	for _, ch := range c.Chapters {
		tasks := make([]TaskSpec, len(ch.Tasks))
		for i, task := range ch.Tasks {
			task.TargetLabel = NormalizeLabel(task.TargetLabel)
			if task.Title == "" {
				task.Title = "Find a " + task.TargetLabel
			}
			tasks[i] = task
		}
		ch.Tasks = tasks
		out.Chapters = append(out.Chapters, ch)
	}
	for _, d := range c.Distractions {
		out.Distractions = append(out.Distractions, d.Normalized())
	}
	return out
}

func (c Catalog) Validate() error {
	if len(c.Chapters) == 0 {
		return fmt.Errorf("catalog has no chapters")
	}
	seen := map[string]struct{}{}
	for _, ch := range c.Chapters {
		if err := ch.Validate(); err != nil {
			return err
		}
		if _, ok := seen["chapter:"+ch.ID]; ok {
			return fmt.Errorf("duplicate chapter id %s", ch.ID)
		}
		seen["chapter:"+ch.ID] = struct{}{}
	}
	for _, d := range c.Distractions {
		if err := d.Validate(); err != nil {
			return err
		}
		if _, ok := seen["distraction:"+d.ID]; ok {
			return fmt.Errorf("duplicate distraction id %s", d.ID)
		}
		seen["distraction:"+d.ID] = struct{}{}
	}
	return nil
}

func (c Catalog) Chapter(id string) (Chapter, bool) {
	for _, ch := range c.Chapters {
		if ch.ID == id {
			return ch, true
		}
	}
	return Chapter{}, false
}

// NormalizeLabel lowercases and trims a recognition label so catalog targets
// and recognizer output compare equal.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
