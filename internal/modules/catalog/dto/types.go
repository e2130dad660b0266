package dto

type ChapterOutput struct {
	ID        string
	Title     string
	TaskCount int
}

type TaskOutput struct {
	ID          string
	Title       string
	TargetLabel string
	Difficulty  int
}

type DrawInput struct {
	ChapterID string
	Seed      int64
	Count     int
}

type DrawOutput struct {
	ChapterID    string
	ChapterTitle string
	Tasks        []TaskOutput
}

type DistractionOutput struct {
	ID            string
	Category      string
	Title         string
	Description   string
	TargetLabel   string
	CostSeconds   int
	SpecialEffect string
}
