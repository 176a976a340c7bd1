package model

import "time"

// ExecutionRecord is one finished code run, kept in a user's history.
type ExecutionRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Language   string    `json:"language"`
	Code       string    `json:"code"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Success    bool      `json:"success"`
	Status     string    `json:"status"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LanguageCount is the number of executions in one language.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// ExecutionSummary aggregates a user's history.
type ExecutionSummary struct {
	TotalExecutions int             `json:"totalExecutions"`
	Successful      int             `json:"successfulExecutions"`
	SuccessRate     float64         `json:"successRate"` // percent, 0-100
	ByLanguage      []LanguageCount `json:"byLanguage"`
}
