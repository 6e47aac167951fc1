package models

import "time"

// Insight is generated coaching text for a goal, cached until ExpiresAt.
type Insight struct {
	ID              int64     `json:"id"`
	GoalID          int64     `json:"goalId"`
	UserID          int64     `json:"userId"`
	Content         string    `json:"content"`
	VerifiedSources []string  `json:"verifiedSources"`
	GeneratedAt     time.Time `json:"generatedAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// IsExpired reports whether the insight is stale at now.
func (i *Insight) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
