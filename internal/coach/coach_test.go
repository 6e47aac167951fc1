package coach

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"becomebetter/internal/models"
	"becomebetter/internal/streak"
)

func TestVerifiedSources(t *testing.T) {
	for _, c := range models.Categories {
		assert.Len(t, VerifiedSources(c), 4, "category %s", c)
	}
	assert.Empty(t, VerifiedSources("Unknown"))

	sources := VerifiedSources(models.CategoryFinancial)
	sources[0] = "mutated"
	assert.Equal(t, "https://www.investopedia.com", VerifiedSources(models.CategoryFinancial)[0])
}

func TestBuildPrompt(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	day := func(n int) time.Time { return time.Date(2024, 6, 15-n, 0, 0, 0, 0, time.UTC) }

	in := Input{
		Goal: models.Goal{
			Title:      "Read daily",
			Category:   models.CategoryLearning,
			Difficulty: models.DifficultyEasy,
		},
		Updates: []models.GoalUpdate{
			{Date: day(20), Completed: true},
			{Date: day(1), Completed: false},
			{Date: day(0), Completed: true},
			{Date: day(2), Completed: true},
		},
		Summary:  streak.Summary{CurrentStreak: 1, LongestStreak: 4, Status: streak.StatusIrregular},
		Location: time.UTC,
		Now:      now,
	}

	prompt := BuildPrompt(in)
	for _, want := range []string{
		"Goal: Read daily",
		"Category: Learning",
		"Difficulty: easy",
		"Description: No description provided",
		"Success Definition: Not defined",
		"- Total updates tracked: 4",
		"- Completion rate: 75.0%",
		"- Current streak: 1 days",
		"- Longest streak: 4 days",
		"- Streak status: irregular",
		"- Recent 7-day completion rate: 66.7%",
		"Recent updates pattern: 2024-06-15: Completed, 2024-06-14: Not completed, 2024-06-13: Completed",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "2024-05-26")
}

func TestBuildPromptNoRecentUpdates(t *testing.T) {
	prompt := BuildPrompt(Input{
		Goal: models.Goal{Title: "Save", Description: "Put money aside", SuccessDefinition: "1000 saved"},
		Now:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, prompt, "Recent updates pattern: No recent updates")
	assert.Contains(t, prompt, "Description: Put money aside")
	assert.Contains(t, prompt, "- Completion rate: 0.0%")
	assert.True(t, strings.HasSuffix(prompt, "Do not use markdown formatting."))
}

func TestBuildPromptUsesUserZone(t *testing.T) {
	tokyo, err := streak.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	stored := streak.StorageDate(time.Date(2024, 6, 15, 9, 0, 0, 0, tokyo), tokyo)
	prompt := BuildPrompt(Input{
		Goal:     models.Goal{Title: "Walk"},
		Updates:  []models.GoalUpdate{{Date: stored, Completed: true}},
		Location: tokyo,
		Now:      time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, prompt, "2024-06-15: Completed")
}

func TestDisabledGenerator(t *testing.T) {
	_, err := DisabledGenerator{}.Generate(context.Background(), SystemPrompt, "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewGenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenAIGenerator(context.Background(), "", "gemini-2.5-flash", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
