// Package coach turns a goal's history into a short personalised insight
// written by a language model.
package coach

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"becomebetter/internal/models"
	"becomebetter/internal/streak"
)

// SystemPrompt sets the persona the model answers as.
const SystemPrompt = "You are a thoughtful personal development coach who provides personalized, actionable insights to help people achieve their goals. You focus on building consistency and long-term habits."

// Fallback is returned when the model answers with no text.
const Fallback = "Unable to generate insight at this time."

// recentDays is the window of the "recent pattern" section of the prompt.
const recentDays = 7

var verifiedSources = map[models.Category][]string{
	models.CategoryLearning: {
		"https://www.coursera.org",
		"https://www.edx.org",
		"https://www.khanacademy.org",
		"https://www.ted.com/talks",
	},
	models.CategoryHealth: {
		"https://www.cdc.gov",
		"https://www.who.int",
		"https://www.mayoclinic.org",
		"https://www.healthline.com",
	},
	models.CategoryCareer: {
		"https://www.linkedin.com/learning",
		"https://www.indeed.com/career-advice",
		"https://hbr.org",
		"https://www.glassdoor.com/blog",
	},
	models.CategoryBehaviour: {
		"https://www.apa.org",
		"https://www.psychologytoday.com",
		"https://www.mindtools.com",
		"https://www.verywellmind.com",
	},
	models.CategoryEmotional: {
		"https://www.apa.org/topics/emotion",
		"https://www.psychologytoday.com",
		"https://www.headspace.com",
		"https://www.mindful.org",
	},
	models.CategoryFinancial: {
		"https://www.investopedia.com",
		"https://www.nerdwallet.com",
		"https://www.mint.com",
		"https://www.bankrate.com",
	},
}

// VerifiedSources returns the reading list attached to insights for a category.
// The returned slice is a copy.
func VerifiedSources(c models.Category) []string {
	return append([]string{}, verifiedSources[c]...)
}

// Input is everything the prompt is built from.
type Input struct {
	Goal     models.Goal
	Updates  []models.GoalUpdate
	Summary  streak.Summary
	Location *time.Location
	Now      time.Time
}

// BuildPrompt renders the user prompt for one insight.
func BuildPrompt(in Input) string {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	total := len(in.Updates)
	completed := 0
	for _, u := range in.Updates {
		if u.Completed {
			completed++
		}
	}

	today := streak.Today(in.Now, loc)
	var recent []models.GoalUpdate
	for _, u := range in.Updates {
		if today.Sub(streak.DayIn(u.Date, loc)) <= recentDays {
			recent = append(recent, u)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })

	recentCompleted := 0
	pattern := make([]string, 0, len(recent))
	for _, u := range recent {
		state := "Not completed"
		if u.Completed {
			recentCompleted++
			state = "Completed"
		}
		pattern = append(pattern, fmt.Sprintf("%s: %s", streak.FormatInZone(u.Date, loc), state))
	}
	recentPattern := "No recent updates"
	if len(pattern) > 0 {
		recentPattern = strings.Join(pattern, ", ")
	}

	description := orText(in.Goal.Description, "No description provided")
	success := orText(in.Goal.SuccessDefinition, "Not defined")

	var b strings.Builder
	b.WriteString("You are a personal development coach analyzing a user's goal progress. ")
	b.WriteString("Provide a personalized, encouraging insight based on the following data:\n\n")
	fmt.Fprintf(&b, "Goal: %s\n", in.Goal.Title)
	fmt.Fprintf(&b, "Category: %s\n", in.Goal.Category)
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Goal.Difficulty)
	fmt.Fprintf(&b, "Description: %s\n", description)
	fmt.Fprintf(&b, "Success Definition: %s\n\n", success)
	b.WriteString("Progress Data:\n")
	fmt.Fprintf(&b, "- Total updates tracked: %d\n", total)
	fmt.Fprintf(&b, "- Completion rate: %.1f%%\n", percent(completed, total))
	fmt.Fprintf(&b, "- Current streak: %d days\n", in.Summary.CurrentStreak)
	fmt.Fprintf(&b, "- Longest streak: %d days\n", in.Summary.LongestStreak)
	fmt.Fprintf(&b, "- Streak status: %s\n", in.Summary.Status)
	fmt.Fprintf(&b, "- Recent 7-day completion rate: %.1f%%\n\n", percent(recentCompleted, len(recent)))
	fmt.Fprintf(&b, "Recent updates pattern: %s\n\n", recentPattern)
	b.WriteString(`Provide a personalized insight that:
1. Acknowledges their progress honestly
2. Identifies patterns (positive or areas for improvement)
3. Offers specific, actionable advice based on their category and difficulty
4. Is encouraging but realistic
5. Is concise (2-3 paragraphs maximum)
6. Focuses on maintaining long streaks and building consistency

Write in a warm, supportive tone. Do not use markdown formatting.`)

	return b.String()
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func orText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
