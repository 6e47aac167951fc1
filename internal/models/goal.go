package models

import "time"

// Category groups goals by life area.
type Category string

const (
	CategoryLearning  Category = "Learning"
	CategoryHealth    Category = "Health"
	CategoryCareer    Category = "Career"
	CategoryBehaviour Category = "Behaviour"
	CategoryEmotional Category = "Emotional"
	CategoryFinancial Category = "Financial"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryLearning,
	CategoryHealth,
	CategoryCareer,
	CategoryBehaviour,
	CategoryEmotional,
	CategoryFinancial,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty is the user's own estimate of how hard a goal is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Goal is a recurring objective tracked with daily updates.
type Goal struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"userId"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          Category   `json:"category"`
	Difficulty        Difficulty `json:"difficulty"`
	SuccessDefinition string     `json:"successDefinition"`
	Icon              string     `json:"icon"`
	IsActive          bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	UpdateCount       int        `json:"updateCount"`
}

// GoalUpdate is one day's check-in for a goal. Date is the UTC instant of
// local midnight of the day in the owner's timezone.
type GoalUpdate struct {
	ID        int64     `json:"id"`
	GoalID    int64     `json:"goalId"`
	UserID    int64     `json:"userId"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GoalDetail is a goal with its most recent updates.
type GoalDetail struct {
	Goal
	Updates []GoalUpdate `json:"updates"`
}
