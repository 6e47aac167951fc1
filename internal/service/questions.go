package service

import "becomebetter/internal/models"

// QuestionType names the aspect of a goal a question asks about
type QuestionType string

const (
	QuestionWhy       QuestionType = "why"
	QuestionWhen      QuestionType = "when"
	QuestionHow       QuestionType = "how"
	QuestionObstacles QuestionType = "obstacles"
)

// GoalQuestion is one reflection prompt shown while creating a goal
type GoalQuestion struct {
	ID          string       `json:"id"`
	Question    string       `json:"question"`
	Type        QuestionType `json:"type"`
	Placeholder string       `json:"placeholder,omitempty"`
}

var baseQuestions = []GoalQuestion{
	{ID: "why", Type: QuestionWhy, Question: "Why do you want to achieve this goal?", Placeholder: "What motivates you? What will change in your life?"},
	{ID: "when", Type: QuestionWhen, Question: "When do you plan to work on this?", Placeholder: "Morning, evening, specific days of the week..."},
	{ID: "how", Type: QuestionHow, Question: "How will you measure your success?", Placeholder: "What does success look like for you?"},
	{ID: "obstacles", Type: QuestionObstacles, Question: "What obstacles might you face?", Placeholder: "Time constraints, motivation, resources..."},
}

var categoryQuestions = map[models.Category]map[QuestionType]string{
	models.CategoryLearning: {
		QuestionWhy:       "Why is learning this important to you?",
		QuestionHow:       "How will you know you've mastered this?",
		QuestionObstacles: "What might make it hard to stay consistent with learning?",
	},
	models.CategoryHealth: {
		QuestionWhy:       "Why is improving your health important right now?",
		QuestionHow:       "How will you track your health improvements?",
		QuestionObstacles: "What might derail your health goals?",
	},
	models.CategoryCareer: {
		QuestionWhy:       "Why is this career goal meaningful to you?",
		QuestionHow:       "How will you measure career progress?",
		QuestionObstacles: "What challenges might you face in your career path?",
	},
	models.CategoryBehaviour: {
		QuestionWhy:       "Why do you want to change this behavior?",
		QuestionHow:       "How will you know the behavior has changed?",
		QuestionObstacles: "What triggers might make it hard to change?",
	},
	models.CategoryEmotional: {
		QuestionWhy:       "Why is emotional growth important to you?",
		QuestionHow:       "How will you recognize emotional progress?",
		QuestionObstacles: "What situations might challenge your emotional goals?",
	},
	models.CategoryFinancial: {
		QuestionWhy:       "Why is this financial goal important?",
		QuestionHow:       "How will you measure financial progress?",
		QuestionObstacles: "What might prevent you from reaching this financial goal?",
	},
}

// difficulty overrides apply only to the how and obstacles questions
var difficultyQuestions = map[models.Difficulty]map[QuestionType]string{
	models.DifficultyEasy: {
		QuestionObstacles: "What small challenges might come up?",
	},
	models.DifficultyMedium: {
		QuestionObstacles: "What moderate challenges should you prepare for?",
	},
	models.DifficultyHard: {
		QuestionObstacles: "What significant obstacles will you need to overcome?",
		QuestionHow:       "How will you break this down into smaller milestones?",
	},
}

// GenerateGoalQuestions returns the four reflection questions tailored to a
// goal's category and difficulty
func GenerateGoalQuestions(category models.Category, difficulty models.Difficulty) []GoalQuestion {
	questions := make([]GoalQuestion, len(baseQuestions))
	for i, q := range baseQuestions {
		if text, ok := categoryQuestions[category][q.Type]; ok {
			q.Question = text
		}
		if q.Type == QuestionHow || q.Type == QuestionObstacles {
			if text, ok := difficultyQuestions[difficulty][q.Type]; ok {
				q.Question = text
			}
		}
		questions[i] = q
	}
	return questions
}
