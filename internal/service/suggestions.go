package service

import (
	"strings"

	"becomebetter/internal/models"
)

// GoalSuggestion is a category, icon and encouragement guessed from a title
type GoalSuggestion struct {
	Category models.Category `json:"category"`
	Icon     string          `json:"icon"`
	Note     string          `json:"note"`
}

type keywordSuggestion struct {
	keyword string
	GoalSuggestion
}

// minSuggestionTitle is the shortest trimmed title that gets a suggestion.
const minSuggestionTitle = 3

// suggestionKeywords is matched in order; the first keyword contained in the
// title wins.
var suggestionKeywords = []keywordSuggestion{
	{"python", GoalSuggestion{models.CategoryLearning, "🐍", "Build consistency in Python practice to improve automation and problem-solving skills."}},
	{"code", GoalSuggestion{models.CategoryLearning, "💻", "Daily coding practice builds strong foundations for software development."}},
	{"programming", GoalSuggestion{models.CategoryLearning, "💻", "Consistent programming practice improves problem-solving and technical skills."}},
	{"javascript", GoalSuggestion{models.CategoryLearning, "📜", "Regular JavaScript practice strengthens web development fundamentals."}},
	{"react", GoalSuggestion{models.CategoryLearning, "⚛️", "Building React projects daily improves component design and state management."}},
	{"learn", GoalSuggestion{models.CategoryLearning, "📚", "Daily learning compounds knowledge and opens new opportunities over time."}},
	{"study", GoalSuggestion{models.CategoryLearning, "📖", "Consistent study habits build deep understanding and long-term retention."}},
	{"reading", GoalSuggestion{models.CategoryLearning, "📚", "Reading daily expands perspective and knowledge across diverse topics."}},
	{"read", GoalSuggestion{models.CategoryLearning, "📖", "Daily reading builds vocabulary, empathy, and critical thinking skills."}},
	{"book", GoalSuggestion{models.CategoryLearning, "📚", "Reading books regularly compounds knowledge and improves focus."}},
	{"course", GoalSuggestion{models.CategoryLearning, "🎓", "Completing courses consistently builds structured knowledge and skills."}},
	{"tutorial", GoalSuggestion{models.CategoryLearning, "📝", "Following tutorials daily helps build practical, hands-on experience."}},
	{"language", GoalSuggestion{models.CategoryLearning, "🗣️", "Daily language practice builds fluency and cultural understanding."}},
	{"skill", GoalSuggestion{models.CategoryLearning, "🎯", "Practicing skills daily creates expertise through consistent repetition."}},

	{"gym", GoalSuggestion{models.CategoryHealth, "💪", "Regular gym sessions improve strength, energy, and long-term health."}},
	{"exercise", GoalSuggestion{models.CategoryHealth, "🏃", "Daily exercise boosts energy, mood, and overall physical well-being."}},
	{"workout", GoalSuggestion{models.CategoryHealth, "💪", "Consistent workouts build strength, endurance, and mental resilience."}},
	{"run", GoalSuggestion{models.CategoryHealth, "🏃", "Running regularly improves cardiovascular health and mental clarity."}},
	{"running", GoalSuggestion{models.CategoryHealth, "🏃", "Daily running builds endurance, mental strength, and physical fitness."}},
	{"yoga", GoalSuggestion{models.CategoryHealth, "🧘", "Yoga practice improves flexibility, balance, and mental calm."}},
	{"meditation", GoalSuggestion{models.CategoryEmotional, "🧘", "Daily meditation reduces stress and improves focus and emotional regulation."}},
	{"fitness", GoalSuggestion{models.CategoryHealth, "💪", "Consistent fitness routines improve energy, confidence, and longevity."}},
	{"walk", GoalSuggestion{models.CategoryHealth, "🚶", "Daily walks improve cardiovascular health and mental well-being."}},
	{"jog", GoalSuggestion{models.CategoryHealth, "🏃", "Regular jogging builds endurance and improves overall fitness."}},
	{"cardio", GoalSuggestion{models.CategoryHealth, "❤️", "Cardio exercise strengthens heart health and boosts energy levels."}},
	{"weight", GoalSuggestion{models.CategoryHealth, "💪", "Weight training builds muscle strength and improves bone density."}},
	{"diet", GoalSuggestion{models.CategoryHealth, "🥗", "Mindful eating habits support long-term health and energy levels."}},
	{"nutrition", GoalSuggestion{models.CategoryHealth, "🥗", "Focusing on nutrition daily improves energy, mood, and overall health."}},

	{"job", GoalSuggestion{models.CategoryCareer, "💼", "Building career skills daily opens new opportunities and growth."}},
	{"career", GoalSuggestion{models.CategoryCareer, "📈", "Investing in career development compounds into long-term professional success."}},
	{"interview", GoalSuggestion{models.CategoryCareer, "🎤", "Practicing interviews regularly builds confidence and communication skills."}},
	{"resume", GoalSuggestion{models.CategoryCareer, "📄", "Keeping your resume updated ensures you're ready for opportunities."}},
	{"promotion", GoalSuggestion{models.CategoryCareer, "📈", "Building skills consistently positions you for career advancement."}},
	{"networking", GoalSuggestion{models.CategoryCareer, "🤝", "Regular networking builds relationships that open doors over time."}},
	{"professional", GoalSuggestion{models.CategoryCareer, "💼", "Daily professional development compounds into career growth."}},
	{"work", GoalSuggestion{models.CategoryCareer, "💼", "Improving work skills daily enhances performance and opportunities."}},

	{"budget", GoalSuggestion{models.CategoryFinancial, "💰", "Tracking expenses daily builds awareness and financial control."}},
	{"save", GoalSuggestion{models.CategoryFinancial, "💵", "Saving consistently, even small amounts, compounds into financial security."}},
	{"money", GoalSuggestion{models.CategoryFinancial, "💰", "Building money habits daily creates long-term financial stability."}},
	{"finance", GoalSuggestion{models.CategoryFinancial, "📊", "Learning about finance daily improves financial decision-making."}},
	{"invest", GoalSuggestion{models.CategoryFinancial, "📈", "Learning to invest builds wealth through compound growth over time."}},
	{"savings", GoalSuggestion{models.CategoryFinancial, "💵", "Building savings consistently creates financial security and peace of mind."}},
	{"debt", GoalSuggestion{models.CategoryFinancial, "📉", "Paying down debt consistently frees up future income and reduces stress."}},
	{"expense", GoalSuggestion{models.CategoryFinancial, "💸", "Tracking expenses daily builds awareness and better spending habits."}},
	{"income", GoalSuggestion{models.CategoryFinancial, "💼", "Building income streams creates financial independence over time."}},

	{"mindfulness", GoalSuggestion{models.CategoryEmotional, "🧘", "Daily mindfulness practice improves emotional regulation and reduces stress."}},
	{"journal", GoalSuggestion{models.CategoryEmotional, "📔", "Journaling regularly improves self-awareness and emotional processing."}},
	{"gratitude", GoalSuggestion{models.CategoryEmotional, "🙏", "Practicing gratitude daily shifts perspective and improves well-being."}},
	{"therapy", GoalSuggestion{models.CategoryEmotional, "💚", "Consistent therapy supports emotional growth and mental health."}},
	{"self-care", GoalSuggestion{models.CategoryEmotional, "💆", "Prioritizing self-care daily maintains energy and prevents burnout."}},
	{"mental", GoalSuggestion{models.CategoryEmotional, "🧠", "Caring for mental health daily improves overall quality of life."}},
	{"stress", GoalSuggestion{models.CategoryEmotional, "😌", "Managing stress daily improves resilience and overall well-being."}},

	{"habit", GoalSuggestion{models.CategoryBehaviour, "🔄", "Building habits through small daily actions creates lasting change."}},
	{"routine", GoalSuggestion{models.CategoryBehaviour, "⏰", "Consistent routines reduce decision fatigue and increase productivity."}},
	{"consistency", GoalSuggestion{models.CategoryBehaviour, "📊", "Showing up daily, even in small ways, compounds into significant progress."}},
	{"discipline", GoalSuggestion{models.CategoryBehaviour, "⚡", "Daily discipline builds self-trust and long-term achievement."}},
	{"morning", GoalSuggestion{models.CategoryBehaviour, "🌅", "Morning routines set a positive tone for the entire day."}},
	{"evening", GoalSuggestion{models.CategoryBehaviour, "🌙", "Evening routines improve sleep quality and next-day preparation."}},
}

// SuggestForTitle guesses a category, icon and note for a goal title. It
// returns nil when the title is too short or matches no keyword.
func SuggestForTitle(title string) *GoalSuggestion {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if len([]rune(normalized)) < minSuggestionTitle {
		return nil
	}
	for _, k := range suggestionKeywords {
		if strings.Contains(normalized, k.keyword) {
			s := k.GoalSuggestion
			return &s
		}
	}
	return nil
}
