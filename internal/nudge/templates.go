package nudge

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

const (
	nudgeSystemPrompt      = "You are an AI habit coach that provides personalized, motivational, and actionable nudges to help users build lasting habits. Be encouraging, specific, and helpful. Respond with JSON in the exact format requested."
	challengeSystemPrompt  = "You are an AI wellness coach that creates personalized micro-challenges to help users develop healthy habits. Create small, actionable challenges that can be completed in 5-15 minutes. Respond with JSON in the exact format requested."
	motivationSystemPrompt = "You are a supportive AI coach that provides encouraging and personalized motivational messages. Be warm, understanding, and inspiring while keeping messages concise. Respond with JSON in the exact format requested."
	suggestionSystemPrompt = "You are a wellness expert that suggests personalized habits based on user patterns. Provide specific, actionable habit suggestions. Respond with JSON in the exact format requested."
)

func describeHabits(uc *userContext) string {
	var b strings.Builder
	for _, h := range uc.habits {
		fmt.Fprintf(&b, "- %s (%s): %d day streak, %d%% completion rate\n",
			h.Name, h.Category, uc.streaks[h.ID], uc.completionRates[h.ID])
	}
	return b.String()
}

func buildNudgePrompt(uc *userContext) string {
	return fmt.Sprintf(`Generate a personalized nudge for a user working on habit building.

User's habits and performance:
%s
Today's progress: %d/%d habits completed

Generate an appropriate nudge type (motivation, reminder, tip, or challenge) with a personalized message that addresses their current situation. If focusing on a specific habit, include the habitId.

Respond with JSON: {"type": "motivation|reminder|tip|challenge", "title": "engaging title", "message": "personalized message (2-3 sentences)", "habitId": "habit_id_or_null", "actionLabel": "action_button_text_or_null"}`,
		describeHabits(uc), uc.todaysCompletions, len(uc.habits))
}

func buildChallengePrompt(uc *userContext) string {
	return fmt.Sprintf(`Create a micro-challenge for a habit-building user.

User's current habits:
%s
Today's completion: %d/%d

Create a small, achievable challenge (5-15 minutes) that supports an existing habit, introduces a complementary wellness practice, or helps overcome a common habit-building obstacle.

Respond with JSON: {"title": "challenge title", "message": "clear challenge description and why it helps", "habitId": "related_habit_id_or_null", "actionLabel": "Complete Challenge"}`,
		describeHabits(uc), uc.todaysCompletions, len(uc.habits))
}

func buildMotivationPrompt(uc *userContext, target *models.Habit) string {
	if target != nil {
		return fmt.Sprintf(`Generate a motivational message for a specific habit.

Habit: %s (%s)
Current streak: %d days
Completion rate: %d%%

Create an encouraging message that acknowledges their progress and motivates them to continue.

Respond with JSON: {"title": "motivational title", "message": "encouraging message (2-3 sentences)", "actionLabel": "optional_action_text_or_null"}`,
			target.Name, target.Category, uc.streaks[target.ID], uc.completionRates[target.ID])
	}

	return fmt.Sprintf(`Generate a general motivational message for a user's habit journey.

Overall progress: %d/%d habits completed today
Active habits: %d

Create an encouraging message about their overall progress and habit-building journey.

Respond with JSON: {"title": "motivational title", "message": "encouraging message about their journey (2-3 sentences)", "actionLabel": null}`,
		uc.todaysCompletions, len(uc.habits), len(uc.habits))
}

func buildSuggestionPrompt(uc *userContext, category string) string {
	names := make([]string, 0, len(uc.habits))
	for _, h := range uc.habits {
		names = append(names, h.Name)
	}
	return fmt.Sprintf(`Suggest 5 new habits for the %q category that complement the user's existing habits (%s) and are realistic to maintain. Each suggestion should be specific and actionable.

Respond with JSON: {"suggestions": ["habit1", "habit2", "habit3", "habit4", "habit5"]}`,
		category, strings.Join(names, ", "))
}

// Template fallbacks, used whenever the model is unavailable or returns
// something unparsable.

func strPtr(s string) *string { return &s }

func templateNudge(uc *userContext) *db.NudgeParams {
	candidates := []db.NudgeParams{
		{
			Type:    models.NudgeTypeMotivation,
			Title:   "You're building momentum!",
			Message: "Every small step counts. Keep up the great work with your daily habits.",
		},
		{
			Type:        models.NudgeTypeReminder,
			Title:       "Don't forget your habits today",
			Message:     "Take a moment to check in with your habits. Consistency is key to lasting change.",
			ActionLabel: strPtr("Check Habits"),
		},
		{
			Type:    models.NudgeTypeTip,
			Title:   "Pro Tip: Stack your habits",
			Message: "Try linking new habits to existing routines. After you brush your teeth, do 5 minutes of meditation.",
		},
	}
	pick := candidates[rand.Intn(len(candidates))]
	return &pick
}

func templateChallenge() *db.NudgeParams {
	candidates := []db.NudgeParams{
		{
			Title:   "5-Minute Energy Boost",
			Message: "Take 5 deep breaths and do 10 jumping jacks to energize your day.",
		},
		{
			Title:   "Gratitude Moment",
			Message: "Write down 3 things you're grateful for today. Focus on small, everyday moments.",
		},
		{
			Title:   "Hydration Check",
			Message: "Drink a full glass of water and notice how refreshed you feel afterwards.",
		},
		{
			Title:   "Mindful Minute",
			Message: "Spend 60 seconds focusing only on your breathing. Let thoughts pass without judgment.",
		},
	}
	pick := candidates[rand.Intn(len(candidates))]
	pick.Type = models.NudgeTypeChallenge
	pick.ActionLabel = strPtr("Complete Challenge")
	return &pick
}

func templateMotivation(uc *userContext, target *models.Habit) *db.NudgeParams {
	if target != nil {
		streak := uc.streaks[target.ID]
		message := fmt.Sprintf("Every expert was once a beginner. Start your %s journey today!", target.Name)
		if streak > 0 {
			message = fmt.Sprintf("Great job on your %d-day streak with %s! You're building lasting change.", streak, target.Name)
		}
		return &db.NudgeParams{
			Type:    models.NudgeTypeMotivation,
			Title:   target.Name + " Progress",
			Message: message,
		}
	}

	return &db.NudgeParams{
		Type:    models.NudgeTypeMotivation,
		Title:   "Your Habit Journey",
		Message: fmt.Sprintf("You've completed %d out of %d habits today. Progress, not perfection!", uc.todaysCompletions, len(uc.habits)),
	}
}

var categorySuggestions = map[string][]string{
	"fitness": {
		"Take the stairs instead of the elevator",
		"10 pushups every morning",
		"Walk for 15 minutes after lunch",
		"Stretch for 5 minutes before bed",
		"Do desk exercises every 2 hours",
	},
	"nutrition": {
		"Eat a piece of fruit with breakfast",
		"Drink a glass of water before each meal",
		"Pack a healthy snack for work",
		"Eat vegetables with dinner",
		"Take a daily vitamin",
	},
	"mindfulness": {
		"Practice 5 minutes of deep breathing",
		"Write one sentence in a gratitude journal",
		"Meditate for 10 minutes",
		"Practice mindful eating for one meal",
		"Do a body scan before sleep",
	},
	"productivity": {
		"Make your bed every morning",
		"Plan your top 3 priorities each day",
		"Clear your desk at the end of workday",
		"Review your day in the evening",
		"Prepare tomorrow's clothes the night before",
	},
	"sleep": {
		"Set a consistent bedtime",
		"Turn off screens 1 hour before bed",
		"Read for 15 minutes before sleep",
		"Keep a sleep diary",
		"Avoid caffeine after 2 PM",
	},
}

func templateSuggestions(category string) []string {
	if s, ok := categorySuggestions[category]; ok {
		return s
	}
	return []string{
		"Drink 8 glasses of water daily",
		"Take a 10-minute walk after meals",
		"Write down 3 goals each morning",
		"Practice gratitude before bed",
		"Spend 5 minutes organizing your space",
	}
}
