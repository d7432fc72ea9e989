package content

// DefaultTopics maps topic tags to keywords. A topic matches when any
// keyword is a substring of any lowercase token, so keywords should be
// distinctive enough not to hide inside common words ("eat" in "great").
func DefaultTopics() map[string][]string {
	return map[string][]string{
		"fitness": {
			"workout", "gym", "exercise", "training", "cardio", "lifting",
			"squat", "deadlift", "bench", "running", "runner", "yoga", "pilates",
			"hiit", "fitness", "muscle", "reps",
		},
		"nutrition": {
			"food", "meal", "recipe", "diet", "protein", "calorie", "carbs",
			"nutrition", "breakfast", "lunch", "dinner", "snack", "vegan", "keto",
		},
		"wellness": {
			"sleep", "recovery", "stretch", "meditat", "mindful", "stress",
			"hydrat", "wellness", "selfcare",
		},
		"motivation": {
			"motivat", "goal", "progress", "inspir", "discipline", "grind",
			"consisten", "challenge", "milestone",
		},
		"social": {
			"friend", "buddy", "partner", "community", "together", "family",
			"crew", "squad",
		},
		"sports": {
			"soccer", "football", "basketball", "tennis", "marathon", "cycling",
			"swim", "league", "tournament",
		},
		"technology": {
			"tracker", "smartwatch", "garmin", "strava", "fitbit", "bluetooth",
			"firmware", "android", "iphone",
		},
	}
}
