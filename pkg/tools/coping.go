package tools

import (
	"context"
	"strings"
)

// Strategy is one evidence-based coping technique.
type Strategy struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CopingResult is the coping_strategies payload.
type CopingResult struct {
	Challenge  string     `json:"challenge"`
	Strategies []Strategy `json:"strategies"`
}

var copingCatalog = map[string][]Strategy{
	"anxiety": {
		{
			Name:        "Deep Breathing",
			Description: "Practice deep breathing by inhaling slowly through your nose for 4 counts, holding for 2 counts, and exhaling through your mouth for 6 counts. Repeat for 5-10 minutes.",
		},
		{
			Name:        "Progressive Muscle Relaxation",
			Description: "Tense and then release each muscle group in your body, starting from your toes and working up to your head.",
		},
		{
			Name:        "Grounding Technique",
			Description: "Use the 5-4-3-2-1 technique: Acknowledge 5 things you see, 4 things you can touch, 3 things you hear, 2 things you smell, and 1 thing you taste.",
		},
	},
	"depression": {
		{
			Name:        "Behavioral Activation",
			Description: "Schedule and engage in activities that you used to enjoy, even if you don't feel like it initially.",
		},
		{
			Name:        "Physical Exercise",
			Description: "Aim for 30 minutes of moderate exercise most days of the week. Even a short walk can help improve mood.",
		},
		{
			Name:        "Social Connection",
			Description: "Reach out to supportive friends or family members, even briefly. Social interaction can help combat feelings of isolation.",
		},
	},
	"stress": {
		{
			Name:        "Mindfulness Meditation",
			Description: "Practice focusing on the present moment without judgment. Start with just 5 minutes daily.",
		},
		{
			Name:        "Time Management",
			Description: "Break larger tasks into smaller, manageable steps. Prioritize tasks and consider using the Pomodoro technique (25 minutes of focus followed by a 5-minute break).",
		},
		{
			Name:        "Healthy Boundaries",
			Description: "Practice saying no to additional commitments when you're already stretched thin.",
		},
	},
}

var generalStrategies = []Strategy{
	{
		Name:        "Self-Care",
		Description: "Ensure you're attending to basic needs: adequate sleep, nutritious food, hydration, and some physical activity.",
	},
	{
		Name:        "Journaling",
		Description: "Write about your feelings and experiences for 10-15 minutes to help process emotions.",
	},
	{
		Name:        "Professional Support",
		Description: "Consider speaking with a mental health professional who can provide personalized guidance.",
	},
}

// copingStrategiesHandler matches the challenge against the catalog by
// bidirectional substring and falls back to general strategies when
// nothing matches.
func copingStrategiesHandler(_ context.Context, params map[string]any) (any, error) {
	challenge, err := stringParam(params, "challenge")
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(challenge)

	var matched []Strategy
	for _, key := range []string{"anxiety", "depression", "stress"} {
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			matched = append(matched, copingCatalog[key]...)
		}
	}
	if len(matched) == 0 {
		matched = generalStrategies
	}

	return CopingResult{
		Challenge:  challenge,
		Strategies: matched,
	}, nil
}
