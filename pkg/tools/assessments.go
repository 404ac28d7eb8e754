package tools

import "context"

// AssessmentInfo describes one standardized questionnaire.
type AssessmentInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
	Scoring     string   `json:"scoring"`
}

// AssessmentResult is the payload for a known assessment type. The
// guidance field instructs the model to administer one question per
// turn; the dialogue controller keys its assessment sub-protocol off
// this payload shape.
type AssessmentResult struct {
	AssessmentInfo AssessmentInfo `json:"assessment_info"`
	Guidance       string         `json:"guidance"`
}

const administrationGuidance = "The assistant should conduct this assessment by asking only one question at a time. Wait for the user's response before proceeding to the next question. After all questions are answered, provide a thoughtful analysis of the results without presenting numerical scores. Focus on identifying patterns in the responses and offering relevant suggestions."

var assessments = map[string]AssessmentInfo{
	"anxiety": {
		Name:        "GAD-7 (Generalized Anxiety Disorder Assessment)",
		Description: "A 7-item questionnaire used as a screening tool and severity measure for generalized anxiety disorder.",
		Questions: []string{
			"Feeling nervous, anxious, or on edge",
			"Not being able to stop or control worrying",
			"Worrying too much about different things",
			"Trouble relaxing",
			"Being so restless that it's hard to sit still",
			"Becoming easily annoyed or irritable",
			"Feeling afraid as if something awful might happen",
		},
		Scoring: "Rate each item from 0 (Not at all) to 3 (Nearly every day). Scores of 5, 10, and 15 are cut-points for mild, moderate, and severe anxiety.",
	},
	"depression": {
		Name:        "PHQ-9 (Patient Health Questionnaire)",
		Description: "A 9-item questionnaire used as a screening tool and severity measure for depression.",
		Questions: []string{
			"Little interest or pleasure in doing things",
			"Feeling down, depressed, or hopeless",
			"Trouble falling or staying asleep, or sleeping too much",
			"Feeling tired or having little energy",
			"Poor appetite or overeating",
			"Feeling bad about yourself or that you are a failure",
			"Trouble concentrating on things",
			"Moving or speaking slowly, or being fidgety/restless",
			"Thoughts that you would be better off dead or of hurting yourself",
		},
		Scoring: "Rate each item from 0 (Not at all) to 3 (Nearly every day). Scores of 5, 10, 15, and 20 are cut-points for mild, moderate, moderately severe, and severe depression.",
	},
	"stress": {
		Name:        "PSS-10 (Perceived Stress Scale)",
		Description: "A 10-item questionnaire that measures the perception of stress.",
		Questions: []string{
			"Been upset because of something that happened unexpectedly",
			"Felt unable to control important things in your life",
			"Felt nervous and stressed",
			"Felt confident about your ability to handle personal problems",
			"Felt that things were going your way",
			"Found that you could not cope with all the things you had to do",
			"Been able to control irritations in your life",
			"Felt that you were on top of things",
			"Been angered because of things that happened that were outside of your control",
			"Felt difficulties were piling up so high that you could not overcome them",
		},
		Scoring: "Items are rated on a 5-point scale from 0 (Never) to 4 (Very often). Positively worded items are reverse-scored, and the scores are summed. Higher scores indicate higher levels of perceived stress.",
	},
}

// assessmentHandler returns the questionnaire and administration
// guidance for a known type. Unknown types get a payload without an
// assessment_info block, which keeps them out of the assessment
// sub-protocol downstream.
func assessmentHandler(_ context.Context, params map[string]any) (any, error) {
	assessmentType, err := stringParam(params, "assessment_type")
	if err != nil {
		return nil, err
	}

	info, ok := assessments[assessmentType]
	if !ok {
		return map[string]any{
			"name":        "Unknown assessment",
			"description": "The requested assessment type is not available.",
			"guidance":    "Please inform the user that this assessment is not available and suggest alternatives.",
		}, nil
	}

	return AssessmentResult{
		AssessmentInfo: info,
		Guidance:       administrationGuidance,
	}, nil
}
