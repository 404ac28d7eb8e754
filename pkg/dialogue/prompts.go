package dialogue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mindio-dev/mindio/pkg/knowledge"
	"github.com/mindio-dev/mindio/pkg/tools"
)

// Persona is the counselor identity prepended to every generation
// request.
const Persona = `You are a professional, empathetic psychological counseling assistant.
Your responsibilities include:
1. Patiently listening to users' problems and emotional expressions
2. Providing emotional support and understanding, rather than giving direct advice or diagnosis
3. Using a gentle, caring tone and avoiding judgmental language
4. Encouraging users to explore their own emotions and thoughts
5. Offering scientific psychological health knowledge and coping strategies at appropriate times
6. Making people feel comfortable sharing their feelings.

Please remember, you are not a substitute for professional psychologists. For serious mental health issues, you should advise users to seek professional help.`

// gatheringFallback is the last-resort reply when a tool follow-up
// generation fails.
const gatheringFallback = "Based on the information I've gathered, I can provide some insights about your situation. Would you like to discuss specific strategies or concerns?"

// defaultStrategies fills the {strategies} placeholder in template
// fallbacks.
const defaultStrategies = "practicing mindfulness, talking with friends, and engaging in physical activity"

// stagePrompt frames the model as a counselor working a specific stage.
func stagePrompt(stage Stage) string {
	return fmt.Sprintf(`%s

You are a supportive counselor having a conversation with someone.
You are currently at the '%s' stage of the conversation.

The base prompt template for this stage is: "%s"

Respond in a compassionate, thoughtful manner while following the general intent of the
template above. Personalize your response based on the conversation history and current input.
Keep your response concise (3-4 sentences maximum).`, Persona, stage.ID, stage.Prompt)
}

// classifierPrompt asks the model to pick the next stage. The stage
// list always offers tool_use so tool-worthy requests can be routed
// even when the graph was authored without an explicit tool stage.
func classifierPrompt(stageNames []string, current, userInput string) string {
	names := stageNames
	hasToolUse := false
	for _, name := range names {
		if name == "tool_use" {
			hasToolUse = true
			break
		}
	}
	if !hasToolUse {
		names = append(append([]string{}, names...), "tool_use")
	}

	return fmt.Sprintf(`Based on the user's input, select the most appropriate next conversation stage from the following options:

%s

Current stage: %s
User input: "%s"

If the user's request would benefit from using specialized tools or assessments, select "tool_use".
Otherwise, choose the most appropriate conversation stage.

Respond with only the name of the selected stage, nothing else.`, strings.Join(names, ", "), current, userInput)
}

func classifierQuestion(current, userInput string) string {
	return fmt.Sprintf("Current node: %s\nUser message: %s\nWhich node should I go to next?", current, userInput)
}

// knowledgeContext renders retrieved documents into a system prompt
// suffix. Empty results render nothing.
func knowledgeContext(results []knowledge.Result) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nRelevant information from knowledge base(your answer must prioritize the use of knowledge):\n")
	for i, res := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, res.Document.Content)
	}
	return b.String()
}

// toolCatalogue renders the tool definitions and the invocation
// protocol into a system prompt suffix.
func toolCatalogue(defs []tools.Definition) string {
	if len(defs) == 0 {
		return ""
	}

	byName := make(map[string]tools.Definition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	encoded, err := json.MarshalIndent(byName, "", "  ")
	if err != nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n\nYou have access to the following tools:\n%s\n", encoded)
	b.WriteString("\nIf you believe a tool would help address the user's needs, you can use it by responding with:\n")
	b.WriteString(`{"tool": "tool_name", "parameters": {"param1": "value1", ...}}`)
	b.WriteString("\nBe warm, empathetic, and conversational - avoid clinical or generic questions\n")
	b.WriteString("\nOnly use tools when they would clearly benefit the conversation.")
	return b.String()
}

// assessmentIntroPrompt instructs the model to open a questionnaire.
func assessmentIntroPrompt(result tools.AssessmentResult) string {
	return fmt.Sprintf("You are conducting a psychological assessment. %s\n\nAssessment: %s\nDescription: %s\nBegin by introducing the assessment and its purpose, then ask the first question.",
		result.Guidance, result.AssessmentInfo.Name, result.AssessmentInfo.Description)
}

// assessmentContinuationPrompt drives the one-question-at-a-time loop.
const assessmentContinuationPrompt = `You are continuing a psychological assessment. Review the user's response and either:
1. Ask the next question in the sequence if more questions remain
2. Provide a thoughtful analysis if all questions have been answered

Do not show numerical scores. Focus on patterns and helpful insights.`

// toolFollowupPrompt turns a raw tool result into a conversational
// reply.
const toolFollowupPrompt = "You are a helpful assistant. The system has just executed a tool. Formulate a helpful response based on the tool results. Make your response conversational and friendly, as if you're having a natural dialogue. Don't mention that you used a tool unless necessary."

// completionPhrases mark the closing analysis of an assessment.
var completionPhrases = []string{
	"based on your responses",
	"your assessment results",
	"assessment complete",
	"here's what i've gathered",
}

// assessmentComplete reports whether the reply reads as a closing
// analysis.
func assessmentComplete(reply string) bool {
	lower := strings.ToLower(reply)
	for _, phrase := range completionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// renderTemplate fills a stage's placeholder template without a model.
// The reflection summary echoes the last word of the user's input.
func renderTemplate(stage Stage, userInput string) string {
	switch stage.ID {
	case "reflection":
		summary := "various emotions"
		if words := strings.Fields(userInput); len(words) > 0 {
			summary = "feelings of " + words[len(words)-1]
		}
		return strings.ReplaceAll(stage.Prompt, "{summary}", summary)
	case "support":
		return strings.ReplaceAll(stage.Prompt, "{strategies}", defaultStrategies)
	default:
		return stage.Prompt
	}
}
