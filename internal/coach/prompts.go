package coach

import (
	"fmt"
	"strings"

	"github.com/copilot-learning/backend/internal/models"
)

// Missed is one question the learner got wrong or let time out on.
type Missed struct {
	Question models.Question
	Answer   string
	TimedOut bool
}

func SystemPrompt() string {
	return `You are a friendly study coach for a GitHub Copilot training course.
A learner has just finished a quiz section. Using their result and the questions they missed,
write short, encouraging feedback in plain text:

1. One sentence on how the section went overall.
2. For each missed question, one or two sentences on the idea behind the correct answer.
3. A closing suggestion for what to practise next.

Keep it under 200 words. Do not invent questions that are not listed. Do not use markdown headings.`
}

// BuildUserPrompt describes a completed section attempt for the coach.
func BuildUserPrompt(section *models.Section, completion models.SectionCompletionEvent, missed []Missed) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SECTION: %s\n", section.Title)
	if section.Description != "" {
		fmt.Fprintf(&b, "ABOUT: %s\n", section.Description)
	}
	fmt.Fprintf(&b, "RESULT: %d of %d correct (%d%% accuracy), %d points, %d seconds\n",
		completion.CorrectCount, completion.TotalQuestions, completion.Accuracy, completion.Score, completion.TimeSpent)

	if len(missed) == 0 {
		b.WriteString("\nMISSED QUESTIONS: none. The learner answered everything correctly.\n")
		return b.String()
	}

	b.WriteString("\nMISSED QUESTIONS:\n")
	for i, m := range missed {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.Question.Prompt)
		switch {
		case m.TimedOut:
			b.WriteString("   Learner answer: (ran out of time)\n")
		case m.Answer == "":
			b.WriteString("   Learner answer: (blank)\n")
		default:
			fmt.Fprintf(&b, "   Learner answer: %s\n", m.Answer)
		}
		fmt.Fprintf(&b, "   Correct answer: %s\n", m.Question.CorrectText())
		if m.Question.Explanation != "" {
			fmt.Fprintf(&b, "   Explanation: %s\n", m.Question.Explanation)
		}
	}
	return b.String()
}

func buildMockFeedback(userPrompt string) string {
	var topics []string
	for _, line := range strings.Split(userPrompt, "\n") {
		if i := strings.Index(line, ". "); i > 0 && i < 4 && !strings.HasPrefix(line, " ") {
			topics = append(topics, strings.TrimSpace(line[i+2:]))
		}
	}

	if len(topics) == 0 {
		return "[Mock] Great work, you answered every question correctly. Try the next section to keep your streak going."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Mock] Nice effort. You missed %d question(s), so review these before retrying:\n", len(topics))
	for _, t := range topics {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	b.WriteString("Re-read the explanations, then take the section again.")
	return b.String()
}
