package coach

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/copilot-learning/backend/internal/catalog"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/stats"
)

// ErrNoCompletion means the learner has not finished the section yet.
var ErrNoCompletion = errors.New("section not completed")

// History is the slice of the event store the coach reads.
type History interface {
	ListAnswers(ctx context.Context, learnerID string) ([]models.AnswerEvent, error)
	ListCompletions(ctx context.Context, learnerID string) ([]models.SectionCompletionEvent, error)
}

type Service struct {
	bank    *catalog.Bank
	history History
	llm     LLMClient
	model   string
}

func NewService(bank *catalog.Bank, history History, llm LLMClient, model string) *Service {
	return &Service{bank: bank, history: history, llm: llm, model: model}
}

// Feedback asks the coach about the learner's latest attempt at a section.
func (s *Service) Feedback(ctx context.Context, learnerID string, sectionID int) (*models.CoachFeedbackResponse, error) {
	section, err := s.bank.GetSection(sectionID)
	if err != nil {
		return nil, err
	}

	completions, err := s.history.ListCompletions(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	var latest *models.SectionCompletionEvent
	for _, c := range stats.LatestPerSection(completions) {
		if c.SectionID == sectionID {
			latest = &c
			break
		}
	}
	if latest == nil {
		return nil, ErrNoCompletion
	}

	answers, err := s.history.ListAnswers(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	missed := MissedQuestions(section, *latest, answers)
	resp, err := s.llm.Generate(ctx, SystemPrompt(), BuildUserPrompt(section, *latest, missed))
	if err != nil {
		return nil, fmt.Errorf("coach feedback: %w", err)
	}

	log.Printf("[coach] feedback for %s section %d (%d missed, %d+%d tokens)",
		learnerID, sectionID, len(missed), resp.PromptTokens, resp.OutputTokens)

	return &models.CoachFeedbackResponse{
		SectionID: sectionID,
		Feedback:  resp.Content,
		Model:     s.model,
	}, nil
}

// MissedQuestions picks the incorrect answers of the attempt that ended with
// completion: for each question, the last answer recorded at or before it.
// Results follow the section's question order.
func MissedQuestions(section *models.Section, completion models.SectionCompletionEvent, answers []models.AnswerEvent) []Missed {
	last := make(map[string]models.AnswerEvent)
	for _, a := range answers {
		if a.SectionID != section.ID || a.Timestamp.After(completion.CompletedAt) {
			continue
		}
		if prev, ok := last[a.QuestionID]; ok && prev.Timestamp.After(a.Timestamp) {
			continue
		}
		last[a.QuestionID] = a
	}

	var missed []Missed
	for _, q := range section.Questions {
		a, ok := last[q.ID]
		if !ok || a.IsCorrect {
			continue
		}
		missed = append(missed, Missed{Question: q, Answer: a.Answer, TimedOut: a.TimedOut})
	}
	return missed
}
