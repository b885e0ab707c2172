package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/copilot-learning/backend/internal/models"
)

// SectionCount is the number of sections a learner must finish for the master certificate.
const SectionCount = 6

var ErrSectionNotFound = errors.New("section not found")

// Bank is a read-only catalogue of sections keyed by id.
type Bank struct {
	sections map[int]models.Section
	order    []int
}

// New builds a bank from the given sections. Section ids must be unique.
func New(sections []models.Section) (*Bank, error) {
	b := &Bank{sections: make(map[int]models.Section, len(sections))}
	for _, s := range sections {
		if _, dup := b.sections[s.ID]; dup {
			return nil, fmt.Errorf("duplicate section id %d", s.ID)
		}
		if len(s.Questions) == 0 {
			return nil, fmt.Errorf("section %d has no questions", s.ID)
		}
		b.sections[s.ID] = s
		b.order = append(b.order, s.ID)
	}
	sort.Ints(b.order)
	return b, nil
}

// Default returns the built-in course catalogue.
func Default() *Bank {
	b, err := New(courseSections)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in sections: %v", err))
	}
	return b
}

func (b *Bank) GetSection(id int) (*models.Section, error) {
	s, ok := b.sections[id]
	if !ok {
		return nil, fmt.Errorf("section %d: %w", id, ErrSectionNotFound)
	}
	return &s, nil
}

// Sections returns every section ordered by id.
func (b *Bank) Sections() []models.Section {
	out := make([]models.Section, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.sections[id])
	}
	return out
}

// FindQuestion returns the section and question holding questionID.
func (b *Bank) FindQuestion(questionID string) (*models.Section, *models.Question, bool) {
	for _, id := range b.order {
		s := b.sections[id]
		for i := range s.Questions {
			if s.Questions[i].ID == questionID {
				return &s, &s.Questions[i], true
			}
		}
	}
	return nil, nil, false
}

// Evaluate reports whether answer is correct for q. An empty answer (a
// timed-out question) is never correct.
//
// Multiple-choice accepts the option text or, when the answer matches no
// option text, the option's index in decimal form. Text is checked first so
// options that are themselves numbers ("2", "3") are never read as indexes.
// True-false accepts "true"/"false" in any case.
func Evaluate(q *models.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}

	switch q.Kind {
	case models.KindMultipleChoice:
		idx, ok := q.Correct.(models.IndexAnswer)
		if !ok || int(idx) < 0 || int(idx) >= len(q.Options) {
			return false
		}
		for _, opt := range q.Options {
			if answer == opt {
				return answer == q.Options[idx]
			}
		}
		if n, err := strconv.Atoi(answer); err == nil {
			return n == int(idx)
		}
		return false
	case models.KindTrueFalse:
		lit, ok := q.Correct.(models.LiteralAnswer)
		if !ok {
			return false
		}
		return strings.EqualFold(answer, string(lit))
	}
	return false
}
