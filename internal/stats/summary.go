package stats

import (
	"sort"
	"time"

	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/progress"
)

// StreakWindow is how old a completion may be and still extend the streak.
const StreakWindow = 7 * 24 * time.Hour

// ComputeSummary derives a learner's statistics from their event logs.
//
// Section-level figures use the latest completion per section, so retaking a
// section replaces its earlier result. Question counts come from answer
// events, which include answers from attempts that were never finished. The
// streak walks the full completion history.
func ComputeSummary(completions []models.SectionCompletionEvent, answers []models.AnswerEvent, now time.Time) models.SummaryStatistics {
	var s models.SummaryStatistics

	s.QuestionsAnswered = len(answers)
	for _, a := range answers {
		if a.IsCorrect {
			s.CorrectAnswers++
		}
	}
	s.OverallAccuracy = progress.Accuracy(s.CorrectAnswers, s.QuestionsAnswered)

	latest := LatestPerSection(completions)
	s.SectionsCompleted = len(latest)
	for _, c := range latest {
		s.TotalTimeSpent += c.TimeSpent
		if c.Accuracy > s.BestAccuracy {
			s.BestAccuracy = c.Accuracy
		}
	}
	if s.SectionsCompleted > 0 {
		s.AverageSectionTime = roundDiv(s.TotalTimeSpent, s.SectionsCompleted)
	}

	s.CurrentStreak = Streak(completions, now)
	return s
}

// LatestPerSection keeps the most recent completion of each section,
// ordered by section id.
func LatestPerSection(completions []models.SectionCompletionEvent) []models.SectionCompletionEvent {
	bySection := make(map[int]models.SectionCompletionEvent)
	for _, c := range completions {
		if prev, ok := bySection[c.SectionID]; !ok || c.CompletedAt.After(prev.CompletedAt) {
			bySection[c.SectionID] = c
		}
	}

	out := make([]models.SectionCompletionEvent, 0, len(bySection))
	for _, c := range bySection {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out
}

// Streak counts completions, newest first, until one is older than StreakWindow.
func Streak(completions []models.SectionCompletionEvent, now time.Time) int {
	sorted := append([]models.SectionCompletionEvent(nil), completions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CompletedAt.After(sorted[j].CompletedAt) })

	streak := 0
	for _, c := range sorted {
		if now.Sub(c.CompletedAt) > StreakWindow {
			break
		}
		streak++
	}
	return streak
}

func roundDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (2*a + b) / (2 * b)
}
