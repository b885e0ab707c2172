package models

import "time"

// ── Event Log Types ──────────────────────────────────────

type AnswerEvent struct {
	ID           string    `json:"id"`
	LearnerID    string    `json:"learner_id"`
	SectionID    int       `json:"section_id"`
	QuestionID   string    `json:"question_id"`
	Answer       string    `json:"answer"`
	IsCorrect    bool      `json:"is_correct"`
	ResponseTime int       `json:"response_time"` // seconds
	TimedOut     bool      `json:"timed_out"`
	Timestamp    time.Time `json:"timestamp"`
}

type SectionCompletionEvent struct {
	ID             string    `json:"id"`
	LearnerID      string    `json:"learner_id"`
	SectionID      int       `json:"section_id"`
	SectionTitle   string    `json:"section_title"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"questions_correct"`
	Score          int       `json:"score"`
	Accuracy       int       `json:"accuracy"`
	TimeSpent      int       `json:"time_spent"` // seconds
	CompletedAt    time.Time `json:"completed_at"`
}

// ── Derived Statistics ───────────────────────────────────

type SummaryStatistics struct {
	SectionsCompleted  int `json:"total_sections_completed"`
	QuestionsAnswered  int `json:"total_questions_answered"`
	CorrectAnswers     int `json:"total_correct_answers"`
	OverallAccuracy    int `json:"overall_accuracy"`
	TotalTimeSpent     int `json:"total_time_spent"`
	AverageSectionTime int `json:"average_section_time"`
	BestAccuracy       int `json:"best_accuracy"`
	CurrentStreak      int `json:"current_streak"`
}

type SummaryResponse struct {
	Summary SummaryStatistics `json:"summary"`
	HasData bool              `json:"has_data"`
	Message string            `json:"message,omitempty"`
}

type HistoryResponse struct {
	Completions []SectionCompletionEvent `json:"completions"`
	Answers     []AnswerEvent            `json:"answers"`
}

type DashboardStats struct {
	TotalParticipants  int       `json:"total_participants"`
	ActiveParticipants int       `json:"active_participants"`
	AverageScore       int       `json:"average_score"`
	CompletionRate     int       `json:"completion_rate"`
	DropOffRate        int       `json:"drop_off_rate"`
	CurrentActivity    string    `json:"current_activity"`
	Simulated          bool      `json:"simulated"`
	GeneratedAt        time.Time `json:"generated_at"`
}
