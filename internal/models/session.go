package models

type StartSessionRequest struct {
	SectionID int `json:"section_id" validate:"required,min=1"`
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

type SessionResponse struct {
	SectionID       int           `json:"section_id"`
	SectionTitle    string        `json:"section_title"`
	State           string        `json:"state"`
	QuestionIndex   int           `json:"question_index"`
	TotalQuestions  int           `json:"total_questions"`
	Score           int           `json:"score"`
	CorrectCount    int           `json:"questions_correct"`
	TimeRemaining   int           `json:"time_remaining,omitempty"` // seconds, 0 when untimed
	CurrentQuestion *QuestionView `json:"current_question,omitempty"`
}

type SubmitAnswerResponse struct {
	Correct       bool                    `json:"correct"`
	CorrectAnswer string                  `json:"correct_answer"`
	Explanation   string                  `json:"explanation"`
	Session       SessionResponse         `json:"session"`
	Completion    *SectionCompletionEvent `json:"completion,omitempty"`
}

type CoachFeedbackResponse struct {
	SectionID int    `json:"section_id"`
	Feedback  string `json:"feedback"`
	Model     string `json:"model"`
}
