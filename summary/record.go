package summary

import (
	"time"

	"frontdesk/session"
)

// Record is the authoritative output of the core for one completed call.
// Immutable once written.
type Record struct {
	SessionID string            `json:"sessionId"`
	Timestamp time.Time         `json:"timestamp"`
	Contact   map[string]string `json:"contact"`
	Topics    []string          `json:"topicsDiscussed"`
	Answers   map[string]string `json:"qualificationAnswers"`
	Outcome   session.Outcome   `json:"outcome"`
	Notes     string            `json:"notes,omitempty"`
	Lead      LeadScore         `json:"lead"`
}

// LeadScore grades how qualified the lead is, based on how much of the
// questionnaire was answered.
type LeadScore struct {
	Score     int    `json:"score"`
	MaxScore  int    `json:"maxScore"`
	Priority  string `json:"priority"` // high, medium, low
	Qualified bool   `json:"qualified"`
}

// ScoreLead grades answered questions against the configured total. Each
// answered question is worth an equal share of 100 points; 50 or more makes
// the lead qualified.
func ScoreLead(answers map[string]string, totalQuestions int) LeadScore {
	const maxScore = 100

	score := 0
	if totalQuestions > 0 {
		score = len(answers) * maxScore / totalQuestions
		if score > maxScore {
			score = maxScore
		}
	}

	priority := "low"
	switch {
	case score >= 75:
		priority = "high"
	case score >= 50:
		priority = "medium"
	}

	return LeadScore{
		Score:     score,
		MaxScore:  maxScore,
		Priority:  priority,
		Qualified: score >= 50,
	}
}
