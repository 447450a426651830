package types

// Attempt records one iteration of the tailoring loop. Attempts are
// immutable once recorded; the orchestrator appends one per iteration and
// never mutates a past attempt.
type Attempt struct {
	Number          int      `json:"number"`
	ATSScore        int      `json:"ats_score"`
	JDScore         int      `json:"jd_score"`
	GoldenPassed    bool     `json:"golden_passed"`
	ATSFeedback     string   `json:"ats_feedback,omitempty"`
	JDFeedback      string   `json:"jd_feedback,omitempty"`
	GoldenFeedback  []string `json:"golden_feedback,omitempty"`
	SectionsSent    []string `json:"sections_sent,omitempty"`
	SectionsChanged []string `json:"sections_changed,omitempty"`
}

// Combined is the score used for best-attempt comparison.
func (a Attempt) Combined() int {
	return a.ATSScore + a.JDScore
}

// QualityScores is the output of the ATS/JD scoring oracle.
type QualityScores struct {
	ATSScore    int    `json:"ats_score"`
	JDScore     int    `json:"jd_score"`
	ATSFeedback string `json:"ats_feedback"`
	JDFeedback  string `json:"jd_feedback"`
}

// GoldenRuleResult is the output of the golden-rule checker. The rubric is
// a fixed five-point gate (authenticity, readability, relevance,
// specificity, consistency) independent of the numeric scores.
type GoldenRuleResult struct {
	Passed      bool     `json:"passed"`
	Feedback    []string `json:"feedback,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}
