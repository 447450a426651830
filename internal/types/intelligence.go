package types

// JobIntelligence is a lightweight structured summary of a job description,
// folded into tailoring prompts as guidance when available.
type JobIntelligence struct {
	Role             string   `json:"role"`
	Seniority        string   `json:"seniority,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Qualifications   []string `json:"qualifications,omitempty"`
}
