package domain

import "time"

// GenerationRecord captures one generation outcome for the local history
// store. The store is write-mostly: records are never fed back into prompts.
type GenerationRecord struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Description  string         `json:"description"`
	Shell        string         `json:"shell"`
	Command      string         `json:"command"`
	Explanation  string         `json:"explanation,omitempty"`
	Verdict      Classification `json:"verdict"`
	MatchedRule  string         `json:"matched_rule,omitempty"`
	Model        string         `json:"model,omitempty"`
	FromOverride bool           `json:"from_override,omitempty"`
}
