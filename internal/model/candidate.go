package model

// Candidate is a rule that passed every gate for one transaction, carrying
// its computed confidence and the evidence counts used for tie-breaking.
type Candidate struct {
	RoleName    string
	Confidence  float64
	RuleID      int64
	Priority    int
	IncludeHits int
	ExcludeHits int
	HourOK      bool
	CategoryOK  bool
}
