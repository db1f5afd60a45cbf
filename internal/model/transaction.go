package model

import (
	"strings"
	"time"
)

// TransactionContext is one cleaned transaction record from the upstream
// warehouse. The engine reads these, it never writes them. Optional fields
// use the zero value (empty string, nil pointer) for "not captured".
type TransactionContext struct {
	Timestamp    time.Time
	Age          *int
	ID           string
	Category     string // raw category label from the source feed
	Brand        string
	Transcript   string // raw conversation text, may be empty
	Gender       string
	ExplicitRole string // pre-assigned label that bypasses scoring
	ItemCount    int
}

// HasExplicitRole reports whether the transaction carries a pre-assigned role.
func (t *TransactionContext) HasExplicitRole() bool {
	return strings.TrimSpace(t.ExplicitRole) != ""
}
