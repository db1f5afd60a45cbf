// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// HourRange is an inclusive hour interval in 0..23. Ranges with Lo > Hi wrap
// across midnight: [22,5] covers 22,23,0,1,2,3,4,5.
type HourRange struct {
	Lo int `yaml:"lo" json:"lo"`
	Hi int `yaml:"hi" json:"hi"`
}

// Contains reports whether the given hour falls inside the range.
func (r HourRange) Contains(hour int) bool {
	if r.Lo <= r.Hi {
		return hour >= r.Lo && hour <= r.Hi
	}
	// Wraparound interval
	return hour >= r.Lo || hour <= r.Hi
}

func (r HourRange) String() string {
	return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
}

// PersonaRule is one declarative classification rule maintained by business
// users. Empty slices on the set-valued constraints mean wildcard (match any);
// nil pointers on the scalar constraints mean unset.
type PersonaRule struct {
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	MinAge             *int        `json:"min_age,omitempty"`
	MaxAge             *int        `json:"max_age,omitempty"`
	MinBasketItems     *int        `json:"min_basket_items,omitempty"`
	RoleName           string      `json:"role_name"`
	IncludeTerms       []string    `json:"include_terms"`
	ExcludeTerms       []string    `json:"exclude_terms,omitempty"`
	RequiredCategories []string    `json:"required_categories,omitempty"`
	AllowedGenders     []string    `json:"allowed_genders,omitempty"`
	ActiveHours        []HourRange `json:"active_hours,omitempty"`
	ID                 int64       `json:"id"`
	Priority           int         `json:"priority"`
	IsActive           bool        `json:"is_active"`
}

// Validate ensures the rule is well-formed. Invalid rules are excluded from a
// run at load time rather than aborting the batch.
func (r *PersonaRule) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("rule id must be positive, got %d", r.ID)
	}

	if strings.TrimSpace(r.RoleName) == "" {
		return fmt.Errorf("role name is required")
	}

	if r.Priority <= 0 {
		return fmt.Errorf("priority must be positive, got %d", r.Priority)
	}

	// Every active rule must carry textual evidence; a rule that matches on
	// nothing but an explicit override is not allowed.
	hasInclude := false
	for _, term := range r.IncludeTerms {
		if strings.TrimSpace(term) != "" {
			hasInclude = true
			break
		}
	}
	if !hasInclude {
		return fmt.Errorf("at least one include term is required")
	}

	for _, hr := range r.ActiveHours {
		if hr.Lo < 0 || hr.Lo > 23 || hr.Hi < 0 || hr.Hi > 23 {
			return fmt.Errorf("hour range %s outside 0-23", hr)
		}
	}

	if r.MinAge != nil && *r.MinAge < 0 {
		return fmt.Errorf("min age must not be negative")
	}
	if r.MaxAge != nil && *r.MaxAge < 0 {
		return fmt.Errorf("max age must not be negative")
	}
	if r.MinAge != nil && r.MaxAge != nil && *r.MinAge > *r.MaxAge {
		return fmt.Errorf("min age %d exceeds max age %d", *r.MinAge, *r.MaxAge)
	}

	if r.MinBasketItems != nil && *r.MinBasketItems < 1 {
		return fmt.Errorf("min basket items must be at least 1")
	}

	return nil
}
