package rules

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sukilabs/suki/internal/model"
)

// ruleFile is the YAML document shape for a rules configuration file.
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

// ruleEntry mirrors one PersonaRule in YAML. Set-valued constraints may carry
// a single "*" entry (or be omitted) to mean wildcard; active defaults to
// true when omitted.
type ruleEntry struct {
	Active             *bool             `yaml:"active"`
	MinAge             *int              `yaml:"min_age"`
	MaxAge             *int              `yaml:"max_age"`
	MinBasketItems     *int              `yaml:"min_basket_items"`
	Role               string            `yaml:"role"`
	IncludeTerms       []string          `yaml:"include_terms"`
	ExcludeTerms       []string          `yaml:"exclude_terms"`
	RequiredCategories []string          `yaml:"required_categories"`
	AllowedGenders     []string          `yaml:"allowed_genders"`
	ActiveHours        []model.HourRange `yaml:"active_hours"`
	ID                 int64             `yaml:"id"`
	Priority           int               `yaml:"priority"`
}

// LoadFile reads persona rules from a YAML file. The returned rules are raw:
// validation happens in NewSnapshot so that one malformed rule is skipped
// with a log line instead of failing the load.
func LoadFile(path string) ([]model.PersonaRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	now := time.Now()
	out := make([]model.PersonaRule, 0, len(doc.Rules))
	for _, entry := range doc.Rules {
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		out = append(out, model.PersonaRule{
			ID:                 entry.ID,
			RoleName:           entry.Role,
			Priority:           entry.Priority,
			IncludeTerms:       entry.IncludeTerms,
			ExcludeTerms:       entry.ExcludeTerms,
			RequiredCategories: entry.RequiredCategories,
			AllowedGenders:     entry.AllowedGenders,
			ActiveHours:        entry.ActiveHours,
			MinAge:             entry.MinAge,
			MaxAge:             entry.MaxAge,
			MinBasketItems:     entry.MinBasketItems,
			IsActive:           active,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	return out, nil
}
