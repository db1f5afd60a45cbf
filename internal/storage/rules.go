package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sukilabs/suki/internal/model"
)

// GetActiveRules loads every active rule row. The rows are raw: validation
// and normalization happen when the rules snapshot is built, so one malformed
// rule never aborts a run.
func (s *SQLiteStorage) GetActiveRules(ctx context.Context) ([]model.PersonaRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role_name, priority, include_terms, exclude_terms,
		       required_categories, active_hours, min_age, max_age,
		       allowed_genders, min_basket_items, is_active, created_at, updated_at
		FROM persona_rules
		WHERE is_active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PersonaRule
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return out, nil
}

// SaveRule upserts a rule row keyed by ID. Set-valued fields are stored as
// JSON arrays.
func (s *SQLiteStorage) SaveRule(ctx context.Context, rule *model.PersonaRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid rule %d: %w", rule.ID, err)
	}

	includeJSON, err := json.Marshal(rule.IncludeTerms)
	if err != nil {
		return fmt.Errorf("failed to marshal include terms: %w", err)
	}
	excludeJSON, err := marshalOrNil(rule.ExcludeTerms)
	if err != nil {
		return err
	}
	categoriesJSON, err := marshalOrNil(rule.RequiredCategories)
	if err != nil {
		return err
	}
	gendersJSON, err := marshalOrNil(rule.AllowedGenders)
	if err != nil {
		return err
	}
	hoursJSON, err := marshalHours(rule.ActiveHours)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO persona_rules (
			id, role_name, priority, include_terms, exclude_terms,
			required_categories, active_hours, min_age, max_age,
			allowed_genders, min_basket_items, is_active, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			role_name = excluded.role_name,
			priority = excluded.priority,
			include_terms = excluded.include_terms,
			exclude_terms = excluded.exclude_terms,
			required_categories = excluded.required_categories,
			active_hours = excluded.active_hours,
			min_age = excluded.min_age,
			max_age = excluded.max_age,
			allowed_genders = excluded.allowed_genders,
			min_basket_items = excluded.min_basket_items,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`,
		rule.ID,
		rule.RoleName,
		rule.Priority,
		string(includeJSON),
		excludeJSON,
		categoriesJSON,
		hoursJSON,
		nullInt(rule.MinAge),
		nullInt(rule.MaxAge),
		gendersJSON,
		nullInt(rule.MinBasketItems),
		rule.IsActive,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save rule %d: %w", rule.ID, err)
	}
	return nil
}

func marshalOrNil(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string set: %w", err)
	}
	return string(data), nil
}

func marshalHours(hours []model.HourRange) (any, error) {
	if len(hours) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(hours)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal hour ranges: %w", err)
	}
	return string(data), nil
}

func scanRule(row scanner) (model.PersonaRule, error) {
	var (
		rule           model.PersonaRule
		includeJSON    string
		excludeJSON    sql.NullString
		categoriesJSON sql.NullString
		hoursJSON      sql.NullString
		gendersJSON    sql.NullString
		minAge         sql.NullInt64
		maxAge         sql.NullInt64
		minBasket      sql.NullInt64
	)

	err := row.Scan(&rule.ID, &rule.RoleName, &rule.Priority, &includeJSON,
		&excludeJSON, &categoriesJSON, &hoursJSON, &minAge, &maxAge,
		&gendersJSON, &minBasket, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return rule, fmt.Errorf("failed to scan rule: %w", err)
	}

	if err := json.Unmarshal([]byte(includeJSON), &rule.IncludeTerms); err != nil {
		return rule, fmt.Errorf("rule %d has malformed include_terms: %w", rule.ID, err)
	}
	if err := unmarshalIfSet(excludeJSON, &rule.ExcludeTerms); err != nil {
		return rule, fmt.Errorf("rule %d has malformed exclude_terms: %w", rule.ID, err)
	}
	if err := unmarshalIfSet(categoriesJSON, &rule.RequiredCategories); err != nil {
		return rule, fmt.Errorf("rule %d has malformed required_categories: %w", rule.ID, err)
	}
	if err := unmarshalIfSet(gendersJSON, &rule.AllowedGenders); err != nil {
		return rule, fmt.Errorf("rule %d has malformed allowed_genders: %w", rule.ID, err)
	}
	if hoursJSON.Valid && hoursJSON.String != "" {
		if err := json.Unmarshal([]byte(hoursJSON.String), &rule.ActiveHours); err != nil {
			return rule, fmt.Errorf("rule %d has malformed active_hours: %w", rule.ID, err)
		}
	}

	if minAge.Valid {
		v := int(minAge.Int64)
		rule.MinAge = &v
	}
	if maxAge.Valid {
		v := int(maxAge.Int64)
		rule.MaxAge = &v
	}
	if minBasket.Valid {
		v := int(minBasket.Int64)
		rule.MinBasketItems = &v
	}
	return rule, nil
}

func unmarshalIfSet(src sql.NullString, dst *[]string) error {
	if !src.Valid || src.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(src.String), dst)
}
