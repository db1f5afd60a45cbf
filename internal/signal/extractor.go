// Package signal derives normalized evaluation signals from raw transaction
// context: transcript tokens, daypart, category group, and basket bucket.
// Extraction is a pure function of its input and fails softly: missing fields
// yield empty or sentinel signals, never errors.
package signal

import (
	"strings"
	"time"
	"unicode"

	"github.com/sukilabs/suki/internal/model"
)

// Tokenize lowercases text, replaces punctuation and newlines with spaces,
// and splits on whitespace. No stemming, no language detection: downstream
// matching is literal token equality. Empty input yields an empty set.
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	if text == "" {
		return tokens
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		tokens[w] = struct{}{}
	}
	return tokens
}

// DaypartFor buckets an hour of day into a fixed boundary table.
func DaypartFor(hour int) model.Daypart {
	switch {
	case hour >= 5 && hour <= 10:
		return model.DaypartMorning
	case hour >= 11 && hour <= 15:
		return model.DaypartAfternoon
	case hour >= 16 && hour <= 20:
		return model.DaypartEvening
	default:
		return model.DaypartNight
	}
}

// BasketBucketFor buckets an item count.
func BasketBucketFor(itemCount int) model.BasketBucket {
	switch {
	case itemCount < 4:
		return model.BasketSmall
	case itemCount <= 7:
		return model.BasketMedium
	default:
		return model.BasketBulk
	}
}

// categoryPattern maps a contains-style pattern to a canonical group.
// Patterns are evaluated in order; the first match wins.
type categoryPattern struct {
	substr string
	group  string
}

var categoryPatterns = []categoryPattern{
	{"energy drink", "Energy Drinks"},
	{"energy", "Energy Drinks"},
	{"cobra", "Energy Drinks"},
	{"sting", "Energy Drinks"},
	{"cigarette", "Tobacco"},
	{"tobacco", "Tobacco"},
	{"beer", "Alcohol"},
	{"gin", "Alcohol"},
	{"liquor", "Alcohol"},
	{"soft drink", "Beverages"},
	{"softdrink", "Beverages"},
	{"soda", "Beverages"},
	{"juice", "Beverages"},
	{"coffee", "Beverages"},
	{"water", "Beverages"},
	{"noodle", "Instant Noodles"},
	{"pancit canton", "Instant Noodles"},
	{"sardines", "Canned Goods"},
	{"corned beef", "Canned Goods"},
	{"canned", "Canned Goods"},
	{"snack", "Snacks"},
	{"chips", "Snacks"},
	{"biscuit", "Snacks"},
	{"candy", "Snacks"},
	{"chocolate", "Snacks"},
	{"rice", "Staples"},
	{"sugar", "Staples"},
	{"cooking oil", "Staples"},
	{"egg", "Staples"},
	{"shampoo", "Personal Care"},
	{"soap", "Personal Care"},
	{"toothpaste", "Personal Care"},
	{"diaper", "Personal Care"},
	{"detergent", "Household"},
	{"laundry", "Household"},
	{"bleach", "Household"},
	{"notebook", "School Supplies"},
	{"school", "School Supplies"},
	{"ballpen", "School Supplies"},
	{"load", "Telecom Load"},
	{"prepaid", "Telecom Load"},
}

// CategoryGroupFor maps raw category and brand strings to a canonical group
// name. Unmapped input yields the "Unknown" sentinel.
func CategoryGroupFor(category, brand string) string {
	raw := strings.ToLower(strings.TrimSpace(category + " " + brand))
	if raw == "" {
		return model.CategoryUnknown
	}

	for _, p := range categoryPatterns {
		if strings.Contains(raw, p.substr) {
			return p.group
		}
	}
	return model.CategoryUnknown
}

// Extract derives the full signal set for one transaction.
func Extract(txn *model.TransactionContext) model.Signals {
	hour := txn.Timestamp.Hour()
	weekday := txn.Timestamp.Weekday()

	return model.Signals{
		TransactionID: txn.ID,
		Tokens:        Tokenize(txn.Transcript),
		HourOfDay:     hour,
		Daypart:       DaypartFor(hour),
		CategoryGroup: CategoryGroupFor(txn.Category, txn.Brand),
		BasketBucket:  BasketBucketFor(txn.ItemCount),
		Weekday:       weekday.String(),
		Weekend:       weekday == time.Saturday || weekday == time.Sunday,
	}
}
