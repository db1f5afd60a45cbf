package model

// Daypart is a named bucket of hours.
type Daypart string

// Daypart constants. Boundaries are fixed: morning 5-10, afternoon 11-15,
// evening 16-20, night otherwise.
const (
	DaypartMorning   Daypart = "morning"
	DaypartAfternoon Daypart = "afternoon"
	DaypartEvening   Daypart = "evening"
	DaypartNight     Daypart = "night"
)

// BasketBucket classifies a transaction by item count.
type BasketBucket string

// Basket bucket constants: small <4 items, medium 4-7, bulk >=8.
const (
	BasketSmall  BasketBucket = "small"
	BasketMedium BasketBucket = "medium"
	BasketBulk   BasketBucket = "bulk"
)

// CategoryUnknown is the sentinel group for raw categories that match no
// mapping pattern.
const CategoryUnknown = "Unknown"

// Signals holds the normalized evaluation signals derived from one
// transaction. They are transient: computed per evaluation, never stored,
// except through the optional diagnostic export.
type Signals struct {
	Tokens        map[string]struct{}
	TransactionID string
	CategoryGroup string
	Weekday       string
	Daypart       Daypart
	BasketBucket  BasketBucket
	HourOfDay     int
	Weekend       bool
}

// HasToken reports whether the token set contains the given token.
func (s *Signals) HasToken(token string) bool {
	_, ok := s.Tokens[token]
	return ok
}
