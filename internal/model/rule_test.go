package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHourRange_Contains(t *testing.T) {
	tests := []struct {
		name  string
		r     HourRange
		hour  int
		wants bool
	}{
		{name: "normal range inside", r: HourRange{Lo: 9, Hi: 17}, hour: 12, wants: true},
		{name: "normal range lower bound", r: HourRange{Lo: 9, Hi: 17}, hour: 9, wants: true},
		{name: "normal range upper bound", r: HourRange{Lo: 9, Hi: 17}, hour: 17, wants: true},
		{name: "normal range outside", r: HourRange{Lo: 9, Hi: 17}, hour: 18, wants: false},
		{name: "wraparound before midnight", r: HourRange{Lo: 22, Hi: 5}, hour: 23, wants: true},
		{name: "wraparound after midnight", r: HourRange{Lo: 22, Hi: 5}, hour: 2, wants: true},
		{name: "wraparound upper bound", r: HourRange{Lo: 22, Hi: 5}, hour: 5, wants: true},
		{name: "wraparound gap", r: HourRange{Lo: 22, Hi: 5}, hour: 12, wants: false},
		{name: "single hour", r: HourRange{Lo: 7, Hi: 7}, hour: 7, wants: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, tt.r.Contains(tt.hour))
		})
	}
}

func TestHourRange_WraparoundFullSweep(t *testing.T) {
	r := HourRange{Lo: 22, Hi: 5}
	inside := map[int]bool{22: true, 23: true, 0: true, 1: true, 2: true, 3: true, 4: true, 5: true}

	for hour := 0; hour < 24; hour++ {
		assert.Equal(t, inside[hour], r.Contains(hour), "hour %d", hour)
	}
}

func TestPersonaRule_Validate(t *testing.T) {
	intPtr := func(i int) *int { return &i }

	valid := func() PersonaRule {
		return PersonaRule{
			ID:           1,
			RoleName:     "Student",
			Priority:     1,
			IncludeTerms: []string{"school"},
			IsActive:     true,
		}
	}

	tests := []struct {
		mutate  func(*PersonaRule)
		name    string
		wantErr string
	}{
		{
			name:   "valid rule",
			mutate: func(*PersonaRule) {},
		},
		{
			name:    "unset id",
			mutate:  func(r *PersonaRule) { r.ID = 0 },
			wantErr: "rule id",
		},
		{
			name:    "negative id",
			mutate:  func(r *PersonaRule) { r.ID = -1 },
			wantErr: "rule id",
		},
		{
			name:    "missing role name",
			mutate:  func(r *PersonaRule) { r.RoleName = "  " },
			wantErr: "role name",
		},
		{
			name:    "zero priority",
			mutate:  func(r *PersonaRule) { r.Priority = 0 },
			wantErr: "priority",
		},
		{
			name:    "negative priority",
			mutate:  func(r *PersonaRule) { r.Priority = -3 },
			wantErr: "priority",
		},
		{
			name:    "empty include terms",
			mutate:  func(r *PersonaRule) { r.IncludeTerms = nil },
			wantErr: "include term",
		},
		{
			name:    "blank include terms",
			mutate:  func(r *PersonaRule) { r.IncludeTerms = []string{"", "  "} },
			wantErr: "include term",
		},
		{
			name:    "hour out of range",
			mutate:  func(r *PersonaRule) { r.ActiveHours = []HourRange{{Lo: 22, Hi: 24}} },
			wantErr: "hour range",
		},
		{
			name:    "negative hour",
			mutate:  func(r *PersonaRule) { r.ActiveHours = []HourRange{{Lo: -1, Hi: 5}} },
			wantErr: "hour range",
		},
		{
			name:   "wraparound hours are legal",
			mutate: func(r *PersonaRule) { r.ActiveHours = []HourRange{{Lo: 22, Hi: 5}} },
		},
		{
			name: "inverted age bounds",
			mutate: func(r *PersonaRule) {
				r.MinAge = intPtr(40)
				r.MaxAge = intPtr(20)
			},
			wantErr: "exceeds max age",
		},
		{
			name:    "zero min basket items",
			mutate:  func(r *PersonaRule) { r.MinBasketItems = intPtr(0) },
			wantErr: "basket items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := valid()
			tt.mutate(&rule)

			err := rule.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
