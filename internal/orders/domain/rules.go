package domain

import (
	"regexp"
	"slices"
	"time"
)

// Rules holds the data-only validation configuration for orders. A Rules value
// is injected at construction so tests can substitute their own thresholds.
type Rules struct {
	// States lists the U.S. state and territory abbreviations an order may use.
	States []string
	// NoShipStates lists the states wine cannot legally be shipped to.
	NoShipStates []string
	// ZipcodePattern is the accepted postal code shape.
	ZipcodePattern *regexp.Regexp
	// ZipcodeMaxDigitSum caps the sum of a zipcode's digits.
	ZipcodeMaxDigitSum int
	// BirthdayLayout is the time layout birthdays are submitted in.
	BirthdayLayout string
	// MinAgeYears is the minimum age of the orderer.
	MinAgeYears int
}

// DefaultRules returns the production validation configuration.
func DefaultRules() Rules {
	return Rules{
		States: []string{
			"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA", "HI",
			"ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO",
			"MT", "NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI",
			"SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY", "AS", "GU", "MP",
			"PR", "VI", "FM", "MH", "PW",
		},
		NoShipStates:       []string{"NJ", "CT", "PA", "MA", "IL", "ID", "OR"},
		ZipcodePattern:     regexp.MustCompile(`^\d{5}(-\d{4})?$`),
		ZipcodeMaxDigitSum: 20,
		BirthdayLayout:     "Jan 02, 2006",
		MinAgeYears:        21,
	}
}

// KnownState reports whether code is a recognized state or territory.
func (r Rules) KnownState(code string) bool {
	return slices.Contains(r.States, code)
}

// Shippable reports whether wine may be shipped to the given state.
func (r Rules) Shippable(code string) bool {
	return !slices.Contains(r.NoShipStates, code)
}

// AgeCutoff returns the latest birth date that still satisfies the minimum
// age, relative to the calendar day of now.
func (r Rules) AgeCutoff(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(-r.MinAgeYears, 0, 0)
}
