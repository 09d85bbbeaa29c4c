package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorCode identifies the outcome of a single validation rule. Every rule
// owns its code: re-validating a field clears the codes it owns before
// recording new failures, so stale failures never survive a new value.
type ErrorCode string

const (
	CodeEmailValidation    ErrorCode = "email_validation"
	CodeStateValidation    ErrorCode = "state_validation"
	CodeAllowedStates      ErrorCode = "allowed_states"
	CodeZipcodeValidation  ErrorCode = "zipcode_validation"
	CodeZipcodeDigitSum    ErrorCode = "zipcode_digit_sum"
	CodeBirthdayValidation ErrorCode = "birthday_validation"
	CodeAgeRestriction     ErrorCode = "age_restriction"
)

// Field enumerates the settable business fields of an order.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldState    Field = "state"
	FieldZipcode  Field = "zipcode"
	FieldBirthday Field = "birthday"
)

// requiredFields fixes the order the save-time check scans fields in.
var requiredFields = [...]Field{FieldName, FieldEmail, FieldState, FieldZipcode, FieldBirthday}

// RequiredCode returns the error code recorded when a field is missing at save time.
func RequiredCode(f Field) ErrorCode {
	return ErrorCode("required_" + string(f))
}

// ErrUnknownField is returned by Set for a field outside the closed enum.
var ErrUnknownField = errors.New("unknown order field")

var emailCheck = validator.New()

// Order is a self-validating order record. Each setter normalizes the raw
// value, runs the field's validators, and folds the outcome into the
// accumulated failure map. The validity flag is always derived from that map
// and never written directly.
type Order struct {
	id    int64
	rules Rules

	name     *string
	email    *string
	state    *string
	zipcode  *string
	birthday *string

	// birthDate is the parsed birthday, nil when unset or unparseable.
	birthDate *time.Time

	failures map[ErrorCode]string
	valid    bool
}

// New constructs an order with the given identity. The order starts valid;
// required-field checks are deferred until save time so a partially built
// order can exist transiently.
func New(id int64, rules Rules) *Order {
	return &Order{
		id:       id,
		rules:    rules,
		failures: make(map[ErrorCode]string),
		valid:    true,
	}
}

func (o *Order) ID() int64 { return o.id }

// Valid reports whether the accumulated failure map is empty.
func (o *Order) Valid() bool { return o.valid }

// Failures returns a copy of the accumulated failure map, nil when clean.
func (o *Order) Failures() map[ErrorCode]string {
	if len(o.failures) == 0 {
		return nil
	}
	failures := make(map[ErrorCode]string, len(o.failures))
	for code, msg := range o.failures {
		failures[code] = msg
	}
	return failures
}

// setters statically maps each field to its setter, replacing any
// lookup-by-name dispatch with a closed table.
var setters = map[Field]func(*Order, string){
	FieldName:     (*Order).SetName,
	FieldEmail:    (*Order).SetEmail,
	FieldState:    (*Order).SetState,
	FieldZipcode:  (*Order).SetZipcode,
	FieldBirthday: (*Order).SetBirthday,
}

// Set dispatches value to the setter owning field.
func (o *Order) Set(field Field, value string) error {
	setter, ok := setters[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	setter(o, value)
	return nil
}

// SetName trims the name. Names carry no validation rules of their own.
func (o *Order) SetName(value string) {
	v := strings.TrimSpace(value)
	o.name = &v
	o.apply(nil, nil)
}

// SetEmail lowercases and trims the address, then checks it is well-formed.
func (o *Order) SetEmail(value string) {
	v := strings.ToLower(strings.TrimSpace(value))
	o.email = &v

	failed := make(map[ErrorCode]string)
	if err := emailCheck.Var(v, "email"); err != nil {
		failed[CodeEmailValidation] = fmt.Sprintf("The email address %q is not well-formed", v)
	}
	o.apply([]ErrorCode{CodeEmailValidation}, failed)
}

// SetState uppercases the code and checks both that it is a real state and
// that wine can be shipped there. An unknown state never also reports the
// shipping restriction.
func (o *Order) SetState(value string) {
	v := strings.ToUpper(strings.TrimSpace(value))
	o.state = &v

	failed := make(map[ErrorCode]string)
	switch {
	case !o.rules.KnownState(v):
		failed[CodeStateValidation] = fmt.Sprintf("The state %q is not a valid U.S. state or territory", v)
	case !o.rules.Shippable(v):
		failed[CodeAllowedStates] = fmt.Sprintf("We do not ship wine to %s", v)
	}
	o.apply([]ErrorCode{CodeStateValidation, CodeAllowedStates}, failed)
}

// SetZipcode trims the code and checks its shape and digit sum independently.
func (o *Order) SetZipcode(value string) {
	v := strings.TrimSpace(value)
	o.zipcode = &v

	failed := make(map[ErrorCode]string)
	if !o.rules.ZipcodePattern.MatchString(v) {
		failed[CodeZipcodeValidation] = "The zipcode must look like 12345 or 12345-6789"
	}
	if digitSum(v) > o.rules.ZipcodeMaxDigitSum {
		failed[CodeZipcodeDigitSum] = fmt.Sprintf("The zipcode digits must not sum to more than %d", o.rules.ZipcodeMaxDigitSum)
	}
	o.apply([]ErrorCode{CodeZipcodeValidation, CodeZipcodeDigitSum}, failed)
}

// SetBirthday parses the trimmed value with the configured layout and checks
// the minimum age. An unparseable birthday never also reports the age
// restriction.
func (o *Order) SetBirthday(value string) {
	v := strings.TrimSpace(value)
	o.birthday = &v
	o.birthDate = nil

	failed := make(map[ErrorCode]string)
	birthDate, err := time.Parse(o.rules.BirthdayLayout, v)
	if err != nil {
		failed[CodeBirthdayValidation] = fmt.Sprintf("The birthday %q does not match the format %q", v, o.rules.BirthdayLayout)
	} else {
		o.birthDate = &birthDate
		if birthDate.After(o.rules.AgeCutoff(time.Now().UTC())) {
			failed[CodeAgeRestriction] = fmt.Sprintf("The orderer must be at least %d years old", o.rules.MinAgeYears)
		}
	}
	o.apply([]ErrorCode{CodeBirthdayValidation, CodeAgeRestriction}, failed)
}

// CheckRequired records a required_<field> failure for every field that was
// never set. Invoked at save time, not at construction.
func (o *Order) CheckRequired() {
	for _, f := range requiredFields {
		code := RequiredCode(f)
		failed := make(map[ErrorCode]string)
		if !o.present(f) {
			failed[code] = fmt.Sprintf("The field %s is required", f)
		}
		o.apply([]ErrorCode{code}, failed)
	}
}

func (o *Order) present(f Field) bool {
	switch f {
	case FieldName:
		return o.name != nil
	case FieldEmail:
		return o.email != nil
	case FieldState:
		return o.state != nil
	case FieldZipcode:
		return o.zipcode != nil
	case FieldBirthday:
		return o.birthday != nil
	}
	return false
}

// apply folds one validation outcome into the accumulated failure map and
// recomputes validity.
func (o *Order) apply(owned []ErrorCode, failed map[ErrorCode]string) {
	o.failures = mergeFailures(o.failures, owned, failed)
	o.valid = len(o.failures) == 0
}

// mergeFailures clears every owned code and records the failing ones. Pure:
// the input map is never mutated.
func mergeFailures(acc map[ErrorCode]string, owned []ErrorCode, failed map[ErrorCode]string) map[ErrorCode]string {
	merged := make(map[ErrorCode]string, len(acc)+len(failed))
	for code, msg := range acc {
		merged[code] = msg
	}
	for _, code := range owned {
		delete(merged, code)
	}
	for code, msg := range failed {
		merged[code] = msg
	}
	return merged
}

// Snapshot produces the persisted shape of the order. Timestamps are left to
// the store.
func (o *Order) Snapshot() Record {
	valid := o.valid
	return Record{
		ID:                o.id,
		Name:              o.name,
		Email:             o.email,
		State:             o.state,
		Zipcode:           o.zipcode,
		Birthday:          o.birthDate,
		Valid:             &valid,
		ValidationFailure: o.Failures(),
	}
}

func digitSum(s string) int {
	sum := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	return sum
}
