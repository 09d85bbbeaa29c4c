package domain

import "time"

// Record is the persisted shape of an order. Pointer fields distinguish
// "never set" from a present value; timestamps are assigned by the store.
type Record struct {
	ID                int64
	Name              *string
	Email             *string
	State             *string
	Zipcode           *string
	Birthday          *time.Time
	Valid             *bool
	ValidationFailure map[ErrorCode]string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Value returns the stored value of one of the plain string fields.
func (r Record) Value(f Field) (string, bool) {
	var v *string
	switch f {
	case FieldName:
		v = r.Name
	case FieldEmail:
		v = r.Email
	case FieldState:
		v = r.State
	case FieldZipcode:
		v = r.Zipcode
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (r Record) Clone() Record {
	clone := r
	clone.Name = clonePtr(r.Name)
	clone.Email = clonePtr(r.Email)
	clone.State = clonePtr(r.State)
	clone.Zipcode = clonePtr(r.Zipcode)
	clone.Birthday = clonePtr(r.Birthday)
	clone.Valid = clonePtr(r.Valid)
	if r.ValidationFailure != nil {
		clone.ValidationFailure = make(map[ErrorCode]string, len(r.ValidationFailure))
		for code, msg := range r.ValidationFailure {
			clone.ValidationFailure[code] = msg
		}
	}
	return clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// View is the serialized form of a record, restricted to the whitelisted
// fields. Unset fields are omitted entirely.
type View struct {
	ID                int64                `json:"id"`
	Name              string               `json:"name,omitempty"`
	Email             string               `json:"email,omitempty"`
	State             string               `json:"state,omitempty"`
	Zipcode           string               `json:"zipcode,omitempty"`
	Birthday          string               `json:"birthday,omitempty"`
	Valid             *bool                `json:"valid,omitempty"`
	ValidationFailure map[ErrorCode]string `json:"validation_failure,omitempty"`
	CreatedAt         *time.Time           `json:"created_at,omitempty"`
	UpdatedAt         *time.Time           `json:"updated_at,omitempty"`
}

// View renders the record with birthdays formatted in the given layout.
func (r Record) View(birthdayLayout string) View {
	v := View{
		ID:                r.ID,
		Valid:             r.Valid,
		ValidationFailure: r.ValidationFailure,
	}
	if r.Name != nil {
		v.Name = *r.Name
	}
	if r.Email != nil {
		v.Email = *r.Email
	}
	if r.State != nil {
		v.State = *r.State
	}
	if r.Zipcode != nil {
		v.Zipcode = *r.Zipcode
	}
	if r.Birthday != nil {
		v.Birthday = r.Birthday.Format(birthdayLayout)
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		v.CreatedAt = &created
	}
	if !r.UpdatedAt.IsZero() {
		updated := r.UpdatedAt
		v.UpdatedAt = &updated
	}
	return v
}
