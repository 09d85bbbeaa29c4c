package queries

import (
	"context"
	"strconv"
	"strings"

	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
)

// ConstraintFilters are the recognized pagination and validity constraints.
type ConstraintFilters struct {
	Limit  *int  `json:"limit,omitempty"`
	Offset *int  `json:"offset,omitempty"`
	Valid  *bool `json:"valid,omitempty"`
}

// EffectFilters describes the subset of requested filters that were
// recognized and will actually be applied, so callers can echo back what
// took effect as opposed to what was asked for.
type EffectFilters struct {
	Constraint        *ConstraintFilters `json:"constraint,omitempty"`
	FieldMatch        map[string]string  `json:"field_match,omitempty"`
	FieldPartialMatch map[string]string  `json:"field_partial_match,omitempty"`
}

// FilterTask translates a flat map of query parameters into effect filters
// and a repository filter. Parsing happens once at construction; unrecognized
// parameters are ignored and recognized parameters with unusable values are
// dropped rather than surfaced as errors.
type FilterTask struct {
	effect EffectFilters
	filter ports.ListFilter
}

// NewFilterTask parses params in a fixed order: constraints first, then
// exact-match filters, then partial-match filters.
func NewFilterTask(params map[string]string) *FilterTask {
	t := &FilterTask{}
	t.parseConstraints(params)
	t.parseFieldMatch(params)
	t.parseFieldPartialMatch(params)
	return t
}

func (t *FilterTask) parseConstraints(params map[string]string) {
	if n, ok := parsePositiveInt(params["limit"]); ok {
		t.filter.Limit = &n
		t.constraint().Limit = &n
	}
	if n, ok := parsePositiveInt(params["offset"]); ok {
		t.filter.Offset = &n
		t.constraint().Offset = &n
	}
	if b, ok := parseBoolToken(params["valid"]); ok {
		t.filter.Valid = &b
		t.constraint().Valid = &b
	}
}

func (t *FilterTask) parseFieldMatch(params map[string]string) {
	for _, f := range ports.EqualsFields {
		value := params[string(f)+"_equals"]
		if value == "" {
			continue
		}
		if t.filter.Equals == nil {
			t.filter.Equals = make(map[domain.Field]string)
			t.effect.FieldMatch = make(map[string]string)
		}
		t.filter.Equals[f] = value
		t.effect.FieldMatch[string(f)] = value
	}
}

func (t *FilterTask) parseFieldPartialMatch(params map[string]string) {
	for _, f := range ports.ContainsFields {
		value := params[string(f)+"_contains"]
		if value == "" {
			continue
		}
		if t.filter.Contains == nil {
			t.filter.Contains = make(map[domain.Field]string)
			t.effect.FieldPartialMatch = make(map[string]string)
		}
		t.filter.Contains[f] = value
		t.effect.FieldPartialMatch[string(f)] = value
	}
}

func (t *FilterTask) constraint() *ConstraintFilters {
	if t.effect.Constraint == nil {
		t.effect.Constraint = &ConstraintFilters{}
	}
	return t.effect.Constraint
}

// EffectFilters returns the filters that took effect, nil when none did.
func (t *FilterTask) EffectFilters() *EffectFilters {
	if t.effect.Constraint == nil && len(t.effect.FieldMatch) == 0 && len(t.effect.FieldPartialMatch) == 0 {
		return nil
	}
	effect := t.effect
	return &effect
}

// ListFilter returns the repository filter built from the effect filters.
func (t *FilterTask) ListFilter() ports.ListFilter {
	return t.filter
}

// parsePositiveInt accepts only positive integers; anything else means the
// constraint is simply not applied.
func parsePositiveInt(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseBoolToken accepts the fixed token sets {1,true,yes} and {0,false,no}.
func parseBoolToken(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

// ListOrdersQueryHandler runs a filter task against the repository. The run
// is read-only and repeatable.
type ListOrdersQueryHandler struct {
	repo ports.OrderRepository
}

// NewListOrdersQueryHandler constructs a ListOrdersQueryHandler.
func NewListOrdersQueryHandler(repo ports.OrderRepository) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{repo: repo}
}

// Handle parses params and returns the effect filters alongside the matching
// orders, ordered by id ascending.
func (h *ListOrdersQueryHandler) Handle(ctx context.Context, params map[string]string) (*EffectFilters, []domain.Record, error) {
	task := NewFilterTask(params)

	records, err := h.repo.List(ctx, task.ListFilter())
	if err != nil {
		return nil, nil, err
	}

	return task.EffectFilters(), records, nil
}
