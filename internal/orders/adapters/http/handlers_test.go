package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	idemmemory "github.com/KyleRui0202/acme-wines/internal/idempotency/memory"
	"github.com/KyleRui0202/acme-wines/internal/kafka"
	httpadapter "github.com/KyleRui0202/acme-wines/internal/orders/adapters/http"
	"github.com/KyleRui0202/acme-wines/internal/orders/adapters/memory"
	"github.com/KyleRui0202/acme-wines/internal/orders/app"
	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	ordersmetrics "github.com/KyleRui0202/acme-wines/internal/orders/metrics"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Repository) {
	t.Helper()

	meter := sdkmetric.NewMeterProvider().Meter("test")
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		t.Fatalf("create metrics: %v", err)
	}

	repo := memory.NewRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewService(
		repo,
		kafka.NewNoopEventBus(),
		idemmemory.NewStore(),
		domain.DefaultRules(),
		logger,
		orderMetrics,
	)

	mux := http.NewServeMux()
	httpadapter.NewHandler(service).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, repo
}

func postOrder(t *testing.T, server *httptest.Server, payload string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/orders", bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post order: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

const validOrderPayload = `{
	"id": 42,
	"name": "Jane Doe",
	"email": "jane@example.com",
	"state": "NY",
	"zipcode": "10001",
	"birthday": "Mar 05, 1985"
}`

func TestCreateOrderEndpoint(t *testing.T) {
	t.Run("creates a valid order", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := postOrder(t, server, validOrderPayload, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		var body struct {
			Order struct {
				ID       int64  `json:"id"`
				Email    string `json:"email"`
				Birthday string `json:"birthday"`
				Valid    *bool  `json:"valid"`
			} `json:"order"`
		}
		decodeBody(t, resp, &body)

		if body.Order.ID != 42 {
			t.Errorf("expected id 42, got %d", body.Order.ID)
		}
		if body.Order.Birthday != "Mar 05, 1985" {
			t.Errorf("expected formatted birthday, got %s", body.Order.Birthday)
		}
		if body.Order.Valid == nil || !*body.Order.Valid {
			t.Error("expected order to be valid")
		}
	})

	t.Run("persists an invalid order and reports its failures", func(t *testing.T) {
		server, repo := newTestServer(t)

		payload := `{"id": 7, "name": "Bob", "email": "bob@example.com", "state": "NJ", "zipcode": "07030", "birthday": "Jan 01, 1970"}`
		resp := postOrder(t, server, payload, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		var body struct {
			Order struct {
				Valid             *bool             `json:"valid"`
				ValidationFailure map[string]string `json:"validation_failure"`
			} `json:"order"`
		}
		decodeBody(t, resp, &body)

		if body.Order.Valid == nil || *body.Order.Valid {
			t.Error("expected order to be invalid")
		}
		if _, ok := body.Order.ValidationFailure["allowed_states"]; !ok {
			t.Errorf("expected allowed_states failure, got %v", body.Order.ValidationFailure)
		}

		if _, err := repo.GetByID(t.Context(), 7); err != nil {
			t.Errorf("expected invalid order to be stored: %v", err)
		}
	})

	t.Run("rejects a duplicate id with 409", func(t *testing.T) {
		server, _ := newTestServer(t)

		if resp := postOrder(t, server, validOrderPayload, nil); resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201 on first insert, got %d", resp.StatusCode)
		}
		resp := postOrder(t, server, validOrderPayload, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409 on duplicate, got %d", resp.StatusCode)
		}
	})

	t.Run("rejects a missing id with 400", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := postOrder(t, server, `{"name": "No Id"}`, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("rejects malformed JSON with 400", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := postOrder(t, server, `{"id": `, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("replays the original response for a repeated idempotency key", func(t *testing.T) {
		server, _ := newTestServer(t)
		headers := map[string]string{"Idempotency-Key": "abc-123"}

		first := postOrder(t, server, validOrderPayload, headers)
		if first.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", first.StatusCode)
		}
		firstBody, _ := io.ReadAll(first.Body)

		second := postOrder(t, server, validOrderPayload, headers)
		if second.StatusCode != http.StatusCreated {
			t.Fatalf("expected replayed 201, got %d", second.StatusCode)
		}
		secondBody, _ := io.ReadAll(second.Body)

		if !bytes.Equal(firstBody, secondBody) {
			t.Errorf("expected identical replayed body, got %s vs %s", firstBody, secondBody)
		}
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	t.Run("returns the order", func(t *testing.T) {
		server, _ := newTestServer(t)
		postOrder(t, server, validOrderPayload, nil)

		resp, err := http.Get(server.URL + "/orders/42")
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var view struct {
			ID    int64  `json:"id"`
			State string `json:"state"`
		}
		decodeBody(t, resp, &view)
		if view.ID != 42 || view.State != "NY" {
			t.Errorf("unexpected view: %+v", view)
		}
	})

	t.Run("unknown id yields the not_found body", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp, err := http.Get(server.URL + "/orders/999")
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}

		var body map[string]string
		decodeBody(t, resp, &body)
		if body["not_found"] != "The order of id=999 does not exist" {
			t.Errorf("unexpected not_found body: %v", body)
		}
	})

	t.Run("non-numeric id yields 404", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp, err := http.Get(server.URL + "/orders/abc")
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestListOrdersEndpoint(t *testing.T) {
	seed := func(t *testing.T, server *httptest.Server) {
		t.Helper()
		payloads := []string{
			`{"id": 1, "name": "Alice Doe", "email": "alice@example.com", "state": "NY", "zipcode": "10001", "birthday": "Mar 05, 1985"}`,
			`{"id": 2, "name": "Bob Doe", "email": "bob@other.org", "state": "NJ", "zipcode": "07030", "birthday": "Jan 01, 1970"}`,
			`{"id": 3, "name": "Carol Santos", "email": "carol@example.com", "state": "CA", "zipcode": "90210", "birthday": "Jul 20, 1990"}`,
		}
		for _, p := range payloads {
			if resp := postOrder(t, server, p, nil); resp.StatusCode != http.StatusCreated {
				t.Fatalf("seed order failed with %d", resp.StatusCode)
			}
		}
	}

	type listBody struct {
		EffectFilters *struct {
			Constraint *struct {
				Limit *int  `json:"limit"`
				Valid *bool `json:"valid"`
			} `json:"constraint"`
			FieldMatch        map[string]string `json:"field_match"`
			FieldPartialMatch map[string]string `json:"field_partial_match"`
		} `json:"effect_filters"`
		NumOfOrders int               `json:"num_of_orders"`
		Results     []json.RawMessage `json:"results"`
	}

	get := func(t *testing.T, server *httptest.Server, query string) listBody {
		t.Helper()
		resp, err := http.Get(server.URL + "/orders" + query)
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body listBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode list body: %v", err)
		}
		return body
	}

	t.Run("no filters returns everything with null effect_filters", func(t *testing.T) {
		server, _ := newTestServer(t)
		seed(t, server)

		body := get(t, server, "")
		if body.EffectFilters != nil {
			t.Errorf("expected effect_filters to be null, got %+v", body.EffectFilters)
		}
		if body.NumOfOrders != 3 || len(body.Results) != 3 {
			t.Errorf("expected 3 orders, got num=%d len=%d", body.NumOfOrders, len(body.Results))
		}
	})

	t.Run("applied filters are echoed back", func(t *testing.T) {
		server, _ := newTestServer(t)
		seed(t, server)

		body := get(t, server, "?limit=2&valid=yes&name_contains=doe&sort=asc")
		if body.EffectFilters == nil || body.EffectFilters.Constraint == nil {
			t.Fatalf("expected effect filters, got %+v", body.EffectFilters)
		}
		if body.EffectFilters.Constraint.Limit == nil || *body.EffectFilters.Constraint.Limit != 2 {
			t.Errorf("expected limit 2 echoed, got %+v", body.EffectFilters.Constraint)
		}
		if body.EffectFilters.FieldPartialMatch["name"] != "doe" {
			t.Errorf("expected name_contains echoed, got %v", body.EffectFilters.FieldPartialMatch)
		}
		// Order 2 fails validation, so only order 1 matches valid=yes + doe.
		if body.NumOfOrders != 1 {
			t.Errorf("expected 1 order, got %d", body.NumOfOrders)
		}
	})

	t.Run("unusable constraint values are not echoed", func(t *testing.T) {
		server, _ := newTestServer(t)
		seed(t, server)

		body := get(t, server, "?limit=abc&valid=maybe")
		if body.EffectFilters != nil {
			t.Errorf("expected effect_filters to be null, got %+v", body.EffectFilters)
		}
		if body.NumOfOrders != 3 {
			t.Errorf("expected all orders, got %d", body.NumOfOrders)
		}
	})
}
