package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/KyleRui0202/acme-wines/internal/orders/app"
	"github.com/KyleRui0202/acme-wines/internal/orders/app/queries"
	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
)

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/orders", h.handleOrders)
	mux.HandleFunc("/orders/", h.handleOrders)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/orders"), "/")
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.listOrders(w, r)
		case http.MethodPost:
			h.createOrder(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.getOrder(w, r, id)
}

type listResponse struct {
	EffectFilters *queries.EffectFilters `json:"effect_filters"`
	NumOfOrders   int                    `json:"num_of_orders"`
	Results       []domain.View          `json:"results"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string)
	for key := range r.URL.Query() {
		params[key] = r.URL.Query().Get(key)
	}

	effect, records, err := h.service.ListOrders(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	layout := h.service.Rules().BirthdayLayout
	results := make([]domain.View, 0, len(records))
	for _, rec := range records {
		results = append(results, rec.View(layout))
	}

	writeJSON(w, http.StatusOK, listResponse{
		EffectFilters: effect,
		NumOfOrders:   len(results),
		Results:       results,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id int64) {
	rec, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"not_found": fmt.Sprintf("The order of id=%d does not exist", id),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec.View(h.service.Rules().BirthdayLayout))
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Idempotency keys are optional: the order id already guards against
	// double inserts, the key additionally lets clients replay the exact
	// original response.
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey != "" {
		stored, err := h.service.GetIdempotentResponse(ctx, idemKey)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stored != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(stored.StatusCode)
			_, _ = w.Write(stored.Body)
			return
		}
	}

	var payload app.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	rec, err := h.service.CreateOrder(ctx, payload)
	if err != nil && rec == nil {
		if errors.Is(err, ports.ErrDuplicateID) {
			writeError(w, http.StatusConflict, "an order with this id already exists")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// err != nil with a record means the order was saved but the event
	// publish failed; the request still succeeded.

	view := rec.View(h.service.Rules().BirthdayLayout)
	body, err := json.Marshal(map[string]any{"order": view})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if idemKey != "" {
		stored := ports.StoredResponse{
			StatusCode: http.StatusCreated,
			Body:       body,
			OrderID:    rec.ID,
		}
		if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
