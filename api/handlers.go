package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gvidela/limitereal/limit"
)

// msgNotConfigured is the onboarding copy shared with the bot.
const msgNotConfigured = `Aún no configuraste tu tarjeta. Enviá "configurar" para empezar.`

// Handler serves the JSON API around the limit domain.
type Handler struct {
	domain    *limit.Domain
	log       *logrus.Logger
	authToken string
	now       func() time.Time
}

func NewHandler(domain *limit.Domain, log *logrus.Logger, authToken string) *Handler {
	return &Handler{
		domain:    domain,
		log:       log,
		authToken: authToken,
		now:       time.Now,
	}
}

// Router builds the route table. Every /api route except the health check
// goes through the token check.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", h.health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.authMiddleware)
	api.HandleFunc("/calculate", h.calculate).Methods("POST")
	api.HandleFunc("/profile", h.getProfile).Methods("GET")
	api.HandleFunc("/profile", h.putProfile).Methods("PUT")
	api.HandleFunc("/status", h.status).Methods("GET")
	api.HandleFunc("/expenses", h.addExpense).Methods("POST")
	api.HandleFunc("/expenses/{id}", h.removeExpense).Methods("DELETE")
	api.HandleFunc("/reset", h.resetMonth).Methods("POST")
	return r
}

// authMiddleware checks the static Auth-Token header when one is
// configured. An empty configured token disables the check.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" && r.Header.Get("Auth-Token") != h.authToken {
			writeError(w, http.StatusUnauthorized, "invalid auth token", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// calculate runs the engine statelessly on the profile in the body.
func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var p limit.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	res, err := limit.Calculate(p, h.now())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.domain.Profile(r.Context())
	if errors.Is(err, limit.ErrNotFound) {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	if err != nil {
		h.internalError(w, "load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) putProfile(w http.ResponseWriter, r *http.Request) {
	var p limit.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	res, err := h.domain.Configure(r.Context(), p, h.now())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type statusResponse struct {
	Configured bool   `json:"configured"`
	Message    string `json:"message,omitempty"`
	*limit.Result
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	res, err := h.domain.Overview(r.Context(), h.now())
	if errors.Is(err, limit.ErrNotConfigured) {
		writeJSON(w, http.StatusOK, statusResponse{Configured: false, Message: msgNotConfigured})
		return
	}
	if err != nil {
		h.internalError(w, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Configured: true, Result: &res})
}

type addExpenseRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type expenseResponse struct {
	Expense limit.Expense `json:"expense"`
	limit.Result
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	exp, res, err := h.domain.AddExpense(r.Context(), req.Amount, h.now())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseResponse{Expense: exp, Result: res})
}

func (h *Handler) removeExpense(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	res, err := h.domain.RemoveExpense(r.Context(), id, h.now())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) resetMonth(w http.ResponseWriter, r *http.Request) {
	if err := h.domain.ResetMonth(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var verr *limit.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message, string(verr.Kind))
	case errors.Is(err, limit.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, msgNotConfigured, "")
	case errors.Is(err, limit.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, limit.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	default:
		h.internalError(w, "domain", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.WithError(err).Error(op + " failed")
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
