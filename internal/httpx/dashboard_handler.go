package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-merchant-orders/internal/backend"
	"github.com/ariefcatur/go-merchant-orders/internal/bridge"
	"github.com/ariefcatur/go-merchant-orders/internal/notify"
	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	"github.com/go-chi/chi/v5"
)

// Connector is the connection side of the bridge (online/offline toggle).
type Connector interface {
	Connect(ctx context.Context, id bridge.Identity) error
	Disconnect(ctx context.Context) error
	Online() bool
	State() bridge.State
}

// Journal is the read side of the decision log. Nil kalau Postgres tidak dikonfigurasi.
type Journal interface {
	Recent(ctx context.Context, merchantID string, limit int) ([]orders.Decision, error)
}

type DashboardHandler struct {
	Service  *notify.Service
	Bridge   Connector
	Identity bridge.Identity
	Journal  Journal
	Hub      *Hub
}

type rejectReq struct {
	Reason string `json:"reason"`
}

type onlineReq struct {
	Online *bool `json:"online"`
}

type onlineResp struct {
	Online bool   `json:"online"`
	State  string `json:"state"`
}

type statusResp struct {
	Status  orders.Status   `json:"status"`
	Display orders.Display  `json:"display"`
	Actions []orders.Action `json:"actions"`
}

func (h *DashboardHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(withTimeout(15 * time.Second))
		r.Get("/dashboard", h.dashboard)
		r.Get("/reject-reasons", h.rejectReasons)
		r.Get("/statuses/{status}", h.status)

		r.Post("/active/accept", h.accept)
		r.Post("/active/reject", h.reject)

		r.Get("/orders/{id}", h.getOrder)
		r.Get("/orders/{id}/countdown", h.countdown)
		r.Post("/orders/{id}/pack", h.pack)
		r.Post("/orders/{id}/return/verify", h.verifyReturn)
		r.Post("/orders/{id}/return/accept", h.acceptReturn)

		r.Get("/decisions", h.decisions)

		r.Get("/online", h.getOnline)
		r.Put("/online", h.setOnline)
	})
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWS)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadGateway
	var se *backend.StatusError
	switch {
	case errors.Is(err, notify.ErrReasonRequired), errors.Is(err, notify.ErrUnknownReason):
		code = http.StatusBadRequest
	case errors.Is(err, notify.ErrOrderNotFound), errors.Is(err, notify.ErrNoCountdown):
		code = http.StatusNotFound
	case errors.Is(err, notify.ErrNoActiveOrder), errors.Is(err, notify.ErrInFlight),
		errors.Is(err, notify.ErrInvalidTransition):
		code = http.StatusConflict
	case errors.As(err, &se) && se.Code == http.StatusConflict:
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (h *DashboardHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Snapshot())
}

func (h *DashboardHandler) rejectReasons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orders.RejectReasons())
}

func (h *DashboardHandler) status(w http.ResponseWriter, r *http.Request) {
	s := orders.Status(chi.URLParam(r, "status"))
	writeJSON(w, http.StatusOK, statusResp{Status: s, Display: orders.DisplayFor(s), Actions: orders.Actions(s)})
}

func (h *DashboardHandler) accept(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Accept(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *DashboardHandler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.Service.Reject(r.Context(), req.Reason); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Order(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DashboardHandler) countdown(w http.ResponseWriter, r *http.Request) {
	cd, err := h.Service.Countdown(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cd)
}

func (h *DashboardHandler) pack(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Pack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *DashboardHandler) verifyReturn(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.VerifyReturn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *DashboardHandler) acceptReturn(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.AcceptReturn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *DashboardHandler) decisions(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		writeJSON(w, http.StatusOK, []orders.Decision{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1..500"})
			return
		}
		limit = n
	}
	ds, err := h.Journal.Recent(r.Context(), h.Identity.MerchantID, limit)
	if err != nil {
		log.Printf("httpx: journal recent: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db error"})
		return
	}
	if ds == nil {
		ds = []orders.Decision{}
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *DashboardHandler) onlineState() onlineResp {
	return onlineResp{Online: h.Bridge.Online(), State: h.Bridge.State().String()}
}

func (h *DashboardHandler) getOnline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.onlineState())
}

func (h *DashboardHandler) setOnline(w http.ResponseWriter, r *http.Request) {
	var req onlineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Online == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	var err error
	if *req.Online {
		err = h.Bridge.Connect(r.Context(), h.Identity)
	} else {
		err = h.Bridge.Disconnect(r.Context())
	}
	if err != nil {
		log.Printf("httpx: set online=%v: %v", *req.Online, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.onlineState())
}
