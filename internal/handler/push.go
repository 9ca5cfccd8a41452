package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/push"
	"github.com/jabumarket/jabumarket/internal/store"
)

type PushHandler struct {
	subs    *store.PushStore
	service *push.Service
	logger  *slog.Logger
}

func NewPushHandler(subs *store.PushStore, service *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: subs, service: service, logger: logger.With("component", "push")}
}

// VAPIDPublicKey exposes the key clients need to subscribe.
func (h *PushHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if !h.service.Enabled() {
		writeError(w, http.StatusNotFound, "push notifications disabled")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint"`
	P256dh     string `json:"p256dh"`
	Auth       string `json:"auth"`
	DeviceName string `json:"device_name"`
}

// Subscribe registers a browser push endpoint for the caller.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())

	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh and auth are required")
		return
	}

	sub, err := h.subs.Subscribe(v.UserID, req.Endpoint, req.P256dh, req.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("subscribe", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// List returns the caller's registered devices.
func (h *PushHandler) List(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())
	subs, err := h.subs.ListByUser(v.UserID)
	if err != nil {
		h.logger.Error("list subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

// Unsubscribe removes one of the caller's devices.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	if err := h.subs.Delete(id, v.UserID); err != nil {
		h.logger.Error("unsubscribe", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
