package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/store"
	"github.com/jabumarket/jabumarket/internal/whatsapp"
)

type VendorHandler struct {
	vendors *store.VendorStore
	logger  *slog.Logger
}

func NewVendorHandler(vs *store.VendorStore, logger *slog.Logger) *VendorHandler {
	return &VendorHandler{vendors: vs, logger: logger.With("component", "vendors")}
}

func vendorContactFor(v *model.Vendor, l *model.Listing) *vendorContact {
	c := &vendorContact{
		ID:       v.ID,
		Name:     v.Name,
		Verified: v.IsVerified(),
	}
	number := v.WhatsApp
	if number == "" {
		number = v.Phone
	}
	if number != "" {
		message := "Hello, I'm interested in your listing"
		if l != nil {
			message = fmt.Sprintf("Hello, I'm interested in %q on Jabumarket", l.Title)
		}
		c.ChatLink = whatsapp.ChatLink(number, message)
	}
	if v.Phone != "" {
		c.DialLink = whatsapp.DialLink(v.Phone)
	}
	return c
}

// Directory serves the verified vendor directory.
func (h *VendorHandler) Directory(w http.ResponseWriter, r *http.Request) {
	p := store.DirectoryDef.ParseParams(r.URL.Query())
	if r.URL.Query().Get("show_hidden") == "true" && auth.IsAdmin(r.Context()) {
		p.ShowHidden = true
	}

	page, err := h.vendors.List(r.Context(), p)
	if err != nil {
		h.logger.Error("list vendors", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, page)
}

type vendorResponse struct {
	*model.Vendor
	ChatLink string `json:"chat_link,omitempty"`
	DialLink string `json:"dial_link,omitempty"`
}

// Get returns one vendor profile with contact links. Unverified profiles are
// visible only to their owner and admins.
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.vendors.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get vendor", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "vendor not found")
		return
	}

	viewer, _ := auth.FromContext(r.Context())
	if !v.IsVerified() && viewer.UserID != v.UserID && !viewer.Admin {
		writeError(w, http.StatusNotFound, "vendor not found")
		return
	}

	contact := vendorContactFor(v, nil)
	writeJSON(w, http.StatusOK, vendorResponse{Vendor: v, ChatLink: contact.ChatLink, DialLink: contact.DialLink})
}

type vendorRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

func (req *vendorRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if strings.TrimSpace(req.Phone) == "" {
		return "phone is required"
	}
	for _, t := range model.VendorTypes {
		if req.Type == t {
			return ""
		}
	}
	return "invalid vendor type"
}

// Create registers a vendor profile for the caller.
func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.FromContext(r.Context())
	if viewer.VendorID != "" {
		writeError(w, http.StatusConflict, "vendor profile already exists")
		return
	}

	var req vendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	v, err := h.vendors.Create(viewer.UserID, req.Name, req.Phone, req.WhatsApp, req.Location, req.Type)
	if err != nil {
		h.logger.Error("create vendor", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Update edits the caller's own vendor profile.
func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.FromContext(r.Context())
	if viewer.VendorID == "" {
		writeError(w, http.StatusForbidden, "vendor profile required")
		return
	}

	var req vendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	v, err := h.vendors.Update(viewer.VendorID, req.Name, req.Phone, req.WhatsApp, req.Location, req.Type)
	if err != nil {
		h.logger.Error("update vendor", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// RequestVerification enters the caller's vendor profile into the
// verification pipeline.
func (h *VendorHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.FromContext(r.Context())
	if viewer.VendorID == "" {
		writeError(w, http.StatusForbidden, "vendor profile required")
		return
	}

	v, err := h.vendors.RequestVerification(viewer.VendorID)
	if err != nil {
		h.logger.Error("request verification", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, v)
}
