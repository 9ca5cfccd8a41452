package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/store"
)

type ListingHandler struct {
	listings *store.ListingStore
	vendors  *store.VendorStore
	logger   *slog.Logger
}

func NewListingHandler(ls *store.ListingStore, vs *store.VendorStore, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{listings: ls, vendors: vs, logger: logger.With("component", "listings")}
}

// List serves the Explore page query. Admins may pass show_hidden=true to
// include sold and inactive listings.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	p := store.ExploreDef.ParseParams(r.URL.Query())
	if r.URL.Query().Get("show_hidden") == "true" && auth.IsAdmin(r.Context()) {
		p.ShowHidden = true
	}

	page, err := h.listings.List(r.Context(), p)
	if err != nil {
		h.logger.Error("list listings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, page)
}

// Mine lists the caller's own listings in every status.
func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())
	if v.VendorID == "" {
		writeError(w, http.StatusForbidden, "vendor profile required")
		return
	}
	page, err := h.listings.ListByVendor(r.Context(), v.VendorID, store.ExploreDef.ParseParams(r.URL.Query()))
	if err != nil {
		h.logger.Error("list own listings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, page)
}

type listingResponse struct {
	*model.Listing
	Vendor *vendorContact `json:"vendor,omitempty"`
}

type vendorContact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	ChatLink string `json:"chat_link,omitempty"`
	DialLink string `json:"dial_link,omitempty"`
}

// Get returns one listing with vendor contact links. Non-active listings are
// visible only to their owner and admins.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get listing", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}

	viewer, _ := auth.FromContext(r.Context())
	if l.Status != model.ListingActive && viewer.VendorID != l.VendorID && !viewer.Admin {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}

	resp := listingResponse{Listing: l}
	if vendor, err := h.vendors.GetByID(l.VendorID); err == nil && vendor != nil {
		resp.Vendor = vendorContactFor(vendor, l)
	}
	writeJSON(w, http.StatusOK, resp)
}

type listingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Price       *float64 `json:"price"`
	PriceLabel  *string  `json:"price_label"`
	Negotiable  bool     `json:"negotiable"`
	Location    string   `json:"location"`
	ImageKey    string   `json:"image_key"`
}

func (req *listingRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Type != model.ListingProduct && req.Type != model.ListingService {
		return "type must be product or service"
	}
	hasPrice := req.Price != nil
	hasLabel := req.PriceLabel != nil && strings.TrimSpace(*req.PriceLabel) != ""
	if hasPrice == hasLabel {
		return "exactly one of price or price_label is required"
	}
	if hasPrice && *req.Price < 0 {
		return "price must not be negative"
	}
	return ""
}

// Create adds a listing under the caller's vendor profile.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())
	if v.VendorID == "" {
		writeError(w, http.StatusForbidden, "vendor profile required")
		return
	}

	var req listingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	l, err := h.listings.Create(v.VendorID, req.Title, req.Description, req.Category, req.Type,
		req.Location, req.ImageKey, req.Price, req.PriceLabel, req.Negotiable)
	if err != nil {
		h.logger.Error("create listing", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// owned loads the listing and checks the caller may modify it.
func (h *ListingHandler) owned(w http.ResponseWriter, r *http.Request) *model.Listing {
	l, err := h.listings.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get listing", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return nil
	}
	v, _ := auth.FromContext(r.Context())
	if l.VendorID != v.VendorID && !v.Admin {
		writeError(w, http.StatusForbidden, "not your listing")
		return nil
	}
	return l
}

// Update replaces the mutable fields of an owned listing.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	l := h.owned(w, r)
	if l == nil {
		return
	}

	var req listingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.listings.Update(l.ID, req.Title, req.Description, req.Category, req.Type,
		req.Location, req.ImageKey, req.Price, req.PriceLabel, req.Negotiable)
	if err != nil {
		h.logger.Error("update listing", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus transitions an owned listing between active, sold and inactive.
func (h *ListingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	l := h.owned(w, r)
	if l == nil {
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	valid := false
	for _, s := range model.ListingStatuses {
		if req.Status == s {
			valid = true
		}
	}
	if !valid {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	updated, err := h.listings.SetStatus(l.ID, req.Status)
	if err != nil {
		h.logger.Error("set listing status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an owned listing.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	l := h.owned(w, r)
	if l == nil {
		return
	}
	if err := h.listings.Delete(l.ID); err != nil {
		h.logger.Error("delete listing", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories returns the distinct categories of active listings.
func (h *ListingHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.listings.Categories()
	if err != nil {
		h.logger.Error("list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": cats})
}
