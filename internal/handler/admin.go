package handler

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jabumarket/jabumarket/internal/listquery"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/push"
	"github.com/jabumarket/jabumarket/internal/store"
)

type AdminHandler struct {
	listings  *store.ListingStore
	vendors   *store.VendorStore
	materials *store.MaterialStore
	users     *store.UserStore
	notifier  *push.Service
	logger    *slog.Logger
}

func NewAdminHandler(ls *store.ListingStore, vs *store.VendorStore, ms *store.MaterialStore, us *store.UserStore, notifier *push.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		listings:  ls,
		vendors:   vs,
		materials: ms,
		users:     us,
		notifier:  notifier,
		logger:    logger.With("component", "admin"),
	}
}

// PendingVendors lists vendors waiting for a verification decision.
func (h *AdminHandler) PendingVendors(w http.ResponseWriter, r *http.Request) {
	p := store.DirectoryDef.ParseParams(r.URL.Query())
	p.ShowHidden = true
	p.Extra = append(p.Extra, listquery.Cond{
		Expr: "verification_status IN (?, ?)",
		Args: []any{model.VerificationRequested, model.VerificationUnderReview},
	})

	page, err := h.vendors.List(r.Context(), p)
	if err != nil {
		h.logger.Error("list pending vendors", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, page)
}

type verificationDecisionRequest struct {
	Status string `json:"status"`
}

// DecideVerification applies an admin verification decision and notifies the
// vendor's devices.
func (h *AdminHandler) DecideVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationDecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	valid := false
	for _, s := range model.VerificationStatuses {
		if req.Status == s {
			valid = true
		}
	}
	if !valid {
		writeError(w, http.StatusBadRequest, "invalid verification status")
		return
	}

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

	updated, err := h.vendors.SetVerificationStatus(v.ID, req.Status)
	if err != nil {
		h.logger.Error("set verification status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.notifier.NotifyUser(v.UserID, push.VerificationDecision(req.Status))
	writeJSON(w, http.StatusOK, updated)
}

// PendingMaterials lists uploads waiting for moderation.
func (h *AdminHandler) PendingMaterials(w http.ResponseWriter, r *http.Request) {
	p := store.LibraryDef.ParseParams(r.URL.Query())
	p.ShowHidden = true
	p.Extra = append(p.Extra, listquery.Cond{Expr: "approved = 0"})

	page, err := h.materials.List(r.Context(), p)
	if err != nil {
		h.logger.Error("list pending materials", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, page)
}

type materialDecisionRequest struct {
	Approved bool `json:"approved"`
}

// DecideMaterial approves or rejects an upload and notifies the uploader.
func (h *AdminHandler) DecideMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialDecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.materials.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get material", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	updated, err := h.materials.SetApproved(m.ID, req.Approved)
	if err != nil {
		h.logger.Error("set material approved", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.notifier.NotifyUser(m.UploaderID, push.MaterialDecision(m.Title, req.Approved))
	writeJSON(w, http.StatusOK, updated)
}

type materialBadgesRequest struct {
	Verified bool `json:"verified"`
	Featured bool `json:"featured"`
}

// SetMaterialBadges toggles the verified and featured badges.
func (h *AdminHandler) SetMaterialBadges(w http.ResponseWriter, r *http.Request) {
	var req materialBadgesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.materials.SetFlags(r.PathValue("id"), req.Verified, req.Featured)
	if err != nil {
		h.logger.Error("set material badges", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// TakeDownListing forces a listing to inactive.
func (h *AdminHandler) TakeDownListing(w http.ResponseWriter, r *http.Request) {
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
	updated, err := h.listings.SetStatus(l.ID, model.ListingInactive)
	if err != nil {
		h.logger.Error("take down listing", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.logger.Info("listing taken down", "listing_id", l.ID, "vendor_id", l.VendorID)
	writeJSON(w, http.StatusOK, updated)
}

// GrantAdmin adds a user to the admins table.
func (h *AdminHandler) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err := h.users.GrantAdmin(u.ID); err != nil {
		h.logger.Error("grant admin", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportListingsCSV streams every listing, all statuses included, as CSV.
// Pages are fetched through the same query engine as Explore and merged by
// id, so rows shifting between pages mid-export never duplicate.
func (h *AdminHandler) ExportListingsCSV(w http.ResponseWriter, r *http.Request) {
	p := store.ExploreDef.ParseParams(r.URL.Query())
	p.ShowHidden = true
	p.Page = 1

	var all []model.Listing
	for {
		page, err := h.listings.List(r.Context(), p)
		if err != nil {
			h.logger.Error("export listings", "page", p.Page, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		all = listquery.MergeByID(all, page.Rows, func(l model.Listing) string { return l.ID })
		if p.Page >= page.TotalPages {
			break
		}
		p.Page++
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "listings-"+time.Now().UTC().Format("2006-01-02")+".csv"))

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "vendor_id", "title", "category", "type", "price", "price_label", "negotiable", "status", "location", "created_at"})
	for _, l := range all {
		price := ""
		if l.Price != nil {
			price = strconv.FormatFloat(*l.Price, 'f', 2, 64)
		}
		label := ""
		if l.PriceLabel != nil {
			label = *l.PriceLabel
		}
		cw.Write([]string{
			l.ID, l.VendorID, l.Title, l.Category, l.Type,
			price, label, strconv.FormatBool(l.Negotiable),
			l.Status, l.Location, l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("write csv", "error", err)
	}
}
