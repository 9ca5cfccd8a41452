package model

import "time"

// Vendor types.
const (
	VendorFood    = "food"
	VendorMall    = "mall"
	VendorStudent = "student"
	VendorOther   = "other"
)

// VendorTypes is the allow-list for the type filter.
var VendorTypes = []string{VendorFood, VendorMall, VendorStudent, VendorOther}

// Verification statuses. The legacy Verified boolean predates this enum and
// both coexist on stored records; use IsVerified instead of reading either
// field directly.
const (
	VerificationUnverified  = "unverified"
	VerificationRequested   = "requested"
	VerificationUnderReview = "under_review"
	VerificationVerified    = "verified"
	VerificationRejected    = "rejected"
	VerificationSuspended   = "suspended"
)

// VerificationStatuses is the allow-list for admin verification decisions.
var VerificationStatuses = []string{
	VerificationUnverified, VerificationRequested, VerificationUnderReview,
	VerificationVerified, VerificationRejected, VerificationSuspended,
}

// Vendor is a seller or service-provider account. Phone and WhatsApp are
// stored digits-only so dial and wa.me links can be built directly.
type Vendor struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	WhatsApp           string    `json:"whatsapp"`
	Location           string    `json:"location"`
	Type               string    `json:"type"`
	Verified           bool      `json:"-"`
	VerificationStatus string    `json:"verification_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsVerified reports whether the vendor counts as verified. Records written
// before the status enum existed carry only the legacy boolean, so either
// signal suffices.
func (v *Vendor) IsVerified() bool {
	return v.VerificationStatus == VerificationVerified || v.Verified
}
