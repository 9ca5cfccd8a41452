package model

import "time"

// Notification type constants
const (
	NotifVerificationDecision = "verification_decision"
	NotifMaterialDecision     = "material_decision"
)

// PushSubscription is one browser push endpoint registered by a user.
type PushSubscription struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
