package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DeviceKind identifies the mobile platform a push target belongs to.
type DeviceKind string

const (
	DeviceIOS     DeviceKind = "ios"
	DeviceUnknown DeviceKind = "unknown"
)

// NotificationTarget is one live push destination: a device registration
// bound to a single login credential. Reconciliation keeps at most one row
// per (user, credential) and at most one per device per push environment.
type NotificationTarget struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"index"`
	CredentialID string     `json:"credential_id" gorm:"size:64;index"` // session token id binding this device to one login
	DeviceKind   DeviceKind `json:"device_kind" gorm:"size:20"`
	DeviceID     string     `json:"device_id" gorm:"size:255;index"` // opaque platform device token
	EndpointRef  string     `json:"endpoint_ref"`                    // provider-issued endpoint handle
	DesiredKinds KindList   `json:"desired_kinds,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// WantsKind reports whether the target opted into the given kind.
// An empty preference set means all kinds.
func (t *NotificationTarget) WantsKind(kind NotificationKind) bool {
	if len(t.DesiredKinds) == 0 {
		return true
	}
	for _, k := range t.DesiredKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// KindList stores a set of notification kinds as a JSON column.
type KindList []NotificationKind

// Equal reports whether both lists contain the same kinds, order-insensitive.
func (l KindList) Equal(other KindList) bool {
	if len(l) != len(other) {
		return false
	}
	seen := make(map[NotificationKind]bool, len(l))
	for _, k := range l {
		seen[k] = true
	}
	for _, k := range other {
		if !seen[k] {
			return false
		}
	}
	return true
}

// Value implements driver.Valuer for GORM.
func (l KindList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for GORM.
func (l *KindList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for KindList", value)
	}
	return json.Unmarshal(raw, l)
}

// RegisterDeviceRequest defines the request body for registering a device
// for push notifications.
type RegisterDeviceRequest struct {
	DeviceID   string `json:"device_id" validate:"required,min=1,max=255"`
	DeviceKind string `json:"device_kind" validate:"required,oneof=ios"`
}

// UpdatePreferencesRequest defines the request body for updating the set of
// notification kinds a device wants to receive.
type UpdatePreferencesRequest struct {
	DesiredKinds []string `json:"desired_kinds" validate:"required,dive,oneof=moment_like user_following moment_comment comment_mention headline_mention"`
}
