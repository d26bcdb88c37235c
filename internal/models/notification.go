package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationKind is the closed set of notification categories.
type NotificationKind string

const (
	KindMomentLike      NotificationKind = "moment_like"      // a user liked your moment
	KindUserFollowing   NotificationKind = "user_following"   // a user is now following you
	KindMomentComment   NotificationKind = "moment_comment"   // a user commented on your moment
	KindCommentMention  NotificationKind = "comment_mention"  // you were mentioned in a comment
	KindHeadlineMention NotificationKind = "headline_mention" // you were mentioned in a moment headline
)

// KnownKinds lists every kind the system can raise.
var KnownKinds = []NotificationKind{
	KindMomentLike,
	KindUserFollowing,
	KindMomentComment,
	KindCommentMention,
	KindHeadlineMention,
}

// Notification is one raised notification, persisted for the in-app alert
// feed and for dedup/rate-limit queries. Rows are append-only; only the
// Acknowledged flag is ever mutated.
type Notification struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	SourceID       uint             `json:"source_id" gorm:"index"` // actor
	TargetID       uint             `json:"target_id" gorm:"index"` // recipient
	Kind           NotificationKind `json:"kind" gorm:"size:30;index"`
	SubjectKey     string           `json:"subject_key,omitempty" gorm:"size:64;index"` // e.g. moment id; empty when the kind has no subject
	Message        string           `json:"message"`
	AdditionalData JSONMap          `json:"additional_data,omitempty" gorm:"type:jsonb"`
	Acknowledged   bool             `json:"acknowledged" gorm:"default:false;index"`
	CreatedAt      time.Time        `json:"created_at" gorm:"index"`
}

// JSONMap stores structured notification payload data as a JSON column.
type JSONMap map[string]interface{}

// Value implements driver.Valuer for GORM.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for GORM.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONMap", value)
	}
	return json.Unmarshal(raw, m)
}
