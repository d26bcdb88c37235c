// Package notifications implements the notification core: the per-kind
// decision policies, the device target registry, and the push delivery
// dispatcher behind the single Send entry point features call after
// performing their own domain action.
package notifications

import (
	"time"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

// RateLimit caps push volume per (recipient, kind, subject): once the count
// of unacknowledged records inside the trailing window reaches the
// threshold, further pushes are suppressed. The in-app record is still
// written; only the interruption is throttled.
type RateLimit struct {
	Threshold int
	Window    time.Duration
}

// Policy decides whether one candidate notification is recorded and whether
// it is pushed, and renders its user-facing content. One implementation
// exists per notification kind.
type Policy interface {
	Kind() models.NotificationKind
	SourceID() uint
	TargetID() uint
	// SubjectKey scopes dedup and throttling to one subject (a moment).
	// Empty for kinds with no subject.
	SubjectKey() string
	// CanNotify is the hard precondition: users are never notified of their
	// own actions.
	CanNotify() bool
	// ShouldNotify reports whether a record should be written at all.
	ShouldNotify(records repositories.NotificationRepository) (bool, error)
	// ShouldSendPush reports whether the user should be interrupted with a
	// push. Evaluated after the record is written, so the count it sees
	// includes the record for this very notification.
	ShouldSendPush(records repositories.NotificationRepository, limit RateLimit) (bool, error)
	Message(tr *phrases.Translator) string
	AdditionalData() models.JSONMap
}

// basePolicy carries the fields every kind shares.
type basePolicy struct {
	sourceID   uint
	targetID   uint
	locale     string
	subjectKey string
}

func (p basePolicy) SourceID() uint     { return p.sourceID }
func (p basePolicy) TargetID() uint     { return p.targetID }
func (p basePolicy) SubjectKey() string { return p.subjectKey }

func (p basePolicy) CanNotify() bool {
	return p.sourceID != p.targetID
}

// shouldNotifyDefault is the shared dedup rule: record only if no prior
// notification exists for the same (source, target, kind[, subject]).
// Kind implementations call it explicitly rather than inherit it.
func shouldNotifyDefault(p Policy, records repositories.NotificationRepository) (bool, error) {
	if !p.CanNotify() {
		return false, nil
	}
	existing, err := records.FindDuplicate(p.SourceID(), p.TargetID(), p.Kind(), p.SubjectKey())
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

// shouldSendPushDefault is the shared throttle rule. The count includes the
// record written for the current notification, so allowing count == threshold
// means: push until threshold prior unacknowledged records exist within the
// window.
func shouldSendPushDefault(p Policy, records repositories.NotificationRepository, limit RateLimit) (bool, error) {
	since := time.Now().Add(-limit.Window)
	count, err := records.CountRecentUnacknowledged(p.TargetID(), p.Kind(), p.SubjectKey(), since)
	if err != nil {
		return false, err
	}
	return count <= int64(limit.Threshold), nil
}
