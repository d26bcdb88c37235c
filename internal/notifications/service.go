package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
	"github.com/isomdurm/phenom-backend-sub000/pkg/background"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

// AlertPage is one page of a user's alert feed, newest first. Cursor is the
// created-at of the oldest alert returned in unix milliseconds; pass it back
// as since to fetch the next page. When the page is empty the cursor echoes
// the request's since so pagination stays stable at the end of the feed.
type AlertPage struct {
	Results    []models.Notification `json:"results"`
	Cursor     int64                 `json:"cursor"`
	TotalCount int64                 `json:"totalCount"`
}

// Service is the notification core's entry point. Features raise candidate
// notifications through Send after performing their own domain action; the
// service runs the policy pipeline, persists the record, and fans the push
// out to the recipient's devices.
type Service struct {
	records    repositories.NotificationRepository
	targets    repositories.TargetRepository
	registry   *TargetRegistry
	dispatcher *Dispatcher
	translator *phrases.Translator
	limit      RateLimit
	pageSize   int
	tasks      *background.Runner
	log        zerolog.Logger
}

func NewService(
	records repositories.NotificationRepository,
	targets repositories.TargetRepository,
	registry *TargetRegistry,
	dispatcher *Dispatcher,
	translator *phrases.Translator,
	limit RateLimit,
	pageSize int,
	tasks *background.Runner,
	log zerolog.Logger,
) *Service {
	return &Service{
		records:    records,
		targets:    targets,
		registry:   registry,
		dispatcher: dispatcher,
		translator: translator,
		limit:      limit,
		pageSize:   pageSize,
		tasks:      tasks,
		log:        log.With().Str("component", "notifications").Logger(),
	}
}

// Send runs one candidate notification through the pipeline and returns the
// number of devices that received a push. A suppressed notification (self
// action, duplicate, or throttled) is not an error.
func (s *Service) Send(ctx context.Context, p Policy) (int, error) {
	if !p.CanNotify() {
		return 0, nil
	}

	notify, err := p.ShouldNotify(s.records)
	if err != nil {
		return 0, fmt.Errorf("evaluating notification: %w", err)
	}
	if !notify {
		return 0, nil
	}

	record := &models.Notification{
		SourceID:       p.SourceID(),
		TargetID:       p.TargetID(),
		Kind:           p.Kind(),
		SubjectKey:     p.SubjectKey(),
		Message:        p.Message(s.translator),
		AdditionalData: p.AdditionalData(),
	}
	if err := s.records.Create(record); err != nil {
		return 0, fmt.Errorf("recording notification: %w", err)
	}

	sendPush, err := p.ShouldSendPush(s.records, s.limit)
	if err != nil {
		return 0, fmt.Errorf("evaluating push throttle: %w", err)
	}
	if !sendPush {
		return 0, nil
	}

	targets, err := s.targets.FindByUser(p.TargetID())
	if err != nil {
		return 0, fmt.Errorf("querying notification targets: %w", err)
	}
	wanted := targets[:0:0]
	for _, t := range targets {
		if t.WantsKind(p.Kind()) {
			wanted = append(wanted, t)
		}
	}
	if len(wanted) == 0 {
		return 0, nil
	}

	sent := s.dispatcher.Deliver(ctx, wanted, p.SourceID(), record.Message, record.AdditionalData)
	s.log.Debug().
		Str("kind", string(p.Kind())).
		Uint("target_user", p.TargetID()).
		Int("sent", sent).
		Msg("notification delivered")
	return sent, nil
}

// SendAsync raises the notification on a background task so the caller's
// request does not wait on push delivery. The returned handle reports the
// outcome to callers that care; most ignore it.
func (s *Service) SendAsync(p Policy) *background.Task {
	return s.tasks.Go("notification:"+string(p.Kind()), func() error {
		_, err := s.Send(context.Background(), p)
		return err
	})
}

// ListAlerts returns one page of the user's alert feed older than since
// (unix milliseconds). A limit below one yields an empty page.
func (s *Service) ListAlerts(userID uint, since int64, limit int) (*AlertPage, error) {
	total, err := s.records.CountForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("counting alerts: %w", err)
	}

	page := &AlertPage{
		Results:    []models.Notification{},
		Cursor:     since,
		TotalCount: total,
	}
	if limit < 1 {
		return page, nil
	}
	if limit > s.pageSize {
		limit = s.pageSize
	}

	before := time.UnixMilli(since)
	results, err := s.records.ListBefore(userID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	if len(results) > 0 {
		page.Results = results
		page.Cursor = results[len(results)-1].CreatedAt.UnixMilli()
	}
	return page, nil
}

// AcknowledgeAlerts marks every pending alert for the user as seen, resetting
// the badge.
func (s *Service) AcknowledgeAlerts(userID uint) error {
	return s.records.AcknowledgeAll(userID)
}

// DeleteAlert removes a single alert from the user's feed.
func (s *Service) DeleteAlert(id uint) error {
	return s.records.DeleteByID(id)
}

// DeleteForSubject removes every alert raised for one subject. Called when
// the subject itself (a moment) is deleted.
func (s *Service) DeleteForSubject(subjectKey string) error {
	return s.records.DeleteBySubject(subjectKey)
}

// RegisterDevice binds the user's device to their current login credential.
func (s *Service) RegisterDevice(ctx context.Context, deviceID string, deviceKind models.DeviceKind, user *models.User, credentialID string) (*models.NotificationTarget, error) {
	return s.registry.Register(ctx, deviceID, deviceKind, user, credentialID)
}

// UnregisterDevice removes the device bound to the credential, if any.
func (s *Service) UnregisterDevice(ctx context.Context, credentialID string) error {
	return s.registry.Unregister(ctx, credentialID)
}

// UpdatePreferences replaces the kinds the credential's device wants pushed.
func (s *Service) UpdatePreferences(credentialID string, desired models.KindList) error {
	return s.registry.UpdatePreferences(credentialID, desired)
}
