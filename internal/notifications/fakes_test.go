package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/push"
)

// memRecordStore is an in-memory NotificationRepository for tests.
type memRecordStore struct {
	mu      sync.Mutex
	nextID  uint
	records []models.Notification
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{nextID: 1}
}

func (s *memRecordStore) Create(n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.nextID
	s.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.records = append(s.records, *n)
	return nil
}

func (s *memRecordStore) FindDuplicate(sourceID, targetID uint, kind models.NotificationKind, subjectKey string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		r := s.records[i]
		if r.SourceID != sourceID || r.TargetID != targetID || r.Kind != kind {
			continue
		}
		if subjectKey != "" && r.SubjectKey != subjectKey {
			continue
		}
		return &r, nil
	}
	return nil, nil
}

func (s *memRecordStore) CountRecentUnacknowledged(targetID uint, kind models.NotificationKind, subjectKey string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.records {
		if r.TargetID != targetID || r.Kind != kind || r.Acknowledged || r.CreatedAt.Before(since) {
			continue
		}
		if subjectKey != "" && r.SubjectKey != subjectKey {
			continue
		}
		count++
	}
	return count, nil
}

func (s *memRecordStore) ListBefore(targetID uint, before time.Time, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Notification
	for _, r := range s.records {
		if r.TargetID == targetID && r.CreatedAt.Before(before) {
			matched = append(matched, r)
		}
	}
	// newest first
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if matched[j].CreatedAt.After(matched[i].CreatedAt) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *memRecordStore) CountForUser(targetID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.records {
		if r.TargetID == targetID {
			count++
		}
	}
	return count, nil
}

func (s *memRecordStore) CountUnacknowledged(targetID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.records {
		if r.TargetID == targetID && !r.Acknowledged {
			count++
		}
	}
	return count, nil
}

func (s *memRecordStore) AcknowledgeAll(targetID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].TargetID == targetID {
			s.records[i].Acknowledged = true
		}
	}
	return nil
}

func (s *memRecordStore) DeleteBySubject(subjectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.SubjectKey != subjectKey {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *memRecordStore) DeleteByID(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memRecordStore) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.records))
	copy(out, s.records)
	return out
}

// memTargetStore is an in-memory TargetRepository for tests.
type memTargetStore struct {
	mu      sync.Mutex
	nextID  uint
	targets []models.NotificationTarget
}

func newMemTargetStore() *memTargetStore {
	return &memTargetStore{nextID: 1}
}

func (s *memTargetStore) Create(t *models.NotificationTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.targets = append(s.targets, *t)
	return nil
}

func (s *memTargetStore) Save(t *models.NotificationTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.targets {
		if s.targets[i].ID == t.ID {
			s.targets[i] = *t
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memTargetStore) FindByDeviceOrCredential(deviceID, credentialID string) ([]models.NotificationTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.NotificationTarget
	for _, t := range s.targets {
		if t.DeviceID == deviceID || t.CredentialID == credentialID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTargetStore) FindByCredential(credentialID string) (*models.NotificationTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.targets {
		if s.targets[i].CredentialID == credentialID {
			t := s.targets[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (s *memTargetStore) FindByUser(userID uint) ([]models.NotificationTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.NotificationTarget
	for _, t := range s.targets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTargetStore) DeleteByIDs(ids []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[uint]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.targets[:0]
	for _, t := range s.targets {
		if !drop[t.ID] {
			kept = append(kept, t)
		}
	}
	s.targets = kept
	return nil
}

func (s *memTargetStore) all() []models.NotificationTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NotificationTarget, len(s.targets))
	copy(out, s.targets)
	return out
}

// fakeChannel is a scriptable push.Channel. Publish fails with the error
// scripted for an endpoint until SetEnabled(true) clears it when the error is
// the disabled class.
type fakeChannel struct {
	mu sync.Mutex

	env push.Environment

	created   []string
	deleted   []string
	enabled   []string
	published map[string][]push.Payload

	createErr  error
	deleteErr  error
	enableErr  error
	publishErr map[string]error

	endpointSeq int
}

func newFakeChannel(env push.Environment) *fakeChannel {
	return &fakeChannel{
		env:        env,
		published:  make(map[string][]push.Payload),
		publishErr: make(map[string]error),
	}
}

func (c *fakeChannel) Environment() push.Environment { return c.env }

func (c *fakeChannel) CreateEndpoint(ctx context.Context, deviceID string, metadata string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return "", c.createErr
	}
	c.endpointSeq++
	suffix := ""
	if c.env == push.EnvSandbox {
		suffix = "_SANDBOX"
	}
	ref := fmt.Sprintf("arn:aws:sns:us-east-1:0:endpoint/APNS%s/app/%s-%d", suffix, deviceID, c.endpointSeq)
	c.created = append(c.created, ref)
	return ref, nil
}

func (c *fakeChannel) DeleteEndpoint(ctx context.Context, endpointRef string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, endpointRef)
	return nil
}

func (c *fakeChannel) SetEnabled(ctx context.Context, endpointRef string, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enableErr != nil {
		return c.enableErr
	}
	c.enabled = append(c.enabled, endpointRef)
	if enabled {
		if push.IsEndpointDisabled(c.publishErr[endpointRef]) {
			delete(c.publishErr, endpointRef)
		}
	}
	return nil
}

func (c *fakeChannel) Publish(ctx context.Context, endpointRef string, payload push.Payload) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.publishErr[endpointRef]; err != nil {
		return "", err
	}
	c.published[endpointRef] = append(c.published[endpointRef], payload)
	return fmt.Sprintf("msg-%d", len(c.published[endpointRef])), nil
}

func (c *fakeChannel) publishCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, msgs := range c.published {
		total += len(msgs)
	}
	return total
}

func (c *fakeChannel) enabledCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.enabled)
}
