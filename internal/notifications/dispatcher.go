package notifications

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/push"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
)

// Dispatcher fans one notification out to every live target of a recipient.
// It is stateless: each Deliver call attempts all targets concurrently,
// counts the successful publishes, and confines every failure to its own
// branch.
type Dispatcher struct {
	channel        push.Channel
	records        repositories.NotificationRepository
	publishTimeout time.Duration
	log            zerolog.Logger
}

func NewDispatcher(channel push.Channel, records repositories.NotificationRepository, publishTimeout time.Duration, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		channel:        channel,
		records:        records,
		publishTimeout: publishTimeout,
		log:            log.With().Str("component", "dispatcher").Logger(),
	}
}

// Deliver sends the message to each target and returns how many publishes
// succeeded. Branch failures are logged and never abort the other branches.
func (d *Dispatcher) Deliver(ctx context.Context, targets []models.NotificationTarget, sourceID uint, message string, additionalData models.JSONMap) int {
	targets = dedupeByDevice(targets)

	var sent atomic.Int64
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target models.NotificationTarget) {
			defer wg.Done()
			if err := d.send(ctx, &target, sourceID, message, additionalData); err != nil {
				d.log.Warn().
					Uint("target_id", target.ID).
					Uint("user_id", target.UserID).
					Err(err).
					Msg("push delivery failed")
				return
			}
			sent.Add(1)
		}(target)
	}
	wg.Wait()

	return int(sent.Load())
}

// send attempts delivery to one target. A disabled endpoint is re-enabled
// and the publish retried exactly once; any other failure is terminal for
// the branch.
func (d *Dispatcher) send(ctx context.Context, target *models.NotificationTarget, sourceID uint, message string, additionalData models.JSONMap) error {
	if target.DeviceKind != models.DeviceIOS {
		return &UnsupportedDeviceError{Kind: target.DeviceKind}
	}

	payload := push.Payload{
		Alert:    message,
		SourceID: sourceID,
		Badge:    d.badgeCount(target.UserID),
		Data:     additionalData,
	}

	// One slow or broken endpoint must not stall fan-out to the others.
	sendCtx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	_, err := d.channel.Publish(sendCtx, target.EndpointRef, payload)
	if err == nil {
		return nil
	}
	if !push.IsEndpointDisabled(err) {
		return err
	}

	if err := d.channel.SetEnabled(sendCtx, target.EndpointRef, true); err != nil {
		return err
	}
	_, err = d.channel.Publish(sendCtx, target.EndpointRef, payload)
	return err
}

// badgeCount is the recipient's pending alert count across all kinds. A
// failed lookup falls back to 1 so the device still shows something pending.
func (d *Dispatcher) badgeCount(userID uint) int {
	count, err := d.records.CountUnacknowledged(userID)
	if err != nil {
		d.log.Debug().Uint("user_id", userID).Err(err).Msg("badge count lookup failed")
		return 1
	}
	return int(count)
}

// dedupeByDevice drops targets sharing a device id, keeping the first seen.
// A safety net for registrations the registry has not reconciled yet.
func dedupeByDevice(targets []models.NotificationTarget) []models.NotificationTarget {
	seen := make(map[string]bool, len(targets))
	deduped := targets[:0:0]
	for _, t := range targets {
		if seen[t.DeviceID] {
			continue
		}
		seen[t.DeviceID] = true
		deduped = append(deduped, t)
	}
	return deduped
}
