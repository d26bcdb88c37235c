package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/push"
)

func iosTarget(id uint, userID uint, deviceID, endpointRef string) models.NotificationTarget {
	return models.NotificationTarget{
		ID:          id,
		UserID:      userID,
		DeviceKind:  models.DeviceIOS,
		DeviceID:    deviceID,
		EndpointRef: endpointRef,
	}
}

func TestDeliverFansOutToAllTargets(t *testing.T) {
	t.Parallel()
	channel := newFakeChannel(push.EnvProduction)
	records := newMemRecordStore()
	d := NewDispatcher(channel, records, time.Second, zerolog.Nop())

	targets := []models.NotificationTarget{
		iosTarget(1, 2, "device-1", "arn:ep-1"),
		iosTarget(2, 2, "device-2", "arn:ep-2"),
		iosTarget(3, 2, "device-3", "arn:ep-3"),
	}

	sent := d.Deliver(context.Background(), targets, 1, "hello", models.JSONMap{"momentId": "m1"})
	if sent != 3 {
		t.Fatalf("sent = %d, want 3", sent)
	}
	if channel.publishCount() != 3 {
		t.Fatalf("published %d messages, want 3", channel.publishCount())
	}
}

func TestDeliverDeduplicatesByDevice(t *testing.T) {
	t.Parallel()
	channel := newFakeChannel(push.EnvProduction)
	d := NewDispatcher(channel, newMemRecordStore(), time.Second, zerolog.Nop())

	targets := []models.NotificationTarget{
		iosTarget(1, 2, "device-1", "arn:ep-1"),
		iosTarget(2, 2, "device-1", "arn:ep-stale"),
	}

	sent := d.Deliver(context.Background(), targets, 1, "hello", nil)
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(channel.published["arn:ep-1"]) != 1 || len(channel.published["arn:ep-stale"]) != 0 {
		t.Fatal("only the first target per device may receive the push")
	}
}

func TestDeliverRecoversDisabledEndpoint(t *testing.T) {
	t.Parallel()
	channel := newFakeChannel(push.EnvProduction)
	d := NewDispatcher(channel, newMemRecordStore(), time.Second, zerolog.Nop())

	channel.publishErr["arn:ep-1"] = &push.EndpointDisabledError{EndpointRef: "arn:ep-1"}

	targets := []models.NotificationTarget{iosTarget(1, 2, "device-1", "arn:ep-1")}
	sent := d.Deliver(context.Background(), targets, 1, "hello", nil)
	if sent != 1 {
		t.Fatalf("sent = %d, want 1 after re-enable and retry", sent)
	}
	if channel.enabledCount() != 1 {
		t.Fatalf("SetEnabled called %d times, want 1", channel.enabledCount())
	}
	if len(channel.published["arn:ep-1"]) != 1 {
		t.Fatalf("published %d messages, want 1", len(channel.published["arn:ep-1"]))
	}
}

func TestDeliverConfinesBranchFailures(t *testing.T) {
	t.Parallel()
	channel := newFakeChannel(push.EnvProduction)
	d := NewDispatcher(channel, newMemRecordStore(), time.Second, zerolog.Nop())

	// One endpoint is permanently broken; one target is a platform the
	// pipeline cannot deliver to. The healthy branch still goes out.
	channel.publishErr["arn:ep-broken"] = errors.New("throttled")
	unknown := models.NotificationTarget{
		ID:          3,
		UserID:      2,
		DeviceKind:  models.DeviceUnknown,
		DeviceID:    "device-3",
		EndpointRef: "arn:ep-3",
	}

	targets := []models.NotificationTarget{
		iosTarget(1, 2, "device-1", "arn:ep-broken"),
		iosTarget(2, 2, "device-2", "arn:ep-2"),
		unknown,
	}

	sent := d.Deliver(context.Background(), targets, 1, "hello", nil)
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(channel.published["arn:ep-2"]) != 1 {
		t.Fatal("healthy branch must still publish")
	}
	if len(channel.published["arn:ep-3"]) != 0 {
		t.Fatal("unsupported device kind must not publish")
	}
}

func TestDeliverBadgeCount(t *testing.T) {
	t.Parallel()
	channel := newFakeChannel(push.EnvProduction)
	records := newMemRecordStore()
	d := NewDispatcher(channel, records, time.Second, zerolog.Nop())

	// Recipient has three pending alerts across kinds.
	records.Create(&models.Notification{TargetID: 2, Kind: models.KindMomentLike})
	records.Create(&models.Notification{TargetID: 2, Kind: models.KindUserFollowing})
	records.Create(&models.Notification{TargetID: 2, Kind: models.KindMomentComment})
	records.Create(&models.Notification{TargetID: 2, Kind: models.KindMomentLike, Acknowledged: true})

	targets := []models.NotificationTarget{iosTarget(1, 2, "device-1", "arn:ep-1")}
	if sent := d.Deliver(context.Background(), targets, 1, "hello", nil); sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	payload := channel.published["arn:ep-1"][0]
	if payload.Badge != 3 {
		t.Fatalf("badge = %d, want 3", payload.Badge)
	}
	if payload.SourceID != 1 || payload.Alert != "hello" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
