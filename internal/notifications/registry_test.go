package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/push"
)

func newTestRegistry(env push.Environment) (*TargetRegistry, *memTargetStore, *fakeChannel) {
	targets := newMemTargetStore()
	channel := newFakeChannel(env)
	return NewTargetRegistry(targets, channel, zerolog.Nop()), targets, channel
}

func TestRegisterCreatesFreshTarget(t *testing.T) {
	t.Parallel()
	registry, targets, channel := newTestRegistry(push.EnvProduction)
	user := testUser(1, "alice", "en")

	target, err := registry.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if target.UserID != 1 || target.CredentialID != "cred-1" || target.DeviceID != "device-1" {
		t.Fatalf("unexpected target: %+v", target)
	}
	if len(channel.created) != 1 {
		t.Fatalf("created %d endpoints, want 1", len(channel.created))
	}
	if target.EndpointRef != channel.created[0] {
		t.Fatal("target must reference the created endpoint")
	}
	if got := len(targets.all()); got != 1 {
		t.Fatalf("stored %d targets, want 1", got)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	t.Parallel()
	registry, _, channel := newTestRegistry(push.EnvProduction)
	user := testUser(1, "alice", "en")

	_, err := registry.Register(context.Background(), "", models.DeviceIOS, user, "cred-1")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("empty device id: got %v, want ValidationError", err)
	}

	_, err = registry.Register(context.Background(), "device-1", models.DeviceKind("android"), user, "cred-1")
	var unsupportedErr *UnsupportedDeviceError
	if !errors.As(err, &unsupportedErr) {
		t.Fatalf("unsupported kind: got %v, want UnsupportedDeviceError", err)
	}

	if len(channel.created) != 0 {
		t.Fatal("rejected registrations must not create endpoints")
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	t.Parallel()
	registry, targets, channel := newTestRegistry(push.EnvProduction)
	user := testUser(1, "alice", "en")

	first, err := registry.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1")
	if err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	second, err := registry.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1")
	if err != nil {
		t.Fatalf("second Register error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("re-registering the same device and credential must keep the target")
	}
	if len(channel.created) != 1 {
		t.Fatalf("created %d endpoints, want 1", len(channel.created))
	}
	if got := len(targets.all()); got != 1 {
		t.Fatalf("stored %d targets, want 1", got)
	}
}

func TestRegisterSameCredentialNewDeviceRetiresOld(t *testing.T) {
	t.Parallel()
	registry, targets, _ := newTestRegistry(push.EnvProduction)
	user := testUser(1, "alice", "en")

	// Login session moves from device 1 to device 2.
	old, err := registry.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	fresh, err := registry.Register(context.Background(), "device-2", models.DeviceIOS, user, "cred-1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	remaining := targets.all()
	if len(remaining) != 1 {
		t.Fatalf("stored %d targets, want 1", len(remaining))
	}
	if remaining[0].ID == old.ID {
		t.Fatal("old device target must be retired")
	}
	if remaining[0].DeviceID != "device-2" || fresh.DeviceID != "device-2" {
		t.Fatal("surviving target must be the new device")
	}
}

func TestRegisterSameDeviceNewCredentialRetiresOld(t *testing.T) {
	t.Parallel()
	registry, targets, _ := newTestRegistry(push.EnvProduction)
	user := testUser(1, "alice", "en")

	// Same device, new login. Only the new credential may hold the device.
	if _, err := registry.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := registry.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-2"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	remaining := targets.all()
	if len(remaining) != 1 {
		t.Fatalf("stored %d targets, want 1", len(remaining))
	}
	if remaining[0].CredentialID != "cred-2" {
		t.Fatalf("surviving credential = %s, want cred-2", remaining[0].CredentialID)
	}
}

func TestRegisterRetiresEnvironmentMismatch(t *testing.T) {
	t.Parallel()
	targets := newMemTargetStore()
	user := testUser(1, "alice", "en")

	// Target registered against sandbox while the server ran a dev build.
	sandbox := NewTargetRegistry(targets, newFakeChannel(push.EnvSandbox), zerolog.Nop())
	old, err := sandbox.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1")
	if err != nil {
		t.Fatalf("sandbox Register error: %v", err)
	}
	if push.EndpointEnvironment(old.EndpointRef) != push.EnvSandbox {
		t.Fatalf("sandbox endpoint expected, got %s", old.EndpointRef)
	}

	// The production server retires it and registers fresh.
	prodChannel := newFakeChannel(push.EnvProduction)
	prod := NewTargetRegistry(targets, prodChannel, zerolog.Nop())
	fresh, err := prod.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1")
	if err != nil {
		t.Fatalf("production Register error: %v", err)
	}

	remaining := targets.all()
	if len(remaining) != 1 {
		t.Fatalf("stored %d targets, want 1", len(remaining))
	}
	if remaining[0].ID == old.ID {
		t.Fatal("sandbox target must be retired")
	}
	if push.EndpointEnvironment(fresh.EndpointRef) != push.EnvProduction {
		t.Fatalf("fresh endpoint must be production, got %s", fresh.EndpointRef)
	}
	if len(prodChannel.created) != 1 {
		t.Fatalf("production channel created %d endpoints, want 1", len(prodChannel.created))
	}
}

func TestUnregisterDeletesEndpointAndTarget(t *testing.T) {
	t.Parallel()
	registry, targets, channel := newTestRegistry(push.EnvProduction)
	user := testUser(1, "alice", "en")

	target, err := registry.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := registry.Unregister(context.Background(), "cred-1"); err != nil {
		t.Fatalf("Unregister error: %v", err)
	}
	if len(channel.deleted) != 1 || channel.deleted[0] != target.EndpointRef {
		t.Fatalf("deleted endpoints = %v, want [%s]", channel.deleted, target.EndpointRef)
	}
	if got := len(targets.all()); got != 0 {
		t.Fatalf("stored %d targets after unregister, want 0", got)
	}

	// Unknown credential is a no-op.
	if err := registry.Unregister(context.Background(), "cred-unknown"); err != nil {
		t.Fatalf("Unregister of unknown credential: %v", err)
	}
}

func TestUpdatePreferences(t *testing.T) {
	t.Parallel()
	registry, targets, _ := newTestRegistry(push.EnvProduction)
	user := testUser(1, "alice", "en")

	if err := registry.UpdatePreferences("cred-1", models.KindList{models.KindMomentLike}); err != ErrNoTarget {
		t.Fatalf("no target: got %v, want ErrNoTarget", err)
	}

	if _, err := registry.Register(context.Background(), "device-1", models.DeviceIOS, user, "cred-1"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	desired := models.KindList{models.KindMomentLike, models.KindUserFollowing}
	if err := registry.UpdatePreferences("cred-1", desired); err != nil {
		t.Fatalf("UpdatePreferences error: %v", err)
	}

	stored := targets.all()[0]
	if !stored.DesiredKinds.Equal(desired) {
		t.Fatalf("stored kinds = %v, want %v", stored.DesiredKinds, desired)
	}

	// Same set in a different order is a no-op.
	reordered := models.KindList{models.KindUserFollowing, models.KindMomentLike}
	if err := registry.UpdatePreferences("cred-1", reordered); err != nil {
		t.Fatalf("UpdatePreferences no-op error: %v", err)
	}
}
