package notifications

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/push"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
)

// TargetRegistry reconciles device registrations to provider endpoints. It
// guarantees at most one live target per (user, credential) and retires
// targets whose device, credential, or push environment no longer matches.
type TargetRegistry struct {
	targets repositories.TargetRepository
	channel push.Channel
	log     zerolog.Logger
}

func NewTargetRegistry(targets repositories.TargetRepository, channel push.Channel, log zerolog.Logger) *TargetRegistry {
	return &TargetRegistry{
		targets: targets,
		channel: channel,
		log:     log.With().Str("component", "target_registry").Logger(),
	}
}

// Register binds a device to the user's current login credential, retiring
// any targets the new registration makes obsolete. Obsolete rows are removed
// locally only; their provider endpoints are left to the provider's own
// garbage collection.
func (r *TargetRegistry) Register(ctx context.Context, deviceID string, deviceKind models.DeviceKind, user *models.User, credentialID string) (*models.NotificationTarget, error) {
	if deviceID == "" {
		return nil, &ValidationError{Reason: "device id is required"}
	}
	if deviceKind != models.DeviceIOS {
		return nil, &UnsupportedDeviceError{Kind: deviceKind}
	}

	existing, err := r.targets.FindByDeviceOrCredential(deviceID, credentialID)
	if err != nil {
		return nil, fmt.Errorf("querying notification targets: %w", err)
	}
	if len(existing) == 0 {
		return r.createTarget(ctx, deviceID, deviceKind, user, credentialID)
	}

	keep, obsolete := r.partition(existing, deviceID, credentialID)
	if len(obsolete) > 0 {
		ids := make([]uint, len(obsolete))
		for i, t := range obsolete {
			ids[i] = t.ID
		}
		if err := r.targets.DeleteByIDs(ids); err != nil {
			return nil, fmt.Errorf("removing obsolete notification targets: %w", err)
		}
		r.log.Debug().
			Uint("user_id", user.ID).
			Int("removed", len(obsolete)).
			Msg("retired obsolete notification targets")
	}

	// Everything matching this registration was obsolete; register fresh.
	if len(keep) == 0 {
		return r.createTarget(ctx, deviceID, deviceKind, user, credentialID)
	}
	return &keep[0], nil
}

// partition splits candidate targets into those still valid for this
// registration and those made obsolete by it. A target is obsolete if its
// device changed, if another credential claimed the device, or if its iOS
// endpoint was created against the other APNS environment. The environment
// check lets testers switch between sandbox and production builds cleanly.
func (r *TargetRegistry) partition(targets []models.NotificationTarget, deviceID, credentialID string) (keep, obsolete []models.NotificationTarget) {
	for _, t := range targets {
		switch {
		case t.DeviceID != deviceID:
			obsolete = append(obsolete, t)
		case t.CredentialID != credentialID:
			// only one credential may bind a device
			obsolete = append(obsolete, t)
		case t.DeviceKind == models.DeviceIOS && push.EndpointEnvironment(t.EndpointRef) != r.channel.Environment():
			obsolete = append(obsolete, t)
		default:
			keep = append(keep, t)
		}
	}
	return keep, obsolete
}

func (r *TargetRegistry) createTarget(ctx context.Context, deviceID string, deviceKind models.DeviceKind, user *models.User, credentialID string) (*models.NotificationTarget, error) {
	endpointRef, err := r.channel.CreateEndpoint(ctx, deviceID, "")
	if err != nil {
		return nil, err
	}

	target := &models.NotificationTarget{
		UserID:       user.ID,
		CredentialID: credentialID,
		DeviceKind:   deviceKind,
		DeviceID:     deviceID,
		EndpointRef:  endpointRef,
	}
	if err := r.targets.Create(target); err != nil {
		return nil, fmt.Errorf("creating notification target: %w", err)
	}
	return target, nil
}

// Unregister removes the target bound to a credential, deleting its provider
// endpoint first. A credential with no target is a no-op.
func (r *TargetRegistry) Unregister(ctx context.Context, credentialID string) error {
	target, err := r.targets.FindByCredential(credentialID)
	if err != nil {
		return fmt.Errorf("querying notification target: %w", err)
	}
	if target == nil {
		return nil
	}

	if err := r.channel.DeleteEndpoint(ctx, target.EndpointRef); err != nil {
		return err
	}
	if err := r.targets.DeleteByIDs([]uint{target.ID}); err != nil {
		return fmt.Errorf("deleting notification target: %w", err)
	}
	return nil
}

// UpdatePreferences replaces the set of kinds a credential's device wants to
// receive. Writes are skipped when the set is unchanged.
func (r *TargetRegistry) UpdatePreferences(credentialID string, desired models.KindList) error {
	target, err := r.targets.FindByCredential(credentialID)
	if err != nil {
		return fmt.Errorf("querying notification target: %w", err)
	}
	if target == nil {
		return ErrNoTarget
	}

	if target.DesiredKinds.Equal(desired) {
		return nil
	}
	target.DesiredKinds = desired
	if err := r.targets.Save(target); err != nil {
		return fmt.Errorf("saving notification preferences: %w", err)
	}
	return nil
}
