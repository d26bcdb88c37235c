package notifications

import (
	"errors"
	"fmt"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
)

// ErrNoTarget is returned when a preference update names a credential with no
// registered device.
var ErrNoTarget = errors.New("no notification target registered for credential")

// UnsupportedDeviceError reports a device kind the push pipeline cannot
// deliver to. During registration it surfaces to the caller; during delivery
// it fails only that target's branch.
type UnsupportedDeviceError struct {
	Kind models.DeviceKind
}

func (e *UnsupportedDeviceError) Error() string {
	return fmt.Sprintf("unrecognized device kind %q", e.Kind)
}

// ValidationError reports malformed registration input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
