package push

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Environment distinguishes the APNS sandbox from production. A device
// registered against one environment cannot be reached through the other, so
// the target registry retires endpoints whose environment no longer matches
// the server's.
type Environment string

const (
	EnvProduction Environment = "production"
	EnvSandbox    Environment = "sandbox"
)

// Payload is the provider-independent shape of one push message.
type Payload struct {
	Alert    string                 // localized message text
	SourceID uint                   // acting user
	Badge    int                    // recipient's pending alert count
	Data     map[string]interface{} // kind-specific structured data
}

// Channel is the push provider adapter consumed by the target registry and
// the delivery dispatcher.
type Channel interface {
	// CreateEndpoint registers a device token with the provider and returns
	// the provider-issued endpoint handle.
	CreateEndpoint(ctx context.Context, deviceID string, metadata string) (string, error)
	// DeleteEndpoint removes a provider endpoint.
	DeleteEndpoint(ctx context.Context, endpointRef string) error
	// SetEnabled flips the provider-side enabled flag on an endpoint.
	SetEnabled(ctx context.Context, endpointRef string, enabled bool) error
	// Publish delivers one payload and returns the provider message id.
	// A stale device token surfaces as an EndpointDisabledError.
	Publish(ctx context.Context, endpointRef string, payload Payload) (string, error)
	// Environment reports which APNS environment this channel targets.
	Environment() Environment
}

// ProviderError wraps a failure talking to the push provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("push provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// EndpointDisabledError reports that the provider considers an endpoint's
// device token stale. It is recoverable: the dispatcher re-enables the
// endpoint and retries the publish once.
type EndpointDisabledError struct {
	EndpointRef string
}

func (e *EndpointDisabledError) Error() string {
	return fmt.Sprintf("endpoint %s is disabled", e.EndpointRef)
}

// IsEndpointDisabled reports whether err is the recoverable disabled-endpoint
// failure class.
func IsEndpointDisabled(err error) bool {
	var disabled *EndpointDisabledError
	return errors.As(err, &disabled)
}

// EndpointEnvironment infers the APNS environment an endpoint handle was
// created in. SNS endpoint ARNs embed the platform application name, which
// contains "APNS_SANDBOX" for sandbox builds.
func EndpointEnvironment(endpointRef string) Environment {
	if strings.Contains(endpointRef, "SANDBOX") {
		return EnvSandbox
	}
	return EnvProduction
}
