package push

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsAPI is the slice of the SNS client the channel uses.
type snsAPI interface {
	CreatePlatformEndpoint(ctx context.Context, params *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	DeleteEndpoint(ctx context.Context, params *sns.DeleteEndpointInput, optFns ...func(*sns.Options)) (*sns.DeleteEndpointOutput, error)
	SetEndpointAttributes(ctx context.Context, params *sns.SetEndpointAttributesInput, optFns ...func(*sns.Options)) (*sns.SetEndpointAttributesOutput, error)
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSChannel delivers APNS pushes through AWS SNS platform endpoints.
type SNSChannel struct {
	client         snsAPI
	applicationARN string
	env            Environment
}

// NewSNSChannel creates a channel bound to one SNS platform application. The
// environment is inferred from the application ARN: sandbox builds register
// against an APNS_SANDBOX application.
func NewSNSChannel(cfg aws.Config, applicationARN string) *SNSChannel {
	env := EnvProduction
	if strings.Contains(applicationARN, "APNS_SANDBOX") {
		env = EnvSandbox
	}
	return &SNSChannel{
		client:         sns.NewFromConfig(cfg),
		applicationARN: applicationARN,
		env:            env,
	}
}

func (c *SNSChannel) Environment() Environment { return c.env }

func (c *SNSChannel) CreateEndpoint(ctx context.Context, deviceID string, metadata string) (string, error) {
	input := &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(c.applicationARN),
		Token:                  aws.String(deviceID),
	}
	if metadata != "" {
		input.CustomUserData = aws.String(metadata)
	}
	out, err := c.client.CreatePlatformEndpoint(ctx, input)
	if err != nil {
		return "", &ProviderError{Op: "create endpoint", Err: err}
	}
	return aws.ToString(out.EndpointArn), nil
}

func (c *SNSChannel) DeleteEndpoint(ctx context.Context, endpointRef string) error {
	_, err := c.client.DeleteEndpoint(ctx, &sns.DeleteEndpointInput{
		EndpointArn: aws.String(endpointRef),
	})
	if err != nil {
		return &ProviderError{Op: "delete endpoint", Err: err}
	}
	return nil
}

func (c *SNSChannel) SetEnabled(ctx context.Context, endpointRef string, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	_, err := c.client.SetEndpointAttributes(ctx, &sns.SetEndpointAttributesInput{
		EndpointArn: aws.String(endpointRef),
		Attributes:  map[string]string{"Enabled": value},
	})
	if err != nil {
		return &ProviderError{Op: "set endpoint attributes", Err: err}
	}
	return nil
}

func (c *SNSChannel) Publish(ctx context.Context, endpointRef string, payload Payload) (string, error) {
	message, err := encodeAPNSMessage(c.env, payload)
	if err != nil {
		return "", &ProviderError{Op: "encode message", Err: err}
	}
	out, err := c.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(endpointRef),
		Message:          aws.String(message),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		var disabled *types.EndpointDisabledException
		if errors.As(err, &disabled) {
			return "", &EndpointDisabledError{EndpointRef: endpointRef}
		}
		return "", &ProviderError{Op: "publish", Err: err}
	}
	return aws.ToString(out.MessageId), nil
}

// encodeAPNSMessage renders the SNS multi-protocol message body. SNS expects
// the APNS payload under "APNS" or "APNS_SANDBOX" depending on which platform
// application the endpoint belongs to.
func encodeAPNSMessage(env Environment, payload Payload) (string, error) {
	aps := map[string]interface{}{
		"aps": map[string]interface{}{
			"alert":          payload.Alert,
			"badge":          payload.Badge,
			"sourceId":       payload.SourceID,
			"additionalData": payload.Data,
		},
	}
	apnsJSON, err := json.Marshal(aps)
	if err != nil {
		return "", err
	}

	apnsKey := "APNS"
	if env == EnvSandbox {
		apnsKey = "APNS_SANDBOX"
	}
	body := map[string]string{
		"default": payload.Alert,
		apnsKey:   string(apnsJSON),
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
