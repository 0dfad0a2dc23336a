package notify

import (
	"context"
	"fmt"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// PushSender delivers a push notification to a single device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// ExpoSender sends pushes through the Expo push service.
type ExpoSender struct {
	client *expo.PushClient
}

// NewExpoSender constructs an ExpoSender with a default client.
func NewExpoSender() *ExpoSender {
	return &ExpoSender{client: expo.NewPushClient(nil)}
}

// Send publishes one push message, validating the token first.
func (s *ExpoSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	pushToken, err := expo.NewExponentPushToken(token)
	if err != nil {
		return fmt.Errorf("invalid push token: %w", err)
	}

	response, err := s.client.Publish(&expo.PushMessage{
		To:       []expo.ExponentPushToken{pushToken},
		Title:    title,
		Body:     body,
		Sound:    "default",
		Priority: expo.DefaultPriority,
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("publish push: %w", err)
	}
	if err := response.ValidateResponse(); err != nil {
		return fmt.Errorf("push rejected: %w", err)
	}
	return nil
}
