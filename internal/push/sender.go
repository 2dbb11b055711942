package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/yukikurage/orgtask-api/internal/logging"
)

// ErrDeliveryRejected is returned when the push endpoint answers with a
// non-success status.
var ErrDeliveryRejected = errors.New("push endpoint rejected the message")

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmRequest struct {
	RegistrationIDs []string        `json:"registration_ids"`
	Notification    fcmNotification `json:"notification"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// HTTPSender posts multicast messages to an FCM style HTTP endpoint. Calls go
// through a circuit breaker so an unavailable endpoint is not hammered.
type HTTPSender struct {
	client   *resty.Client
	endpoint string
	breaker  *gobreaker.CircuitBreaker
}

// NewHTTPSender builds a sender for endpoint authenticated with serverKey.
func NewHTTPSender(endpoint, serverKey string) *HTTPSender {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "key="+serverKey)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "push-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &HTTPSender{client: client, endpoint: endpoint, breaker: breaker}
}

// Send delivers one notification to every token.
func (s *HTTPSender) Send(ctx context.Context, tokens []string, title, body string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		var result fcmResponse
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(fcmRequest{
				RegistrationIDs: tokens,
				Notification:    fcmNotification{Title: title, Body: body},
			}).
			SetResult(&result).
			Post(s.endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to post push message: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: status %d", ErrDeliveryRejected, resp.StatusCode())
		}
		if result.Failure > 0 {
			logging.Logger.WithFields(logrus.Fields{
				"success": result.Success,
				"failure": result.Failure,
			}).Warn("push delivered partially")
		}
		return nil, nil
	})
	return err
}

// LogSender only logs messages. It stands in when no endpoint is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, tokens []string, title, body string) error {
	logging.Logger.WithFields(logrus.Fields{
		"tokens": len(tokens),
		"title":  title,
	}).Info("push: " + body)
	return nil
}
