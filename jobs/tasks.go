package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeVerificationEmail is the task type for account verification mail.
	TaskTypeVerificationEmail = "mail:verification"
)

// VerificationEmailPayload carries what the worker needs to send one
// verification email.
type VerificationEmailPayload struct {
	To    string `json:"to"`
	Token string `json:"token"`
}

// Mailer delivers a single email. The worker binary plugs in SMTP; tests
// plug in a recorder.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewVerificationEmailTask constructs an Asynq task.
func NewVerificationEmailTask(payload VerificationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeVerificationEmail, data), nil
}

// NewVerificationEmailHandler returns the Asynq handler that renders and
// sends the verification email through the given mailer.
func NewVerificationEmailHandler(mailer Mailer, baseURL string, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload VerificationEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		link := fmt.Sprintf("%s/auth/verify?token=%s", baseURL, url.QueryEscape(payload.Token))
		body := fmt.Sprintf("Welcome to Ripple!\n\nOpen the link below to verify your account:\n\n%s\n", link)
		if err := mailer.Send(ctx, payload.To, "Verify your Ripple account", body); err != nil {
			logger.Error("send verification email", slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		logger.Info("verification email sent", slog.String("to", payload.To))
		return nil
	}
}
