package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type recorderMailer struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (r *recorderMailer) Send(ctx context.Context, to, subject, body string) error {
	if r.err != nil {
		return r.err
	}
	r.to = append(r.to, to)
	r.subject = append(r.subject, subject)
	r.body = append(r.body, body)
	return nil
}

func TestVerificationEmailHandler(t *testing.T) {
	mailer := &recorderMailer{}
	handler := NewVerificationEmailHandler(mailer, "http://localhost:8080", nil)

	task, err := NewVerificationEmailTask(VerificationEmailPayload{To: "dana@example.com", Token: "tok-123"})
	require.NoError(t, err)
	require.Equal(t, TaskTypeVerificationEmail, task.Type())

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, []string{"dana@example.com"}, mailer.to)
	require.Contains(t, mailer.body[0], "http://localhost:8080/auth/verify?token=tok-123")
}

func TestVerificationEmailHandlerEscapesToken(t *testing.T) {
	mailer := &recorderMailer{}
	handler := NewVerificationEmailHandler(mailer, "http://localhost:8080", nil)

	task, err := NewVerificationEmailTask(VerificationEmailPayload{To: "dana@example.com", Token: "a b&c"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Contains(t, mailer.body[0], "token=a+b%26c")
}

func TestVerificationEmailHandlerSkipsBadPayload(t *testing.T) {
	mailer := &recorderMailer{}
	handler := NewVerificationEmailHandler(mailer, "http://localhost:8080", nil)

	err := handler(context.Background(), asynq.NewTask(TaskTypeVerificationEmail, []byte("not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, mailer.to)
}

func TestVerificationEmailHandlerPropagatesSendError(t *testing.T) {
	sendErr := errors.New("smtp down")
	handler := NewVerificationEmailHandler(&recorderMailer{err: sendErr}, "http://localhost:8080", nil)

	task, err := NewVerificationEmailTask(VerificationEmailPayload{To: "dana@example.com", Token: "tok"})
	require.NoError(t, err)

	require.ErrorIs(t, handler(context.Background(), task), sendErr)
}
