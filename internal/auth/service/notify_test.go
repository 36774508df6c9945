package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string // "to|subject"
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestNotificationThrottling(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &recordingMailer{}

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &NotificationService{
		Store:  st,
		Mailer: mailer,
		Now:    fixedClock(start),
	}

	svc.Send(ctx, "alice@example.com", EmailTypeInvitation, "Invited", "<p>hi</p>")
	require.Equal(t, 1, mailer.count())

	// Immediate repeat of the same type is suppressed.
	svc.Send(ctx, "alice@example.com", EmailTypeInvitation, "Invited", "<p>hi</p>")
	require.Equal(t, 1, mailer.count())

	// A different type to the same address is its own bucket.
	svc.Send(ctx, "alice@example.com", EmailTypeVerification, "Verify", "<p>hi</p>")
	require.Equal(t, 2, mailer.count())

	// So is the same type to a different address.
	svc.Send(ctx, "bob@example.com", EmailTypeInvitation, "Invited", "<p>hi</p>")
	require.Equal(t, 3, mailer.count())

	// Once the interval passes, the original bucket sends again.
	svc.Now = fixedClock(start.Add(minSendInterval))
	svc.Send(ctx, "alice@example.com", EmailTypeInvitation, "Invited", "<p>hi</p>")
	require.Equal(t, 4, mailer.count())
}
