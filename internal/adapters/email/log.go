package email

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogSender logs messages instead of delivering them and keeps the most
// recent ones so development tools and tests can read verification links.
type LogSender struct {
	mu   sync.Mutex
	sent []SendRequest
	keep int
}

// NewLogSender creates a sender that remembers the last keep messages.
func NewLogSender(keep int) *LogSender {
	if keep <= 0 {
		keep = 50
	}
	return &LogSender{keep: keep}
}

// Send logs the email but does not deliver it.
func (s *LogSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("email_logged", "to", req.To, "subject", req.Subject)
	s.mu.Lock()
	s.sent = append(s.sent, req)
	if len(s.sent) > s.keep {
		s.sent = s.sent[len(s.sent)-s.keep:]
	}
	s.mu.Unlock()
	return SendResult{MessageID: "log-" + uuid.NewString(), SentAt: time.Now()}, nil
}

// SendBatch logs each message.
func (s *LogSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		r, _ := s.Send(ctx, req)
		results = append(results, r)
	}
	return results, nil
}

// Sent returns a copy of the remembered messages, oldest first.
func (s *LogSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.sent...)
}
