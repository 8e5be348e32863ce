package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"coachhub/internal/adapters/email"
	"coachhub/internal/adapters/events"
	"coachhub/internal/adapters/sms"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/outbox"
)

// Event types published to the broker.
const (
	EventBookingCreated = "booking.created"
	EventUserSignedUp   = "user.signed_up"
)

// Notifier delivers email, SMS and broker events. A channel that fails is
// queued in the outbox and retried by the background processor, so callers
// never see delivery errors. Nil channels are skipped; a nil Notifier does nothing.
type Notifier struct {
	Email   email.Sender
	SMS     sms.Sender
	Events  events.Publisher
	Outbox  OutboxWriter
	BaseURL string
	Now     func() time.Time
}

// Contact is a notification recipient. Phone may be empty.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// BookingEvent is the broker payload for booking lifecycle events.
type BookingEvent struct {
	BookingID  string `json:"booking_id"`
	StudentID  string `json:"student_id"`
	CoachID    string `json:"coach_id"`
	ServiceID  string `json:"service_id"`
	CourtID    string `json:"court_id,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	PriceCents int    `json:"price_cents"`
	Reason     string `json:"reason,omitempty"`
}

// NewBookingEvent copies the public fields of b.
func NewBookingEvent(b booking.Booking) BookingEvent {
	return BookingEvent{
		BookingID:  b.ID,
		StudentID:  b.StudentID,
		CoachID:    b.CoachID,
		ServiceID:  b.ServiceID,
		CourtID:    b.CourtID,
		Date:       b.Date,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     b.Status,
		PriceCents: b.PriceCents,
		Reason:     b.CancelReason,
	}
}

// BookingStatusEvent names the event for a booking entering status.
func BookingStatusEvent(status string) string {
	return "booking." + status
}

// SendEmail delivers one message or queues it.
func (n *Notifier) SendEmail(ctx context.Context, to, subject, body string) {
	if n == nil || n.Email == nil || to == "" {
		return
	}
	req := email.SendRequest{To: []string{to}, Subject: subject, HTML: body}
	if _, err := n.Email.Send(ctx, req); err != nil {
		slog.Warn("notification_failed", "channel", "email", "subject", subject, "error", err)
		n.queue(ctx, outbox.ActionEmail, outbox.EmailPayload{To: req.To, Subject: subject, HTML: body})
	}
}

// SendSMS delivers a text message or queues it.
func (n *Notifier) SendSMS(ctx context.Context, to, body string) {
	if n == nil || n.SMS == nil || to == "" {
		return
	}
	if _, err := n.SMS.Send(ctx, to, body); err != nil {
		slog.Warn("notification_failed", "channel", "sms", "to", sms.Mask(to), "error", err)
		n.queue(ctx, outbox.ActionSMS, outbox.SMSPayload{To: to, Body: body})
	}
}

// Publish sends a broker event or queues it.
func (n *Notifier) Publish(ctx context.Context, eventType string, data any) {
	if n == nil || n.Events == nil {
		return
	}
	body, err := events.Encode(eventType, data, n.now())
	if err != nil {
		slog.Error("event_encode_failed", "event_type", eventType, "error", err)
		return
	}
	if err := n.Events.Publish(ctx, eventType, body); err != nil {
		slog.Warn("notification_failed", "channel", "event", "event_type", eventType, "error", err)
		n.queue(ctx, outbox.ActionEvent, outbox.EventPayload{RoutingKey: eventType, Body: json.RawMessage(body)})
	}
}

// VerificationLink builds the address a new user follows to confirm their email.
func (n *Notifier) VerificationLink(token string) string {
	base := ""
	if n != nil {
		base = strings.TrimRight(n.BaseURL, "/")
	}
	return base + "/verify?token=" + url.QueryEscape(token)
}

// SendVerification emails the verification link for token.
func (n *Notifier) SendVerification(ctx context.Context, to, token string) {
	if n == nil || token == "" {
		return
	}
	link := html.EscapeString(n.VerificationLink(token))
	body := fmt.Sprintf(`<p>Welcome to CoachHub.</p><p><a href="%s">Confirm your email address</a></p><p>The link expires in 24 hours.</p>`, link)
	n.SendEmail(ctx, to, "Confirm your CoachHub account", body)
}

// BookingChanged tells each recipient about b and publishes eventType.
func (n *Notifier) BookingChanged(ctx context.Context, eventType string, b booking.Booking, serviceTitle string, recipients ...Contact) {
	if n == nil {
		return
	}
	subject, line := bookingMessage(eventType, b, serviceTitle)
	for _, c := range recipients {
		body := fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", html.EscapeString(c.Name), html.EscapeString(line))
		if b.CancelReason != "" {
			body += fmt.Sprintf("<p>Reason: %s</p>", html.EscapeString(b.CancelReason))
		}
		n.SendEmail(ctx, c.Email, subject, body)
		n.SendSMS(ctx, c.Phone, "CoachHub: "+line)
	}
	n.Publish(ctx, eventType, NewBookingEvent(b))
}

func bookingMessage(eventType string, b booking.Booking, serviceTitle string) (string, string) {
	when := fmt.Sprintf("%s on %s at %s", serviceTitle, b.Date, b.StartTime)
	switch eventType {
	case EventBookingCreated:
		return "New booking request", "New booking request: " + when + "."
	case BookingStatusEvent(booking.StatusConfirmed):
		return "Booking confirmed", "Your booking is confirmed: " + when + "."
	case BookingStatusEvent(booking.StatusDeclined):
		return "Booking declined", "Your booking request was declined: " + when + "."
	case BookingStatusEvent(booking.StatusCancelled):
		return "Booking cancelled", "A booking was cancelled: " + when + "."
	case BookingStatusEvent(booking.StatusCompleted):
		return "Session completed", "Your session is complete: " + when + ". You can now leave a review."
	}
	return "Booking update", "Booking update: " + when + "."
}

func (n *Notifier) queue(ctx context.Context, actionType string, payload any) {
	if err := enqueue(ctx, n.Outbox, actionType, payload, n.now()); err != nil {
		slog.Error("outbox_enqueue_failed", "action_type", actionType, "error", err)
	}
}

func (n *Notifier) now() time.Time {
	return nowOr(n.Now)
}
