package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"catering-backend/internal/mailer"
	"catering-backend/internal/model"
	"catering-backend/internal/repository"

	"github.com/google/uuid"
)

// Event is an outbound notification event. Domain services enqueue events
// only after their transaction has committed, so a failed or slow
// notification can never roll back a domain mutation.
type Event struct {
	Type       string
	Recipients []model.User
	RequestID  *uuid.UUID
	InvoiceID  *uuid.UUID
	PaymentID  *uuid.UUID
	Data       map[string]interface{}
}

// NotificationPusher delivers a rendered notification to connected clients.
// Satisfied by the websocket hub.
type NotificationPusher interface {
	SendToUser(userID string, payload []byte)
}

type NotificationResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	RequestID   *string `json:"request_id"`
	InvoiceID   *string `json:"invoice_id"`
	PaymentID   *string `json:"payment_id"`
	IsRead      bool    `json:"is_read"`
	EmailSent   bool    `json:"email_sent"`
	EmailSentAt *string `json:"email_sent_at"`
	CreatedAt   string  `json:"created_at"`
}

// NotificationService is the dispatcher plus the user-facing inbox surface.
type NotificationService interface {
	Enqueue(event Event)
	Dispatch(ctx context.Context, event Event)
	Run()
	Stop()

	ListForUser(ctx context.Context, userID string, page, limit int) ([]NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
	CleanupRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	mail             mailer.Mailer
	pusher           NotificationPusher
	queue            chan Event
	done             chan struct{}
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	mail mailer.Mailer,
	pusher NotificationPusher,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		mail:             mail,
		pusher:           pusher,
		queue:            make(chan Event, 256),
		done:             make(chan struct{}),
	}
}

// Enqueue hands the event to the dispatch loop. Call only after the domain
// transaction has committed.
func (s *notificationService) Enqueue(event Event) {
	select {
	case s.queue <- event:
	default:
		// Queue full: dispatch inline rather than dropping the event.
		log.Printf("notification queue full, dispatching %s inline", event.Type)
		s.Dispatch(context.Background(), event)
	}
}

// Run consumes the event queue; start it in its own goroutine like the
// websocket hub.
func (s *notificationService) Run() {
	for {
		select {
		case event := <-s.queue:
			s.Dispatch(context.Background(), event)
		case <-s.done:
			return
		}
	}
}

func (s *notificationService) Stop() {
	close(s.done)
}

// Dispatch creates one in-app notification per recipient, sends the matching
// email best-effort and pushes the payload over the websocket hub. Failures
// are logged and swallowed: the committed domain mutation is the source of
// truth, never the notification side effects.
func (s *notificationService) Dispatch(ctx context.Context, event Event) {
	rendered, err := RenderEventMail(event.Type, event.Data)
	if err != nil {
		log.Printf("notification dispatch: %v", err)
		return
	}

	for _, recipient := range event.Recipients {
		n := model.Notification{
			UserID:    recipient.ID,
			Type:      event.Type,
			Title:     rendered.Subject,
			Message:   rendered.Text,
			RequestID: event.RequestID,
			InvoiceID: event.InvoiceID,
			PaymentID: event.PaymentID,
		}
		if err := s.notificationRepo.Create(ctx, &n); err != nil {
			log.Printf("notification dispatch: failed to store %s for user %s: %v", event.Type, recipient.ID, err)
			continue
		}

		if recipient.Email != "" {
			if err := s.mail.SendHTMLMail(ctx, recipient.Email, rendered.Subject, rendered.HTML, rendered.Text); err != nil {
				log.Printf("notification dispatch: email to %s failed: %v", recipient.Email, err)
			} else {
				now := time.Now()
				n.EmailSent = true
				n.EmailSentAt = &now
				if err := s.notificationRepo.Update(ctx, &n); err != nil {
					log.Printf("notification dispatch: failed to stamp email flag: %v", err)
				}
			}
		}

		if s.pusher != nil {
			if payload, err := json.Marshal(toNotificationResponse(n)); err == nil {
				s.pusher.SendToUser(recipient.ID.String(), payload)
			}
		}
	}
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, page, limit int) ([]NotificationResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}

	notifications, total, err := s.notificationRepo.ListByUser(ctx, uid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	result := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, toNotificationResponse(n))
	}
	return result, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, fmt.Errorf("invalid user id: %w", err)
	}
	return s.notificationRepo.CountUnread(ctx, uid)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	nid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.notificationRepo.MarkRead(ctx, nid, uid)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.notificationRepo.MarkAllRead(ctx, uid)
}

func (s *notificationService) Delete(ctx context.Context, id, userID string) error {
	nid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.notificationRepo.Delete(ctx, nid, uid)
}

// CleanupRead removes read notifications older than the retention window;
// wired to the gocron scheduler.
func (s *notificationService) CleanupRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.notificationRepo.DeleteReadBefore(ctx, cutoff)
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		EmailSent: n.EmailSent,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.RequestID != nil {
		s := n.RequestID.String()
		resp.RequestID = &s
	}
	if n.InvoiceID != nil {
		s := n.InvoiceID.String()
		resp.InvoiceID = &s
	}
	if n.PaymentID != nil {
		s := n.PaymentID.String()
		resp.PaymentID = &s
	}
	if n.EmailSentAt != nil {
		s := n.EmailSentAt.Format(time.RFC3339)
		resp.EmailSentAt = &s
	}
	return resp
}
