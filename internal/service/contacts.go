package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/model"
)

// Contact messages are kept as one JSON array in the private "contacts"
// document, oldest first, in the order they arrived. Every change goes
// through update, so each new message, status change or delete leaves a
// backup of the whole inbox like any other save.

// SubmitContact stores a message sent through the public contact form.
// Id, timestamp and status are always assigned here, whatever the sender
// put in them.
func (s *ContentService) SubmitContact(ctx context.Context, msg model.ContactMessage) (*model.ContactMessage, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Message = strings.TrimSpace(msg.Message)
	msg.ID = xid.New().String()
	msg.SubmittedAt = s.now().UTC().Format(time.RFC3339)
	msg.Status = model.ContactUnread

	// Validate before touching the store so a rejected message writes nothing.
	if err := content.CheckContact(s.validate, msg); err != nil {
		return nil, err
	}

	_, err := s.updateContacts(ctx, func(msgs []model.ContactMessage) ([]model.ContactMessage, error) {
		return append(msgs, msg), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contact message received", slog.String("id", msg.ID))
	return &msg, nil
}

// ListContacts returns every stored message, newest first.
func (s *ContentService) ListContacts(ctx context.Context) ([]model.ContactMessage, error) {
	var msgs []model.ContactMessage
	if err := s.Decode(ctx, content.Contacts, &msgs); err != nil {
		return nil, err
	}
	out := make([]model.ContactMessage, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		out = append(out, msgs[i])
	}
	return out, nil
}

// UpdateContactStatus sets the status of one message. The admin inbox uses
// it to mark messages read or replied.
func (s *ContentService) UpdateContactStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	if err := s.validate.Var(status, "required,oneof=unread read replied"); err != nil {
		return nil, apperror.ValidationFailed("status", "status must be one of unread, read, replied")
	}

	var updated model.ContactMessage
	_, err := s.updateContacts(ctx, func(msgs []model.ContactMessage) ([]model.ContactMessage, error) {
		for i := range msgs {
			if msgs[i].ID == id {
				msgs[i].Status = status
				updated = msgs[i]
				return msgs, nil
			}
		}
		return nil, apperror.NotFound("contact", id)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteContact removes one message for good; only the backups keep it.
func (s *ContentService) DeleteContact(ctx context.Context, id string) error {
	_, err := s.updateContacts(ctx, func(msgs []model.ContactMessage) ([]model.ContactMessage, error) {
		for i := range msgs {
			if msgs[i].ID == id {
				return append(msgs[:i], msgs[i+1:]...), nil
			}
		}
		return nil, apperror.NotFound("contact", id)
	})
	return err
}

// updateContacts decodes the inbox, applies fn and encodes the result.
// Returning an error from fn aborts the write.
func (s *ContentService) updateContacts(ctx context.Context, fn func([]model.ContactMessage) ([]model.ContactMessage, error)) ([]byte, error) {
	return s.update(ctx, content.Contacts, func(current []byte) ([]byte, error) {
		msgs := []model.ContactMessage{}
		if err := json.Unmarshal(current, &msgs); err != nil {
			return nil, fmt.Errorf("decoding stored contacts: %w", err)
		}
		next, err := fn(msgs)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []model.ContactMessage{}
		}
		return marshalJSON(next)
	})
}
