package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
)

func validContact() model.ContactMessage {
	return model.ContactMessage{
		Name:    " Ada ",
		Email:   "ada@example.com",
		Subject: "Hello",
		Message: "Loved the blog.",
	}
}

func TestSubmitContact_AssignsServerFields(t *testing.T) {
	svc, _ := newTestContentService(t)
	in := validContact()
	in.ID = "client-chosen"
	in.Status = model.ContactReplied

	msg, err := svc.SubmitContact(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", msg.ID)
	assert.Len(t, msg.ID, 20)
	assert.Equal(t, model.ContactUnread, msg.Status)
	assert.Equal(t, "Ada", msg.Name)
	assert.Equal(t, "2025-03-14T09:00:00Z", msg.SubmittedAt)
}

func TestSubmitContact_Validation(t *testing.T) {
	svc, store := newTestContentService(t)

	bad := validContact()
	bad.Email = "not-an-email"
	_, err := svc.SubmitContact(context.Background(), bad)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	empty := validContact()
	empty.Message = "   "
	_, err = svc.SubmitContact(context.Background(), empty)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.Equal(t, 0, backupCount(t, store, "contacts"))
}

func TestContacts_Lifecycle(t *testing.T) {
	svc, _ := newTestContentService(t)
	ctx := context.Background()

	first, err := svc.SubmitContact(ctx, validContact())
	require.NoError(t, err)
	second, err := svc.SubmitContact(ctx, validContact())
	require.NoError(t, err)

	list, err := svc.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	updated, err := svc.UpdateContactStatus(ctx, first.ID, model.ContactRead)
	require.NoError(t, err)
	assert.Equal(t, model.ContactRead, updated.Status)

	_, err = svc.UpdateContactStatus(ctx, first.ID, "archived")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.UpdateContactStatus(ctx, "missing", model.ContactRead)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, svc.DeleteContact(ctx, second.ID))
	assert.ErrorIs(t, svc.DeleteContact(ctx, second.ID), apperror.ErrNotFound)

	list, err = svc.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.ContactRead, list[0].Status)
}
