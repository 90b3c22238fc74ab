package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/common"
	"github.com/dmitrijs2005/projectshelf/internal/server/auth"
	"github.com/dmitrijs2005/projectshelf/internal/server/models"
	"github.com/dmitrijs2005/projectshelf/internal/server/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResetService(t *testing.T, m *fakeRepoManager, l *fakeLimiter, mail *fakeMailer) (*PasswordResetService, func() error) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	s := NewPasswordResetService(db, m, l, mail, testConfig())
	return s, mock.ExpectationsWereMet
}

func TestRequestReset_SendsLink(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := newFakeManager(existingUser(t, "password1"))
	l := &fakeLimiter{allow: true}
	mail := &fakeMailer{}
	s, met := newResetService(t, m, l, mail)
	s.now = func() time.Time { return now }

	require.NoError(t, s.RequestReset(context.Background(), "alice@example.com"))
	require.NoError(t, met())
	require.Len(t, mail.sent, 1)

	msg := mail.sent[0]
	assert.Equal(t, outbox.KindPasswordReset, msg.Kind)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "alice", msg.Username)
	assert.Equal(t, now.Add(time.Hour), msg.ExpiresAt)
	assert.Equal(t, []string{"alice@example.com"}, l.keys)

	link, err := url.Parse(msg.Link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", link.Path)
	token := link.Query().Get("token")
	assert.Len(t, token, 2*auth.ResetTokenBytes)

	stored, ok := m.r.byHash[auth.HashResetToken(token)]
	require.True(t, ok, "reset stored by token hash")
	assert.Equal(t, "u1", stored.UserID)
}

func TestRequestReset_ReplacesPending(t *testing.T) {
	m := newFakeManager(existingUser(t, "password1"))
	m.r.byHash["oldhash"] = &models.PasswordReset{UserID: "u1", TokenHash: "oldhash"}
	s, _ := newResetService(t, m, &fakeLimiter{allow: true}, &fakeMailer{})

	require.NoError(t, s.RequestReset(context.Background(), "alice@example.com"))
	assert.NotContains(t, m.r.byHash, "oldhash")
	assert.Len(t, m.r.byHash, 1)
}

func TestRequestReset_UnknownEmailIsSilent(t *testing.T) {
	db, _ := newSQLMockDB(t)
	mail := &fakeMailer{}
	s := NewPasswordResetService(db, newFakeManager(), &fakeLimiter{allow: true}, mail, testConfig())

	require.NoError(t, s.RequestReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, mail.sent)
}

func TestRequestReset_Errors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	m := newFakeManager(existingUser(t, "password1"))

	s := NewPasswordResetService(db, m, &fakeLimiter{allow: true}, &fakeMailer{}, testConfig())
	err := s.RequestReset(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, common.ErrorValidation)

	s = NewPasswordResetService(db, m, &fakeLimiter{allow: false}, &fakeMailer{}, testConfig())
	err = s.RequestReset(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, common.ErrorRateLimited)

	s = NewPasswordResetService(db, m, &fakeLimiter{err: errBoom{}}, &fakeMailer{}, testConfig())
	err = s.RequestReset(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, common.ErrorDelivery)
}

func TestRequestReset_MailerFails(t *testing.T) {
	m := newFakeManager(existingUser(t, "password1"))
	s, _ := newResetService(t, m, &fakeLimiter{allow: true}, &fakeMailer{err: errBoom{}})

	err := s.RequestReset(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, common.ErrorDelivery)
	assert.Contains(t, err.Error(), "boom")
}

func TestRequestReset_StoreFails(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := newFakeManager(existingUser(t, "password1"))
	m.r.createErr = errBoom{}
	mail := &fakeMailer{}
	s := NewPasswordResetService(db, m, &fakeLimiter{allow: true}, mail, testConfig())

	err := s.RequestReset(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, mail.sent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_Success(t *testing.T) {
	m := newFakeManager(existingUser(t, "password1"))
	m.r.byHash[auth.HashResetToken("tok")] = &models.PasswordReset{
		UserID:    "u1",
		TokenHash: auth.HashResetToken("tok"),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	m.t.tokens["rt"] = &models.RefreshToken{UserID: "u1", Token: "rt"}
	s, met := newResetService(t, m, &fakeLimiter{}, &fakeMailer{})

	require.NoError(t, s.ResetPassword(context.Background(), "tok", "new-password"))
	require.NoError(t, met())
	assert.True(t, auth.CheckPassword(m.u.passwords["u1"], "new-password"))
	assert.Empty(t, m.r.byHash)
	assert.Empty(t, m.t.tokens)

	err := s.ResetPassword(context.Background(), "tok", "another-password")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestResetPassword_Errors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	m := newFakeManager(existingUser(t, "password1"))
	m.r.byHash[auth.HashResetToken("old")] = &models.PasswordReset{
		UserID:    "u1",
		TokenHash: auth.HashResetToken("old"),
		ExpiresAt: time.Now().Add(-time.Second),
	}
	m.r.byHash[auth.HashResetToken("fresh")] = &models.PasswordReset{
		UserID:    "u1",
		TokenHash: auth.HashResetToken("fresh"),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s := NewPasswordResetService(db, m, &fakeLimiter{}, &fakeMailer{}, testConfig())

	assert.ErrorIs(t, s.ResetPassword(context.Background(), "", "new-password"), common.ErrInvalidToken)
	assert.ErrorIs(t, s.ResetPassword(context.Background(), "nope", "new-password"), common.ErrInvalidToken)
	assert.ErrorIs(t, s.ResetPassword(context.Background(), "old", "new-password"), common.ErrResetTokenExpired)
	assert.ErrorIs(t, s.ResetPassword(context.Background(), "fresh", "short"), common.ErrorValidation)

	m.r.findErr = errBoom{}
	assert.ErrorIs(t, s.ResetPassword(context.Background(), "fresh", "new-password"), common.ErrorInternal)
}

func TestResetLink(t *testing.T) {
	s := &PasswordResetService{resetURL: "http://x.test/reset"}
	assert.Equal(t, "http://x.test/reset?token=abc", s.resetLink("abc"))

	s.resetURL = "http://x.test/reset?lang=en"
	assert.Equal(t, "http://x.test/reset?lang=en&token=abc", s.resetLink("abc"))
}
