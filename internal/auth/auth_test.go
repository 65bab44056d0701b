package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poqie/linkguard/internal/auth"
	"github.com/poqie/linkguard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignCookieValue(t *testing.T) {
	s := auth.NewSession("test-secret")
	accountID := "account-123"
	signed := s.SignCookieValue(accountID)

	parts := strings.SplitN(signed, ":", 2)
	assert.Len(t, parts, 2)
	assert.Equal(t, accountID, parts[0])
	assert.Equal(t, s.SignCookieValue(accountID), signed)
}

func TestSession_IssueAndValidate(t *testing.T) {
	s := auth.NewSession("test-secret")
	rec := httptest.NewRecorder()
	s.Issue(rec, "account-123")

	resp := rec.Result()
	defer resp.Body.Close()

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "session_token", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	id, ok := s.AccountID(req)
	assert.True(t, ok)
	assert.Equal(t, "account-123", id)
}

func TestSession_InvalidSignature(t *testing.T) {
	s := auth.NewSession("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  "session_token",
		Value: "account-123:bad-signature",
	})

	id, ok := s.AccountID(req)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestSession_MissingCookie(t *testing.T) {
	s := auth.NewSession("test-secret")

	id, ok := s.AccountID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestLocalDirectory_RegisterAndAuthenticate(t *testing.T) {
	d := auth.NewLocalDirectory(store.NewMemory())
	ctx := context.Background()

	account, err := d.Register(ctx, "user@example.com", "Secr3tPass")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "user@example.com", account.Email)

	got, err := d.Authenticate(ctx, "user@example.com", "Secr3tPass")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestLocalDirectory_ErrorKinds(t *testing.T) {
	d := auth.NewLocalDirectory(store.NewMemory())
	ctx := context.Background()

	_, err := d.Register(ctx, "user@example.com", "Secr3tPass")
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   func() error
		kind auth.Kind
	}{
		{"invalid email", func() error {
			_, err := d.Register(ctx, "not-an-email", "Secr3tPass")
			return err
		}, auth.KindInvalidEmail},
		{"weak password", func() error {
			_, err := d.Register(ctx, "other@example.com", "123")
			return err
		}, auth.KindWeakPassword},
		{"email in use", func() error {
			_, err := d.Register(ctx, "user@example.com", "Another1")
			return err
		}, auth.KindEmailInUse},
		{"user not found", func() error {
			_, err := d.Authenticate(ctx, "ghost@example.com", "Secr3tPass")
			return err
		}, auth.KindUserNotFound},
		{"wrong password", func() error {
			_, err := d.Authenticate(ctx, "user@example.com", "wrong-pass")
			return err
		}, auth.KindWrongPassword},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn()
			require.Error(t, err)

			authErr := &auth.Error{}
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tc.kind, authErr.Kind)
		})
	}
}

func TestLocalDirectory_StateChange(t *testing.T) {
	d := auth.NewLocalDirectory(store.NewMemory())
	ctx := context.Background()

	var events []*auth.Account
	d.OnStateChange(func(account *auth.Account) {
		events = append(events, account)
	})

	account, err := d.Register(ctx, "user@example.com", "Secr3tPass")
	require.NoError(t, err)
	assert.Equal(t, account, d.Current())

	d.SignOut()
	assert.Nil(t, d.Current())

	require.Len(t, events, 2)
	assert.Equal(t, account, events[0])
	assert.Nil(t, events[1])
}

// Регистрация с уже занятой почтой не затирает существующий аккаунт.
func TestLocalDirectory_RegisterKeepsExisting(t *testing.T) {
	d := auth.NewLocalDirectory(store.NewMemory())
	ctx := context.Background()

	first, err := d.Register(ctx, "user@example.com", "Secr3tPass")
	require.NoError(t, err)

	_, err = d.Register(ctx, "USER@example.com", "Another1")
	require.Error(t, err)

	got, err := d.Authenticate(ctx, "user@example.com", "Secr3tPass")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}
