// Package auth реализует справочник аккаунтов и подписанные сессионные куки.
package auth

import (
	"context"
	"fmt"
)

// Account — идентификатор и почта аккаунта, как их видит остальной код.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Kind — класс ошибки аутентификации.
type Kind string

const (
	KindInvalidEmail   Kind = "invalid-email"
	KindUserNotFound   Kind = "user-not-found"
	KindWrongPassword  Kind = "wrong-password"
	KindEmailInUse     Kind = "email-in-use"
	KindWeakPassword   Kind = "weak-password"
	KindNetworkFailure Kind = "network-failure"
	KindRateLimited    Kind = "rate-limited"
)

// Error — ошибка аутентификации с классом для UI-границы.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return "auth: " + string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Directory — внешний справочник аккаунтов. Ядро резолва использует из него
// только идентификатор владельца.
type Directory interface {
	Authenticate(ctx context.Context, email, password string) (*Account, error)
	Register(ctx context.Context, email, password string) (*Account, error)
	Current() *Account
	SignOut()
	OnStateChange(listener func(*Account))
}
