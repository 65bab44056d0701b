package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/poqie/linkguard/internal/secrets"
	"github.com/poqie/linkguard/internal/store"
)

const minPasswordLen = 6

// accountRecord хранится по пути accounts/{email}.
type accountRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	PasswordSalt string    `json:"passwordSalt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LocalDirectory реализует Directory поверх хранилища документов.
type LocalDirectory struct {
	Store store.Document

	mutex     sync.RWMutex
	current   *Account
	listeners []func(*Account)
}

// NewLocalDirectory создаёт справочник аккаунтов поверх заданного хранилища.
func NewLocalDirectory(st store.Document) *LocalDirectory {
	return &LocalDirectory{Store: st}
}

func accountPath(email string) string {
	return "accounts/" + strings.ToLower(email)
}

// Authenticate проверяет пару email/пароль и делает аккаунт текущим.
func (d *LocalDirectory) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	if !validEmail(email) {
		return nil, &Error{Kind: KindInvalidEmail}
	}

	raw, ok, err := d.Store.Read(ctx, accountPath(email))
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Err: err}
	}
	if !ok {
		return nil, &Error{Kind: KindUserNotFound}
	}

	record := &accountRecord{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Err: fmt.Errorf("failed to decode account: %w", err)}
	}

	if !secrets.VerifyPassword(password, record.PasswordHash, record.PasswordSalt) {
		return nil, &Error{Kind: KindWrongPassword}
	}

	account := &Account{ID: record.ID, Email: record.Email}
	d.setCurrent(account)
	return account, nil
}

// Register заводит новый аккаунт. Уникальность почты обеспечивается условной
// записью, как и уникальность slug у ссылок.
func (d *LocalDirectory) Register(ctx context.Context, email, password string) (*Account, error) {
	if !validEmail(email) {
		return nil, &Error{Kind: KindInvalidEmail}
	}
	if len(password) < minPasswordLen {
		return nil, &Error{Kind: KindWeakPassword}
	}

	hash, salt, err := secrets.HashPassword(password)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Err: err}
	}

	record := &accountRecord{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := d.Store.CreateIfAbsent(ctx, accountPath(email), record)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Err: err}
	}
	if !created {
		return nil, &Error{Kind: KindEmailInUse}
	}

	account := &Account{ID: record.ID, Email: record.Email}
	d.setCurrent(account)
	return account, nil
}

// Current возвращает текущий аккаунт либо nil.
func (d *LocalDirectory) Current() *Account {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.current
}

// SignOut сбрасывает текущий аккаунт и уведомляет слушателей.
func (d *LocalDirectory) SignOut() {
	d.setCurrent(nil)
}

// OnStateChange регистрирует слушателя смены аккаунта.
func (d *LocalDirectory) OnStateChange(listener func(*Account)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.listeners = append(d.listeners, listener)
}

func (d *LocalDirectory) setCurrent(account *Account) {
	d.mutex.Lock()
	d.current = account
	listeners := make([]func(*Account), len(d.listeners))
	copy(listeners, d.listeners)
	d.mutex.Unlock()

	for _, l := range listeners {
		l(account)
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.Contains(email, "/")
}
