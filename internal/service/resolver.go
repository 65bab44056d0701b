package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/poqie/linkguard/internal/codec"
	"github.com/poqie/linkguard/internal/model"
	"github.com/poqie/linkguard/internal/repositories"
	"github.com/poqie/linkguard/internal/secrets"
)

// State — состояние конвейера резолва.
type State string

const (
	StateInitial          State = "initial"
	StateLoading          State = "loading"
	StateNotFound         State = "not_found"
	StateExpired          State = "expired"
	StateQuotaExceeded    State = "quota_exceeded"
	StatePasswordRequired State = "password_required"
	StateDecrypting       State = "decrypting"
	StateResolved         State = "resolved"
	StateDecryptionFailed State = "decryption_failed"
)

// Terminal сообщает, завершён ли конвейер в этом состоянии.
func (s State) Terminal() bool {
	switch s {
	case StateNotFound, StateExpired, StateQuotaExceeded, StateResolved, StateDecryptionFailed:
		return true
	}
	return false
}

// Resolver превращает slug в URL назначения: load → validate → gate →
// decrypt → record-click. Единственная мутация — инкремент счётчика
// переходов, и только после подтверждённой расшифровки.
type Resolver struct {
	Repo      repositories.LinkRepositoryInterface
	Logger    *zap.Logger
	KeySecret string
	Now       func() time.Time
}

// NewResolver создаёт Resolver. keySecret — серверный секрет вывода ключей,
// не выводимый из публичных идентификаторов.
func NewResolver(repo repositories.LinkRepositoryInterface, logger *zap.Logger, keySecret string) *Resolver {
	return &Resolver{
		Repo:      repo,
		Logger:    logger,
		KeySecret: keySecret,
		Now:       time.Now,
	}
}

// Resolution — один проход конвейера. В состоянии PasswordRequired проход
// приостановлен и может ждать пароль сколь угодно долго; вызывающая сторона
// вправе бросить его в любом нетерминальном состоянии без компенсаций.
type Resolution struct {
	resolver    *Resolver
	record      *model.LinkRecord
	slug        string
	state       State
	destination string
}

// State возвращает текущее состояние прохода.
func (r *Resolution) State() State { return r.state }

// Destination возвращает URL назначения; непусто только в StateResolved.
func (r *Resolution) Destination() string { return r.destination }

// Resolve выполняет конвейер до первого терминального состояния либо до
// ожидания пароля. Терминальные ошибки возвращаются как сентинелы этого
// пакета; в состоянии PasswordRequired ошибка равна nil.
func (r *Resolver) Resolve(ctx context.Context, slug string) (*Resolution, error) {
	res := &Resolution{resolver: r, slug: slug, state: StateInitial}

	// Отсутствие slug — немедленная терминальная ошибка, не молчание.
	if slug == "" {
		res.state = StateNotFound
		return res, ErrNotFound
	}

	res.state = StateLoading
	record, err := r.Repo.Get(ctx, slug)
	if err != nil {
		// Транспортная ошибка: состояние не терминально, ретрай за вызывающим.
		return res, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if record == nil {
		res.state = StateNotFound
		return res, ErrNotFound
	}
	res.record = record

	if record.Expired(r.Now()) {
		res.state = StateExpired
		return res, ErrExpired
	}
	if record.QuotaExceeded() {
		res.state = StateQuotaExceeded
		return res, ErrQuotaExceeded
	}

	if record.PasswordProtected {
		res.state = StatePasswordRequired
		return res, nil
	}

	return res, res.complete(ctx)
}

// SubmitPassword проверяет пароль приостановленного прохода. Неудачная
// попытка не меняет состояние: каждая попытка независима, вызывающая сторона
// может повторять.
func (r *Resolution) SubmitPassword(ctx context.Context, password string) error {
	if r.state != StatePasswordRequired {
		return fmt.Errorf("no password expected in state %q", r.state)
	}

	if !secrets.VerifyPassword(password, r.record.PasswordHash, r.record.PasswordSalt) {
		return ErrInvalidPassword
	}
	return r.complete(ctx)
}

// complete — заключительная часть конвейера: расшифровка и учёт перехода.
func (r *Resolution) complete(ctx context.Context) error {
	r.state = StateDecrypting
	rec := r.record

	key, err := secrets.DeriveUserKey(rec.OwnerID, r.resolver.KeySecret)
	if err != nil {
		r.state = StateDecryptionFailed
		return ErrDecryption
	}

	sealed := model.Sealed{Data: rec.EncryptedPayload, IV: rec.IV, Salt: rec.Salt}
	payload, err := codec.Decrypt(sealed, key)
	if err != nil {
		// Неудачная расшифровка не расходует переход.
		r.state = StateDecryptionFailed
		return ErrDecryption
	}

	// Переход учитывается ровно один раз и только после подтверждённой
	// расшифровки. Неудача учёта не мешает выдать назначение: учёт
	// best-effort, корректность резолва — нет.
	if _, err := r.resolver.Repo.IncrementClicks(ctx, rec.Slug); err != nil {
		r.resolver.Logger.Error("failed to record click",
			zap.String("slug", rec.Slug),
			zap.Error(err),
		)
	}

	r.destination = payload.DestinationURL
	r.state = StateResolved
	return nil
}
