package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/poqie/linkguard/internal/codec"
	"github.com/poqie/linkguard/internal/model"
	"github.com/poqie/linkguard/internal/repositories"
	"github.com/poqie/linkguard/internal/secrets"
	"github.com/poqie/linkguard/internal/slug"
)

// maxSlugRetries — число попыток сгенерировать свободный slug.
const maxSlugRetries = 5

// Links — сервис управления ссылками владельца: создание, листинг, удаление.
type Links struct {
	Repo      repositories.LinkRepositoryInterface
	Logger    *zap.Logger
	BaseURL   string
	KeySecret string
}

// NewLinks создаёт сервис ссылок.
func NewLinks(repo repositories.LinkRepositoryInterface, logger *zap.Logger, baseURL, keySecret string) *Links {
	return &Links{
		Repo:      repo,
		Logger:    logger,
		BaseURL:   baseURL,
		KeySecret: keySecret,
	}
}

// CreateLink шифрует назначение под ключом владельца и условно записывает
// новую ссылку. При коллизии сгенерированного slug пробует свежий, до
// maxSlugRetries раз; занятый пользовательский slug — сразу ошибка.
func (s *Links) CreateLink(ctx context.Context, ownerID string, req model.CreateLinkRequest) (*model.CreateLinkResponse, error) {
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	// Пользовательский slug проверяется до любой записи: slug с "/" вложил бы
	// запись под чужой путь links/{slug}/... и погиб бы вместе с ним при
	// каскадном удалении.
	if req.CustomSlug != "" && !slug.Valid(req.CustomSlug) {
		return nil, ErrInvalidSlug
	}

	key, err := secrets.DeriveUserKey(ownerID, s.KeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive owner key: %w", err)
	}

	now := time.Now().UTC()
	payload := &model.LinkPayload{
		DestinationURL:    req.URL,
		CreatedAt:         now,
		PasswordProtected: req.Password != "",
		ExpiresAt:         req.ExpiresAt,
		MaxClicks:         req.MaxClicks,
	}

	sealed, err := codec.Encrypt(payload, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt link payload: %w", err)
	}

	record := &model.LinkRecord{
		OwnerID:           ownerID,
		EncryptedPayload:  sealed.Data,
		IV:                sealed.IV,
		Salt:              sealed.Salt,
		PasswordProtected: req.Password != "",
		ExpiresAt:         req.ExpiresAt,
		MaxClicks:         req.MaxClicks,
		IsActive:          true,
		CreatedAt:         now,
	}

	if req.Password != "" {
		hash, salt, err := secrets.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash link password: %w", err)
		}
		record.PasswordHash = hash
		record.PasswordSalt = salt
	}

	if req.CustomSlug != "" {
		record.Slug = req.CustomSlug
		if err := s.Repo.Create(ctx, record); err != nil {
			if errors.Is(err, repositories.ErrSlugTaken) {
				return nil, ErrSlugUnavailable
			}
			return nil, err
		}
		return s.response(record.Slug), nil
	}

	for i := 0; i < maxSlugRetries; i++ {
		code, err := slug.Generate(slug.DefaultLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}

		record.Slug = code
		err = s.Repo.Create(ctx, record)
		if err == nil {
			return s.response(code), nil
		}
		if !errors.Is(err, repositories.ErrSlugTaken) {
			return nil, err
		}

		s.Logger.Info("slug collision, retrying",
			zap.String("slug", code),
			zap.Int("attempt", i+1),
		)
	}

	return nil, ErrSlugGeneration
}

// DeleteLink удаляет ссылку вместе с записью индекса. Чужие и отсутствующие
// ссылки неразличимы для вызывающей стороны.
func (s *Links) DeleteLink(ctx context.Context, ownerID, linkSlug string) error {
	record, err := s.Repo.Get(ctx, linkSlug)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if record == nil || record.OwnerID != ownerID {
		return ErrNotFound
	}
	return s.Repo.Remove(ctx, linkSlug)
}

// DeactivateLink мягко выключает ссылку владельца, не удаляя запись.
func (s *Links) DeactivateLink(ctx context.Context, ownerID, linkSlug string) error {
	record, err := s.Repo.Get(ctx, linkSlug)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if record == nil || record.OwnerID != ownerID {
		return ErrNotFound
	}
	return s.Repo.Deactivate(ctx, linkSlug)
}

// OwnerLinks возвращает расшифрованный список ссылок владельца. Записи,
// которые не удаётся расшифровать, пропускаются с записью в лог.
func (s *Links) OwnerLinks(ctx context.Context, ownerID string) ([]model.OwnedLink, error) {
	slugs, err := s.Repo.OwnerSlugs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	key, err := secrets.DeriveUserKey(ownerID, s.KeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive owner key: %w", err)
	}

	links := make([]model.OwnedLink, 0, len(slugs))
	for _, code := range slugs {
		record, err := s.Repo.Get(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if record == nil || record.OwnerID != ownerID {
			continue
		}

		sealed := model.Sealed{Data: record.EncryptedPayload, IV: record.IV, Salt: record.Salt}
		payload, err := codec.Decrypt(sealed, key)
		if err != nil {
			s.Logger.Warn("skipping undecryptable link", zap.String("slug", code))
			continue
		}

		links = append(links, model.OwnedLink{
			Slug:              code,
			ShortURL:          s.BaseURL + "/" + code,
			DestinationURL:    payload.DestinationURL,
			ClickCount:        record.ClickCount,
			PasswordProtected: record.PasswordProtected,
			ExpiresAt:         record.ExpiresAt,
			MaxClicks:         record.MaxClicks,
			CreatedAt:         record.CreatedAt,
		})
	}
	return links, nil
}

func (s *Links) response(code string) *model.CreateLinkResponse {
	return &model.CreateLinkResponse{
		Slug:     code,
		ShortURL: s.BaseURL + "/" + code,
	}
}
