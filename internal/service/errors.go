package service

import "errors"

// Классы ошибок конвейера резолва. Валидационные (not found, expired, quota)
// терминальны и отдаются UI-границе как есть; ErrInvalidPassword не
// терминальна — конвейер остаётся в ожидании пароля; ErrDecryption
// намеренно непрозрачна.
var (
	ErrNotFound         = errors.New("link not found")
	ErrExpired          = errors.New("link expired")
	ErrQuotaExceeded    = errors.New("link click limit reached")
	ErrInvalidPassword  = errors.New("invalid link password")
	ErrDecryption       = errors.New("failed to decrypt link")
	ErrStoreUnavailable = errors.New("link store unavailable")
)

// Ошибки создания ссылок.
var (
	ErrInvalidURL      = errors.New("invalid URL format")
	ErrInvalidSlug     = errors.New("invalid custom slug")
	ErrSlugUnavailable = errors.New("custom slug already taken")
	ErrSlugGeneration  = errors.New("failed to generate unique slug after maximum retries")
)
