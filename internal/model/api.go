package model

import "time"

// CreateLinkRequest представляет структуру запроса на создание ссылки.
type CreateLinkRequest struct {
	URL        string     `json:"url"`
	CustomSlug string     `json:"custom_slug,omitempty"`
	Password   string     `json:"password,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	MaxClicks  int64      `json:"max_clicks,omitempty"`
}

// CreateLinkResponse представляет структуру ответа с готовой короткой ссылкой.
type CreateLinkResponse struct {
	Slug     string `json:"slug"`
	ShortURL string `json:"short_url"`
}

// ResolveResponse — ответ страницы редиректа. Destination заполняется только
// в состоянии resolved, Error — в терминальных состояниях ошибки.
type ResolveResponse struct {
	State       string `json:"state"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OwnedLink — элемент списка ссылок владельца (уже расшифрованный).
type OwnedLink struct {
	Slug              string     `json:"slug"`
	ShortURL          string     `json:"short_url"`
	DestinationURL    string     `json:"destination_url"`
	ClickCount        int64      `json:"click_count"`
	PasswordProtected bool       `json:"password_protected"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	MaxClicks         int64      `json:"max_clicks,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Credentials — тело запросов /api/auth/login и /api/auth/register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
