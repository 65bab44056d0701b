package model

import "time"

// LinkRecord представляет одну сокращённую ссылку в хранилище документов.
// Хранится по пути links/{slug}. Поле Slug уникально и неизменяемо после
// создания, как и все криптографические параметры.
type LinkRecord struct {
	Slug              string     `json:"slug"`
	OwnerID           string     `json:"ownerId"`
	EncryptedPayload  string     `json:"encryptedPayload"`
	IV                string     `json:"iv"`
	Salt              string     `json:"salt"`
	PasswordProtected bool       `json:"passwordProtected"`
	PasswordHash      string     `json:"passwordHash,omitempty"`
	PasswordSalt      string     `json:"passwordSalt,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	MaxClicks         int64      `json:"maxClicks,omitempty"`
	ClickCount        int64      `json:"clickCount"`
	IsActive          bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Expired сообщает, истёк ли срок действия ссылки на момент now.
func (r *LinkRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// QuotaExceeded сообщает, исчерпана ли квота переходов.
// MaxClicks == 0 означает отсутствие лимита.
func (r *LinkRecord) QuotaExceeded() bool {
	return r.MaxClicks > 0 && r.ClickCount >= r.MaxClicks
}

// UserIndexEntry хранится по пути users/{ownerId}/links/{slug} и служит
// только для листинга и удаления; авторитетным для резолва остаётся LinkRecord.
type UserIndexEntry struct {
	CreatedAt time.Time `json:"createdAt"`
	IsActive  bool      `json:"isActive"`
}

// LinkPayload — расшифрованное содержимое EncryptedPayload.
type LinkPayload struct {
	DestinationURL    string            `json:"url"`
	CreatedAt         time.Time         `json:"timestamp"`
	PasswordProtected bool              `json:"passwordProtected"`
	ExpiresAt         *time.Time        `json:"expires,omitempty"`
	MaxClicks         int64             `json:"maxClicks,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Sealed — результат шифрования полезной нагрузки: шифротекст и параметры,
// необходимые для расшифровки. Все поля в base64.
type Sealed struct {
	Data string `json:"data"`
	IV   string `json:"iv"`
	Salt string `json:"salt"`
}
