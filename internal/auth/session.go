package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

const (
	cookieName   = "session_token"
	cookieMaxAge = 30 * 24 * 60 * 60 // 30 дней
)

// Session подписывает и проверяет сессионные куки формата accountID:signature.
type Session struct {
	SecretKey string
}

func NewSession(secret string) *Session {
	return &Session{SecretKey: secret}
}

// Создать подпись
func (s *Session) sign(accountID string) string {
	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	mac.Write([]byte(accountID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue выставляет подписанную куку для аккаунта.
func (s *Session) Issue(w http.ResponseWriter, accountID string) {
	sig := s.sign(accountID)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    fmt.Sprintf("%s:%s", accountID, sig),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   cookieMaxAge,
	})
}

// Clear сбрасывает сессионную куку.
func (s *Session) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// AccountID проверяет наличие и корректность куки и возвращает идентификатор
// аккаунта.
func (s *Session) AccountID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	parts := strings.SplitN(cookie.Value, ":", 2)
	if len(parts) != 2 || !hmac.Equal([]byte(s.sign(parts[0])), []byte(parts[1])) {
		return "", false
	}

	return parts[0], true
}

// SignCookieValue возвращает валидное значение куки. Имитация для тестов.
func (s *Session) SignCookieValue(accountID string) string {
	return fmt.Sprintf("%s:%s", accountID, s.sign(accountID))
}
