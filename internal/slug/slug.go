// Package slug генерирует короткие идентификаторы ссылок.
package slug

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// charset — алфавит из 62 символов. Для длины 6 это ~56 миллиардов комбинаций.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	MinLength     = 6
	MaxLength     = 8
	DefaultLength = 6

	// MaxCustomLength ограничивает длину пользовательских slug.
	MaxCustomLength = 32
)

// Generate возвращает случайный slug заданной длины из криптографически
// стойкого источника. Длина ограничивается диапазоном [MinLength, MaxLength].
// Уникальность здесь не гарантируется: авторитетом по уникальности является
// условная запись в хранилище, вызывающая сторона обязана check-then-reserve.
func Generate(length int) (string, error) {
	if length < MinLength {
		length = MinLength
	}
	if length > MaxLength {
		length = MaxLength
	}

	code := make([]byte, length)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// Valid проверяет пользовательский slug: только символы алфавита charset,
// длина в пределах [1, MaxCustomLength]. Всё остальное — в первую очередь
// разделитель пути "/" — ломает плоскую раскладку links/{slug} и потому
// отклоняется до обращения к хранилищу.
func Valid(s string) bool {
	if len(s) == 0 || len(s) > MaxCustomLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
