// Package secrets отвечает за вывод симметричных ключей и проверочных
// хэшей паролей. Ключи существуют только в памяти и никогда не сохраняются.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// installationSalt — фиксированная соль инсталляции, конкатенируется с
	// идентификатором владельца при выводе пользовательского ключа.
	installationSalt = "linkguard_site_salt_2024"

	userKeyIterations  = 10000
	passwordIterations = 1000
	keyLen             = 32
	passwordSaltLen    = 16
)

var (
	ErrEmptyOwnerID = errors.New("owner id must not be empty")
	ErrEmptySecret  = errors.New("secret input must not be empty")
)

// DerivedKey — непрозрачный симметричный ключ. Вычисляется по требованию и
// держится в памяти только на время операции шифрования или расшифровки.
type DerivedKey []byte

// DeriveUserKey детерминированно выводит 256-битный ключ из идентификатора
// владельца и секрета. Одинаковые входы всегда дают одинаковый ключ.
// Пустой ownerID отклоняется: иначе соли разных владельцев могли бы совпасть.
func DeriveUserKey(ownerID, secretInput string) (DerivedKey, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwnerID
	}
	if secretInput == "" {
		return nil, ErrEmptySecret
	}

	salt := sha256.Sum256([]byte(ownerID + installationSalt))
	key := pbkdf2.Key([]byte(secretInput), salt[:], userKeyIterations, keyLen, sha256.New)
	return DerivedKey(key), nil
}

// HashPassword генерирует свежую случайную соль и проверочный хэш пароля.
// Недетерминирована, используется только при создании ссылки.
func HashPassword(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, passwordSaltLen)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", fmt.Errorf("failed to generate password salt: %w", err)
	}

	derived := pbkdf2.Key([]byte(password), rawSalt, passwordIterations, keyLen, sha256.New)
	return hex.EncodeToString(derived), hex.EncodeToString(rawSalt), nil
}

// VerifyPassword выводит хэш заново по сохранённой соли и сравнивает его с
// сохранённым за константное время.
func VerifyPassword(password, hash, salt string) bool {
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(hash)
	if err != nil {
		return false
	}

	derived := pbkdf2.Key([]byte(password), rawSalt, passwordIterations, keyLen, sha256.New)
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
