// Package codec шифрует и расшифровывает полезную нагрузку ссылки
// (URL назначения и метаданные политики) под выведенным ключом.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/poqie/linkguard/internal/model"
	"github.com/poqie/linkguard/internal/secrets"
)

const (
	saltLen  = 16
	nonceLen = 12
)

var (
	// ErrEncode возвращается, когда полезная нагрузка не сериализуется.
	ErrEncode = errors.New("payload encoding failed")

	// ErrDecrypt покрывает неверный ключ, повреждённый шифротекст и
	// нечитаемую полезную нагрузку одинаково. Вызывающая сторона не должна
	// уметь различать эти случаи.
	ErrDecrypt = errors.New("link decryption failed")
)

// Encrypt сериализует payload в канонический JSON и шифрует его AES-256-GCM.
// Соль и nonce генерируются заново при каждом вызове; из базового ключа и
// соли через HKDF выводится одноразовый подключ.
func Encrypt(payload *model.LinkPayload, key secrets.DerivedKey) (model.Sealed, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return model.Sealed{}, ErrEncode
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return model.Sealed{}, ErrEncode
	}

	aead, err := newAEAD(key, salt)
	if err != nil {
		return model.Sealed{}, ErrEncode
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return model.Sealed{}, ErrEncode
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	return model.Sealed{
		Data: base64.StdEncoding.EncodeToString(ciphertext),
		IV:   base64.StdEncoding.EncodeToString(nonce),
		Salt: base64.StdEncoding.EncodeToString(salt),
	}, nil
}

// Decrypt восстанавливает полезную нагрузку из sealed. Любая причина неудачи
// (ключ, целостность, десериализация) выражается одним непрозрачным ErrDecrypt.
func Decrypt(sealed model.Sealed, key secrets.DerivedKey) (*model.LinkPayload, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(sealed.Data)
	if err != nil {
		return nil, ErrDecrypt
	}
	nonce, err := base64.StdEncoding.DecodeString(sealed.IV)
	if err != nil || len(nonce) != nonceLen {
		return nil, ErrDecrypt
	}
	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return nil, ErrDecrypt
	}

	aead, err := newAEAD(key, salt)
	if err != nil {
		return nil, ErrDecrypt
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}

	payload := &model.LinkPayload{}
	if err := json.Unmarshal(plaintext, payload); err != nil {
		return nil, ErrDecrypt
	}
	return payload, nil
}

func newAEAD(key secrets.DerivedKey, salt []byte) (cipher.AEAD, error) {
	subKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, salt, nil), subKey); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(subKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
