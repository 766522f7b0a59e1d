package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"memberportal/web-service/internal/models"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrCorruptPayload = errors.New("corrupt session payload")

// Codec serializes session records for the store. With a secret the JSON
// is sealed with XChaCha20-Poly1305; without one it is stored as is.
type Codec struct {
	aead cipher.AEAD
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return &Codec{}, nil
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("web-service session store"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("session cipher: %w", err)
	}
	return &Codec{aead: aead}, nil
}

func (c *Codec) Encrypted() bool {
	return c.aead != nil
}

func (c *Codec) Encode(sess models.Session) ([]byte, error) {
	plain, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if c.aead == nil {
		return plain, nil
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("session nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, []byte(sess.SessionID)), nil
}

// Decode reverses Encode. The session id is bound as associated data, so a
// payload copied under another id fails to open.
func (c *Codec) Decode(sessionID string, data []byte) (models.Session, error) {
	plain := data
	if c.aead != nil {
		if len(data) < c.aead.NonceSize() {
			return models.Session{}, ErrCorruptPayload
		}
		nonce, sealed := data[:c.aead.NonceSize()], data[c.aead.NonceSize():]
		opened, err := c.aead.Open(nil, nonce, sealed, []byte(sessionID))
		if err != nil {
			return models.Session{}, ErrCorruptPayload
		}
		plain = opened
	}
	var sess models.Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		return models.Session{}, ErrCorruptPayload
	}
	if sess.SessionID != sessionID {
		return models.Session{}, ErrCorruptPayload
	}
	return sess, nil
}
