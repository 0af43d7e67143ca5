package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/arborhq/arbor/pkg/domain"
	"github.com/arborhq/arbor/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new records.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption with the
	// active key fails. This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.PlanStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts plan records
// with AES-GCM before they reach the underlying store. The stored envelope
// keeps the record ID and timestamps readable so listing and expiry still
// work; the plan, decomposition record, and world state are hidden.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("middleware: active encryption key must be 32 bytes (AES-256)")
	}
	return func(next ports.PlanStore) ports.PlanStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

// envelopeKey marks a stored record as an encryption envelope.
const envelopeKey = "__encrypted__"

func (m *encryptionMiddleware) Save(ctx context.Context, rec *ports.PlanRecord) error {
	plainText, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt record: %w", err)
	}

	envelope := &ports.PlanRecord{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		State: domain.State{
			envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*ports.PlanRecord, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	encryptedStr, ok := envelope.State[envelopeKey].(string)
	if !ok {
		// The record was written without encryption. Fail closed instead
		// of handing through plaintext the caller believes is protected.
		return nil, errors.New("record is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt record: %w", err)
	}

	var rec ports.PlanRecord
	if err := json.Unmarshal(plainText, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted record: %w", err)
	}
	return &rec, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// decryptWithRotation tries the active key first, then each fallback key in
// order. Only when every key fails does it return an error.
func decryptWithRotation(ciphertext []byte, config EncryptionConfig) ([]byte, error) {
	plainText, err := decrypt(ciphertext, config.ActiveKey)
	if err == nil {
		return plainText, nil
	}

	for _, key := range config.FallbackKeys {
		plainText, fallbackErr := decrypt(ciphertext, key)
		if fallbackErr == nil {
			return plainText, nil
		}
	}
	return nil, fmt.Errorf("no configured key could decrypt the record: %w", err)
}

func encrypt(plainText, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend the nonce to the ciphertext so decryption can recover it.
	return gcm.Seal(nonce, nonce, plainText, nil), nil
}

func decrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext is shorter than the nonce")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
