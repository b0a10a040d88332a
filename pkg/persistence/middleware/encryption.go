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
	"strings"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/ports"
)

// envelopeKey is the draft key holding the sealed state.
const envelopeKey = "__encrypted__"

// KeySize is the length of an AES-256 key.
const KeySize = 32

// ErrNoEnvelope is returned when an encrypting store loads a state that was
// saved without encryption.
var ErrNoEnvelope = errors.New("state is missing encrypted data envelope")

// Keyring holds the AES-256-GCM keys of an encrypting store.
// The first key seals new states; all of them are tried, in order, to open
// stored ones, so old keys can stay readable during a rotation.
type Keyring struct {
	aeads []cipher.AEAD
}

// NewKeyring builds a keyring from raw 32-byte keys, the active one first.
func NewKeyring(active []byte, fallback ...[]byte) (*Keyring, error) {
	k := &Keyring{}
	for i, key := range append([][]byte{active}, fallback...) {
		if len(key) != KeySize {
			return nil, fmt.Errorf("key #%d must be %d bytes, got %d", i+1, KeySize, len(key))
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		k.aeads = append(k.aeads, aead)
	}
	return k, nil
}

// ParseKeyring builds a keyring from base64 encoded keys, as they appear in
// configuration files and environment variables.
func ParseKeyring(active string, fallback ...string) (*Keyring, error) {
	raw := make([][]byte, 0, 1+len(fallback))
	for i, enc := range append([]string{active}, fallback...) {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(enc))
		if err != nil {
			return nil, fmt.Errorf("key #%d is not base64: %w", i+1, err)
		}
		raw = append(raw, key)
	}
	return NewKeyring(raw[0], raw[1:]...)
}

// seal encrypts plain with the active key. The session id is authenticated
// with it, so a sealed state cannot be replayed under another session.
func (k *Keyring) seal(sessionID string, plain []byte) ([]byte, error) {
	aead := k.aeads[0]
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, []byte(sessionID)), nil
}

func (k *Keyring) open(sessionID string, sealed []byte) ([]byte, error) {
	for _, aead := range k.aeads {
		n := aead.NonceSize()
		if len(sealed) < n {
			return nil, errors.New("ciphertext too short")
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], []byte(sessionID)); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("no key in the keyring opens the state")
}

type encryptionMiddleware struct {
	next ports.StateStore
	keys *Keyring
}

// NewEncryptionMiddleware creates a middleware that seals the whole state
// with AES-GCM. The store only sees an envelope: the session id and status
// stay readable, the draft and configuration do not.
func NewEncryptionMiddleware(keys *Keyring) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{next: next, keys: keys}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	sealed, err := m.keys.seal(sessionID, plain)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	return m.next.Save(ctx, sessionID, &domain.State{
		SessionID: state.SessionID,
		Status:    state.Status,
		Draft: domain.NewDraft(map[string]string{
			envelopeKey: base64.StdEncoding.EncodeToString(sealed),
		}),
	})
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope.Draft.Get(envelopeKey)
	if !ok {
		return nil, ErrNoEnvelope
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plain, err := m.keys.open(sessionID, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(plain, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
	}
	return &state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
