package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keyDerivationSalt       = "LKFrameEncryptionKey"
	keyDerivationIterations = 100_000
	keyLength               = 32

	unsupportedE2EEMessage = "You're trying to join an encrypted meeting, but your browser does not support it. Please update it to the latest version and try again."
)

var ErrDeviceUnsupported = errors.New("device does not support end-to-end encryption")

// Alerter muestra un mensaje al usuario.
type Alerter interface {
	Alert(msg string)
}

// EncryptableRoom es la parte de la sala de medios que activa el cifrado.
type EncryptableRoom interface {
	SetE2EEEnabled(ctx context.Context, enabled bool) error
}

// DecodePassphrase toma el fragmento de la URL (con o sin '#').
func DecodePassphrase(fragment string) (string, error) {
	raw := strings.TrimPrefix(fragment, "#")
	if raw == "" {
		return "", nil
	}
	pass, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode passphrase: %w", err)
	}
	return pass, nil
}

// KeyProvider guarda la clave de cifrado derivada de la passphrase compartida.
type KeyProvider struct {
	mu  sync.Mutex
	key []byte
}

func NewKeyProvider() *KeyProvider {
	return &KeyProvider{}
}

// SetKey deriva la clave con PBKDF2-SHA256.
func (p *KeyProvider) SetKey(ctx context.Context, passphrase string) error {
	if passphrase == "" {
		return errors.New("empty passphrase")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	key := pbkdf2.Key([]byte(passphrase), []byte(keyDerivationSalt), keyDerivationIterations, keyLength, sha256.New)
	p.mu.Lock()
	p.key = key
	p.mu.Unlock()
	return nil
}

// Key devuelve una copia de la clave actual.
func (p *KeyProvider) Key() ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key == nil {
		return nil, false
	}
	out := make([]byte, len(p.key))
	copy(out, p.key)
	return out, true
}

// SetupEncryption activa el cifrado en la sala cuando las opciones lo piden.
// Si el dispositivo no lo soporta avisa al usuario y la sesion sigue sin cifrar.
func SetupEncryption(ctx context.Context, room EncryptableRoom, opts RoomOptions, passphrase string, alerter Alerter, logger *zap.Logger) (bool, error) {
	if opts.E2EE == nil {
		return false, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := opts.E2EE.KeyProvider
	if provider == nil {
		return false, errors.New("e2ee enabled without key provider")
	}
	if err := provider.SetKey(ctx, passphrase); err != nil {
		return false, fmt.Errorf("set e2ee key: %w", err)
	}
	if err := room.SetE2EEEnabled(ctx, true); err != nil {
		if errors.Is(err, ErrDeviceUnsupported) {
			logger.Error("e2ee unsupported by device", zap.Error(err))
			if alerter != nil {
				alerter.Alert(unsupportedE2EEMessage)
			}
			return false, nil
		}
		return false, fmt.Errorf("enable e2ee: %w", err)
	}
	return true, nil
}
