package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"interview-room/internal/domain"
)

var (
	ErrAPIKeyRequired    = errors.New("OpenAI API key is required to connect")
	ErrEmptyCredentials  = errors.New("token response is missing url or token")
	ErrConnectSuperseded = errors.New("connect superseded by disconnect")
)

// TokenFetcher obtiene URL del servidor y token para el handshake con el agente.
type TokenFetcher interface {
	FetchToken(ctx context.Context) (serverURL, token string, err error)
}

// ConnectionStore es el dueño del estado de conexion de una sesion.
// ShouldConnect solo pasa a true en la misma actualizacion que fija URL y token.
type ConnectionStore struct {
	mu      sync.Mutex
	state   domain.ConnectionState
	epoch   uint64
	nextID  int
	subs    map[int]func(domain.ConnectionState)
	fetcher TokenFetcher
	keys    *APIKeySource
	logger  *zap.Logger

	unsubscribeKeys func()
}

func NewConnectionStore(fetcher TokenFetcher, keys *APIKeySource, logger *zap.Logger) *ConnectionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keys == nil {
		keys = NewAPIKeySource("")
	}
	s := &ConnectionStore{
		subs:    make(map[int]func(domain.ConnectionState)),
		fetcher: fetcher,
		keys:    keys,
		logger:  logger,
	}
	s.unsubscribeKeys = keys.Subscribe(s.onKeyChange)
	return s
}

// State devuelve una copia del estado actual.
func (s *ConnectionStore) State() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect hace un unico round trip al emisor de tokens.
// Si Disconnect ocurre mientras la peticion esta en vuelo, el resultado se descarta.
func (s *ConnectionStore) Connect(ctx context.Context) error {
	if s.keys.Get() == "" {
		return ErrAPIKeyRequired
	}

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	serverURL, token, err := s.fetcher.FetchToken(ctx)
	if err != nil {
		s.logger.Error("token fetch failed", zap.Error(err))
		return err
	}
	if serverURL == "" || token == "" {
		return ErrEmptyCredentials
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.Info("discarding token that arrived after disconnect")
		return ErrConnectSuperseded
	}
	if s.keys.Get() == "" {
		s.mu.Unlock()
		return ErrAPIKeyRequired
	}
	s.state = domain.ConnectionState{
		ServerURL:     serverURL,
		Token:         token,
		ShouldConnect: true,
	}
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Disconnect es idempotente; URL y token quedan como valores viejos.
func (s *ConnectionStore) Disconnect() {
	s.mu.Lock()
	s.epoch++
	changed := s.state.ShouldConnect
	s.state.ShouldConnect = false
	snapshot := s.state
	s.mu.Unlock()

	if changed {
		s.notify(snapshot)
	}
}

// Subscribe recibe cada estado nuevo que se publica.
func (s *ConnectionStore) Subscribe(fn func(domain.ConnectionState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close corta la suscripcion a la API key.
func (s *ConnectionStore) Close() {
	if s.unsubscribeKeys != nil {
		s.unsubscribeKeys()
	}
}

func (s *ConnectionStore) onKeyChange(key string) {
	if key != "" {
		return
	}
	if s.State().ShouldConnect {
		s.logger.Info("agent api key removed, disconnecting")
		s.Disconnect()
	}
}

func (s *ConnectionStore) notify(state domain.ConnectionState) {
	s.mu.Lock()
	subs := make([]func(domain.ConnectionState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
