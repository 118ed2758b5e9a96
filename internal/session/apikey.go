package session

import "sync"

// APIKeySource guarda la API key del agente y avisa a los suscriptores cuando cambia.
type APIKeySource struct {
	mu     sync.Mutex
	key    string
	nextID int
	subs   map[int]func(string)
}

func NewAPIKeySource(key string) *APIKeySource {
	return &APIKeySource{
		key:  key,
		subs: make(map[int]func(string)),
	}
}

func (s *APIKeySource) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Set publica el nuevo valor solo si cambio.
func (s *APIKeySource) Set(key string) {
	s.mu.Lock()
	if s.key == key {
		s.mu.Unlock()
		return
	}
	s.key = key
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
}

// Subscribe registra fn y devuelve la funcion para darse de baja.
func (s *APIKeySource) Subscribe(fn func(string)) func() {
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
