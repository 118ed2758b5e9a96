package service

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"interview-room/internal/domain"
)

const (
	identitySuffixLen      = 4
	identitySuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	handshakeIdentity      = "human"

	// El SDK de tokens usa 6h cuando no se fija TTL explicito.
	defaultHandshakeTTL = 6 * time.Hour
)

var (
	ErrSigningNotConfigured = errors.New("LIVEKIT_API_KEY and LIVEKIT_API_SECRET must be set")
	ErrTokenInvalid         = errors.New("access token invalid")
	ErrTokenExpired         = errors.New("access token expired")
)

// TokenService emite y valida access tokens para el servidor de medios.
type TokenService struct {
	apiKey string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// AccessClaims replica el layout de claims que espera el servidor de medios.
type AccessClaims struct {
	Name     string             `json:"name,omitempty"`
	Metadata string             `json:"metadata,omitempty"`
	Video    *domain.VideoGrant `json:"video,omitempty"`
	jwt.RegisteredClaims
}

// ParticipantTokenInput son los datos para emitir un token de entrevista.
type ParticipantTokenInput struct {
	RoomName        string
	ParticipantName string
	Metadata        json.RawMessage
}

// AgentHandshake es la respuesta del endpoint simplificado de token.
type AgentHandshake struct {
	AccessToken string `json:"accessToken"`
	URL         string `json:"url"`
}

func NewTokenService(apiKey, apiSecret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = domain.DefaultTokenTTL
	}
	return &TokenService{
		apiKey: apiKey,
		secret: []byte(apiSecret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL devuelve la validez de los tokens de participante.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// IssueParticipantToken firma un token con identidad desambiguada y grant completo.
func (s *TokenService) IssueParticipantToken(in ParticipantTokenInput) (string, error) {
	if !s.configured() {
		return "", ErrSigningNotConfigured
	}
	suffix, err := randomString(identitySuffixLen)
	if err != nil {
		return "", err
	}
	metadata, err := serializeMetadata(in.Metadata)
	if err != nil {
		return "", err
	}
	return s.sign(domain.SessionGrant{
		Identity: in.ParticipantName + "__" + suffix,
		Name:     in.ParticipantName,
		Metadata: metadata,
		Video:    domain.ParticipantGrant(in.RoomName),
		TTL:      s.ttl,
	})
}

// IssueAgentHandshakeToken firma un token join-only para una sala aleatoria.
func (s *TokenService) IssueAgentHandshakeToken() (string, string, error) {
	if !s.configured() {
		return "", "", ErrSigningNotConfigured
	}
	room := uuid.NewString()
	token, err := s.sign(domain.SessionGrant{
		Identity: handshakeIdentity,
		Video:    domain.JoinOnlyGrant(room),
		TTL:      defaultHandshakeTTL,
	})
	if err != nil {
		return "", "", err
	}
	return token, room, nil
}

// ParseToken valida firma, emisor y expiracion de un token emitido por este servicio.
func (s *TokenService) ParseToken(tokenString string) (AccessClaims, error) {
	if !s.configured() {
		return AccessClaims{}, ErrSigningNotConfigured
	}
	if strings.TrimSpace(tokenString) == "" {
		return AccessClaims{}, ErrTokenInvalid
	}
	var claims AccessClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.apiKey),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AccessClaims{}, ErrTokenExpired
		}
		return AccessClaims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.Video == nil {
		return AccessClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) sign(grant domain.SessionGrant) (string, error) {
	now := s.now().UTC()
	video := grant.Video
	claims := AccessClaims{
		Name:     grant.Name,
		Metadata: grant.Metadata,
		Video:    &video,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        grant.Identity,
			Issuer:    s.apiKey,
			Subject:   grant.Identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(grant.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) configured() bool {
	return s.apiKey != "" && len(s.secret) > 0
}

func randomString(n int) (string, error) {
	return randomStringFrom(rand.Reader, n)
}

// randomStringFrom descarta los bytes >= maxUnbiasedByte para que cada caracter sea equiprobable.
func randomStringFrom(r io.Reader, n int) (string, error) {
	const maxUnbiasedByte = 256 - 256%len(identitySuffixAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, 2*n)
	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			out = append(out, identitySuffixAlphabet[int(b)%len(identitySuffixAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
