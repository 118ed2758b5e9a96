package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"interview-room/internal/domain"
)

// ConnectionRequest es la entrada ya validada de /api/connection-details.
type ConnectionRequest struct {
	RoomName        string
	ParticipantName string
	Region          string
	Metadata        json.RawMessage
}

// ConnectionService arma ConnectionDetails a partir de region, token y metadata.
type ConnectionService struct {
	logger   *zap.Logger
	tokens   *TokenService
	regions  *RegionResolver
	agentKey string
}

// NewConnectionService crea el servicio; agentKey vacio deja el metadata del cliente tal cual.
func NewConnectionService(logger *zap.Logger, tokens *TokenService, regions *RegionResolver, agentKey string) *ConnectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{
		logger:   logger,
		tokens:   tokens,
		regions:  regions,
		agentKey: agentKey,
	}
}

func (s *ConnectionService) CreateConnectionDetails(_ context.Context, req ConnectionRequest) (domain.ConnectionDetails, error) {
	serverURL, err := s.regions.Resolve(req.Region)
	if err != nil {
		return domain.ConnectionDetails{}, err
	}

	metadata, err := embedAgentKey(req.Metadata, s.agentKey)
	if err != nil {
		return domain.ConnectionDetails{}, err
	}

	token, err := s.tokens.IssueParticipantToken(ParticipantTokenInput{
		RoomName:        req.RoomName,
		ParticipantName: req.ParticipantName,
		Metadata:        metadata,
	})
	if err != nil {
		return domain.ConnectionDetails{}, fmt.Errorf("issue participant token: %w", err)
	}

	s.logger.Info("participant token issued",
		zap.String("room", req.RoomName),
		zap.String("participant", req.ParticipantName),
		zap.String("region", req.Region),
	)

	return domain.ConnectionDetails{
		ServerURL:        serverURL,
		RoomName:         req.RoomName,
		ParticipantToken: token,
		ParticipantName:  req.ParticipantName,
	}, nil
}

// CreateAgentHandshake emite el token join-only usado por el handshake con el agente de voz.
func (s *ConnectionService) CreateAgentHandshake(_ context.Context) (AgentHandshake, error) {
	serverURL, err := s.regions.Resolve("")
	if err != nil {
		return AgentHandshake{}, err
	}
	token, room, err := s.tokens.IssueAgentHandshakeToken()
	if err != nil {
		return AgentHandshake{}, err
	}
	s.logger.Info("agent handshake token issued", zap.String("room", room))
	return AgentHandshake{AccessToken: token, URL: serverURL}, nil
}
