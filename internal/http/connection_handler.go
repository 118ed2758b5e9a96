package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-room/internal/domain"
	"interview-room/internal/service"
)

const (
	msgMissingRoomName        = "Missing required query parameter: roomName"
	msgMissingParticipantName = "Missing required query parameter: participantName"
)

// ConnectionService es lo que el handler necesita del servicio de conexiones.
type ConnectionService interface {
	CreateConnectionDetails(ctx context.Context, req service.ConnectionRequest) (domain.ConnectionDetails, error)
	CreateAgentHandshake(ctx context.Context) (service.AgentHandshake, error)
}

// ConnectionHandler expone los endpoints de emision de tokens.
type ConnectionHandler struct {
	logger *zap.Logger
	conns  ConnectionService
}

// NewConnectionHandler crea una instancia de ConnectionHandler.
func NewConnectionHandler(logger *zap.Logger, conns ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		logger: logger,
		conns:  conns,
	}
}

type connectionDetailsRequest struct {
	RoomName        json.RawMessage `json:"roomName"`
	ParticipantName json.RawMessage `json:"participantName"`
	Region          any             `json:"region"`
	Metadata        json.RawMessage `json:"metadata"`
}

// ConnectionDetails maneja POST /api/connection-details.
func (h *ConnectionHandler) ConnectionDetails(c *gin.Context) {
	var req connectionDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid connection details request", zap.Error(err))
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	roomName, ok := jsonString(req.RoomName)
	if !ok {
		c.String(http.StatusBadRequest, msgMissingRoomName)
		return
	}
	participantName, ok := jsonString(req.ParticipantName)
	if !ok {
		c.String(http.StatusBadRequest, msgMissingParticipantName)
		return
	}

	details, err := h.conns.CreateConnectionDetails(c.Request.Context(), service.ConnectionRequest{
		RoomName:        roomName,
		ParticipantName: participantName,
		Region:          regionCode(req.Region),
		Metadata:        req.Metadata,
	})
	if err != nil {
		if errors.Is(err, service.ErrRegionNotConfigured) {
			h.logger.Warn("region not configured", zap.Error(err))
		} else {
			h.logger.Error("create connection details failed", zap.Error(err))
		}
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, details)
}

// Token maneja POST /api/token.
func (h *ConnectionHandler) Token(c *gin.Context) {
	hs, err := h.conns.CreateAgentHandshake(c.Request.Context())
	if err != nil {
		h.logger.Error("agent handshake failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, hs)
}

// jsonString acepta solo strings JSON; null, ausente u otros tipos no cuentan.
func jsonString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

func regionCode(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	default:
		return fmt.Sprint(r)
	}
}
