package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"interview-room/internal/domain"
)

var ErrNotActive = errors.New("pre-join flow is not active")

// MediaRoom es la sala del SDK de medios externo.
type MediaRoom interface {
	EncryptableRoom
	Connect(ctx context.Context, serverURL, token string, opts ConnectOptions) error
}

// MediaFactory crea salas con las opciones calculadas.
type MediaFactory interface {
	SupportsE2EE() bool
	NewRoom(opts RoomOptions) MediaRoom
}

// Preferences son las preferencias de calidad y cifrado elegidas fuera del pre-join.
type Preferences struct {
	Quality            Quality
	Codec              VideoCodec
	PassphraseFragment string
}

// Conference entrega la sesion activa al SDK de medios.
type Conference struct {
	flow    *Flow
	conns   *ConnectionStore
	media   MediaFactory
	alerter Alerter
	logger  *zap.Logger
}

// NewConference recibe el flujo ya en Active; conns puede ser nil si no hay handshake de agente.
func NewConference(flow *Flow, conns *ConnectionStore, media MediaFactory, alerter Alerter, logger *zap.Logger) *Conference {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conference{
		flow:    flow,
		conns:   conns,
		media:   media,
		alerter: alerter,
		logger:  logger,
	}
}

// Start construye opciones, prepara el cifrado y conecta la sala.
func (c *Conference) Start(ctx context.Context, prefs Preferences) (RoomOptions, error) {
	details, choices, ok := c.flow.Session()
	if !ok {
		return RoomOptions{}, ErrNotActive
	}

	passphrase, err := DecodePassphrase(prefs.PassphraseFragment)
	if err != nil {
		c.HandleEncryptionError(err)
		passphrase = ""
	}

	opts := BuildRoomOptions(OptionsInput{
		Quality:         prefs.Quality,
		Codec:           prefs.Codec,
		Passphrase:      passphrase,
		WorkerSupported: c.media.SupportsE2EE(),
		KeyProvider:     NewKeyProvider(),
		Choices:         choices,
	})

	room := c.media.NewRoom(opts)
	encrypted, err := SetupEncryption(ctx, room, opts, passphrase, c.alerter, c.logger)
	if err != nil {
		c.HandleEncryptionError(err)
		return opts, err
	}

	c.logger.Info("connecting to media room",
		zap.String("room", details.RoomName),
		zap.String("server_url", details.ServerURL),
		zap.Bool("e2ee", encrypted),
		zap.String("codec", string(opts.Publish.VideoCodec)),
	)
	if err := room.Connect(ctx, details.ServerURL, details.ParticipantToken, BuildConnectOptions(choices)); err != nil {
		c.HandleError(err)
		return opts, err
	}
	return opts, nil
}

// HandleError registra y avisa; nunca se traga el error.
func (c *Conference) HandleError(err error) {
	c.logger.Error("media session error", zap.Error(err))
	c.alert(fmt.Sprintf("Encountered an unexpected error, check the console logs for details: %s", err.Error()))
}

func (c *Conference) HandleEncryptionError(err error) {
	c.logger.Error("media encryption error", zap.Error(err))
	c.alert(fmt.Sprintf("Encountered an unexpected encryption error, check the console logs for details: %s", err.Error()))
}

// HandleDisconnected corta el handshake del agente y devuelve al usuario al inicio.
func (c *Conference) HandleDisconnected() {
	if c.conns != nil {
		c.conns.Disconnect()
	}
	c.flow.Disconnected()
}

func (c *Conference) alert(msg string) {
	if c.alerter != nil {
		c.alerter.Alert(msg)
	}
}

// Details es un atajo para leer las credenciales activas.
func (c *Conference) Details() (domain.ConnectionDetails, bool) {
	details, _, ok := c.flow.Session()
	return details, ok
}
