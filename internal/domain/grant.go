package domain

import "time"

// DefaultTokenTTL es la validez por defecto de un token de participante.
const DefaultTokenTTL = 60 * time.Minute

// VideoGrant describe los permisos embebidos en un access token.
type VideoGrant struct {
	Room                 string `json:"room,omitempty"`
	RoomJoin             bool   `json:"roomJoin,omitempty"`
	CanPublish           *bool  `json:"canPublish,omitempty"`
	CanPublishData       *bool  `json:"canPublishData,omitempty"`
	CanSubscribe         *bool  `json:"canSubscribe,omitempty"`
	CanUpdateOwnMetadata *bool  `json:"canUpdateOwnMetadata,omitempty"`
}

// SessionGrant agrupa identidad, permisos y TTL de un token.
type SessionGrant struct {
	Identity string
	Name     string
	Metadata string
	Video    VideoGrant
	TTL      time.Duration
}

// ParticipantGrant devuelve el grant completo de la sala de entrevista.
func ParticipantGrant(room string) VideoGrant {
	yes := true
	return VideoGrant{
		Room:                 room,
		RoomJoin:             true,
		CanPublish:           &yes,
		CanPublishData:       &yes,
		CanSubscribe:         &yes,
		CanUpdateOwnMetadata: &yes,
	}
}

// JoinOnlyGrant devuelve un grant que solo permite unirse a la sala.
func JoinOnlyGrant(room string) VideoGrant {
	return VideoGrant{Room: room, RoomJoin: true}
}
