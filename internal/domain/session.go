package domain

// ConnectionDetails es el paquete de credenciales para unirse a una sala.
type ConnectionDetails struct {
	ServerURL        string `json:"serverUrl"`
	RoomName         string `json:"roomName"`
	ParticipantToken string `json:"participantToken"`
	ParticipantName  string `json:"participantName"`
}

// ConnectionState es una foto del estado de conexion del cliente.
type ConnectionState struct {
	ServerURL     string `json:"serverUrl"`
	Token         string `json:"token"`
	ShouldConnect bool   `json:"shouldConnect"`
}

// Ready indica si hay URL y token para intentar conectar.
func (s ConnectionState) Ready() bool {
	return s.ServerURL != "" && s.Token != ""
}

// UserChoices son las preferencias elegidas en la pantalla de pre-join.
type UserChoices struct {
	Username      string `json:"username"`
	VideoEnabled  bool   `json:"videoEnabled"`
	AudioEnabled  bool   `json:"audioEnabled"`
	VideoDeviceID string `json:"videoDeviceId,omitempty"`
	AudioDeviceID string `json:"audioDeviceId,omitempty"`
}

// DefaultUserChoices replica los valores iniciales del formulario de pre-join.
func DefaultUserChoices() UserChoices {
	return UserChoices{VideoEnabled: true, AudioEnabled: true}
}
