package domain

// InterviewContext es el material del candidato que alimenta las instrucciones del agente.
type InterviewContext struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
	Instructions   string `json:"instructions"`
}

// TurnDetection es como el agente decide que el candidato termino de hablar.
type TurnDetection string

const TurnDetectionServerVAD TurnDetection = "server_vad"

type TurnDetectionType struct {
	ID          TurnDetection `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
}

// TurnDetectionTypes lista los modos soportados por el agente.
var TurnDetectionTypes = []TurnDetectionType{
	{
		ID:          TurnDetectionServerVAD,
		Name:        "Server VAD",
		Description: "The model will automatically detect when the user has finished speaking and end the turn.",
	},
}

// ParseTurnDetection acepta solo modos conocidos; vacio es server_vad.
func ParseTurnDetection(s string) (TurnDetection, bool) {
	if s == "" {
		return TurnDetectionServerVAD, true
	}
	for _, t := range TurnDetectionTypes {
		if string(t.ID) == s {
			return t.ID, true
		}
	}
	return "", false
}

// AgentMetadata viaja serializada en el metadata del participante.
type AgentMetadata struct {
	OpenAIAPIKey  string        `json:"openai_api_key,omitempty"`
	Instructions  string        `json:"instructions"`
	TurnDetection TurnDetection `json:"turn_detection,omitempty"`
}
