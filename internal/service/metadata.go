package service

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const agentKeyField = "openai_api_key"

// serializeMetadata compacta el valor opaco que llega del cliente; vacio si no hay metadata.
func serializeMetadata(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", fmt.Errorf("serialize metadata: %w", err)
	}
	return buf.String(), nil
}

// embedAgentKey fija la API key del agente en el metadata cuando el servidor tiene una.
// Solo aplica a objetos JSON (o metadata ausente); cualquier otro valor se deja intacto.
func embedAgentKey(raw json.RawMessage, agentKey string) (json.RawMessage, error) {
	if agentKey == "" {
		return raw, nil
	}
	trimmed := bytes.TrimSpace(raw)
	fields := map[string]any{}
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if trimmed[0] != '{' {
			return raw, nil
		}
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	fields[agentKeyField] = agentKey
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return out, nil
}
