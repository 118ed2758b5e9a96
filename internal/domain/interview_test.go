package domain

import (
	"encoding/json"
	"testing"
)

func TestParseTurnDetection(t *testing.T) {
	if got, ok := ParseTurnDetection(""); !ok || got != TurnDetectionServerVAD {
		t.Fatalf("expected empty to default to server_vad, got %q %v", got, ok)
	}
	if got, ok := ParseTurnDetection("server_vad"); !ok || got != TurnDetectionServerVAD {
		t.Fatalf("expected server_vad, got %q %v", got, ok)
	}
	if _, ok := ParseTurnDetection("push_to_talk"); ok {
		t.Fatalf("expected unknown mode rejected")
	}
}

func TestAgentMetadataJSON(t *testing.T) {
	raw, err := json.Marshal(AgentMetadata{Instructions: "hi", TurnDetection: TurnDetectionServerVAD})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"instructions":"hi","turn_detection":"server_vad"}` {
		t.Fatalf("unexpected metadata json %s", raw)
	}
}
