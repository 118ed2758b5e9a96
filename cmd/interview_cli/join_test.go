package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-room/internal/config"
	apihttp "interview-room/internal/http"
	"interview-room/internal/service"
	"interview-room/internal/session"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService("devkey", "devsecret", time.Hour)
	regions := service.NewRegionResolver("wss://default.example.com", map[string]string{
		"LIVEKIT_URL_EU": "wss://eu.example.com",
	})
	conns := service.NewConnectionService(zap.NewNop(), tokens, regions, "")
	router := apihttp.NewRouter(zap.NewNop(), apihttp.NewConnectionHandler(zap.NewNop(), conns), service.NewIssueRateLimiter(service.IssueRateConfig{Limit: 100}), nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunJoin_EndToEnd(t *testing.T) {
	srv := newTestAPI(t)

	resumePath := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(resumePath, []byte("Go developer, 5 years"), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}

	input := strings.Join([]string{
		resumePath,
		"Backend engineer",
		".",
		"alice",
		"",
		"n",
		"",
	}, "\n") + "\n"

	var out bytes.Buffer
	cfg := &config.ClientConfig{APIBaseURL: srv.URL, AgentAPIKey: "sk-test"}
	opts := joinOptions{room: "abc123", region: "eu", codec: "vp8"}

	if err := runJoin(context.Background(), cfg, opts, bufio.NewReader(strings.NewReader(input)), &out, zap.NewNop()); err != nil {
		t.Fatalf("run join: %v\noutput:\n%s", err, out.String())
	}

	got := out.String()
	for _, want := range []string{
		"Joined wss://eu.example.com (video=true audio=false",
		"Publishing h720 capture, simulcast h540/h216, red=true dynacast=true",
		"Room abc123 as alice",
		`codec="vp8"`,
		"Session ended",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunJoin_RepromptsIncompleteIntake(t *testing.T) {
	srv := newTestAPI(t)

	resumePath := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(resumePath, []byte("Go developer"), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}

	input := strings.Join([]string{
		resumePath,
		".",
		resumePath,
		"Backend engineer",
		".",
		"bob",
		"",
		"",
		"",
	}, "\n") + "\n"

	var out bytes.Buffer
	cfg := &config.ClientConfig{APIBaseURL: srv.URL}
	if err := runJoin(context.Background(), cfg, joinOptions{room: "r1"}, bufio.NewReader(strings.NewReader(input)), &out, zap.NewNop()); err != nil {
		t.Fatalf("run join: %v\noutput:\n%s", err, out.String())
	}
	if strings.Count(out.String(), session.IntakeValidationMessage) != 1 {
		t.Fatalf("expected one validation message:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Joined wss://default.example.com") {
		t.Fatalf("expected default region join:\n%s", out.String())
	}
}

func TestRunJoin_StopsOnClosedInput(t *testing.T) {
	var out bytes.Buffer
	cfg := &config.ClientConfig{APIBaseURL: "http://127.0.0.1:1"}
	err := runJoin(context.Background(), cfg, joinOptions{room: "r1"}, bufio.NewReader(strings.NewReader("")), &out, zap.NewNop())
	if err == nil {
		t.Fatalf("expected error on closed input")
	}
}

func TestTerminalRoom_UnsupportedE2EE(t *testing.T) {
	var out bytes.Buffer
	media := &terminalMedia{out: &out}
	room := media.NewRoom(session.RoomOptions{})
	if err := room.SetE2EEEnabled(context.Background(), true); err != session.ErrDeviceUnsupported {
		t.Fatalf("expected ErrDeviceUnsupported, got %v", err)
	}
	if err := room.Connect(context.Background(), "", "tok", session.ConnectOptions{}); err == nil {
		t.Fatalf("expected error without server url")
	}
}

func TestReadMultiline(t *testing.T) {
	got, err := readMultiline(bufio.NewReader(strings.NewReader("line one\nline two\n.\nignored\n")))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "line one\nline two" {
		t.Fatalf("unexpected text %q", got)
	}
	if _, err := readMultiline(bufio.NewReader(strings.NewReader(""))); err == nil {
		t.Fatalf("expected EOF on empty input")
	}
}

func TestResumeExtractor_ByFileType(t *testing.T) {
	if _, ok := resumeExtractor("/tmp/CV.PDF", 10).(session.PDFExtractor); !ok {
		t.Fatalf("expected pdf extractor for .PDF files")
	}
	if _, ok := resumeExtractor("/tmp/cv.txt", 10).(session.DocumentExtractor); !ok {
		t.Fatalf("expected sniffing extractor for other files")
	}
}

func TestReadResume_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(path, []byte("a long resume"), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}
	if _, err := readResume(context.Background(), path, 4); !errors.Is(err, session.ErrResumeTooLarge) {
		t.Fatalf("expected ErrResumeTooLarge, got %v", err)
	}
}

func TestRunJoin_RejectsUnknownTurnDetection(t *testing.T) {
	var out bytes.Buffer
	cfg := &config.ClientConfig{APIBaseURL: "http://127.0.0.1:1"}
	err := runJoin(context.Background(), cfg, joinOptions{room: "r1", turnDetection: "push_to_talk"}, bufio.NewReader(strings.NewReader("")), &out, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "push_to_talk") {
		t.Fatalf("expected unsupported turn detection error, got %v", err)
	}
}
