package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"interview-room/internal/domain"
)

type mockMediaFactory struct {
	supportsE2EE bool
	room         *mockRoom
	lastOpts     RoomOptions
}

func (m *mockMediaFactory) SupportsE2EE() bool { return m.supportsE2EE }

func (m *mockMediaFactory) NewRoom(opts RoomOptions) MediaRoom {
	m.lastOpts = opts
	return m.room
}

func activeFlow(t *testing.T, nav Navigator) *Flow {
	t.Helper()
	f := newTestFlow(&mockDetailsFetcher{details: domain.ConnectionDetails{
		ServerURL:        "wss://eu.example.com",
		RoomName:         "abc123",
		ParticipantToken: "tok",
		ParticipantName:  "alice",
	}}, nav)
	if err := f.SubmitIntake("cv", "jd"); err != nil {
		t.Fatalf("submit intake: %v", err)
	}
	choices := domain.UserChoices{Username: "alice", VideoEnabled: true, AudioEnabled: true, VideoDeviceID: "cam1"}
	if err := f.SubmitPreJoin(context.Background(), choices); err != nil {
		t.Fatalf("submit prejoin: %v", err)
	}
	return f
}

func TestConference_StartPlain(t *testing.T) {
	room := &mockRoom{}
	media := &mockMediaFactory{room: room}
	c := NewConference(activeFlow(t, nil), nil, media, nil, zap.NewNop())

	opts, err := c.Start(context.Background(), Preferences{Quality: QualityHigh, Codec: CodecVP9})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if opts.E2EE != nil || room.e2eeEnabled {
		t.Fatalf("expected plain session")
	}
	if opts.Publish.VideoCodec != CodecVP9 || opts.VideoCapture.Resolution != PresetH2160 || opts.VideoCapture.DeviceID != "cam1" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if !room.connected || room.url != "wss://eu.example.com" || room.token != "tok" {
		t.Fatalf("expected room connected with details, got %+v", room)
	}
	if !room.connectOpts.AutoSubscribe || !room.connectOpts.Video || !room.connectOpts.Audio {
		t.Fatalf("unexpected connect options %+v", room.connectOpts)
	}
}

func TestConference_StartEncrypted(t *testing.T) {
	room := &mockRoom{}
	media := &mockMediaFactory{room: room, supportsE2EE: true}
	c := NewConference(activeFlow(t, nil), nil, media, nil, zap.NewNop())

	opts, err := c.Start(context.Background(), Preferences{Codec: CodecAV1, PassphraseFragment: "#s3cret"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if opts.E2EE == nil || !room.e2eeEnabled {
		t.Fatalf("expected encrypted session")
	}
	if opts.Publish.VideoCodec != CodecUnspecified || opts.Publish.RED {
		t.Fatalf("unexpected publish options %+v", opts.Publish)
	}
}

func TestConference_UnsupportedEncryptionFallsBack(t *testing.T) {
	room := &mockRoom{e2eeErr: ErrDeviceUnsupported}
	alerts := &recordingAlerter{}
	media := &mockMediaFactory{room: room, supportsE2EE: true}
	c := NewConference(activeFlow(t, nil), nil, media, alerts, zap.NewNop())

	if _, err := c.Start(context.Background(), Preferences{PassphraseFragment: "#s3cret"}); err != nil {
		t.Fatalf("expected fallback, got %v", err)
	}
	if !room.connected {
		t.Fatalf("expected plain session to connect")
	}
	if len(alerts.msgs) != 1 {
		t.Fatalf("expected alert, got %v", alerts.msgs)
	}
}

func TestConference_ConnectErrorIsAlerted(t *testing.T) {
	room := &mockRoom{connectErr: errors.New("signal timeout")}
	alerts := &recordingAlerter{}
	c := NewConference(activeFlow(t, nil), nil, &mockMediaFactory{room: room}, alerts, zap.NewNop())

	if _, err := c.Start(context.Background(), Preferences{}); err == nil {
		t.Fatalf("expected connect error")
	}
	if len(alerts.msgs) != 1 || !strings.Contains(alerts.msgs[0], "signal timeout") {
		t.Fatalf("expected alert with error message, got %v", alerts.msgs)
	}
}

func TestConference_RequiresActiveFlow(t *testing.T) {
	f := newTestFlow(&mockDetailsFetcher{}, nil)
	c := NewConference(f, nil, &mockMediaFactory{room: &mockRoom{}}, nil, zap.NewNop())
	if _, err := c.Start(context.Background(), Preferences{}); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
	if _, ok := c.Details(); ok {
		t.Fatalf("expected no details outside active")
	}
}

func TestConference_HandleDisconnected(t *testing.T) {
	nav := &mockNavigator{}
	keys := NewAPIKeySource("sk")
	conns := NewConnectionStore(&mockTokenFetcher{url: "wss://lk", token: "tok"}, keys, zap.NewNop())
	defer conns.Close()
	if err := conns.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	flow := activeFlow(t, nav)
	c := NewConference(flow, conns, &mockMediaFactory{room: &mockRoom{}}, nil, zap.NewNop())
	if d, ok := c.Details(); !ok || d.RoomName != "abc123" {
		t.Fatalf("expected active details, got %+v %v", d, ok)
	}

	c.HandleDisconnected()
	if conns.State().ShouldConnect {
		t.Fatalf("expected agent connection to be dropped")
	}
	if flow.Stage() != StageExited || nav.homes != 1 {
		t.Fatalf("expected navigation home, stage=%s homes=%d", flow.Stage(), nav.homes)
	}
}
