package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"interview-room/internal/session"
)

// terminalAlerter imprime los avisos que en un navegador serian un alert.
type terminalAlerter struct {
	out io.Writer
}

func (a terminalAlerter) Alert(msg string) {
	fmt.Fprintf(a.out, "\n[!] %s\n", msg)
}

type homeNavigator struct {
	out io.Writer
}

func (n homeNavigator) Home() {
	fmt.Fprintln(n.out, "Session ended. Back to the home screen.")
}

// terminalMedia no transmite medios; muestra lo que recibiria el SDK.
type terminalMedia struct {
	out         io.Writer
	e2eeCapable bool
}

func (m *terminalMedia) SupportsE2EE() bool { return m.e2eeCapable }

func (m *terminalMedia) NewRoom(opts session.RoomOptions) session.MediaRoom {
	layers := make([]string, 0, len(opts.Publish.SimulcastLayers))
	for _, l := range opts.Publish.SimulcastLayers {
		layers = append(layers, l.Name)
	}
	fmt.Fprintf(m.out, "Publishing %s capture, simulcast %s, red=%t dynacast=%t\n",
		opts.VideoCapture.Resolution.Name, strings.Join(layers, "/"), opts.Publish.RED, opts.Dynacast)
	return &terminalRoom{out: m.out, e2eeCapable: m.e2eeCapable}
}

type terminalRoom struct {
	out         io.Writer
	e2eeCapable bool
	encrypted   bool
}

func (r *terminalRoom) SetE2EEEnabled(_ context.Context, enabled bool) error {
	if enabled && !r.e2eeCapable {
		return session.ErrDeviceUnsupported
	}
	r.encrypted = enabled
	return nil
}

func (r *terminalRoom) Connect(_ context.Context, serverURL, token string, opts session.ConnectOptions) error {
	if serverURL == "" || token == "" {
		return fmt.Errorf("missing server url or token")
	}
	fmt.Fprintf(r.out, "Joined %s (video=%t audio=%t autosubscribe=%t e2ee=%t)\n",
		serverURL, opts.Video, opts.Audio, opts.AutoSubscribe, r.encrypted)
	return nil
}
