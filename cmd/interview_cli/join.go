package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"interview-room/internal/client"
	"interview-room/internal/config"
	"interview-room/internal/domain"
	"interview-room/internal/session"
)

type joinOptions struct {
	room           string
	region         string
	highQuality    bool
	codec          string
	passphrase     string
	e2eeSupported  bool
	resumeMaxBytes int64
	turnDetection  string
}

func newJoinCmd() *cobra.Command {
	opts := joinOptions{}
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Walk through intake and pre-join, then join the interview room",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClientConfig()
			if err != nil {
				return err
			}
			if opts.region == "" {
				opts.region = cfg.Region
			}
			if opts.room == "" {
				opts.room = strings.Split(uuid.NewString(), "-")[0]
			}
			logger := zap.NewExample()
			defer logger.Sync()

			return runJoin(cmd.Context(), cfg, opts, bufio.NewReader(os.Stdin), cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVar(&opts.room, "room", "", "room name (random when empty)")
	cmd.Flags().StringVar(&opts.region, "region", "", "region code for the media server (LIVEKIT_REGION)")
	cmd.Flags().BoolVar(&opts.highQuality, "hq", false, "publish high quality video")
	cmd.Flags().StringVar(&opts.codec, "codec", "", "preferred video codec (vp8, h264, vp9, av1)")
	cmd.Flags().StringVar(&opts.passphrase, "passphrase", "", "shared E2EE passphrase, url-encoded as in the room link fragment")
	cmd.Flags().BoolVar(&opts.e2eeSupported, "e2ee-supported", true, "whether this device can run end-to-end encryption")
	cmd.Flags().Int64Var(&opts.resumeMaxBytes, "resume-max-bytes", 5<<20, "maximum resume size to read")
	cmd.Flags().StringVar(&opts.turnDetection, "turn-detection", string(domain.TurnDetectionServerVAD), "how the agent detects the end of a turn")
	return cmd
}

func runJoin(ctx context.Context, cfg *config.ClientConfig, opts joinOptions, reader *bufio.Reader, out io.Writer, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	codec, err := session.ParseCodec(opts.codec)
	if err != nil {
		return err
	}
	turnDetection, ok := domain.ParseTurnDetection(opts.turnDetection)
	if !ok {
		return fmt.Errorf("unsupported turn detection %q", opts.turnDetection)
	}

	keys := session.NewAPIKeySource(cfg.AgentAPIKey)
	api := client.NewHTTPClient(cfg.APIBaseURL, cfg.ConnDetailsEndpoint, logger)

	conns := session.NewConnectionStore(api, keys, logger)
	defer conns.Close()
	conns.Subscribe(func(state domain.ConnectionState) {
		logger.Info("agent connection state",
			zap.Bool("should_connect", state.ShouldConnect),
			zap.String("server_url", state.ServerURL),
		)
	})
	if keys.Get() == "" {
		fmt.Fprintln(out, "No OpenAI API key configured (OPEN_AI_KEY); the server key will be used if present.")
	} else if err := conns.Connect(ctx); err != nil {
		logger.Error("agent handshake failed", zap.Error(err))
	}

	flow := session.NewFlow(session.FlowConfig{
		RoomName:      opts.room,
		Region:        opts.region,
		Keys:          keys,
		TurnDetection: turnDetection,
	}, api, homeNavigator{out: out}, logger)
	flow.Subscribe(func(stage session.Stage) {
		logger.Debug("flow stage changed", zap.String("stage", stage.String()))
	})

	if err := runIntake(ctx, flow, reader, out, opts.resumeMaxBytes); err != nil {
		return err
	}
	if err := runPreJoin(ctx, flow, reader, out); err != nil {
		return err
	}

	prefs := session.Preferences{
		Quality:            session.QualityNormal,
		Codec:              codec,
		PassphraseFragment: opts.passphrase,
	}
	if opts.highQuality {
		prefs.Quality = session.QualityHigh
	}
	if cfg.ShowSettingsMenu {
		prefs = runSettingsMenu(reader, out, prefs)
	}

	media := &terminalMedia{out: out, e2eeCapable: opts.e2eeSupported}
	conference := session.NewConference(flow, conns, media, terminalAlerter{out: out}, logger)
	roomOpts, err := conference.Start(ctx, prefs)
	if err != nil {
		return err
	}
	if details, ok := conference.Details(); ok {
		fmt.Fprintf(out, "Room %s as %s (codec=%q resolution=%s)\n",
			details.RoomName, details.ParticipantName, roomOpts.Publish.VideoCodec, roomOpts.VideoCapture.Resolution.Name)
	}

	fmt.Fprint(out, "Press Enter to leave the interview...")
	_, _ = reader.ReadString('\n')
	conference.HandleDisconnected()
	return nil
}

func runIntake(ctx context.Context, flow *session.Flow, reader *bufio.Reader, out io.Writer, maxBytes int64) error {
	for {
		fmt.Fprintln(out, "===== Interview setup =====")
		path, err := prompt(reader, out, "Resume file path: ")
		if err != nil {
			return err
		}
		resume, err := readResume(ctx, path, maxBytes)
		if err != nil {
			fmt.Fprintf(out, "Could not read resume: %v\n", err)
			continue
		}
		fmt.Fprintln(out, "Job description (finish with a single '.' line):")
		jobDescription, err := readMultiline(reader)
		if err != nil {
			return err
		}

		err = flow.SubmitIntake(resume, jobDescription)
		if errors.Is(err, session.ErrIntakeIncomplete) {
			fmt.Fprintln(out, err.Error())
			continue
		}
		return err
	}
}

// resumeExtractor usa la extension; sin ".pdf" el contenido decide.
func resumeExtractor(path string, maxBytes int64) session.TextExtractor {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return session.PDFExtractor{MaxBytes: maxBytes}
	}
	return session.DocumentExtractor{MaxBytes: maxBytes}
}

func readResume(ctx context.Context, path string, maxBytes int64) (string, error) {
	extractor := resumeExtractor(path, maxBytes)
	if path == "" {
		return session.ExtractResume(ctx, extractor, nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return session.ExtractResume(ctx, extractor, f)
}

func runPreJoin(ctx context.Context, flow *session.Flow, reader *bufio.Reader, out io.Writer) error {
	choices := domain.DefaultUserChoices()
	for {
		fmt.Fprintln(out, "===== Pre-join =====")
		name, err := prompt(reader, out, "Display name: ")
		if err != nil {
			return err
		}
		choices.Username = name
		choices.VideoEnabled = confirm(reader, out, "Camera on? [Y/n]: ", choices.VideoEnabled)
		choices.AudioEnabled = confirm(reader, out, "Microphone on? [Y/n]: ", choices.AudioEnabled)

		err = flow.SubmitPreJoin(ctx, choices)
		if err == nil {
			return nil
		}
		if errors.Is(err, session.ErrWrongStage) {
			return err
		}
		fmt.Fprintf(out, "Could not join: %v\n", err)
		if !confirm(reader, out, "Try again? [Y/n]: ", true) {
			return err
		}
	}
}

func runSettingsMenu(reader *bufio.Reader, out io.Writer, prefs session.Preferences) session.Preferences {
	fmt.Fprintln(out, "===== Settings =====")
	prefs.Quality = session.QualityNormal
	if confirm(reader, out, "High quality video? [y/N]: ", false) {
		prefs.Quality = session.QualityHigh
	}
	for {
		raw, err := prompt(reader, out, fmt.Sprintf("Video codec [%s]: ", codecLabel(prefs.Codec)))
		if err != nil || raw == "" {
			return prefs
		}
		codec, err := session.ParseCodec(raw)
		if err != nil {
			fmt.Fprintln(out, err.Error())
			continue
		}
		prefs.Codec = codec
		return prefs
	}
}

func codecLabel(c session.VideoCodec) string {
	if c == session.CodecUnspecified {
		return "default"
	}
	return string(c)
}

// prompt devuelve io.EOF solo cuando la entrada se cerro sin texto.
func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

func confirm(reader *bufio.Reader, out io.Writer, label string, def bool) bool {
	answer, err := prompt(reader, out, label)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "si":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// readMultiline lee hasta una linea con un solo punto o EOF.
func readMultiline(reader *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) == "." {
			break
		}
		sb.WriteString(line)
		if err == io.EOF {
			if sb.Len() == 0 {
				return "", io.EOF
			}
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
