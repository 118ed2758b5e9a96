package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"interview-room/internal/client"
	"interview-room/internal/domain"
)

// Stage es la pantalla en la que esta el flujo de pre-join.
type Stage int

const (
	StageIntake Stage = iota
	StageComposed
	StagePreJoin
	StageActive
	StageExited
)

func (s Stage) String() string {
	switch s {
	case StageIntake:
		return "intake"
	case StageComposed:
		return "composed"
	case StagePreJoin:
		return "prejoin"
	case StageActive:
		return "active"
	case StageExited:
		return "exited"
	default:
		return "unknown"
	}
}

const IntakeValidationMessage = "Your CV or job description is lacking content."

var (
	ErrIntakeIncomplete = errors.New(IntakeValidationMessage)
	ErrWrongStage       = errors.New("action not allowed in current stage")
	ErrSubmitInProgress = errors.New("pre-join submit already in progress")
	ErrMissingUsername  = errors.New("display name is required")
)

// ConnectionDetailsFetcher pide credenciales de la sala de entrevista.
type ConnectionDetailsFetcher interface {
	FetchConnectionDetails(ctx context.Context, req client.ConnectionDetailsRequest) (domain.ConnectionDetails, error)
}

// Navigator devuelve al usuario a la entrada de la aplicacion.
type Navigator interface {
	Home()
}

// FlowConfig agrupa lo que el flujo necesita saber de la sala.
type FlowConfig struct {
	RoomName      string
	Region        string
	Keys          *APIKeySource
	TurnDetection domain.TurnDetection
}

// Flow secuencia intake -> composed -> prejoin -> active.
type Flow struct {
	mu         sync.Mutex
	stage      Stage
	interview  domain.InterviewContext
	details    domain.ConnectionDetails
	choices    domain.UserChoices
	submitting bool
	nextID     int
	subs       map[int]func(Stage)

	cfg     FlowConfig
	fetcher ConnectionDetailsFetcher
	nav     Navigator
	prompt  InterviewPromptBuilder
	logger  *zap.Logger
}

func NewFlow(cfg FlowConfig, fetcher ConnectionDetailsFetcher, nav Navigator, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Keys == nil {
		cfg.Keys = NewAPIKeySource("")
	}
	if cfg.TurnDetection == "" {
		cfg.TurnDetection = domain.TurnDetectionServerVAD
	}
	return &Flow{
		stage:   StageIntake,
		subs:    make(map[int]func(Stage)),
		cfg:     cfg,
		fetcher: fetcher,
		nav:     nav,
		logger:  logger,
	}
}

func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

func (f *Flow) Interview() domain.InterviewContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interview
}

// Session devuelve credenciales y elecciones; ok es false fuera de Active.
func (f *Flow) Session() (domain.ConnectionDetails, domain.UserChoices, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stage != StageActive {
		return domain.ConnectionDetails{}, domain.UserChoices{}, false
	}
	return f.details, f.choices, true
}

// SubmitIntake valida el material del candidato y compone las instrucciones.
// Un intento rechazado no cambia la etapa ni hace llamadas de red.
func (f *Flow) SubmitIntake(resume, jobDescription string) error {
	if strings.TrimSpace(resume) == "" || strings.TrimSpace(jobDescription) == "" {
		return ErrIntakeIncomplete
	}

	f.mu.Lock()
	if f.stage != StageIntake {
		f.mu.Unlock()
		return ErrWrongStage
	}
	f.interview = f.prompt.BuildInterviewContext(resume, jobDescription)
	f.stage = StageComposed
	f.mu.Unlock()
	f.notify(StageComposed)

	f.mu.Lock()
	f.stage = StagePreJoin
	f.mu.Unlock()
	f.notify(StagePreJoin)
	return nil
}

// SubmitPreJoin pide credenciales y pasa a Active solo con la respuesta ya parseada.
// Si falla, el flujo se queda en PreJoin sin reintentar.
func (f *Flow) SubmitPreJoin(ctx context.Context, choices domain.UserChoices) error {
	if strings.TrimSpace(choices.Username) == "" {
		return ErrMissingUsername
	}

	f.mu.Lock()
	if f.stage != StagePreJoin {
		f.mu.Unlock()
		return ErrWrongStage
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.submitting = true
	instructions := f.interview.Instructions
	f.mu.Unlock()

	details, err := f.fetcher.FetchConnectionDetails(ctx, client.ConnectionDetailsRequest{
		RoomName:        f.cfg.RoomName,
		ParticipantName: choices.Username,
		Region:          f.cfg.Region,
		Metadata: domain.AgentMetadata{
			OpenAIAPIKey:  f.cfg.Keys.Get(),
			Instructions:  instructions,
			TurnDetection: f.cfg.TurnDetection,
		},
	})

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.mu.Unlock()
		f.logger.Error("fetch connection details failed",
			zap.String("room", f.cfg.RoomName),
			zap.Error(err),
		)
		return err
	}
	f.details = details
	f.choices = choices
	f.stage = StageActive
	f.mu.Unlock()

	f.notify(StageActive)
	return nil
}

// Disconnected es la salida de una sola via tras una desconexion de la sesion de medios.
func (f *Flow) Disconnected() {
	f.mu.Lock()
	if f.stage != StageActive {
		f.mu.Unlock()
		return
	}
	f.stage = StageExited
	f.mu.Unlock()

	f.notify(StageExited)
	if f.nav != nil {
		f.nav.Home()
	}
}

func (f *Flow) Subscribe(fn func(Stage)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *Flow) notify(stage Stage) {
	f.mu.Lock()
	subs := make([]func(Stage), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(stage)
	}
}
