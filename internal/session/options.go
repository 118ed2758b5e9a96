package session

import (
	"fmt"
	"strings"

	"interview-room/internal/domain"
)

// VideoCodec es el codec de video preferido para publicar.
type VideoCodec string

const (
	CodecUnspecified VideoCodec = ""
	CodecVP8         VideoCodec = "vp8"
	CodecH264        VideoCodec = "h264"
	CodecVP9         VideoCodec = "vp9"
	CodecAV1         VideoCodec = "av1"

	defaultCodec = CodecVP9
)

// ParseCodec acepta los codecs soportados por el transporte; vacio es "sin preferencia".
func ParseCodec(s string) (VideoCodec, error) {
	codec := VideoCodec(strings.ToLower(strings.TrimSpace(s)))
	switch codec {
	case CodecUnspecified, CodecVP8, CodecH264, CodecVP9, CodecAV1:
		return codec, nil
	default:
		return CodecUnspecified, fmt.Errorf("unsupported video codec %q", s)
	}
}

// incompatibleWithE2EE lista los codecs que no funcionan con cifrado de extremo a extremo.
func (c VideoCodec) incompatibleWithE2EE() bool {
	return c == CodecVP9 || c == CodecAV1
}

// Quality es la preferencia de calidad de video.
type Quality int

const (
	QualityNormal Quality = iota
	QualityHigh
)

// VideoPreset es un escalon de resolucion con su encoding.
type VideoPreset struct {
	Name         string
	Width        int
	Height       int
	MaxBitrate   int
	MaxFramerate int
}

var (
	PresetH216  = VideoPreset{Name: "h216", Width: 384, Height: 216, MaxBitrate: 180_000, MaxFramerate: 15}
	PresetH540  = VideoPreset{Name: "h540", Width: 960, Height: 540, MaxBitrate: 800_000, MaxFramerate: 25}
	PresetH720  = VideoPreset{Name: "h720", Width: 1280, Height: 720, MaxBitrate: 1_700_000, MaxFramerate: 30}
	PresetH1080 = VideoPreset{Name: "h1080", Width: 1920, Height: 1080, MaxBitrate: 3_000_000, MaxFramerate: 30}
	PresetH2160 = VideoPreset{Name: "h2160", Width: 3840, Height: 2160, MaxBitrate: 8_000_000, MaxFramerate: 30}
)

type VideoCaptureOptions struct {
	DeviceID   string
	Resolution VideoPreset
}

type AudioCaptureOptions struct {
	DeviceID string
}

type PublishOptions struct {
	DTX             bool
	RED             bool
	VideoCodec      VideoCodec
	SimulcastLayers []VideoPreset
}

type AdaptiveStreamOptions struct {
	PixelDensity string
}

// E2EEOptions solo existe cuando hay passphrase y el entorno soporta el worker de cifrado.
type E2EEOptions struct {
	KeyProvider *KeyProvider
}

// RoomOptions es la configuracion de capacidades que recibe el SDK de medios.
type RoomOptions struct {
	VideoCapture   VideoCaptureOptions
	AudioCapture   AudioCaptureOptions
	Publish        PublishOptions
	AdaptiveStream AdaptiveStreamOptions
	Dynacast       bool
	E2EE           *E2EEOptions
}

// ConnectOptions son las opciones de conexion a la sala.
type ConnectOptions struct {
	AutoSubscribe bool
	Video         bool
	Audio         bool
}

// OptionsInput son las preferencias del usuario que alimentan BuildRoomOptions.
type OptionsInput struct {
	Quality         Quality
	Codec           VideoCodec
	Passphrase      string
	WorkerSupported bool
	KeyProvider     *KeyProvider
	Choices         domain.UserChoices
}

// E2EEEnabled indica si la sesion debe ir cifrada.
func (in OptionsInput) E2EEEnabled() bool {
	return in.Passphrase != "" && in.WorkerSupported
}

// BuildRoomOptions deriva las capacidades de la sesion sin efectos secundarios.
func BuildRoomOptions(in OptionsInput) RoomOptions {
	e2ee := in.E2EEEnabled()

	codec := in.Codec
	if codec == CodecUnspecified {
		codec = defaultCodec
	}
	if e2ee && codec.incompatibleWithE2EE() {
		codec = CodecUnspecified
	}

	resolution := PresetH720
	layers := []VideoPreset{PresetH540, PresetH216}
	if in.Quality == QualityHigh {
		resolution = PresetH2160
		layers = []VideoPreset{PresetH1080, PresetH720}
	}

	opts := RoomOptions{
		VideoCapture: VideoCaptureOptions{
			DeviceID:   in.Choices.VideoDeviceID,
			Resolution: resolution,
		},
		AudioCapture: AudioCaptureOptions{
			DeviceID: in.Choices.AudioDeviceID,
		},
		Publish: PublishOptions{
			DTX:             false,
			RED:             !e2ee,
			VideoCodec:      codec,
			SimulcastLayers: layers,
		},
		AdaptiveStream: AdaptiveStreamOptions{PixelDensity: "screen"},
		Dynacast:       true,
	}
	if e2ee {
		opts.E2EE = &E2EEOptions{KeyProvider: in.KeyProvider}
	}
	return opts
}

// BuildConnectOptions replica las elecciones de pre-join en la conexion.
func BuildConnectOptions(choices domain.UserChoices) ConnectOptions {
	return ConnectOptions{
		AutoSubscribe: true,
		Video:         choices.VideoEnabled,
		Audio:         choices.AudioEnabled,
	}
}
