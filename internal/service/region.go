package service

import (
	"errors"
	"strings"
)

const defaultURLKey = "LIVEKIT_URL"

var ErrRegionNotConfigured = errors.New("region url not configured")

// RegionError indica que la variable de la region pedida no tiene valor.
type RegionError struct {
	Key string
}

func (e *RegionError) Error() string {
	return e.Key + " is not defined"
}

func (e *RegionError) Is(target error) bool {
	return target == ErrRegionNotConfigured
}

// RegionResolver traduce un codigo de region a la URL del servidor de medios.
type RegionResolver struct {
	defaultURL string
	regions    map[string]string
}

// NewRegionResolver recibe las URLs LIVEKIT_URL_<REGION> leidas al arrancar.
func NewRegionResolver(defaultURL string, regionURLs map[string]string) *RegionResolver {
	regions := make(map[string]string, len(regionURLs))
	for key, url := range regionURLs {
		regions[strings.ToUpper(key)] = url
	}
	return &RegionResolver{defaultURL: defaultURL, regions: regions}
}

// Resolve nunca cae al default cuando se pidio una region concreta.
func (r *RegionResolver) Resolve(region string) (string, error) {
	if region == "" {
		if r.defaultURL == "" {
			return "", &RegionError{Key: defaultURLKey}
		}
		return r.defaultURL, nil
	}
	key := strings.ToUpper(defaultURLKey + "_" + region)
	url := r.regions[key]
	if url == "" {
		return "", &RegionError{Key: key}
	}
	return url, nil
}
