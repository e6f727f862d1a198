package storage

import "strings"

// New builds the archive backend for the given configuration,
// detecting the service flavour from the endpoint when it is not set
// explicitly.
func New(cfg *Config) (ObjectStorage, error) {
	if cfg.Provider == "" {
		cfg.Provider = detectProvider(cfg.Endpoint)
	}
	return NewS3Store(cfg)
}

func detectProvider(endpoint string) Provider {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return ProviderR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return ProviderS3
	default:
		return ProviderCompatible
	}
}
