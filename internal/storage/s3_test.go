package storage

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://minio.example.com", "minio.example.com"},
		{"http://localhost:9000/", "localhost:9000"},
		{"minio.example.com/some/path", "minio.example.com"},
		{"minio.example.com", "minio.example.com"},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.input); got != tt.expected {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		endpoint string
		expected Provider
	}{
		{"abc123.r2.cloudflarestorage.com", ProviderR2},
		{"s3.us-east-1.amazonaws.com", ProviderS3},
		{"localhost:9000", ProviderCompatible},
	}
	for _, tt := range tests {
		if got := detectProvider(tt.endpoint); got != tt.expected {
			t.Errorf("detectProvider(%q) = %v, want %v", tt.endpoint, got, tt.expected)
		}
	}
}
