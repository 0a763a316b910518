package store

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gitalong/gitalong/internal/config"
	"github.com/gitalong/gitalong/internal/identity"
)

// jsonHostMarkers are hostname substrings that identify a config's
// store_url as pointing at a hosted JSON document rather than a Git remote.
// Anything else dispatches to the Git-backed variant (spec 7: "dynamic
// dispatch over store backends... selected by URL shape: an HTTPS URL
// pointing at a JSON host -> JSON variant; anything else -> Git variant").
var jsonHostMarkers = []string{
	"jsonbin.io",
	"api.jsonbin",
	"restdb.io",
	"mockapi.io",
}

// isJSONDocumentURL reports whether rawURL names an HTTPS JSON document
// store rather than a Git remote.
func isJSONDocumentURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme != "https" {
		return false
	}
	if strings.HasSuffix(parsed.Path, ".git") {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, marker := range jsonHostMarkers {
		if strings.Contains(host, marker) {
			return true
		}
	}
	return false
}

// NewBackend dispatches to the Git-backed or JSON-document-backed Store
// variant based on cfg.StoreURL's shape.
func NewBackend(managedRoot string, cfg *config.Config, id identity.Identity) (Backend, error) {
	pullThreshold := cfg.PullThresholdDuration()
	retryAttempts := cfg.RetryAttemptsOrDefault()
	retryBase := cfg.RetryBaseDelayOrDefault()
	retryMax := cfg.RetryMaxDelayOrDefault()

	if isJSONDocumentURL(cfg.StoreURL) {
		return NewJSONBackend(JSONBackendOptions{
			URL:           cfg.StoreURL,
			Headers:       cfg.StoreHeaders,
			Identity:      id,
			LocalMirror:   filepath.Join(managedRoot, storeSubdir, storeDocument),
			PullThreshold: pullThreshold,
			RetryAttempts: retryAttempts,
			RetryBase:     retryBase,
			RetryMax:      retryMax,
			Timeout:       time.Duration(config.DefaultHTTPTimeoutSeconds) * time.Second,
		})
	}

	return NewGitBackend(GitBackendOptions{
		ManagedRoot:   managedRoot,
		StoreURL:      cfg.StoreURL,
		Identity:      id,
		PullThreshold: pullThreshold,
		RetryAttempts: retryAttempts,
		RetryBase:     retryBase,
		RetryMax:      retryMax,
	})
}
