package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	cache "github.com/patrickmn/go-cache"

	"github.com/gitalong/gitalong/internal/errors"
	"github.com/gitalong/gitalong/internal/identity"
	"github.com/gitalong/gitalong/internal/lock"
	"github.com/gitalong/gitalong/internal/trackedcommit"
)

// jsonCache debounces JSON-store GETs the same way pullCache debounces Git
// fetches, keyed by document URL.
var jsonCache = cache.New(cache.NoExpiration, 10*time.Minute)

// JSONBackend is the HTTP JSON-document Store variant (4.3.2): the store is
// a single HTTP-accessible JSON document, read with GET and replaced with
// PUT. There is no cross-clone lock; only the local lockfile serializes
// concurrent invocations from this clone.
type JSONBackend struct {
	url           string
	headers       map[string]string
	id            identity.Identity
	client        *http.Client
	locker        *lock.Locker
	localMirror   string
	pullThreshold time.Duration
	retryAttempts int
	retryBase     time.Duration
	retryMax      time.Duration
}

// JSONBackendOptions configures NewJSONBackend.
type JSONBackendOptions struct {
	URL           string
	Headers       map[string]string
	Identity      identity.Identity
	LocalMirror   string
	PullThreshold time.Duration
	RetryAttempts int
	RetryBase     time.Duration
	RetryMax      time.Duration
	Timeout       time.Duration
}

// NewJSONBackend creates an HTTP JSON-document-backed store.
func NewJSONBackend(opts JSONBackendOptions) (*JSONBackend, error) {
	locker, err := lock.New(opts.URL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	return &JSONBackend{
		url:           opts.URL,
		headers:       opts.Headers,
		id:            opts.Identity,
		client:        &http.Client{Timeout: timeout},
		locker:        locker,
		localMirror:   opts.LocalMirror,
		pullThreshold: opts.PullThreshold,
		retryAttempts: opts.RetryAttempts,
		retryBase:     opts.RetryBase,
		retryMax:      opts.RetryMax,
	}, nil
}

// Lock implements Backend.
func (b *JSONBackend) Lock() error { return b.locker.Lock() }

// Unlock implements Backend.
func (b *JSONBackend) Unlock() error { return b.locker.Unlock() }

// resolvedHeaders expands a leading `$` in a header value into the named
// environment variable's value, per spec 4.3.2.
func (b *JSONBackend) resolvedHeaders() map[string]string {
	resolved := make(map[string]string, len(b.headers))
	for k, v := range b.headers {
		if strings.HasPrefix(v, "$") {
			resolved[k] = os.Getenv(strings.TrimPrefix(v, "$"))
			continue
		}
		resolved[k] = v
	}
	return resolved
}

func (b *JSONBackend) readMirror() ([]trackedcommit.Commit, error) {
	if b.localMirror == "" {
		return nil, nil
	}
	data, err := os.ReadFile(b.localMirror)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var commits []trackedcommit.Commit
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

func (b *JSONBackend) writeMirror(commits []trackedcommit.Commit) error {
	if b.localMirror == "" {
		return nil
	}
	data, err := json.MarshalIndent(commits, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.localMirror), 0755); err != nil {
		return err
	}
	return os.WriteFile(b.localMirror, data, 0644)
}

// Snapshot implements Backend. Reads are debounced against the local mirror
// by pull_threshold seconds (spec 4.3.2).
func (b *JSONBackend) Snapshot(ctx context.Context) ([]trackedcommit.Commit, error) {
	if _, found := jsonCache.Get(b.url); found {
		if mirrored, err := b.readMirror(); err == nil && mirrored != nil {
			return mirrored, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range b.resolvedHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(b.url, 1, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewStoreUnavailableError(b.url, 1,
			errors.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var commits []trackedcommit.Commit
	if len(body) > 0 {
		if err := json.Unmarshal(body, &commits); err != nil {
			return nil, errors.Wrap(err, "store document is malformed")
		}
	}

	_ = b.writeMirror(commits)
	jsonCache.Set(b.url, true, b.pullThreshold)
	return commits, nil
}

// isConflictStatus reports whether an HTTP status is a documented
// write-conflict code worth retrying (spec 4.3.2: HTTP 409 or equivalent).
func isConflictStatus(code int) bool {
	return code == http.StatusConflict || code == http.StatusPreconditionFailed || code == http.StatusLocked
}

// Commit implements Backend. Reads the current document, applies MergeRule,
// and PUTs the result, retrying on conflict status codes with the same
// backoff ladder as the Git variant.
func (b *JSONBackend) Commit(ctx context.Context, mine []trackedcommit.Commit) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = b.retryBase
	bo.MaxInterval = b.retryMax
	bo.Multiplier = 2

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++

		// Bypass the debounce: the merge must see the current document.
		jsonCache.Delete(b.url)
		remote, err := b.Snapshot(ctx)
		if err != nil {
			return struct{}{}, err
		}
		merged := MergeRule(remote, b.id, mine)

		payload, err := json.Marshal(merged)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		headers := b.resolvedHeaders()
		headers["Content-Type"] = "application/json"

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.url, bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := b.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			_ = b.writeMirror(merged)
			jsonCache.Set(b.url, true, b.pullThreshold)
			return struct{}{}, nil
		}
		if isConflictStatus(resp.StatusCode) {
			return struct{}{}, errors.Errorf("store conflict (status %d)", resp.StatusCode)
		}
		return struct{}{}, backoff.Permanent(errors.Errorf("unexpected status %d", resp.StatusCode))
	}, backoff.WithMaxTries(uint(b.retryAttempts)), backoff.WithBackOff(bo))

	if err != nil {
		return errors.NewStoreConflictError(b.url, attempt, err)
	}
	return nil
}
