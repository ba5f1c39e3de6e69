package stream

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/chanombude/twitter-go-client/internal/cache"
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
	"github.com/chanombude/twitter-go-client/internal/metrics"
	"github.com/chanombude/twitter-go-client/internal/session"
)

const (
	streamPath    = "/notifications/stream"
	pingPayload   = "ping"
	eventPrefix   = "event:"
	dataPrefix    = "data:"
	commentPrefix = ":"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type tokenSource interface {
	Token() string
}

// Watcher keeps a server-push subscription open while a credential exists.
// Each incoming notification bumps the cached unread counter and marks the
// notification list stale. Delivery is at most once; the periodic unread poll
// reconciles anything missed.
type Watcher struct {
	url    string
	http   *http.Client
	tokens tokenSource
	store  *cache.Store
	keys   keys.Builder

	log     log.Logger
	metrics *metrics.Metrics
}

func NewWatcher(baseURL string, httpClient *http.Client, tokens tokenSource, store *cache.Store, logger log.Logger, m *metrics.Metrics) *Watcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Watcher{
		url:     strings.TrimRight(baseURL, "/") + streamPath,
		http:    httpClient,
		tokens:  tokens,
		store:   store,
		keys:    keys.NewBuilder(),
		log:     logger,
		metrics: m,
	}
}

// Run blocks until the context ends. Session events tear the connection down:
// a rotated token reconnects with the new credential, a sign-out leaves the
// channel closed until the next sign-in.
func (w *Watcher) Run(ctx context.Context, events <-chan session.Event) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0

	for {
		if ctx.Err() != nil {
			return
		}

		if w.tokens.Token() == "" {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}

				continue
			}
		}

		connCtx, cancel := context.WithCancel(ctx)

		connDone := make(chan struct{})

		go func() {
			select {
			case <-connCtx.Done():
			case <-connDone:
			case _, ok := <-events:
				if ok {
					w.log.Debug("credential changed, recycling stream")
				}

				cancel()
			}
		}()

		connected, err := w.connect(connCtx)

		close(connDone)
		cancel()

		if ctx.Err() != nil {
			return
		}

		if connected {
			policy.Reset()
		}

		if err != nil {
			w.log.WithError(err).Warn("notification stream closed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(policy.NextBackOff()):
		}
	}
}

// connect opens one subscription and consumes it until the transport fails or
// the context ends. Reports whether the subscription was established.
func (w *Watcher) connect(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
	if err != nil {
		return false, err
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	if token := w.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := w.http.Do(req)
	if err != nil {
		return false, err
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			w.log.WithError(closeErr).Debug("close stream body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stream subscription rejected: %s", resp.Status)
	}

	w.log.Info("notification stream connected")

	scanner := bufio.NewScanner(resp.Body)

	data := make([]string, 0, 1)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if len(data) > 0 {
				w.dispatch(strings.Join(data, "\n"))
				data = data[:0]
			}
		case strings.HasPrefix(line, dataPrefix):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, dataPrefix)))
		case strings.HasPrefix(line, eventPrefix), strings.HasPrefix(line, commentPrefix):
			// Event names and comments carry no payload of their own.
		}
	}

	return true, scanner.Err()
}

// dispatch handles one complete frame. Keep-alives are discarded; malformed
// payloads are dropped without touching the connection.
func (w *Watcher) dispatch(payload string) {
	if payload == pingPayload {
		w.metrics.StreamEvent("ping")
		return
	}

	notification := common.Notification{}

	if err := json.UnmarshalFromString(payload, &notification); err != nil {
		w.metrics.StreamEvent("malformed")
		w.log.WithError(err).Debug("discarding malformed stream payload")

		return
	}

	if notification.ID <= 0 {
		w.metrics.StreamEvent("malformed")
		return
	}

	w.metrics.StreamEvent("notification")

	w.store.BumpUnreadCount(1)
	w.store.InvalidateKey(w.keys.NotificationList())

	w.log.WithField("type", notification.Type).Debug("notification received")
}
