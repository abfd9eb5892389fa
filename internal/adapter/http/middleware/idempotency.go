package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/lnstable/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	processingMarker     = "processing"
)

// IdempotencyMiddleware replays the stored response of a POST repeated with
// the same Idempotency-Key. Keys are scoped to the authenticated user.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		if username, ok := UsernameFromContext(r.Context()); ok {
			key = username + ":" + key
		}
		key = r.URL.Path + ":" + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Msg("idempotency check failed")
			writeError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			if cached == nil || string(cached) == processingMarker {
				writeError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			_, _ = w.Write(cached)
			return
		}

		body := &bytes.Buffer{}
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(body)

		// Release the claim if the handler panics; Recovery writes the response.
		completed := false
		defer func() {
			if !completed {
				m.release(r.Context(), key)
			}
		}()

		next.ServeHTTP(ww, r)
		completed = true

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= 200 && status < 300 {
			if err := m.store.Update(context.WithoutCancel(r.Context()), key, body.Bytes(), m.ttl); err != nil {
				m.logger.Error().Err(err).Str("key", key).Msg("failed to store idempotent response")
			}
			return
		}
		m.release(r.Context(), key)
	})
}

func (m *IdempotencyMiddleware) release(ctx context.Context, key string) {
	if err := m.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		m.logger.Error().Err(err).Str("key", key).Msg("failed to release idempotency key")
	}
}
