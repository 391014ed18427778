package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/auth"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
)

const (
	requestIDHeader      = "X-Request-Id"
	sessionIDHeader      = "X-Session-Id"
	adminPasswordHeader  = "X-Admin-Password"
	defaultSessionCookie = "carshop_session"
)

type sessionKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *httpServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(h.log.WithRequestID(r.Context(), reqID)))
	})
}

func (h *httpServer) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := h.log.WithFields(r.Context(), map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		h.log.Debug(ctx, "request.start")

		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		ctx = h.log.WithFields(ctx, map[string]any{
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		h.log.Info(ctx, "request.complete")
	})
}

func (h *httpServer) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				ctx := h.log.WithField(r.Context(), "panic", fmt.Sprint(rec))
				writeError(ctx, h.log, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// metrics runs after route matching so requests are labelled by path
// template rather than raw path.
func (h *httpServer) metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := ""
		if current := mux.CurrentRoute(r); current != nil {
			route, _ = current.GetPathTemplate()
		}
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		h.requests.Observe(route, r.Method, rec.status, time.Since(start))
	})
}

// session resolves the session id from the X-Session-Id header or the
// session cookie, minting a new one when neither is present.
func (h *httpServer) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(sessionIDHeader)
		if id == "" {
			if cookie, err := r.Cookie(h.cookieName); err == nil {
				id = cookie.Value
			}
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(sessionIDHeader, id)
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		ctx = h.log.WithSessionID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func (h *httpServer) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.admin.Check(r.Header.Get(adminPasswordHeader)); err != nil {
			writeError(r.Context(), h.log, w, domainError(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identity decodes the caller from the Authorization header.
func (h *httpServer) identity(r *http.Request) (auth.Identity, error) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return auth.Identity{}, domainError(err)
	}
	id, err := auth.ParseToken(token, h.now())
	if err != nil {
		return auth.Identity{}, domainError(err)
	}
	return id, nil
}
