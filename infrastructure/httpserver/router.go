package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appdist "drive-upload-relay/application/distribution"
	"drive-upload-relay/domain/distribution"
	"drive-upload-relay/infrastructure/formupload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Relayer forwards staged files to remote storage
type Relayer interface {
	Relay(ctx context.Context, files []distribution.FileDescriptor) (*appdist.RelayResult, error)
}

type handler struct {
	relayer Relayer
	log     logrus.FieldLogger
}

// NewRouter wires the upload route, the health check and the static file server
func NewRouter(relayer Relayer, parser *formupload.Parser, staticDir string, log logrus.FieldLogger) http.Handler {
	h := &handler{relayer: relayer, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.With(formupload.Middleware(parser, h.parseError)).Post("/upload", h.upload)

	static := staticHandler(staticDir)
	r.Get("/*", static.ServeHTTP)
	r.Head("/*", static.ServeHTTP)

	return r
}

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	files := formupload.FilesFrom(r.Context())

	result, err := h.relayer.Relay(r.Context(), files)
	switch {
	case errors.Is(err, distribution.ErrNoFiles):
		writeJSON(w, http.StatusBadRequest, distribution.NoFilesResponse())
	case err != nil:
		h.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("upload error")
		writeJSON(w, http.StatusInternalServerError, distribution.ErrorResponse(err))
	default:
		writeJSON(w, http.StatusOK, distribution.SuccessResponse(result.Count()))
	}
}

func (h *handler) parseError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("upload error")
	writeJSON(w, http.StatusInternalServerError, distribution.ErrorResponse(err))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// requestLogger logs one line per request
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote":     r.RemoteAddr,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}).Info("request")
		})
	}
}
