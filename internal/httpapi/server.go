package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ftserve/internal/manager"
	"ftserve/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Ready() bool

	Load(req types.LoadRequest) error
	LoadDefault(replace bool) error
	Unload() error

	Predict(text string, k int, threshold float32) (types.PredictResponse, error)
	Vector(kind manager.VectorKind, text string) (types.VectorResponse, error)
	Info() (types.ModelInfo, error)
	Words() ([]string, error)
	Labels() ([]string, error)
	Test(path string, k int) (types.TestResponse, error)
	Train(req types.TrainRequest) (types.TrainResponse, error)
}

// sanityChecker is optionally implemented by services that can report on
// their runtime dependency.
type sanityChecker interface {
	SanityCheck() manager.SanityReport
}

var _ Service = (*manager.Manager)(nil)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no model loaded"))
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/sanity", func(w http.ResponseWriter, r *http.Request) {
		sc, ok := svc.(sanityChecker)
		if !ok {
			writeJSONError(w, http.StatusNotImplemented, "sanity check not supported")
			return
		}
		rep := sc.SanityCheck()
		if !rep.Available {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(rep)
			return
		}
		writeJSON(w, rep)
	})

	r.Route("/model", func(r chi.Router) {
		r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
			run(w, r, "info", func() (any, error) { return svc.Info() })
		})
		r.Get("/words", func(w http.ResponseWriter, r *http.Request) {
			run(w, r, "words", func() (any, error) { return stringsResponse(svc.Words()) })
		})
		r.Get("/labels", func(w http.ResponseWriter, r *http.Request) {
			run(w, r, "labels", func() (any, error) { return stringsResponse(svc.Labels()) })
		})
		r.Post("/load", func(w http.ResponseWriter, r *http.Request) {
			var req types.LoadRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			run(w, r, "load", thenStatus(svc, func() error { return svc.Load(req) }))
		})
		r.Post("/load-default", func(w http.ResponseWriter, r *http.Request) {
			var req types.LoadRequest
			if !decodeOptionalJSON(w, r, &req) {
				return
			}
			run(w, r, "load_default", thenStatus(svc, func() error { return svc.LoadDefault(req.Replace) }))
		})
		r.Post("/unload", func(w http.ResponseWriter, r *http.Request) {
			run(w, r, "unload", thenStatus(svc, svc.Unload))
		})
	})

	r.Post("/predict", func(w http.ResponseWriter, r *http.Request) {
		var req types.PredictRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		run(w, r, "predict", func() (any, error) { return svc.Predict(req.Text, kOrDefault(req.K), req.Threshold) })
	})

	r.Route("/vectors", func(r chi.Router) {
		for _, kind := range []manager.VectorKind{manager.VectorWord, manager.VectorSentence, manager.VectorSubword} {
			r.Post("/"+string(kind), func(w http.ResponseWriter, r *http.Request) {
				var req types.VectorRequest
				if !decodeJSON(w, r, &req) {
					return
				}
				run(w, r, "vector_"+string(kind), func() (any, error) { return svc.Vector(kind, req.Text) })
			})
		}
	})

	r.Post("/test", func(w http.ResponseWriter, r *http.Request) {
		var req types.TestRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Path) == "" {
			writeJSONError(w, http.StatusBadRequest, "path is required")
			return
		}
		run(w, r, "test", func() (any, error) {
			resp, err := svc.Test(req.Path, kOrDefault(req.K))
			if err == nil && requestLogLevel(r) >= LevelDebug {
				_, _ = io.Copy(&loggingLineWriter{prefix: "test"}, strings.NewReader(resp.Report))
			}
			return resp, err
		})
	})

	r.Post("/train", func(w http.ResponseWriter, r *http.Request) {
		if l := trainLimiter; l != nil && !l.Allow() {
			countRejection("train_rate")
			writeJSONError(w, http.StatusTooManyRequests, "training rate limit exceeded")
			return
		}
		var req types.TrainRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		run(w, r, "train", func() (any, error) { return svc.Train(req) })
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// run executes one service call and writes its JSON result or mapped error.
func run(w http.ResponseWriter, r *http.Request, op string, fn func() (any, error)) {
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, op)
	v, err := fn()
	if err != nil {
		status := statusFor(err)
		if status == http.StatusTooManyRequests {
			countRejection(op)
		}
		writeJSONError(w, status, err.Error())
		logEnd(r, lvl, op, status, start, err)
		return
	}
	writeJSON(w, v)
	logEnd(r, lvl, op, http.StatusOK, start, nil)
}

// thenStatus runs a lifecycle call and answers with the resulting status.
func thenStatus(svc Service, fn func() error) func() (any, error) {
	return func() (any, error) {
		if err := fn(); err != nil {
			return nil, err
		}
		return svc.Status(), nil
	}
}

// kOrDefault maps an omitted k to 1. Explicit values pass through unchanged
// so that k < 1 is rejected downstream.
func kOrDefault(k *int) int {
	if k == nil {
		return 1
	}
	return *k
}

func stringsResponse(items []string, err error) (types.StringsResponse, error) {
	if items == nil {
		items = []string{}
	}
	return types.StringsResponse{Items: items, Count: len(items)}, err
}

func writeJSON(w http.ResponseWriter, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// decodeJSON enforces the JSON content type and body limit, writing the
// error response itself when it returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 && r.Header.Get("Content-Type") == "" {
		return true
	}
	return decodeJSON(w, r, v)
}
