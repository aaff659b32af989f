package router

import (
	"fmt"
	"net/http"

	"TomSelectAPI/internal/config"
	"TomSelectAPI/internal/handler"
	"TomSelectAPI/internal/logger"
)

// named maps route names to paths so widgets can declare a DataView by
// name and have it reverse-resolved at construction time.
var named = map[string]string{}

// InitRoutes инициализирует маршруты для API
func InitRoutes(cfg *config.Config, auto *handler.Auto) {
	register("auto-json", "/fields/auto.json",
		withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, withLogging(auto.Handle)))
}

func register(name, path string, h http.HandlerFunc) {
	http.HandleFunc(path, h)
	named[name] = path
}

// Reverse resolves a route name to its path.
func Reverse(name string) (string, error) {
	if path, ok := named[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("unknown route name %q", name)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		level := "info"
		if sw.status >= 500 {
			level = "error"
		} else if sw.status >= 400 {
			level = "warn"
		}
		fields := map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": sw.status,
		}
		switch level {
		case "error":
			logger.Error("response", fields)
		case "warn":
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}
