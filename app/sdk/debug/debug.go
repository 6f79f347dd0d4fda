// Package debug provides handler support for the debugging endpoints.
package debug

import (
	"context"
	"encoding/json"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/printdesk/printdesk/business/sdk/sqldb"
	"github.com/printdesk/printdesk/foundation/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mux registers all the debug routes from the standard library into a new
// mux bypassing the use of the DefaultServeMux. Using the DefaultServeMux
// would be a security risk since a dependency could inject a handler into
// our service without us knowing it.
func Mux(build string, log *logger.Logger, db *sqlx.DB) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/debug/liveness", liveness(build))
	mux.HandleFunc("/debug/readiness", readiness(log, db))

	return mux
}

func liveness(build string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, err := os.Hostname()
		if err != nil {
			host = "unavailable"
		}

		info := struct {
			Status     string `json:"status,omitempty"`
			Build      string `json:"build,omitempty"`
			Host       string `json:"host,omitempty"`
			GOMAXPROCS int    `json:"GOMAXPROCS,omitempty"`
		}{
			Status:     "up",
			Build:      build,
			Host:       host,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(info)
	}
}

func readiness(log *logger.Logger, db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ok"
		statusCode := http.StatusOK
		if err := sqldb.StatusCheck(ctx, db); err != nil {
			status = "db not ready"
			statusCode = http.StatusInternalServerError
			log.Info(ctx, "readiness failure", "status", status, "err", err)
		}

		data := struct {
			Status string `json:"status"`
		}{
			Status: status,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(data)
	}
}
