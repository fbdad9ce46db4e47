// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/admin/loglevel"
	"github.com/vechain/stakepool/api/assets"
	"github.com/vechain/stakepool/api/doc"
	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/engine"
	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "api")

const versionHeader = "x-stakepool-ver"

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	// Faucet serves minting of any asset to any account.
	Faucet bool
	// LogLevel, when set, is exposed under /admin/loglevel.
	LogLevel *slog.LevelVar
}

// New return api router
func New(eng *engine.Engine, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	// to serve the api docs
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/stakepool.yaml", http.StatusTemporaryRedirect)
		})

	pool.New(eng).
		Mount(router, "/pool")
	assets.New(eng, opts.Faucet).
		Mount(router, "/assets")
	if opts.LogLevel != nil {
		loglevel.New(opts.LogLevel).
			Mount(router, "/admin/loglevel")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	router.Use(versionMiddleware)

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{versionHeader}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold)(handler)
	}

	return handler.ServeHTTP
}

func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(versionHeader, doc.Version())
		next.ServeHTTP(w, r)
	})
}
