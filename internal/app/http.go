package app

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/api/handlers"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/auth"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/banner"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/live"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/telemetry"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" && a.commit != "" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" && a.buildDate != "" {
		verStr += " @ " + a.buildDate
	}
	banner.Print(a.eff, verStr)
}

// buildRouter assembles all HTTP routes.
func (a *App) buildRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", healthzHandler).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.readyzHandler).Methods(http.MethodGet)
	r.Handle("/metrics", telemetry.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	r.PathPrefix("/openapi.yaml").Handler(http.FileServer(http.Dir("./docs")))

	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterMessages(v1, a.ch)
	handlers.RegisterConversations(v1, a.convs, a.ch)
	handlers.RegisterReactions(v1, a.ledger)
	handlers.RegisterNotifications(v1, a.fanout)
	handlers.RegisterUnread(v1, a.agg)

	upgrader := live.NewUpgrader(a.eff.Config.Security.CORS.AllowedOrigins)
	handlers.RegisterWS(v1, a.hub, a.convs, upgrader, a.eff.Config.Live.WriteTimeout.Duration())

	return r
}

// readyzHandler handles the /readyz endpoint.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !store.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	w.WriteHeader(http.StatusOK)
	// include the running version to help ops verify what binary is active
	_, _ = w.Write([]byte(`{"status":"ok","version":"` + ver + `"}`))
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// startHTTP builds the handler chain, starts the HTTP server in a
// goroutine and returns a channel that will carry any server error.
func (a *App) startHTTP(_ context.Context) <-chan error {
	router := a.buildRouter()

	// auth gateway first, telemetry inside so rejected requests are timed,
	// cors outermost so preflights never hit the gateway
	var handler http.Handler = router
	handler = telemetry.Middleware(handler)
	handler = auth.GatewayMiddleware(auth.FromConfig(a.eff.Config))(handler)

	c := cors.New(cors.Options{
		AllowedOrigins:   a.eff.Config.Security.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-API-Key", "X-Identity"},
		ExposedHeaders:   []string{"X-Role-Name"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	handler = c.Handler(handler)

	a.srv = &http.Server{Addr: a.eff.Addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		cert := a.eff.Config.Server.TLS.CertFile
		key := a.eff.Config.Server.TLS.KeyFile
		if cert != "" && key != "" {
			errCh <- a.srv.ListenAndServeTLS(cert, key)
		} else {
			errCh <- a.srv.ListenAndServe()
		}
	}()
	return errCh
}
