package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/vcto/mcp-weather/internal/auth"
	"github.com/vcto/mcp-weather/internal/config"
	"github.com/vcto/mcp-weather/internal/middleware"
	"github.com/vcto/mcp-weather/internal/openmeteo"
	"github.com/vcto/mcp-weather/internal/registry"
	"github.com/vcto/mcp-weather/internal/session"
	"github.com/vcto/mcp-weather/internal/tools"
	"github.com/vcto/mcp-weather/internal/trace"
)

const (
	serverName    = "mcp-weather-server"
	serverVersion = "1.0.0"

	sessionTTL = 30 * time.Minute
)

var (
	mode        = flag.String("mode", "", "Transport mode: stdio, sse or streamable-http (overrides MCP_MODE)")
	host        = flag.String("host", "", "Host to bind (overrides HOST)")
	port        = flag.Int("port", 0, "Port to listen on (overrides PORT)")
	stateless   = flag.Bool("stateless", false, "Run streamable-http transport without session state")
	disableAuth = flag.Bool("disable-auth", false, "Disable bearer token authentication")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Initialize request tracing. A storage failure degrades to the no-op
	// store Start hands back; it never stops the server.
	traceStore, traceConfig, err := trace.Start()
	if err != nil {
		log.Printf("Warning: Failed to initialize trace system: %v", err)
	}
	defer func() {
		if err := traceStore.Close(); err != nil {
			log.Printf("Failed to close trace storage: %v", err)
		}
	}()

	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	reg := registry.New(registry.WithResourceMetadataURL(cfg.ResourceMetadataURL))
	handler := tools.NewHandler(openmeteo.NewClient())
	for _, d := range handler.Descriptors() {
		if err := reg.Register(d); err != nil {
			log.Fatalf("Tool registration failed: %v", err)
		}
	}
	reg.Apply(s)
	log.Printf("Registered %d tools", len(reg.Descriptors()))

	switch cfg.Mode {
	case config.ModeStdio:
		if cfg.AuthEnabled {
			log.Println("Auth: bearer authentication has no effect on the stdio transport")
		}
		if traceConfig.Enabled {
			log.Println("Trace: enabled for stdio server")
		}
		if err := server.ServeStdio(s); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case config.ModeSSE:
		runSSEServer(s, cfg, traceStore, traceConfig)
	case config.ModeStreamableHTTP:
		runStreamableServer(s, cfg, traceStore, traceConfig)
	}
}

// applyFlags lets command-line flags override environment configuration.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "stateless":
			cfg.Stateless = *stateless
		case "disable-auth":
			cfg.AuthEnabled = !*disableAuth
		}
	})
}

func runSSEServer(s *server.MCPServer, cfg *config.Config, traceStore trace.Store, traceConfig *trace.Config) {
	if cfg.AuthEnabled {
		log.Println("Auth: bearer authentication is only enforced on the streamable-http transport")
	}

	sseServer := server.NewSSEServer(s,
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/messages/"),
	)

	handler := http.Handler(sseServer)
	if traceConfig.Enabled {
		log.Println("Trace: middleware enabled")
		handler = trace.Middleware(traceStore)(handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth(nil))
	mux.Handle("/sse", handler)
	mux.Handle("/messages/", handler)

	serve(mux, cfg, fmt.Sprintf("SSE endpoint: http://%s:%d/sse", cfg.Host, cfg.Port))
}

func runStreamableServer(s *server.MCPServer, cfg *config.Config, traceStore trace.Store, traceConfig *trace.Config) {
	streamableServer := server.NewStreamableHTTPServer(s,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(cfg.Stateless),
		server.WithHTTPContextFunc(auth.PropagateClaims),
	)

	sessions := session.NewTable(sessionTTL)
	defer sessions.Stop()

	handler := http.Handler(streamableServer)
	if traceConfig.Enabled {
		log.Println("Trace: middleware enabled")
		handler = trace.Middleware(traceStore)(handler)
	}
	handler = session.Observe(sessions)(handler)

	if cfg.AuthEnabled {
		validator, err := auth.NewTokenValidator(auth.ValidatorConfig{
			IssuerURL:          cfg.AuthIssuerURL,
			Audience:           cfg.AuthAudience,
			InsecureSkipVerify: !cfg.AuthVerifyTLS,
		})
		if err != nil {
			log.Fatalf("Auth: failed to initialize token validator: %v", err)
		}
		handler = auth.Middleware(auth.MiddlewareConfig{Validator: validator})(handler)
		log.Printf("Auth: bearer authentication enabled (issuer %s)", cfg.AuthIssuerURL)
	} else {
		log.Println("Auth: DISABLED")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth(sessions))
	mux.Handle("/mcp", handler)
	mux.Handle("/mcp/", handler)

	serve(mux, cfg, fmt.Sprintf("Endpoint: http://%s:%d/mcp (stateless=%v)", cfg.Host, cfg.Port, cfg.Stateless))
}

func serve(mux *http.ServeMux, cfg *config.Config, readyLine string) {
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	finalHandler := middleware.CORS(corsConfig)(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: finalHandler,
	}

	log.Printf("Starting %s on %s", serverName, srv.Addr)
	log.Print(readyLine)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalf("Server error: %v", err)
	case <-quit:
		log.Println("Shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func handleHealth(sessions *session.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]interface{}{
			"status":  "healthy",
			"server":  serverName,
			"version": serverVersion,
		}
		if sessions != nil {
			response["active_sessions"] = sessions.Active()
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Failed to encode health response: %v", err)
		}
	}
}
