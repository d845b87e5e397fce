package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hyperdxio/opentelemetry-logs-go/exporters/otlp/otlplogs"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"github.com/hyperdxio/otel-config-go/otelconfig"

	"trainplandev/agent"
	"trainplandev/config"
	"trainplandev/geminiapi"
	"trainplandev/logger"
	"trainplandev/mapsapi"
	"trainplandev/session"
	"trainplandev/toolapi/gearapi"
	"trainplandev/toolapi/venueapi"
	"trainplandev/toolapi/weatherapi"
)

const staticDir = "static"

func main() {
	godotenv.Load()
	cfg := config.Load()

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		log.Fatalf("Error setting up OTel SDK - %e", err)
	}
	defer otelShutdown()
	ctx := context.Background()

	logExporter, _ := otlplogs.NewExporter(ctx)
	loggerProvider := sdk.NewLoggerProvider(sdk.WithBatcher(logExporter))
	defer loggerProvider.Shutdown(ctx)

	LogMiddleware := logger.Connect(logger.LoggerConnectProps{Production: cfg.Production, LoggerProvider: loggerProvider})

	mapsClient := mapsapi.Connect(ctx, mapsapi.MapsConnectProps{Logger: LogMiddleware, APIKey: cfg.MapsAPIKey})
	weatherClient := weatherapi.Connect(ctx, weatherapi.WeatherConnectProps{
		Logger:            LogMiddleware,
		MapsAPIKey:        cfg.MapsAPIKey,
		OpenWeatherAPIKey: cfg.OpenWeatherAPIKey,
	})
	venueClient := venueapi.Connect(ctx, venueapi.VenuesConnectProps{Logger: LogMiddleware, Maps: mapsClient})
	gearClient := gearapi.Connect(ctx, gearapi.GearConnectProps{Logger: LogMiddleware})
	geminiClient := geminiapi.Connect(ctx, geminiapi.GeminiConnectProps{Logger: LogMiddleware, APIKey: cfg.GeminiAPIKey})
	sessionStore := session.Connect(ctx, session.StoreConnectProps{Logger: LogMiddleware})

	planAgent := agent.Connect(ctx, agent.AgentConnectProps{
		Logger:  LogMiddleware,
		Gemini:  geminiClient,
		Weather: weatherClient,
		Venues:  venueClient,
		Gear:    gearClient,
	})

	srv := &server{
		logger:   LogMiddleware,
		agent:    planAgent,
		sessions: sessionStore,
		maps:     mapsClient,
	}

	router := chi.NewRouter()
	router.Use(requestLoggerMiddleware(LogMiddleware))
	router.Get("/", srv.handleIndex)
	router.Post("/api/create_session", srv.handleCreateSession)
	router.Post("/api/send_message", srv.handleSendMessage)
	router.Get("/api/geocode", srv.handleGeocode)

	Logger := LogMiddleware.Logger(ctx)
	if cfg.Production {
		Logger.Info("[Server] Training plan assistant starting in production mode", zap.String("port", cfg.Port))
	} else {
		Logger.Info("[Server] Training plan assistant starting in development mode", zap.String("port", cfg.Port))
	}

	if err := http.ListenAndServe(":"+cfg.Port, otelhttp.NewHandler(router, "server")); err != nil {
		Logger.Error("[Server] Server stopped", zap.Error(err))
	}
}

type server struct {
	logger   *logger.LogMiddleware
	agent    *agent.Agent
	sessions *session.Store
	maps     *mapsapi.Maps
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page, err := os.ReadFile(staticDir + "/index.html")
	if err != nil {
		w.Write([]byte("<h1>Training Plan Assistant</h1>"))
		return
	}
	w.Write(page)
}

// handleCreateSession creates a session and immediately streams the agent's
// welcome turn, so the first intake question reaches the user without an
// extra client round-trip.
func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := s.sessions.Create(ctx)

	w.Header().Set("X-User-Id", sess.UserID)
	w.Header().Set("X-Session-Id", sess.ID)

	welcome, err := s.agent.Welcome(ctx, sess)
	if err != nil {
		s.logger.Logger(ctx).Error("[Server] Welcome turn failed", zap.Error(err))
		streamSSE(w, "抱歉，处理消息时出现错误："+err.Error())
		return
	}

	streamSSE(w, welcome)
}

// handleSendMessage relays one user message into an existing session and
// streams the agent's reply. Errors after the stream has started are
// reported in-band so the client always sees a terminated stream.
func (s *server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	userID := r.FormValue("user_id")
	sessionID := r.FormValue("session_id")
	message := r.FormValue("message")
	if userID == "" || sessionID == "" || message == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	sess, ok := s.sessions.Get(sessionID, userID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Session not found")
		return
	}

	reply, err := s.agent.SendMessage(ctx, sess, message)
	if err != nil {
		s.logger.Logger(ctx).Error("[Server] Message turn failed", zap.Error(err))
		streamSSE(w, "抱歉，处理消息时出现错误："+err.Error())
		return
	}

	streamSSE(w, reply)
}

// handleGeocode resolves a coordinate to a city name and address for the
// browser's location prompt.
func (s *server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeJSONError(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	address, err := s.maps.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		s.logger.Logger(ctx).Error("[Server] Geocoding failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Geocoding failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(address)
}

// streamSSE writes a reply as text/event-stream data frames terminated by a
// [DONE] frame.
func streamSSE(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, _ := w.(http.Flusher)

	for _, line := range strings.Split(text, "\n") {
		w.Write([]byte("data: " + line + "\n\n"))
		if flusher != nil {
			flusher.Flush()
		}
	}
	w.Write([]byte("data: [DONE]\n\n"))
	if flusher != nil {
		flusher.Flush()
	}
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func requestLoggerMiddleware(logger *logger.LogMiddleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger.Logger(ctx).Info("Request Received", zap.String("url", r.URL.Path), zap.String("method", r.Method))
			next.ServeHTTP(w, r)
			logger.Logger(ctx).Info("Request Completed", zap.String("path", r.URL.Path), zap.String("method", r.Method))
		})
	}
}
