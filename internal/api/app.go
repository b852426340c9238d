package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"

	"confroom-backend/internal/config"
	"confroom-backend/internal/database"
	"confroom-backend/internal/email"
	"confroom-backend/internal/events"
	"confroom-backend/internal/stats"
)

type ConfRoomApp struct {
	log        *log.Logger
	db         database.ConfRoomRepository
	hub        *events.Hub
	mux        *http.Server
	email      email.Sender
	stats      stats.StatsProvider
	cfg        *config.Config
	signingKey []byte

	// overridable for tests
	generateShortId func() (string, error)
	generateCode    func() (string, error)
	now             func() time.Time
}

func NewConfRoomApp(mux *http.ServeMux, logger *log.Logger, hub *events.Hub, db database.ConfRoomRepository,
	sp stats.StatsProvider, sender email.Sender, cfg *config.Config) *ConfRoomApp {
	s := &ConfRoomApp{
		log:        logger,
		db:         db,
		hub:        hub,
		email:      sender,
		stats:      sp,
		cfg:        cfg,
		signingKey: cfg.SigningKey,

		generateShortId: shortid.Generate,
		generateCode:    generateVerificationCode,
		now:             func() time.Time { return time.Now().UTC() },
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/guest", s.guestLogin)
	mux.HandleFunc("POST /api/auth/verify", s.verifyAccount)
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))

	mux.Handle("/api/account", s.authMiddleware(s.account))
	mux.Handle("POST /api/account/premium", s.authMiddleware(s.upgradeToPremium))
	mux.Handle("POST /api/admin/roles", s.authMiddleware(s.setUserRole))
	mux.Handle("POST /api/admin/grant", s.authMiddleware(s.grantAdminAccess))

	mux.Handle("POST /api/rooms", s.authMiddleware(s.createRoom))
	mux.Handle("GET /api/rooms", s.authMiddleware(s.getRoom))
	mux.Handle("DELETE /api/rooms", s.authMiddleware(s.deleteRoom))
	mux.Handle("GET /api/rooms/active", s.authMiddleware(s.listActiveRooms))
	mux.Handle("GET /api/rooms/all", s.authMiddleware(s.listAllRooms))
	mux.Handle("POST /api/rooms/join", s.authMiddleware(s.joinRoom))
	mux.Handle("POST /api/rooms/leave", s.authMiddleware(s.leaveRoom))
	mux.Handle("POST /api/rooms/toggle", s.authMiddleware(s.toggleRoomStatus))

	mux.Handle("GET /api/participants", s.authMiddleware(s.getRoomParticipants))
	mux.Handle("POST /api/participants/seen", s.authMiddleware(s.markAsSeen))

	mux.Handle("POST /api/messages", s.authMiddleware(s.sendMessage))
	mux.Handle("PUT /api/messages", s.authMiddleware(s.editMessage))
	mux.Handle("DELETE /api/messages", s.authMiddleware(s.deleteMessage))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getRoomMessages))
	mux.Handle("POST /api/messages/reactions", s.authMiddleware(s.toggleReaction))

	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))
	mux.HandleFunc("GET /healthz", s.healthCheck)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *ConfRoomApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *ConfRoomApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *ConfRoomApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *ConfRoomApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// currentUser resolves the authenticated caller to its account row. Every
// operation behind the auth middleware starts here.
func (s *ConfRoomApp) currentUser(r *http.Request) (database.User, *ApiError) {
	userId, ok := UserId(r.Context())
	if !ok {
		return database.User{}, NewUnauthorizedError()
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.User{}, NewNotFoundError()
		}
		return database.User{}, NewInternalServerError(err)
	}

	return user, nil
}
