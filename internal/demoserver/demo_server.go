package demoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/raysh454/tweetseed/internal/logging"
)

// SessionCookie carries the session token handed out by /login.
const SessionCookie = "access_token"

type ctxKey int8

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyUser
)

// DemoServer is a small twitter-like API the seeder can run against locally.
type DemoServer struct {
	cfg    Config
	store  *Store
	router chi.Router
	logger logging.Logger
}

// NewDemoServer opens the store and wires the routes.
func NewDemoServer(cfg Config, logger logging.Logger) (*DemoServer, error) {
	if logger == nil {
		return nil, errors.New("demoserver: nil logger provided")
	}
	store, err := OpenStore(cfg.DSN, cfg.PasswordCost)
	if err != nil {
		return nil, err
	}
	s := &DemoServer{
		cfg:    cfg,
		store:  store,
		router: chi.NewRouter(),
		logger: logger.With(logging.Field{Key: "component", Value: "demoserver"}),
	}
	s.routes()
	return s, nil
}

func (s *DemoServer) routes() {
	r := s.router

	r.Use(s.setRequestID)
	r.Use(s.logRequest)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/register", s.handleUsersCreate)
	r.Post("/login", s.handleUsersLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/tweets", s.handleTweetsCreate)
		r.Get("/tweets", s.handleSubscriptionTweets)
		r.Get("/mytweets", s.handleUserTweets)
		r.Post("/subscribe", s.handleSubscribe)
		r.Get("/subscriptions", s.handleSubscriptions)
	})
}

// Handler exposes the router, e.g. for httptest.
func (s *DemoServer) Handler() http.Handler {
	return s.router
}

// Store exposes the backing store for inspection in tests and tooling.
func (s *DemoServer) Store() *Store {
	return s.store
}

// Start serves on cfg.Port until ctx is cancelled.
func (s *DemoServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("demo server listening", logging.Field{Key: "addr", Value: srv.Addr})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *DemoServer) Close() error {
	return s.store.Close()
}

// setRequestID tags every request and response with a uuid.
func (s *DemoServer) setRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

func (s *DemoServer) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path},
			logging.Field{Key: "status", Value: ww.Status()},
			logging.Field{Key: "duration", Value: time.Since(start).String()},
			logging.Field{Key: "request_id", Value: r.Context().Value(ctxKeyRequestID)})
	})
}

func (s *DemoServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil {
			s.error(w, r, http.StatusUnauthorized, ErrNotAuthenticated)
			return
		}
		u, err := s.store.UserForSession(r.Context(), c.Value)
		if err != nil {
			if errors.Is(err, ErrNotAuthenticated) {
				s.error(w, r, http.StatusUnauthorized, err)
				return
			}
			s.error(w, r, http.StatusInternalServerError, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser, u)))
	})
}

func currentUser(r *http.Request) *User {
	u, _ := r.Context().Value(ctxKeyUser).(*User)
	return u
}

func (s *DemoServer) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.error(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return false
	}
	return true
}

func (s *DemoServer) handleUsersCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.store.CreateUser(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, u)
}

func (s *DemoServer) handleUsersLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	_, token, err := s.store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrIncorrectEmailOrPassword) {
			s.error(w, r, http.StatusUnauthorized, err)
			return
		}
		s.error(w, r, http.StatusInternalServerError, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.respond(w, r, http.StatusOK, map[string]string{"token": token})
}

func (s *DemoServer) handleTweetsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	t, err := s.store.CreateTweet(r.Context(), currentUser(r).ID, req.Message)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, t)
}

func (s *DemoServer) handleSubscriptionTweets(w http.ResponseWriter, r *http.Request) {
	tweets, err := s.store.SubscriptionTweets(r.Context(), currentUser(r).ID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string][]string{"tweets": tweets})
}

func (s *DemoServer) handleUserTweets(w http.ResponseWriter, r *http.Request) {
	tweets, err := s.store.UserTweets(r.Context(), currentUser(r).ID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string][]string{"tweets": tweets})
}

func (s *DemoServer) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	publisher, err := s.store.FindUserByUsername(r.Context(), req.Nickname)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			s.error(w, r, http.StatusBadRequest, fmt.Errorf("user %q: %w", req.Nickname, err))
			return
		}
		s.error(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.Subscribe(r.Context(), currentUser(r).ID, publisher.ID); err != nil {
		s.storeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, nil)
}

func (s *DemoServer) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.Subscriptions(r.Context(), currentUser(r).ID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string][]string{"subscriptions": names})
}

// storeError maps store sentinels onto statuses.
func (s *DemoServer) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidRecord), errors.Is(err, ErrRecordExists):
		s.error(w, r, http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrRecordNotFound):
		s.error(w, r, http.StatusNotFound, err)
	default:
		s.error(w, r, http.StatusInternalServerError, err)
	}
}

func (s *DemoServer) error(w http.ResponseWriter, r *http.Request, code int, err error) {
	s.respond(w, r, code, map[string]string{"error": err.Error()})
}

func (s *DemoServer) respond(w http.ResponseWriter, _ *http.Request, code int, data any) {
	if data != nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(code)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
