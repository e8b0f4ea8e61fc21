package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/getsentry/raven-go"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/config"
	"github.com/rushigund/Techligenc-website-backend/internal/middleware"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    interface{}           `json:"data,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type Server struct {
	cfg      config.Config
	router   *mux.Router
	log      zerolog.Logger
	bigCache *bigcache.BigCache
}

func NewServer(cfg config.Config, r *mux.Router, logger zerolog.Logger) Server {
	// empty dsn leaves raven disabled
	raven.SetDSN(cfg.SentryDSN)

	bigCache, err := bigcache.NewBigCache(bigcache.DefaultConfig(12 * time.Hour))
	svr := Server{
		cfg:      cfg,
		router:   r,
		log:      logger,
		bigCache: bigCache,
	}
	if err != nil {
		svr.Log(err, "unable to initialise big cache")
	}

	return svr
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) Logger() zerolog.Logger {
	return s.log
}

// Cache returns the shared in-process cache, nil if it failed to start.
func (s Server) Cache() *bigcache.BigCache {
	return s.bigCache
}

func (s Server) XML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	w.Write(data)
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (s Server) Success(w http.ResponseWriter, status int, message string, data interface{}) {
	s.JSON(w, status, Response{Success: true, Message: message, Data: data})
}

// SuccessWithWarnings reports a completed request that has non fatal problems
// attached, such as a content index that could not be updated.
func (s Server) SuccessWithWarnings(w http.ResponseWriter, status int, message string, data interface{}, warnings []apperror.FieldError) {
	s.JSON(w, status, Response{Success: true, Message: message, Data: data, Errors: warnings})
}

// Failure maps err to its status code and writes the error envelope.
// Server side failures are logged and reported.
func (s Server) Failure(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)
	res := Response{
		Message: apperror.MessageOf(err),
		Errors:  apperror.FieldsOf(err),
	}
	if !kind.ClientCaused() {
		s.Log(err, res.Message)
		res.Error = res.Message
		if s.cfg.Env == "dev" {
			res.Error = err.Error()
		}
	}
	s.JSON(w, kind.HTTPStatus(), res)
}

func (s Server) Log(err error, msg string) {
	raven.CaptureError(err, map[string]string{"ctx": msg})
	s.log.Error().Err(err).Msg(msg)
}

// Handler is the router wrapped in the middleware chain.
func (s Server) Handler() http.Handler {
	return middleware.HeadersMiddleware(
		middleware.CORSMiddleware(
			middleware.LoggingMiddleware(s.router, s.log),
			s.cfg.CORSAllowedOrigin,
		),
		s.cfg.Env,
	)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		s.log.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
