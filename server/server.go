package server

import (
	"io"
	"net/http"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/hlang/cache"
	"github.com/chazu/hlang/vm"
)

// Server is the evaluation server. It serves the Connect, gRPC and
// gRPC-Web protocols on the same port.
type Server struct {
	worker   *Worker
	sessions *SessionStore
	eval     *EvalService
	mux      *http.ServeMux
	log      commonlog.Logger

	stopSweeper func()
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	programs   *cache.Programs
	newInterp  InterpreterFactory
	sessionTTL time.Duration
}

// WithPrograms sets the program cache used to parse submitted sources.
func WithPrograms(p *cache.Programs) ServerOption {
	return func(c *serverConfig) { c.programs = p }
}

// WithInterpreterFactory sets how session and one-shot interpreters are
// built, for example to install a module resolver.
func WithInterpreterFactory(f InterpreterFactory) ServerOption {
	return func(c *serverConfig) { c.newInterp = f }
}

// WithSessionTTL sets how long an unused session survives.
func WithSessionTTL(ttl time.Duration) ServerOption {
	return func(c *serverConfig) { c.sessionTTL = ttl }
}

// New creates a Server.
func New(opts ...ServerOption) (*Server, error) {
	cfg := &serverConfig{
		newInterp: func(stdout io.Writer) *vm.Interpreter {
			return vm.New(vm.WithStdout(stdout))
		},
		sessionTTL: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.programs == nil {
		programs, err := cache.NewPrograms(128)
		if err != nil {
			return nil, err
		}
		cfg.programs = programs
	}

	worker := NewWorker()
	sessions := NewSessionStore(cfg.newInterp)

	s := &Server{
		worker:   worker,
		sessions: sessions,
		eval:     NewEvalService(worker, sessions, cfg.programs, cfg.newInterp),
		mux:      http.NewServeMux(),
		log:      commonlog.GetLogger("hlang.server"),
	}
	s.eval.Register(s.mux)

	// Sweep every 5 minutes
	s.stopSweeper = sessions.StartSweeper(5*time.Minute, cfg.sessionTTL)

	return s, nil
}

// Handler returns the HTTP handler serving every procedure.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *Server) ListenAndServe(addr string) error {
	s.log.Noticef("evaluation server listening on %s", addr)
	s.log.Noticef("  Connect (HTTP/JSON): http://%s%s", addr, EvaluateProcedure)

	// gRPC needs HTTP/2; serve it without TLS next to HTTP/1.1.
	var protocols http.Protocols
	protocols.SetHTTP1(true)
	protocols.SetUnencryptedHTTP2(true)
	srv := &http.Server{Addr: addr, Handler: s.mux, Protocols: &protocols}
	return srv.ListenAndServe()
}

// Stop shuts down the server's background work.
func (s *Server) Stop() {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	s.worker.Stop()
}
