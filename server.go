// 文件路径: server.go
// 模块说明: 服务器门面：配置合并、中间件槽位、生命周期状态机与监听循环。

// Package server turns a Config into a running HTTP service. The facade
// owns one chi router, one listening socket (plain or TLS) and a
// fixed-order middleware chain; routing, protocol parsing and TLS are
// delegated to chi, net/http and crypto/tls.
package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Ajayos/Server/internal/auth/token"
	"github.com/Ajayos/Server/internal/support/logging"
	"github.com/Ajayos/Server/internal/sysinfo"
	"github.com/Ajayos/Server/middleware"
)

// State is the facade's lifecycle position. Transitions are linear:
// created → starting → listening → closed, with no way back out of
// closed.
type State int32

const (
	StateCreated State = iota
	StateStarting
	StateListening
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// The four well-known middleware kinds occupy fixed slots so the
// composed order never depends on call order.
type slotIndex int

const (
	slotCORS slotIndex = iota
	slotHelmet
	slotBody
	slotCookies
	slotCount
)

// bindRetryDelay is the fixed wait before the single bind retry when
// the address is already in use. A variable so tests can shorten it.
var bindRetryDelay = 5 * time.Second

// Server is the facade instance. Construct with New, wire routes and
// middleware, then Start. All exported methods are safe for concurrent
// use; route registration is only meaningful before Start.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	router     *chi.Mux
	probe      *sysinfo.Probe
	metrics    *middleware.Metrics
	metricsCfg middleware.MetricsConfig
	tlsConfig  *tls.Config
	instanceID string

	mu         sync.Mutex
	state      State
	slots      [slotCount]func(http.Handler) http.Handler
	chain      []func(http.Handler) http.Handler
	statics    []func(http.Handler) http.Handler
	httpServer *http.Server
	listener   net.Listener
	boundAddr  net.Addr
	startedAt  time.Time
	serveErr   error

	done     chan struct{}
	doneOnce sync.Once
}

// New merges cfg over defaults, validates the TLS material, builds the
// router and the built-in endpoints, and fills the middleware slots the
// construction flags ask for. No socket is touched until Start.
func New(cfg Config) (*Server, error) {
	merged, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	tlsConfig, err := merged.TLS.build()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        merged,
		logger:     merged.Logger,
		router:     chi.NewRouter(),
		probe:      sysinfo.New(),
		tlsConfig:  tlsConfig,
		instanceID: uuid.NewString(),
		done:       make(chan struct{}),
	}

	if err := s.registerBuiltins(); err != nil {
		return nil, err
	}

	// 构造期的布尔/选项开关与手动激活走的是同一条路径。
	if merged.CORSOptions != nil {
		_ = s.CORS(*merged.CORSOptions)
	} else if merged.CORS {
		_ = s.CORS()
	}
	if merged.HelmetOptions != nil {
		_ = s.Helmet(*merged.HelmetOptions)
	} else if merged.Helmet {
		_ = s.Helmet()
	}
	if merged.BodyParserOptions != nil {
		_ = s.BodyParser(*merged.BodyParserOptions)
	} else if merged.BodyParser {
		_ = s.BodyParser()
	}
	if merged.CookieParser || merged.CookieSecret != "" {
		_ = s.Cookies()
	}

	return s, nil
}

// registerBuiltins mounts the health, metrics and vitals endpoints on
// the router before any user route, so callers can still override the
// patterns with their own handlers.
func (s *Server) registerBuiltins() error {
	if !s.cfg.DisableHealth {
		s.router.Get("/healthz", s.handleHealth)
	}

	if s.cfg.Metrics != nil {
		s.metricsCfg = *s.cfg.Metrics
		if s.metricsCfg.SkipPaths == nil {
			s.metricsCfg.SkipPaths = middleware.DefaultMetricsConfig().SkipPaths
		}
		s.metrics = middleware.NewMetrics(s.metricsCfg)
		endpoint := s.metrics.Handler()
		if s.metricsCfg.Token != "" {
			s.router.With(middleware.StaticBearer(s.metricsCfg.Token)).Handle("/metrics", endpoint)
		} else {
			s.router.Handle("/metrics", endpoint)
		}
	}

	if s.cfg.Vitals != nil {
		vitals := *s.cfg.Vitals
		if vitals.Path == "" {
			vitals.Path = "/debug/vitals"
		}
		if vitals.Scope == "" {
			vitals.Scope = "vitals:read"
		}
		if len(vitals.SigningKey) > 0 {
			manager, err := token.NewManager(token.Options{
				SigningKey: vitals.SigningKey,
				Issuer:     vitals.Issuer,
			})
			if err != nil {
				return fmt.Errorf("%w: vitals guard: %v", ErrConfiguration, err)
			}
			guard := middleware.BearerAuth(middleware.BearerAuthConfig{
				Manager: manager,
				Scope:   vitals.Scope,
			})
			s.router.With(guard).Get(vitals.Path, s.handleVitals)
		} else {
			s.router.Get(vitals.Path, s.handleVitals)
		}
	}
	return nil
}

// CORS fills the CORS slot, with library defaults when no options are
// given. Calling it again replaces the earlier registration; additive
// middleware goes through Use instead.
func (s *Server) CORS(opts ...middleware.CORSConfig) error {
	config := middleware.DefaultCORSConfig()
	if len(opts) > 0 {
		config = opts[0]
	}
	return s.fillSlot(slotCORS, middleware.CORS(config))
}

// Helmet fills the security-header slot.
func (s *Server) Helmet(opts ...middleware.SecureHeadersConfig) error {
	config := middleware.DefaultSecureHeadersConfig()
	if len(opts) > 0 {
		config = opts[0]
	}
	return s.fillSlot(slotHelmet, middleware.SecureHeaders(config))
}

// BodyParser fills the request-body slot (size limit plus content-type
// gate).
func (s *Server) BodyParser(opts ...middleware.BodyConfig) error {
	config := middleware.DefaultBodyConfig()
	if len(opts) > 0 {
		config = opts[0]
	}
	return s.fillSlot(slotBody, middleware.RequestBody(config))
}

// Cookies fills the cookie slot. Without explicit options the slot uses
// Config.CookieSecret, so signed cookies verify out of the box.
func (s *Server) Cookies(opts ...middleware.CookiesConfig) error {
	config := middleware.CookiesConfig{Secret: s.cfg.CookieSecret}
	if len(opts) > 0 {
		config = opts[0]
	}
	return s.fillSlot(slotCookies, middleware.Cookies(config))
}

// Use appends middleware to the additive chain that runs after the four
// slots. Unlike the slot methods, repeated calls accumulate.
func (s *Server) Use(mws ...func(http.Handler) http.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return err
	}
	s.chain = append(s.chain, mws...)
	return nil
}

// Static serves files from dir at the root path. Requests that match an
// existing file are served; everything else falls through to the routes.
func (s *Server) Static(dir string) error {
	return s.StaticAt("/", dir)
}

// StaticAt serves files from dir under the given URL prefix.
func (s *Server) StaticAt(prefix, dir string) error {
	config := middleware.DefaultStaticConfig(dir)
	config.Prefix = prefix

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return err
	}
	s.statics = append(s.statics, middleware.Static(config))
	return nil
}

func (s *Server) fillSlot(slot slotIndex, mw func(http.Handler) http.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return err
	}
	s.slots[slot] = mw
	return nil
}

func (s *Server) mutableLocked() error {
	switch s.state {
	case StateCreated:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrAlreadyStarted
	}
}

// composeHandler builds the request pipeline exactly once, during Start:
// chi built-ins, metrics, the four slots in fixed order, rate limit,
// request log, recovery, compression, the additive chain, then static
// mounts in front of the router.
func (s *Server) composeHandler() http.Handler {
	chain := []func(http.Handler) http.Handler{
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	}
	if s.metrics != nil {
		chain = append(chain, s.metrics.Middleware(s.metricsCfg))
	}
	for _, slot := range s.slots {
		if slot != nil {
			chain = append(chain, slot)
		}
	}
	if s.cfg.RateLimit != nil {
		chain = append(chain, middleware.RateLimit(*s.cfg.RateLimit))
	}
	if s.cfg.RequestLog != nil {
		logCfg := *s.cfg.RequestLog
		if logCfg.Logger == nil {
			logCfg.Logger = s.logger
		}
		chain = append(chain, middleware.RequestLog(logCfg))
	}
	chain = append(chain, chiMiddleware.Recoverer, chiMiddleware.Compress(5))
	chain = append(chain, s.chain...)
	chain = append(chain, s.statics...)

	var handler http.Handler = s.router
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// Start composes the middleware chain, binds the listener and begins
// serving in a background goroutine. It is valid exactly once, from the
// created state. Bind failures follow the address-in-use retry policy
// and are returned wrapping ErrBind.
func (s *Server) Start() error {
	s.mu.Lock()
	switch s.state {
	case StateCreated:
	case StateClosed:
		s.mu.Unlock()
		return ErrClosed
	default:
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateStarting
	handler := s.composeHandler()
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	s.mu.Unlock()

	listener, err := s.bind(addr)
	if err != nil {
		if s.cfg.OnServerError != nil {
			s.cfg.OnServerError(err)
		} else {
			s.logger.Log(context.Background(), logging.LevelFatal,
				"server failed to bind", "addr", addr, "error", err)
		}
		s.finish(err)
		return err
	}

	s.mu.Lock()
	if s.state != StateStarting {
		// Close 在绑定窗口期间抢先到达。
		s.mu.Unlock()
		_ = listener.Close()
		s.finish(nil)
		return ErrClosed
	}
	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	if s.tlsConfig != nil {
		s.httpServer.TLSConfig = s.tlsConfig.Clone()
	}
	s.listener = listener
	s.boundAddr = listener.Addr()
	s.startedAt = time.Now().UTC()
	s.state = StateListening
	s.mu.Unlock()

	s.logger.Info("server listening",
		"addr", s.boundAddr.String(),
		"env", s.cfg.Env,
		"tls", s.tlsConfig != nil,
		"instance", s.instanceID)

	if s.cfg.OnServerStart != nil {
		s.cfg.OnServerStart(s)
	}

	go s.serve(listener)
	return nil
}

// bind attempts the listen. On address-in-use with the default error
// policy it warns, waits the fixed delay and retries exactly once; any
// other failure, or a caller-supplied OnServerError, stops immediately.
func (s *Server) bind(addr string) (net.Listener, error) {
	var (
		listener net.Listener
		attempts int
	)
	operation := func() error {
		attempts++
		l, err := net.Listen("tcp", addr)
		if err == nil {
			listener = l
			return nil
		}
		if !isAddrInUse(err) {
			return backoff.Permanent(err)
		}
		if s.cfg.OnServerError != nil {
			// 调用方接管了错误策略，不做默认的等待重试。
			return backoff.Permanent(err)
		}
		if attempts == 1 {
			s.logger.Warn("address in use, retrying once",
				"addr", addr, "delay", bindRetryDelay.String())
		}
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(bindRetryDelay), 1)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBind, err)
	}
	return listener, nil
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

func (s *Server) serve(listener net.Listener) {
	var err error
	if s.tlsConfig != nil {
		err = s.httpServer.ServeTLS(listener, "", "")
	} else {
		err = s.httpServer.Serve(listener)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		fault := fmt.Errorf("%w: %w", ErrRuntimeSocket, err)
		s.logger.Error("listener fault", "error", err)
		if s.cfg.OnServerError != nil {
			s.cfg.OnServerError(fault)
		}
		s.finish(fault)
		return
	}
	s.finish(nil)
}

// finish records the terminal error, moves to closed and releases Wait.
func (s *Server) finish(err error) {
	s.mu.Lock()
	s.state = StateClosed
	if s.serveErr == nil {
		s.serveErr = err
	}
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
}

// Wait blocks until the serve loop exits: nil after a clean Close or
// Shutdown, the terminal error otherwise.
func (s *Server) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Close is the hard stop: the listener and every connection are closed
// immediately, releasing the port with no drain. In-flight requests are
// cut off. Closing an already-closed server is a no-op.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	server := s.httpServer
	s.mu.Unlock()

	if server == nil {
		// 尚未绑定监听，直接终态。
		s.doneOnce.Do(func() { close(s.done) })
		return nil
	}
	s.logger.Info("server closed", "instance", s.instanceID)
	return server.Close()
}

// Shutdown is the graceful supplement to Close: it stops accepting,
// drains in-flight requests up to ShutdownTimeout (or the context's
// earlier deadline), then closes whatever remains.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	server := s.httpServer
	timeout := s.cfg.ShutdownTimeout
	s.mu.Unlock()

	if server == nil {
		s.doneOnce.Do(func() { close(s.done) })
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s.logger.Info("server draining", "instance", s.instanceID)
	if err := server.Shutdown(ctx); err != nil {
		_ = server.Close()
		return err
	}
	return nil
}

// State reports the current lifecycle position.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr is the bound address once listening, or the configured address
// before that.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundAddr != nil {
		return s.boundAddr.String()
	}
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// InstanceID is the UUID assigned at construction.
func (s *Server) InstanceID() string {
	return s.instanceID
}

// Env is the merged environment mode.
func (s *Server) Env() string {
	return s.cfg.Env
}

// Uptime is the time spent listening; zero before the listener bound.
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"instance": s.instanceID,
		"uptime":   s.Uptime().Round(time.Millisecond).String(),
		"ts":       time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleVitals(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := s.probe.Vitals()
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	snapshot.Instance = s.instanceID
	snapshot.Env = s.cfg.Env
	snapshot.Uptime = s.Uptime().Round(time.Millisecond).String()
	respondJSON(w, http.StatusOK, snapshot)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
