// Package dashboard provides the web board: live labor per revenue center,
// the point-in-time history view, and a small JSON API for check-in,
// check-out and center figures.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/events"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
)

//go:embed templates/*
var templatesFS embed.FS

// DataProvider is the board's view of the labor service.
type DataProvider interface {
	Now() time.Time
	Summary() (labor.Summary, error)
	Reconstruct(clock string) (labor.Reconstruction, error)
	ListEmployees(activeOnly bool) ([]labor.Employee, error)
	CheckIn(name, center string, at *time.Time) (*labor.Employee, error)
	CheckOut(id string, at *time.Time) (*labor.Employee, error)
	SetSales(center string, sales float64) (labor.RevenueCenter, error)
	SetDivisor(center string, divisor float64) (labor.RevenueCenter, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	addr      string
	provider  DataProvider
	displays  *labor.DisplayTable
	publisher events.EventPublisher
	refresh   time.Duration
	logger    *slog.Logger

	server *http.Server
	tmpl   *template.Template
	hub    *Hub
	sse    *SSEHandler
	kick   chan struct{}
}

type Option func(*Server)

// WithPublisher streams change events to SSE clients and triggers websocket pushes.
func WithPublisher(p events.EventPublisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithRefresh sets the interval of the periodic websocket summary push.
func WithRefresh(d time.Duration) Option {
	return func(s *Server) { s.refresh = d }
}

func WithDisplays(t *labor.DisplayTable) Option {
	return func(s *Server) { s.displays = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new dashboard server.
func NewServer(addr string, provider DataProvider, opts ...Option) (*Server, error) {
	s := &Server{
		addr:     addr,
		provider: provider,
		refresh:  time.Minute,
		kick:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.refresh <= 0 {
		s.refresh = time.Minute
	}

	funcMap := template.FuncMap{
		"hours":   formatHours,
		"money":   formatMoney,
		"clock":   formatClock,
		"display": s.displays.For,
		"json":    toJSON,
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.tmpl = tmpl

	s.hub = NewHub(s.logger)
	if s.publisher != nil {
		s.sse = NewSSEHandler(s.publisher)
		s.publisher.Subscribe(func(*events.BaseEvent) error {
			s.Notify()
			return nil
		})
	}
	return s, nil
}

// Handler returns the routed handler without starting the listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
	mux.HandleFunc("GET /api/history", s.handleAPIHistory)
	mux.HandleFunc("GET /api/employees", s.handleAPIEmployees)
	mux.HandleFunc("POST /api/checkin", s.handleAPICheckIn)
	mux.HandleFunc("POST /api/employees/{id}/checkout", s.handleAPICheckOut)
	mux.HandleFunc("PUT /api/centers/{name}", s.handleAPICenter)
	mux.HandleFunc("GET /ws", s.handleWS)
	if s.sse != nil {
		mux.Handle("GET /events", s.sse)
	}
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
	}

	go s.RunBroadcaster(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.logger.Info("dashboard server starting", "addr", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Notify requests an out-of-band websocket push. It never blocks.
func (s *Server) Notify() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// RunBroadcaster runs the websocket hub and pushes the summary every refresh
// interval and after every change until ctx is cancelled.
func (s *Server) RunBroadcaster(ctx context.Context) {
	go s.hub.Run(ctx)

	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.kick:
		}
		s.pushSummary()
	}
}

func (s *Server) pushSummary() {
	summary, err := s.provider.Summary()
	if err != nil {
		s.logger.Warn("summary for websocket push failed", "error", err)
		return
	}
	data, err := json.Marshal(newSummaryResponse(summary))
	if err != nil {
		return
	}
	s.hub.Broadcast(data)
}
