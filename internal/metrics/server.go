package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/netxfw/saf/pkg/sdk"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultListen is the address the metrics server binds to when none is configured.
// DefaultListen 是未配置时指标服务器绑定的地址。
const DefaultListen = ":9464"

// Server exposes /metrics over HTTP.
// Server 通过 HTTP 暴露 /metrics。
type Server struct {
	server   *http.Server
	listener net.Listener
	log      sdk.Logger
	done     chan struct{}
}

// NewServer creates a metrics server bound to listen. It does not start serving.
// NewServer 创建绑定到 listen 的指标服务器，但不开始服务。
func NewServer(listen string, log sdk.Logger) *Server {
	if listen == "" {
		listen = DefaultListen
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		server: &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log:  log,
		done: make(chan struct{}),
	}
}

// Start binds the listener and serves in the background.
// Start 绑定监听器并在后台提供服务。
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go func() {
		defer close(s.done)
		s.log.Infof("📊 Metrics HTTP server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("❌ Metrics server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Stop shuts the server down.
// Stop 关闭服务器。
func (s *Server) Stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	<-s.done
	return err
}
