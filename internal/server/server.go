// Package server hosts the relay websocket endpoint and the game API on one
// HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/arl/statsviz"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/palemoky/paint-n-pass/internal/api"
	"github.com/palemoky/paint-n-pass/internal/config"
	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/server/relay"
	"github.com/palemoky/paint-n-pass/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 来源已在 handleWebSocket 中校验
	},
	// 启用 permessage-deflate，由 gorilla/websocket 自动协商
	EnableCompression: true,
}

// Server WebSocket + HTTP 服务器
type Server struct {
	config *config.Config
	store  storage.GameStore
	relay  *relay.Relay

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	httpServer   *http.Server
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer 创建服务器实例，store 的生命周期由服务器接管
func NewServer(cfg *config.Config, store storage.GameStore) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:  cfg,
		store:   store,
		relay:   relay.New(relay.Options{Store: store, QueueSize: cfg.Storage.PersistQueue}),
		clients: make(map[string]*Client),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageLimiter(
			cfg.Security.MessageLimit.MaxPerSecond,
			cfg.Security.MessageLimit.JoinsPerMinute,
		),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		ctx:            ctx,
		cancel:         cancel,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("安全配置: 连接限制=%d/s, 消息限制=%d/s, 最大连接数=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond, cfg.Server.MaxConnections)
	return s
}

// Handler 返回完整路由：/ws、/health、/games/{id}，debug 模式下附带 /debug/statsviz/
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(api.LogRequests)

	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.Register(r, s.store)

	if s.config.Server.Debug {
		if srv, err := statsviz.NewServer(); err != nil {
			logger.Error("statsviz 初始化失败: %v", err)
		} else {
			r.Methods(http.MethodGet).Path("/debug/statsviz/ws").HandlerFunc(srv.Ws())
			r.Methods(http.MethodGet).PathPrefix("/debug/statsviz/").Handler(srv.Index())
		}
	}
	return r
}

// Relay 返回中继实例
func (s *Server) Relay() *relay.Relay {
	return s.relay
}

// Start 启动服务器，阻塞直到 Shutdown
func (s *Server) Start() error {
	go s.monitorStats(s.ctx)

	logger.Info("服务器启动在 ws://%s/ws (CPU核心数: %d)", s.httpServer.Addr, runtime.NumCPU())
	if s.config.Server.Debug {
		logger.Info("启动监控..., URL: http://%s/debug/statsviz/", s.httpServer.Addr)
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
