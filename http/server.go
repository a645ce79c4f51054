// Package http 提供问候服务与模型推理的HTTP服务器
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bridgedemo/ml"
	"bridgedemo/monitoring"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	ModelType      string
	ModelPath      string
}

// Deps 服务器依赖
type Deps struct {
	Logger  *zap.Logger
	Metrics *monitoring.MetricsCollector
	Models  *ml.ModelCache
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		ModelType:      ml.ModelTypeGaussianNB,
		ModelPath:      ml.DefaultModelPath,
	}
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, deps Deps) (*Server, error) {
	handler, err := NewHandler(config, deps)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           handler,
			ReadHeaderTimeout: config.Timeout,
			IdleTimeout:       120 * time.Second,
		},
		config: config,
		logger: logger,
	}, nil
}

// NewHandler 注册所有路由并包装中间件链
func NewHandler(config ServerConfig, deps Deps) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewMetricsCollector()
	}
	if deps.Models == nil {
		models, err := ml.NewModelCache(1)
		if err != nil {
			return nil, err
		}
		deps.Models = models
	}
	if config.ModelType == "" {
		config.ModelType = ml.ModelTypeGaussianNB
	}
	if config.ModelPath == "" {
		config.ModelPath = ml.DefaultModelPath
	}

	mux := http.NewServeMux()

	// 注册所有处理器
	RegisterHandlers(mux)
	RegisterPredictHandlers(mux, NewPredictAPI(deps.Models, config.ModelType, config.ModelPath, deps.Logger))
	RegisterTrainingHandlers(mux, deps.Logger)
	RegisterMonitoringRoutes(mux, deps.Metrics)
	RegisterWebSocketHandlers(mux, config.AllowedOrigins, deps.Logger)

	// 创建中间件链
	chain := Chain(
		RecoveryMiddleware(deps.Logger),       // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(deps.Logger),         // 2. 日志中间件
		SecurityHeadersMiddleware,             // 3. 安全头中间件
		CORSMiddleware(config.AllowedOrigins), // 4. CORS中间件
		TimeoutMiddleware(config.Timeout),     // 5. 超时中间件
		MetricsMiddleware(deps.Metrics),       // 6. 指标中间件（需紧挨mux以读取路由模式）
	)

	return chain(mux), nil
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
