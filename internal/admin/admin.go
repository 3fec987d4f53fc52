// Package admin は、運用確認用の管理サーバーを提供します。
//
// 責務:
//   - ヘルスチェックエンドポイントの提供
//   - ルート数・最長ルート長・稼働時間などの状態確認
//
// 仕様:
//   - デフォルトでは無効で、ループバックでのみ公開する想定
//   - 配信プロトコルのコアとは完全に独立して動作する
//   - 凍結済みのテーブルを読み取るだけで、配信内容には一切触れない
package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hokora/internal/config"
	"hokora/internal/webroot"
)

// HealthResponse はヘルスチェックの応答
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse はシステム状態の応答
type StatusResponse struct {
	Status      string     `json:"status"`
	Server      ServerInfo `json:"server"`
	Routes      int        `json:"routes"`
	MaxRouteLen int        `json:"max_route_len"`
	UptimeSec   int64      `json:"uptime_sec"`
	Timestamp   time.Time  `json:"timestamp"`
}

// ServerInfo は配信ソケットの情報
type ServerInfo struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Server は管理サーバーを管理する構造体
type Server struct {
	config    *config.Config
	table     *webroot.Table
	engine    *gin.Engine
	startedAt time.Time
}

// New は新しい管理サーバーを作成する
func New(cfg *config.Config, table *webroot.Table) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		config:    cfg,
		table:     table,
		engine:    engine,
		startedAt: time.Now(),
	}

	engine.GET("/health", s.handleHealth)
	engine.GET("/api/status", s.handleStatus)

	return s
}

// handleHealth はヘルスチェックエンドポイントの実装
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// handleStatus はシステム状態取得エンドポイントの実装
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status: "running",
		Server: ServerInfo{
			Host: s.config.Server.Host,
			Port: s.config.Server.Port,
		},
		Routes:      s.table.Len(),
		MaxRouteLen: s.table.MaxRouteLen(),
		UptimeSec:   int64(time.Since(s.startedAt).Seconds()),
		Timestamp:   time.Now(),
	})
}

// Handler はHTTPハンドラを返す（テスト用）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run は管理サーバーを起動する（ブロックする）
func (s *Server) Run() error {
	return s.engine.Run(s.config.AdminAddress())
}
