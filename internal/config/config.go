package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OSが受け付けるバックログ長の上限
const maxListenBacklog = 128

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Content ContentConfig `yaml:"content"`
	Admin   AdminConfig   `yaml:"admin"`

	// ログの最小出力レベル (debug / info / notice / warn / error)
	LogLevel string `yaml:"log_level"`
}

// ServerConfig は配信ソケットの設定
type ServerConfig struct {
	Host    string `yaml:"host"`    // リッスンするホスト
	Port    int    `yaml:"port"`    // リッスンするポート番号
	Backlog int    `yaml:"backlog"` // accept待ちキューの長さ

	// タイムアウト設定
	RecvTimeout time.Duration `yaml:"recv_timeout"` // 受信タイムアウト
	SendTimeout time.Duration `yaml:"send_timeout"` // 送信タイムアウト
}

// UnmarshalYAML はタイムアウトを "1s" のような期間文字列として受け付ける
// yaml.v3はtime.Durationを生のナノ秒整数としてしか扱わないため
func (sc *ServerConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawServerConfig struct {
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		Backlog     int    `yaml:"backlog"`
		RecvTimeout string `yaml:"recv_timeout"`
		SendTimeout string `yaml:"send_timeout"`
	}

	// ファイルに無い項目は現在の値を維持する
	raw := rawServerConfig{Host: sc.Host, Port: sc.Port, Backlog: sc.Backlog}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	sc.Host = raw.Host
	sc.Port = raw.Port
	sc.Backlog = raw.Backlog

	if raw.RecvTimeout != "" {
		d, err := time.ParseDuration(raw.RecvTimeout)
		if err != nil {
			return fmt.Errorf("recv_timeout の解析に失敗: %w", err)
		}
		sc.RecvTimeout = d
	}
	if raw.SendTimeout != "" {
		d, err := time.ParseDuration(raw.SendTimeout)
		if err != nil {
			return fmt.Errorf("send_timeout の解析に失敗: %w", err)
		}
		sc.SendTimeout = d
	}
	return nil
}

// ContentConfig は配信内容の設定
type ContentConfig struct {
	Root          string `yaml:"root"`           // Webルートディレクトリ
	NotFoundRoute string `yaml:"notfound_route"` // 404時に配信するルート
}

// AdminConfig は管理サーバーの設定
type AdminConfig struct {
	Enabled bool   `yaml:"enabled"` // 管理サーバーを起動するか
	Host    string `yaml:"host"`    // 管理サーバーのホスト
	Port    int    `yaml:"port"`    // 管理サーバーのポート番号
}

// Load は設定を読み込む
// デフォルト値 → CONFIG_FILEで指定されたYAMLファイル → 環境変数 の順に上書きする
func Load() (*Config, error) {
	// デフォルト設定を作成
	cfg := &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Backlog:     16,
			RecvTimeout: 1 * time.Second,
			SendTimeout: 1 * time.Second,
		},
		Content: ContentConfig{
			Root:          "public_html",
			NotFoundRoute: "/404.html",
		},
		Admin: AdminConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8081,
		},
		LogLevel: "info",
	}

	// YAMLファイルがあれば読み込む
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	// 環境変数で上書き
	var err error
	cfg.Server.Host = getEnvOrDefault("SERVER_HOST", cfg.Server.Host)
	if cfg.Server.Port, err = getEnvAsIntOrDefault("SERVER_PORT", cfg.Server.Port, 0, 65535); err != nil {
		return nil, err
	}
	if cfg.Server.Backlog, err = getEnvAsIntOrDefault("LISTEN_BACKLOG", cfg.Server.Backlog, 1, maxListenBacklog); err != nil {
		return nil, err
	}
	if cfg.Server.RecvTimeout, err = getEnvAsSecondsOrDefault("RECV_TIMEOUT", cfg.Server.RecvTimeout, 1, 65535); err != nil {
		return nil, err
	}
	if cfg.Server.SendTimeout, err = getEnvAsSecondsOrDefault("SEND_TIMEOUT", cfg.Server.SendTimeout, 1, 65535); err != nil {
		return nil, err
	}
	cfg.Content.Root = getEnvOrDefault("WEB_ROOT", cfg.Content.Root)
	cfg.Content.NotFoundRoute = getEnvOrDefault("NOTFOUND_ROUTE", cfg.Content.NotFoundRoute)
	if cfg.Admin.Port, err = getEnvAsIntOrDefault("ADMIN_PORT", cfg.Admin.Port, 0, 65535); err != nil {
		return nil, err
	}
	if os.Getenv("ADMIN_ENABLED") == "true" {
		cfg.Admin.Enabled = true
	}
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// loadFile はYAMLファイルから設定を読み込んで上書きする
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.Backlog < 1 || c.Server.Backlog > maxListenBacklog {
		return fmt.Errorf("無効なバックログ長: %d", c.Server.Backlog)
	}
	if c.Server.RecvTimeout < time.Second {
		return fmt.Errorf("受信タイムアウトが短すぎます: %v", c.Server.RecvTimeout)
	}
	if c.Server.SendTimeout < time.Second {
		return fmt.Errorf("送信タイムアウトが短すぎます: %v", c.Server.SendTimeout)
	}
	if c.Content.Root == "" {
		return fmt.Errorf("webルートが設定されていません")
	}
	if !strings.HasPrefix(c.Content.NotFoundRoute, "/") {
		return fmt.Errorf("無効な404ルート: %s", c.Content.NotFoundRoute)
	}
	if c.Admin.Enabled && (c.Admin.Port < 1 || c.Admin.Port > 65535) {
		return fmt.Errorf("無効な管理サーバーポート番号: %d", c.Admin.Port)
	}
	return nil
}

// ServerAddress は配信ソケットのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AdminAddress は管理サーバーのリッスンアドレスを返す
func (c *Config) AdminAddress() string {
	return fmt.Sprintf("%s:%d", c.Admin.Host, c.Admin.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得する
// 設定されていない場合はデフォルト値を返し、範囲外・数値以外の値はエラーにする
func getEnvAsIntOrDefault(key string, defaultValue, min, max int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	var intVal int
	if _, err := fmt.Sscanf(value, "%d", &intVal); err != nil {
		return 0, fmt.Errorf("%s が数値ではありません: %q", key, value)
	}
	if intVal < min || intVal > max {
		return 0, fmt.Errorf("%s が範囲外です: %d (有効範囲: %d〜%d)", key, intVal, min, max)
	}
	return intVal, nil
}

// getEnvAsSecondsOrDefault は環境変数を秒数として取得する
func getEnvAsSecondsOrDefault(key string, defaultValue time.Duration, min, max int) (time.Duration, error) {
	seconds, err := getEnvAsIntOrDefault(key, int(defaultValue/time.Second), min, max)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}
