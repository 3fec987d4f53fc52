package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level はログの重要度
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarn
	LevelError
	LevelFatal
)

// ParseLevel はレベル名文字列をLevelに変換する
// 不明な名前の場合はinfoを返す
func ParseLevel(name string) Level {
	switch name {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "notice":
		return LevelNotice
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// String はレベル名を返す
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelNotice:
		return "NOTICE"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// レベルごとのタグ色
var levelColors = map[Level]*color.Color{
	LevelDebug:  color.New(color.FgCyan),
	LevelInfo:   color.New(color.FgWhite),
	LevelNotice: color.New(color.FgGreen),
	LevelWarn:   color.New(color.FgYellow),
	LevelError:  color.New(color.FgRed),
	LevelFatal:  color.New(color.FgRed, color.Bold),
}

// exitFunc はFatalfの終了処理
// テストで差し替えられるように変数にしておく
var exitFunc = os.Exit

// Logger はレベル付きログ出力を行う構造体
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New は新しいLoggerを作成する
func New(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level}
}

// Default は標準エラー出力へのinfoレベルLoggerを作成する
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// SetLevel は最小出力レベルを変更する
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// logf は1行のログを書き出す（レベルフィルタ済み前提）
func (l *Logger) logf(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	tag := levelColors[level].Sprintf("%-6s", level.String())
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.out, "%s %s %s\n", timestamp, tag, fmt.Sprintf(format, args...))
}

// Debugf はデバッグ情報を出力する
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, format, args...)
}

// Infof は基本的な情報を出力する
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Noticef は特筆すべき情報を出力する
func (l *Logger) Noticef(format string, args ...any) {
	l.logf(LevelNotice, format, args...)
}

// Warnf は警告を出力する
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

// Errorf は非致命的なエラーを出力する
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, format, args...)
}

// Fatalf は致命的なエラーを出力し、固有の終了コードでプロセスを終了する
func (l *Logger) Fatalf(code Code, format string, args ...any) {
	l.logf(LevelFatal, format, args...)
	exitFunc(int(code))
}
