// Package logger is a thin levelled wrapper over charmbracelet/log shared by
// the relay server and the terminal client.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const maxLogSize = 10 * 1024 * 1024

var (
	current atomic.Pointer[log.Logger]

	fileMu  sync.Mutex
	logFile *os.File
	logPath string
)

func init() {
	current.Store(newLogger(os.Stderr, "", log.InfoLevel))
}

func newLogger(w io.Writer, prefix string, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		ReportCaller:    true,
		CallerOffset:    1,
	})
}

// ParseLevel 解析配置中的日志级别，默认 info
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Init 输出到 stderr
func Init(app, level string) {
	current.Store(newLogger(os.Stderr, app, ParseLevel(level)))
}

// SetOutput 重定向输出（测试用）
func SetOutput(w io.Writer, level string) {
	current.Store(newLogger(w, "", ParseLevel(level)))
}

// InitFile 输出到文件，终端客户端使用，避免日志打乱界面。
// path 为空时使用 ~/.paint-n-pass/client.log，超过 10MB 时先轮转。
func InitFile(app, path, level string) error {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".paint-n-pass", "client.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		backupPath := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		_ = os.Rename(path, backupPath)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	fileMu.Lock()
	old := logFile
	logFile, logPath = f, path
	fileMu.Unlock()

	current.Store(newLogger(f, app, ParseLevel(level)))
	if old != nil {
		_ = old.Close()
	}

	Info("Logger initialized, log file: %s", path)
	return nil
}

// Close 关闭 InitFile 打开的日志文件
func Close() {
	fileMu.Lock()
	defer fileMu.Unlock()
	if logFile != nil {
		current.Store(newLogger(os.Stderr, "", current.Load().GetLevel()))
		_ = logFile.Close()
		logFile = nil
	}
}

// Path InitFile 打开的文件路径
func Path() string {
	fileMu.Lock()
	defer fileMu.Unlock()
	return logPath
}

func Debug(format string, args ...any) {
	current.Load().Debugf(format, args...)
}

func Info(format string, args ...any) {
	current.Load().Infof(format, args...)
}

func Warn(format string, args ...any) {
	current.Load().Warnf(format, args...)
}

func Error(format string, args ...any) {
	current.Load().Errorf(format, args...)
}

// LogPanic 记录 panic 及堆栈
func LogPanic(r any) {
	current.Load().Errorf("panic: %v\n%s", r, debug.Stack())
}
