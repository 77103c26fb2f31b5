// Package logger 提供统一的分级日志工具
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level 日志级别
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 解析日志级别字符串，无法识别时返回 INFO
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// sink 多个 Logger 共享的输出端
type sink struct {
	mu      sync.Mutex
	level   Level
	console io.Writer
	fileOut *os.File
	out     *log.Logger
}

func (s *sink) rebuild() {
	var writers []io.Writer
	if s.console != nil {
		writers = append(writers, s.console)
	}
	if s.fileOut != nil {
		writers = append(writers, s.fileOut)
	}

	switch len(writers) {
	case 0:
		s.out.SetOutput(io.Discard)
	case 1:
		s.out.SetOutput(writers[0])
	default:
		s.out.SetOutput(io.MultiWriter(writers...))
	}
}

// Logger 日志记录器，Named 派生的子 Logger 共享级别和输出
type Logger struct {
	component string
	sink      *sink
}

var defaultLogger = New()

// New 创建输出到标准输出的 Logger
func New() *Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter 创建输出到指定 writer 的 Logger，主要用于测试
func NewWithWriter(w io.Writer) *Logger {
	s := &sink{
		level:   INFO,
		console: w,
		out:     log.New(w, "", 0),
	}
	return &Logger{sink: s}
}

// Default 获取默认 logger
func Default() *Logger {
	return defaultLogger
}

// Named 返回带组件名的子 Logger
func (l *Logger) Named(component string) *Logger {
	name := component
	if l.component != "" {
		name = l.component + "." + component
	}
	return &Logger{component: name, sink: l.sink}
}

// SetLevel 设置日志级别
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level 返回当前日志级别
func (l *Logger) Level() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// SetConsole 设置是否输出到控制台
func (l *Logger) SetConsole(enabled bool) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if enabled {
		l.sink.console = os.Stdout
	} else {
		l.sink.console = nil
	}
	l.sink.rebuild()
}

// SetFile 追加输出到文件，path 为空时关闭文件输出
func (l *Logger) SetFile(path string) error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.fileOut != nil {
		l.sink.fileOut.Close()
		l.sink.fileOut = nil
	}

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("无法打开日志文件: %w", err)
		}
		l.sink.fileOut = f
	}

	l.sink.rebuild()
	return nil
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05")
	if l.component != "" {
		l.sink.out.Printf("%s | %-5s | %s | %s", timestamp, level.String(), l.component, msg)
		return
	}
	l.sink.out.Printf("%s | %-5s | %s", timestamp, level.String(), msg)
}

// Debug 输出 DEBUG 级别日志
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info 输出 INFO 级别日志
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn 输出 WARN 级别日志
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error 输出 ERROR 级别日志
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// LogEvent 记录带分类和耗时的事件日志
func (l *Logger) LogEvent(category string, ok bool, elapsed time.Duration, detail string) {
	ms := float64(elapsed.Microseconds()) / 1000
	if ok {
		l.Info("%-6s | OK | %6.1fms | %s", category, ms, detail)
		return
	}
	l.Warn("%-6s | NG | %6.1fms | %s", category, ms, detail)
}

// Close 关闭文件输出
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.fileOut != nil {
		err := l.sink.fileOut.Close()
		l.sink.fileOut = nil
		l.sink.rebuild()
		return err
	}
	return nil
}

// 包级别便捷函数
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
func Named(component string) *Logger         { return defaultLogger.Named(component) }
