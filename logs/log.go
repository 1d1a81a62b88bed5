package logs

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// 定义日志级别常量（数值越大，级别越高）
const (
	LevelTrace   = iota // 0（最低，最详细）
	LevelDebug          // 1
	LevelVerbose        // 2
	LevelInfo           // 3
	LevelWarning        // 4
	LevelError          // 5（最高，最严重）
)

var (
	mu       sync.RWMutex
	logLevel = LevelInfo // 全局日志级别
	logger   *Logger
	// NodeTag 打在每行日志前面，区分同进程内的多个宿主实例
	NodeTag = "vault"
)

// Logger 结构体
type Logger struct {
	traceLogger   *log.Logger
	debugLogger   *log.Logger
	verboseLogger *log.Logger
	infoLogger    *log.Logger
	warnLogger    *log.Logger
	errorLogger   *log.Logger
}

// 初始化全局 Logger 实例
func init() {
	logger = newLogger(os.Stdout, os.Stderr)
}

func newLogger(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile
	return &Logger{
		traceLogger:   log.New(out, "[TRACE]   ", flags),
		debugLogger:   log.New(out, "[DEBUG]   ", flags),
		verboseLogger: log.New(out, "[VERBOSE] ", flags),
		infoLogger:    log.New(out, "[INFO]    ", flags),
		warnLogger:    log.New(out, "[WARN]    ", flags),
		errorLogger:   log.New(errOut, "[ERROR]   ", flags),
	}
}

// SetOutput 重定向全部级别的输出（测试里用来捕获日志）
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, w)
}

// SetLevel 设置全局日志级别
func SetLevel(level int) {
	mu.Lock()
	defer mu.Unlock()
	logLevel = level
}

func GetLevel() int {
	mu.RLock()
	defer mu.RUnlock()
	return logLevel
}

// ParseLevel 把配置里的字符串转换成级别
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "verbose":
		return LevelVerbose, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func output(l *log.Logger, level int, format string, v ...interface{}) {
	mu.RLock()
	enabled := logLevel <= level
	tag := NodeTag
	mu.RUnlock()
	if !enabled {
		return
	}
	// calldepth 3: output -> Info/Warn/... -> 调用方
	_ = l.Output(3, tag+" "+fmt.Sprintf(format, v...))
}

// 包级别的日志方法
func Trace(format string, v ...interface{}) {
	output(current().traceLogger, LevelTrace, format, v...)
}

func Debug(format string, v ...interface{}) {
	output(current().debugLogger, LevelDebug, format, v...)
}

func Verbose(format string, v ...interface{}) {
	output(current().verboseLogger, LevelVerbose, format, v...)
}

func Info(format string, v ...interface{}) {
	output(current().infoLogger, LevelInfo, format, v...)
}

func Warn(format string, v ...interface{}) {
	output(current().warnLogger, LevelWarning, format, v...)
}

func Error(format string, v ...interface{}) {
	output(current().errorLogger, LevelError, format, v...)
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
