package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Log formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

var logLevels = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// ProductionLogger writes SDK diagnostics to stdout.
//
// Text format is used locally and JSON inside Kubernetes, where
// KUBERNETES_SERVICE_HOST is set. Error logs are rate-limited so a failing
// exporter cannot flood the host application's output.
type ProductionLogger struct {
	level       string
	serviceName string
	format      string
	output      io.Writer
	mu          sync.RWMutex

	errorLimiter *RateLimiter
}

// NewProductionLogger creates a logger for the given service.
// Configuration priority:
//  1. debug argument (forces DEBUG)
//  2. UNTRACE_LOG_LEVEL, UNTRACE_LOG_FORMAT
//  3. Kubernetes auto-detection for the format
//  4. Defaults: INFO, text
func NewProductionLogger(serviceName string, debug bool) *ProductionLogger {
	level := strings.ToUpper(os.Getenv("UNTRACE_LOG_LEVEL"))
	if _, ok := logLevels[level]; !ok {
		level = "INFO"
	}
	if debug {
		level = "DEBUG"
	}

	format := FormatText
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		format = FormatJSON
	}
	if envFormat := strings.ToLower(os.Getenv("UNTRACE_LOG_FORMAT")); envFormat == FormatJSON || envFormat == FormatText {
		format = envFormat
	}

	return &ProductionLogger{
		level:        level,
		serviceName:  serviceName,
		format:       format,
		output:       os.Stdout,
		errorLimiter: NewRateLimiter(time.Second),
	}
}

// Info logs informational messages
func (l *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

// Warn logs warning messages
func (l *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

// Error logs error messages with rate limiting
func (l *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	if l.errorLimiter != nil && !l.errorLimiter.Allow() {
		return
	}
	l.log("ERROR", msg, fields)
}

// Debug logs debug messages
func (l *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

// Suppressed returns how many error logs the rate limiter dropped.
func (l *ProductionLogger) Suppressed() int64 {
	if l.errorLimiter == nil {
		return 0
	}
	return l.errorLimiter.Dropped()
}

func (l *ProductionLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.shouldLog(level) {
		return
	}

	timestamp := time.Now().Format(time.RFC3339)
	if l.format == FormatJSON {
		l.logJSON(timestamp, level, msg, fields)
	} else {
		l.logText(timestamp, level, msg, fields)
	}
}

func (l *ProductionLogger) logJSON(timestamp, level, msg string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level,
		"service":   l.serviceName,
		"component": "untrace",
		"message":   msg,
	}

	for k, v := range fields {
		if _, reserved := entry[k]; reserved {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}

	if data, err := json.Marshal(entry); err == nil {
		fmt.Fprintln(l.output, string(data))
	}
}

// logText prints error/operation/impact first, then the remaining fields
// in key order so lines are stable across runs.
func (l *ProductionLogger) logText(timestamp, level, msg string, fields map[string]interface{}) {
	var b strings.Builder
	leading := []string{"operation", "error", "impact"}
	for _, k := range leading {
		if v, ok := fields[k]; ok {
			fmt.Fprintf(&b, " %s=%q", k, fmt.Sprint(v))
		}
	}
	for _, k := range SortedKeys(fields) {
		if k == "operation" || k == "error" || k == "impact" {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	fmt.Fprintf(l.output, "%s [%s] [untrace:%s] %s%s\n",
		timestamp, level, l.serviceName, msg, b.String())
}

func (l *ProductionLogger) shouldLog(level string) bool {
	current, ok1 := logLevels[l.level]
	message, ok2 := logLevels[level]
	if !ok1 || !ok2 {
		return true
	}
	return message >= current
}

// SetLevel dynamically updates the log level
func (l *ProductionLogger) SetLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := logLevels[strings.ToUpper(level)]; ok {
		l.level = strings.ToUpper(level)
	}
}

// SetFormat dynamically updates the log format
func (l *ProductionLogger) SetFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
}

// SetOutput changes the output writer (useful for testing)
func (l *ProductionLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}
