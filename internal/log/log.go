package log

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"sync"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var (
	mu       sync.Mutex
	logger   = stdlog.New(os.Stderr, "", stdlog.LstdFlags|stdlog.Lmicroseconds)
	minLevel = LevelInfo
)

// SetLevel adjusts the minimum emitted severity.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

func Debug(msg string, kv ...any) { emit(LevelDebug, "DEBUG", msg, kv) }

func Info(msg string, kv ...any) { emit(LevelInfo, "INFO", msg, kv) }

// Error logs msg with err prepended to the key/value pairs.
func Error(msg string, err error, kv ...any) {
	emit(LevelError, "ERROR", msg, append([]any{"err", err}, kv...))
}

func emit(l Level, tag, msg string, kv []any) {
	mu.Lock()
	defer mu.Unlock()
	if l < minLevel {
		return
	}
	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 == 1 {
		fmt.Fprintf(&b, " %v=?", kv[len(kv)-1])
	}
	logger.Println(b.String())
}
