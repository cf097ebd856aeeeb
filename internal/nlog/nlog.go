// Package nlog is a small leveled logger used throughout this module.
//
// It is a deliberately scaled-down imitation of aistore's cmn/nlog: a
// package-level singleton, a severity-prefixed header with caller file:line,
// and plain writes to stderr. Unlike the daemon-oriented original, there is
// no file rotation or buffering here -- a client library has no long-running
// process to rotate logs for.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

var sevChar = [...]byte{'I', 'W', 'E'}

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	minSev severity  = sevInfo
)

// SetOutput redirects all log output; primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// SetQuiet raises the minimum severity to Warn, suppressing Infof/Infoln.
func SetQuiet(quiet bool) {
	mu.Lock()
	if quiet {
		minSev = sevWarn
	} else {
		minSev = sevInfo
	}
	mu.Unlock()
}

func Infof(format string, args ...any)    { logf(sevInfo, format, args...) }
func Infoln(args ...any)                  { logln(sevInfo, args...) }
func Warningf(format string, args ...any) { logf(sevWarn, format, args...) }
func Warningln(args ...any)               { logln(sevWarn, args...) }
func Errorf(format string, args ...any)   { logf(sevErr, format, args...) }
func Errorln(args ...any)                 { logln(sevErr, args...) }

func logf(sev severity, format string, args ...any) {
	if sev < minSev {
		return
	}
	write(sev, fmt.Sprintf(format, args...))
}

func logln(sev severity, args ...any) {
	if sev < minSev {
		return
	}
	write(sev, fmt.Sprintln(args...))
}

func write(sev severity, msg string) {
	var fn string
	var ln int
	if _, file, line, ok := runtime.Caller(3); ok {
		fn, ln = filepath.Base(file), line
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%c %s %s:%d %s", sevChar[sev], time.Now().Format("15:04:05.000000"), fn, ln, msg)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		fmt.Fprintln(out)
	}
}
