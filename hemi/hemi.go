// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Process-wide elements shared by all servers.

package hemi

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

const Version = "0.1.0"

var (
	_debugLevel atomic.Int32
	_baseDir    atomic.Value // directory of the executable
	_baseOnce   sync.Once    // protects _baseDir
	_logsDir    atomic.Value // directory of the log files
	_logsOnce   sync.Once    // protects _logsDir
	_tempDir    atomic.Value // directory of the temp files
	_tempOnce   sync.Once    // protects _tempDir
	_varsDir    atomic.Value // directory of the run-time data
	_varsOnce   sync.Once    // protects _varsDir
)

func DebugLevel() int32 { return _debugLevel.Load() }
func BaseDir() string   { return _loadDir(&_baseDir) }
func LogsDir() string   { return _loadDir(&_logsDir) }
func TempDir() string   { return _loadDir(&_tempDir) }
func VarsDir() string   { return _loadDir(&_varsDir) }

func _loadDir(dir *atomic.Value) string {
	if v := dir.Load(); v != nil {
		return v.(string)
	}
	return ""
}

func SetDebugLevel(level int32) { _debugLevel.Store(level) }
func SetBaseDir(dir string) { // only once!
	_baseOnce.Do(func() {
		_baseDir.Store(dir)
	})
}
func SetLogsDir(dir string) { // only once!
	_logsOnce.Do(func() {
		_logsDir.Store(dir)
		_mustMkdir(dir)
	})
}
func SetTempDir(dir string) { // only once!
	_tempOnce.Do(func() {
		_tempDir.Store(dir)
		_mustMkdir(dir)
	})
}
func SetVarsDir(dir string) { // only once!
	_varsOnce.Do(func() {
		_varsDir.Store(dir)
		_mustMkdir(dir)
	})
}

func _mustMkdir(dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		EnvExitln(err.Error())
	}
}

func Print(v ...any)            { fmt.Print(v...) }
func Println(v ...any)          { fmt.Println(v...) }
func Printf(f string, v ...any) { fmt.Printf(f, v...) }

const ( // exit codes
	CodeBug = 20
	CodeUse = 21
	CodeEnv = 22
)

func BugExitln(v ...any)          { _exitln(CodeBug, "[BUG] ", v...) }
func BugExitf(f string, v ...any) { _exitf(CodeBug, "[BUG] ", f, v...) }

func UseExitln(v ...any)          { _exitln(CodeUse, "[USE] ", v...) }
func UseExitf(f string, v ...any) { _exitf(CodeUse, "[USE] ", f, v...) }

func EnvExitln(v ...any)          { _exitln(CodeEnv, "[ENV] ", v...) }
func EnvExitf(f string, v ...any) { _exitf(CodeEnv, "[ENV] ", f, v...) }

func _exitln(exitCode int, prefix string, v ...any) {
	fmt.Fprint(os.Stderr, prefix)
	fmt.Fprintln(os.Stderr, v...)
	os.Exit(exitCode)
}
func _exitf(exitCode int, prefix, f string, v ...any) {
	fmt.Fprintf(os.Stderr, prefix+f, v...)
	os.Exit(exitCode)
}
