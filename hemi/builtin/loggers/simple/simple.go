// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// A simple logger that appends timestamped lines to a file.

package simple

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "github.com/hexinfra/tinyrox/hemi"
)

func init() {
	RegisterLogger("simple", func(logConfig *LogConfig) Logger {
		if err := os.MkdirAll(filepath.Dir(logConfig.Target), 0755); err != nil {
			return nil
		}
		logFile, err := os.OpenFile(logConfig.Target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil
		}
		bufSize := int(logConfig.BufSize)
		if bufSize <= 0 {
			bufSize = 4 * K
		}
		l := new(simpleLogger)
		l.config = logConfig
		l.file = logFile
		l.queue = make(chan string, 256)
		l.done = make(chan struct{})
		l.buffer = make([]byte, bufSize)
		l.size = len(l.buffer)
		l.used = 0
		go l.saver()
		return l
	})
}

const simpleTimeFormat = "[2006-01-02 15:04:05.000] "

// simpleLogger implements Logger.
type simpleLogger struct {
	config *LogConfig
	file   *os.File
	queue  chan string
	done   chan struct{}
	buffer []byte
	size   int
	used   int
}

func (l *simpleLogger) Logf(f string, v ...any) {
	if s := fmt.Sprintf(f, v...); s != "" {
		l.queue <- time.Now().Format(simpleTimeFormat) + s
	}
}
func (l *simpleLogger) Close() {
	l.queue <- ""
	<-l.done
}

func (l *simpleLogger) saver() { // runner
	for {
		s := <-l.queue
		if s == "" {
			goto over
		}
		l.write(s)
	more:
		for {
			select {
			case s = <-l.queue:
				if s == "" {
					goto over
				}
				l.write(s)
			default:
				l.clear()
				break more
			}
		}
	}
over:
	l.clear()
	l.file.Close()
	close(l.done)
}
func (l *simpleLogger) write(s string) {
	n := len(s)
	if n >= l.size {
		l.clear()
		l.flush(ConstBytes(s))
		return
	}
	w := copy(l.buffer[l.used:], s)
	l.used += w
	if l.used == l.size {
		l.clear()
		if n -= w; n > 0 {
			copy(l.buffer, s[w:])
			l.used = n
		}
	}
}
func (l *simpleLogger) clear() {
	if l.used > 0 {
		l.flush(l.buffer[:l.used])
		l.used = 0
	}
}
func (l *simpleLogger) flush(logs []byte) {
	l.file.Write(logs)
}
