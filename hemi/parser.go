// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Incremental request parser.

package hemi

import (
	"bytes"
	"strings"
)

// step performs one step of parsing or executing, and reports whether more progress can be made now.
func (c *Connection) step() bool {
	switch c.state {
	case stateRequestLine:
		return c.parseRequestLine()
	case stateHeaders:
		return c.parseHeader()
	case stateBody:
		return c.parseBody()
	case stateFinished:
		c.state = stateExecuted
		c.execute()
	case stateError:
		if !c.fullyQueued {
			if c.headResult > 0 {
				c.serveAbnormal(c.headResult)
			} else { // send nothing
				c.fullyQueued = true
			}
		}
	}
	return false
}

func (c *Connection) fail(headResult int16, failReason string) bool {
	c.headResult = headResult
	c.failReason = failReason
	c.state = stateError
	return true
}

// nextLine takes one line ending with LF from input, without the LF and an optional CR before it.
func (c *Connection) nextLine() (line []byte, ok bool) {
	i := bytes.IndexByte(c.input, '\n')
	if i == -1 {
		return nil, false
	}
	line = c.input[:i]
	c.input = c.input[i+1:]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, true
}

func (c *Connection) parseRequestLine() bool { // GET /foo?x=y HTTP/1.1
	line, ok := c.nextLine()
	if !ok {
		return false
	}
	var words [3][]byte
	i, n := 0, 0
	for ; n < len(words); n++ {
		var word []byte
		if word, i = nextWord(line, i, byteIsSpace); word == nil {
			break
		}
		words[n] = word
	} // words after the third are ignored
	if n < len(words) {
		return c.fail(-1, "malformed request line")
	}
	method := []byte(string(words[0]))
	bytesToUpper(method)
	c.method = WeakString(method)
	c.path = string(words[1])
	c.version = string(words[2])
	c.state = stateHeaders
	return true
}

func (c *Connection) parseHeader() bool { // Name: Value
	line, ok := c.nextLine()
	if !ok {
		return false
	}
	i := 0
	for i < len(line) && byteIsSpace(line[i]) {
		i++
	}
	from := i
	for i < len(line) && !byteIsSpaceOrColon(line[i]) {
		i++
	}
	if i == from { // blank line or a line without a key ends the headers
		c.state = stateBody
		return true
	}
	value, _ := nextWord(line, i, byteIsSpaceOrColon)
	c.headers[string(line[from:i])] = string(value)
	return true
}

func (c *Connection) parseBody() bool {
	if contentLength, ok := c.header("Content-Length"); ok {
		size, ok := decToI64(ConstBytes(contentLength))
		if !ok {
			return c.fail(StatusBadRequest, "bad content-length")
		}
		if int64(len(c.input)) < size {
			return false // wait for the rest
		}
		c.body = c.input[:size:size]
		c.input = c.input[size:]
	} else { // whatever is received so far
		c.body = c.input
		c.input = nil
	}
	c.state = stateFinished
	return true
}

// header finds a header by name, ignoring case.
func (c *Connection) header(name string) (value string, ok bool) {
	if value, ok = c.headers[name]; ok {
		return
	}
	for key, value := range c.headers {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return "", false
}

// nextWord skips separators from p[i:] and returns the next run of non-separators and the index after it.
// word is nil if there is no such run.
func nextWord(p []byte, i int, isSeparator func(b byte) bool) (word []byte, next int) {
	for i < len(p) && isSeparator(p[i]) {
		i++
	}
	from := i
	for i < len(p) && !isSeparator(p[i]) {
		i++
	}
	if i == from {
		return nil, i
	}
	return p[from:i], i
}

func byteIsSpaceOrColon(b byte) bool { return b == ' ' || b == '\t' || b == ':' }
