// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Loop tests.

package hemi

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"testing"
	"time"
)

// echoHandler writes back every line it receives and retires after "bye".
type echoHandler struct {
	channel Channel
	input   []byte
	bye     bool
	closed  bool
	retired chan struct{}
}

func (h *echoHandler) OnReadable(role ChannelRole) {
	h.input = append(h.input, h.channel.ReadAvailable()...)
	for {
		i := bytes.IndexByte(h.input, '\n')
		if i == -1 {
			return
		}
		line := h.input[:i+1]
		h.input = h.input[i+1:]
		h.channel.Write(line)
		if string(line) == "bye\n" {
			h.bye = true
		}
	}
}
func (h *echoHandler) OnDrained(role ChannelRole)           {}
func (h *echoHandler) OnClosed(role ChannelRole, err error) { h.closed = true }
func (h *echoHandler) Retired() bool {
	return h.closed || (h.bye && h.channel.Pending() == 0)
}
func (h *echoHandler) OnRetired() { close(h.retired) }

func TestLoopEcho(t *testing.T) {
	handlers := make(chan *echoHandler, 1)
	loop := NewLoop(0, func(driver Driver, netConn net.Conn) Handler {
		h := &echoHandler{retired: make(chan struct{})}
		h.channel = driver.Attach(h, RoleClient, netConn)
		handlers <- h
		return h
	})
	loop.Start()
	defer loop.Shutdown()

	ours, theirs := net.Pipe()
	loop.Admit(theirs)
	ours.SetDeadline(time.Now().Add(10 * time.Second))
	reader := bufio.NewReader(ours)
	for _, line := range []string{"hello\n", "world\n"} {
		if _, err := ours.Write([]byte(line)); err != nil {
			t.Fatalf("write error=%s\n", err.Error())
		}
		echo, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read error=%s\n", err.Error())
		}
		if echo != line {
			t.Errorf("echo=%q want %q", echo, line)
		}
	}
	if _, err := ours.Write([]byte("bye\n")); err != nil {
		t.Fatalf("write error=%s\n", err.Error())
	}
	rest, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read error=%s\n", err.Error())
	}
	if string(rest) != "bye\n" {
		t.Errorf("rest=%q", rest)
	}
	h := <-handlers
	select {
	case <-h.retired:
	case <-time.After(10 * time.Second):
		t.Fatalf("handler is not retired")
	}
}

func TestLoopShutdown(t *testing.T) {
	loop := NewLoop(1, func(driver Driver, netConn net.Conn) Handler {
		h := &echoHandler{retired: make(chan struct{})}
		h.channel = driver.Attach(h, RoleClient, netConn)
		return h
	})
	loop.Start()
	ours, theirs := net.Pipe()
	loop.Admit(theirs)
	ours.Write([]byte("x\n"))
	ours.SetReadDeadline(time.Now().Add(10 * time.Second))
	buffer := make([]byte, 2)
	io.ReadFull(ours, buffer)

	loop.Shutdown()
	if _, err := ours.Read(buffer); err != io.EOF {
		t.Errorf("want EOF after shutdown, got %v", err)
	}
	another, theirs := net.Pipe()
	loop.Admit(theirs) // closed at once
	another.SetReadDeadline(time.Now().Add(10 * time.Second))
	if _, err := another.Read(buffer); err != io.EOF {
		t.Errorf("want EOF after admitting to a shut loop, got %v", err)
	}
}
