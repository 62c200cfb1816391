// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Connection holds one client exchange: it parses the request, executes it, and tells its
// driver when it can be retired.

package hemi

import (
	"io"
	"net"
	"net/url"
	"os"
	"strings"
)

const ( // connection states
	stateRequestLine = iota // waiting for the request line
	stateHeaders            // parsing header lines
	stateBody               // taking the body
	stateFinished           // request is parsed, waiting to be executed
	stateExecuted           // request is executed, relaying if a gateway is running
	stateError              // request is malformed
)

// Connection
type Connection struct {
	// Parent
	site *Site
	// Assocs
	driver  Driver
	client  Channel // the accepted connection
	gateway Channel // the running gateway program, if any
	// States
	id          int64
	remoteAddr  string
	state       int8
	method      string            // GET, POST, ...
	path        string            // /foo/bar?x=y
	version     string            // HTTP/1.0, HTTP/1.1, ...
	query       string            // x=y
	headers     map[string]string // last write wins
	body        []byte
	input       []byte // unparsed input
	headResult  int16  // status code of a malformed request. -1 means nothing is sent
	failReason  string // the reason of headResult or an abnormal status
	status      int16  // status sent to client, 0 if none
	fullyQueued bool   // the whole response has been queued on client
	broken      bool   // client channel failed or ended
}

func newConnection(site *Site, driver Driver, id int64, netConn net.Conn) *Connection {
	c := new(Connection)
	c.site = site
	c.driver = driver
	c.id = id
	c.remoteAddr = netConn.RemoteAddr().String()
	c.headers = make(map[string]string)
	c.client = driver.Attach(c, RoleClient, netConn)
	return c
}

func (c *Connection) OnReadable(role ChannelRole) {
	if role == RoleGateway {
		c.client.Write(c.gateway.ReadAvailable())
		return
	}
	data := c.client.ReadAvailable()
	switch c.state {
	case stateExecuted:
		if c.gateway != nil {
			c.gateway.Write(data)
		}
		return
	case stateError:
		return
	}
	c.input = append(c.input, data...)
	for c.step() {
	}
}

func (c *Connection) OnDrained(role ChannelRole) {
	if DebugLevel() >= 3 {
		Printf("conn=%d %s drained\n", c.id, role)
	}
}

func (c *Connection) OnClosed(role ChannelRole, err error) {
	if role == RoleGateway {
		if err != io.EOF && DebugLevel() >= 1 {
			Printf("conn=%d gateway error=%s\n", c.id, err.Error())
		}
		c.gateway.Close()
		c.gateway = nil
		c.fullyQueued = true
		return
	}
	if err == io.EOF { // half-closed. a queued or relayed response is still delivered
		if !c.fullyQueued && c.gateway == nil {
			c.broken = true
		}
		return
	}
	if DebugLevel() >= 1 {
		Printf("conn=%d client error=%s\n", c.id, err.Error())
	}
	c.broken = true
}

func (c *Connection) Retired() bool {
	return c.broken || (c.fullyQueued && c.gateway == nil && c.client.Pending() == 0)
}

func (c *Connection) OnRetired() {
	if c.status == 0 && c.failReason == "" {
		return // nothing happened
	}
	c.site.logger.Logf("conn=%d client=%s %s %s status=%d reason=%q broken=%t\n", c.id, c.remoteAddr, c.method, c.path, c.status, c.failReason, c.broken)
}

// execute decides how to satisfy the parsed request.
func (c *Connection) execute() {
	if c.method != "GET" && c.method != "POST" {
		c.failReason = "method is not implemented"
		c.serveAbnormal(StatusNotImplemented)
		return
	}
	path, query, _ := strings.Cut(c.path, "?")
	c.query = query
	upath, err := url.PathUnescape(path)
	if err != nil {
		c.failReason = "bad path encoding"
		c.serveAbnormal(StatusBadRequest)
		return
	}
	file, ok := c.site.resolve(upath)
	if !ok {
		c.failReason = "path escapes the web root"
		c.serveAbnormal(StatusBadRequest)
		return
	}
	info, err := os.Stat(file)
	if err != nil {
		c.failReason = err.Error()
		c.serveAbnormal(StatusNotFound)
		return
	}
	mode := info.Mode()
	switch {
	case mode.IsRegular() && mode.Perm()&0111 != 0 && c.site.isGateway(file):
		c.startGateway(file)
	case mode.IsRegular():
		c.sendFile(file)
	case mode.IsDir():
		c.sendDir(file, upath)
	default:
		c.failReason = "not a file or directory"
		c.serveAbnormal(StatusNotFound)
	}
}
