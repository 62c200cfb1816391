// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Unit tests for the whole Hemi Engine.

package hemi

import (
	"bytes"
	"net"
	"os"
	"testing"
)

func TestDecToI64(t *testing.T) {
	tests := []struct {
		dec string
		i64 int64
		ok  bool
	}{
		{"0", 0, true},
		{"120", 120, true},
		{"9223372036854775807", 9223372036854775807, true},
		{"9223372036854775808", 0, false},
		{"", 0, false},
		{"12a", 0, false},
		{"-1", 0, false},
	}
	for _, test := range tests {
		i64, ok := decToI64([]byte(test.dec))
		if ok != test.ok || (ok && i64 != test.i64) {
			t.Errorf("decToI64(%q)=%d,%t want %d,%t", test.dec, i64, ok, test.i64, test.ok)
		}
	}
}

func TestBytesToUpper(t *testing.T) {
	p := []byte("gEt-1")
	bytesToUpper(p)
	if !bytes.Equal(p, []byte("GET-1")) {
		t.Errorf("bytesToUpper=%s", p)
	}
}

func TestPools(t *testing.T) {
	p := Get4K()
	if len(p) != _4K {
		t.Errorf("len(Get4K())=%d", len(p))
	}
	PutNK(p[:10])
	q := Get16K()
	if len(q) != _16K {
		t.Errorf("len(Get16K())=%d", len(q))
	}
	PutNK(q)
}

func TestTypeTable(t *testing.T) {
	types := NewTypeTable(map[string]string{"md": "text/markdown", ".html": "text/x-html"})
	tests := []struct {
		path     string
		fragment string
	}{
		{"./index.html", "Content-type: text/x-html\r\n"},
		{"./a/b.png", "Content-type: image/png\r\n"},
		{"./README.md", "Content-type: text/markdown\r\n"},
		{"./a.tar.gz", ""},
		{"./IMAGE.PNG", ""},
		{"./dir.d/file", ""},
		{"./noext", ""},
	}
	for _, test := range tests {
		if fragment := types.Lookup(test.path); fragment != test.fragment {
			t.Errorf("Lookup(%q)=%q want %q", test.path, fragment, test.fragment)
		}
	}
}

func TestResolve(t *testing.T) {
	site := &Site{webRoot: "."}
	tests := []struct {
		path string
		file string
		ok   bool
	}{
		{"/", "./", true},
		{"/index.html", "./index.html", true},
		{"/a/../b", "./a/../b", true},
		{"/./a//b/", "././a//b/", true},
		{"/..", "", false},
		{"/a/../../etc/passwd", "", false},
		{"index.html", "", false},
		{"", "", false},
	}
	for _, test := range tests {
		file, ok := site.resolve(test.path)
		if ok != test.ok || file != test.file {
			t.Errorf("resolve(%q)=%q,%t want %q,%t", test.path, file, ok, test.file, test.ok)
		}
	}
}

func TestAbnormalPages(t *testing.T) {
	page := string(abnormalPages[StatusNotFound])
	want := "HTTP/1.1 404 Not Found\r\nContent-type: text/html\r\n\r\n<html><body><h1 align = center>404 Not Found</h1></body></html>"
	if page != want {
		t.Errorf("page=%q", page)
	}
	for _, status := range []int16{StatusBadRequest, StatusNotFound, StatusNotImplemented, StatusBadGateway} {
		if _, ok := abnormalPages[status]; !ok {
			t.Errorf("status=%d is not prebuilt", status)
		}
	}
}

// testChannel is a Channel that records output.
type testChannel struct {
	input   []byte
	output  bytes.Buffer
	files   int
	pending int64
	closed  bool
}

func (c *testChannel) ReadAvailable() []byte {
	input := c.input
	c.input = nil
	return input
}
func (c *testChannel) Write(p []byte) {
	c.output.Write(p)
	c.pending += int64(len(p))
}
func (c *testChannel) WriteFile(file *os.File, size int64) {
	c.output.ReadFrom(file)
	file.Close()
	c.files++
	c.pending += size
}
func (c *testChannel) Pending() int64 { return c.pending }
func (c *testChannel) Close() error {
	c.closed = true
	return nil
}

// drain pretends all output is written.
func (c *testChannel) drain() { c.pending = 0 }

// testDriver is a Driver that creates testChannels.
type testDriver struct {
	channels map[ChannelRole]*testChannel
}

func newTestDriver() *testDriver {
	return &testDriver{channels: make(map[ChannelRole]*testChannel)}
}

func (d *testDriver) Attach(owner Handler, role ChannelRole, netConn net.Conn) Channel {
	channel := new(testChannel)
	d.channels[role] = channel
	if role == RoleGateway { // the test drives the gateway by itself
		netConn.Close()
	}
	return channel
}

// testConn is a net.Conn with fixed addresses.
type testConn struct {
	net.Conn
}

func (testConn) RemoteAddr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321} }

func newTestConnection(t *testing.T, webRoot string, gateway bool) (*Connection, *testDriver) {
	t.Helper()
	site := &Site{
		webRoot: webRoot,
		gateway: gateway,
		exts:    []string{".cgi"},
		types:   NewTypeTable(nil),
		logger:  CreateLogger("noop", nil),
	}
	driver := newTestDriver()
	c := newConnection(site, driver, 1, testConn{})
	return c, driver
}

// feed delivers input to the client side of c.
func feed(c *Connection, driver *testDriver, input string) {
	driver.channels[RoleClient].input = append(driver.channels[RoleClient].input, input...)
	c.OnReadable(RoleClient)
}
