// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Channels, handlers, and drivers.

package hemi

import (
	"net"
	"os"
)

// ChannelRole tells a handler which of its channels an event is about.
type ChannelRole int8

const (
	RoleClient  ChannelRole = iota // the accepted connection
	RoleGateway                    // the socket to a gateway program
)

func (r ChannelRole) String() string {
	if r == RoleGateway {
		return "gateway"
	}
	return "client"
}

// Channel is a buffered bidirectional byte stream owned by a driver.
// All methods must be called from the goroutine of the driver that owns the channel.
type Channel interface {
	// ReadAvailable takes all input received so far. The returned slice is owned by the caller.
	ReadAvailable() []byte
	// Write queues a copy of p for output.
	Write(p []byte)
	// WriteFile queues size bytes of file for output. The channel closes file when done with it.
	WriteFile(file *os.File, size int64)
	// Pending returns the number of queued bytes not yet written.
	Pending() int64
	// Close closes the channel. Queued output is discarded. Closing twice is harmless.
	Close() error
}

// Handler receives channel events from a driver. Events for one handler are never concurrent.
type Handler interface {
	OnReadable(role ChannelRole)          // new input is available
	OnDrained(role ChannelRole)           // all queued output has been written
	OnClosed(role ChannelRole, err error) // the stream ended or failed
	Retired() bool                        // checked after every event. true means the driver closes all channels of the handler and forgets it
	OnRetired()                           // called once after retirement
}

// Driver owns channels and delivers their events to handlers.
type Driver interface {
	// Attach creates a channel of netConn for owner. Must be called from the driver's goroutine.
	Attach(owner Handler, role ChannelRole, netConn net.Conn) Channel
}
