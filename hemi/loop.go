// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Loop is a Driver. One goroutine owns all handlers and channel states of a loop, while
// per-channel goroutines perform the blocking socket I/O and post events to it.

package hemi

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
)

const ( // event kinds
	eventAdmit   = iota // a new connection is accepted
	eventData           // input is received
	eventWritten        // an output item is written
	eventFailed         // the stream ended or failed
)

// loopEvent
type loopEvent struct {
	kind    int8
	channel *loopChannel
	data    []byte   // for eventData. a pooled buffer
	size    int64    // for eventWritten
	err     error    // for eventFailed
	netConn net.Conn // for eventAdmit
}

// Loop
type Loop struct {
	// Assocs
	admit func(driver Driver, netConn net.Conn) Handler // creates the handler of an accepted connection
	// States
	id     int32
	events chan loopEvent
	done   chan struct{}
	owners map[Handler][]*loopChannel // only accessed in the loop goroutine
	waiter sync.WaitGroup
	once   sync.Once
}

func NewLoop(id int32, admit func(driver Driver, netConn net.Conn) Handler) *Loop {
	l := new(Loop)
	l.admit = admit
	l.id = id
	l.events = make(chan loopEvent, 1024)
	l.done = make(chan struct{})
	l.owners = make(map[Handler][]*loopChannel)
	return l
}

func (l *Loop) Start() {
	l.waiter.Add(1)
	go l.serve()
}

// Admit hands an accepted connection over to the loop. Safe for concurrent use.
func (l *Loop) Admit(netConn net.Conn) {
	if !l.post(loopEvent{kind: eventAdmit, netConn: netConn}) {
		netConn.Close()
	}
}

// Shutdown stops the loop and closes every channel it owns.
func (l *Loop) Shutdown() {
	l.once.Do(func() {
		close(l.done)
	})
	l.waiter.Wait()
}

func (l *Loop) post(event loopEvent) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- event:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) serve() { // runner
	defer l.waiter.Done()
	for {
		select {
		case event := <-l.events:
			l.handle(&event)
		case <-l.done:
			for owner := range l.owners {
				l.retire(owner)
			}
			l.discard()
			if DebugLevel() >= 1 {
				Printf("loop=%d done\n", l.id)
			}
			return
		}
	}
}

// discard drops events that are not handled yet.
func (l *Loop) discard() {
	for {
		select {
		case event := <-l.events:
			if event.kind == eventAdmit {
				event.netConn.Close()
			} else if event.data != nil {
				PutNK(event.data)
			}
		default:
			return
		}
	}
}

func (l *Loop) handle(event *loopEvent) {
	if event.kind == eventAdmit {
		if owner := l.admit(l, event.netConn); owner != nil {
			l.checkRetired(owner)
		}
		return
	}
	channel := event.channel
	if channel.closed || channel.failed { // stale event
		if event.data != nil {
			PutNK(event.data)
		}
		return
	}
	owner := channel.owner
	switch event.kind {
	case eventData:
		channel.input = append(channel.input, event.data...)
		PutNK(event.data)
		owner.OnReadable(channel.role)
	case eventWritten:
		channel.pending -= event.size
		if channel.pending == 0 {
			owner.OnDrained(channel.role)
		}
	case eventFailed:
		if event.err != io.EOF { // on EOF only the reading side ended. queued output is still written
			channel.failed = true
		}
		owner.OnClosed(channel.role, event.err)
	default:
		BugExitln("unknown event kind")
	}
	l.checkRetired(owner)
}

func (l *Loop) checkRetired(owner Handler) {
	if _, ok := l.owners[owner]; ok && owner.Retired() {
		l.retire(owner)
	}
}
func (l *Loop) retire(owner Handler) {
	for _, channel := range l.owners[owner] {
		channel.Close()
	}
	delete(l.owners, owner)
	owner.OnRetired()
}

func (l *Loop) Attach(owner Handler, role ChannelRole, netConn net.Conn) Channel {
	channel := new(loopChannel)
	channel.onUse(l, owner, role, netConn)
	l.owners[owner] = append(l.owners[owner], channel)
	go channel.reading()
	go channel.writing()
	return channel
}

// loopChannel is a Channel driven by a Loop.
type loopChannel struct {
	// Parent
	loop *Loop
	// Assocs
	owner   Handler
	netConn net.Conn
	// States
	role      ChannelRole
	input     []byte // received but not taken yet. only accessed in the loop goroutine
	pending   int64  // queued but not written yet. only accessed in the loop goroutine
	closed    bool   // only accessed in the loop goroutine
	failed    bool   // only accessed in the loop goroutine
	queueLock sync.Mutex
	queueCond *sync.Cond
	queue     []loopItem // protected by queueLock
	shut      bool       // no more writes. protected by queueLock
}

// loopItem is an output item.
type loopItem struct {
	data []byte
	file *os.File
	size int64
}

func (c *loopChannel) onUse(loop *Loop, owner Handler, role ChannelRole, netConn net.Conn) {
	c.loop = loop
	c.owner = owner
	c.netConn = netConn
	c.role = role
	c.queueCond = sync.NewCond(&c.queueLock)
}

func (c *loopChannel) ReadAvailable() []byte {
	input := c.input
	c.input = nil
	return input
}
func (c *loopChannel) Write(p []byte) {
	if len(p) == 0 {
		return
	}
	data := make([]byte, len(p))
	copy(data, p)
	c.push(loopItem{data: data, size: int64(len(data))})
}
func (c *loopChannel) WriteFile(file *os.File, size int64) {
	c.push(loopItem{file: file, size: size})
}
func (c *loopChannel) push(item loopItem) {
	if c.closed {
		item.release()
		return
	}
	c.queueLock.Lock()
	if c.shut {
		c.queueLock.Unlock()
		item.release()
		return
	}
	c.queue = append(c.queue, item)
	c.queueLock.Unlock()
	c.queueCond.Signal()
	c.pending += item.size
}
func (c *loopChannel) Pending() int64 { return c.pending }

func (c *loopChannel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.input = nil
	c.stopWriting()
	return c.netConn.Close()
}

func (c *loopChannel) stopWriting() {
	c.queueLock.Lock()
	c.shut = true
	queue := c.queue
	c.queue = nil
	c.queueLock.Unlock()
	c.queueCond.Broadcast()
	for _, item := range queue {
		item.release()
	}
}

func (c *loopChannel) reading() { // runner
	for {
		var buffer []byte
		if c.role == RoleClient {
			buffer = Get16K()
		} else {
			buffer = Get4K()
		}
		n, err := c.netConn.Read(buffer)
		if n > 0 {
			if !c.loop.post(loopEvent{kind: eventData, channel: c, data: buffer[:n]}) {
				PutNK(buffer)
				return
			}
		} else {
			PutNK(buffer)
		}
		if err != nil {
			if errors.Is(err, net.ErrClosed) { // closed by us
				return
			}
			c.loop.post(loopEvent{kind: eventFailed, channel: c, err: err})
			return
		}
	}
}

func (c *loopChannel) writing() { // runner
	for {
		c.queueLock.Lock()
		for len(c.queue) == 0 && !c.shut {
			c.queueCond.Wait()
		}
		if c.shut {
			c.queueLock.Unlock()
			return
		}
		item := c.queue[0]
		c.queue[0] = loopItem{}
		c.queue = c.queue[1:]
		c.queueLock.Unlock()

		var err error
		if item.file != nil {
			_, err = io.CopyN(c.netConn, item.file, item.size) // sendfile if netConn is a *net.TCPConn
			item.file.Close()
			if err == io.EOF { // file is truncated
				err = nil
			}
		} else {
			_, err = c.netConn.Write(item.data)
		}
		if err != nil {
			c.stopWriting()
			// A gateway program may stop reading before it stops writing, so only its reading side ends it.
			if c.role == RoleClient && !errors.Is(err, net.ErrClosed) {
				c.loop.post(loopEvent{kind: eventFailed, channel: c, err: err})
			}
			return
		}
		if !c.loop.post(loopEvent{kind: eventWritten, channel: c, size: item.size}) {
			return
		}
	}
}

func (i *loopItem) release() {
	if i.file != nil {
		i.file.Close()
	}
}
