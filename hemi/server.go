// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Server accepts connections and hands them over to its loops.

package hemi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/hexinfra/tinyrox/hemi/library/system"
)

// Site is what connections of a server share. Read-only after the server is prepared, except gateways.
type Site struct {
	webRoot  string       // prefix of resolved paths, without the trailing '/'
	gateway  bool         // run executable files?
	exts     []string     // extensions of gateway programs, like ".cgi"
	types    *TypeTable   // content-type table
	logger   Logger       // access and gateway logs
	gateways gatewayTable // live gateway processes
}

// resolve maps a decoded request path to a file path under the web root.
// Paths that climb above the root with ".." are rejected.
func (s *Site) resolve(path string) (file string, ok bool) {
	if path == "" || path[0] != '/' {
		return "", false
	}
	depth := 0
	for _, segment := range strings.Split(path[1:], "/") {
		switch segment {
		case "", ".":
		case "..":
			if depth--; depth < 0 {
				return "", false
			}
		default:
			depth++
		}
	}
	return s.webRoot + path, true
}

// isGateway reports whether an executable file should run as a gateway program.
func (s *Site) isGateway(file string) bool {
	if !s.gateway {
		return false
	}
	for _, ext := range s.exts {
		if strings.HasSuffix(file, ext) {
			return true
		}
	}
	return false
}

// Server
type Server struct {
	// Parent
	Component_
	// Assocs
	loops    []*Loop
	logger   Logger
	listener net.Listener
	// States
	address     string            // 127.0.0.1:8080, ...
	reusePort   bool              // set SO_REUSEPORT on the listener?
	webRoot     string            // directory of served files
	numLoops    int32             // number of loops
	gateway     bool              // run executable files as gateway programs?
	gatewayExts []string          // only executable files with these extensions are gateway programs
	mimeTypes   map[string]string // extra content types
	loggerSign  string            // noop, simple, ...
	logFile     string            // target of the logger
	logBufSize  int32             // buffer size of the logger
	site        *Site
	lastID      atomic.Int64  // id of the last connection
	nextLoop    atomic.Uint32 // for round robin
	listenOnce  sync.Once
	listenErr   error
	shutOnce    sync.Once
}

func NewServer(name string) *Server {
	s := new(Server)
	s.MakeComp(name)
	return s
}

func (s *Server) OnConfigure() {
	// .address
	s.ConfigureString("address", &s.address, func(value string) error {
		if _, _, err := net.SplitHostPort(value); err != nil {
			return err
		}
		return nil
	}, "127.0.0.1:8080")

	// .reusePort
	s.ConfigureBool("reusePort", &s.reusePort, false)

	// .webRoot
	s.ConfigureString("webRoot", &s.webRoot, func(value string) error {
		if value == "" {
			return errors.New("cannot be empty")
		}
		return nil
	}, ".")

	// .numLoops
	s.ConfigureInt32("numLoops", &s.numLoops, func(value int32) error {
		if value <= 0 || value > 1024 {
			return errors.New("must be in range [1, 1024]")
		}
		return nil
	}, 1)

	// .gateway
	s.ConfigureBool("gateway", &s.gateway, true)

	// .gatewayExts
	s.ConfigureStringList("gatewayExts", &s.gatewayExts, func(value []string) error {
		for _, ext := range value {
			if len(ext) < 2 || ext[0] != '.' {
				return fmt.Errorf("bad extension %q", ext)
			}
		}
		return nil
	}, []string{".cgi"})

	// .mimeTypes
	s.ConfigureStringDict("mimeTypes", &s.mimeTypes, nil, nil)

	// .logger
	s.ConfigureString("logger", &s.loggerSign, func(value string) error {
		if !loggerRegistered(value) {
			return fmt.Errorf("unknown logger %q", value)
		}
		return nil
	}, "noop")

	// .logFile
	logsDir := LogsDir()
	if logsDir == "" {
		logsDir = os.TempDir()
	}
	s.ConfigureString("logFile", &s.logFile, func(value string) error {
		if value == "" {
			return errors.New("cannot be empty")
		}
		return nil
	}, logsDir+"/tinyrox.log")

	// .logBufSize
	s.ConfigureInt32("logBufSize", &s.logBufSize, func(value int32) error {
		if value < _1K {
			return errors.New("must be at least 1K")
		}
		return nil
	}, _4K)
}
func (s *Server) OnPrepare() {
	info, err := os.Stat(s.webRoot)
	if err != nil {
		panic(fmt.Errorf("bad .webRoot in %s: %s", s.name, err.Error()))
	}
	if !info.IsDir() {
		panic(fmt.Errorf("bad .webRoot in %s: %s is not a directory", s.name, s.webRoot))
	}

	s.logger = CreateLogger(s.loggerSign, &LogConfig{Target: s.logFile, BufSize: s.logBufSize})
	if s.logger == nil {
		panic(fmt.Errorf("cannot create logger %s with .logFile %s in %s", s.loggerSign, s.logFile, s.name))
	}
	s.site = &Site{
		webRoot: strings.TrimRight(s.webRoot, "/"),
		gateway: s.gateway,
		exts:    s.gatewayExts,
		types:   NewTypeTable(s.mimeTypes),
		logger:  s.logger,
	}
	s.loops = make([]*Loop, s.numLoops)
	for i := range s.loops {
		s.loops[i] = NewLoop(int32(i), s.admit)
	}
}

func (s *Server) admit(driver Driver, netConn net.Conn) Handler {
	return newConnection(s.site, driver, s.lastID.Add(1), netConn)
}

// Listen binds the server address. Serve calls it if it was not called.
func (s *Server) Listen() error {
	s.listenOnce.Do(func() {
		listenConfig := new(net.ListenConfig)
		listenConfig.Control = func(network string, address string, rawConn syscall.RawConn) error {
			// Don't return EINVAL if TCP_DEFER_ACCEPT is not supported.
			system.SetDeferAccept(rawConn)
			if s.reusePort {
				return system.SetReusePort(rawConn)
			}
			return nil
		}
		s.listener, s.listenErr = listenConfig.Listen(context.Background(), "tcp", s.address)
	})
	return s.listenErr
}

// Addr returns the bound address, or nil if the server is not listening.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until Shutdown is called.
func (s *Server) Serve() error {
	if err := s.Listen(); err != nil {
		return err
	}
	for _, loop := range s.loops {
		loop.Start()
	}
	s.logger.Logf("server=%s listening on %s with %d loops and %d content types\n", s.name, s.listener.Addr().String(), len(s.loops), s.site.types.Size())
	if DebugLevel() >= 1 {
		Printf("server=%s listening on %s\n", s.name, s.listener.Addr().String())
	}
	for {
		netConn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) {
				s.logger.Logf("server=%s accept error=%s\n", s.name, err.Error())
				continue
			}
			return err
		}
		i := s.nextLoop.Add(1) - 1
		s.loops[i%uint32(len(s.loops))].Admit(netConn)
	}
}

// Shutdown stops accepting, closes all connections, and closes the logger.
func (s *Server) Shutdown() {
	s.shutOnce.Do(func() {
		if s.listener != nil {
			s.listener.Close()
		}
		for _, loop := range s.loops {
			loop.Shutdown()
		}
		s.site.stopGateways() // reapers log, so the logger waits for them
		s.logger.Logf("server=%s shut\n", s.name)
		s.logger.Close()
	})
}
