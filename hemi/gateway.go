// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Gateway runs an executable file with the request and relays its output to the client.

package hemi

import (
	"os"
	"strconv"
	"sync"

	"github.com/hexinfra/tinyrox/hemi/library/system"
)

var gatewayStatusLine = []byte("HTTP/1.1 200 OK\r\n") // the program writes the rest of the response

func (c *Connection) startGateway(file string) {
	env := []string{
		"REQUEST_METHOD=" + c.method,
		"QUERY_STRING=" + c.query,
	}
	if path, ok := os.LookupEnv("PATH"); ok {
		env = append(env, "PATH="+path)
	}
	if len(c.body) > 0 {
		env = append(env, "CONTENT_LENGTH="+strconv.Itoa(len(c.body)))
	}
	netConn, process, err := system.Spawn(file, env)
	if err != nil {
		c.failReason = err.Error()
		c.serveAbnormal(StatusBadGateway)
		return
	}
	if DebugLevel() >= 2 {
		Printf("conn=%d gateway=%s pid=%d\n", c.id, file, process.Pid)
	}
	c.gateway = c.driver.Attach(c, RoleGateway, netConn)
	c.client.Write(gatewayStatusLine)
	c.gateway.Write(c.body)
	c.status = 200
	c.site.addGateway(process)
	go c.site.gatewayReap(c.id, process)
}

// gatewayTable tracks the live gateway processes of a site.
type gatewayTable struct {
	lock      sync.Mutex
	processes map[*os.Process]struct{}
	reapers   sync.WaitGroup
}

func (s *Site) addGateway(process *os.Process) {
	s.gateways.lock.Lock()
	if s.gateways.processes == nil {
		s.gateways.processes = make(map[*os.Process]struct{})
	}
	s.gateways.processes[process] = struct{}{}
	s.gateways.reapers.Add(1)
	s.gateways.lock.Unlock()
}
func (s *Site) delGateway(process *os.Process) {
	s.gateways.lock.Lock()
	delete(s.gateways.processes, process)
	s.gateways.lock.Unlock()
	s.gateways.reapers.Done()
}
func (s *Site) numGateways() int {
	s.gateways.lock.Lock()
	defer s.gateways.lock.Unlock()
	return len(s.gateways.processes)
}

// stopGateways kills the remaining gateway processes and waits for their reapers.
func (s *Site) stopGateways() {
	s.gateways.lock.Lock()
	for process := range s.gateways.processes {
		process.Kill()
	}
	s.gateways.lock.Unlock()
	s.gateways.reapers.Wait()
}

func (s *Site) gatewayReap(connID int64, process *os.Process) { // runner
	defer s.delGateway(process)
	state, err := process.Wait()
	if err != nil {
		s.logger.Logf("conn=%d gateway pid=%d wait error=%s\n", connID, process.Pid, err.Error())
		return
	}
	if !state.Success() {
		s.logger.Logf("conn=%d gateway pid=%d exited: %s\n", connID, process.Pid, state.String())
	}
}
