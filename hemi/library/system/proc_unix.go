// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Process for unix systems.

//go:build linux || darwin || freebsd

package system

import (
	"net"
	"os"
	"path/filepath"
	"syscall"
)

// Spawn starts the program at path with its stdin and stdout bound to one end of a stream
// socket pair, and returns the other end. argv[0] of the program is the base name of path.
// On failure, everything created so far is released.
func Spawn(path string, env []string) (conn net.Conn, process *os.Process, err error) {
	syscall.ForkLock.RLock()
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err == nil {
		syscall.CloseOnExec(fds[0])
		syscall.CloseOnExec(fds[1])
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return nil, nil, os.NewSyscallError("socketpair", err)
	}

	ours := os.NewFile(uintptr(fds[0]), "gateway")
	theirs := os.NewFile(uintptr(fds[1]), "gateway-child")
	defer theirs.Close() // the child has its own copies once started

	process, err = os.StartProcess(path, []string{filepath.Base(path)}, &os.ProcAttr{
		Env:   env,
		Files: []*os.File{theirs, theirs, os.Stderr},
	})
	if err != nil {
		ours.Close()
		return nil, nil, err
	}

	if err = syscall.SetNonblock(fds[0], true); err == nil {
		conn, err = net.FileConn(ours) // dups the descriptor
	}
	ours.Close()
	if err != nil {
		process.Kill()
		process.Wait()
		return nil, nil, err
	}
	return conn, process, nil
}
