// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

//go:build linux || darwin || freebsd

package system

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSpawnEcho(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	script := filepath.Join(t.TempDir(), "echo.sh")
	text := "#!/bin/sh\necho \"$0 $FOO\"\nread line\necho \"got $line\"\n"
	if err := os.WriteFile(script, []byte(text), 0755); err != nil {
		t.Fatalf("write script error=%s\n", err.Error())
	}

	conn, process, err := Spawn(script, []string{"FOO=bar"})
	if err != nil {
		t.Fatalf("spawn error=%s\n", err.Error())
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write error=%s\n", err.Error())
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read error=%s\n", err.Error())
	}
	if _, err := process.Wait(); err != nil {
		t.Fatalf("wait error=%s\n", err.Error())
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %q", data)
	}
	if !strings.HasSuffix(lines[0], "echo.sh bar") {
		t.Errorf("bad script name or env, got %q", lines[0])
	}
	if lines[1] != "got hello" {
		t.Errorf("bad relay, got %q", lines[1])
	}
}

func TestSpawnMissing(t *testing.T) {
	conn, process, err := Spawn(filepath.Join(t.TempDir(), "nothing"), nil)
	if err == nil {
		conn.Close()
		process.Kill()
		t.Fatalf("spawn of a missing program succeeded")
	}
	if conn != nil || process != nil {
		t.Errorf("resources are leaked on failure")
	}
}

func TestCheck(t *testing.T) {
	Check() // must not panic
	if ExePath == "" || ExeDir == "" {
		t.Errorf("exe path is not set")
	}
}
