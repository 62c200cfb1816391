// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Config tests.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseText(t *testing.T) {
	text := `
# shell comment
server "main" { // line comment
	.address = "127.0.0.1:" + "3080"
	.webRoot = @baseDir + "/web"
	.numLoops = 2
	.gateway = false
	.logBufSize = 16K
	/* stream
	   comment */
	.timeout = 3m
	.indexes = ("index.html", "index.htm")
	.mimeTypes = [
		".wasm": "application/wasm",
		".md"  : "text/markdown",
	]
	.copy = .address
}
server {
}
`
	sections, err := ParseText(text, map[string]string{"baseDir": "/opt/tinyrox"})
	if err != nil {
		t.Fatalf("parse error=%s\n", err.Error())
	}
	if len(sections) != 2 {
		t.Fatalf("want 2 sections, got %d", len(sections))
	}
	main := sections[0]
	if main.Sign != "server" || main.Name != "main" {
		t.Errorf("bad section %s %s", main.Sign, main.Name)
	}
	if sections[1].Name != "1" {
		t.Errorf("unnamed section got name %q", sections[1].Name)
	}

	address := main.Props["address"]
	if s, ok := address.String(); !ok || s != "127.0.0.1:3080" {
		t.Errorf("address=%v", address.Data)
	}
	webRoot := main.Props["webRoot"]
	if s, _ := webRoot.String(); s != "/opt/tinyrox/web" {
		t.Errorf("webRoot=%v", webRoot.Data)
	}
	numLoops := main.Props["numLoops"]
	if n, ok := numLoops.Int32(); !ok || n != 2 {
		t.Errorf("numLoops=%v", numLoops.Data)
	}
	gateway := main.Props["gateway"]
	if b, ok := gateway.Bool(); !ok || b {
		t.Errorf("gateway=%v", gateway.Data)
	}
	bufSize := main.Props["logBufSize"]
	if n, _ := bufSize.Int64(); n != 16*1024 {
		t.Errorf("logBufSize=%v", bufSize.Data)
	}
	timeout := main.Props["timeout"]
	if d, ok := timeout.Duration(); !ok || d != 3*time.Minute {
		t.Errorf("timeout=%v", timeout.Data)
	}
	indexes := main.Props["indexes"]
	if list, ok := indexes.StringList(); !ok || len(list) != 2 || list[1] != "index.htm" {
		t.Errorf("indexes=%v", indexes.Data)
	}
	mimeTypes := main.Props["mimeTypes"]
	if dict, ok := mimeTypes.StringDict(); !ok || len(dict) != 2 || dict[".md"] != "text/markdown" {
		t.Errorf("mimeTypes=%v", mimeTypes.Data)
	}
	copied := main.Props["copy"]
	if s, _ := copied.String(); s != "127.0.0.1:3080" {
		t.Errorf("copy=%v", copied.Data)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		`server "main" { .address = }`,
		`server "main" { .address "x" }`,
		`server "main" { .address = "x"`,
		`server "main" { .root = @nothing }`,
		`server "main" { .a = .a }`,
		`server "main" { .a = "x" + 1 }`,
		`server "main" { . = 1 }`,
		`server "main" { .a = "unterminated }`,
		`server "main" { <other.conf> }`,
		`"main" { }`,
		`server "main" { .a = 1 ! }`,
	}
	for _, text := range tests {
		if _, err := ParseText(text, nil); err == nil {
			t.Errorf("want error for %q", text)
		}
	}
}

func TestParseFile(t *testing.T) {
	base := t.TempDir() + "/"
	if err := os.MkdirAll(filepath.Join(base, "conf"), 0755); err != nil {
		t.Fatalf("mkdir error=%s\n", err.Error())
	}
	if err := os.WriteFile(filepath.Join(base, "conf", "mime.conf"), []byte(`.mimeTypes = [".md": "text/markdown"]`), 0644); err != nil {
		t.Fatalf("write error=%s\n", err.Error())
	}
	main := "server \"main\" {\n\t.webRoot = \"web\"\n\t<conf/mime.conf>\n}\n"
	if err := os.WriteFile(filepath.Join(base, "conf", "tinyrox.conf"), []byte(main), 0644); err != nil {
		t.Fatalf("write error=%s\n", err.Error())
	}

	sections, err := ParseFile(base, "conf/tinyrox.conf", nil)
	if err != nil {
		t.Fatalf("parse error=%s\n", err.Error())
	}
	if len(sections) != 1 {
		t.Fatalf("want 1 section, got %d", len(sections))
	}
	if _, ok := sections[0].Find("mimeTypes"); !ok {
		t.Errorf("included props are lost")
	}
	if _, err := ParseFile(base, "conf/nothing.conf", nil); err == nil {
		t.Errorf("want error for a missing file")
	}
}
