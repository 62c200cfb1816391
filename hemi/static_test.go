// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Static tests.

package hemi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestListEmptyDir(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatalf("mkdir error=%s\n", err.Error())
	}
	c, driver := newTestConnection(t, root, false)
	feed(c, driver, "GET /empty/ HTTP/1.1\r\n\r\n")
	output := driver.channels[RoleClient].output.String()

	header := "HTTP/1.1 200 OK\r\nContent-type: text/html\r\n\r\n"
	if !strings.HasPrefix(output, header) {
		t.Fatalf("output=%q", output)
	}
	if !strings.Contains(output, "<title>Current dir:/empty/</title>") {
		t.Errorf("no title in %q", output)
	}
	if rows := strings.Count(output, "<tr>"); rows != 1 { // the head row only
		t.Errorf("rows=%d in %q", rows, output)
	}
	if !strings.HasSuffix(output, "</table></body></html>\r\n") {
		t.Errorf("no footer in %q", output)
	}
}

func TestListDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.txt", "12345", 0644)
	writeFile(t, root, "A.html", "", 0644)
	writeFile(t, root, ".hidden", "h", 0644)
	writeFile(t, root, "sub/<x>", "x", 0644)
	if err := os.Symlink(filepath.Join(root, "nowhere"), filepath.Join(root, "dangling")); err != nil {
		t.Fatalf("symlink error=%s\n", err.Error())
	}

	var output testChannel
	staticListDir(&output, root+"/", "/", []string{"sub", "b.txt", "dangling", "A.html", ".hidden"})
	listing := output.output.String()

	rows := []string{
		`<tr><td><a href="/.hidden">.hidden</a></td><td>1</td><td>plain file</td></tr>`,
		`<tr><td><a href="/A.html">A.html</a></td><td>0</td><td>plain file</td></tr>`,
		`<tr><td><a href="/b.txt">b.txt</a></td><td>5</td><td>plain file</td></tr>`,
		`<tr><td><a href="/dangling">dangling</a></td><td>0</td><td>unknown</td></tr>`,
		`<tr><td><a href="/sub/">sub</a></td><td>`,
	}
	last := -1
	for _, row := range rows {
		i := strings.Index(listing, row)
		if i == -1 {
			t.Errorf("row %q is missing in %q", row, listing)
			continue
		}
		if i < last {
			t.Errorf("row %q is out of order", row)
		}
		last = i
	}
	if !strings.Contains(listing, `</td><td>dir</td></tr>`) {
		t.Errorf("no dir row in %q", listing)
	}
}

func TestListAssets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "assets/b.txt", strings.Repeat("b", 20), 0644)
	writeFile(t, root, "assets/a.png", strings.Repeat("a", 10), 0644)
	c, driver := newTestConnection(t, root, false)
	feed(c, driver, "GET /assets/ HTTP/1.1\r\n\r\n")
	output := driver.channels[RoleClient].output.String()

	if rows := strings.Count(output, "<tr>"); rows != 1+2 {
		t.Fatalf("rows=%d in %q", rows, output)
	}
	a := strings.Index(output, `<tr><td><a href="/assets/a.png">a.png</a></td><td>10</td><td>plain file</td></tr>`)
	b := strings.Index(output, `<tr><td><a href="/assets/b.txt">b.txt</a></td><td>20</td><td>plain file</td></tr>`)
	if a == -1 || b == -1 || a > b {
		t.Errorf("bad entry rows in %q", output)
	}
}

func TestListEscape(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, `a&b "c".txt`, "x", 0644)

	var output testChannel
	staticListDir(&output, root, "/docs <1>", []string{`a&b "c".txt`})
	listing := output.output.String()
	if !strings.Contains(listing, "<title>Current dir:/docs &lt;1&gt;</title>") {
		t.Errorf("title is not escaped in %q", listing)
	}
	if !strings.Contains(listing, `<a href="/docs%20%3C1%3E/a&amp;b%20%22c%22.txt">a&amp;b &#34;c&#34;.txt</a>`) {
		t.Errorf("entry is not escaped in %q", listing)
	}
}

func TestListManyEntries(t *testing.T) {
	root := t.TempDir()
	var names []string
	for i := 0; i < 200; i++ {
		name := strings.Repeat("n", 20) + string(rune('a'+i%26)) + strings.Repeat("z", i%7)
		names = append(names, name)
	}
	var output testChannel
	staticListDir(&output, root, "/", names)
	listing := output.output.String()
	if rows := strings.Count(listing, "<tr>"); rows != 1+200 {
		t.Errorf("rows=%d", rows)
	}
	if strings.Count(listing, "</html>") != 1 {
		t.Errorf("bad document")
	}
}
