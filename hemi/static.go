// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Static files and directory listings.

package hemi

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
)

var staticStatusLine = []byte("HTTP/1.1 200 OK\r\n")

func (c *Connection) sendFile(path string) {
	file, err := os.Open(path)
	if err != nil {
		c.failReason = err.Error()
		c.serveAbnormal(StatusNotFound)
		return
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		c.failReason = err.Error()
		c.serveAbnormal(StatusNotFound)
		return
	}
	c.client.Write(staticStatusLine)
	c.client.Write(ConstBytes(c.site.types.Lookup(path) + "\r\n"))
	c.client.WriteFile(file, info.Size())
	c.status = 200
	c.fullyQueued = true
}

func (c *Connection) sendDir(path string, upath string) {
	dir, err := os.Open(path)
	if err != nil {
		c.failReason = err.Error()
		c.serveAbnormal(StatusNotFound)
		return
	}
	names, err := dir.Readdirnames(-1)
	dir.Close()
	if err != nil {
		c.failReason = err.Error()
		c.serveAbnormal(StatusNotFound)
		return
	}
	c.client.Write(staticStatusLine)
	c.client.Write(staticDirTypeLine)
	staticListDir(c.client, path, upath, names)
	c.status = 200
	c.fullyQueued = true
}

var staticDirTypeLine = []byte("Content-type: text/html\r\n\r\n")

// staticListDir writes an HTML table of the entries in directory path, which is served at upath.
func staticListDir(output Channel, path string, upath string, names []string) {
	sort.Strings(names)

	title := staticEscape(upath)
	var buffer bytes.Buffer
	fmt.Fprintf(&buffer, "<!doctype HTML><html><head><title>Current dir:%s</title></head><body><h1>Current Dir Content:%s</h1><table><tr><td>Name</td><td>Size</td><td>Type</td></tr>", title, title)
	for _, name := range names {
		size, kind, isDir := int64(0), "unknown", false
		if info, err := os.Stat(staticJoin(path, name)); err == nil {
			isDir = info.IsDir()
			if isDir {
				kind = "dir"
			} else {
				kind = "plain file"
			}
			size = info.Size()
		}
		link := (&url.URL{Path: staticJoin(upath, name)}).EscapedPath()
		if isDir {
			link += "/"
		}
		fmt.Fprintf(&buffer, "<tr><td><a href=\"%s\">%s</a></td><td>%d</td><td>%s</td></tr>", staticEscape(link), staticEscape(name), size, kind)
		if buffer.Len() >= _4K {
			output.Write(buffer.Bytes())
			buffer.Reset()
		}
	}
	buffer.WriteString("</table></body></html>\r\n")
	output.Write(buffer.Bytes())
}

func staticJoin(dir string, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

func staticEscape(s string) string { return staticEscaper.Replace(s) }

var staticEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;")
