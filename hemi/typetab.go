// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Content-type table maps file extensions to response header fragments.

package hemi

import (
	"strings"
)

// TypeTable is built before serving and is read-only afterwards.
type TypeTable struct {
	fragments map[string]string // ".html" -> "Content-type: text/html\r\n"
}

// NewTypeTable creates a table from the default types, overwritten by mimeTypes.
func NewTypeTable(mimeTypes map[string]string) *TypeTable {
	t := new(TypeTable)
	t.fragments = make(map[string]string, len(typeDefaultMimeTypes)+len(mimeTypes))
	for ext, mimeType := range typeDefaultMimeTypes {
		t.add(ext, mimeType)
	}
	for ext, mimeType := range mimeTypes { // overwrite default
		if ext != "" && ext[0] != '.' {
			ext = "." + ext
		}
		t.add(ext, mimeType)
	}
	return t
}

func (t *TypeTable) add(ext string, mimeType string) {
	t.fragments[ext] = "Content-type: " + mimeType + "\r\n"
}

// Lookup returns the header fragment for the extension of path, or "" if unmatched.
func (t *TypeTable) Lookup(path string) string {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot == -1 {
		return ""
	}
	return t.fragments[base[dot:]]
}

// Size returns the number of extensions in the table.
func (t *TypeTable) Size() int { return len(t.fragments) }

var typeDefaultMimeTypes = map[string]string{
	".7z":   "application/x-7z-compressed",
	".atom": "application/atom+xml",
	".bin":  "application/octet-stream",
	".bmp":  "image/x-ms-bmp",
	".css":  "text/css",
	".deb":  "application/octet-stream",
	".doc":  "application/msword",
	".gif":  "image/gif",
	".htm":  "text/html",
	".html": "text/html",
	".ico":  "image/x-icon",
	".iso":  "application/octet-stream",
	".jar":  "application/java-archive",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".js":   "application/javascript",
	".json": "application/json",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".rss":  "application/rss+xml",
	".svg":  "image/svg+xml",
	".txt":  "text/plain",
	".webm": "video/webm",
	".webp": "image/webp",
	".xml":  "text/xml",
	".zip":  "application/zip",
}
