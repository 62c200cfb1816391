// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Abnormal responses.

package hemi

import (
	"strconv"
)

const ( // abnormal statuses
	StatusBadRequest     = 400
	StatusNotFound       = 404
	StatusNotImplemented = 501
	StatusBadGateway     = 502
)

var abnormalPages = map[int16][]byte{ // prebuilt, never mutated
	StatusBadRequest:     abnormalPage(StatusBadRequest, "Bad Request"),
	StatusNotFound:       abnormalPage(StatusNotFound, "Not Found"),
	StatusNotImplemented: abnormalPage(StatusNotImplemented, "Not Implemented"),
	StatusBadGateway:     abnormalPage(StatusBadGateway, "Bad Gateway"),
}

func abnormalPage(status int16, reason string) []byte {
	code := strconv.Itoa(int(status))
	return []byte("HTTP/1.1 " + code + " " + reason + "\r\nContent-type: text/html\r\n\r\n" +
		"<html><body><h1 align = center>" + code + " " + reason + "</h1></body></html>")
}

// serveAbnormal queues the page of status and ends the response.
func (c *Connection) serveAbnormal(status int16) {
	if DebugLevel() >= 2 {
		Printf("conn=%d abnormal status=%d reason=%s\n", c.id, status, c.failReason)
	}
	page, ok := abnormalPages[status]
	if !ok {
		BugExitf("abnormal status=%d is not prebuilt\n", status)
	}
	c.client.Write(page)
	c.status = status
	c.fullyQueued = true
}
