// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Common elements.

package hemi

import (
	"sync"
	"unsafe"
)

const ( // units
	K = 1 << 10
	M = 1 << 20
	G = 1 << 30
	T = 1 << 40
)

const ( // sizes
	_1K  = 1 * K  // mostly used by stock buffers
	_4K  = 4 * K  // mostly used by pooled buffers
	_16K = 16 * K // mostly used by pooled buffers
)

var ( // pools
	pool4K  sync.Pool
	pool16K sync.Pool
)

func Get4K() []byte  { return getNK(&pool4K, _4K) }
func Get16K() []byte { return getNK(&pool16K, _16K) }
func getNK(pool *sync.Pool, size int) []byte {
	if x := pool.Get(); x != nil {
		return x.([]byte)
	}
	return make([]byte, size)
}
func PutNK(p []byte) {
	switch cap(p) {
	case _4K:
		pool4K.Put(p[:_4K])
	case _16K:
		pool16K.Put(p[:_16K])
	default:
		BugExitln("bad buffer")
	}
}

func ConstBytes(s string) (p []byte) { // WARNING: *DO NOT* mutate s through p!
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
func WeakString(p []byte) (s string) { // WARNING: *DO NOT* mutate p while s is in use!
	return unsafe.String(unsafe.SliceData(p), len(p))
}

func decToI64(dec []byte) (int64, bool) {
	if n := len(dec); n == 0 || n > 19 { // the max number of int64 is 19 bytes
		return 0, false
	}
	var i64 int64
	for _, b := range dec {
		if b >= '0' && b <= '9' {
			b = b - '0'
		} else {
			return 0, false
		}
		i64 = i64*10 + int64(b)
		if i64 < 0 {
			return 0, false
		}
	}
	return i64, true
}

func byteIsSpace(b byte) bool { return b == ' ' || b == '\t' }

func bytesToUpper(p []byte) {
	for i := 0; i < len(p); i++ {
		if b := p[i]; b >= 'a' && b <= 'z' {
			p[i] = b - 0x20 // to upper
		}
	}
}
