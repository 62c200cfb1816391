// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Tinyrox answers each HTTP/1.x connection with a file, a directory listing, or a gateway program.

package main

import (
	"github.com/hexinfra/tinyrox/hemi/procman"

	_ "github.com/hexinfra/tinyrox/hemi/builtin/loggers/simple"
)

func main() {
	procman.Main(&procman.Opts{
		ProgramName:  "tinyrox",
		ProgramTitle: "Tinyrox",
		DebugLevel:   0,
	})
}
