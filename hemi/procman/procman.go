// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Procman package bootstraps the process: flags, directories, config, and the server.

package procman

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hexinfra/tinyrox/hemi"
	"github.com/hexinfra/tinyrox/hemi/library/system"
)

// Opts
type Opts struct {
	ProgramName  string // tinyrox, ...
	ProgramTitle string // Tinyrox, ...
	DebugLevel   int    // default debug level
}

var ( // flags
	debugLevel int
	configFile string
	baseDir    string
	logsDir    string
	tempDir    string
	varsDir    string
)

const usage = `
%s (%s)
================================================================================

  %s [ACTION] [OPTIONS]

ACTION
------

  serve        # start as server (default)
  check        # dry run to check config
  help         # show this message
  version      # show version info

OPTIONS
-------

  -debug  <level>   # debug level (default: %d. min: 0, max: 3)
  -config <config>  # path to config file (default: conf/%s.conf)
  -base   <path>    # base directory of the program
  -logs   <path>    # logs directory to use
  -temp   <path>    # temp directory to use
  -vars   <path>    # vars directory to use

  "-debug" applies for all actions.
  Other options apply for "serve" and "check" only.

`

func Main(opts *Opts) {
	if !system.Check() {
		Crash("current platform (os + arch) is not supported.")
	}

	flag.Usage = func() {
		fmt.Printf(usage, opts.ProgramTitle, hemi.Version, opts.ProgramName, opts.DebugLevel, opts.ProgramName)
	}
	flag.IntVar(&debugLevel, "debug", opts.DebugLevel, "")
	flag.StringVar(&configFile, "config", "", "")
	flag.StringVar(&baseDir, "base", "", "")
	flag.StringVar(&logsDir, "logs", "", "")
	flag.StringVar(&tempDir, "temp", "", "")
	flag.StringVar(&varsDir, "vars", "", "")
	action := "serve"
	if len(os.Args) > 1 && os.Args[1][0] != '-' {
		action = os.Args[1]
		flag.CommandLine.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	hemi.SetDebugLevel(int32(debugLevel))
	switch action {
	case "help":
		flag.Usage()
	case "version":
		fmt.Println(hemi.Version)
	case "serve", "check":
		setDirs()
		configBase, configPath := getConfig(opts.ProgramName)
		server, err := hemi.ServerFromFile(configBase, configPath)
		if err != nil {
			Crash(err.Error())
		}
		if action == "check" { // dry run
			fmt.Println("PASS")
			server.Shutdown()
			return
		}
		serve(server)
	default:
		flag.Usage()
		Crash("unknown action: " + action)
	}
}

func setDirs() {
	if baseDir == "" {
		baseDir = system.ExeDir
	} else { // baseDir is specified.
		dir, err := filepath.Abs(baseDir)
		if err != nil {
			Crash(err.Error())
		}
		baseDir = dir
	}
	baseDir = filepath.ToSlash(baseDir)
	hemi.SetBaseDir(baseDir)
	setDir := func(pDir *string, name string, set func(string)) {
		if dir := *pDir; dir == "" {
			*pDir = baseDir + "/" + name
		} else if !filepath.IsAbs(dir) {
			*pDir = baseDir + "/" + dir
		}
		*pDir = filepath.ToSlash(*pDir)
		set(*pDir)
	}
	setDir(&logsDir, "logs", hemi.SetLogsDir)
	setDir(&tempDir, "temp", hemi.SetTempDir)
	setDir(&varsDir, "vars", hemi.SetVarsDir)
}

func getConfig(program string) (configBase string, configPath string) {
	if strings.HasPrefix(configFile, "http://") || strings.HasPrefix(configFile, "https://") {
		Crash("remote config is not supported")
	}
	if configFile == "" {
		configBase = baseDir
		configPath = "conf/" + program + ".conf"
	} else if filepath.IsAbs(configFile) { // /path/to/file.conf
		configBase = filepath.Dir(configFile)
		configPath = filepath.Base(configFile)
	} else { // path/to/file.conf
		configBase = baseDir
		configPath = configFile
	}
	configBase += "/"
	return
}

func serve(server *hemi.Server) {
	if err := server.Listen(); err != nil {
		Crash(err.Error())
	}
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		if hemi.DebugLevel() >= 1 {
			hemi.Printf("got signal %s, shutting down\n", sig.String())
		}
		server.Shutdown()
	}()
	if err := server.Serve(); err != nil {
		server.Shutdown()
		Crash(err.Error())
	}
	server.Shutdown() // wait for the loops
}

const CodeCrash = 11

func Crash(s string) {
	fmt.Fprintln(os.Stderr, s)
	os.Exit(CodeCrash)
}
