// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Components and the configurator that builds them from config.

package hemi

import (
	"errors"
	"fmt"

	"github.com/hexinfra/tinyrox/hemi/library/config"
)

// Component_ is the parent for all components.
type Component_ struct {
	// States
	name  string                  // main, ...
	props map[string]config.Value // name1=value1, ...
}

func (c *Component_) MakeComp(name string) {
	c.name = name
	c.props = make(map[string]config.Value)
}
func (c *Component_) Name() string { return c.name }

func (c *Component_) Find(name string) (value config.Value, ok bool) {
	value, ok = c.props[name]
	return
}
func (c *Component_) SetProp(name string, value config.Value) { c.props[name] = value }

func (c *Component_) ConfigureBool(name string, prop *bool, defaultValue bool) {
	_configureProp(c, name, prop, (*config.Value).Bool, nil, defaultValue)
}
func (c *Component_) ConfigureInt32(name string, prop *int32, check func(value int32) error, defaultValue int32) {
	_configureProp(c, name, prop, (*config.Value).Int32, check, defaultValue)
}
func (c *Component_) ConfigureString(name string, prop *string, check func(value string) error, defaultValue string) {
	_configureProp(c, name, prop, (*config.Value).String, check, defaultValue)
}
func (c *Component_) ConfigureStringList(name string, prop *[]string, check func(value []string) error, defaultValue []string) {
	_configureProp(c, name, prop, (*config.Value).StringList, check, defaultValue)
}
func (c *Component_) ConfigureStringDict(name string, prop *map[string]string, check func(value map[string]string) error, defaultValue map[string]string) {
	_configureProp(c, name, prop, (*config.Value).StringDict, check, defaultValue)
}

func _configureProp[T any](c *Component_, name string, prop *T, conv func(*config.Value) (T, bool), check func(value T) error, defaultValue T) {
	if v, ok := c.Find(name); ok {
		if value, ok := conv(&v); ok && check == nil {
			*prop = value
		} else if ok && check != nil {
			if err := check(value); err == nil {
				*prop = value
			} else {
				panic(fmt.Errorf(".%s is error in %s: %s", name, c.name, err.Error()))
			}
		} else {
			panic(fmt.Errorf("invalid .%s in %s", name, c.name))
		}
	} else {
		*prop = defaultValue
	}
}

// ServerFromText creates a prepared server from config text.
func ServerFromText(text string) (server *Server, err error) {
	sections, err := config.ParseText(text, configConstants())
	if err != nil {
		return nil, err
	}
	return serverFromSections(sections)
}

// ServerFromFile creates a prepared server from the config file at base + file.
func ServerFromFile(base string, file string) (server *Server, err error) {
	sections, err := config.ParseFile(base, file, configConstants())
	if err != nil {
		return nil, err
	}
	return serverFromSections(sections)
}

func configConstants() map[string]string {
	return map[string]string{
		"baseDir": BaseDir(),
		"logsDir": LogsDir(),
		"tempDir": TempDir(),
		"varsDir": VarsDir(),
	}
}

func serverFromSections(sections []*config.Section) (server *Server, err error) {
	defer func() {
		if x := recover(); x != nil {
			if e, ok := x.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", x)
			}
			server = nil
		}
	}()
	for _, section := range sections {
		if section.Sign != "server" {
			return nil, fmt.Errorf("unknown component %s in line %d", section.Sign, section.Line)
		}
		if server != nil {
			return nil, fmt.Errorf("only one server is allowed, another one in line %d", section.Line)
		}
		server = NewServer(section.Name)
		for name, value := range section.Props {
			server.SetProp(name, value)
		}
	}
	if server == nil {
		return nil, errors.New("no server is configured")
	}
	server.OnConfigure()
	server.OnPrepare()
	return server, nil
}
