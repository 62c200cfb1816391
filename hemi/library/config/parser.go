// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Config parser. A config is a list of sections:
//
//	sign "name" {
//	    .prop = value
//	}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Section is a parsed component block.
type Section struct {
	Sign  string           // server, ...
	Name  string           // "main", ...
	Line  int32            // line of the sign
	Props map[string]Value // .prop = value
}

func (s *Section) Find(name string) (value Value, ok bool) {
	value, ok = s.Props[name]
	return
}

// ParseText parses config text. Includes are not allowed in text mode.
func ParseText(text string, constants map[string]string) (sections []*Section, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = _asError(x)
		}
	}()
	var l lexer
	var p parser
	p.init(l.scanText(text), constants)
	return p.parse(), nil
}

// ParseFile parses the config file at base + file.
func ParseFile(base string, file string, constants map[string]string) (sections []*Section, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = _asError(x)
		}
	}()
	var l lexer
	var p parser
	p.init(l.scanFile(base, file), constants)
	return p.parse(), nil
}

func _asError(x any) error {
	if err, ok := x.(error); ok {
		return err
	}
	return fmt.Errorf("%v", x)
}

// parser
type parser struct {
	constants map[string]string // defined constants
	tokens    []Token           // the token list
	index     int               // token index
	counter   int               // the name for sections without a name
}

func (p *parser) init(tokens []Token, constants map[string]string) {
	p.tokens = tokens
	p.constants = constants
}

func (p *parser) parse() []*Section {
	var sections []*Section
	for p.index = 0; p.index < len(p.tokens); p.index++ {
		sign := p.expectToken(TokenWord)
		section := &Section{Sign: sign.Text, Line: sign.Line, Props: make(map[string]Value)}
		if p.nextTokenIs(TokenString) {
			section.Name = p.forwardToken().Text
		} else {
			section.Name = p.makeName()
		}
		p.forwardExpectToken(TokenLeftBrace) // {
		p.parseLeaf(section)
		sections = append(sections, section)
	}
	return sections
}

func (p *parser) currentToken() *Token { return &p.tokens[p.index] }
func (p *parser) forwardToken() *Token {
	p._forwardCheckEOF()
	return &p.tokens[p.index]
}
func (p *parser) currentTokenIs(kind int16) bool { return p.tokens[p.index].Kind == kind }
func (p *parser) nextTokenIs(kind int16) bool {
	if p.index+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.index+1].Kind == kind
}
func (p *parser) expectToken(kind int16) *Token {
	current := &p.tokens[p.index]
	if current.Kind != kind {
		panic(fmt.Errorf("parser: expect %s, but get %s=%s (in line %d)", tokenNames[kind], tokenNames[current.Kind], current.Text, current.Line))
	}
	return current
}
func (p *parser) forwardExpectToken(kind int16) *Token {
	p._forwardCheckEOF()
	return p.expectToken(kind)
}
func (p *parser) _forwardCheckEOF() {
	if p.index++; p.index == len(p.tokens) {
		panic(errors.New("parser: unexpected EOF"))
	}
}

func (p *parser) makeName() string {
	p.counter++
	return strconv.Itoa(p.counter)
}

func (p *parser) parseLeaf(section *Section) {
	p.expectToken(TokenLeftBrace) // {
	for {
		current := p.forwardToken()
		if current.Kind == TokenRightBrace { // }
			return
		}
		if current.Kind == TokenProperty { // .property
			p.parseAssign(current, section)
			continue
		}
		panic(fmt.Errorf("parser: unknown token %s=%s (in line %d) in %s", current.Name(), current.Text, current.Line, section.Sign))
	}
}
func (p *parser) parseAssign(prop *Token, section *Section) {
	p.forwardExpectToken(TokenEqual) // =
	p.forwardToken()
	var value Value
	p.parseValue(section, prop.Text, &value)
	section.Props[prop.Text] = value
}

func (p *parser) parseValue(section *Section, prop string, value *Value) {
	current := p.currentToken()
	switch current.Kind {
	case TokenBool:
		value.Kind, value.Data = TokenBool, current.Text == "true"
	case TokenInteger:
		last := current.Text[len(current.Text)-1]
		if isDigit(last) {
			n64, err := strconv.ParseInt(current.Text, 10, 64)
			if err != nil {
				panic(fmt.Errorf("parser: bad integer %s", current.Text))
			}
			value.Data = n64
		} else {
			size, err := strconv.ParseInt(current.Text[:len(current.Text)-1], 10, 64)
			if err != nil {
				panic(fmt.Errorf("parser: bad size %s", current.Text))
			}
			switch last {
			case 'K':
				size *= _K
			case 'M':
				size *= _M
			case 'G':
				size *= _G
			case 'T':
				size *= _T
			}
			value.Data = size
		}
		value.Kind = TokenInteger
	case TokenString:
		value.Kind, value.Data = TokenString, current.Text
	case TokenConstant: // @constant
		text, ok := p.constants[current.Text]
		if !ok {
			panic(fmt.Errorf("parser: unknown constant @%s (in line %d)", current.Text, current.Line))
		}
		value.Kind, value.Data = TokenString, text
	case TokenDuration:
		last := len(current.Text) - 1
		n, err := strconv.ParseInt(current.Text[:last], 10, 64)
		if err != nil {
			panic(fmt.Errorf("parser: bad duration %s", current.Text))
		}
		var d time.Duration
		switch current.Text[last] {
		case 's':
			d = time.Duration(n) * time.Second
		case 'm':
			d = time.Duration(n) * time.Minute
		case 'h':
			d = time.Duration(n) * time.Hour
		case 'd':
			d = time.Duration(n) * 24 * time.Hour
		}
		value.Kind, value.Data = TokenDuration, d
	case TokenLeftParen: // (...)
		p.parseList(section, prop, value)
	case TokenLeftBracket: // [...]
		p.parseDict(section, prop, value)
	case TokenProperty: // .property
		if propRef := current.Text; propRef == prop {
			panic(errors.New("parser: cannot refer to self"))
		} else if valueRef, ok := section.Find(propRef); !ok {
			panic(fmt.Errorf("parser: refer to a prop that doesn't exist in line %d", current.Line))
		} else {
			*value = valueRef
		}
	default:
		panic(fmt.Errorf("parser: expect a value, but get token %s=%s (in line %d)", current.Name(), current.Text, current.Line))
	}

	if value.Kind != TokenString {
		// Currently only strings can be concatenated
		return
	}

	for p.nextTokenIs(TokenPlus) { // any concatenations?
		p.forwardToken() // +
		p.forwardToken()
		var str Value
		p.parseValue(section, prop, &str)
		if str.Kind != TokenString {
			panic(errors.New("parser: cannot concat string with other types. token=" + p.currentToken().Text))
		}
		value.Data = value.Data.(string) + str.Data.(string)
	}
}
func (p *parser) parseList(section *Section, prop string, value *Value) {
	list := []Value{}
	p.expectToken(TokenLeftParen) // (
	for {
		current := p.forwardToken()
		if current.Kind == TokenRightParen { // )
			break
		}
		var elem Value
		p.parseValue(section, prop, &elem)
		list = append(list, elem)
		current = p.forwardToken()
		if current.Kind == TokenRightParen { // )
			break
		} else if current.Kind != TokenComma { // ,
			panic(fmt.Errorf("parser: bad list in line %d", current.Line))
		}
	}
	value.Kind, value.Data = TokenList, list
}
func (p *parser) parseDict(section *Section, prop string, value *Value) {
	dict := make(map[string]Value)
	p.expectToken(TokenLeftBracket) // [
	for {
		current := p.forwardToken()
		if current.Kind == TokenRightBracket { // ]
			break
		}
		k := p.expectToken(TokenString)  // k
		p.forwardExpectToken(TokenColon) // :
		p.forwardToken()                 // v
		var v Value
		p.parseValue(section, prop, &v)
		dict[k.Text] = v
		current = p.forwardToken()
		if current.Kind == TokenRightBracket { // ]
			break
		} else if current.Kind != TokenComma { // ,
			panic(fmt.Errorf("parser: bad dict in line %d", current.Line))
		}
	}
	value.Kind, value.Data = TokenDict, dict
}
