// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Config tokens.

package config

import (
	"fmt"
)

// Token
type Token struct {
	Kind int16  // TokenXXX
	Line int32  // at line number
	File string // file path
	Text string // text literal
}

func (t Token) Name() string { return tokenNames[t.Kind] }
func (t Token) String() string {
	return fmt.Sprintf("kind=%16s line=%4d file=%s    %s", t.Name(), t.Line, t.File, t.Text)
}

const ( // token list. if you change this list, change in tokenNames too.
	// Word
	TokenWord = 1 + iota // server, ...
	// Constants
	TokenConstant // @baseDir, @logsDir, @tempDir, @varsDir
	// Properties
	TokenProperty // .address, .webRoot, ...
	// Operators
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenComma        // ,
	TokenColon        // :
	TokenPlus         // +
	TokenEqual        // =
	// Values
	TokenBool     // true, false
	TokenInteger  // 123, 16K, 256M, ...
	TokenString   // "", "abc", `def`, ...
	TokenDuration // 1s, 2m, 3h, 4d, ...
	TokenList     // lists: (...)
	TokenDict     // dicts: [...]
)

var tokenNames = [...]string{ // token names. if you change this list, change in token list too.
	// Word
	TokenWord: "word",
	// Constants
	TokenConstant: "constant",
	// Properties
	TokenProperty: "property",
	// Operators
	TokenLeftBrace:    "leftBrace",
	TokenRightBrace:   "rightBrace",
	TokenLeftBracket:  "leftBracket",
	TokenRightBracket: "rightBracket",
	TokenLeftParen:    "leftParen",
	TokenRightParen:   "rightParen",
	TokenComma:        "comma",
	TokenColon:        "colon",
	TokenPlus:         "plus",
	TokenEqual:        "equal",
	// Value literals
	TokenBool:     "bool",
	TokenInteger:  "integer",
	TokenString:   "string",
	TokenDuration: "duration",
	TokenList:     "list",
	TokenDict:     "dict",
}

var soloKinds = [256]int16{ // keep sync with soloTexts
	'{': TokenLeftBrace,
	'}': TokenRightBrace,
	'[': TokenLeftBracket,
	']': TokenRightBracket,
	'(': TokenLeftParen,
	')': TokenRightParen,
	',': TokenComma,
	':': TokenColon,
	'+': TokenPlus,
	'=': TokenEqual,
}
var soloTexts = [...]string{ // keep sync with soloKinds
	'{': "{",
	'}': "}",
	'[': "[",
	']': "]",
	'(': "(",
	')': ")",
	',': ",",
	':': ":",
	'+': "+",
	'=': "=",
}
