// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/lox/internal/term"
	"golang.org/x/lox/internal/vm"
)

// repl reads statements interactively. Input accumulates across lines
// until isSourceComplete judges it plausibly finished, so functions and
// blocks can be typed naturally. One VM lives for the whole session;
// globals persist between inputs.
func repl() {
	style := term.NewStyler(os.Stdout)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          style.Dim("> "),
		InterruptPrompt: "^C",
	})
	if err != nil {
		exitf(exitUsage, "can't open terminal: %v\n", err)
	}
	defer rl.Close()

	machine := vm.New()
	defer machine.Free()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			exitf(exitUsage, "read error: %v\n", err)
		}

		switch strings.TrimSpace(line) {
		case "exit":
			return
		case "clear":
			fmt.Print(style.Clear())
			continue
		case "":
			continue
		}

		source := line
		for lines := 2; !isSourceComplete(source); lines++ {
			rl.SetPrompt(style.Dim(fmt.Sprintf("%-2d> ", lines)))
			more, err := rl.Readline()
			if err != nil {
				break
			}
			source += "\n" + more
		}
		rl.SetPrompt(style.Dim("> "))

		machine.Interpret(source)
	}
}

// isSourceComplete guesses whether the accumulated input forms a whole
// statement: brace/paren balance outside strings and comments, ending
// at something statement-shaped. It is advisory only — a wrong guess
// just sends the text to the compiler, which reports the real error.
// Three trailing newlines always count as complete, as an escape hatch.
func isSourceComplete(source string) bool {
	if strings.HasSuffix(source, "\n\n\n") {
		return true
	}

	var balance []byte
	var previous byte
	inComment := false
	inString := false

	for i := 0; i < len(source); i++ {
		c := source[i]
		if inString {
			if c == '"' {
				inString = false
			}
			continue
		}
		if inComment {
			if c == '\n' {
				inComment = false
			}
			continue
		}
		switch c {
		case '/':
			if i+1 < len(source) && source[i+1] == '/' {
				inComment = true
			}
			continue
		case '"':
			inString = true
		case '{', '(':
			balance = append(balance, c)
		case '}', ')':
			complement := byte('{')
			if c == ')' {
				complement = '('
			}
			if len(balance) > 0 && balance[len(balance)-1] == complement {
				balance = balance[:len(balance)-1]
			} else {
				// Unbalanced close; hand it to the compiler.
				return true
			}
		}
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			previous = c
		}
	}

	if inString {
		return false
	}
	if len(balance) == 0 {
		return previous == '}' || previous == ';' || previous == 0
	}
	return false
}
