// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scanner

import (
	"testing"

	"golang.org/x/lox/internal/token"
)

// scanAll collects tokens up to and including EOF.
func scanAll(t *testing.T, source string) []token.Token {
	t.Helper()
	s := New(source)
	var tokens []token.Token
	for {
		tok := s.ScanToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
		if len(tokens) > 1000 {
			t.Fatal("scanner did not terminate")
		}
	}
}

func TestTokenSequence(t *testing.T) {
	tokens := scanAll(t, `var answer = 6 * 7;`)
	want := []struct {
		typ    token.Type
		lexeme string
	}{
		{token.Var, "var"},
		{token.Identifier, "answer"},
		{token.Equal, "="},
		{token.Number, "6"},
		{token.Star, "*"},
		{token.Number, "7"},
		{token.Semicolon, ";"},
		{token.EOF, ""},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].Lexeme != w.lexeme {
			t.Errorf("token %d = (%d, %q), want (%d, %q)",
				i, tokens[i].Type, tokens[i].Lexeme, w.typ, w.lexeme)
		}
	}
}

func TestKeywords(t *testing.T) {
	source := "and class else false for fun if nil or print return super this true var while"
	want := []token.Type{
		token.And, token.Class, token.Else, token.False, token.For,
		token.Fun, token.If, token.Nil, token.Or, token.Print,
		token.Return, token.Super, token.This, token.True, token.Var,
		token.While, token.EOF,
	}
	tokens := scanAll(t, source)
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token %d = %d, want %d (%q)", i, tokens[i].Type, w, tokens[i].Lexeme)
		}
	}
}

func TestKeywordPrefixesAreIdentifiers(t *testing.T) {
	for _, name := range []string{"andy", "classes", "fork", "nilly", "variable", "whiles", "f", "fo", "ant"} {
		tokens := scanAll(t, name)
		if tokens[0].Type != token.Identifier {
			t.Errorf("%q scanned as %d, want identifier", name, tokens[0].Type)
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	tokens := scanAll(t, "! != = == > >= < <=")
	want := []token.Type{
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Greater, token.GreaterEqual, token.Less, token.LessEqual,
		token.EOF,
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token %d = %d, want %d", i, tokens[i].Type, w)
		}
	}
}

func TestLineNumbers(t *testing.T) {
	tokens := scanAll(t, "1\n2 // comment\n\"multi\nline\"\n3")
	// A multi-line string token carries the line it ends on.
	lines := map[string]int{"1": 1, "2": 2, "\"multi\nline\"": 4, "3": 5}
	for _, tok := range tokens {
		if tok.Type == token.EOF {
			continue
		}
		if want, ok := lines[tok.Lexeme]; ok && tok.Line != want {
			t.Errorf("%q on line %d, want %d", tok.Lexeme, tok.Line, want)
		}
	}
}

func TestComments(t *testing.T) {
	tokens := scanAll(t, "// just a comment\n// another\n")
	if tokens[0].Type != token.EOF {
		t.Fatalf("comment-only source produced token %q", tokens[0].Lexeme)
	}
}

func TestNumbers(t *testing.T) {
	tokens := scanAll(t, "12 12.5 0.5 7.")
	want := []struct {
		typ    token.Type
		lexeme string
	}{
		{token.Number, "12"},
		{token.Number, "12.5"},
		{token.Number, "0.5"},
		{token.Number, "7"},
		{token.Dot, "."},
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].Lexeme != w.lexeme {
			t.Errorf("token %d = (%d, %q), want (%d, %q)",
				i, tokens[i].Type, tokens[i].Lexeme, w.typ, w.lexeme)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	tokens := scanAll(t, `"oops`)
	if tokens[0].Type != token.Error || tokens[0].Lexeme != "Unterminated string." {
		t.Fatalf("got (%d, %q), want error token", tokens[0].Type, tokens[0].Lexeme)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	tokens := scanAll(t, "@")
	if tokens[0].Type != token.Error || tokens[0].Lexeme != "Unexpected character." {
		t.Fatalf("got (%d, %q), want error token", tokens[0].Type, tokens[0].Lexeme)
	}
}

func TestEOFForever(t *testing.T) {
	s := New("")
	for i := 0; i < 3; i++ {
		if tok := s.ScanToken(); tok.Type != token.EOF {
			t.Fatalf("scan %d after end = %d, want EOF", i, tok.Type)
		}
	}
}
