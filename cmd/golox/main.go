// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Golox is the command-line front end for the lox interpreter.
//
// Usage:
//
//	golox           start an interactive session
//	golox <path>    run a script file
//	golox disasm <path>
//	                compile a script and print its bytecode
//
// Exit codes: 0 on success, 64 for usage errors, 65 if compilation
// failed, 70 if the script raised a runtime error, 74 if the file
// could not be read.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/lox/internal/compiler"
	"golang.org/x/lox/internal/runtime"
	"golang.org/x/lox/internal/vm"
)

const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
	exitNoInput = 74
)

func exitf(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

func main() {
	root := &cobra.Command{
		Use:           "golox [path]",
		Short:         "golox is a bytecode interpreter for the lox language",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				repl()
				return
			}
			runFile(args[0])
		},
	}

	root.AddCommand(&cobra.Command{
		Use:           "disasm <path>",
		Short:         "compile a script and print the bytecode of every function",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			disasm(args[0])
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitUsage)
	}
}

func runFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		exitf(exitNoInput, "Couldn't open file %q.\n", path)
	}

	machine := vm.New()
	defer machine.Free()
	switch err := machine.Interpret(string(source)); {
	case errors.Is(err, vm.ErrCompile):
		os.Exit(exitCompile)
	case errors.Is(err, vm.ErrRuntime):
		os.Exit(exitRuntime)
	}
}

// disasm compiles without running and lists every function's chunk,
// the top-level script last.
func disasm(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		exitf(exitNoInput, "Couldn't open file %q.\n", path)
	}

	heap := runtime.NewHeap()
	script, err := compiler.Compile(string(source), heap, os.Stderr)
	if err != nil {
		os.Exit(exitCompile)
	}

	var dump func(f *runtime.Function)
	dump = func(f *runtime.Function) {
		for _, c := range f.Chunk.Constants {
			if inner, ok := c.AsObj().(*runtime.Function); c.IsObj() && ok {
				dump(inner)
			}
		}
		name := "<script>"
		if f.Name != nil {
			name = f.Name.Str
		}
		f.Chunk.Disassemble(os.Stdout, name)
	}
	dump(script)
}
