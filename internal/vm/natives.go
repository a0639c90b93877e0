// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"time"

	"golang.org/x/lox/internal/runtime"
)

var processStart = time.Now()

// clockNative returns seconds of wall time since the process started;
// scripts use it for coarse benchmarking.
func clockNative(args []runtime.Value) runtime.Value {
	return runtime.Number(time.Since(processStart).Seconds())
}
