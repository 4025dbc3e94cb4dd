// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command planner solves ground planning tasks with weighted A*, Monte
// Carlo rollouts or breadth-first search, validates plans and runs
// benchmarks.
//
// Usage:
//
//	planner solve astar task.yaml -e max -w 1
//	planner solve rollout task.yaml -n 200 -d 60 -s 42
//	planner validate task.yaml plan.txt
//	planner bench tasks/ --out results.csv --store ./runs
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitNoPlan  = 2
	exitInvalid = 3
)

// exitCodeError carries a non-default exit code out of a command.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(stdout, stderr)
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if terr := c.teardown(ctx); terr != nil && err == nil {
		err = terr
	}
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, "error:", err)
	var ce *exitCodeError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitError
}
