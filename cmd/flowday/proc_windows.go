//go:build windows

package main

import "os/exec"

// Windows has no Setsid; the child already outlives the parent.
func configureDetachedProc(cmd *exec.Cmd) {}
