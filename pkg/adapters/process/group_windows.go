//go:build windows

package process

import "os/exec"

// setupProcessGroup keeps the default cancellation, which kills the direct child.
// WaitDelay bounds the wait on any children that inherited the pipes.
func setupProcessGroup(cmd *exec.Cmd) {}
