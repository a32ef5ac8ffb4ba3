// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"sync"
)

// Fake is a Runner for tests. It records every command and answers
// with Handler, applying the same Tolerant and ExitError rules as
// Exec. A nil Handler succeeds with empty output.
type Fake struct {
	// Handler produces the result for a command. A returned error
	// simulates a failure to start the process.
	Handler func(ctx context.Context, command Command) (Result, error)

	mu       sync.Mutex
	commands []Command
}

// Run records the command and dispatches to Handler.
func (f *Fake) Run(ctx context.Context, command Command) (Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()

	var result Result
	if f.Handler != nil {
		var err error
		result, err = f.Handler(ctx, command)
		if err != nil {
			result.ExitStatus = -1
			if command.Tolerant {
				return result, nil
			}
			return result, err
		}
	}
	if result.ExitStatus != 0 && !command.Tolerant {
		return result, &ExitError{Command: command, Result: result}
	}
	return result, nil
}

// Commands returns a copy of every command run so far, in order.
func (f *Fake) Commands() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.commands...)
}

// Reset forgets recorded commands.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = nil
}
