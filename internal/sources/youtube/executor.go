package youtube

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// stderrTailLines bounds how much of stderr is kept for error reporting.
const stderrTailLines = 8

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// commandExecutor runs the real binary. Stdout lines stream to the callback;
// stderr is kept only as a short tail folded into the returned error, so
// JSON-line parsing never sees diagnostic noise.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	var tail []string

	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onStdout != nil {
				onStdout(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() { scanErr = err })
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			tail = append(tail, scanner.Text())
			if len(tail) > stderrTailLines {
				tail = tail[1:]
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() { scanErr = err })
		}
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	if waitErr == nil {
		waitErr = scanErr
	}
	if waitErr != nil {
		if len(tail) > 0 {
			return fmt.Errorf("%s: %w: %s", binary, waitErr, strings.Join(tail, "; "))
		}
		return fmt.Errorf("%s: %w", binary, waitErr)
	}
	return nil
}
