package decision

import (
	"fmt"
	"os/exec"
	"sync"
)

// Controller supervises one collaborator process (typically the replay
// feeder): explicit start and stop, with the process handle owned here
// and nowhere else.
type Controller struct {
	mu   sync.Mutex
	name string
	args []string
	cmd  *exec.Cmd
}

func NewController(name string, args ...string) *Controller {
	return &Controller{name: name, args: args}
}

func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd != nil {
		return fmt.Errorf("%s already running (pid %d)", c.name, c.cmd.Process.Pid)
	}

	cmd := exec.Command(c.name, c.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.name, err)
	}
	c.cmd = cmd

	// Reap the process when it exits on its own.
	go func() {
		cmd.Wait()
		c.mu.Lock()
		if c.cmd == cmd {
			c.cmd = nil
		}
		c.mu.Unlock()
	}()
	return nil
}

func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd == nil {
		return fmt.Errorf("%s not running", c.name)
	}
	if err := c.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("stop %s: %w", c.name, err)
	}
	c.cmd = nil
	return nil
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cmd != nil
}
