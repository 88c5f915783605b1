// Package console provides simulated backends for every board model. A
// console board prints state transitions and prompts for sensor values
// instead of touching hardware, so application logic runs without boards
// attached.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config selects the simulated boards a discovery call should produce and
// where their console I/O goes.
type Config struct {
	// Serials are the serial numbers of the simulated boards, one board
	// per entry. An empty list simulates a single board.
	Serials []string

	// In is prompted for sensor reads. Defaults to os.Stdin.
	In io.Reader
	// Out receives state transitions and prompts. Defaults to os.Stdout.
	Out io.Writer
}

func (cfg *Config) setDefaults(kind string) {
	if len(cfg.Serials) == 0 {
		cfg.Serials = []string{kind + "-console-0"}
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
}

// Console is the prompt/print helper shared by the simulated backends.
type Console struct {
	tag string
	in  *bufio.Reader
	out io.Writer
}

func newConsole(tag string, cfg Config) *Console {
	return &Console{
		tag: tag,
		in:  bufio.NewReader(cfg.In),
		out: cfg.Out,
	}
}

// Infof prints a tagged message for the user.
func (c *Console) Infof(format string, args ...interface{}) {
	fmt.Fprintf(c.out, "%s: %s\n", c.tag, fmt.Sprintf(format, args...))
}

func (c *Console) prompt(prompt string) (string, error) {
	fmt.Fprintf(c.out, "%s: %s: ", c.tag, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("console: reading response: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ReadFloat prompts the user for a float value.
func (c *Console) ReadFloat(prompt string) (float64, error) {
	for {
		resp, err := c.prompt(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(resp, 64)
		if err != nil {
			c.Infof("unable to parse %q as a number", resp)
			continue
		}
		return v, nil
	}
}

// ReadBool prompts the user for a yes/no value.
func (c *Console) ReadBool(prompt string) (bool, error) {
	for {
		resp, err := c.prompt(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(resp) {
		case "y", "yes", "true":
			return true, nil
		case "n", "no", "false":
			return false, nil
		}
		c.Infof("unable to parse %q as yes/no", resp)
	}
}
