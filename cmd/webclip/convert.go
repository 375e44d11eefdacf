package main

import (
	"fmt"
	"os"
)

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	html, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	return clip(deps, string(html), c.URL, clipOptions{
		Output:     c.Output,
		JSON:       c.JSON,
		NoFallback: c.NoFallback,
		Template:   c.Template,
	})
}
