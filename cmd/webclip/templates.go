package main

import (
	"fmt"
	iofs "io/fs"
	"os"
	"strings"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/yaml"
)

// Run executes the templates list command.
func (c *TemplatesListCmd) Run(deps *Dependencies) error {
	for _, t := range deps.Store.Templates() {
		fmt.Fprintf(deps.Stdout, "%s  priority=%d  strategies=%s  domains=%s\n",
			t.Name, t.Priority, strategies(t), strings.Join(t.Domains, ","))
	}
	return nil
}

func strategies(t *webclip.Template) string {
	order := t.Strategies.Order()
	names := make([]string, len(order))
	for i, s := range order {
		names[i] = string(s)
	}
	return strings.Join(names, ">")
}

// Run executes the templates match command.
func (c *TemplatesMatchCmd) Run(deps *Dependencies) error {
	t := deps.Store.TemplateForURL(c.URL)
	fmt.Fprintf(deps.Stdout, "%s\n", t.Name)
	if !t.IsGeneric() {
		fmt.Fprintf(deps.Stdout, "  domains:  %s\n", strings.Join(t.Domains, ", "))
		fmt.Fprintf(deps.Stdout, "  priority: %d\n", t.Priority)
	}
	return nil
}

// Run executes the templates check command. With no directory it checks
// the built-ins and the --templates directory.
func (c *TemplatesCheckCmd) Run(deps *Dependencies) error {
	type source struct {
		label string
		fsys  iofs.FS
	}
	var sources []source
	switch {
	case c.Dir != "":
		sources = append(sources, source{c.Dir, os.DirFS(c.Dir)})
	default:
		sources = append(sources, source{"built-in", yaml.Builtin()})
		if deps.TemplateDir != "" {
			sources = append(sources, source{deps.TemplateDir, os.DirFS(deps.TemplateDir)})
		}
	}

	failed := 0
	for _, src := range sources {
		templates, failures, err := yaml.CheckTemplates(src.fsys)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		for _, t := range templates {
			fmt.Fprintf(deps.Stdout, "ok    %s: %s\n", src.label, t.Name)
		}
		for _, f := range failures {
			fmt.Fprintf(deps.Stdout, "FAIL  %s: %s\n", src.label, f.Error())
		}
		failed += len(failures)
	}

	if failed > 0 {
		return webclip.Errorf(webclip.EINVALID, "%d template file(s) failed validation", failed)
	}
	return nil
}
