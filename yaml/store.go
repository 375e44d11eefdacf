package yaml

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/fwojciec/webclip"
)

//go:embed templates/*.yaml
var builtin embed.FS

// Builtin returns the templates shipped with webclip.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		panic(err) // embedded directory always exists
	}
	return sub
}

// LoadTemplates parses every .yaml, .yml and .json file at the root of
// fsys in lexical order. A malformed template is skipped and logged. The
// file named generic.* is the exception: failing to parse it returns an
// EINTERNAL error, since nothing else guarantees coverage.
func LoadTemplates(fsys fs.FS, logger *slog.Logger) ([]*webclip.Template, error) {
	return loadTemplates(fsys, logger, true)
}

// loadTemplates is LoadTemplates with the generic exception optional.
func loadTemplates(fsys fs.FS, logger *slog.Logger, needGeneric bool) ([]*webclip.Template, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	templates, failures, err := CheckTemplates(fsys)
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		if needGeneric && stem(f.File) == webclip.GenericTemplateName {
			return nil, webclip.Errorf(webclip.EINTERNAL, "loading generic template %s: %s", f.File, webclip.ErrorMessage(f.Err))
		}
		logger.Warn("skipping template", "file", f.File, "err", f.Err)
	}
	return templates, nil
}

// FileError is a template file that failed to load.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return e.File + ": " + webclip.ErrorMessage(e.Err)
}

// CheckTemplates parses every template file at the root of fsys in lexical
// order, returning the valid templates and one FileError per failure.
func CheckTemplates(fsys fs.FS) ([]*webclip.Template, []FileError, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("reading template directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		templates []*webclip.Template
		failures  []FileError
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isTemplateFile(name) {
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err == nil {
			var t *webclip.Template
			if t, err = ParseTemplate(data); err == nil {
				templates = append(templates, t)
				continue
			}
		}
		failures = append(failures, FileError{File: name, Err: err})
	}
	return templates, failures, nil
}

// NewStore loads the built-in templates, then each directory in order.
// A template in a later directory replaces a same-named earlier one. The
// built-in generic template already covers every host, so a malformed
// generic template in a directory is skipped like any other bad file.
func NewStore(logger *slog.Logger, dirs ...fs.FS) (*webclip.TemplateStore, error) {
	all, err := LoadTemplates(Builtin(), logger)
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		templates, err := loadTemplates(dir, logger, false)
		if err != nil {
			return nil, err
		}
		all = append(all, templates...)
	}
	return webclip.NewTemplateStore(all)
}

func isTemplateFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
