// Package yaml loads extraction templates from YAML or JSON documents.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"math"
	"time"

	"github.com/fwojciec/webclip"
	"gopkg.in/yaml.v3"
)

// templateFile mirrors the on-disk template format.
type templateFile struct {
	Name            string                           `yaml:"name"`
	Version         string                           `yaml:"version"`
	Domains         []string                         `yaml:"domains"`
	Priority        int                              `yaml:"priority"`
	Selectors       selectorsFile                    `yaml:"selectors"`
	CMSPatterns     map[string]map[string][]ruleFile `yaml:"cms_patterns"`
	TitleSeparators []string                         `yaml:"title_separators"`
	PostProcess     []string                         `yaml:"post_process"`
	Exclude         excludeFile                      `yaml:"exclude_patterns"`
	Quality         qualityFile                      `yaml:"quality"`
	Strategies      strategiesFile                   `yaml:"strategies"`
	Performance     performanceFile                  `yaml:"performance"`
	Output          outputFile                       `yaml:"output"`
}

type selectorsFile struct {
	Title    []ruleFile            `yaml:"title"`
	Content  []ruleFile            `yaml:"content"`
	Author   []ruleFile            `yaml:"author"`
	Date     []ruleFile            `yaml:"date"`
	Cover    []ruleFile            `yaml:"cover"`
	Images   []ruleFile            `yaml:"images"`
	Metadata map[string][]ruleFile `yaml:"metadata"`
}

type ruleFile struct {
	Selector   string          `yaml:"selector"`
	Strategy   string          `yaml:"strategy"`
	Attribute  string          `yaml:"attribute"`
	Pattern    string          `yaml:"pattern"`
	Path       string          `yaml:"path"`
	Validation *validationFile `yaml:"validation"`
}

type validationFile struct {
	DomainContains []string `yaml:"domain_contains"`
	MinLength      int      `yaml:"min_length"`
}

type excludeFile struct {
	Classes []string `yaml:"classes"`
	IDs     []string `yaml:"ids"`
	Tags    []string `yaml:"tags"`
}

type qualityFile struct {
	RequireTitle     bool `yaml:"require_title"`
	RequireContent   bool `yaml:"require_content"`
	MinContentLength int  `yaml:"min_content_length"`
	MaxTitleLength   int  `yaml:"max_title_length"`
}

type strategiesFile struct {
	Primary            string       `yaml:"primary"`
	Fallback           []string     `yaml:"fallback"`
	CSSOptions         *optionsFile `yaml:"css_options"`
	XPathOptions       *optionsFile `yaml:"xpath_options"`
	TextPatternOptions *optionsFile `yaml:"text_pattern_options"`
}

type optionsFile struct {
	MaxMatches int `yaml:"max_matches"`
}

type performanceFile struct {
	MaxDocumentSize int `yaml:"max_document_size"`

	// MaxExtractionTime is in seconds.
	MaxExtractionTime float64 `yaml:"max_extraction_time"`
}

type outputFile struct {
	Format          string   `yaml:"format"`
	HeaderTemplate  string   `yaml:"header_template"`
	IncludeMetadata bool     `yaml:"include_metadata"`
	MetadataFields  []string `yaml:"metadata_fields"`
}

// ParseTemplate decodes, normalizes and validates a single template.
// Unknown keys are rejected. Returns EINVALID for any shape error.
func ParseTemplate(data []byte) (*webclip.Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f templateFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, webclip.Errorf(webclip.EINVALID, "empty template document")
		}
		return nil, webclip.Errorf(webclip.EINVALID, "decoding template: %v", err)
	}

	t, err := f.toTemplate()
	if err != nil {
		return nil, err
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (f *templateFile) toTemplate() (*webclip.Template, error) {
	if f.Performance.MaxExtractionTime < 0 || math.IsInf(f.Performance.MaxExtractionTime, 0) || math.IsNaN(f.Performance.MaxExtractionTime) {
		return nil, webclip.Errorf(webclip.EINVALID, "template %q: invalid max_extraction_time", f.Name)
	}

	t := &webclip.Template{
		Name:            f.Name,
		Version:         f.Version,
		Domains:         f.Domains,
		Priority:        f.Priority,
		Selectors:       make(map[webclip.Field][]webclip.SelectorRule),
		TitleSeparators: f.TitleSeparators,
		PostProcess:     f.PostProcess,
		Exclude: webclip.ExcludePatterns{
			Classes: f.Exclude.Classes,
			IDs:     f.Exclude.IDs,
			Tags:    f.Exclude.Tags,
		},
		Quality: webclip.Quality{
			RequireTitle:     f.Quality.RequireTitle,
			RequireContent:   f.Quality.RequireContent,
			MinContentLength: f.Quality.MinContentLength,
			MaxTitleLength:   f.Quality.MaxTitleLength,
		},
		Strategies: webclip.StrategyPolicy{
			Primary: webclip.Strategy(f.Strategies.Primary),
			Options: make(map[webclip.Strategy]webclip.StrategyOptions),
		},
		Performance: webclip.Performance{
			MaxDocumentSize:   f.Performance.MaxDocumentSize,
			MaxExtractionTime: time.Duration(f.Performance.MaxExtractionTime * float64(time.Second)),
		},
		Output: webclip.Output{
			Format:          f.Output.Format,
			HeaderTemplate:  f.Output.HeaderTemplate,
			IncludeMetadata: f.Output.IncludeMetadata,
			MetadataFields:  f.Output.MetadataFields,
		},
	}

	for _, s := range f.Strategies.Fallback {
		t.Strategies.Fallback = append(t.Strategies.Fallback, webclip.Strategy(s))
	}
	for s, o := range map[webclip.Strategy]*optionsFile{
		webclip.StrategyCSS:         f.Strategies.CSSOptions,
		webclip.StrategyXPath:       f.Strategies.XPathOptions,
		webclip.StrategyTextPattern: f.Strategies.TextPatternOptions,
	} {
		if o != nil {
			t.Strategies.Options[s] = webclip.StrategyOptions{MaxMatches: o.MaxMatches}
		}
	}

	for field, rules := range map[webclip.Field][]ruleFile{
		webclip.FieldTitle:   f.Selectors.Title,
		webclip.FieldContent: f.Selectors.Content,
		webclip.FieldAuthor:  f.Selectors.Author,
		webclip.FieldDate:    f.Selectors.Date,
		webclip.FieldCover:   f.Selectors.Cover,
		webclip.FieldImages:  f.Selectors.Images,
	} {
		if len(rules) > 0 {
			t.Selectors[field] = toRules(rules)
		}
	}

	if len(f.Selectors.Metadata) > 0 {
		t.Metadata = make(map[string][]webclip.SelectorRule, len(f.Selectors.Metadata))
		for key, rules := range f.Selectors.Metadata {
			t.Metadata[key] = toRules(rules)
		}
	}

	if len(f.CMSPatterns) > 0 {
		t.CMSPatterns = make(map[webclip.CMS]map[webclip.Field][]webclip.SelectorRule, len(f.CMSPatterns))
		for cms, fields := range f.CMSPatterns {
			overrides := make(map[webclip.Field][]webclip.SelectorRule, len(fields))
			for field, rules := range fields {
				overrides[webclip.Field(field)] = toRules(rules)
			}
			t.CMSPatterns[webclip.CMS(cms)] = overrides
		}
	}

	return t, nil
}

func toRules(in []ruleFile) []webclip.SelectorRule {
	out := make([]webclip.SelectorRule, 0, len(in))
	for _, r := range in {
		rule := webclip.SelectorRule{
			Selector:  r.Selector,
			Strategy:  webclip.Strategy(r.Strategy),
			Attribute: r.Attribute,
			Pattern:   r.Pattern,
			Path:      r.Path,
		}
		if r.Validation != nil {
			rule.Validation = &webclip.Validation{
				DomainContains: r.Validation.DomainContains,
				MinLength:      r.Validation.MinLength,
			}
		}
		out = append(out, rule)
	}
	return out
}
