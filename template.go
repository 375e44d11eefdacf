package webclip

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// GenericTemplateName names the built-in template that matches every host.
const GenericTemplateName = "generic"

// WildcardDomain matches any host.
const WildcardDomain = "*"

// Template defaults applied by Normalize when a template leaves them unset.
const (
	DefaultMaxMatches        = 20
	DefaultMaxDocumentSize   = 10 << 20
	DefaultMaxExtractionTime = 10 * time.Second
	DefaultOutputFormat      = "markdown"
)

// DefaultHeaderTemplate is used when a template declares no header.
const DefaultHeaderTemplate = "# {title}\n\n**Author:** {author}\n**Date:** {date}\n**Source:** {source}\n\n---"

// DefaultMetadataFields is surfaced when a template lists no metadata fields.
var DefaultMetadataFields = []string{MetaTitle, MetaAuthor, MetaDate, MetaDescription, MetaImage, MetaWordCount, MetaReadingTime, MetaSource}

// Strategy identifies the technique used to evaluate a selector rule.
// The set is closed: css, xpath and text_pattern.
type Strategy string

// Supported extraction strategies.
const (
	StrategyCSS         Strategy = "css"
	StrategyXPath       Strategy = "xpath"
	StrategyTextPattern Strategy = "text_pattern"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{StrategyCSS, StrategyXPath, StrategyTextPattern}

// Valid reports whether s is one of the supported strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyCSS, StrategyXPath, StrategyTextPattern:
		return true
	}
	return false
}

// Field names a primary article field.
type Field string

// Primary fields resolved for every template.
const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldAuthor  Field = "author"
	FieldDate    Field = "date"
	FieldCover   Field = "cover"
	FieldImages  Field = "images"
)

// PrimaryFields lists primary fields in resolution order.
var PrimaryFields = []Field{FieldTitle, FieldContent, FieldAuthor, FieldDate, FieldCover, FieldImages}

// Metadata keys with special handling.
const (
	MetaTitle        = "title"
	MetaAuthor       = "author"
	MetaDate         = "date"
	MetaImage        = "image"
	MetaSource       = "source"
	MetaDescription  = "description"
	MetaModifiedDate = "modified_date"
	MetaCanonicalURL = "canonical_url"
	MetaAuthorAvatar = "author_avatar"
	MetaTags         = "tags"
	MetaCategories   = "categories"
	MetaWordCount    = "word_count"
	MetaReadingTime  = "reading_time"
	MetaContentHash  = "content_hash"
)

// ValueKind describes how a resolved value is shaped.
type ValueKind int

// Value kinds.
const (
	KindText ValueKind = iota // whitespace-normalized text
	KindHTML                  // inner HTML
	KindList                  // all matches, de-duplicated
	KindURL                   // text resolved against the page URL
	KindDate                  // text normalized to YYYY-MM-DD when parseable
)

// KindOf returns the value kind for a primary field or metadata key.
func KindOf(name string) ValueKind {
	switch name {
	case string(FieldContent):
		return KindHTML
	case string(FieldImages), MetaTags, MetaCategories:
		return KindList
	case string(FieldCover), MetaImage, MetaAuthorAvatar, MetaCanonicalURL:
		return KindURL
	case string(FieldDate), MetaModifiedDate:
		return KindDate
	}
	return KindText
}

// CMS identifies a content-management system by its structural fingerprint.
type CMS string

// Content-management systems with known fingerprints.
const (
	CMSUnknown   CMS = ""
	CMSWordPress CMS = "wordpress"
	CMSGhost     CMS = "ghost"
	CMSSubstack  CMS = "substack"
	CMSMedium    CMS = "medium"
	CMSDrupal    CMS = "drupal"
	CMSHugo      CMS = "hugo"
	CMSBlogger   CMS = "blogger"
)

// KnownCMS lists every CMS a template may carry overrides for.
var KnownCMS = []CMS{CMSWordPress, CMSGhost, CMSSubstack, CMSMedium, CMSDrupal, CMSHugo, CMSBlogger}

// Named content transforms applied after resolution.
const (
	TransformRemoveScripts  = "remove_scripts"
	TransformRemoveStyles   = "remove_styles"
	TransformTrimWhitespace = "trim_whitespace"
	TransformNormalizeLinks = "normalize_links"
	TransformCleanHTML      = "clean_html"
)

// KnownTransforms lists every transform name a template may reference.
var KnownTransforms = []string{
	TransformRemoveScripts,
	TransformRemoveStyles,
	TransformTrimWhitespace,
	TransformNormalizeLinks,
	TransformCleanHTML,
}

// Validation constrains the value a rule may produce.
type Validation struct {
	// DomainContains requires the value to contain at least one substring.
	DomainContains []string

	// MinLength requires at least this many characters.
	MinLength int
}

// Check reports whether value satisfies the constraint.
// A nil Validation accepts every value.
func (v *Validation) Check(value string) bool {
	if v == nil {
		return true
	}
	if v.MinLength > 0 && len([]rune(value)) < v.MinLength {
		return false
	}
	if len(v.DomainContains) == 0 {
		return true
	}
	for _, s := range v.DomainContains {
		if strings.Contains(value, s) {
			return true
		}
	}
	return false
}

// SelectorRule is one candidate extraction instruction for a field.
type SelectorRule struct {
	// ID identifies the rule in results, e.g. "generic/title/0".
	ID string

	Selector  string
	Strategy  Strategy
	Attribute string

	// Pattern is a regular expression; capture group 1 becomes the value.
	Pattern string

	// Path reads a field from a structured-data block, e.g. "$.author.name".
	Path string

	Validation *Validation
}

// ExcludePatterns lists elements pruned from a document before resolution.
type ExcludePatterns struct {
	Classes []string
	IDs     []string
	Tags    []string
}

// Empty reports whether nothing would be pruned.
func (e ExcludePatterns) Empty() bool {
	return len(e.Classes) == 0 && len(e.IDs) == 0 && len(e.Tags) == 0
}

// Quality holds the thresholds checked by the quality gate.
type Quality struct {
	RequireTitle     bool
	RequireContent   bool
	MinContentLength int
	MaxTitleLength   int
}

// StrategyOptions tunes a single strategy.
type StrategyOptions struct {
	// MaxMatches caps list-valued fields.
	MaxMatches int
}

// StrategyPolicy orders strategies for resolution.
type StrategyPolicy struct {
	Primary  Strategy
	Fallback []Strategy
	Options  map[Strategy]StrategyOptions
}

// Order returns the primary strategy followed by the fallbacks.
func (p StrategyPolicy) Order() []Strategy {
	order := make([]Strategy, 0, len(p.Fallback)+1)
	order = append(order, p.Primary)
	return append(order, p.Fallback...)
}

// MaxMatches returns the list cap for s.
func (p StrategyPolicy) MaxMatches(s Strategy) int {
	if opts, ok := p.Options[s]; ok && opts.MaxMatches > 0 {
		return opts.MaxMatches
	}
	return DefaultMaxMatches
}

// Performance bounds a single extraction.
type Performance struct {
	MaxDocumentSize   int
	MaxExtractionTime time.Duration
}

// Output describes how the result is rendered.
type Output struct {
	Format          string
	HeaderTemplate  string
	IncludeMetadata bool
	MetadataFields  []string
}

// Template is a declarative ruleset for one site or class of sites.
type Template struct {
	Name     string
	Version  string
	Domains  []string
	Priority int

	Selectors   map[Field][]SelectorRule
	Metadata    map[string][]SelectorRule
	CMSPatterns map[CMS]map[Field][]SelectorRule

	// TitleSeparators cut site suffixes such as " - Example Blog" from titles.
	TitleSeparators []string

	PostProcess []string
	Exclude     ExcludePatterns
	Quality     Quality
	Strategies  StrategyPolicy
	Performance Performance
	Output      Output
}

// IsGeneric reports whether t is the universal fallback template.
func (t *Template) IsGeneric() bool {
	return t.Name == GenericTemplateName
}

// Normalize fills defaults and assigns rule IDs.
func (t *Template) Normalize() {
	if t.Strategies.Primary == "" {
		t.Strategies.Primary = StrategyCSS
		if t.Strategies.Fallback == nil {
			t.Strategies.Fallback = []Strategy{StrategyTextPattern, StrategyXPath}
		}
	}
	if t.Performance.MaxDocumentSize == 0 {
		t.Performance.MaxDocumentSize = DefaultMaxDocumentSize
	}
	if t.Performance.MaxExtractionTime == 0 {
		t.Performance.MaxExtractionTime = DefaultMaxExtractionTime
	}
	if t.Output.Format == "" {
		t.Output.Format = DefaultOutputFormat
	}
	if t.Output.HeaderTemplate == "" {
		t.Output.HeaderTemplate = DefaultHeaderTemplate
	}
	if len(t.Output.MetadataFields) == 0 {
		t.Output.MetadataFields = append([]string(nil), DefaultMetadataFields...)
	}

	for field, rules := range t.Selectors {
		assignIDs(t.Name, string(field), rules)
	}
	for key, rules := range t.Metadata {
		assignIDs(t.Name, "metadata."+key, rules)
	}
	for cms, fields := range t.CMSPatterns {
		for field, rules := range fields {
			assignIDs(t.Name, "cms."+string(cms)+"."+string(field), rules)
		}
	}
}

func assignIDs(scope, field string, rules []SelectorRule) {
	for i := range rules {
		if rules[i].ID == "" {
			rules[i].ID = fmt.Sprintf("%s/%s/%d", scope, field, i)
		}
	}
}

// Validate returns an error if the template violates a structural invariant.
func (t *Template) Validate() error {
	if t.Name == "" {
		return Errorf(EINVALID, "template name required")
	}
	if len(t.Domains) == 0 {
		return Errorf(EINVALID, "template %q: at least one domain required", t.Name)
	}
	if t.IsGeneric() && !contains(t.Domains, WildcardDomain) {
		return Errorf(EINVALID, "template %q: generic template must include the %q domain", t.Name, WildcardDomain)
	}

	if err := t.validateStrategies(); err != nil {
		return err
	}

	allowed := make(map[Strategy]bool)
	for _, s := range t.Strategies.Order() {
		allowed[s] = true
	}

	for field, rules := range t.Selectors {
		if !isPrimaryField(field) {
			return Errorf(EINVALID, "template %q: unknown field %q", t.Name, field)
		}
		if err := validateRules(t.Name, string(field), rules, allowed); err != nil {
			return err
		}
	}
	for key, rules := range t.Metadata {
		if err := validateRules(t.Name, "metadata."+key, rules, allowed); err != nil {
			return err
		}
	}
	for cms, fields := range t.CMSPatterns {
		if !containsCMS(KnownCMS, cms) {
			return Errorf(EINVALID, "template %q: unknown cms %q", t.Name, cms)
		}
		for field, rules := range fields {
			switch field {
			case FieldTitle, FieldContent, FieldAuthor, FieldDate:
			default:
				return Errorf(EINVALID, "template %q: cms %q cannot override field %q", t.Name, cms, field)
			}
			if err := validateRules(t.Name, "cms."+string(cms)+"."+string(field), rules, allowed); err != nil {
				return err
			}
		}
	}

	for _, name := range t.PostProcess {
		if !contains(KnownTransforms, name) {
			return Errorf(EINVALID, "template %q: unknown post-process transform %q", t.Name, name)
		}
	}

	if t.Quality.MinContentLength < 0 || t.Quality.MaxTitleLength < 0 {
		return Errorf(EINVALID, "template %q: quality thresholds must not be negative", t.Name)
	}
	if t.Performance.MaxDocumentSize < 0 || t.Performance.MaxExtractionTime < 0 {
		return Errorf(EINVALID, "template %q: performance bounds must not be negative", t.Name)
	}
	if t.Output.Format != "" && t.Output.Format != DefaultOutputFormat {
		return Errorf(EINVALID, "template %q: unsupported output format %q", t.Name, t.Output.Format)
	}

	return nil
}

func (t *Template) validateStrategies() error {
	p := t.Strategies
	if !p.Primary.Valid() {
		return Errorf(EINVALID, "template %q: invalid primary strategy %q", t.Name, p.Primary)
	}
	seen := map[Strategy]bool{p.Primary: true}
	for _, s := range p.Fallback {
		if !s.Valid() {
			return Errorf(EINVALID, "template %q: invalid fallback strategy %q", t.Name, s)
		}
		if seen[s] {
			return Errorf(EINVALID, "template %q: strategy %q listed twice", t.Name, s)
		}
		seen[s] = true
	}
	for s := range p.Options {
		if !s.Valid() {
			return Errorf(EINVALID, "template %q: options for unknown strategy %q", t.Name, s)
		}
	}
	return nil
}

func validateRules(tmpl, field string, rules []SelectorRule, allowed map[Strategy]bool) error {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.Strategy == "" {
			return Errorf(EINVALID, "template %q: %s rule %d: strategy required", tmpl, field, i)
		}
		if !r.Strategy.Valid() {
			return Errorf(EINVALID, "template %q: %s rule %d: invalid strategy %q", tmpl, field, i, r.Strategy)
		}
		if !allowed[r.Strategy] {
			return Errorf(EINVALID, "template %q: %s rule %d: strategy %q is neither primary nor fallback", tmpl, field, i, r.Strategy)
		}

		switch r.Strategy {
		case StrategyCSS, StrategyXPath:
			if r.Selector == "" {
				return Errorf(EINVALID, "template %q: %s rule %d: selector required", tmpl, field, i)
			}
		case StrategyTextPattern:
			if r.Pattern == "" && r.Path == "" {
				return Errorf(EINVALID, "template %q: %s rule %d: pattern or path required", tmpl, field, i)
			}
			if r.Path != "" && r.Selector == "" {
				return Errorf(EINVALID, "template %q: %s rule %d: path requires a block selector", tmpl, field, i)
			}
		}

		if TargetsMeta(r) && r.Attribute == "" {
			return Errorf(EINVALID, "template %q: %s rule %d: meta selector %q requires attribute", tmpl, field, i, r.Selector)
		}

		key := r.Selector
		if key == "" {
			key = "pattern:" + r.Pattern
		}
		if seen[key] {
			return Errorf(EINVALID, "template %q: %s has duplicate selector %q", tmpl, field, key)
		}
		seen[key] = true
	}
	return nil
}

var xpathMetaRe = regexp.MustCompile(`(?i)(^|/)meta($|\[|/)`)

// TargetsMeta reports whether the rule's selector ends on a meta element,
// whose value lives in an attribute rather than in text.
func TargetsMeta(r SelectorRule) bool {
	switch r.Strategy {
	case StrategyXPath:
		return xpathMetaRe.MatchString(lastXPathStep(r.Selector))
	case StrategyCSS, StrategyTextPattern:
		for _, c := range lastCompounds(r.Selector) {
			if strings.EqualFold(typeSelector(c), "meta") {
				return true
			}
		}
	}
	return false
}

// lastCompounds returns the final compound selector of each comma-separated
// group, so "head meta[name=a], p" yields ["meta[name=a]", "p"]. Commas,
// spaces and combinators inside brackets, parentheses or quotes are part of
// the compound.
func lastCompounds(selector string) []string {
	var (
		out      []string
		current  strings.Builder
		quote    rune
		depth    int
		boundary bool
	)
	for _, c := range selector {
		if quote == 0 && depth == 0 {
			switch c {
			case ',':
				out = append(out, current.String())
				current.Reset()
				boundary = false
				continue
			case ' ', '\t', '\n', '>', '+', '~':
				boundary = true
				continue
			}
			if boundary {
				current.Reset()
				boundary = false
			}
		}
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		}
		current.WriteRune(c)
	}
	return append(out, current.String())
}

// typeSelector returns the element name a compound selector starts with,
// or "" for compounds like ".byline" or "[rel=author]".
func typeSelector(compound string) string {
	if i := strings.IndexAny(compound, "[.#:"); i >= 0 {
		return compound[:i]
	}
	return compound
}

func lastXPathStep(expr string) string {
	depth := 0
	for i := len(expr) - 1; i >= 0; i-- {
		switch expr[i] {
		case ']':
			depth++
		case '[':
			depth--
		case '/':
			if depth == 0 {
				return expr[i:]
			}
		}
	}
	return expr
}

func isPrimaryField(f Field) bool {
	for _, p := range PrimaryFields {
		if p == f {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsCMS(list []CMS, c CMS) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
