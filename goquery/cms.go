package goquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webclip"
)

var _ webclip.CMSDetector = (*CMSRegistry)(nil)

// Fingerprint identifies a CMS from cheap DOM checks and carries the rules
// that override template rules for pages it generated.
type Fingerprint struct {
	CMS webclip.CMS

	// Generator matches a case-insensitive substring of the
	// <meta name="generator"> content.
	Generator string

	// Markers are CSS selectors; any match identifies the CMS.
	Markers []string

	Overrides map[webclip.Field][]webclip.SelectorRule
}

// CMSRegistry holds fingerprints in declaration order. When several match,
// the first declared wins.
type CMSRegistry struct {
	fingerprints []Fingerprint
}

// NewCMSRegistry creates an empty registry.
func NewCMSRegistry() *CMSRegistry {
	return &CMSRegistry{}
}

// NewDefaultCMSRegistry creates a registry holding the built-in fingerprints
// for WordPress, Ghost, Substack, Medium, Drupal, Hugo and Blogger.
func NewDefaultCMSRegistry() *CMSRegistry {
	r := NewCMSRegistry()
	for _, fp := range DefaultFingerprints() {
		r.Register(fp)
	}
	return r
}

// Register appends a fingerprint and assigns IDs of the form
// "cms:<name>/<field>/<index>" to override rules that have none.
func (r *CMSRegistry) Register(fp Fingerprint) {
	for field, rules := range fp.Overrides {
		for i := range rules {
			if rules[i].ID == "" {
				rules[i].ID = fmt.Sprintf("cms:%s/%s/%d", fp.CMS, field, i)
			}
		}
	}
	r.fingerprints = append(r.fingerprints, fp)
}

// Fingerprints returns the registered fingerprints in declaration order.
func (r *CMSRegistry) Fingerprints() []Fingerprint {
	return r.fingerprints
}

// Detect returns the first matching fingerprint as an overlay, or nil.
// The overlay's override lists are shared and must not be modified.
func (r *CMSRegistry) Detect(doc *webclip.Document) *webclip.CMSOverlay {
	if doc == nil || doc.Root == nil {
		return nil
	}
	gq := goquery.NewDocumentFromNode(doc.Root)
	generator := metaGenerator(gq)

	for _, fp := range r.fingerprints {
		if fp.matches(gq, generator) {
			return &webclip.CMSOverlay{CMS: fp.CMS, Overrides: fp.Overrides}
		}
	}
	return nil
}

func (fp Fingerprint) matches(doc *goquery.Document, generator string) bool {
	if fp.Generator != "" && strings.Contains(generator, strings.ToLower(fp.Generator)) {
		return true
	}
	for _, marker := range fp.Markers {
		if hasSelector(doc, marker) {
			return true
		}
	}
	return false
}

// metaGenerator returns the lowercased generator meta content.
func metaGenerator(doc *goquery.Document) string {
	generator := ""
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(name, "generator") {
			return true
		}
		content, _ := s.Attr("content")
		generator = strings.ToLower(content)
		return false
	})
	return generator
}

// hasSelector checks if the document contains at least one element matching the selector.
func hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}

func css(selector string) webclip.SelectorRule {
	return webclip.SelectorRule{Selector: selector, Strategy: webclip.StrategyCSS}
}

func cssAttr(selector, attribute string) webclip.SelectorRule {
	return webclip.SelectorRule{Selector: selector, Strategy: webclip.StrategyCSS, Attribute: attribute}
}

// DefaultFingerprints returns the built-in fingerprints in detection order.
// Each call returns fresh values.
func DefaultFingerprints() []Fingerprint {
	return []Fingerprint{
		{
			CMS:       webclip.CMSWordPress,
			Generator: "wordpress",
			Markers:   []string{`link[href*="/wp-content/"]`, `script[src*="/wp-includes/"]`, `[class*="wp-block-"]`},
			Overrides: map[webclip.Field][]webclip.SelectorRule{
				webclip.FieldTitle:   {css("h1.entry-title"), css("h1.wp-block-post-title")},
				webclip.FieldContent: {css("div.entry-content"), css("div.wp-block-post-content")},
				webclip.FieldAuthor:  {css(".entry-meta .author a"), css(".wp-block-post-author__name")},
				webclip.FieldDate:    {cssAttr("time.entry-date", "datetime"), cssAttr(".wp-block-post-date time", "datetime")},
			},
		},
		{
			CMS:       webclip.CMSGhost,
			Generator: "ghost",
			Markers:   []string{".gh-content", ".kg-card"},
			Overrides: map[webclip.Field][]webclip.SelectorRule{
				webclip.FieldTitle:   {css("h1.article-title"), css("h1.gh-article-title")},
				webclip.FieldContent: {css(".gh-content"), css("section.post-full-content")},
				webclip.FieldAuthor:  {css(".article-byline .author-name"), css(".gh-author-name")},
				webclip.FieldDate:    {cssAttr("time.byline-meta-date", "datetime"), cssAttr(".article-byline time", "datetime")},
			},
		},
		{
			CMS:     webclip.CMSSubstack,
			Markers: []string{`link[href*="substackcdn.com"]`, `script[src*="substackcdn.com"]`},
			Overrides: map[webclip.Field][]webclip.SelectorRule{
				webclip.FieldTitle:   {css("h1.post-title")},
				webclip.FieldContent: {css("div.available-content div.body.markup"), css("div.body.markup")},
				webclip.FieldDate:    {cssAttr(".post-date time", "datetime")},
			},
		},
		{
			CMS:     webclip.CMSMedium,
			Markers: []string{`meta[property="al:android:package"][content="com.medium.reader"]`, `[data-testid="storyTitle"]`},
			Overrides: map[webclip.Field][]webclip.SelectorRule{
				webclip.FieldTitle:   {css(`h1[data-testid="storyTitle"]`)},
				webclip.FieldContent: {css("article section")},
				webclip.FieldAuthor:  {css(`a[data-testid="authorName"]`)},
				webclip.FieldDate:    {css(`span[data-testid="storyPublishDate"]`)},
			},
		},
		{
			CMS:       webclip.CMSDrupal,
			Generator: "drupal",
			Markers:   []string{"[data-drupal-selector]", `script[src*="/core/misc/drupal.js"]`},
			Overrides: map[webclip.Field][]webclip.SelectorRule{
				webclip.FieldTitle:   {css("h1.page-title")},
				webclip.FieldContent: {css(".field--name-body"), css(".node__content")},
				webclip.FieldAuthor:  {css(".node__meta .field--name-uid")},
				webclip.FieldDate:    {cssAttr(".node__meta time", "datetime")},
			},
		},
		{
			CMS:       webclip.CMSHugo,
			Generator: "hugo",
			Overrides: map[webclip.Field][]webclip.SelectorRule{
				webclip.FieldTitle:   {css("h1.post-title")},
				webclip.FieldContent: {css(".post-content"), css("article .content")},
				webclip.FieldDate:    {cssAttr("article time[datetime]", "datetime")},
			},
		},
		{
			CMS:       webclip.CMSBlogger,
			Generator: "blogger",
			Markers:   []string{".post-outer .post-body"},
			Overrides: map[webclip.Field][]webclip.SelectorRule{
				webclip.FieldTitle:   {css("h3.post-title")},
				webclip.FieldContent: {css("div.post-body")},
				webclip.FieldAuthor:  {css(".post-author .fn")},
				webclip.FieldDate:    {cssAttr("abbr.published", "title"), css(".date-header span")},
			},
		},
	}
}
