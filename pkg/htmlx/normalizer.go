// Package htmlx rewrites HTML fragments fetched from the upstream CMS so the
// frontend can style them consistently: lazy images, safe external links,
// linkable headings, scrollable tables and tagged code blocks.
package htmlx

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	imageClass        = "content-image"
	externalLinkClass = "external-link"
	tableClass        = "content-table"
	tableWrapperClass = "table-responsive"
	codeBlockClass    = "code-block"

	altPlaceholder = "image"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// rules are independent and idempotent; applying the pipeline twice yields
// the same output as applying it once.
var rules = []func(*goquery.Document){
	lazyImages,
	externalLinks,
	headingAnchors,
	responsiveTables,
	codeBlocks,
}

// Normalize parses fragment, applies every rewrite rule and re-serializes
// the body content. Malformed input is recovered by the parser rather than
// rejected; the only error paths are parser/serializer internals.
func Normalize(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	for _, rule := range rules {
		rule(doc)
	}
	return doc.Find("body").Html()
}

// lazyImages marks every image for lazy loading and responsive styling, and
// backfills a placeholder alt text so screen readers never hit a bare img.
func lazyImages(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("loading"); !ok {
			s.SetAttr("loading", "lazy")
		}
		if _, ok := s.Attr("alt"); !ok {
			s.SetAttr("alt", altPlaceholder)
		}
		s.AddClass(imageClass)
	})
}

// externalLinks opens absolute links in a new tab with opener protection.
// Relative and fragment hrefs are left untouched.
func externalLinks(doc *goquery.Document) {
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") {
			return
		}
		s.SetAttr("target", "_blank")
		s.SetAttr("rel", "noopener noreferrer")
		s.AddClass(externalLinkClass)
	})
}

// headingAnchors gives each heading an id derived from its text so the
// frontend can build anchor links. Duplicate headings produce duplicate ids;
// authors own heading uniqueness, not this pass. Existing ids are kept.
func headingAnchors(doc *goquery.Document) {
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("id"); ok {
			return
		}
		if id := Slugify(s.Text()); id != "" {
			s.SetAttr("id", id)
		}
	})
}

// responsiveTables wraps each table in a scroll container, unless a previous
// pass already did.
func responsiveTables(doc *goquery.Document) {
	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		s.AddClass(tableClass)
		if s.Parent().HasClass(tableWrapperClass) {
			return
		}
		s.WrapHtml(`<div class="` + tableWrapperClass + `"></div>`)
	})
}

func codeBlocks(doc *goquery.Document) {
	doc.Find("pre").Each(func(_ int, s *goquery.Selection) {
		s.AddClass(codeBlockClass)
	})
}

// Slugify lowercases text and collapses whitespace runs to single hyphens.
func Slugify(text string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "-")
}
