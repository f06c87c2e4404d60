// Package extractor turns a fetched page into the normalized view the
// detectors work on: visible text, absolute links, head metadata and the text
// of elements hidden with CSS.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/model"
)

// CompareLimit is the number of characters of visible text used for
// similarity scoring.
const CompareLimit = 5000

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Extractor parses pages. The zero value is not usable; call New.
type Extractor struct {
	logger logging.Logger
}

func New(logger logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Extractor{logger: logger.With(logging.Field{Key: "component", Value: "extractor"})}
}

// Extract builds ExtractedContent from a fetch result. It never fails: a
// missing body yields empty content and unparseable markup yields whatever
// could be recovered with ParseFailed set.
func (e *Extractor) Extract(res *model.FetchResult) model.ExtractedContent {
	if res == nil || !res.OK() || len(res.Body) == 0 {
		return emptyContent()
	}
	base := res.FinalURL
	if base == "" {
		base = res.URL
	}
	content, err := Parse(res.Body, res.ContentType(), base)
	if err != nil {
		e.logger.Warn("html extraction degraded",
			logging.Field{Key: "url", Value: res.URL},
			logging.Field{Key: "identity", Value: string(res.Identity)},
			logging.Field{Key: "error", Value: err.Error()})
	}
	return content
}

func emptyContent() model.ExtractedContent {
	return model.ExtractedContent{
		Links:               []string{},
		Meta:                map[string]string{},
		HiddenTextFragments: []string{},
	}
}

// Parse extracts content from an HTML body. contentType is used to pick the
// character set; baseURL resolves relative links. The returned error only
// reports degradation; the content is always usable.
func Parse(body []byte, contentType, baseURL string) (content model.ExtractedContent, err error) {
	content = emptyContent()
	defer func() {
		if r := recover(); r != nil {
			content = emptyContent()
			content.ParseFailed = true
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()

	root, perr := parseHTML(body, contentType)
	if perr != nil {
		content.ParseFailed = true
		return content, perr
	}

	base, _ := url.Parse(baseURL)
	doc := goquery.NewDocumentFromNode(root)

	content.VisibleText = visibleText(root)
	content.Meta = extractMeta(doc)
	content.HiddenTextFragments = hiddenFragments(doc)
	content.Links, content.RelLinks = collectLinks(root, base)
	return content, nil
}

func parseHTML(body []byte, contentType string) (*html.Node, error) {
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	} else {
		r = bytes.NewReader(body)
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return root, nil
}

var invisibleTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// visibleText joins every text node outside script-like elements with single
// spaces.
func visibleText(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && invisibleTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return NormalizeSpace(b.String())
}

// NormalizeSpace collapses runs of whitespace into one space and trims.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extractMeta(doc *goquery.Document) map[string]string {
	meta := map[string]string{}
	if title := NormalizeSpace(doc.Find("title").First().Text()); title != "" {
		meta[model.MetaTitle] = title
	}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(s.AttrOr("name", "")))
		if name == "" {
			name = strings.ToLower(strings.TrimSpace(s.AttrOr("property", "")))
		}
		content := NormalizeSpace(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		switch {
		case name == model.MetaDescription, name == model.MetaKeywords, strings.HasPrefix(name, "og:"):
			if _, seen := meta[name]; !seen {
				meta[name] = content
			}
		}
	})
	return meta
}
