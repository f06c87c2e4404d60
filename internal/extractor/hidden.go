package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MaxFragmentLength caps the runes kept per hidden fragment.
const MaxFragmentLength = 200

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)position\s*:\s*absolute.*(?:left|top)\s*:\s*-\d{4,}`),
	regexp.MustCompile(`(?i)overflow\s*:\s*hidden.*(?:height|width)\s*:\s*[01]px`),
	regexp.MustCompile(`(?i)text-indent\s*:\s*-\d{4,}`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0(?:px|em|rem|pt|%)?\s*(?:;|$|!)`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0(?:\.0+)?\s*(?:;|$|!)`),
}

// cssRule matches the innermost `selector { declarations }` pairs of a style
// sheet; @media wrappers are skipped over because their body contains braces.
var cssRule = regexp.MustCompile(`([^{}]+)\{([^{}]*)\}`)

var cssComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// IsHiddenStyle reports whether a CSS declaration block hides its element.
func IsHiddenStyle(decl string) bool {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return false
	}
	for _, re := range hiddenStylePatterns {
		if re.MatchString(decl) {
			return true
		}
	}
	return false
}

// hiddenFragments returns the text of every element hidden through an inline
// style, a <style> rule or the hidden attribute, in document order. Elements
// nested inside an already reported element are not reported again.
func hiddenFragments(doc *goquery.Document) []string {
	hidden := map[*html.Node]bool{}

	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		if IsHiddenStyle(s.AttrOr("style", "")) {
			markAll(hidden, s)
		}
	})
	doc.Find("[hidden]").Each(func(_ int, s *goquery.Selection) {
		markAll(hidden, s)
	})
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		for _, sel := range hiddenSelectors(s.Text()) {
			markAll(hidden, doc.Find(sel))
		}
	})

	fragments := []string{}
	if len(hidden) == 0 {
		return fragments
	}
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if !hidden[n] || hasHiddenAncestor(n, hidden) {
			return
		}
		if n.Data == "style" || n.Data == "script" {
			return
		}
		text := Truncate(NormalizeSpace(s.Text()), MaxFragmentLength)
		if text != "" {
			fragments = append(fragments, text)
		}
	})
	return fragments
}

func markAll(set map[*html.Node]bool, s *goquery.Selection) {
	for _, n := range s.Nodes {
		set[n] = true
	}
}

func hasHiddenAncestor(n *html.Node, set map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if set[p] {
			return true
		}
	}
	return false
}

// hiddenSelectors lists the selectors of style sheet rules whose declarations
// hide content. Selectors with pseudo-classes or pseudo-elements are dropped
// since they do not apply to the static document.
func hiddenSelectors(sheet string) []string {
	sheet = cssComment.ReplaceAllString(sheet, "")
	var out []string
	for _, m := range cssRule.FindAllStringSubmatch(sheet, -1) {
		if !IsHiddenStyle(m[2]) {
			continue
		}
		for _, sel := range strings.Split(m[1], ",") {
			sel = strings.TrimSpace(sel)
			if sel == "" || strings.HasPrefix(sel, "@") || strings.Contains(sel, ":") {
				continue
			}
			out = append(out, sel)
		}
	}
	return out
}
