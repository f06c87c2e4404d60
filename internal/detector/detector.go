// Package detector holds the five content-injection detectors and the risk
// classifier. Every detector is a pure function of its inputs and the shared
// pattern database.
package detector

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/raysh454/judolhunter/internal/extractor"
	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/patterns"
)

// CloakingThreshold is the similarity below which two responses are
// considered different pages.
const CloakingThreshold = 0.70

// HighRiskKeywordCount is the number of distinct keywords that makes a page
// high risk on its own.
const HighRiskKeywordCount = 3

const keywordContextRadius = 40

// Suite runs the detectors against one pattern database.
type Suite struct {
	db *patterns.Database
}

func NewSuite(db *patterns.Database) *Suite {
	return &Suite{db: db}
}

// ─── Cloaking ──────────────────────────────────────────────────────────

// Cloaking compares the visible text served to the crawler with the text
// served to the browser. When either fetch failed the result is inconclusive.
func (s *Suite) Cloaking(crawler, browser *model.FetchResult, crawlerText, browserText string) *model.CloakingFinding {
	f := &model.CloakingFinding{
		CrawlerLength: utf8.RuneCountInString(crawlerText),
		BrowserLength: utf8.RuneCountInString(browserText),
		Evidence:      []string{},
	}

	crawlerOK, browserOK := crawler.OK(), browser.OK()
	if !crawlerOK || !browserOK {
		f.Inconclusive = true
		if !crawlerOK {
			f.Evidence = append(f.Evidence, "crawler response missing: "+failureText(crawler))
		}
		if !browserOK {
			f.Evidence = append(f.Evidence, "browser response missing: "+failureText(browser))
		}
		return f
	}

	if crawler.FinalURL != browser.FinalURL {
		f.Evidence = append(f.Evidence, fmt.Sprintf("Different redirects: crawler -> %s, browser -> %s", crawler.FinalURL, browser.FinalURL))
	}
	if crawler.StatusCode != browser.StatusCode {
		f.Evidence = append(f.Evidence, fmt.Sprintf("Different status codes: crawler=%d, browser=%d", crawler.StatusCode, browser.StatusCode))
	}

	a := extractor.Truncate(crawlerText, extractor.CompareLimit)
	b := extractor.Truncate(browserText, extractor.CompareLimit)
	sim := Similarity(a, b)
	f.Similarity = math.Round(sim*1000) / 1000

	if sim < CloakingThreshold {
		f.Detected = true
		f.Evidence = append(f.Evidence, fmt.Sprintf("Very different content (similarity: %.1f%%)", sim*100))
		_, crawlerHit := s.db.ContainsKeyword(crawlerText)
		_, browserHit := s.db.ContainsKeyword(browserText)
		if crawlerHit && !browserHit {
			f.Evidence = append(f.Evidence, "Gambling content only appears in crawler response")
		}
	}
	return f
}

func failureText(r *model.FetchResult) string {
	if r == nil {
		return "not fetched"
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return fmt.Sprintf("status %d", r.StatusCode)
}

// ─── Gambling keywords ─────────────────────────────────────────────────

// Keywords scans the visible text and head metadata for gambling keywords.
// Evidence lists each distinct keyword once; Count is the total number of
// occurrences.
func (s *Suite) Keywords(c model.ExtractedContent) *model.KeywordFinding {
	var b strings.Builder
	b.WriteString(c.VisibleText)
	for _, field := range c.MetaFields() {
		b.WriteByte(' ')
		b.WriteString(c.Meta[field])
	}
	text := strings.ToLower(b.String())

	f := &model.KeywordFinding{Evidence: []string{}}
	for _, kw := range s.db.Keywords() {
		n := strings.Count(text, kw)
		if n == 0 {
			continue
		}
		f.Count += n
		f.Evidence = append(f.Evidence, kw)
		f.Matches = append(f.Matches, model.KeywordMatch{
			Keyword: kw,
			Count:   n,
			Context: keywordContext(text, kw),
		})
	}
	f.Detected = len(f.Evidence) > 0
	return f
}

func keywordContext(text, kw string) string {
	idx := strings.Index(text, kw)
	if idx < 0 {
		return ""
	}
	runes := []rune(text)
	start := utf8.RuneCountInString(text[:idx])
	end := start + utf8.RuneCountInString(kw) + keywordContextRadius
	start -= keywordContextRadius
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	return "..." + strings.TrimSpace(string(runes[start:end])) + "..."
}

// ─── Suspicious links ──────────────────────────────────────────────────

// Links tests the host and path of every link on the page, head relations
// included, against the known gambling domains and then the suspicious URL
// fragments. Links on the scanned site itself count like any other.
func (s *Suite) Links(c model.ExtractedContent) *model.LinkFinding {
	f := &model.LinkFinding{Evidence: []string{}}
	seen := make(map[string]bool, len(c.Links)+len(c.RelLinks))

	check := func(link string) {
		if seen[link] {
			return
		}
		seen[link] = true
		if m, ok := s.matchLink(link); ok {
			f.Matches = append(f.Matches, m)
			f.Evidence = append(f.Evidence, link)
		}
	}
	for _, link := range c.Links {
		check(link)
	}
	for _, rel := range c.RelLinks {
		check(rel.URL)
	}

	f.Count = len(f.Evidence)
	f.Detected = f.Count > 0
	return f
}

func (s *Suite) matchLink(link string) (model.LinkMatch, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return model.LinkMatch{}, false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range s.db.KnownDomains() {
		if strings.Contains(host, d) {
			return model.LinkMatch{URL: link, Reason: model.LinkReasonKnownDomain, Pattern: d}, true
		}
	}
	hostPath := host + strings.ToLower(u.Path)
	for _, frag := range s.db.URLFragments() {
		if strings.Contains(hostPath, frag) {
			return model.LinkMatch{URL: link, Reason: model.LinkReasonURLPattern, Pattern: frag}, true
		}
	}
	return model.LinkMatch{}, false
}

// ─── Hidden elements ───────────────────────────────────────────────────

// Hidden reports hidden fragments that contain a gambling keyword. Hidden
// text without one is ignored.
func (s *Suite) Hidden(c model.ExtractedContent) *model.HiddenFinding {
	f := &model.HiddenFinding{Fragments: len(c.HiddenTextFragments), Evidence: []string{}}
	for _, frag := range c.HiddenTextFragments {
		if _, ok := s.db.ContainsKeyword(frag); ok {
			f.Evidence = append(f.Evidence, frag)
		}
	}
	f.Count = len(f.Evidence)
	f.Detected = f.Count > 0
	return f
}

// ─── Meta injection ────────────────────────────────────────────────────

// Meta scans title, description, keywords and og:* for gambling keywords.
// Evidence entries read "field: keyword".
func (s *Suite) Meta(c model.ExtractedContent) *model.MetaFinding {
	f := &model.MetaFinding{Evidence: []string{}}
	for _, field := range c.MetaFields() {
		if kw, ok := s.db.ContainsKeyword(c.Meta[field]); ok {
			f.Evidence = append(f.Evidence, field+": "+kw)
		}
	}
	f.Count = len(f.Evidence)
	f.Detected = f.Count > 0
	return f
}
