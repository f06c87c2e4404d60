package model

type FindingKind string

const (
	KindCloaking         FindingKind = "cloaking"
	KindGamblingKeywords FindingKind = "gambling_keywords"
	KindSuspiciousLinks  FindingKind = "suspicious_links"
	KindHiddenElements   FindingKind = "hidden_elements"
	KindMetaInjection    FindingKind = "meta_injection"
)

// Finding is the output of one detector. The set of implementations is closed:
// the five *Finding types in this file.
type Finding interface {
	Kind() FindingKind
	IsDetected() bool
	EvidenceItems() []string
}

// CloakingFinding compares what the crawler and the browser were served.
// Inconclusive is set when one side could not be fetched; Detected is then
// always false.
type CloakingFinding struct {
	Detected      bool     `json:"detected"`
	Inconclusive  bool     `json:"inconclusive,omitempty"`
	Similarity    float64  `json:"similarity"`
	CrawlerLength int      `json:"crawler_length"`
	BrowserLength int      `json:"browser_length"`
	Evidence      []string `json:"evidence"`
}

func (f *CloakingFinding) Kind() FindingKind { return KindCloaking }
func (f *CloakingFinding) IsDetected() bool { return f != nil && f.Detected }
func (f *CloakingFinding) EvidenceItems() []string {
	if f == nil {
		return nil
	}
	return f.Evidence
}

// KeywordMatch is one distinct gambling keyword found in the page.
type KeywordMatch struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	Context string `json:"context"`
}

type KeywordFinding struct {
	Detected bool           `json:"detected"`
	Count    int            `json:"count"`
	Evidence []string       `json:"evidence"`
	Matches  []KeywordMatch `json:"matches,omitempty"`
}

func (f *KeywordFinding) Kind() FindingKind { return KindGamblingKeywords }
func (f *KeywordFinding) IsDetected() bool { return f != nil && f.Detected }
func (f *KeywordFinding) EvidenceItems() []string {
	if f == nil {
		return nil
	}
	return f.Evidence
}

// Reasons a link is considered suspicious.
const (
	LinkReasonKnownDomain = "known_domain"
	LinkReasonURLPattern  = "url_pattern"
)

type LinkMatch struct {
	URL     string `json:"url"`
	Reason  string `json:"reason"`
	Pattern string `json:"pattern,omitempty"`
}

type LinkFinding struct {
	Detected bool        `json:"detected"`
	Count    int         `json:"count"`
	Evidence []string    `json:"evidence"`
	Matches  []LinkMatch `json:"matches,omitempty"`
}

func (f *LinkFinding) Kind() FindingKind { return KindSuspiciousLinks }
func (f *LinkFinding) IsDetected() bool { return f != nil && f.Detected }
func (f *LinkFinding) EvidenceItems() []string {
	if f == nil {
		return nil
	}
	return f.Evidence
}

type HiddenFinding struct {
	Detected  bool     `json:"detected"`
	Count     int      `json:"count"`
	Fragments int      `json:"fragments_scanned"`
	Evidence  []string `json:"evidence"`
}

func (f *HiddenFinding) Kind() FindingKind { return KindHiddenElements }
func (f *HiddenFinding) IsDetected() bool { return f != nil && f.Detected }
func (f *HiddenFinding) EvidenceItems() []string {
	if f == nil {
		return nil
	}
	return f.Evidence
}

type MetaFinding struct {
	Detected bool     `json:"detected"`
	Count    int      `json:"count"`
	Evidence []string `json:"evidence"`
}

func (f *MetaFinding) Kind() FindingKind { return KindMetaInjection }
func (f *MetaFinding) IsDetected() bool { return f != nil && f.Detected }
func (f *MetaFinding) EvidenceItems() []string {
	if f == nil {
		return nil
	}
	return f.Evidence
}

// Findings groups the five detector outputs. A nil entry means the detector
// did not run, which happens when a scan fails part way through.
type Findings struct {
	Cloaking *CloakingFinding `json:"cloaking,omitempty"`
	Keywords *KeywordFinding  `json:"gambling_keywords,omitempty"`
	Links    *LinkFinding     `json:"suspicious_links,omitempty"`
	Hidden   *HiddenFinding   `json:"hidden_elements,omitempty"`
	Meta     *MetaFinding     `json:"meta_injection,omitempty"`
}

// All returns the findings that were computed, in detector order.
func (f Findings) All() []Finding {
	out := make([]Finding, 0, 5)
	if f.Cloaking != nil {
		out = append(out, f.Cloaking)
	}
	if f.Keywords != nil {
		out = append(out, f.Keywords)
	}
	if f.Links != nil {
		out = append(out, f.Links)
	}
	if f.Hidden != nil {
		out = append(out, f.Hidden)
	}
	if f.Meta != nil {
		out = append(out, f.Meta)
	}
	return out
}

// KeywordEvidenceCount is the number of distinct keywords matched.
func (f Findings) KeywordEvidenceCount() int {
	if f.Keywords == nil {
		return 0
	}
	return len(f.Keywords.Evidence)
}
