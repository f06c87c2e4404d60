package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/judolhunter/internal/detector"
	"github.com/raysh454/judolhunter/internal/enumerator"
	"github.com/raysh454/judolhunter/internal/extractor"
	"github.com/raysh454/judolhunter/internal/fetcher"
	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/patterns"
	"github.com/raysh454/judolhunter/internal/progress"
	"github.com/raysh454/judolhunter/internal/quota"
	"github.com/raysh454/judolhunter/internal/utils"
)

var (
	ErrScanNotFound = errors.New("scan not found")
	ErrScanRunning  = errors.New("scan still running")
	ErrClosed       = errors.New("orchestrator closed")
	ErrTooManyURLs  = errors.New("too many urls for plan")
	ErrNoValidURLs  = errors.New("no valid urls")
	ErrRateLimited  = errors.New("too many submissions")
)

// Handle identifies one submitted URL. Rejected URLs carry Error and no
// ScanID.
type Handle struct {
	ScanID string `json:"scan_id,omitempty"`
	URL    string `json:"url"`
	Error  string `json:"error,omitempty"`
}

// Scan is a point-in-time view of one scan.
type Scan struct {
	ID        string            `json:"scan_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	URL       string            `json:"url"`
	Actor     string            `json:"-"`
	Depth     int               `json:"depth"`
	Crawl     bool              `json:"crawl"`
	State     model.ScanState   `json:"state"`
	StartedAt time.Time         `json:"started_at"`
	Result    *model.ScanResult `json:"result,omitempty"`
}

// Options are the collaborators of an Orchestrator. Nil fields get working
// defaults, except Fetcher which is required.
type Options struct {
	Fetcher   *fetcher.Fetcher
	Extractor *extractor.Extractor
	Detectors *detector.Suite
	Sink      progress.Sink

	// Gate is checked before every scanned URL, crawled pages included.
	Gate quota.Gate

	// Admission is checked once per Submit, with an empty domain.
	Admission quota.Gate

	// Plans limits how many URLs an actor may submit at once.
	Plans quota.PlanSource

	// OnFinish is called once per scan after its terminal event and before
	// Wait returns, from the scan's goroutine.
	OnFinish func(actor string, res *model.ScanResult)

	Logger logging.Logger
}

// scan is the orchestrator's private record of one URL scan.
type scan struct {
	id       string
	parentID string
	url      string
	actor    string
	depth    int
	crawl    bool
	started  time.Time
	emitter  *progress.Emitter
	cancel   context.CancelFunc
	done     chan struct{}

	mu     sync.Mutex
	state  model.ScanState
	result *model.ScanResult
}

func (s *scan) setState(st model.ScanState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *scan) currentState() model.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *scan) emit(kind model.EventKind, msg string, data map[string]any) {
	s.emitter.Emit(kind, s.currentState(), msg, data)
}

// Orchestrator runs URL scans: it fetches, extracts, detects, classifies and,
// in crawl mode, follows pages only the crawler was shown.
type Orchestrator struct {
	cfg       *Config
	fetcher   *fetcher.Fetcher
	extractor *extractor.Extractor
	detectors *detector.Suite
	sink      progress.Sink
	gate      quota.Gate
	admission quota.Gate
	plans     quota.PlanSource
	onFinish  func(string, *model.ScanResult)
	logger    logging.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	scansMu sync.Mutex
	scans   map[string]*scan
	closed  bool
}

// NewOrchestrator wires the scan pipeline.
func NewOrchestrator(cfg *Config, opts Options) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("orchestrator: %w", fetcher.ErrNilWebClient)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.Extractor == nil {
		opts.Extractor = extractor.New(logger)
	}
	if opts.Detectors == nil {
		opts.Detectors = detector.NewSuite(patterns.MustDefault())
	}
	if opts.Sink == nil {
		opts.Sink = progress.Discard
	}
	if opts.Gate == nil {
		opts.Gate = quota.AllowAll{}
	}
	if opts.Admission == nil {
		opts.Admission = quota.AllowAll{}
	}
	return &Orchestrator{
		cfg:       cfg,
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		detectors: opts.Detectors,
		sink:      opts.Sink,
		gate:      opts.Gate,
		admission: opts.Admission,
		plans:     opts.Plans,
		onFinish:  opts.OnFinish,
		logger:    logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		sem:       make(chan struct{}, cfg.MaxConcurrency),
		scans:     make(map[string]*scan),
	}, nil
}

// Submit starts one scan per valid URL and returns immediately. Duplicate
// URLs within one submission are scanned once. Scans keep running after ctx
// ends; use CancelScan or Close to stop them.
func (o *Orchestrator) Submit(ctx context.Context, urls []string, crawl bool, actor string) ([]Handle, error) {
	o.scansMu.Lock()
	closed := o.closed
	o.scansMu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	if o.plans != nil {
		plan := o.plans.PlanOf(ctx, actor)
		if !plan.AllowsURLs(len(urls)) {
			return nil, fmt.Errorf("%w: %d submitted, plan %s allows %d", ErrTooManyURLs, len(urls), plan.Name, plan.MaxURLsPerRequest)
		}
	}
	if d := o.admission.Check(ctx, actor, ""); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, d.Reason)
	}

	handles := make([]Handle, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	var accepted []*scan
	for _, raw := range urls {
		target, err := utils.NormalizeTarget(raw)
		if err != nil {
			handles = append(handles, Handle{URL: raw, Error: err.Error()})
			continue
		}
		key := utils.TargetKey(target)
		if seen[key] {
			continue
		}
		seen[key] = true
		s := o.newScan(target, actor, "", 0, crawl)
		accepted = append(accepted, s)
		handles = append(handles, Handle{ScanID: s.id, URL: target})
	}
	if len(accepted) == 0 {
		return handles, ErrNoValidURLs
	}

	// Scans belong to the orchestrator, not to the submitting request.
	base := context.WithoutCancel(ctx)
	for _, s := range accepted {
		scanCtx, cancel := context.WithCancel(base)
		s.cancel = cancel
		if !o.register(s, true) {
			cancel()
			return handles, ErrClosed
		}
		go func(s *scan) {
			defer o.wg.Done()
			defer cancel()
			o.run(scanCtx, s)
		}(s)
	}
	return handles, nil
}

func (o *Orchestrator) newScan(target, actor, parentID string, depth int, crawl bool) *scan {
	id := uuid.New().String()
	return &scan{
		id:       id,
		parentID: parentID,
		url:      target,
		actor:    actor,
		depth:    depth,
		crawl:    crawl,
		started:  time.Now().UTC(),
		emitter:  progress.NewEmitter(id, o.sink),
		done:     make(chan struct{}),
		state:    model.StatePending,
	}
}

// register records s. Top-level scans are also counted for Close, under the
// same lock that Close uses to stop admissions.
func (o *Orchestrator) register(s *scan, track bool) bool {
	o.scansMu.Lock()
	defer o.scansMu.Unlock()
	if o.closed {
		return false
	}
	o.scans[s.id] = s
	if track {
		o.wg.Add(1)
	}
	return true
}

func (o *Orchestrator) lookup(scanID string) (*scan, bool) {
	o.scansMu.Lock()
	defer o.scansMu.Unlock()
	s, ok := o.scans[scanID]
	return s, ok
}

// GetResult returns the final result of a finished scan.
func (o *Orchestrator) GetResult(scanID string) (*model.ScanResult, error) {
	s, ok := o.lookup(scanID)
	if !ok {
		return nil, ErrScanNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, ErrScanRunning
	}
	return s.result, nil
}

// GetScan returns a snapshot of a scan, finished or not.
func (o *Orchestrator) GetScan(scanID string) (Scan, error) {
	s, ok := o.lookup(scanID)
	if !ok {
		return Scan{}, ErrScanNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Scan{
		ID:        s.id,
		ParentID:  s.parentID,
		URL:       s.url,
		Actor:     s.actor,
		Depth:     s.depth,
		Crawl:     s.crawl,
		State:     s.state,
		StartedAt: s.started,
		Result:    s.result,
	}, nil
}

// Wait blocks until the scan finishes or ctx ends.
func (o *Orchestrator) Wait(ctx context.Context, scanID string) (*model.ScanResult, error) {
	s, ok := o.lookup(scanID)
	if !ok {
		return nil, ErrScanNotFound
	}
	select {
	case <-s.done:
		return o.GetResult(scanID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CancelScan stops a running scan. Cancelling a crawl root stops its whole
// crawl. Cancelling a finished scan is a no-op.
func (o *Orchestrator) CancelScan(scanID string) error {
	s, ok := o.lookup(scanID)
	if !ok {
		return ErrScanNotFound
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// Forget drops a finished scan from memory.
func (o *Orchestrator) Forget(scanID string) error {
	s, ok := o.lookup(scanID)
	if !ok {
		return ErrScanNotFound
	}
	select {
	case <-s.done:
	default:
		return ErrScanRunning
	}
	o.scansMu.Lock()
	delete(o.scans, scanID)
	o.scansMu.Unlock()
	return nil
}

// Prune forgets finished scans whose result is older than retention and
// returns their ids.
func (o *Orchestrator) Prune(retention time.Duration, now time.Time) []string {
	o.scansMu.Lock()
	defer o.scansMu.Unlock()
	var pruned []string
	for id, s := range o.scans {
		s.mu.Lock()
		res := s.result
		s.mu.Unlock()
		if res != nil && now.Sub(res.FinishedAt) >= retention {
			delete(o.scans, id)
			pruned = append(pruned, id)
		}
	}
	return pruned
}

// Close cancels every running scan and waits for them to finish.
func (o *Orchestrator) Close() {
	o.scansMu.Lock()
	o.closed = true
	running := make([]*scan, 0, len(o.scans))
	for _, s := range o.scans {
		running = append(running, s)
	}
	o.scansMu.Unlock()

	for _, s := range running {
		if s.cancel != nil {
			s.cancel()
		}
	}
	o.wg.Wait()
}

func (o *Orchestrator) acquire(ctx context.Context) bool {
	select {
	case o.sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) release() { <-o.sem }

// run drives a top-level scan to its terminal state.
func (o *Orchestrator) run(ctx context.Context, s *scan) {
	s.emit(model.EventStatus, msgStart, map[string]any{"url": s.url, "crawl": s.crawl})

	if !o.acquire(ctx) {
		o.finish(s, cancelledResult(s, nil))
		return
	}
	page := o.scanPage(ctx, s)
	o.release()

	if s.crawl && page.crawlable() {
		o.crawl(ctx, s, page)
		if ctx.Err() != nil {
			markCancelled(page.result)
		}
	}
	o.finish(s, page.result)
}

// ─── Single page pipeline ──────────────────────────────────────────────

// pageOutcome is what scanning one URL produced. The links feed discovery.
type pageOutcome struct {
	result       *model.ScanResult
	crawlerLinks []string
	browserLinks []string
}

func (p *pageOutcome) crawlable() bool {
	if p.result.Status == model.StatusError || p.result.Status == model.StatusCancelled {
		return false
	}
	return p.result.FetchInfo.Crawler.StatusCode != model.StatusNetworkFailure && p.result.FetchInfo.Crawler.ErrorKind == ""
}

func newResult(s *scan) *model.ScanResult {
	return &model.ScanResult{
		ScanID:    s.id,
		ParentID:  s.parentID,
		URL:       s.url,
		Depth:     s.depth,
		RiskLevel: model.RiskLow,
		StartedAt: s.started,
	}
}

func cancelledResult(s *scan, res *model.ScanResult) *model.ScanResult {
	if res == nil {
		res = newResult(s)
	}
	markCancelled(res)
	return res
}

func markCancelled(res *model.ScanResult) {
	res.Status = model.StatusCancelled
	res.ErrorKind = model.ErrKindCancelled
	res.Error = msgCancelled
}

func failResult(res *model.ScanResult, kind model.ErrorKind, msg string) {
	res.Status = model.StatusError
	res.ErrorKind = kind
	res.Error = msg
}

// scanPage runs quota, fetch, extraction, detection and classification for
// one URL. It never returns a nil result.
func (o *Orchestrator) scanPage(ctx context.Context, s *scan) *pageOutcome {
	res := newResult(s)
	out := &pageOutcome{result: res}

	if ctx.Err() != nil {
		markCancelled(res)
		return out
	}

	if d := o.gate.Check(ctx, s.actor, utils.QuotaDomain(s.url)); !d.Allowed {
		failResult(res, model.ErrKindQuotaExceeded, d.Reason)
		return out
	}

	s.setState(model.StateFetching)
	s.emit(model.EventProgress, msgFetchCrawler, nil)
	s.emit(model.EventProgress, msgFetchBrowser, nil)
	crawler, browser := o.fetcher.FetchDual(ctx, s.url)
	res.FetchInfo = model.FetchInfo{Crawler: crawler.Meta(), Browser: browser.Meta()}

	if ctx.Err() != nil {
		markCancelled(res)
		return out
	}
	s.emit(model.EventProgress, fetchResultMessage("Googlebot", &crawler), map[string]any{"status_code": crawler.StatusCode})
	s.emit(model.EventProgress, fetchResultMessage("Browser", &browser), map[string]any{"status_code": browser.StatusCode})

	if !crawler.OK() && !browser.OK() {
		s.emit(model.EventProgress, msgFetchFailed, nil)
		failResult(res, model.ErrKindNetwork, fetchFailure(&crawler, &browser))
		return out
	}

	s.setState(model.StateExtracting)
	cache := o.extractor.NewCache(&crawler, &browser)

	o.detect(ctx, s, cache, res)
	if res.Status == model.StatusError {
		return out
	}
	if ctx.Err() != nil {
		markCancelled(res)
		return out
	}

	if crawler.OK() {
		out.crawlerLinks = cache.Get(model.IdentityCrawler).Links
	}
	if browser.OK() {
		out.browserLinks = cache.Get(model.IdentityBrowser).Links
	}
	return out
}

func fetchFailure(crawler, browser *model.FetchResult) string {
	parts := make([]string, 0, 2)
	for _, r := range []*model.FetchResult{crawler, browser} {
		if r.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: %s", r.Identity, r.Err.Error()))
		}
	}
	if len(parts) == 0 {
		return "no response received"
	}
	return strings.Join(parts, "; ")
}

// detect runs the five detectors and the classifier, storing each finding on
// res as soon as it exists. A panic in any of them turns the scan into an
// error but keeps what was already found.
func (o *Orchestrator) detect(ctx context.Context, s *scan, cache *extractor.Cache, res *model.ScanResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("detector panic",
				logging.Field{Key: "scan_id", Value: s.id},
				logging.Field{Key: "url", Value: s.url},
				logging.Field{Key: "panic", Value: fmt.Sprint(r)})
			failResult(res, model.ErrKindInternal, fmt.Sprintf("internal error: %v", r))
		}
	}()

	crawlerText := cache.Get(model.IdentityCrawler).VisibleText
	browserText := cache.Get(model.IdentityBrowser).VisibleText
	primary := cache.Get(cache.Primary())
	if primary.ParseFailed {
		res.Issues = append(res.Issues, "unparseable_html")
	}

	s.setState(model.StateDetecting)

	s.emit(model.EventProgress, msgCloaking, nil)
	res.Findings.Cloaking = o.detectors.Cloaking(cache.Result(model.IdentityCrawler), cache.Result(model.IdentityBrowser), crawlerText, browserText)
	switch {
	case res.Findings.Cloaking.Inconclusive:
		s.emit(model.EventProgress, msgCloakingSkip, nil)
		res.Issues = append(res.Issues, "cloaking_inconclusive")
	case res.Findings.Cloaking.Detected:
		s.emit(model.EventProgress, fmt.Sprintf(msgCloakingFound, res.Findings.Cloaking.Similarity*100), map[string]any{"similarity": res.Findings.Cloaking.Similarity})
	}
	if ctx.Err() != nil {
		return
	}

	s.emit(model.EventProgress, msgKeywords, nil)
	res.Findings.Keywords = o.detectors.Keywords(primary)
	if res.Findings.Keywords.Detected {
		s.emit(model.EventProgress, fmt.Sprintf(msgKeywordsFound, len(res.Findings.Keywords.Evidence)), nil)
	}

	s.emit(model.EventProgress, msgLinks, nil)
	res.Findings.Links = o.detectors.Links(primary)
	if res.Findings.Links.Detected {
		s.emit(model.EventProgress, fmt.Sprintf(msgLinksFound, res.Findings.Links.Count), nil)
	}

	s.emit(model.EventProgress, msgHidden, nil)
	res.Findings.Hidden = o.detectors.Hidden(primary)
	if res.Findings.Hidden.Detected {
		s.emit(model.EventProgress, fmt.Sprintf(msgHiddenFound, res.Findings.Hidden.Count), nil)
	}

	s.emit(model.EventProgress, msgMeta, nil)
	res.Findings.Meta = o.detectors.Meta(primary)
	if res.Findings.Meta.Detected {
		s.emit(model.EventProgress, fmt.Sprintf(msgMetaFound, res.Findings.Meta.Count), nil)
	}

	res.Status, res.RiskLevel = detector.Classify(res.Findings)
	for _, f := range res.Findings.All() {
		if f.IsDetected() {
			res.Issues = append(res.Issues, string(f.Kind()))
		}
	}
	s.setState(model.StateClassified)
}

// finish publishes the terminal result and event of a scan.
func (o *Orchestrator) finish(s *scan, res *model.ScanResult) {
	res.FinishedAt = time.Now().UTC()
	res.DurationMS = float64(res.FinishedAt.Sub(res.StartedAt).Microseconds()) / 1000

	terminal := model.StateDone
	if res.Status == model.StatusError || res.Status == model.StatusCancelled {
		terminal = model.StateError
	}

	s.mu.Lock()
	s.result = res
	s.mu.Unlock()

	data := map[string]any{"result": res}
	s.emit(model.EventProgress, finalMessage(res), data)
	s.setState(terminal)
	switch {
	case res.Status == model.StatusCancelled:
		s.emit(model.EventError, msgCancelled, map[string]any{"error_kind": string(model.ErrKindCancelled)})
	case res.ErrorKind == model.ErrKindQuotaExceeded:
		s.emit(model.EventError, fmt.Sprintf(msgQuotaDenied, res.Error), map[string]any{"error_kind": string(res.ErrorKind)})
	case res.Status == model.StatusError:
		s.emit(model.EventError, failedMessage(res.Error), map[string]any{"error_kind": string(res.ErrorKind)})
	default:
		s.emit(model.EventComplete, msgDone, data)
	}

	o.logger.Info("scan finished",
		logging.Field{Key: "scan_id", Value: s.id},
		logging.Field{Key: "url", Value: s.url},
		logging.Field{Key: "status", Value: string(res.Status)},
		logging.Field{Key: "risk", Value: string(res.RiskLevel)},
		logging.Field{Key: "duration_ms", Value: res.DurationMS})

	if o.onFinish != nil {
		o.onFinish(s.actor, res)
	}
	close(s.done)
}

// ─── Crawl driver ──────────────────────────────────────────────────────

type crawlJob struct {
	url   string
	depth int
}

// crawl scans pages reachable only through the crawler's view of root, level
// by level, on a fixed pool of workers. The queue is sized so admission never
// blocks: the frontier admits at most MaxPages pages.
func (o *Orchestrator) crawl(ctx context.Context, root *scan, first *pageOutcome) {
	cfg := o.cfg.Crawl
	front := enumerator.NewFrontier(root.url, cfg.MaxDepth, cfg.MaxPages)
	queue := make(chan crawlJob, cfg.MaxPages)

	var deadline time.Time
	if cfg.Budget > 0 {
		deadline = time.Now().Add(cfg.Budget)
	}

	var (
		pending   sync.WaitGroup
		mu        sync.Mutex
		crawled   []model.CrawledPage
		noteLimit sync.Once
		noteTime  sync.Once
	)

	expand := func(out *pageOutcome, depth int) []string {
		// Links were resolved against the final URL. The site boundary
		// stays the submitted root.
		found := enumerator.Discover(out.crawlerLinks, out.browserLinks, root.url, front, cfg.LinksPerPage)
		if !front.CanExpand(depth) {
			return found
		}
		admitted, bounded := front.Admit(depth, found)
		if bounded && depth+1 <= cfg.MaxDepth {
			noteLimit.Do(func() {
				root.emit(model.EventProgress, msgCrawlPageLimit, map[string]any{"error_kind": string(model.ErrKindCrawlBound), "max_pages": cfg.MaxPages})
			})
		}
		for _, u := range admitted {
			pending.Add(1)
			queue <- crawlJob{url: u, depth: depth + 1}
		}
		return found
	}

	root.setState(model.StateDiscovering)
	root.emit(model.EventProgress, msgDiscovering, nil)
	first.result.DiscoveredURLs = expand(first, 0)
	root.emit(model.EventProgress, fmt.Sprintf(msgDiscovered, len(first.result.DiscoveredURLs)), map[string]any{"discovered": first.result.DiscoveredURLs})

	go func() {
		pending.Wait()
		close(queue)
	}()

	var workers sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for job := range queue {
				if ctx.Err() != nil {
					pending.Done()
					continue
				}
				if !deadline.IsZero() && time.Now().After(deadline) {
					front.Stop()
					noteTime.Do(func() {
						root.emit(model.EventProgress, msgCrawlBudget, map[string]any{"error_kind": string(model.ErrKindCrawlBound), "budget": cfg.Budget.String()})
					})
					pending.Done()
					continue
				}

				page := o.crawlPage(ctx, root, job, expand)
				mu.Lock()
				crawled = append(crawled, model.CrawledPage{
					ScanID:    page.ScanID,
					URL:       page.URL,
					Depth:     page.Depth,
					Status:    page.Status,
					RiskLevel: page.RiskLevel,
				})
				mu.Unlock()
				pending.Done()
			}
		}()
	}
	workers.Wait()

	sort.Slice(crawled, func(i, j int) bool {
		if crawled[i].Depth != crawled[j].Depth {
			return crawled[i].Depth < crawled[j].Depth
		}
		return crawled[i].URL < crawled[j].URL
	})
	first.result.Crawled = crawled
}

// crawlPage scans one discovered page as a child of root and queues what it
// discovers in turn.
func (o *Orchestrator) crawlPage(ctx context.Context, root *scan, job crawlJob, expand func(*pageOutcome, int) []string) *model.ScanResult {
	child := o.newScan(job.url, root.actor, root.id, job.depth, false)
	childCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	child.cancel = cancel
	if !o.register(child, false) {
		return cancelledResult(child, nil)
	}

	child.emit(model.EventStatus, msgStart, map[string]any{"url": child.url, "parent_id": root.id, "depth": job.depth})
	if !o.acquire(childCtx) {
		res := cancelledResult(child, nil)
		o.finish(child, res)
		return res
	}
	page := o.scanPage(childCtx, child)
	o.release()

	if page.crawlable() {
		child.setState(model.StateDiscovering)
		page.result.DiscoveredURLs = expand(page, job.depth)
	}
	o.finish(child, page.result)
	return page.result
}
