package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/portalscan/portalscan/internal/browser"
	"github.com/portalscan/portalscan/internal/model"
)

// fakeSession serves canned HTML per URL. URLs mapped to an error fail the
// fetch; unmapped URLs fail with a generic FetchError.
type fakeSession struct {
	pages    map[string]string
	failures map[string]error
	fetched  []string
}

func (s *fakeSession) Navigate(_ context.Context, url string) (*browser.NavigateResult, error) {
	s.fetched = append(s.fetched, url)
	if err, ok := s.failures[url]; ok {
		return nil, err
	}
	html, ok := s.pages[url]
	if !ok {
		return nil, browser.NewFetchError(url, errors.New("not found"))
	}
	return &browser.NavigateResult{HTML: html, FinalURL: url, StatusCode: 200}, nil
}

func (s *fakeSession) Screenshot(_ context.Context) ([]byte, error) {
	return []byte{0x89, 0x50, 0x4e, 0x47}, nil
}

// recordedPage is one entry captured by the fake recorder.
type recordedPage struct {
	task   Task
	status model.PageStatus
	links  []string
}

// fakeRecorder captures every entry in memory. failAfter, when positive,
// makes the recorder fail once that many entries exist.
type fakeRecorder struct {
	entries   []recordedPage
	failAfter int
	finalStat model.CrawlStatus
	finalNote string
	finalized bool
}

func (r *fakeRecorder) RecordSuccess(task Task, _ *browser.NavigateResult, _ []byte, links []string) error {
	if r.failAfter > 0 && len(r.entries) >= r.failAfter {
		return errors.New("disk full")
	}
	r.entries = append(r.entries, recordedPage{task: task, status: model.PageStatusOK, links: links})
	return nil
}

func (r *fakeRecorder) RecordFailure(task Task, _ error) error {
	if r.failAfter > 0 && len(r.entries) >= r.failAfter {
		return errors.New("disk full")
	}
	r.entries = append(r.entries, recordedPage{task: task, status: model.PageStatusError})
	return nil
}

func (r *fakeRecorder) Finalize(status model.CrawlStatus, notes string) error {
	r.finalStat = status
	r.finalNote = notes
	r.finalized = true
	return nil
}

func linkPage(hrefs ...string) string {
	page := "<html><body>"
	for _, h := range hrefs {
		page += fmt.Sprintf("<a href=%q>link</a>", h)
	}
	return page + "</body></html>"
}

func TestCrawlExhaustsFrontier(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		pages: map[string]string{
			"https://portal.example.com/": linkPage("/a", "/b"),
			"https://portal.example.com/a": linkPage("/b", "/c"),
			"https://portal.example.com/b": linkPage("/"),
			"https://portal.example.com/c": linkPage(),
		},
	}
	recorder := &fakeRecorder{}

	c := New(session, recorder, Options{MaxDepth: 3, MaxPages: 100})
	summary, err := c.Crawl(context.Background(), "https://portal.example.com")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if summary.Reason != TerminationFrontierExhausted {
		t.Errorf("reason = %q, want %q", summary.Reason, TerminationFrontierExhausted)
	}
	if summary.PagesVisited != 4 || summary.PagesSucceeded != 4 || summary.PagesFailed != 0 {
		t.Errorf("summary = %+v, want 4 visited, 4 succeeded, 0 failed", summary)
	}

	// BFS order: root first, then its links in document order, then c.
	wantOrder := []string{
		"https://portal.example.com/",
		"https://portal.example.com/a",
		"https://portal.example.com/b",
		"https://portal.example.com/c",
	}
	if len(session.fetched) != len(wantOrder) {
		t.Fatalf("fetched %d pages, want %d: %v", len(session.fetched), len(wantOrder), session.fetched)
	}
	for i, want := range wantOrder {
		if session.fetched[i] != want {
			t.Errorf("fetch order[%d] = %q, want %q", i, session.fetched[i], want)
		}
	}

	if !recorder.finalized || recorder.finalStat != model.CrawlStatusComplete {
		t.Errorf("final status = %q (finalized=%v), want %q",
			recorder.finalStat, recorder.finalized, model.CrawlStatusComplete)
	}
}

func TestCrawlPageBudget(t *testing.T) {
	t.Parallel()

	// An unbounded site: every page links to two fresh children.
	session := &fakeSession{pages: map[string]string{}}
	for i := 0; i < 50; i++ {
		session.pages[fmt.Sprintf("https://portal.example.com/p%d", i)] =
			linkPage(fmt.Sprintf("/p%d", 2*i+1), fmt.Sprintf("/p%d", 2*i+2))
	}
	session.pages["https://portal.example.com/"] = linkPage("/p0", "/p1")
	recorder := &fakeRecorder{}

	c := New(session, recorder, Options{MaxDepth: 10, MaxPages: 5})
	summary, err := c.Crawl(context.Background(), "https://portal.example.com")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if summary.Reason != TerminationPageBudget {
		t.Errorf("reason = %q, want %q", summary.Reason, TerminationPageBudget)
	}
	if summary.PagesVisited != 5 {
		t.Errorf("visited = %d, want 5", summary.PagesVisited)
	}
	if recorder.finalStat != model.CrawlStatusPartial {
		t.Errorf("final status = %q, want %q", recorder.finalStat, model.CrawlStatusPartial)
	}
}

func TestCrawlDepthLimit(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		pages: map[string]string{
			"https://portal.example.com/":      linkPage("/depth1"),
			"https://portal.example.com/depth1": linkPage("/depth2"),
			"https://portal.example.com/depth2": linkPage("/depth3"),
		},
	}
	recorder := &fakeRecorder{}

	c := New(session, recorder, Options{MaxDepth: 1, MaxPages: 100})
	summary, err := c.Crawl(context.Background(), "https://portal.example.com")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if summary.PagesVisited != 2 {
		t.Errorf("visited = %d, want 2 (root plus depth 1)", summary.PagesVisited)
	}
	for _, url := range session.fetched {
		if url == "https://portal.example.com/depth2" {
			t.Error("depth-2 page should not have been fetched at maxDepth 1")
		}
	}
}

func TestCrawlFailedPagesRecordedAndBudgeted(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		pages: map[string]string{
			"https://portal.example.com/":  linkPage("/ok", "/broken"),
			"https://portal.example.com/ok": linkPage(),
		},
		failures: map[string]error{
			"https://portal.example.com/broken": browser.NewFetchError("https://portal.example.com/broken", errors.New("timeout")),
		},
	}
	recorder := &fakeRecorder{}

	c := New(session, recorder, Options{MaxDepth: 2, MaxPages: 100, MaxConsecutiveFailures: 5})
	summary, err := c.Crawl(context.Background(), "https://portal.example.com")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if summary.PagesVisited != 3 || summary.PagesSucceeded != 2 || summary.PagesFailed != 1 {
		t.Errorf("summary = %+v, want 3 visited, 2 succeeded, 1 failed", summary)
	}

	var failedEntry *recordedPage
	for i := range recorder.entries {
		if recorder.entries[i].status == model.PageStatusError {
			failedEntry = &recorder.entries[i]
		}
	}
	if failedEntry == nil {
		t.Fatal("failed page should still have a recorded entry")
	}
	if failedEntry.task.URL != "https://portal.example.com/broken" {
		t.Errorf("failed entry URL = %q", failedEntry.task.URL)
	}
}

func TestCrawlCircuitBreaker(t *testing.T) {
	t.Parallel()

	failures := map[string]error{}
	hrefs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		url := fmt.Sprintf("https://portal.example.com/dead%d", i)
		failures[url] = browser.NewFetchError(url, errors.New("connection refused"))
		hrefs = append(hrefs, fmt.Sprintf("/dead%d", i))
	}
	session := &fakeSession{
		pages:    map[string]string{"https://portal.example.com/": linkPage(hrefs...)},
		failures: failures,
	}
	recorder := &fakeRecorder{}

	c := New(session, recorder, Options{MaxDepth: 2, MaxPages: 100, MaxConsecutiveFailures: 3})
	summary, err := c.Crawl(context.Background(), "https://portal.example.com")

	if !errors.Is(err, ErrCircuitBreakerTripped) {
		t.Fatalf("Crawl() error = %v, want ErrCircuitBreakerTripped", err)
	}
	if summary.Reason != TerminationCircuitBreaker {
		t.Errorf("reason = %q, want %q", summary.Reason, TerminationCircuitBreaker)
	}
	// Root success plus exactly three failures.
	if summary.PagesVisited != 4 || summary.PagesFailed != 3 {
		t.Errorf("summary = %+v, want 4 visited, 3 failed", summary)
	}
	// Every attempt, including the failures, is in the site map.
	if len(recorder.entries) != 4 {
		t.Errorf("recorded %d entries, want 4", len(recorder.entries))
	}
	if recorder.finalStat != model.CrawlStatusAborted {
		t.Errorf("final status = %q, want %q", recorder.finalStat, model.CrawlStatusAborted)
	}
}

func TestCrawlFailureCounterResetsOnSuccess(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		pages: map[string]string{
			"https://portal.example.com/":   linkPage("/bad1", "/good", "/bad2", "/bad3"),
			"https://portal.example.com/good": linkPage(),
		},
		failures: map[string]error{
			"https://portal.example.com/bad1": browser.NewFetchError("https://portal.example.com/bad1", errors.New("timeout")),
			"https://portal.example.com/bad2": browser.NewFetchError("https://portal.example.com/bad2", errors.New("timeout")),
			"https://portal.example.com/bad3": browser.NewFetchError("https://portal.example.com/bad3", errors.New("timeout")),
		},
	}
	recorder := &fakeRecorder{}

	// Threshold 3: bad1 then good resets the counter, so bad2+bad3 leave it
	// at 2 and the run completes.
	c := New(session, recorder, Options{MaxDepth: 2, MaxPages: 100, MaxConsecutiveFailures: 3})
	summary, err := c.Crawl(context.Background(), "https://portal.example.com")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if summary.Reason != TerminationFrontierExhausted {
		t.Errorf("reason = %q, want %q", summary.Reason, TerminationFrontierExhausted)
	}
	if summary.PagesFailed != 3 {
		t.Errorf("failed = %d, want 3", summary.PagesFailed)
	}
}

func TestCrawlSessionInvalidIsRunFatal(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		pages: map[string]string{
			"https://portal.example.com/": linkPage("/expired"),
		},
		failures: map[string]error{
			"https://portal.example.com/expired": fmt.Errorf("navigate: %w", browser.ErrSessionInvalid),
		},
	}
	recorder := &fakeRecorder{}

	c := New(session, recorder, Options{MaxDepth: 2, MaxPages: 100})
	summary, err := c.Crawl(context.Background(), "https://portal.example.com")

	if !errors.Is(err, browser.ErrSessionInvalid) {
		t.Fatalf("Crawl() error = %v, want ErrSessionInvalid", err)
	}
	if summary.Reason != TerminationSessionInvalid {
		t.Errorf("reason = %q, want %q", summary.Reason, TerminationSessionInvalid)
	}
	if recorder.finalStat != model.CrawlStatusAborted {
		t.Errorf("final status = %q, want %q", recorder.finalStat, model.CrawlStatusAborted)
	}
}

func TestCrawlPersistenceErrorIsRunFatal(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		pages: map[string]string{
			"https://portal.example.com/":  linkPage("/a"),
			"https://portal.example.com/a": linkPage(),
		},
	}
	recorder := &fakeRecorder{failAfter: 1}

	c := New(session, recorder, Options{MaxDepth: 2, MaxPages: 100})
	summary, err := c.Crawl(context.Background(), "https://portal.example.com")

	if err == nil {
		t.Fatal("Crawl() should fail when the recorder cannot write")
	}
	if summary.Reason != TerminationPersistence {
		t.Errorf("reason = %q, want %q", summary.Reason, TerminationPersistence)
	}
}

func TestCrawlCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := &fakeSession{
		pages: map[string]string{"https://portal.example.com/": linkPage()},
	}
	recorder := &fakeRecorder{}

	c := New(session, recorder, Options{MaxDepth: 2, MaxPages: 100})
	summary, err := c.Crawl(ctx, "https://portal.example.com")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if summary.Reason != TerminationCancelled {
		t.Errorf("reason = %q, want %q", summary.Reason, TerminationCancelled)
	}
	if summary.PagesVisited != 0 {
		t.Errorf("visited = %d, want 0", summary.PagesVisited)
	}
	if !recorder.finalized {
		t.Error("cancelled run should still finalize the site map")
	}
}

func TestCrawlScopePolicy(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://portal.example.com/":         linkPage("/internal", "https://external.example.org/page"),
		"https://portal.example.com/internal": linkPage(),
		"https://external.example.org/page":   linkPage(),
	}

	t.Run("same-origin only by default", func(t *testing.T) {
		t.Parallel()
		session := &fakeSession{pages: pages}
		c := New(session, &fakeRecorder{}, Options{MaxDepth: 2, MaxPages: 100})
		summary, err := c.Crawl(context.Background(), "https://portal.example.com")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}
		if summary.PagesVisited != 2 {
			t.Errorf("visited = %d, want 2 (external excluded)", summary.PagesVisited)
		}
	})

	t.Run("external followed when allowed", func(t *testing.T) {
		t.Parallel()
		session := &fakeSession{pages: pages}
		c := New(session, &fakeRecorder{}, Options{MaxDepth: 2, MaxPages: 100, AllowExternal: true})
		summary, err := c.Crawl(context.Background(), "https://portal.example.com")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}
		if summary.PagesVisited != 3 {
			t.Errorf("visited = %d, want 3 (external included)", summary.PagesVisited)
		}
	})
}

func TestCrawlIgnoreAndFollowPatterns(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://portal.example.com/":               linkPage("/admin/users", "/reports/2026", "/about"),
		"https://portal.example.com/admin/users":    linkPage(),
		"https://portal.example.com/reports/2026":   linkPage(),
		"https://portal.example.com/about":          linkPage(),
	}

	t.Run("ignore pattern excludes subtree", func(t *testing.T) {
		t.Parallel()
		session := &fakeSession{pages: pages}
		c := New(session, &fakeRecorder{}, Options{
			MaxDepth: 2, MaxPages: 100,
			IgnorePatterns: []string{"/admin/*"},
		})
		summary, err := c.Crawl(context.Background(), "https://portal.example.com")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}
		for _, url := range session.fetched {
			if url == "https://portal.example.com/admin/users" {
				t.Error("ignored path was fetched")
			}
		}
		if summary.PagesVisited != 3 {
			t.Errorf("visited = %d, want 3", summary.PagesVisited)
		}
	})

	t.Run("follow patterns restrict expansion", func(t *testing.T) {
		t.Parallel()
		session := &fakeSession{pages: pages}
		c := New(session, &fakeRecorder{}, Options{
			MaxDepth: 2, MaxPages: 100,
			FollowPatterns: []string{"/reports/*"},
		})
		summary, err := c.Crawl(context.Background(), "https://portal.example.com")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}
		if summary.PagesVisited != 2 {
			t.Errorf("visited = %d, want 2 (root plus /reports/2026)", summary.PagesVisited)
		}
	})
}

func TestCrawlInvalidStartURL(t *testing.T) {
	t.Parallel()

	c := New(&fakeSession{}, &fakeRecorder{}, Options{MaxDepth: 1, MaxPages: 10})
	if _, err := c.Crawl(context.Background(), "not a url"); err == nil {
		t.Error("Crawl() should reject an unparseable start URL")
	}
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/admin/*", "/admin/dashboard", true},
		{"/admin/*", "/admin/users/42", true},
		{"/admin/*", "/admin", true},
		{"/admin/*", "/administrator", false},
		{"*.pdf", "/docs/file.pdf", true},
		{"*.pdf", "/docs/file.html", false},
		{"/api/v?", "/api/v1", true},
		{"/api/v?", "/api/v10", false},
		{"/exact", "/exact", true},
		{"/exact", "/exact/sub", false},
		{"report-*", "/downloads/report-2026", true},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s vs %s", tt.pattern, tt.path)
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := matchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}
