package model

import (
	"encoding/json"
	"testing"
	"time"
)

// TestSiteMapAppend tests that Append keeps the visited counter in sync.
func TestSiteMapAppend(t *testing.T) {
	t.Parallel()

	m := NewSiteMap("20260826-101500-ab12", "https://portal.example/", 3, 100, false)
	if m.PagesVisited != 0 {
		t.Fatalf("expected 0 pages visited, got %d", m.PagesVisited)
	}

	m.Append(SiteMapEntry{URL: "https://portal.example/", Depth: 0, Status: PageStatusOK})
	m.Append(SiteMapEntry{URL: "https://portal.example/a", Depth: 1, Status: PageStatusError, Error: "timeout"})

	if m.PagesVisited != 2 {
		t.Errorf("expected 2 pages visited, got %d", m.PagesVisited)
	}
	if got := m.SucceededCount(); got != 1 {
		t.Errorf("expected 1 succeeded, got %d", got)
	}
	if got := m.FailedCount(); got != 1 {
		t.Errorf("expected 1 failed, got %d", got)
	}
}

// TestSiteMapJSONRoundTrip tests that the on-disk shape survives re-reading.
// mapping.json is the contract between the crawler and the extraction
// engine, so field names matter.
func TestSiteMapJSONRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewSiteMap("run-1", "https://portal.example/", 2, 10, true)
	m.Append(SiteMapEntry{
		URL:       "https://portal.example/",
		Depth:     0,
		Status:    PageStatusOK,
		Artifacts: ArtifactPaths{HTML: "map/pages/1.html", Screenshot: "map/pages/1.png"},
		DiscoveredLinks: []string{
			"https://portal.example/deposit",
		},
		Timestamp: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
	})
	m.Status = CrawlStatusComplete

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got SiteMap
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if got.RunID != "run-1" || got.StartURL != "https://portal.example/" {
		t.Errorf("metadata lost in round trip: %+v", got)
	}
	if !got.AllowExternal {
		t.Error("allow_external flag lost in round trip")
	}
	if len(got.Pages) != 1 || got.Pages[0].Artifacts.HTML != "map/pages/1.html" {
		t.Errorf("entries lost in round trip: %+v", got.Pages)
	}
}

// TestFindingKey tests deduplication key construction.
func TestFindingKey(t *testing.T) {
	t.Parallel()

	a := Finding{SourceURL: "https://x.example/p", Detector: "BTC", Value: "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"}
	b := Finding{SourceURL: "https://x.example/p", Detector: "BTC", Value: "1BoatSLRHtKNngkdXEeobR76b53LETtpyT", Context: "different context"}
	c := Finding{SourceURL: "https://x.example/q", Detector: "BTC", Value: "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"}

	if a.Key() != b.Key() {
		t.Error("context should not affect the dedup key")
	}
	if a.Key() == c.Key() {
		t.Error("source URL should affect the dedup key")
	}
}
