package crawler

import "testing"

func TestFrontierFIFOOrder(t *testing.T) {
	t.Parallel()

	f := NewFrontier(3)
	urls := []string{
		"https://x.com/a",
		"https://x.com/b",
		"https://x.com/c",
	}
	for _, u := range urls {
		if !f.Push(Task{URL: u, Depth: 0}) {
			t.Fatalf("Push(%q) rejected", u)
		}
	}

	for i, want := range urls {
		task, ok := f.Pop()
		if !ok {
			t.Fatalf("Pop() #%d returned no task", i)
		}
		if task.URL != want {
			t.Errorf("Pop() #%d = %q, want %q", i, task.URL, want)
		}
	}

	if _, ok := f.Pop(); ok {
		t.Error("Pop() on drained frontier should return false")
	}
}

func TestFrontierDepthGate(t *testing.T) {
	t.Parallel()

	f := NewFrontier(2)

	if !f.Push(Task{URL: "https://x.com/depth2", Depth: 2}) {
		t.Error("task at maxDepth should be admitted")
	}
	if f.Push(Task{URL: "https://x.com/depth3", Depth: 3}) {
		t.Error("task beyond maxDepth should be rejected")
	}
}

func TestFrontierZeroDepth(t *testing.T) {
	t.Parallel()

	f := NewFrontier(0)
	if !f.Push(Task{URL: "https://x.com/", Depth: 0}) {
		t.Error("start task should be admitted at maxDepth 0")
	}
	if f.Push(Task{URL: "https://x.com/child", Depth: 1}) {
		t.Error("depth-1 task should be rejected at maxDepth 0")
	}
}

func TestFrontierVisitedDedup(t *testing.T) {
	t.Parallel()

	f := NewFrontier(3)
	f.Push(Task{URL: "https://x.com/a", Depth: 0})

	task, ok := f.Pop()
	if !ok || task.URL != "https://x.com/a" {
		t.Fatalf("Pop() = %v, %v", task, ok)
	}
	if !f.Visited("https://x.com/a") {
		t.Error("popped URL should be marked visited")
	}

	if f.Push(Task{URL: "https://x.com/a", Depth: 1}) {
		t.Error("visited URL should not be re-admitted")
	}
}

func TestFrontierDuplicateDiscardedAtPop(t *testing.T) {
	t.Parallel()

	// Two pages discover the same URL before either copy is dequeued. Both
	// enqueues succeed, but only the first dequeue yields the task.
	f := NewFrontier(3)
	f.Push(Task{URL: "https://x.com/shared", Depth: 1, ParentURL: "https://x.com/a"})
	f.Push(Task{URL: "https://x.com/shared", Depth: 1, ParentURL: "https://x.com/b"})
	f.Push(Task{URL: "https://x.com/other", Depth: 1})

	if f.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", f.Pending())
	}

	first, ok := f.Pop()
	if !ok || first.URL != "https://x.com/shared" {
		t.Fatalf("first Pop() = %v, %v", first, ok)
	}
	if first.ParentURL != "https://x.com/a" {
		t.Errorf("first discovery wins: ParentURL = %q, want %q", first.ParentURL, "https://x.com/a")
	}

	second, ok := f.Pop()
	if !ok {
		t.Fatal("second Pop() returned no task")
	}
	if second.URL != "https://x.com/other" {
		t.Errorf("duplicate should be skipped: got %q", second.URL)
	}

	if _, ok := f.Pop(); ok {
		t.Error("frontier should be exhausted")
	}
}

func TestFrontierBFSLevelOrder(t *testing.T) {
	t.Parallel()

	// Simulate the orchestrator: the root discovers b and c, then b
	// discovers d. All depth-1 tasks must drain before depth 2.
	f := NewFrontier(2)
	f.Push(Task{URL: "root", Depth: 0})

	root, _ := f.Pop()
	if root.Depth != 0 {
		t.Fatalf("root depth = %d", root.Depth)
	}
	f.Push(Task{URL: "b", Depth: 1, ParentURL: "root"})
	f.Push(Task{URL: "c", Depth: 1, ParentURL: "root"})

	b, _ := f.Pop()
	f.Push(Task{URL: "d", Depth: 2, ParentURL: "b"})

	c, _ := f.Pop()
	d, _ := f.Pop()

	if b.URL != "b" || c.URL != "c" || d.URL != "d" {
		t.Errorf("BFS order violated: got %q, %q, %q", b.URL, c.URL, d.URL)
	}
	if c.Depth != 1 || d.Depth != 2 {
		t.Errorf("depths = %d, %d; want 1, 2", c.Depth, d.Depth)
	}
}
