package crawler

// Task is one unit of crawl work: a URL to fetch, how deep it was
// discovered, and the page it was discovered on. Tasks are created when a
// link passes the scope policy, consumed exactly once by the orchestrator
// loop, and never mutated.
type Task struct {
	// URL is the normalized target.
	URL string

	// Depth is the BFS distance from the start URL.
	Depth int

	// ParentURL is the page this URL was discovered on. Empty for the
	// start task.
	ParentURL string
}

// Frontier is the crawl scheduler's state: a FIFO queue of pending tasks
// plus the set of URLs already handed out for fetching.
//
// Design decision: Frontier is a plain single-owner structure with no
// locking because:
//  1. Exactly one goroutine (the orchestrator) reads and writes it
//  2. Page fetches on the shared browser session are sequential anyway
//  3. Keeping it lock-free makes the BFS ordering guarantee trivial to see
//
// The same URL may sit in the queue twice when two pages discover it before
// either copy is dequeued; the second copy is discarded at Pop time via the
// visited set. That keeps Push cheap and preserves FIFO order.
type Frontier struct {
	queue    []Task
	visited  map[string]bool
	maxDepth int
}

// NewFrontier creates a Frontier that admits tasks up to maxDepth.
func NewFrontier(maxDepth int) *Frontier {
	return &Frontier{
		queue:    make([]Task, 0),
		visited:  make(map[string]bool),
		maxDepth: maxDepth,
	}
}

// Push enqueues a task if its URL has not been visited and its depth is
// within budget. Returns true when the task was admitted.
func (f *Frontier) Push(task Task) bool {
	if task.Depth > f.maxDepth {
		return false
	}
	if f.visited[task.URL] {
		return false
	}
	f.queue = append(f.queue, task)
	return true
}

// Pop removes and returns the head task, skipping entries whose URL was
// already visited (duplicates enqueued before their first dequeue).
// The returned task's URL is marked visited before Pop returns, so it can
// never be handed out twice.
func (f *Frontier) Pop() (Task, bool) {
	for len(f.queue) > 0 {
		task := f.queue[0]
		f.queue = f.queue[1:]
		if f.visited[task.URL] {
			continue
		}
		f.visited[task.URL] = true
		return task, true
	}
	return Task{}, false
}

// Visited reports whether a URL was already dequeued for fetching.
func (f *Frontier) Visited(url string) bool {
	return f.visited[url]
}

// Pending returns the number of queued tasks, including duplicates that
// will be discarded at Pop time.
func (f *Frontier) Pending() int {
	return len(f.queue)
}
