package scanner

import "path/filepath"

// Frontier is the breadth-first work list of a directory scan. Directories
// are appended as they are discovered and popped in discovery order; each
// directory is visited at most once.
type Frontier struct {
	queue   []string
	visited map[string]struct{}
}

// NewFrontier creates a frontier seeded with roots
func NewFrontier(roots ...string) *Frontier {
	f := &Frontier{visited: make(map[string]struct{})}
	for _, root := range roots {
		f.Push(root)
	}
	return f
}

// Push appends dir unless it was already queued. It reports whether dir was added.
// Directories are keyed by their symlink-free path, so a link back to an
// ancestor is not queued twice.
func (f *Frontier) Push(dir string) bool {
	key := visitKey(dir)
	if _, seen := f.visited[key]; seen {
		return false
	}
	f.visited[key] = struct{}{}
	f.queue = append(f.queue, dir)
	return true
}

func visitKey(dir string) string {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		return real
	}
	return filepath.Clean(dir)
}

// Pop removes and returns the oldest queued directory
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	dir := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return dir, true
}

// Len returns the number of directories still queued
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Visited returns how many distinct directories were ever queued
func (f *Frontier) Visited() int {
	return len(f.visited)
}
