package generation

import "sync"

// ChapterLeases enforces at-most-one-in-flight generation per chapter id
// within this process. Distinct chapters never contend.
type ChapterLeases struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

// NewChapterLeases constructs a ChapterLeases.
func NewChapterLeases() *ChapterLeases {
	return &ChapterLeases{inFlight: make(map[string]bool)}
}

// Acquire takes the lease for a chapter. Returns false if already held.
func (l *ChapterLeases) Acquire(chapterID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight[chapterID] {
		return false
	}
	l.inFlight[chapterID] = true
	return true
}

// Release frees the lease for a chapter.
func (l *ChapterLeases) Release(chapterID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, chapterID)
}
