package wiki

import "sync"

// Location is the addressable fragment of the current page. It is written
// after every successful navigation and read only at startup.
type Location interface {
	Fragment() string
	SetFragment(key string) error
}

// MemoryLocation keeps the fragment in memory.
type MemoryLocation struct {
	mu       sync.Mutex
	fragment string
}

// NewMemoryLocation creates a location starting at fragment.
func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: fragment}
}

// Fragment implements Location.
func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// SetFragment implements Location.
func (l *MemoryLocation) SetFragment(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fragment = key
	return nil
}
