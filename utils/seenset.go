package utils

// SeenSet tracks keys already emitted within a single extraction call.
// It is not safe for concurrent use; each call owns its own set.
type SeenSet struct {
	seen map[string]struct{}
}

// NewSeenSet creates an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]struct{})}
}

// Add returns true if key is new (not seen before), false if duplicate
func (s *SeenSet) Add(key string) bool {
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Count returns the number of tracked keys
func (s *SeenSet) Count() int {
	return len(s.seen)
}
