package interact

import "slices"

// Selection is an ordered set of object tags. Insertion order is kept so
// the first selected object stays first.
type Selection struct {
	tags []string
}

// Add appends tag and reports whether it was new.
func (s *Selection) Add(tag string) bool {
	if s.Contains(tag) {
		return false
	}
	s.tags = append(s.tags, tag)
	return true
}

// Remove drops tag and reports whether it was present.
func (s *Selection) Remove(tag string) bool {
	i := slices.Index(s.tags, tag)
	if i < 0 {
		return false
	}
	s.tags = slices.Delete(s.tags, i, i+1)
	return true
}

// Set replaces the selection with tags, dropping duplicates.
func (s *Selection) Set(tags ...string) {
	s.tags = s.tags[:0]
	for _, t := range tags {
		s.Add(t)
	}
}

// Clear empties the selection and reports whether anything was selected.
func (s *Selection) Clear() bool {
	had := len(s.tags) > 0
	s.tags = nil
	return had
}

func (s *Selection) Contains(tag string) bool { return slices.Contains(s.tags, tag) }

func (s *Selection) Len() int { return len(s.tags) }

// Tags returns a copy of the selected tags in selection order.
func (s *Selection) Tags() []string { return slices.Clone(s.tags) }
