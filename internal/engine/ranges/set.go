package ranges

import (
	"fmt"
	"sort"
)

// Set is the ordered collection of Range Records of one buffer.
//
// Records are kept in extraction order (ascending original start). The
// current intervals are always valid, ordered and non-overlapping.
// Set is not safe for concurrent use; the owning engine serializes access.
type Set struct {
	records []Record
}

// NewSet creates a set from records in any order.
// Records are sorted by original start and validated.
func NewSet(records []Record) (*Set, error) {
	rs := make([]Record, len(records))
	copy(rs, records)
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].OriginalStart < rs[j].OriginalStart
	})
	if err := validate(rs); err != nil {
		return nil, err
	}
	return &Set{records: rs}, nil
}

// Len returns the number of records.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// IsEmpty reports whether the set holds no records.
func (s *Set) IsEmpty() bool {
	return s.Len() == 0
}

// At returns a copy of the i-th record.
func (s *Set) At(i int) Record {
	return s.records[i]
}

// Records returns a copy of all records in order.
func (s *Set) Records() []Record {
	if s == nil {
		return nil
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Intervals returns the current intervals in order.
func (s *Set) Intervals() []Interval {
	if s == nil {
		return nil
	}
	out := make([]Interval, len(s.records))
	for i, r := range s.records {
		out[i] = r.Current()
	}
	return out
}

// Index returns the position of the record for childPath.
func (s *Set) Index(childPath string) (int, bool) {
	if s == nil {
		return -1, false
	}
	for i, r := range s.records {
		if r.ChildPath == childPath {
			return i, true
		}
	}
	return -1, false
}

// Insert adds a record, keeping current intervals ordered.
// The record must not overlap any existing record.
func (s *Set) Insert(r Record) error {
	if !r.Current().IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, r.Current())
	}
	pos := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].CurrentStart > r.CurrentStart
	})
	rs := make([]Record, 0, len(s.records)+1)
	rs = append(rs, s.records[:pos]...)
	rs = append(rs, r)
	rs = append(rs, s.records[pos:]...)
	if err := validate(rs); err != nil {
		return err
	}
	s.records = rs
	return nil
}

// Remove deletes the record for childPath.
func (s *Set) Remove(childPath string) error {
	i, ok := s.Index(childPath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, childPath)
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return nil
}

// SetContent caches content on the record for childPath.
func (s *Set) SetContent(childPath, content string) error {
	i, ok := s.Index(childPath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, childPath)
	}
	s.records[i].SetContent(content)
	return nil
}

// Mutate runs fn over a working copy of the records and commits the copy
// only if it still satisfies the ordering invariant.
func (s *Set) Mutate(fn func(rs []Record)) error {
	rs := s.Records()
	fn(rs)
	if err := validate(rs); err != nil {
		return err
	}
	s.records = rs
	return nil
}

// Clear removes every record.
func (s *Set) Clear() {
	s.records = nil
}

// IsDirty reports whether any record has unpersisted coordinates.
func (s *Set) IsDirty() bool {
	if s == nil {
		return false
	}
	for _, r := range s.records {
		if r.IsDirty() {
			return true
		}
	}
	return false
}

// Pending returns the coordinate updates of all dirty records.
func (s *Set) Pending() []CoordinateUpdate {
	if s == nil {
		return nil
	}
	var out []CoordinateUpdate
	for _, r := range s.records {
		if r.IsDirty() {
			out = append(out, r.Update())
		}
	}
	return out
}

// Confirm marks the given updates as persisted: each matching record's
// original interval becomes the update's new interval. Updates for unknown
// child paths are ignored. Returns the number of records confirmed.
func (s *Set) Confirm(updates []CoordinateUpdate) int {
	n := 0
	for _, u := range updates {
		i, ok := s.Index(u.ChildPath)
		if !ok {
			continue
		}
		s.records[i].OriginalStart = u.NewStart
		s.records[i].OriginalEnd = u.NewEnd
		n++
	}
	return n
}

func validate(rs []Record) error {
	for i, r := range rs {
		if !r.Current().IsValid() {
			return fmt.Errorf("%w: %s current %s", ErrInvalidInterval, r.ChildPath, r.Current())
		}
		if i > 0 && !rs[i-1].Current().Before(r.Current()) {
			return fmt.Errorf("%w: %s %s and %s %s",
				ErrOverlap, rs[i-1].ChildPath, rs[i-1].Current(), r.ChildPath, r.Current())
		}
	}
	return nil
}
