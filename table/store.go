package table

import "slices"

// batchChunk caps how many records are copied per step of a batch insert.
const batchChunk = 50000

// Store is the ordered, mutable sequence of records behind a Table.
// Index i always refers to the i-th record in logical order; display
// reversal never touches storage.
type Store[T any] struct {
	records []T
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	return len(s.records)
}

// At returns the record at logical index i. It panics when i is out of range.
func (s *Store[T]) At(i int) T {
	return s.records[i]
}

// Records returns a copy of the records in logical order.
func (s *Store[T]) Records() []T {
	return slices.Clone(s.records)
}

// Append adds a record at the end.
func (s *Store[T]) Append(record T) {
	s.records = append(s.records, record)
}

// AppendBatch adds records at the end, in order.
func (s *Store[T]) AppendBatch(records []T) {
	s.records = slices.Grow(s.records, len(records))
	for chunk := range slices.Chunk(records, batchChunk) {
		s.records = append(s.records, chunk...)
	}
}

// Prepend adds a record at the front.
func (s *Store[T]) Prepend(record T) {
	s.records = slices.Insert(s.records, 0, record)
}

// PrependBatch adds records at the front so that records[0] becomes index 0.
func (s *Store[T]) PrependBatch(records []T) {
	if len(records) == 0 {
		return
	}

	merged := make([]T, 0, len(records)+len(s.records))
	for chunk := range slices.Chunk(records, batchChunk) {
		merged = append(merged, chunk...)
	}
	s.records = append(merged, s.records...)
}

// InsertAt places record at logical index i, shifting later records back.
// i may equal Len to append.
func (s *Store[T]) InsertAt(i int, record T) error {
	if i < 0 || i > len(s.records) {
		return indexError(i, len(s.records))
	}

	s.records = slices.Insert(s.records, i, record)
	return nil
}

// RemoveAt deletes the record at logical index i.
func (s *Store[T]) RemoveAt(i int) error {
	if i < 0 || i >= len(s.records) {
		return indexError(i, len(s.records))
	}

	s.records = slices.Delete(s.records, i, i+1)
	return nil
}

// Clear drops every record.
func (s *Store[T]) Clear() {
	s.records = nil
}
