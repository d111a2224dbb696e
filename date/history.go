package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with a
// specific date. Dates are unique and the series is always sorted, so
// as-of lookups are binary searches.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Latest returns the latest date and value in the history.
// If the history is empty, it returns zero values.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T)
	}
	return h.days[last], h.values[last]
}

// Earliest returns the earliest date and value in the history.
// If the history is empty, it returns zero values.
func (h *History[T]) Earliest() (day Date, value T) {
	if len(h.days) == 0 {
		return Date{}, *new(T)
	}
	return h.days[0], h.values[0]
}

// search locates 'day' in the sorted days slice.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// Append adds a point to the history, keeping it sorted.
//
// An existing value at that date is overwritten: the last data wins.
func (h *History[T]) Append(on Date, v T) *History[T] {
	i, found := h.search(on)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Get returns the value at exactly 'day', or the zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	return *new(T), false
}

// ValueAsOf returns the value on a given day, or the most recent value
// before it, never a future one. It returns the zero value and false when
// the history holds nothing at or before 'day'.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	// 'i' is the insertion index: the entry at i-1 is the last one before 'day'.
	if i == 0 {
		return *new(T), false
	}
	return h.values[i-1], true
}

// DateAsOf is like ValueAsOf but also reports the date the value was
// observed on.
func (h *History[T]) DateAsOf(day Date) (Date, T, bool) {
	i, found := h.search(day)
	if found {
		return h.days[i], h.values[i], true
	}
	if i == 0 {
		return Date{}, *new(T), false
	}
	return h.days[i-1], h.values[i-1], true
}

// Values returns an iterator over all date/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}
