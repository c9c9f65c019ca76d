package listview

import "fmt"

// DefaultPageSize is the number of rows per list page.
const DefaultPageSize = 10

// Page is one slice of a list plus pagination metadata.
type Page[T any] struct {
	Items  []T
	Number int // 1-based
	Pages  int
	Total  int
	Size   int
	First  int // 1-based index of the first item, 0 when empty
	Last   int
}

// Paginate returns page number of recs. Out-of-range numbers are clamped to
// the first or last page.
func Paginate[T any](recs []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(recs)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	number = min(max(number, 1), pages)

	start := (number - 1) * size
	end := min(start+size, total)

	p := Page[T]{
		Items:  recs[start:end],
		Number: number,
		Pages:  pages,
		Total:  total,
		Size:   size,
	}
	if end > start {
		p.First = start + 1
		p.Last = end
	}
	return p
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.Pages }

// Prev returns the previous page number.
func (p Page[T]) Prev() int { return max(p.Number-1, 1) }

// Next returns the next page number.
func (p Page[T]) Next() int { return min(p.Number+1, p.Pages) }

// Numbers returns every page number, for rendering pagination links.
func (p Page[T]) Numbers() []int {
	n := make([]int, p.Pages)
	for i := range n {
		n[i] = i + 1
	}
	return n
}

// Label describes the visible range, e.g. "11-20 of 43".
func (p Page[T]) Label() string {
	if p.Total == 0 {
		return "0 of 0"
	}
	return fmt.Sprintf("%d-%d of %d", p.First, p.Last, p.Total)
}
