package services

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// PageSize is the number of posts on every listing page.
const PageSize = 10

// Page is one slice of an ordered listing. Number is 1-based.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int64
}

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p Page[T]) PreviousNumber() int {
	return p.Number - 1
}
func (p Page[T]) NextNumber() int {
	return p.Number + 1
}

// ParsePage reads a ?page= value; anything that is not a number means the first page.
// Numbers too large for an int saturate so that ClampPage still picks the nearest page.
func ParsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return 1
		}
		return math.MaxInt
	}
	if err != nil {
		return 1
	}
	return n
}

// ClampPage maps a requested page onto the valid range for total items.
// An empty listing still has one (empty) page.
func ClampPage(requested int, total int64, size int) (number, numPages int) {
	numPages = int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	switch {
	case requested < 1:
		number = 1
	case requested > numPages:
		number = numPages
	default:
		number = requested
	}
	return number, numPages
}
