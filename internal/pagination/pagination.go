package pagination

import "strconv"

// PageSize is the fixed number of posts per listing page, shared by every
// feed surface.
const PageSize = 10

// Page is a clamped window over an ordered result set.
type Page struct {
	Number     int   `json:"number"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	Offset     int   `json:"-"`
	Limit      int   `json:"-"`
}

// Resolve turns a raw page parameter into a valid page for a result set of
// total rows. It never fails: non-numeric input degrades to page 1, numbers
// beyond the end degrade to the last page. An empty result set yields a
// single empty page.
func Resolve(param string, total int64) Page {
	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	number, err := strconv.Atoi(param)
	if err != nil || number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		TotalPages: totalPages,
		TotalItems: total,
		Offset:     (number - 1) * PageSize,
		Limit:      PageSize,
	}
}
