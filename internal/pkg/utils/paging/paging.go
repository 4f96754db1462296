package paging

import (
	"fmt"
	"math"
)

// Summary returns the page count and a "from-to of total" label for a page.
func Summary(total int64, page, limit int) (int, string) {
	if total == 0 || limit <= 0 {
		return 0, "0 of 0"
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	from := (page-1)*limit + 1
	if int64(from) > total {
		return totalPages, fmt.Sprintf("0 of %d", total)
	}
	to := min(page*limit, int(total))
	return totalPages, fmt.Sprintf("%d-%d of %d", from, to, total)
}
