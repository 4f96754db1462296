package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	cases := []struct {
		total       int64
		page, limit int
		wantPages   int
		wantShowing string
	}{
		{0, 1, 20, 0, "0 of 0"},
		{45, 1, 20, 3, "1-20 of 45"},
		{45, 3, 20, 3, "41-45 of 45"},
		{45, 4, 20, 3, "0 of 45"},
		{20, 1, 20, 1, "1-20 of 20"},
	}
	for _, c := range cases {
		pages, showing := Summary(c.total, c.page, c.limit)
		assert.Equal(t, c.wantPages, pages, "total=%d page=%d", c.total, c.page)
		assert.Equal(t, c.wantShowing, showing, "total=%d page=%d", c.total, c.page)
	}
}
