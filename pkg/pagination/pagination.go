package pagination

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// DateRange holds an optional inclusive from/to filter used by the ledger
// listing endpoints.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange reads "from" and "to" query parameters in YYYY-MM-DD format.
// Unparseable or missing values are treated as unbounded. The "to" bound is
// shifted to the end of its day so the range is inclusive.
func ParseDateRange(c *gin.Context) DateRange {
	var dr DateRange
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			dr.From = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			dr.To = &end
		}
	}
	return dr
}
