package pagination

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := Parse(ctxWithQuery(""))
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 20, p.Limit)
		assert.Equal(t, 0, p.Offset)
	})

	t.Run("explicit values", func(t *testing.T) {
		p := Parse(ctxWithQuery("page=3&limit=50"))
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 50, p.Limit)
		assert.Equal(t, 100, p.Offset)
	})

	t.Run("limit is capped", func(t *testing.T) {
		p := Parse(ctxWithQuery("limit=5000"))
		assert.Equal(t, MaxLimit, p.Limit)
	})

	t.Run("garbage falls back to defaults", func(t *testing.T) {
		p := Parse(ctxWithQuery("page=-2&limit=abc"))
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 20, p.Limit)
	})
}

func TestParseDateRange(t *testing.T) {
	t.Run("both bounds", func(t *testing.T) {
		dr := ParseDateRange(ctxWithQuery("from=2026-01-01&to=2026-01-31"))
		require.NotNil(t, dr.From)
		require.NotNil(t, dr.To)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *dr.From)
		// The upper bound is inclusive of its whole day.
		assert.Equal(t, 31, dr.To.Day())
		assert.Equal(t, 23, dr.To.Hour())
	})

	t.Run("missing bounds are unbounded", func(t *testing.T) {
		dr := ParseDateRange(ctxWithQuery(""))
		assert.Nil(t, dr.From)
		assert.Nil(t, dr.To)
	})

	t.Run("unparseable values are ignored", func(t *testing.T) {
		dr := ParseDateRange(ctxWithQuery("from=yesterday&to=2026-13-45"))
		assert.Nil(t, dr.From)
		assert.Nil(t, dr.To)
	})
}
