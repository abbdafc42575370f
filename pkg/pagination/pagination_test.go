package pagination

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestFromContext(t *testing.T) {
	p, ok := FromContext(newContext("/api/consultations/"), 0)
	require.True(t, ok)
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize}, p)

	p, ok = FromContext(newContext("/api/consultations/?page=3"), 5)
	require.True(t, ok)
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, 5, p.Limit())

	_, ok = FromContext(newContext("/api/consultations/?page=0"), 5)
	assert.False(t, ok)

	_, ok = FromContext(newContext("/api/consultations/?page=abc"), 5)
	assert.False(t, ok)
}

func TestFromContextRejectsOverflowingPage(t *testing.T) {
	_, ok := FromContext(newContext("/api/consultations/?page=1000000000000000000"), 10)
	assert.False(t, ok)

	_, ok = FromContext(newContext("/api/consultations/?page=99999999999999999999"), 10)
	assert.False(t, ok)

	last := (math.MaxInt-1)/10 + 1
	p, ok := FromContext(newContext("/api/consultations/?page="+strconv.Itoa(last)), 10)
	require.True(t, ok)
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.False(t, p.InRange(5))
}

func TestInRange(t *testing.T) {
	p := Params{Page: 1, PageSize: 10}
	assert.True(t, p.InRange(0))

	p.Page = 2
	assert.True(t, p.InRange(11))
	assert.False(t, p.InRange(10))
}

func TestNewResponseLinks(t *testing.T) {
	c := newContext("http://example.com/api/consultations/?status=waiting&page=2")
	p, ok := FromContext(c, 2)
	require.True(t, ok)

	resp := NewResponse(c, []int{3, 4}, 5, p)
	assert.Equal(t, 5, resp.Count)
	require.NotNil(t, resp.Next)
	require.NotNil(t, resp.Previous)
	assert.Equal(t, "http://example.com/api/consultations/?page=3&status=waiting", *resp.Next)
	assert.Equal(t, "http://example.com/api/consultations/?status=waiting", *resp.Previous)

	c = newContext("http://example.com/api/consultations/?page=3")
	p, _ = FromContext(c, 2)
	resp = NewResponse(c, []int{5}, 5, p)
	assert.Nil(t, resp.Next)
}
