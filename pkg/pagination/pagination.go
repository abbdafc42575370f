package pagination

import (
	"math"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	PageParam       = "page"
)

// Params holds page-number pagination parameters extracted from a request.
type Params struct {
	Page     int
	PageSize int
}

// FromContext reads ?page= from the request. The page size is fixed by the server.
// ok is false when page is present but not a positive integer, or when its offset
// would not fit in an int.
func FromContext(c *gin.Context, pageSize int) (Params, bool) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := Params{Page: 1, PageSize: pageSize}

	raw := c.Query(PageParam)
	if raw == "" {
		return p, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 || page > (math.MaxInt-1)/pageSize+1 {
		return p, false
	}
	p.Page = page
	return p, true
}

func (p Params) Limit() int {
	return p.PageSize
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// InRange reports whether the page exists for a result set of the given size.
// The first page always exists, even when the set is empty.
func (p Params) InRange(total int) bool {
	return p.Page == 1 || p.Offset() < total
}

// Response is the list envelope: total count, neighbour page links and the page items.
type Response struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// NewResponse builds the envelope. Links keep every other query parameter of the request.
func NewResponse(c *gin.Context, results interface{}, total int, p Params) *Response {
	resp := &Response{
		Count:   total,
		Results: results,
	}
	if p.Offset()+p.PageSize < total {
		next := pageURL(c, p.Page+1)
		resp.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		resp.Previous = &prev
	}
	return resp
}

func pageURL(c *gin.Context, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}

	q := c.Request.URL.Query()
	if page == 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
