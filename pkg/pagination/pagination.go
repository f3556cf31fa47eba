package pagination

const (
	// DefaultPage is used when no page is requested.
	DefaultPage = 1
	// DefaultPerPage is the standard page size when per_page is not provided.
	DefaultPerPage = 50
	// MaxPerPage caps how many rows any list query can request.
	MaxPerPage = 200
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize enforces the default page, the default size and the maximum size.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the number of rows to skip. Call it on normalized params.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Meta is the pagination block returned next to a list.
type Meta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// NewMeta computes the page count for total rows.
func NewMeta(p Params, total int64) Meta {
	pages := 0
	if p.PerPage > 0 {
		pages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Meta{Page: p.Page, PerPage: p.PerPage, Total: total, Pages: pages}
}
