package pagination

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params is a normalized page request. Build it with NewParams.
type Params struct {
	Page    int
	PerPage int
}

func NewParams(page, perPage int) Params {
	p := Params{Page: page, PerPage: perPage}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	switch {
	case p.PerPage < 1:
		p.PerPage = DefaultPerPage
	case p.PerPage > MaxPerPage:
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Params) Limit() int {
	return p.PerPage
}

// Info describes where a page sits within totalItems results.
type Info struct {
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Info reports the position of p within totalItems. An empty result still
// has one (empty) page.
func (p Params) Info(totalItems int) *Info {
	totalPages := max((totalItems+p.PerPage-1)/p.PerPage, 1)

	return &Info{
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
