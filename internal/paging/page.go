package paging

// IndexPage is one window of an index-addressed result set.
type IndexPage[T any] struct {
	Items []T

	// StartIndex is the 1-based position of Items[0] in the full result set.
	StartIndex int

	// ItemsPerPage is the requested window size.
	ItemsPerPage int

	// TotalResults is the size of the full result set.
	TotalResults int
}

// HasPrevious reports whether a window exists before this one.
func (p IndexPage[T]) HasPrevious() bool {
	return p.StartIndex > 1
}

// HasNext reports whether a window exists after this one.
func (p IndexPage[T]) HasNext() bool {
	return p.StartIndex-1+len(p.Items) < p.TotalResults
}

// PreviousIndex returns the start index of the previous window, never below 1.
func (p IndexPage[T]) PreviousIndex() int {
	prev := p.StartIndex - p.ItemsPerPage
	if prev < 1 {
		return 1
	}
	return prev
}

// NextIndex returns the start index of the next window.
func (p IndexPage[T]) NextIndex() int {
	return p.StartIndex + len(p.Items)
}

// Window slices items to the 1-based window [startIndex, startIndex+size).
// A startIndex below 1 is treated as 1 and a size below 1 means "everything
// from startIndex on".
func Window[T any](items []T, startIndex, size int) IndexPage[T] {
	if startIndex < 1 {
		startIndex = 1
	}
	page := IndexPage[T]{
		StartIndex:   startIndex,
		ItemsPerPage: size,
		TotalResults: len(items),
	}

	from := startIndex - 1
	if from >= len(items) {
		page.Items = []T{}
		return page
	}
	to := len(items)
	if size > 0 && from+size < to {
		to = from + size
	}
	page.Items = items[from:to]
	if size < 1 {
		page.ItemsPerPage = len(page.Items)
	}
	return page
}

// TokenPage is one page of a token-continued feed.
type TokenPage[T any] struct {
	Items []T

	// PageToken is the token that produced this page, empty for the first page.
	PageToken string

	// NextPageToken continues the feed, empty on the last page.
	NextPageToken string
}

// HasNext reports whether the feed continues.
func (p TokenPage[T]) HasNext() bool {
	return p.NextPageToken != ""
}
