package book

import "context"

// MaxPages is the hard ceiling on pages fetched by one crawl.
const MaxPages = 20

// Step fetches and extracts one page, returning its items and the next
// page URL ("" when done).
type Step[T any] func(ctx context.Context, url string) (items []T, next string, err error)

// Crawl follows next links from start, accumulating items in page order.
// It stops when the next URL is blank or already visited, or after
// maxPages steps (clamped to MaxPages). Any step error aborts the crawl and
// discards accumulated items. The number of pages fetched is returned
// alongside the items.
func Crawl[T any](ctx context.Context, start string, maxPages int, step Step[T]) ([]T, int, error) {
	if maxPages <= 0 || maxPages > MaxPages {
		maxPages = MaxPages
	}

	items := []T{}
	visited := make(map[string]struct{})
	next := start
	pages := 0

	for next != "" && pages < maxPages {
		if _, seen := visited[next]; seen {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, pages, err
		}
		visited[next] = struct{}{}
		pages++

		got, following, err := step(ctx, next)
		if err != nil {
			return nil, pages, err
		}
		items = append(items, got...)
		next = following
	}
	return items, pages, nil
}
