package port

import "context"

// Fetcher materializes a repository's file tree at dest. Implementations
// must fully replace any pre-existing content at dest before writing.
type Fetcher interface {
	Fetch(ctx context.Context, locator, dest string) error
}
