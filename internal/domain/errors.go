package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotIndexed is returned by Ask when the session has no successfully
// built index. Callers surface it as a sentinel result, not a crash.
var ErrNotIndexed = errors.New("session is not indexed: run index first")

// FetchError reports a failure to materialize the repository.
type FetchError struct {
	Locator string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch repository %q: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EmptyCorpusError reports that the file filter matched nothing, so there
// is no corpus to index.
type EmptyCorpusError struct {
	Root     string
	Includes []string
}

func (e *EmptyCorpusError) Error() string {
	return fmt.Sprintf("no documents matched %s under %s", strings.Join(e.Includes, ", "), e.Root)
}

// IndexBuildError reports a failure while embedding or persisting the index.
// Stage names the pipeline step that failed.
type IndexBuildError struct {
	Stage string
	Err   error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("index build failed at %s: %v", e.Stage, e.Err)
}

func (e *IndexBuildError) Unwrap() error { return e.Err }

// SynthesisError reports a failed or malformed generative call. It is
// returned per-question and never changes the session state.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("answer synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
