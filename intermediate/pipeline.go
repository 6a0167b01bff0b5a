package intermediate

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/typedsql/typedsql"
)

// CompileError is one statement's failure. A failing statement never blocks
// its siblings; the pipeline collects every error and still returns the
// queries that compiled.
type CompileError struct {
	Query  string
	Source string
	Err    error
}

func (e *CompileError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Err)
	}

	return e.Err.Error()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Result is the outcome of compiling one query set. Queries holds every
// successfully compiled statement in input order; Errors holds one entry
// per failed statement.
type Result struct {
	Queries []*NamedQuery
	Errors  []*CompileError
}

// Option configures the compile pipeline.
type Option func(*pipeline)

// WithWorkers bounds the number of parallel compile workers. Zero means one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(p *pipeline) {
		p.workers = n
	}
}

type pipeline struct {
	workers int
}

// Compile analyzes every query document against a fully built registry.
// Statements are independent, so they compile in parallel over a read-only
// registry view; output order always matches input order.
func Compile(registry *typedsql.Registry, docs []QueryDoc, opts ...Option) Result {
	p := &pipeline{}
	for _, opt := range opts {
		opt(p)
	}

	workers := p.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if workers > len(docs) {
		workers = len(docs)
	}

	type slot struct {
		query *NamedQuery
		err   *CompileError
	}

	slots := make([]slot, len(docs))

	seen := make(map[string]int, len(docs))

	for i, doc := range docs {
		if first, dup := seen[doc.Name]; dup {
			slots[i].err = &CompileError{
				Query:  doc.Name,
				Source: doc.Source,
				Err:    fmt.Errorf("%w: %q also defined in %s", typedsql.ErrDuplicateQueryName, doc.Name, docs[first].Source),
			}

			continue
		}

		seen[doc.Name] = i
	}

	jobs := make(chan int)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				doc := docs[i]

				stmt, err := doc.Statement.Statement()
				if err == nil {
					slots[i].query, err = CompileQuery(doc.Name, doc.Source, stmt, registry)
				}

				if err != nil {
					slots[i].query = nil
					slots[i].err = &CompileError{Query: doc.Name, Source: doc.Source, Err: err}
				}
			}
		}()
	}

	for i := range docs {
		if slots[i].err == nil {
			jobs <- i
		}
	}

	close(jobs)
	wg.Wait()

	var result Result

	for _, s := range slots {
		switch {
		case s.err != nil:
			result.Errors = append(result.Errors, s.err)
		case s.query != nil:
			result.Queries = append(result.Queries, s.query)
		}
	}

	return result
}
