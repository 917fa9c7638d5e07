package instagram

import (
	"fmt"
	"log"
)

// Scope names the kind of item a recoverable error belongs to.
type Scope string

const (
	ScopeProfile  Scope = "profile"
	ScopePost     Scope = "post"
	ScopeMedia    Scope = "media"
	ScopeRelation Scope = "relation"
)

// ItemError is a recoverable failure of a single item. The item is dropped or
// defaulted and the import continues.
type ItemError struct {
	Scope Scope
	Index int    // position in the source collection, -1 when not applicable
	Ref   string // field name, file or media path
	Err   error
}

func (e ItemError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s #%d (%s): %v", e.Scope, e.Index, e.Ref, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Scope, e.Ref, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Batch is a partial result: the items that could be assembled together with
// the issues met along the way.
type Batch[T any] struct {
	Items  []T
	Issues []ItemError
}

// Add appends a successfully assembled item.
func (b *Batch[T]) Add(items ...T) {
	b.Items = append(b.Items, items...)
}

// Fail records and logs a recoverable issue.
func (b *Batch[T]) Fail(issue ItemError) {
	recordIssue(&b.Issues, issue)
}

// Merge appends another batch of the same item type.
func (b *Batch[T]) Merge(other Batch[T]) {
	b.Items = append(b.Items, other.Items...)
	b.Issues = append(b.Issues, other.Issues...)
}

func recordIssue(issues *[]ItemError, issue ItemError) {
	log.Printf("WARNING: import %v", issue)
	*issues = append(*issues, issue)
}
