package queue

import "github.com/tokenstd/revert-registry/internal/domain"

// Item is the minimal data placed on the queue.
// Workers fetch the full LintJob from the DB using the ID,
// keeping the queue lightweight and the database state authoritative.
type Item struct {
	JobID    string
	Priority domain.JobPriority
}
