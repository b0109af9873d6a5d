package qacache

import (
	"context"
	"fmt"
	"time"
)

// Record is a stored question and its answer.
type Record struct {
	ID        string
	Text      string
	Question  string
	Timestamp string
}

// Record returns the stored record with the given id.
// Returns ErrNotFound when no such record exists.
func (c *Client) Record(ctx context.Context, id string) (_ Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_record", start, err) }()

	rec, err := c.records.Get(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return Record{
		ID:        rec.ID(),
		Text:      rec.Text(),
		Question:  rec.Question(),
		Timestamp: rec.Timestamp(),
	}, nil
}

// Count returns the number of stored records.
func (c *Client) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count_records", start, err) }()

	n, err = c.records.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
