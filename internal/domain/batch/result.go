// Package batch holds per-item outcomes of a listing ingest batch.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusAdded   ItemStatus = "added"
	StatusSkipped ItemStatus = "skipped"
	StatusFailed  ItemStatus = "failed"
)

// Result is the outcome of processing one record of a batch.
type Result struct {
	index  int
	id     string
	status ItemStatus
	err    error
}

// NewAdded records a newly stored listing.
func NewAdded(index int, id string) Result {
	return Result{index: index, id: id, status: StatusAdded}
}

// NewSkipped records a duplicate listing that was not re-embedded.
func NewSkipped(index int, id string) Result {
	return Result{index: index, id: id, status: StatusSkipped}
}

// NewFailed records a rejected record. id may be empty when normalization failed.
func NewFailed(index int, id string, err error) Result {
	return Result{index: index, id: id, status: StatusFailed, err: err}
}

// Index returns the position of the record in the input batch.
func (r Result) Index() int { return r.index }

// ID returns the listing id, if one was computed.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Report aggregates the outcomes of one ingest call.
type Report struct {
	Added   int
	Skipped int
	Failed  int
	Items   []Result
}

// NewReport creates an empty report sized for n records.
func NewReport(n int) Report {
	return Report{Items: make([]Result, 0, n)}
}

// Record appends an item outcome and updates the counters.
func (r *Report) Record(res Result) {
	switch res.status {
	case StatusAdded:
		r.Added++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
	r.Items = append(r.Items, res)
}
