package estaterag

import (
	domanswer "github.com/kailas-cloud/estaterag/internal/domain/answer"
	dombatch "github.com/kailas-cloud/estaterag/internal/domain/batch"
)

// Listing is a raw listing record as decoded from JSON.
type Listing = map[string]any

// ItemStatus is the ingest outcome of one listing.
type ItemStatus string

// Ingest outcomes.
const (
	StatusAdded   ItemStatus = "added"
	StatusSkipped ItemStatus = "skipped"
	StatusFailed  ItemStatus = "failed"
)

// IngestItem is the outcome of one record of an Ingest call.
type IngestItem struct {
	Index  int
	ID     string
	Status ItemStatus
	Err    error
}

// IngestReport aggregates the outcomes of one Ingest call.
type IngestReport struct {
	Added   int
	Skipped int
	Failed  int
	Items   []IngestItem
}

// Candidate is one retrieved listing passed to the completion model.
type Candidate struct {
	ID       string
	Score    float64
	FullText string
}

// Answer is the response to a natural-language query.
type Answer struct {
	Query     string
	Text      string
	Sources   []string
	K         int
	Retrieved []Candidate
}

func toIngestReport(r dombatch.Report) IngestReport {
	out := IngestReport{
		Added:   r.Added,
		Skipped: r.Skipped,
		Failed:  r.Failed,
		Items:   make([]IngestItem, len(r.Items)),
	}
	for i, item := range r.Items {
		out.Items[i] = IngestItem{
			Index:  item.Index(),
			ID:     item.ID(),
			Status: ItemStatus(item.Status()),
			Err:    item.Err(),
		}
	}
	return out
}

func toAnswer(a domanswer.Answer) Answer {
	out := Answer{
		Query:     a.Query,
		Text:      a.AnswerText,
		Sources:   append([]string{}, a.Sources...),
		K:         a.K,
		Retrieved: make([]Candidate, len(a.Retrieved)),
	}
	for i, r := range a.Retrieved {
		out.Retrieved[i] = Candidate{ID: r.ID, Score: r.Score, FullText: r.FullText}
	}
	return out
}
