package backfill

// ItemStatus is the processing outcome of a single backfill item.
type ItemStatus string

// Backfill item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of embedding and persisting one document.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful item result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed item result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the document identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Report summarizes one backfill batch.
type Report struct {
	Processed  int
	Successful int
	Failed     int
	CostUSD    float64
	Remaining  int
	Errors     []string
	Items      []Result
}

// NewReport tallies item results. Errors holds one message per failed item.
func NewReport(items []Result, costUSD float64, remaining int) Report {
	r := Report{
		Processed: len(items),
		CostUSD:   costUSD,
		Remaining: remaining,
		Errors:    []string{},
		Items:     items,
	}
	for _, it := range items {
		if it.status == StatusOK {
			r.Successful++
			continue
		}
		r.Failed++
		r.Errors = append(r.Errors, it.id+": "+it.err.Error())
	}
	if r.Remaining < 0 {
		r.Remaining = 0
	}
	return r
}
