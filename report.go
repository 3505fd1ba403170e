package idcl

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// EntryResult is the outcome of one entry.
type EntryResult struct {
	// Index is the entry's position in its container's directory.
	Index int

	// Name is the normalized entry name.
	Name string

	// TypeTag is the entry's resource type string.
	TypeTag string

	// Container is the path of the nested container the entry came from,
	// relative to the extraction root. Empty for top-level entries.
	Container string

	Kind    Kind
	Status  Status
	Size    uint64
	Outputs []Output

	// Err is set for failed entries and for passthrough entries, where it
	// wraps ErrUnimplementedFormat. Manifests keep only its text.
	Err error
}

// Summary counts entries by outcome.
type Summary struct {
	Succeeded    int
	Passthrough  int
	Skipped      int
	Failed       int
	NotProcessed int
	Outputs      int
	Bytes        uint64
}

// Total returns the number of entries counted.
func (s Summary) Total() int {
	return s.Succeeded + s.Passthrough + s.Skipped + s.Failed + s.NotProcessed
}

func (s Summary) String() string {
	return fmt.Sprintf("%d succeeded, %d passthrough, %d skipped, %d failed, %d not processed",
		s.Succeeded, s.Passthrough, s.Skipped, s.Failed, s.NotProcessed)
}

// Report lists the outcome of every entry of an extraction, top-level
// entries in directory order, each followed by the entries of the container
// it holds, if any.
type Report struct {
	Archive string
	Entries []EntryResult
}

// Summary counts the report's entries by status.
func (r *Report) Summary() Summary {
	var s Summary
	for i := range r.Entries {
		e := &r.Entries[i]
		switch e.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusPassthrough:
			s.Passthrough++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		case StatusNotProcessed:
			s.NotProcessed++
		}
		s.Outputs += len(e.Outputs)
		for _, o := range e.Outputs {
			s.Bytes += o.Size
		}
	}
	return s
}

// Failures returns the failed entries.
func (r *Report) Failures() []EntryResult {
	var out []EntryResult
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the result for the entry with the given container and name.
func (r *Report) Find(container, name string) (EntryResult, bool) {
	for _, e := range r.Entries {
		if e.Container == container && e.Name == name {
			return e, true
		}
	}
	return EntryResult{}, false
}

// WriteTable writes one line per entry as aligned columns.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tKIND\tSIZE\tOUTPUTS\tNAME\tERROR")
	for _, e := range r.Entries {
		name := e.Name
		if e.Container != "" {
			name = e.Container + "/" + name
		}
		errText := ""
		if e.Err != nil && e.Status == StatusFailed {
			errText = e.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", e.Status, e.Kind, e.Size, len(e.Outputs), name, errText)
	}
	return tw.Flush()
}
