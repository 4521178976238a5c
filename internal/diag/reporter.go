package diag

// Reporter is the minimal contract for receiving diagnostics from producers
// that keep going after a failure (pipeline stages, plugin boundaries).
type Reporter interface {
	Report(d *Diagnostic)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d *Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d *Diagnostic)

func (f ReporterFunc) Report(d *Diagnostic) { f(d) }

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(*Diagnostic) {}
