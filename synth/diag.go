package synth

import "fmt"

// Diag carries non-fatal warnings produced during synthesis (ignored
// keywords, dropped constraints, unknown formats).
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool  { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(at string, f string, a ...any) {
	d.ws = append(d.ws, at+": "+fmt.Sprintf(f, a...))
}
