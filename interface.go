package terramap

// Progress receives (percent, label) updates while a map generates.
// pct runs 0 to 1 within each labelled stage. Updates are delivered on the
// generating goroutine, so implementations must not block.
type Progress interface {
	Update(pct float64, label string)
}

// ProgressFunc lets a plain function act as Progress.
type ProgressFunc func(pct float64, label string)

// Update calls f
func (f ProgressFunc) Update(pct float64, label string) {
	f(pct, label)
}
