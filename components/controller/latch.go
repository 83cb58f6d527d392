package controller

// Latch turns a held button into a single press. Run returns true only on the
// first call after the value becomes true.
type Latch struct {
	val bool
}

func (l *Latch) Run(v bool) bool {
	r := v && !l.val
	l.val = v
	return r
}

// Held returns the value passed to the last Run.
func (l *Latch) Held() bool {
	return l.val
}
