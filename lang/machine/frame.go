package machine

// frame records one active function invocation: the closure being
// executed, the instruction pointer into its chunk, and the base index of
// its window on the thread's value stack (slot 0 of that window is the
// receiver for methods, or the closure itself for plain calls).
type frame struct {
	closure *Closure
	ip      int
	base    int
}

func (f *frame) name() string {
	if f.closure == nil {
		return ""
	}
	return f.closure.Fn.Name()
}
