package ipc

import "fmt"

// Handler is a native service function. It receives the decoded arguments in
// signature order and returns the reply parameters, regular values first.
// Any out-of-band state the handler needs (kernel objects, service context)
// is closure-captured; the adapter never sees it. A returned error is a
// host-side fault that aborts the call path — guest-visible failures are
// expressed as an error result-code word instead.
type Handler func(args []Param) ([]Param, error)

// Func binds a command's declared argument types to its handler.
type Func struct {
	Name string
	Args []Type
	Fn   Handler
}

// Call runs one synchronous command-buffer exchange: decode the header, read
// every declared argument, verify the buffer was consumed exactly, invoke the
// handler, write the reply, and rewrite the header with the reply's lengths
// under the original command id.
//
// Exact consumption is the load-bearing property here. A signature that reads
// fewer or more words than the header declares means the handler no longer
// matches what the guest sent, and continuing would desynchronize every
// parameter after the mismatch.
func Call(b *Buffer, mem Memory, f Func) error {
	h := b.Header()

	r, err := NewReader(b, h, mem)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	args := make([]Param, len(f.Args))
	for i, t := range f.Args {
		if args[i], err = r.Next(t); err != nil {
			return fmt.Errorf("%s: argument %d: %w", f.Name, i, err)
		}
	}
	if err := r.Finish(); err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}

	results, err := f.Fn(args)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}

	w := NewWriter(b, mem)
	for i, p := range results {
		if err := w.Write(p); err != nil {
			return fmt.Errorf("%s: result %d: %w", f.Name, i, err)
		}
	}
	if err := w.Finish(h.CommandID); err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	return nil
}
