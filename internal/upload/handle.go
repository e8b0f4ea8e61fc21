package upload

// Handle scopes an accepted upload to the request that produced it. Close
// deletes the file unless Commit was called first, so
//
//	h, err := intake.Receive(...)
//	...
//	defer h.Close()
//
// guarantees no orphaned file on any exit path. A nil *Handle is valid and
// stands for "no file".
type Handle struct {
	file      *File
	intake    *Intake
	committed bool
	closed    bool
}

// File returns the stored file.
func (h *Handle) File() File {
	return *h.file
}

// Commit hands ownership of the file to whatever accepted it.
func (h *Handle) Commit() {
	if h == nil || h.closed {
		return
	}
	h.committed = true
}

// Close removes the file unless committed. Safe to call more than once.
func (h *Handle) Close() {
	if h == nil || h.closed {
		return
	}
	h.closed = true
	if h.committed {
		return
	}
	h.intake.Remove(*h.file)
}

func (h *Handle) Committed() bool {
	return h != nil && h.committed
}
