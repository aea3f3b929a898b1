package gpu

// CmdBuffer is an append-only, replayable recording of commands.
// Recording is separated into Begin/Add.../End; a sealed buffer is
// a plain ordered sequence that may be submitted zero or more times.
type CmdBuffer struct {
	base
	cmds      []Command
	recording bool
	sealed    bool
}

// newCmdBuffer constructs a CmdBuffer owned by dev.
func newCmdBuffer(dev *Device) *CmdBuffer {
	return &CmdBuffer{base: base{kind: KCommandBuffer, dev: dev}}
}

// Begin clears the command list and prepares the buffer for
// recording. It fails if a previous recording was not ended.
func (b *CmdBuffer) Begin() error {
	if b.recording {
		return errf(ErrInvalidState, "CmdBuffer.Begin: already recording")
	}
	b.cmds = b.cmds[:0]
	b.recording = true
	b.sealed = false
	return nil
}

// Add appends one or more commands to the recording. Appends are
// O(1) amortised. It fails if the buffer is not currently
// recording (i.e. End was already called, or Begin was never
// called).
func (b *CmdBuffer) Add(cmds ...Command) error {
	if !b.recording {
		return errf(ErrInvalidState, "CmdBuffer.Add: not recording")
	}
	b.cmds = append(b.cmds, cmds...)
	return nil
}

// End seals the buffer for submission. After End, further Add
// calls fail until the next Begin.
func (b *CmdBuffer) End() error {
	if !b.recording {
		return errf(ErrInvalidState, "CmdBuffer.End: not recording")
	}
	b.recording = false
	b.sealed = true
	return nil
}

// Recorded returns the sequence of commands currently recorded in
// the buffer. The returned slice must not be modified.
func (b *CmdBuffer) Recorded() []Command { return b.cmds }

// Sealed reports whether the buffer has been ended and is ready
// for submission.
func (b *CmdBuffer) Sealed() bool { return b.sealed }

func (b *CmdBuffer) Destroy() {
	if b.dropped {
		return
	}
	b.dropped = true
}
