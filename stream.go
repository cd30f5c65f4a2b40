package pngx

import (
	"errors"
	"io"
)

// errCanceled is the error a dropped StreamDecoder's pipe read fails with.
var errCanceled = errors.New("pngx: stream decoder canceled")

// StreamDecoder accepts PNG bytes in arbitrary-sized chunks via Write and
// produces the decoded Raster from End, per spec.md §4.12/§6's
// "decode_streaming()" façade.
//
// Internally this is a pull pipeline exactly as spec.md §5 describes it:
// an io.Pipe stands in for the "demand N bytes, then yield control back to
// the caller" boundary. The decode goroutine blocks on Read until Write
// supplies enough bytes, which is precisely the suspension point spec.md
// §5 calls out as the only place this codec ever blocks. This is a more
// idiomatic Go rendering of the same design fumin-png expresses as a plain
// io.Reader pull adapter (decoder.Read) — here the producer is a
// goroutine-fed pipe instead of an in-memory chunk parser, because the
// bytes arrive from the host over time rather than all at once.
type StreamDecoder struct {
	pw     *io.PipeWriter
	result chan streamResult
	done   bool
}

type streamResult struct {
	raster *Raster
	err    error
}

// NewStreamDecoder starts the decode pipeline. No bytes are required until
// the first Write call.
func NewStreamDecoder() *StreamDecoder {
	pr, pw := io.Pipe()
	sd := &StreamDecoder{pw: pw, result: make(chan streamResult, 1)}

	go func() {
		raster, err := Decode(pr)
		sd.result <- streamResult{raster: raster, err: err}
		if err != nil {
			pr.CloseWithError(err)
		} else {
			pr.Close()
		}
	}()

	return sd
}

// Write feeds the next chunk of PNG bytes into the decoder. It blocks until
// the decode pipeline has read all of p, giving the host natural
// backpressure.
//
// If the decoder has already failed (bad signature, CRC mismatch, ...),
// Write returns that same error instead of blocking forever on a reader
// that has stopped reading.
func (sd *StreamDecoder) Write(p []byte) (int, error) {
	if sd.done {
		return 0, io.ErrClosedPipe
	}
	return sd.pw.Write(p)
}

// Cancel aborts the decode pipeline without waiting for a result, per
// spec.md §5's "the owner drops the codec instance; no background work
// survives it." It unblocks the decode goroutine's pending pipe Read with
// errCanceled so it can exit instead of leaking. Safe to call multiple
// times, and safe to call after End.
func (sd *StreamDecoder) Cancel() {
	if sd.done {
		return
	}
	sd.pw.CloseWithError(errCanceled)
	sd.done = true
	// Drain the goroutine's result so it doesn't block forever sending to
	// a channel nobody will ever receive from again.
	go func() {
		<-sd.result
	}()
}

// End signals that no more input is coming and waits for the final
// Raster (or error). It is safe to call End even if a prior Write already
// failed; the recorded result is returned either way.
func (sd *StreamDecoder) End() (*Raster, error) {
	if !sd.done {
		sd.pw.Close()
		sd.done = true
	}
	res := <-sd.result
	// Allow a second End call (e.g. from a deferred cleanup after an
	// earlier explicit call) to observe the same result rather than
	// blocking on an already-drained channel.
	sd.result <- res
	return res.raster, res.err
}
