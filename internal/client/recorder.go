package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

var (
	// ErrRecorderBusy is returned when Start is called while recording.
	ErrRecorderBusy = errors.New("recorder already started")
	// ErrNotRecording is returned when Stop is called with no recording.
	ErrNotRecording = errors.New("recorder not started")
	// ErrCaptureOverflow is returned when the capture exceeds the buffer bound.
	ErrCaptureOverflow = errors.New("capture exceeded buffer limit")
)

// CaptureDevice grants scoped access to a recording source. Acquire hands out
// a stream that the recorder drains and is responsible for closing.
type CaptureDevice interface {
	Acquire(ctx context.Context) (io.ReadCloser, error)
}

// Recorder drains a capture device into a bounded in-memory buffer. The
// device is released exactly once, on Stop or on drain error.
type Recorder struct {
	device   CaptureDevice
	maxBytes int

	mu       sync.Mutex
	src      io.ReadCloser
	buf      bytes.Buffer
	done     chan struct{}
	release  *sync.Once
	stopping bool
	drainErr error
}

// NewRecorder creates a recorder bounded at maxBytes.
func NewRecorder(device CaptureDevice, maxBytes int) *Recorder {
	return &Recorder{device: device, maxBytes: maxBytes}
}

// Start acquires the capture device and begins draining it.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.src != nil {
		return ErrRecorderBusy
	}

	src, err := r.device.Acquire(ctx)
	if err != nil {
		return err
	}

	r.src = src
	r.buf.Reset()
	r.done = make(chan struct{})
	r.release = &sync.Once{}
	r.stopping = false
	r.drainErr = nil

	go r.drain(src, r.done, r.release)
	return nil
}

// Stop releases the device, waits for the drain to finish, and returns the
// captured bytes. A capture that overflowed the bound returns
// ErrCaptureOverflow alongside nothing.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	if r.src == nil {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	r.stopping = true
	release := r.release
	src := r.src
	done := r.done
	r.mu.Unlock()

	release.Do(func() { _ = src.Close() })
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.drainErr
	data := append([]byte(nil), r.buf.Bytes()...)
	r.src = nil
	r.buf.Reset()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Recorder) drain(src io.ReadCloser, done chan struct{}, release *sync.Once) {
	defer close(done)
	defer release.Do(func() { _ = src.Close() })

	chunk := make([]byte, 32*1024)
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			r.mu.Lock()
			if r.buf.Len()+n > r.maxBytes {
				r.drainErr = ErrCaptureOverflow
				r.mu.Unlock()
				return
			}
			r.buf.Write(chunk[:n])
			r.mu.Unlock()
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			r.mu.Lock()
			// A read error triggered by Stop closing the source is a
			// normal end of capture.
			if !r.stopping {
				r.drainErr = err
			}
			r.mu.Unlock()
			return
		}
	}
}
