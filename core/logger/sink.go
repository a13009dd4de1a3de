package logger

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
)

var errClosed = errors.New("logger: output closed")

// sink is one destination; lines below min are not written to it.
type sink struct {
	w   io.Writer
	min slog.Level
	buf *bufio.Writer
}

type queued struct {
	level slog.Level
	data  []byte
}

// fanout writes lines to every sink from a single goroutine so handlers never
// block on slow files.
type fanout struct {
	queue chan queued
	flush chan chan error
	done  chan struct{}

	sendMu sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error

	sinks []sink
}

func newFanout(sinks []sink, bufSize int) *fanout {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	f := &fanout{
		queue: make(chan queued, 256),
		flush: make(chan chan error),
		done:  make(chan struct{}),
	}
	for _, s := range sinks {
		if s.w == nil {
			continue
		}
		s.buf = bufio.NewWriterSize(s.w, bufSize)
		f.sinks = append(f.sinks, s)
	}
	go f.run()
	return f
}

func (f *fanout) run() {
	defer close(f.done)
	for {
		select {
		case q, ok := <-f.queue:
			if !ok {
				f.flushSinks()
				return
			}
			f.writeSinks(q)
		case ack := <-f.flush:
			ack <- f.flushSinks()
		}
	}
}

// Write queues a copy of p. The first sink error is sticky and returned by
// every later call.
func (f *fanout) Write(level slog.Level, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	f.sendMu.RLock()
	defer f.sendMu.RUnlock()
	if f.closed {
		return errClosed
	}
	if err := f.stickyErr(); err != nil {
		return err
	}
	f.queue <- queued{level: level, data: append([]byte(nil), p...)}
	return nil
}

// Flush blocks until everything queued so far reached the sinks.
func (f *fanout) Flush() error {
	f.sendMu.RLock()
	defer f.sendMu.RUnlock()
	if f.closed {
		return errClosed
	}
	ack := make(chan error, 1)
	f.flush <- ack
	return <-ack
}

// Close drains the queue and stops the writer goroutine.
func (f *fanout) Close() error {
	f.sendMu.Lock()
	if f.closed {
		f.sendMu.Unlock()
		return nil
	}
	f.closed = true
	close(f.queue)
	f.sendMu.Unlock()

	<-f.done
	return f.stickyErr()
}

func (f *fanout) writeSinks(q queued) {
	for _, s := range f.sinks {
		if q.level < s.min {
			continue
		}
		if _, err := s.buf.Write(q.data); err != nil {
			f.fail(err)
			return
		}
		if err := s.buf.Flush(); err != nil {
			f.fail(err)
			return
		}
	}
}

func (f *fanout) flushSinks() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.buf.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) fail(err error) {
	f.errMu.Lock()
	defer f.errMu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *fanout) stickyErr() error {
	f.errMu.Lock()
	defer f.errMu.Unlock()
	return f.err
}
