// Package tailer implements the per-file log tailer (spec.md §4.B): it owns
// one file handle per character, reacts to filesystem notifications relayed
// by the engine's shared fsnotify.Watcher, frames complete lines via Framer,
// parses the wire format, and forwards admitted LogEvents to the driver.
package tailer

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"gswarm-sidecar/internal/logging"
	"gswarm-sidecar/internal/metrics"
	"gswarm-sidecar/internal/model"
	"gswarm-sidecar/internal/prefilter"
)

// RedactFunc optionally scrubs a log message before it becomes part of a
// LogEvent (supplemented feature: off by default, see SPEC_FULL.md §10.5).
type RedactFunc func(message string) string

const readChunkSize = 64 * 1024

// Tailer owns one character's log file and frame buffer.
type Tailer struct {
	characterID string
	filename    string
	fs          afero.Fs
	outbound    chan<- *model.LogEvent
	log         *logrus.Entry

	mu     sync.Mutex
	file   afero.File
	framer *Framer

	filter atomic.Pointer[prefilter.Predicate]
	redact atomic.Pointer[RedactFunc]
}

// New constructs a tailer for characterID/filename. If the file does not yet
// exist, the tailer holds no handle but remains installed — a later Create
// notification will reopen it (spec.md §4.B "Construction").
func New(characterID, filename string, outbound chan<- *model.LogEvent, fs afero.Fs) *Tailer {
	t := &Tailer{
		characterID: characterID,
		filename:    filename,
		fs:          fs,
		outbound:    outbound,
		log:         logging.For("tailer").WithField("character_id", characterID).WithField("filename", filename),
		framer:      NewFramer(),
	}

	reject := prefilter.Predicate(prefilter.Reject)
	t.filter.Store(&reject)

	t.mu.Lock()
	t.openAtEnd()
	t.mu.Unlock()

	return t
}

// SetFilter atomically replaces the tailer's prefilter predicate. Visible on
// the next line processed (spec.md §4.B "Filter swap").
func (t *Tailer) SetFilter(p prefilter.Predicate) {
	t.filter.Store(&p)
}

// SetRedact installs an optional message-scrubbing hook. Pass nil to disable.
func (t *Tailer) SetRedact(r RedactFunc) {
	if r == nil {
		t.redact.Store(nil)
		return
	}
	t.redact.Store(&r)
}

// CharacterID returns the character this tailer belongs to.
func (t *Tailer) CharacterID() string { return t.characterID }

// Filename returns the absolute path this tailer watches.
func (t *Tailer) Filename() string { return t.filename }

func (t *Tailer) openAtEnd() {
	f, err := t.fs.Open(t.filename)
	if err != nil {
		t.log.WithError(err).Debug("error opening file")
		t.file = nil
		return
	}

	t.file = f
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		t.log.WithError(err).Error("error seeking to end of file")
	}
}

func (t *Tailer) reopenAtStart() {
	if t.file != nil {
		_ = t.file.Close()
	}

	f, err := t.fs.Open(t.filename)
	if err != nil {
		t.log.WithError(err).Debug("error reopening file")
		t.file = nil
		return
	}

	t.file = f
	t.framer = NewFramer()
	t.log.Debug("reopened file at offset 0 after rotation")
}

// HandleEvent dispatches one filesystem notification to the tailer
// (spec.md §4.B "Notification handling").
func (t *Tailer) HandleEvent(op fsnotify.Op) {
	switch {
	case op.Has(fsnotify.Create):
		t.mu.Lock()
		t.reopenAtStart()
		t.mu.Unlock()
	case op.Has(fsnotify.Write):
		t.processAvailableLines()
	case op.Has(fsnotify.Remove):
		// Keep handle; a subsequent Create replaces it.
	case op.Has(fsnotify.Chmod):
		// Access-equivalent: no-op.
	default:
		t.log.WithField("op", op.String()).Warn("unexpected filesystem event received")
	}
}

func (t *Tailer) processAvailableLines() {
	lines := t.drainLines()
	for _, line := range lines {
		t.handleLine(line)
	}
}

func (t *Tailer) drainLines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return nil
	}

	var lines []string
	chunk := make([]byte, readChunkSize)
	for {
		n, err := t.file.Read(chunk)
		if n > 0 {
			t.framer.Feed(chunk[:n], func(line string) {
				lines = append(lines, line)
			})
		}
		if err != nil {
			if err != io.EOF {
				t.log.WithError(err).Error("error reading log file")
			}
			return lines
		}
		if n == 0 {
			return lines
		}
	}
}

func (t *Tailer) handleLine(line string) {
	timestampStr, message, ok := parseLine(line)
	if !ok {
		metrics.LinesParsedFailed.WithLabelValues(t.characterID).Inc()
		return
	}

	filter := *t.filter.Load()
	if !filter(message) {
		return
	}
	metrics.LinesAdmitted.WithLabelValues(t.characterID).Inc()

	if r := t.redact.Load(); r != nil {
		message = (*r)(message)
	}

	date, err := parseTimestamp(timestampStr)
	if err != nil {
		t.log.WithError(err).WithField("timestamp", timestampStr).Error("failed to parse log timestamp, using now")
		date = time.Now()
	}

	event := &model.LogEvent{
		CharacterID: t.characterID,
		Date:        date,
		Message:     message,
	}

	t.outbound <- event
}

// Close releases the tailer's file handle, if any.
func (t *Tailer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
