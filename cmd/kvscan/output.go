package main

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// lineWriter writes tab-separated result lines. It is safe for concurrent use.
type lineWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (l *lineWriter) Line(fields ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.WriteString(strings.Join(fields, "\t")); err != nil {
		return err
	}
	return l.w.WriteByte('\n')
}

func (l *lineWriter) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Flush()
}
