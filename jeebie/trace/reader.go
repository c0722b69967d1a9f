package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reader yields records from a reference log. Blank lines and lines
// starting with '#' are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Line returns the line number of the last record read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next record, or io.EOF when the log is exhausted.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, err := ParseRecord(text)
		if err != nil {
			return Record{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// Checker walks a reference log in lockstep with execution.
type Checker struct {
	reader *Reader
	done   bool
}

func NewChecker(r io.Reader) *Checker {
	return &Checker{reader: NewReader(r)}
}

// Check compares got with the next reference record. It returns io.EOF once
// the reference is exhausted and a *MismatchError on the first difference.
func (c *Checker) Check(got Record) error {
	if c.done {
		return io.EOF
	}
	expected, err := c.reader.Next()
	if errors.Is(err, io.EOF) {
		c.done = true
		return io.EOF
	}
	if err != nil {
		return err
	}

	if err := Compare(expected, got); err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			mismatch.Line = c.reader.Line()
		}
		return err
	}
	return nil
}
