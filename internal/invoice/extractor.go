package invoice

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
)

// DefaultDelimiter separates orders inside an invoice document.
const DefaultDelimiter = "=========="

const maxLineSize = 1 << 20

var ErrEmptyDocument = errors.New("empty invoice document")

// Segment is the block of retained lines between two delimiter lines.
// Index is 1-based in document order.
type Segment struct {
	Index int
	Lines []string
}

// Segments splits r into raw blocks. A line starting with delimiter opens a new
// block; blank lines are dropped and so is anything before the first delimiter.
// A read error is yielded once with a zero Segment and ends the sequence.
func Segments(r io.Reader, delimiter string) iter.Seq2[Segment, error] {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return func(yield func(Segment, error) bool) {
		if r == nil {
			yield(Segment{}, ErrEmptyDocument)
			return
		}

		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		var (
			cur    []string
			open   bool
			index  int
			sawAny bool
		)
		flush := func() bool {
			if len(cur) == 0 {
				return true
			}
			index++
			seg := Segment{Index: index, Lines: cur}
			cur = nil
			return yield(seg, nil)
		}

		for sc.Scan() {
			sawAny = true
			line := sc.Text()
			if strings.HasPrefix(line, delimiter) {
				if open && !flush() {
					return
				}
				open = true
				continue
			}
			if !open || strings.TrimSpace(line) == "" {
				continue
			}
			cur = append(cur, line)
		}
		if err := sc.Err(); err != nil {
			yield(Segment{}, err)
			return
		}
		if !sawAny {
			yield(Segment{}, ErrEmptyDocument)
			return
		}
		if open {
			flush()
		}
	}
}
