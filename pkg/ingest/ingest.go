// Package ingest implements the stdin ingest loop: a
// 64 KiB buffered reader, split on line feed, ASCII whitespace
// trimming, and carry-over of bytes that straddle a read boundary.
package ingest

import (
	"bytes"
	"io"

	"github.com/foundryfind/ff/pkg/arena"
	"github.com/foundryfind/ff/pkg/store"
)

// bufSize is the read chunk size.
const bufSize = 64 * 1024

// Store is the façade the ingest loop publishes lines through: the
// fast path appends raw bytes to the arena itself, then registers the
// resulting window.
type Store interface {
	Arena() *arena.Arena
	Register(offset uint32, length uint16) store.Item
	SealAndShrink()
}

// Run drains r, splitting on 0x0A and publishing each trimmed non-empty
// line to cs, until r is exhausted. It returns the number of lines
// ingested. At EOF it calls cs.SealAndShrink().
func Run(r io.Reader, cs Store) (int, error) {
	buf := make([]byte, bufSize)

	pos := 0          // carried-over, unconsumed bytes sit at buf[:pos]
	skipping := false // true while discarding the remainder of an overlong line
	count := 0

	for {
		n, err := r.Read(buf[pos:])

		if n > 0 {
			end := pos + n

			consumed, stillSkipping := processBuffer(buf[:end], cs, &count, skipping)
			skipping = stillSkipping

			remainder := end - consumed
			copy(buf[:remainder], buf[consumed:end])
			pos = remainder

			if pos == len(buf) && !skipping {
				// A full buffer with no newline: the line already
				// exceeds arena.MaxWindowLength. Emit it truncated and
				// discard bytes up to the next newline.
				appendLine(buf[:pos], cs, &count)
				pos = 0
				skipping = true
			}
		}

		if err != nil {
			if pos > 0 && !skipping {
				appendLine(buf[:pos], cs, &count)
			}

			if err == io.EOF {
				cs.SealAndShrink()
				return count, nil
			}

			return count, err
		}
	}
}

// processBuffer consumes every complete line in data (up to and
// including its last 0x0A), publishing each one unless skipping is
// true for that particular line. It returns how many leading bytes of
// data were consumed (the rest is carried over to the next read) and
// whether a discard is still in progress.
func processBuffer(data []byte, cs Store, count *int, skipping bool) (consumed int, stillSkipping bool) {
	idx := 0

	for {
		nl := bytes.IndexByte(data[idx:], '\n')
		if nl < 0 {
			return idx, skipping
		}

		lineEnd := idx + nl
		if !skipping {
			appendLine(data[idx:lineEnd], cs, count)
		}

		skipping = false
		idx = lineEnd + 1
	}
}

// appendLine trims ASCII whitespace, drops empty lines, truncates to
// arena.MaxWindowLength, and publishes the remaining bytes.
func appendLine(line []byte, cs Store, count *int) {
	line = trimASCIISpace(line)
	if len(line) == 0 {
		return
	}

	if len(line) > arena.MaxWindowLength {
		line = line[:arena.MaxWindowLength]
	}

	offset, length := cs.Arena().Append(line)
	cs.Register(offset, length)
	*count++
}

func trimASCIISpace(b []byte) []byte {
	start := 0
	for start < len(b) && isASCIISpace(b[start]) {
		start++
	}

	end := len(b)
	for end > start && isASCIISpace(b[end-1]) {
		end--
	}

	return b[start:end]
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
