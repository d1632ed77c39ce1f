// Package tokenizer turns a text file into a pull-based sequence of
// whitespace-delimited tokens. Files are read one line at a time so memory
// use stays proportional to the longest line, not to the file.
package tokenizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrInvalidUTF8 ends a sequence at the first token that is not valid
// UTF-8. Such a token cannot be stored as a distinct JSON key.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 token")

// DefaultMaxLineBytes is the longest line a Tokenizer accepts before the
// sequence ends with bufio.ErrTooLong.
const DefaultMaxLineBytes = 16 * 1024 * 1024

const initialBufferBytes = 64 * 1024

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithMaxLineBytes overrides DefaultMaxLineBytes. Values <= 0 are ignored.
func WithMaxLineBytes(n int) Option {
	return func(t *Tokenizer) {
		if n > 0 {
			t.maxLine = n
		}
	}
}

// Tokenizer yields the tokens of one input in reading order: lines top to
// bottom, tokens within a line left to right. It is single pass.
//
// Usage mirrors bufio.Scanner:
//
//	tok := tokenizer.Open(path)
//	defer tok.Close()
//	for tok.Next() {
//		use(tok.Token())
//	}
//	if err := tok.Err(); err != nil { ... }
type Tokenizer struct {
	name    string
	maxLine int

	src     io.Reader
	closer  io.Closer
	lines   *bufio.Scanner
	pending []string
	token   string
	err     error
	done    bool
}

// Open prepares a Tokenizer over the file at path. An open failure is not
// returned here: the sequence is simply empty and Err reports the cause.
func Open(path string, opts ...Option) *Tokenizer {
	t := newTokenizer(path, opts)
	f, err := os.Open(path)
	if err != nil {
		t.err = fmt.Errorf("tokenizer: open %s: %w", path, err)
		t.done = true
		return t
	}
	t.src = f
	t.closer = f
	return t
}

// NewReader builds a Tokenizer over r. name is only used in error messages.
// The caller keeps ownership of r.
func NewReader(name string, r io.Reader, opts ...Option) *Tokenizer {
	t := newTokenizer(name, opts)
	t.src = r
	return t
}

func newTokenizer(name string, opts []Option) *Tokenizer {
	t := &Tokenizer{name: name, maxLine: DefaultMaxLineBytes}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the path or name the Tokenizer was built with.
func (t *Tokenizer) Name() string { return t.name }

// Next advances to the next token. It returns false once the input is
// exhausted, a read error occurred or a token is not valid UTF-8; tokens
// already returned stay valid.
func (t *Tokenizer) Next() bool {
	for len(t.pending) == 0 {
		if t.done {
			t.token = ""
			return false
		}
		if t.lines == nil {
			t.lines = bufio.NewScanner(t.src)
			t.lines.Buffer(make([]byte, 0, min(initialBufferBytes, t.maxLine)), t.maxLine)
		}
		if !t.lines.Scan() {
			if err := t.lines.Err(); err != nil {
				t.err = fmt.Errorf("tokenizer: read %s: %w", t.name, err)
			}
			t.finish()
			t.token = ""
			return false
		}
		t.pending = strings.Fields(t.lines.Text())
	}
	tok := t.pending[0]
	if !utf8.ValidString(tok) {
		t.err = fmt.Errorf("tokenizer: read %s: %w %q", t.name, ErrInvalidUTF8, tok)
		t.finish()
		t.token = ""
		return false
	}
	t.token = tok
	t.pending = t.pending[1:]
	return true
}

// Token returns the token produced by the last successful call to Next.
func (t *Tokenizer) Token() string { return t.token }

// Err returns the first open or read error, if any.
func (t *Tokenizer) Err() error { return t.err }

// Close releases the underlying file. It is safe to call more than once and
// is done automatically when the sequence ends.
func (t *Tokenizer) Close() error {
	t.done = true
	t.pending = nil
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	return err
}

func (t *Tokenizer) finish() {
	if err := t.Close(); err != nil && t.err == nil {
		t.err = fmt.Errorf("tokenizer: close %s: %w", t.name, err)
	}
}
