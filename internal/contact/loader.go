package contact

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fatal load errors.
var (
	ErrFileNotFound     = errors.New("contacts file not found")
	ErrPermissionDenied = errors.New("contacts file not readable")
)

// Recoverable line errors, reported through Book.Diagnostics.
var (
	ErrNoCurrentContact = errors.New("no current contact")
	ErrBadDetails       = errors.New("bad contact details")
)

// Diagnostic describes a line that was dropped while loading.
type Diagnostic struct {
	Line int
	Text string
	Err  error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %v (%s) -- review file format", d.Line, d.Err, d.Text)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Book is the result of a load: the contacts in file order plus every
// recoverable problem found on the way.
type Book struct {
	Contacts    []Contact
	Diagnostics []Diagnostic
}

// Load reads and parses the contacts file at path.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	book, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return book, nil
}

// Parse reads contacts from r in a single pass. Malformed lines are dropped
// and recorded as diagnostics; only read failures are returned as errors.
// Lines may be of any length.
func Parse(r io.Reader) (*Book, error) {
	p := &parser{book: &Book{Contacts: []Contact{}}, cur: -1}

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			p.line(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return p.book, nil
}

// parser holds the state of one Parse call. cur indexes the contact that
// indented lines belong to, or is -1 before the first name line.
type parser struct {
	book   *Book
	cur    int
	lineNo int
}

func (p *parser) line(raw string) {
	p.lineNo++

	content := strings.TrimRightFunc(raw, unicode.IsSpace)
	if content == "" {
		return
	}

	first, _ := utf8.DecodeRuneInString(content)
	if !unicode.IsSpace(first) {
		p.book.Contacts = append(p.book.Contacts, Contact{
			Name:       content,
			Attributes: []Attribute{},
			Notes:      []string{},
		})
		p.cur = len(p.book.Contacts) - 1
		return
	}

	trimmed := strings.TrimLeftFunc(content, unicode.IsSpace)

	if p.cur < 0 {
		p.skip(trimmed, ErrNoCurrentContact)
		return
	}
	c := &p.book.Contacts[p.cur]

	// Trailing space is already gone, so an empty note is a lone "-".
	if trimmed == "-" {
		return
	}
	if note, ok := strings.CutPrefix(trimmed, "- "); ok {
		if note = strings.TrimSpace(note); note != "" {
			c.Notes = append(c.Notes, note)
		}
		return
	}

	key, value, ok := strings.Cut(trimmed, ":")
	if !ok {
		p.skip(trimmed, ErrBadDetails)
		return
	}
	c.Attributes = append(c.Attributes, Attribute{
		Key:   strings.TrimSpace(key),
		Value: strings.TrimSpace(value),
	})
}

func (p *parser) skip(text string, err error) {
	p.book.Diagnostics = append(p.book.Diagnostics, Diagnostic{Line: p.lineNo, Text: text, Err: err})
}
