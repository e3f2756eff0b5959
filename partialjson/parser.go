package partialjson

import "strings"

// Parser accumulates streamed JSON text and keeps the most recent successful
// decode. Chunks in the middle of a token can make a given prefix
// unrepairable; Result keeps returning the last good value until a later chunk
// produces a better one. Parser is not safe for concurrent use.
type Parser struct {
	buf    strings.Builder
	last   any
	lastOK bool
}

// NewParser returns an empty streaming parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends a chunk and attempts a repair of the accumulated buffer.
// It returns the current best decode and whether any decode has succeeded yet.
func (p *Parser) Feed(chunk string) (any, bool) {
	p.buf.WriteString(chunk)

	if value, ok := Parse(p.buf.String()); ok {
		p.last = value
		p.lastOK = true
	}
	return p.last, p.lastOK
}

// Result returns the last successful decode of the accumulated buffer.
func (p *Parser) Result() (any, bool) {
	return p.last, p.lastOK
}

// Object returns the last successful decode as a JSON object.
func (p *Parser) Object() (map[string]any, bool) {
	if !p.lastOK {
		return nil, false
	}
	obj, ok := p.last.(map[string]any)
	return obj, ok
}

// Buffer returns the raw accumulated text.
func (p *Parser) Buffer() string {
	return p.buf.String()
}

// Reset clears the buffer and any remembered decode.
func (p *Parser) Reset() {
	p.buf.Reset()
	p.last = nil
	p.lastOK = false
}
