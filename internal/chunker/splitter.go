// Package chunker splits document text into ordered, token-bounded pieces
// that respect structural boundaries and carry enough context to be useful
// on their own.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/repovec/repovec/internal/core/domain"
)

// DefaultMaxTokens is the default token budget per piece.
const DefaultMaxTokens = 500

// DefaultOverlap is the default number of tokens shared between adjacent
// pieces produced by a hard cut.
const DefaultOverlap = 50

// Piece is one chunk candidate before it becomes a stored Chunk.
type Piece struct {
	// Context is the document path plus the nearest enclosing heading at
	// the piece's start offset.
	Context string

	// Data is the piece text.
	Data string

	// Tokens is the token count of Data, overlap included.
	Tokens int
}

// Splitter produces token-bounded pieces from document text.
// Splitting is deterministic: identical input yields an identical sequence.
type Splitter struct {
	maxTokens int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithMaxTokens sets the token budget per piece.
func WithMaxTokens(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithOverlap sets the number of tokens adjacent hard-cut pieces share.
func WithOverlap(n int) Option {
	return func(s *Splitter) {
		if n >= 0 {
			s.overlap = n
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split chunks a document body. Boundaries are chosen in order of
// preference: heading sections, then paragraphs, then a hard cut at the
// token budget. Tokens are never split.
func (s *Splitter) Split(path, text string) ([]Piece, error) {
	if s.maxTokens <= s.overlap {
		return nil, &domain.ChunkingError{
			Reason: fmt.Sprintf("max tokens %d must exceed overlap %d", s.maxTokens, s.overlap),
		}
	}
	if !utf8.ValidString(text) {
		return nil, &domain.ChunkingError{Reason: "text is not valid UTF-8"}
	}

	var pieces []Piece
	for _, sec := range parseSections(text) {
		body := text[sec.start:sec.end]
		pieces = append(pieces, s.splitBody(contextFor(path, sec.heading), body)...)
	}
	return pieces, nil
}

// contextFor builds a piece's context string.
func contextFor(path, heading string) string {
	if heading == "" {
		return path
	}
	return path + " > " + heading
}

// splitBody chunks one section, packing whole paragraphs up to the token
// budget and hard-cutting paragraphs that exceed it on their own.
func (s *Splitter) splitBody(context, body string) []Piece {
	spans := tokenize(body)
	if len(spans) == 0 {
		return nil
	}
	if len(spans) <= s.maxTokens {
		return []Piece{makePiece(context, body, spans)}
	}

	var pieces []Piece
	var group []span
	flush := func() {
		if len(group) > 0 {
			pieces = append(pieces, makePiece(context, body, group))
			group = nil
		}
	}

	for _, para := range splitParagraphs(body) {
		ptoks := tokensWithin(spans, para)
		if len(ptoks) == 0 {
			continue
		}
		if len(ptoks) > s.maxTokens {
			flush()
			pieces = append(pieces, s.windowCut(context, body, ptoks)...)
			continue
		}
		if len(group)+len(ptoks) > s.maxTokens {
			flush()
		}
		group = append(group, ptoks...)
	}
	flush()
	return pieces
}

// windowCut hard-cuts a token run into maxTokens-sized windows advancing by
// maxTokens-overlap, so adjacent windows share an overlap-sized tail/head.
func (s *Splitter) windowCut(context, body string, spans []span) []Piece {
	step := s.maxTokens - s.overlap
	var pieces []Piece
	for start := 0; ; start += step {
		end := start + s.maxTokens
		if end > len(spans) {
			end = len(spans)
		}
		pieces = append(pieces, makePiece(context, body, spans[start:end]))
		if end == len(spans) {
			break
		}
	}
	return pieces
}

// makePiece slices body to the exact byte range of the given tokens,
// preserving interior whitespace and trimming the edges to token bounds.
func makePiece(context, body string, spans []span) Piece {
	return Piece{
		Context: context,
		Data:    body[spans[0].start:spans[len(spans)-1].end],
		Tokens:  len(spans),
	}
}

// tokensWithin selects the tokens falling inside the paragraph range.
// Tokens never contain whitespace, so each lies in exactly one paragraph.
func tokensWithin(spans []span, para span) []span {
	var out []span
	for _, t := range spans {
		if t.start >= para.start && t.end <= para.end {
			out = append(out, t)
		}
	}
	return out
}

// splitParagraphs returns the byte ranges of blank-line separated
// paragraphs.
func splitParagraphs(text string) []span {
	var paras []span
	parStart := -1
	offset := 0
	for offset < len(text) {
		var line string
		var next int
		if nl := strings.IndexByte(text[offset:], '\n'); nl < 0 {
			line = text[offset:]
			next = len(text)
		} else {
			line = text[offset : offset+nl]
			next = offset + nl + 1
		}

		if strings.TrimSpace(line) == "" {
			if parStart >= 0 {
				paras = append(paras, span{start: parStart, end: offset})
				parStart = -1
			}
		} else if parStart < 0 {
			parStart = offset
		}
		offset = next
	}
	if parStart >= 0 {
		paras = append(paras, span{start: parStart, end: len(text)})
	}
	return paras
}
