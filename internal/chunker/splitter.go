// Package chunker splits raw document text into overlapping, size-bounded
// segments for embedding. Splitting prefers the coarsest separator that
// keeps a segment within the size bound, recursing to finer separators
// only for over-long pieces.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators orders break patterns from coarsest to finest:
// paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter produces ordered text segments from raw text.
// Identical input and configuration always yield identical segments.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators sets the ordered separator list, coarsest first.
// An empty string means character-level splitting.
func WithSeparators(separators []string) Option {
	return func(s *Splitter) {
		if len(separators) > 0 {
			s.separators = separators
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split segments text into chunks. Empty input yields no chunks; text that
// fits within one chunk yields exactly one. Separators stay attached to the
// preceding piece, so concatenating the chunks minus their seeded overlap
// prefixes reconstructs the original text.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	units := s.splitUnits(text, s.separators)
	return s.assemble(units)
}

// splitUnits recursively breaks text into pieces no longer than chunkSize,
// trying separators coarsest-first. A piece that no separator can break
// further is returned whole even when over-long.
func (s *Splitter) splitUnits(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	if len(separators) == 0 {
		// Atomic unit: nothing left to split on.
		return []string{text}
	}

	sep, rest := separators[0], separators[1:]
	if sep == "" {
		return hardCut(text, s.chunkSize)
	}
	if !strings.Contains(text, sep) {
		return s.splitUnits(text, rest)
	}

	var units []string
	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		if len(piece) > s.chunkSize {
			units = append(units, s.splitUnits(piece, rest)...)
		} else {
			units = append(units, piece)
		}
	}
	return units
}

// assemble greedily packs units into chunks of at most chunkSize, seeding
// each new chunk with the character tail of the previous one. The seeded
// overlap shrinks when the incoming unit would otherwise push the chunk
// over the size bound.
func (s *Splitter) assemble(units []string) []string {
	var chunks []string
	var cur strings.Builder

	for _, unit := range units {
		if cur.Len() > 0 && cur.Len()+len(unit) > s.chunkSize {
			chunk := cur.String()
			chunks = append(chunks, chunk)
			cur.Reset()

			overlap := s.overlap
			if room := s.chunkSize - len(unit); overlap > room {
				overlap = room
			}
			if overlap > 0 {
				cur.WriteString(tailRunes(chunk, overlap))
			}
		}
		cur.WriteString(unit)
	}

	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// hardCut slices text into pieces of at most size bytes on rune boundaries.
func hardCut(text string, size int) []string {
	var pieces []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		pieces = append(pieces, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}

// tailRunes returns the last n bytes of text, extended forward if needed
// to start on a rune boundary.
func tailRunes(text string, n int) string {
	if n >= len(text) {
		return text
	}
	start := len(text) - n
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	return text[start:]
}
