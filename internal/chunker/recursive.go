package chunker

import (
	"strconv"
	"strings"

	"insight-helper/internal/domain"
)

// Recursive splits text hierarchically (paragraph, line, sentence, word)
// into chunks of at most chunkSize runes with a bounded overlap between
// consecutive chunks of the same document. A word is only cut apart when
// it alone exceeds the chunk size.
type Recursive struct {
	chunkSize int
	overlap   int
}

// NewRecursive creates a chunker targeting chunkSize runes per chunk with
// the given overlap in runes.
func NewRecursive(chunkSize, overlap int) *Recursive {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Recursive{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits a document into overlapping chunks. The split is lossless:
// chunk texts minus their recorded Overlap prefixes concatenate back to
// the original content. Whitespace-only documents produce no chunks.
func (c *Recursive) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if strings.TrimSpace(document.Content) == "" {
		return nil, nil
	}
	pieces := c.split(document.Content, 0)
	var chunks []domain.Chunk
	var current []string
	currentLen := 0
	overlapLen := 0
	idx := 0

	emit := func() {
		text := strings.Join(current, "")
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       text,
			Index:      idx,
			Overlap:    overlapLen,
		})
		idx++
	}

	for _, piece := range pieces {
		pieceLen := runeLen(piece)
		if currentLen+pieceLen > c.chunkSize && currentLen > overlapLen {
			emit()
			// Carry whole trailing pieces into the next chunk as overlap,
			// shrinking the carry until the new piece fits.
			tail, tailLen := overlapTail(current, c.overlap)
			for len(tail) > 0 && tailLen+pieceLen > c.chunkSize {
				tailLen -= runeLen(tail[0])
				tail = tail[1:]
			}
			current = append([]string{}, tail...)
			currentLen = tailLen
			overlapLen = tailLen
		}
		current = append(current, piece)
		currentLen += pieceLen
	}
	if currentLen > overlapLen || len(chunks) == 0 {
		emit()
	}
	return chunks, nil
}

// separators in coarse-to-fine order; the word level is handled by
// splitting on spaces, the final level is a hard rune cut.
var separators = []string{"\n\n", "\n"}

func (c *Recursive) split(text string, level int) []string {
	if runeLen(text) <= c.chunkSize {
		return []string{text}
	}
	var parts []string
	switch {
	case level < len(separators):
		parts = strings.SplitAfter(text, separators[level])
	case level == len(separators):
		parts = splitSentences(text)
	case level == len(separators)+1:
		parts = strings.SplitAfter(text, " ")
	default:
		return hardCut(text, c.chunkSize)
	}
	if len(parts) <= 1 {
		return c.split(text, level+1)
	}
	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, c.split(p, level+1)...)
	}
	return out
}

// splitSentences cuts after runs of sentence-ending punctuation, keeping
// every rune so the pieces concatenate back to the input.
func splitSentences(text string) []string {
	var parts []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		// consume the whole punctuation run plus one trailing space
		j := i
		for j+1 < len(runes) && isSentenceEnd(runes[j+1]) {
			j++
		}
		if j+1 < len(runes) && runes[j+1] == ' ' {
			j++
		}
		parts = append(parts, string(runes[start:j+1]))
		start = j + 1
		i = j
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

func hardCut(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > size {
		out = append(out, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// overlapTail returns the longest run of trailing pieces whose total rune
// count stays within budget, along with that total.
func overlapTail(pieces []string, budget int) ([]string, int) {
	total := 0
	i := len(pieces)
	for i > 0 {
		l := runeLen(pieces[i-1])
		if total+l > budget {
			break
		}
		total += l
		i--
	}
	return pieces[i:], total
}

func runeLen(s string) int { return len([]rune(s)) }
