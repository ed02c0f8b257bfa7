package chunker

import "strings"

// DefaultSeparators is the split ladder: paragraph breaks first, then line
// breaks, sentence ends, words, and finally a hard character cut.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}

// RecursiveSplitter splits text into bounded chunks with overlap, trying the
// coarsest separator that still appears in the text before recursing to
// finer ones.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewRecursiveSplitter(chunkSize, overlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &RecursiveSplitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: DefaultSeparators,
	}
}

func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}
	if len(separators) == 0 {
		return s.hardCut(text)
	}

	sep := separators[0]
	rest := separators[1:]
	if sep == "" {
		return s.hardCut(text)
	}
	if !strings.Contains(text, sep) {
		return s.split(text, rest)
	}

	var out []string
	var window []string
	wlen := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		if doc := strings.TrimSpace(strings.Join(window, "")); doc != "" {
			out = append(out, doc)
		}
		window = nil
		wlen = 0
	}

	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		if len(piece) > s.chunkSize {
			flush()
			out = append(out, s.split(piece, rest)...)
			continue
		}
		if wlen+len(piece) > s.chunkSize && wlen > 0 {
			if doc := strings.TrimSpace(strings.Join(window, "")); doc != "" {
				out = append(out, doc)
			}
			// keep a tail of pieces as overlap for the next chunk
			for wlen > s.overlap && len(window) > 1 {
				wlen -= len(window[0])
				window = window[1:]
			}
			if wlen > s.overlap && len(window) == 1 && wlen+len(piece) > s.chunkSize {
				window = nil
				wlen = 0
			}
		}
		window = append(window, piece)
		wlen += len(piece)
	}
	flush()

	return out
}

// hardCut slices text into fixed windows when no separator is usable.
func (s *RecursiveSplitter) hardCut(text string) []string {
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}
	var out []string
	for start := 0; start < len(text); start += step {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}
		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			out = append(out, piece)
		}
		if end == len(text) {
			break
		}
	}
	return out
}
