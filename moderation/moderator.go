package moderation

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator screens outgoing chat messages against a banned-word list
// and masks matches before they reach the backend. Matching runs over
// a normalized view of the text (lowercased, leet speak folded, noise
// stripped) while masking is applied to the original runes.
type Moderator struct {
	matcher *goahocorasick.Machine
	mask    rune
}

func NewModerator(bannedWords []string, mask rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(bannedWords))
	for _, word := range bannedWords {
		normalized, _ := normalize([]rune(word))
		if len(normalized) == 0 {
			continue
		}
		patterns = append(patterns, normalized)
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: machine, mask: mask}, nil
}

// FromFile loads one banned word per line, ignoring blanks and
// comments.
func FromFile(path string, mask rune) (*Moderator, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewModerator(words, mask)
}

// Censor masks every banned pattern in the message and reports the
// matched words for the moderation trail. The original text is
// returned untouched when nothing matches.
func (m *Moderator) Censor(original string) (string, []string) {
	origRunes := []rune(original)
	normalized, origIdx := normalize(origRunes)
	if len(normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	var found []string
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		found = append(found, string(span.Word))

		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = m.mask
		}
	}
	return string(origRunes), found
}

// normalize lowercases, folds leet speak and drops punctuation,
// spacing and symbols, keeping a map from normalized positions back to
// the original rune indexes.
func normalize(input []rune) ([]rune, []int) {
	normalized := make([]rune, 0, len(input))
	origIdx := make([]int, 0, len(input))

	for i, r := range input {
		folded := foldLeet(r)
		if unicode.IsPunct(folded) || unicode.IsSpace(folded) || unicode.IsSymbol(folded) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(folded))
		origIdx = append(origIdx, i)
	}
	return normalized, origIdx
}

func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}
