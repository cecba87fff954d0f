package words

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

//go:embed default_words.txt
var embeddedWords string

// StaticSource picks words from a fixed list. It is used when no word API
// is configured and as the word source in tests.
type StaticSource struct {
	byLength map[int][]string
	lengths  []int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewStaticSource indexes words by length, dropping anything that is not
// purely alphabetic. A nil or empty list falls back to the embedded words.
func NewStaticSource(list []string, rnd *rand.Rand) *StaticSource {
	if len(list) == 0 {
		list = splitWords(embeddedWords)
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &StaticSource{byLength: make(map[int][]string), rnd: rnd}
	for _, w := range list {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || !alphabetic(w) {
			continue
		}
		n := utf8.RuneCountInString(w)
		if _, ok := s.byLength[n]; !ok {
			s.lengths = append(s.lengths, n)
		}
		s.byLength[n] = append(s.byLength[n], w)
	}
	return s
}

// LoadStaticSource reads one word per line from path.
func LoadStaticSource(path string, rnd *rand.Rand) (*StaticSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	var list []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		list = append(list, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("word list %s is empty", path)
	}
	return NewStaticSource(list, rnd), nil
}

// FetchWord returns a random word of exactly length letters, or of the
// closest available length.
func (s *StaticSource) FetchWord(_ context.Context, length int) (string, error) {
	if len(s.lengths) == 0 {
		return "", fmt.Errorf("word list is empty")
	}
	best := s.lengths[0]
	for _, n := range s.lengths {
		if abs(n-length) < abs(best-length) {
			best = n
		}
	}
	candidates := s.byLength[best]

	s.mu.Lock()
	defer s.mu.Unlock()
	return candidates[s.rnd.Intn(len(candidates))], nil
}

func splitWords(raw string) []string {
	return strings.Fields(raw)
}

func alphabetic(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
