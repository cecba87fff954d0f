package words

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the public random word API; %d receives the word length.
const DefaultURL = "https://random-word-api.herokuapp.com/word?length=%d"

// HTTPSource fetches random words from a remote API.
type HTTPSource struct {
	client *http.Client
	url    string
}

// NewHTTPSource builds a source for urlTemplate, which must contain one %d
// for the requested length. An empty template selects DefaultURL.
func NewHTTPSource(urlTemplate string, timeout time.Duration) *HTTPSource {
	if urlTemplate == "" {
		urlTemplate = DefaultURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		client: &http.Client{Timeout: timeout},
		url:    urlTemplate,
	}
}

// FetchWord accepts either a JSON array of words (first element wins) or a
// plain text body.
func (s *HTTPSource) FetchWord(ctx context.Context, length int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(s.url, length), nil)
	if err != nil {
		return "", fmt.Errorf("build word request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch word: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch word: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read word: %w", err)
	}
	return parseWord(body)
}

func parseWord(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "[") {
		var words []string
		if err := json.Unmarshal([]byte(text), &words); err != nil {
			return "", fmt.Errorf("decode words: %w", err)
		}
		if len(words) == 0 {
			return "", fmt.Errorf("word api returned no words")
		}
		return strings.TrimSpace(words[0]), nil
	}
	return strings.Trim(text, `"`), nil
}
