package story

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const fetchTimeout = 15 * time.Second

// Load reads and validates a story from a filesystem path or an http(s)
// URL. Any fetch, parse or validation failure is fatal to initialization
// and returned to the caller.
func Load(path string) (*Story, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		data, err = fetch(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a raw JSON story document.
func Parse(data []byte) (*Story, error) {
	var st Story
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse story: %w", err)
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &st, nil
}

func fetch(url string) ([]byte, error) {
	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
