package docload

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// Item represents one document in a JSONL batch file
type Item struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Language string `json:"language"`
	HTML     bool   `json:"html"`
}

// LoadFromJSONL loads documents from a JSONL file with proper error handling
func LoadFromJSONL(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var items []Item
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		if item.Text == "" {
			log.Printf("Warning: skipping item with empty text at line %d in %s", i+1, path)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid documents found in %s", path)
	}

	return items, nil
}
