package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ParseDocuments decodes a knowledge file into documents. Two layouts
// are accepted: a flat document array, or a map of category name to a
// list of JSON objects. Grouped items are stored with their compact
// JSON encoding as content so every field stays searchable; the source
// and category names go into metadata. Non-object items are skipped.
// Categories load in the order they appear in the file, so insertion
// order (the tie-break key for search ranking) is stable across runs.
func ParseDocuments(source string, data []byte) ([]Document, error) {
	var direct []Document
	if err := json.Unmarshal(data, &direct); err == nil {
		return annotate(source, direct), nil
	}

	docs, err := parseGrouped(source, data)
	if err != nil {
		return nil, fmt.Errorf("knowledge source %s: unrecognized layout: %w", source, err)
	}
	return docs, nil
}

// parseGrouped walks the object token by token instead of decoding into
// a map, preserving the file's category order.
func parseGrouped(source string, data []byte) ([]Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var docs []Document
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		category, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a category name, got %v", tok)
		}

		var items []json.RawMessage
		if err := dec.Decode(&items); err != nil {
			return nil, err
		}

		for _, raw := range items {
			var obj map[string]any
			if err := json.Unmarshal(raw, &obj); err != nil {
				continue
			}
			content, err := json.Marshal(obj)
			if err != nil {
				continue
			}
			docs = append(docs, Document{
				Content: string(content),
				Metadata: map[string]string{
					"source":   source,
					"category": category,
				},
			})
		}
	}
	return docs, nil
}

// LoadFile reads and parses one knowledge file.
func LoadFile(source, path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge source %s: %w", source, err)
	}
	return ParseDocuments(source, data)
}

func annotate(source string, docs []Document) []Document {
	out := docs[:0]
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		if doc.Metadata == nil {
			doc.Metadata = map[string]string{}
		}
		if doc.Metadata["source"] == "" {
			doc.Metadata["source"] = source
		}
		out = append(out, doc)
	}
	return out
}
