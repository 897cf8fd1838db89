package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a document encoding.
type Format string

// Supported formats.
const (
	JSON   Format = "json"
	YAML   Format = "yaml"
	TOML   Format = "toml"
	DOTENV Format = "dotenv"
)

var (
	// ErrNotObject is returned when a document parses but its root is not a mapping.
	ErrNotObject = errors.New("tree: document root is not an object")

	// ErrUnsupportedFormat is returned for format names other than json, yaml, toml and dotenv.
	ErrUnsupportedFormat = errors.New("tree: unsupported format")

	errTrailingData = errors.New("tree: unexpected data after top-level object")
)

// ParseFormat parses a format name. "yml" and "env" are accepted as aliases of "yaml" and "dotenv".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "dotenv", "env":
		return DOTENV, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: json, yaml, toml, dotenv)", ErrUnsupportedFormat, name)
	}
}

// FormatFor picks the decoder for a file. YAML, TOML and dotenv are chosen by extension
// only when they are enabled; everything else is decoded as JSON.
func FormatFor(path string, enabled []Format) Format {
	format := inferFormat(path)
	for _, f := range enabled {
		if f == format {
			return format
		}
	}
	return JSON
}

// Decode parses data into a Node. The document root must be a mapping.
func Decode(format Format, data []byte) (Node, error) {
	switch format {
	case JSON, "":
		return decodeJSON(data)
	case YAML:
		return decodeYAML(data)
	case TOML:
		return decodeTOML(data)
	case DOTENV:
		return decodeDotenv(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// decodeJSON walks the token stream so object fields keep their document order.
func decodeJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	node, err := readObject(dec)
	if err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, errTrailingData
		}
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	return node, nil
}

// readObject reads fields up to and including the closing '}'.
func readObject(dec *json.Decoder) (Node, error) {
	node := Node{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}

		value, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		node = append(node, Field{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

// readArray reads elements up to and including the closing ']'. Elements are keyed by index.
func readArray(dec *json.Decoder) (Node, error) {
	node := Node{}
	for i := 0; dec.More(); i++ {
		value, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		node = append(node, Field{Key: strconv.Itoa(i), Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
	case string:
		return Scalar(v), nil
	case json.Number:
		return Scalar(v.String()), nil
	case bool:
		return Scalar(strconv.FormatBool(v)), nil
	case nil:
		return Node(nil), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeYAML(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotObject
	}

	value, err := fromYAML(root)
	if err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return value.(Node), nil
}

func fromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Node(nil), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return Node(nil), nil
		}
		return Scalar(n.Value), nil
	case yaml.SequenceNode:
		node := make(Node, 0, len(n.Content))
		for i, item := range n.Content {
			value, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			node = append(node, Field{Key: strconv.Itoa(i), Value: value})
		}
		return node, nil
	case yaml.MappingNode:
		node := make(Node, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", key.Line)
			}
			value, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			node = append(node, Field{Key: key.Value, Value: value})
		}
		return node, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func decodeTOML(data []byte) (Node, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	return FromMap(raw), nil
}

// decodeDotenv reads KEY=value lines. The result is a flat Node sorted by key.
func decodeDotenv(data []byte) (Node, error) {
	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse dotenv: %w", err)
	}

	raw := make(map[string]any, len(values))
	for k, v := range values {
		raw[k] = v
	}
	return FromMap(raw), nil
}

func inferFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return YAML
	case ".json":
		return JSON
	case ".toml":
		return TOML
	case ".env":
		return DOTENV
	default:
		return ""
	}
}
