package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Spec is one row of a product specification table.
type Spec struct {
	Label string
	Value string
}

// SpecList keeps specification rows in the order the page lists them.
// It marshals as a JSON object whose keys follow insertion order, which a
// plain map cannot guarantee.
type SpecList []Spec

// Add appends a row, folding repeated labels into one entry with the values
// joined by ", ".
func (s *SpecList) Add(label, value string) {
	for i := range *s {
		if (*s)[i].Label != label {
			continue
		}
		switch {
		case (*s)[i].Value == "":
			(*s)[i].Value = value
		case value != "":
			(*s)[i].Value += ", " + value
		}
		return
	}
	*s = append(*s, Spec{Label: label, Value: value})
}

func (s SpecList) Get(label string) (string, bool) {
	for _, spec := range s {
		if spec.Label == label {
			return spec.Value, true
		}
	}
	return "", false
}

func (s SpecList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, spec := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := encodeJSONString(spec.Label)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal spec label: %w", err)
		}
		value, err := encodeJSONString(spec.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal spec value: %w", err)
		}
		buf.Write(label)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSONString encodes one string without HTML escaping, so spec text
// serializes the same way as every other string in the product document.
func encodeJSONString(v string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (s *SpecList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to unmarshal spec list: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("failed to unmarshal spec list: expected object, got %v", tok)
	}

	out := SpecList{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to unmarshal spec label: %w", err)
		}
		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("failed to unmarshal spec label: got %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to unmarshal spec value for %q: %w", label, err)
		}
		out = append(out, Spec{Label: label, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to unmarshal spec list: %w", err)
	}

	*s = out
	return nil
}
