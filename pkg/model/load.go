package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the YAML layout of a definitions file: one or more forms.
type Document struct {
	Forms []Form `yaml:"forms"`
}

// Decode reads a definitions document, normalising and validating each form.
func Decode(r io.Reader) ([]Form, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("model: decode definitions: %w", err)
	}

	forms := make([]Form, 0, len(doc.Forms))
	for _, form := range doc.Forms {
		form = form.Normalize()
		if err := form.Validate(); err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// LoadFile decodes the definitions stored at path.
func LoadFile(path string) ([]Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read definitions: %w", err)
	}
	forms, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return forms, nil
}

// Encode writes forms as a definitions document.
func Encode(w io.Writer, forms ...Form) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Forms: forms}); err != nil {
		return fmt.Errorf("model: encode definitions: %w", err)
	}
	return enc.Close()
}
