package layout

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed table.schema.json
var tableSchema []byte

// tableDoc is the on-disk shape of a custom layout pair table.
type tableDoc struct {
	Name  string `json:"name"`
	Pairs []struct {
		EN string `json:"en"`
		UK string `json:"uk"`
	} `json:"pairs"`
}

// compiledSchema is lazily compiled on first use.
var compiledSchema *jsonschema.Schema

func schema() (*jsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("table.schema.json", bytes.NewReader(tableSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := c.Compile("table.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	compiledSchema = s
	return s, nil
}

// NewCustomMapper builds a Mapper from a JSON table document, validating
// it against the embedded schema first. Each pair maps one lowercase
// scalar per side; the apostrophe override of the built-in table is
// applied on top so Ukrainian apostrophes survive round trips.
func NewCustomMapper(doc []byte) (*Mapper, error) {
	s, err := schema()
	if err != nil {
		return nil, err
	}

	var instance interface{}
	if err := json.Unmarshal(doc, &instance); err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	if err := s.Validate(instance); err != nil {
		return nil, fmt.Errorf("validate table: %w", err)
	}

	var td tableDoc
	if err := json.Unmarshal(doc, &td); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	fwd := make(map[rune]rune, len(td.Pairs))
	for i, p := range td.Pairs {
		er, _ := utf8.DecodeRuneInString(p.EN)
		ur, _ := utf8.DecodeRuneInString(p.UK)
		if er == utf8.RuneError || ur == utf8.RuneError {
			return nil, fmt.Errorf("table %q: pair %d is not valid UTF-8", td.Name, i)
		}
		if _, dup := fwd[er]; dup {
			return nil, fmt.Errorf("table %q: duplicate mapping for %q", td.Name, er)
		}
		fwd[er] = ur
	}

	inv := make(map[rune]rune, len(fwd)+2)
	for from, to := range fwd {
		inv[to] = from
	}
	inv['\''] = '\''
	inv['’'] = '\''

	return &Mapper{enToUK: fwd, ukToEN: inv}, nil
}

// LoadCustomMapper reads and compiles a custom table from path.
func LoadCustomMapper(path string) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return NewCustomMapper(data)
}
