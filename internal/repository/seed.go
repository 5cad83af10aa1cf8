package repository

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed seed.schema.json
var seedSchema string

const seedSchemaURL = "mem://mockapi/seed.schema.json"

var ErrInvalidSeed = errors.New("invalid seed file")

func compileSeedSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(seedSchemaURL, strings.NewReader(seedSchema)); err != nil {
		return nil, fmt.Errorf("add seed schema: %w", err)
	}
	schema, err := compiler.Compile(seedSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile seed schema: %w", err)
	}
	return schema, nil
}

// LoadSeedFile reads fixtures from a YAML or JSON file. The document is
// validated against the seed schema before it is decoded.
func LoadSeedFile(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data, filepath.Ext(path))
}

// ParseSeed decodes a seed document. ext selects the format; anything other
// than ".json" is read as YAML.
func ParseSeed(data []byte, ext string) (Fixtures, error) {
	if !strings.EqualFold(ext, ".json") {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Fixtures{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return Fixtures{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
		}
		data = converted
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return Fixtures{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	schema, err := compileSeedSchema()
	if err != nil {
		return Fixtures{}, err
	}
	if err := schema.Validate(doc); err != nil {
		return Fixtures{}, fmt.Errorf("%w: %v", ErrInvalidSeed, seedErrorMessage(err))
	}

	var f Fixtures
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	f.stamp()
	return f, nil
}

// seedErrorMessage picks the deepest cause, which names the offending field.
func seedErrorMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.InstanceLocation, ve.Message)
}
