package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/topfloor/pkg/design"
	"github.com/matzehuels/topfloor/pkg/errors"
)

// ReadDesign decodes a JSON design from r and validates it.
// Unknown fields are rejected. ReadDesign does not close r.
func ReadDesign(r io.Reader) (*design.Design, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var d design.Design
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode design")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ImportDesign reads and validates the design file at path.
func ImportDesign(path string) (*design.Design, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := ReadDesign(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(baseName(path), ".json")
	}
	return d, nil
}

// ReadSymNet parses symmetric pin pairs from r.
func ReadSymNet(r io.Reader) ([]design.SymPair, error) {
	var pairs []design.SymPair
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		switch len(fields) {
		case 0:
			continue
		case 2:
			pairs = append(pairs, design.SymPair{Primary: fields[0], Secondary: fields[1]})
		default:
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"symmetric-net line %d: want 2 pin names, got %d fields", line, len(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read symmetric nets: %w", err)
	}
	return pairs, nil
}

// ImportSymNet reads the symmetric-net file at path. An empty path means
// no symmetry constraints.
func ImportSymNet(path string) ([]design.SymPair, error) {
	if path == "" {
		return nil, nil
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs, err := ReadSymNet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pairs, nil
}

func open(path string) (*os.File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
