package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/topfloor/pkg/floorplan"
)

// Report is the persisted result of one solve.
type Report struct {
	RunID      string                `json:"run_id"`
	Design     string                `json:"design"`
	Backend    string                `json:"backend"`
	Objective  string                `json:"objective"`
	Outcome    floorplan.Outcome     `json:"outcome"`
	Error      string                `json:"error,omitempty"`
	Counts     floorplan.RoleCounts  `json:"counts"`
	Pairs      int                   `json:"pairs"`
	Assignment *floorplan.Assignment `json:"assignment,omitempty"`
	Stats      floorplan.SolveStats  `json:"stats"`
	CreatedAt  time.Time             `json:"created_at"`
}

// Feasible reports whether the solve produced a floorplan.
func (r *Report) Feasible() bool {
	return r.Outcome == floorplan.OutcomeFeasible && r.Assignment != nil
}

// WriteReport encodes r as indented JSON.
func WriteReport(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportReport writes r to the file at path.
func ExportReport(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteReport(r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadReport decodes a report written by [WriteReport].
func ReadReport(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// ImportReport reads the report file at path.
func ImportReport(path string) (*Report, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadReport(f)
}
