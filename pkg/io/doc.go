// Package io reads floorplan inputs and writes solve reports.
//
// # Design Files
//
// A design is a JSON document listing placed cells, their pins and the
// nets connecting them:
//
//	{
//	  "name": "opamp",
//	  "cells": [
//	    {"name": "m1", "bbox": {"left": 0, "bottom": 0, "right": 10000, "top": 4000}},
//	    {"name": "m2", "bbox": {"left": 20000, "bottom": 0, "right": 30000, "top": 4000}}
//	  ],
//	  "pins": [
//	    {"name": "m1.g", "cell": "m1", "net": "inp"},
//	    {"name": "m2.g", "cell": "m2", "net": "inn"},
//	    {"name": "m1.b", "cell": "m1", "net": "vss", "ignored": true}
//	  ],
//	  "nets": [
//	    {"name": "inp", "capacity": 40}
//	  ]
//	}
//
// Cells are referenced by name. Nets used by pins but absent from "nets"
// get unbounded capacity. A pin may carry a "baseline" point with its
// location in an existing layout. [ReadDesign] decodes and validates a
// design; every problem is reported as an INVALID_INPUT error.
//
// # Symmetric-Net Files
//
// A symmetric-net file lists mirrored pin pairs, one per line:
//
//	# differential input pair
//	m1.g m2.g
//	m1.d m2.d
//
// Blank lines and text after '#' are ignored. A line with any other number
// of fields is an INVALID_CONFIG error naming the line number. Names are not
// resolved here; unknown pins are reported when the problem is initialized.
//
// # Reports
//
// [WriteReport] stores the outcome of a solve (placements, net usage,
// statistics) as indented JSON. [ReadReport] loads it back, which is what
// the view command does.
package io
