package main

import (
	"cmp"
	"encoding/json"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/kmateuszssak/p4c"
	"github.com/kmateuszssak/p4c/ir"
)

// report is the machine-readable summary of a conversion: everything a
// later pass needs besides the program text.
type report struct {
	Program        string         `json:"program" cbor:"program"`
	Declarations   int            `json:"declarations" cbor:"declarations"`
	Renames        []renameEntry  `json:"renames" cbor:"renames"`
	VarbitExtracts []varbitEntry  `json:"varbit_extracts,omitempty" cbor:"varbit_extracts,omitempty"`
	Unreachable    []string       `json:"unreachable,omitempty" cbor:"unreachable,omitempty"`
	Edges          map[string]int `json:"edges" cbor:"edges"`
}

type renameEntry struct {
	Category string `json:"category" cbor:"category"`
	Original string `json:"original" cbor:"original"`
	Name     string `json:"name" cbor:"name"`
}

type varbitEntry struct {
	Call   string `json:"call" cbor:"call"`
	Header string `json:"header" cbor:"header"`
}

func newReport(name string, res *p4c.Result) *report {
	r := &report{
		Program:      name,
		Declarations: len(res.Program.Declarations),
		Renames:      make([]renameEntry, 0, len(res.Renames)),
		Edges:        make(map[string]int),
	}
	for _, rn := range res.Renames {
		r.Renames = append(r.Renames, renameEntry{Category: rn.Category, Original: rn.Original, Name: rn.Name})
	}
	for call, hdr := range res.VarbitExtracts {
		r.VarbitExtracts = append(r.VarbitExtracts, varbitEntry{Call: ir.ExprString(call), Header: hdr.Name})
	}
	slices.SortFunc(r.VarbitExtracts, func(a, b varbitEntry) int {
		return cmp.Compare(a.Call, b.Call)
	})
	for _, sym := range res.Unreachable {
		r.Unreachable = append(r.Unreachable, sym.String())
	}
	for _, rel := range relations() {
		r.Edges[rel.String()] = res.Calls.EdgeCount(rel)
	}
	return r
}

func writeJSON(w io.Writer, r *report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeCBOR uses canonical encoding so equal reports are byte-identical.
func writeCBOR(w io.Writer, r *report) error {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}
	return em.NewEncoder(w).Encode(r)
}

func programName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
