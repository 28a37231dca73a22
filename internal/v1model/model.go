// Package v1model describes the built-in libraries a converted program is
// written against: core.p4 and the v1model architecture.
package v1model

import (
	"slices"
	"sync"
)

// Library identifies a built-in library file.
type Library int

const (
	// LibraryCore is core.p4: packet_in/out, NoAction, match kinds, errors.
	LibraryCore Library = iota
	// LibraryV1Model is v1model.p4: the V1Switch package and its externs.
	LibraryV1Model
)

// Order matches the Library iota constants.
var libraryFiles = [...]string{
	"core.p4",
	"v1model.p4",
}

// File returns the include file name.
func (l Library) File() string {
	if int(l) < len(libraryFiles) {
		return libraryFiles[l]
	}
	return ""
}

// Libraries returns all built-in libraries in include order.
func Libraries() []Library {
	return []Library{LibraryCore, LibraryV1Model}
}

var libraryNames = [...][]string{
	LibraryCore: {
		"packet_in", "packet_out", "extract", "lookahead", "advance", "length", "emit",
		"NoAction", "exact", "ternary", "lpm", "match_kind", "error",
		"NoError", "PacketTooShort", "NoMatch", "StackOutOfBounds",
		"HeaderTooShort", "ParserTimeout", "ParserInvalidArgument",
		"accept", "reject", "verify", "action_list",
	},
	LibraryV1Model: {
		"V1Switch", "Parser", "VerifyChecksum", "Ingress", "Egress",
		"ComputeChecksum", "Deparser", "standard_metadata_t",
		"range", "selector", "optional",
		"CounterType", "packets", "bytes", "packets_and_bytes",
		"MeterType", "counter", "direct_counter", "meter", "direct_meter",
		"register", "action_profile", "action_selector",
		"HashAlgorithm", "crc32", "crc32_custom", "crc16", "crc16_custom",
		"random", "identity", "csum16", "xor16",
		"CloneType", "I2E", "E2E",
		"mark_to_drop", "hash", "digest", "resubmit", "recirculate",
		"clone", "clone3", "truncate", "assert", "assume", "log_msg",
		"verify_checksum", "update_checksum",
		"verify_checksum_with_payload", "update_checksum_with_payload",
		"count", "execute_meter", "read", "write",
	},
}

// Names returns the identifiers the library declares.
func (l Library) Names() []string {
	if int(l) < len(libraryNames) {
		return libraryNames[l]
	}
	return nil
}

// Model holds the identifiers the converter introduces for the
// architecture's blocks, parameters and aggregate types.
type Model struct {
	Parser          string
	VerifyChecksum  string
	Ingress         string
	Egress          string
	ComputeChecksum string
	Deparser        string
	Main            string
	Package         string

	HeadersType  string
	MetadataType string
	StandardType string

	PacketIn         string
	PacketOut        string
	HeadersParam     string
	MetadataParam    string
	StandardMetadata string
	PacketParam      string
}

// V1Model is the v1model architecture.
var V1Model = Model{
	Parser:          "ParserImpl",
	VerifyChecksum:  "verifyChecksum",
	Ingress:         "ingress",
	Egress:          "egress",
	ComputeChecksum: "computeChecksum",
	Deparser:        "DeparserImpl",
	Main:            "main",
	Package:         "V1Switch",

	HeadersType:  "headers",
	MetadataType: "metadata",
	StandardType: "standard_metadata_t",

	PacketIn:         "packet_in",
	PacketOut:        "packet_out",
	HeadersParam:     "hdr",
	MetadataParam:    "meta",
	StandardMetadata: "standard_metadata",
	PacketParam:      "packet",
}

// Generated returns the names of the blocks, parameters and types the
// converter synthesizes for the model. Ingress and Egress are absent:
// those blocks carry the names of the legacy entry controls.
func (m Model) Generated() []string {
	return []string{
		m.Parser, m.VerifyChecksum, m.ComputeChecksum,
		m.Deparser, m.Main, m.HeadersType, m.MetadataType,
		m.HeadersParam, m.MetadataParam, m.StandardMetadata, m.PacketParam,
	}
}

// Keywords are the reserved words of the output language.
var Keywords = []string{
	"abstract", "action", "actions", "apply", "bit", "bool", "const", "control",
	"default", "else", "entries", "enum", "error", "exit", "extern", "false",
	"header", "header_union", "if", "in", "inout", "int", "key", "match_kind",
	"type", "out", "parser", "package", "return", "select", "state", "string",
	"struct", "switch", "table", "this", "transition", "true", "tuple", "typedef",
	"varbit", "value_set", "void", "_",
	// table properties
	"size", "default_action", "implementation", "counters", "meters",
	"support_timeout",
}

var (
	reservedOnce sync.Once
	reserved     []string
)

// Reserved returns, in a fixed order and without duplicates, every name the
// output program may use before any legacy object is named: keywords,
// library declarations and the model's generated names.
func Reserved() []string {
	reservedOnce.Do(func() {
		seen := make(map[string]bool)
		add := func(names ...string) {
			for _, n := range names {
				if !seen[n] {
					seen[n] = true
					reserved = append(reserved, n)
				}
			}
		}
		add(Keywords...)
		for _, lib := range Libraries() {
			add(lib.Names()...)
		}
		add(V1Model.Generated()...)
	})
	return slices.Clone(reserved)
}

// IsReserved reports whether name is a reserved output name.
func IsReserved(name string) bool {
	return slices.Contains(Reserved(), name)
}

// standardMetadataWidths lists the fields of standard_metadata_t.
var standardMetadataWidths = map[string]int{
	"ingress_port":             9,
	"egress_spec":              9,
	"egress_port":              9,
	"instance_type":            32,
	"packet_length":            32,
	"enq_timestamp":            32,
	"enq_qdepth":               19,
	"deq_timedelta":            32,
	"deq_qdepth":               19,
	"ingress_global_timestamp": 48,
	"egress_global_timestamp":  48,
	"mcast_grp":                16,
	"egress_rid":               16,
	"checksum_error":           1,
	"priority":                 3,
	"clone_spec":               32,
	"drop":                     1,
	"recirculate_port":         16,
	"resubmit_flag":            1,
	"egress_instance":          16,
	"lf_field_list":            32,
	"ingress_timestamp":        48,
}

// StandardMetadataWidth returns the width of a standard_metadata_t field.
func StandardMetadataWidth(field string) (int, bool) {
	w, ok := standardMetadataWidths[field]
	return w, ok
}
