package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// exprText is an expression in legacy syntax. Integer scalars keep their
// source spelling, so 0x800 stays hexadecimal.
type exprText string

func (e *exprText) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected an expression", n.Line)
	}
	*e = exprText(n.Value)
	return nil
}

// located records where a decoded value starts in the description.
type located[T any] struct {
	Value  T
	Line   int
	Column int
}

func (l *located[T]) UnmarshalYAML(n *yaml.Node) error {
	l.Line, l.Column = n.Line, n.Column
	return n.Decode(&l.Value)
}

// algorithms accepts a single algorithm name or a list of them.
type algorithms []string

func (a *algorithms) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*a = algorithms{n.Value}
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*a = list
	return nil
}

type document struct {
	Name                  string                    `yaml:"name"`
	HeaderTypes           []located[headerTypeDoc]  `yaml:"header_types"`
	Headers               []located[headerDoc]      `yaml:"headers"`
	HeaderStacks          []located[stackDoc]       `yaml:"header_stacks"`
	Metadata              []located[metadataDoc]    `yaml:"metadata"`
	ParserStates          []located[stateDoc]       `yaml:"parser_states"`
	ValueSets             []located[valueSetDoc]    `yaml:"value_sets"`
	Actions               []located[actionDoc]      `yaml:"actions"`
	Tables                []located[tableDoc]       `yaml:"tables"`
	Controls              []located[controlDoc]     `yaml:"controls"`
	Counters              []located[counterDoc]     `yaml:"counters"`
	Meters                []located[meterDoc]       `yaml:"meters"`
	Registers             []located[registerDoc]    `yaml:"registers"`
	ActionProfiles        []located[profileDoc]     `yaml:"action_profiles"`
	ActionSelectors       []located[selectorDoc]    `yaml:"action_selectors"`
	FieldLists            []located[fieldListDoc]   `yaml:"field_lists"`
	FieldListCalculations []located[calculationDoc] `yaml:"field_list_calculations"`
	CalculatedFields      []located[calcFieldDoc]   `yaml:"calculated_fields"`
	ExternTypes           []located[externTypeDoc]  `yaml:"extern_types"`
	ExternInstances       []located[externDoc]      `yaml:"extern_instances"`
}

type fieldDoc struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Varbit int    `yaml:"varbit"`
	Signed bool   `yaml:"signed"`
}

type headerTypeDoc struct {
	Name      string     `yaml:"name"`
	Fields    []fieldDoc `yaml:"fields"`
	MaxLength int        `yaml:"max_length"`
}

type headerDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type stackDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Size int    `yaml:"size"`
}

type initDoc struct {
	Field string   `yaml:"field"`
	Value exprText `yaml:"value"`
}

type metadataDoc struct {
	Name string    `yaml:"name"`
	Type string    `yaml:"type"`
	Init []initDoc `yaml:"init"`
}

type caseDoc struct {
	Values  []exprText `yaml:"values"`
	Default bool       `yaml:"default"`
	Next    string     `yaml:"next"`
}

type stateDoc struct {
	Name   string            `yaml:"name"`
	Body   []located[string] `yaml:"body"`
	Select []exprText        `yaml:"select"`
	Cases  []caseDoc         `yaml:"cases"`
	Return string            `yaml:"return"`
}

type valueSetDoc struct {
	Name  string `yaml:"name"`
	Width int    `yaml:"width"`
	Size  int    `yaml:"size"`
}

// paramDoc is an action or method parameter: a bare name, or a mapping
// that also gives the width.
type paramDoc struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Signed bool   `yaml:"signed"`
}

func (p *paramDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*p = paramDoc{Name: n.Value}
		return nil
	}
	type plain paramDoc
	return n.Decode((*plain)(p))
}

type actionDoc struct {
	Name   string            `yaml:"name"`
	Params []paramDoc        `yaml:"params"`
	Body   []located[string] `yaml:"body"`
}

type readDoc struct {
	Field exprText `yaml:"field"`
	Match string   `yaml:"match"`
	Mask  exprText `yaml:"mask"`
}

type tableDoc struct {
	Name           string    `yaml:"name"`
	Reads          []readDoc `yaml:"reads"`
	Actions        []string  `yaml:"actions"`
	ActionProfile  string    `yaml:"action_profile"`
	DefaultAction  string    `yaml:"default_action"`
	Size           int       `yaml:"size"`
	MinSize        int       `yaml:"min_size"`
	MaxSize        int       `yaml:"max_size"`
	SupportTimeout bool      `yaml:"support_timeout"`
}

// stmtDoc is one control statement: an apply, an if or a call.
type stmtDoc struct {
	Apply string         `yaml:"apply"`
	Hit   []stmtDoc      `yaml:"hit"`
	Miss  []stmtDoc      `yaml:"miss"`
	Cases []applyCaseDoc `yaml:"cases"`
	If    exprText       `yaml:"if"`
	Then  []stmtDoc      `yaml:"then"`
	Else  []stmtDoc      `yaml:"else"`
	Call  string         `yaml:"call"`

	hitMiss bool
	line    int
	column  int
}

func (s *stmtDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain stmtDoc
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.line, s.column = n.Line, n.Column
	for i := 0; i+1 < len(n.Content); i += 2 {
		if k := n.Content[i].Value; k == "hit" || k == "miss" {
			s.hitMiss = true
		}
	}
	return nil
}

type applyCaseDoc struct {
	Actions []string  `yaml:"actions"`
	Default bool      `yaml:"default"`
	Body    []stmtDoc `yaml:"body"`
}

type controlDoc struct {
	Name string    `yaml:"name"`
	Body []stmtDoc `yaml:"body"`
}

type counterDoc struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Direct     string `yaml:"direct"`
	Instances  int    `yaml:"instances"`
	MinWidth   int    `yaml:"min_width"`
	Saturating bool   `yaml:"saturating"`
}

type meterDoc struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Direct    string   `yaml:"direct"`
	Instances int      `yaml:"instances"`
	Result    exprText `yaml:"result"`
	PreColor  exprText `yaml:"pre_color"`
}

type registerDoc struct {
	Name      string `yaml:"name"`
	Width     int    `yaml:"width"`
	Layout    string `yaml:"layout"`
	Instances int    `yaml:"instances"`
	Direct    string `yaml:"direct"`
	Signed    bool   `yaml:"signed"`
}

type profileDoc struct {
	Name     string   `yaml:"name"`
	Actions  []string `yaml:"actions"`
	Size     int      `yaml:"size"`
	Selector string   `yaml:"selector"`
}

type selectorDoc struct {
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
	Mode string `yaml:"mode"`
	Type string `yaml:"type"`
}

type fieldListDoc struct {
	Name   string     `yaml:"name"`
	Fields []exprText `yaml:"fields"`
}

type calculationDoc struct {
	Name        string     `yaml:"name"`
	Inputs      []string   `yaml:"inputs"`
	Algorithm   algorithms `yaml:"algorithm"`
	OutputWidth int        `yaml:"output_width"`
}

type checksumSpecDoc struct {
	Kind        string   `yaml:"kind"`
	Calculation string   `yaml:"calculation"`
	If          exprText `yaml:"if"`
}

type calcFieldDoc struct {
	Field exprText          `yaml:"field"`
	Specs []checksumSpecDoc `yaml:"specs"`
}

type methodDoc struct {
	Name   string     `yaml:"name"`
	Params []paramDoc `yaml:"params"`
}

type externTypeDoc struct {
	Name    string      `yaml:"name"`
	Methods []methodDoc `yaml:"methods"`
}

type attributeDoc struct {
	Name  string   `yaml:"name"`
	Value exprText `yaml:"value"`
}

type externDoc struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Attributes []attributeDoc `yaml:"attributes"`
}
