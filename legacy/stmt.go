package legacy

// Statement is a statement in a control function body.
type Statement interface {
	StmtSpan() Span
	statement()
}

// Apply applies a table. At most one of the hit/miss form (HitMiss set)
// or the action-case form (Cases non-empty) is used.
type Apply struct {
	Table   string
	HitMiss bool
	Hit     []Statement
	Miss    []Statement
	Cases   []*ApplyCase
	Span    Span
}

// ApplyCase is an action-selected branch of an Apply.
type ApplyCase struct {
	Actions []string
	Default bool
	Body    []Statement
}

// If is a conditional.
type If struct {
	Cond Expression
	Then []Statement
	Else []Statement
	Span Span
}

// CallControl invokes another control function.
type CallControl struct {
	Control string
	Span    Span
}

func (s *Apply) StmtSpan() Span       { return s.Span }
func (s *If) StmtSpan() Span          { return s.Span }
func (s *CallControl) StmtSpan() Span { return s.Span }

func (*Apply) statement()       {}
func (*If) statement()          {}
func (*CallControl) statement() {}
