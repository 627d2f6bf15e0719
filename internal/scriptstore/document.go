package scriptstore

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/dueldanov/sigscript/internal/sigscript"
)

// Node kinds of a ScriptDocument.
const (
	KindAssign = "assign"
	KindReturn = "return"
	KindIf     = "if"
)

// Condition element kinds of a ScriptDocument.
const (
	KindCondition = "condition"
	KindAnd       = "and"
	KindOr        = "or"
	KindNot       = "not"
	KindGroup     = "group"
)

// ScriptDocument is the serialized form of a parsed signal script. It is used
// for stored blobs (JSON) and for script files (YAML or JSON).
type ScriptDocument struct {
	Name       string         `json:"name" yaml:"name"`
	Locals     int            `json:"locals,omitempty" yaml:"locals,omitempty"`
	Statements []NodeDocument `json:"statements" yaml:"statements"`
}

// NodeDocument is a statement or a condition block.
type NodeDocument struct {
	Kind string `json:"kind" yaml:"kind"`

	Target *TargetDocument `json:"target,omitempty" yaml:"target,omitempty"`
	Terms  []TermDocument  `json:"terms,omitempty" yaml:"terms,omitempty"`

	Conditions []ConditionDocument `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Then       []NodeDocument      `json:"then,omitempty" yaml:"then,omitempty"`
	ElseIf     []ElseIfDocument    `json:"elseif,omitempty" yaml:"elseif,omitempty"`
	Else       []NodeDocument      `json:"else,omitempty" yaml:"else,omitempty"`
}

// ElseIfDocument is one else-if arm.
type ElseIfDocument struct {
	Conditions []ConditionDocument `json:"conditions" yaml:"conditions"`
	Then       []NodeDocument      `json:"then,omitempty" yaml:"then,omitempty"`
}

// TargetDocument names an assignment target. A nil target evaluates the terms
// for their side effects only.
type TargetDocument struct {
	Local    *int   `json:"local,omitempty" yaml:"local,omitempty"`
	External string `json:"external,omitempty" yaml:"external,omitempty"`
}

// TermDocument is one term of a flat expression.
type TermDocument struct {
	Function  string          `json:"function,omitempty" yaml:"function,omitempty"`
	Params    []ParamDocument `json:"params,omitempty" yaml:"params,omitempty"`
	Op        string          `json:"op,omitempty" yaml:"op,omitempty"`
	Negate    bool            `json:"negate,omitempty" yaml:"negate,omitempty"`
	Minus     bool            `json:"minus,omitempty" yaml:"minus,omitempty"`
	Sublevel  int             `json:"sublevel,omitempty" yaml:"sublevel,omitempty"`
	Sublevel2 int             `json:"sublevel2,omitempty" yaml:"sublevel2,omitempty"`
}

// ParamDocument is a leaf operand. Exactly one of Constant, Name, Local and
// External is set; Name is a symbolic constant such as SIGASP_STOP.
type ParamDocument struct {
	Constant *int   `json:"constant,omitempty" yaml:"constant,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Local    *int   `json:"local,omitempty" yaml:"local,omitempty"`
	External string `json:"external,omitempty" yaml:"external,omitempty"`
	Minus    bool   `json:"minus,omitempty" yaml:"minus,omitempty"`
}

// ConditionDocument is one element of a condition list.
type ConditionDocument struct {
	Kind    string              `json:"kind" yaml:"kind"`
	Term1   *TermDocument       `json:"term1,omitempty" yaml:"term1,omitempty"`
	Term2   *TermDocument       `json:"term2,omitempty" yaml:"term2,omitempty"`
	Compare string              `json:"compare,omitempty" yaml:"compare,omitempty"`
	Negate  bool                `json:"negate,omitempty" yaml:"negate,omitempty"`
	Group   []ConditionDocument `json:"group,omitempty" yaml:"group,omitempty"`
}

// Script converts the document into an evaluable script.
func (d *ScriptDocument) Script() (*sigscript.Script, error) {
	statements, err := decodeNodes(d.Statements)
	if err != nil {
		return nil, errors.Wrapf(err, "script %s", d.Name)
	}

	return &sigscript.Script{
		Name:       d.Name,
		LocalCount: d.Locals,
		Statements: statements,
	}, nil
}

// NewScriptDocument converts script into its serialized form.
func NewScriptDocument(script *sigscript.Script) *ScriptDocument {
	return &ScriptDocument{
		Name:       script.Name,
		Locals:     script.LocalCount,
		Statements: encodeNodes(script.Statements),
	}
}

func decodeNodes(docs []NodeDocument) ([]sigscript.Node, error) {
	nodes := make([]sigscript.Node, 0, len(docs))
	for i := range docs {
		node, err := decodeNode(&docs[i])
		if err != nil {
			return nil, errors.Wrapf(err, "statement %d", i)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func decodeNode(doc *NodeDocument) (sigscript.Node, error) {
	switch doc.Kind {
	case KindReturn:
		return sigscript.ReturnStatement(), nil

	case KindAssign, "":
		stmt := &sigscript.Statement{}
		if doc.Target != nil {
			target, err := decodeTarget(doc.Target)
			if err != nil {
				return nil, err
			}
			stmt.Target = target
		}
		terms, err := decodeTerms(doc.Terms)
		if err != nil {
			return nil, err
		}
		stmt.Terms = terms
		return stmt, nil

	case KindIf:
		block, err := decodeArm(doc.Conditions, doc.Then)
		if err != nil {
			return nil, err
		}
		for i := range doc.ElseIf {
			elseIf, err := decodeArm(doc.ElseIf[i].Conditions, doc.ElseIf[i].Then)
			if err != nil {
				return nil, errors.Wrapf(err, "elseif %d", i)
			}
			block.ElseIfBlocks = append(block.ElseIfBlocks, elseIf)
		}
		if block.ElseBlock, err = decodeNodes(doc.Else); err != nil {
			return nil, errors.Wrap(err, "else")
		}
		return block, nil

	default:
		return nil, fmt.Errorf("unknown node kind %q", doc.Kind)
	}
}

func decodeArm(conditions []ConditionDocument, then []NodeDocument) (*sigscript.ConditionBlock, error) {
	list, err := decodeConditions(conditions)
	if err != nil {
		return nil, err
	}
	body, err := decodeNodes(then)
	if err != nil {
		return nil, errors.Wrap(err, "then")
	}
	return &sigscript.ConditionBlock{Conditions: list, IfBlock: body}, nil
}

func decodeTarget(doc *TargetDocument) (sigscript.AssignTarget, error) {
	switch {
	case doc.Local != nil:
		return sigscript.LocalTarget(*doc.Local), nil
	case doc.External != "":
		x, err := sigscript.ParseExternalFloat(doc.External)
		if err != nil {
			return sigscript.AssignTarget{}, err
		}
		return sigscript.ExternalTarget(x), nil
	default:
		return sigscript.AssignTarget{}, nil
	}
}

func decodeTerms(docs []TermDocument) ([]*sigscript.Term, error) {
	terms := make([]*sigscript.Term, 0, len(docs))
	for i := range docs {
		term, err := decodeTerm(&docs[i])
		if err != nil {
			return nil, errors.Wrapf(err, "term %d", i)
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func decodeTerm(doc *TermDocument) (*sigscript.Term, error) {
	term := &sigscript.Term{
		Negate:    doc.Negate,
		Minus:     doc.Minus,
		Sublevel:  doc.Sublevel,
		Sublevel2: doc.Sublevel2,
	}

	var err error
	if doc.Function != "" {
		if term.Function, err = sigscript.ParseFunction(doc.Function); err != nil {
			return nil, err
		}
	}
	if term.Operator, err = sigscript.ParseTermOperator(doc.Op); err != nil {
		return nil, err
	}

	for i := range doc.Params {
		p, err := decodeParam(&doc.Params[i])
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d", i)
		}
		term.Params = append(term.Params, p)
	}

	return term, nil
}

func decodeParam(doc *ParamDocument) (*sigscript.Parameter, error) {
	var p *sigscript.Parameter

	switch {
	case doc.Constant != nil:
		p = sigscript.Const(*doc.Constant)
	case doc.Name != "":
		v, ok := sigscript.ConstantValue(doc.Name)
		if !ok {
			return nil, &sigscript.NameError{Name: doc.Name}
		}
		p = sigscript.Const(v)
	case doc.Local != nil:
		p = sigscript.Local(*doc.Local)
	case doc.External != "":
		x, err := sigscript.ParseExternalFloat(doc.External)
		if err != nil {
			return nil, err
		}
		p = sigscript.External(x)
	default:
		return nil, errors.New("empty parameter")
	}

	p.Minus = doc.Minus
	return p, nil
}

func decodeConditions(docs []ConditionDocument) (sigscript.ConditionList, error) {
	list := make(sigscript.ConditionList, 0, len(docs))

	for i := range docs {
		doc := &docs[i]

		switch doc.Kind {
		case KindAnd:
			list = append(list, sigscript.AndOrAnd)
		case KindOr:
			list = append(list, sigscript.AndOrOr)
		case KindNot:
			list = append(list, sigscript.Not{})
		case KindGroup:
			group, err := decodeConditions(doc.Group)
			if err != nil {
				return nil, errors.Wrapf(err, "group %d", i)
			}
			list = append(list, group)
		case KindCondition, "":
			c, err := decodeCondition(doc)
			if err != nil {
				return nil, errors.Wrapf(err, "condition %d", i)
			}
			list = append(list, c)
		default:
			return nil, fmt.Errorf("unknown condition kind %q", doc.Kind)
		}
	}

	return list, nil
}

func decodeCondition(doc *ConditionDocument) (*sigscript.Condition, error) {
	if doc.Term1 == nil {
		return nil, errors.New("condition without term1")
	}

	c := &sigscript.Condition{Negate1: doc.Negate}

	var err error
	if c.Term1, err = decodeTerm(doc.Term1); err != nil {
		return nil, err
	}
	if doc.Term2 != nil {
		if c.Term2, err = decodeTerm(doc.Term2); err != nil {
			return nil, err
		}
	}
	if c.Comparator, err = sigscript.ParseComparator(doc.Compare); err != nil {
		return nil, err
	}

	return c, nil
}

func encodeNodes(nodes []sigscript.Node) []NodeDocument {
	if len(nodes) == 0 {
		return nil
	}

	docs := make([]NodeDocument, 0, len(nodes))
	for _, node := range nodes {
		switch n := node.(type) {
		case *sigscript.Statement:
			docs = append(docs, encodeStatement(n))
		case *sigscript.ConditionBlock:
			doc := NodeDocument{
				Kind:       KindIf,
				Conditions: encodeConditions(n.Conditions),
				Then:       encodeNodes(n.IfBlock),
				Else:       encodeNodes(n.ElseBlock),
			}
			for _, elseIf := range n.ElseIfBlocks {
				doc.ElseIf = append(doc.ElseIf, ElseIfDocument{
					Conditions: encodeConditions(elseIf.Conditions),
					Then:       encodeNodes(elseIf.IfBlock),
				})
			}
			docs = append(docs, doc)
		}
	}
	return docs
}

func encodeStatement(stmt *sigscript.Statement) NodeDocument {
	if stmt.IsReturn() {
		return NodeDocument{Kind: KindReturn}
	}

	doc := NodeDocument{Kind: KindAssign, Terms: encodeTerms(stmt.Terms)}
	switch stmt.Target.Kind {
	case sigscript.TargetLocal:
		index := stmt.Target.Index
		doc.Target = &TargetDocument{Local: &index}
	case sigscript.TargetExternal:
		doc.Target = &TargetDocument{External: stmt.Target.External.String()}
	}
	return doc
}

func encodeTerms(terms []*sigscript.Term) []TermDocument {
	docs := make([]TermDocument, 0, len(terms))
	for _, term := range terms {
		docs = append(docs, *encodeTerm(term))
	}
	return docs
}

func encodeTerm(term *sigscript.Term) *TermDocument {
	doc := &TermDocument{
		Negate:    term.Negate,
		Minus:     term.Minus,
		Sublevel:  term.Sublevel,
		Sublevel2: term.Sublevel2,
	}
	if term.Function != sigscript.FuncNone {
		doc.Function = term.Function.String()
	}
	if term.Operator != sigscript.OperatorNone {
		doc.Op = term.Operator.String()
	}

	for _, p := range term.Params {
		pd := ParamDocument{Minus: p.Minus}
		switch p.Kind {
		case sigscript.ParamConstant:
			v := p.Constant
			pd.Constant = &v
		case sigscript.ParamLocal:
			index := p.Index
			pd.Local = &index
		case sigscript.ParamExternal:
			pd.External = p.External.String()
		}
		doc.Params = append(doc.Params, pd)
	}

	return doc
}

func encodeConditions(list sigscript.ConditionList) []ConditionDocument {
	docs := make([]ConditionDocument, 0, len(list))

	for _, element := range list {
		switch e := element.(type) {
		case sigscript.AndOr:
			if e == sigscript.AndOrOr {
				docs = append(docs, ConditionDocument{Kind: KindOr})
			} else {
				docs = append(docs, ConditionDocument{Kind: KindAnd})
			}
		case sigscript.Not:
			docs = append(docs, ConditionDocument{Kind: KindNot})
		case sigscript.ConditionList:
			docs = append(docs, ConditionDocument{Kind: KindGroup, Group: encodeConditions(e)})
		case *sigscript.Condition:
			doc := ConditionDocument{Kind: KindCondition, Negate: e.Negate1}
			if e.Term1 != nil {
				doc.Term1 = encodeTerm(e.Term1)
			}
			if e.Term2 != nil {
				doc.Term2 = encodeTerm(e.Term2)
			}
			if e.Comparator != sigscript.CompareNone {
				doc.Compare = e.Comparator.String()
			}
			docs = append(docs, doc)
		}
	}

	return docs
}
