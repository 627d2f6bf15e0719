package sigscript

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Validator checks the structural guarantees the evaluator relies on.
type Validator struct {
	script *Script
	errors []string
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make([]string, 0),
	}
}

// Validate checks script. The returned error wraps ErrInvalidScript.
func Validate(script *Script) error {
	return NewValidator().Validate(script)
}

// Validate checks script. The returned error wraps ErrInvalidScript.
func (v *Validator) Validate(script *Script) error {
	v.errors = v.errors[:0]
	v.script = script

	if script == nil {
		return errors.Wrap(ErrInvalidScript, "nil script")
	}
	if script.Name == "" {
		v.addError("script has no signal type name")
	}
	if script.LocalCount < 0 {
		v.addError(fmt.Sprintf("negative local count %d", script.LocalCount))
	}

	v.validateBlock(script.Statements)

	if len(v.errors) > 0 {
		return errors.Wrapf(ErrInvalidScript, "%s: %s", script.Name, strings.Join(v.errors, "; "))
	}

	return nil
}

func (v *Validator) validateBlock(nodes []Node) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *Statement:
			v.validateStatement(n)
		case *ConditionBlock:
			v.validateConditionBlock(n)
		case nil:
			v.addError("nil node")
		}
	}
}

func (v *Validator) validateStatement(stmt *Statement) {
	if stmt.IsReturn() {
		return
	}
	if len(stmt.Terms) == 0 {
		v.addError("statement without terms")
	}

	switch stmt.Target.Kind {
	case TargetLocal:
		v.validateLocal(stmt.Target.Index)
	case TargetExternal:
		if _, ok := externalFloatNames[stmt.Target.External]; !ok {
			v.addError(fmt.Sprintf("unknown assignment target %d", stmt.Target.External))
		}
	}

	v.validateTerms(stmt.Terms)
}

func (v *Validator) validateTerms(terms []*Term) {
	for _, term := range terms {
		if term == nil {
			v.addError("nil term")
			continue
		}
		v.validateTerm(term)
	}
}

func (v *Validator) validateTerm(term *Term) {
	if term.Sublevel < 0 {
		v.addError(fmt.Sprintf("negative sublevel %d", term.Sublevel))
	}

	switch term.Function {
	case FuncNone, FuncReturn:
		if len(term.Params) > 1 {
			v.addError(fmt.Sprintf("leaf term with %d parameters", len(term.Params)))
		}
	default:
		fn, ok := builtinFunctions[term.Function]
		if !ok {
			v.addError(fmt.Sprintf("unknown function %d", term.Function))
			break
		}
		if len(term.Params) != fn.Args {
			v.addError(fmt.Sprintf("%s: expected %d parameters, got %d", fn.Name, fn.Args, len(term.Params)))
		}
	}

	for _, p := range term.Params {
		v.validateParameter(p)
	}
}

func (v *Validator) validateParameter(p *Parameter) {
	if p == nil {
		v.addError("nil parameter")
		return
	}

	switch p.Kind {
	case ParamLocal:
		v.validateLocal(p.Index)
	case ParamExternal:
		if _, ok := externalFloatNames[p.External]; !ok {
			v.addError(fmt.Sprintf("unknown external float %d", p.External))
		}
	}
}

func (v *Validator) validateLocal(index int) {
	if index < 0 || index >= v.script.LocalCount {
		v.addError(fmt.Sprintf("local variable %d out of range [0,%d)", index, v.script.LocalCount))
	}
}

func (v *Validator) validateConditionBlock(block *ConditionBlock) {
	if len(block.Conditions) == 0 {
		v.addError("condition block without conditions")
	}
	v.validateConditions(block.Conditions)
	v.validateBlock(block.IfBlock)

	for _, elseIf := range block.ElseIfBlocks {
		if elseIf == nil || len(elseIf.Conditions) == 0 {
			v.addError("else-if without conditions")
			continue
		}
		v.validateConditions(elseIf.Conditions)
		v.validateBlock(elseIf.IfBlock)
	}

	v.validateBlock(block.ElseBlock)
}

func (v *Validator) validateConditions(list ConditionList) {
	for _, element := range list {
		switch e := element.(type) {
		case *Condition:
			if e.Term1 == nil {
				v.addError("condition without first term")
				continue
			}
			v.validateTerm(e.Term1)
			if e.Term2 != nil {
				v.validateTerm(e.Term2)
				if e.Comparator == CompareNone {
					v.addError("condition with two terms and no comparator")
				}
			}
		case ConditionList:
			if len(e) == 0 {
				v.addError("empty nested condition")
			}
			v.validateConditions(e)
		case AndOr, Not:
		default:
			v.addError(fmt.Sprintf("unknown condition element %T", element))
		}
	}
}

func (v *Validator) addError(err string) {
	v.errors = append(v.errors, err)
}
