package filter

import "github.com/rebeliceyang/multifilter/internal/models"

// DefaultConditionMap maps display labels to the symbols stored on the wire
var DefaultConditionMap = map[string]string{
	models.LabelEqual:    string(models.OpEqual),
	models.LabelNotEqual: string(models.OpNotEqual),
}

// DefaultChoices lists the operators offered by the condition picker, in display order
var DefaultChoices = []string{
	models.LabelEqual,
	models.LabelNotEqual,
	models.LabelGreaterThan,
	models.LabelLessThan,
	models.LabelContains,
}

// Operators translates operators between their display label and stored symbol.
// Operators missing from the map pass through unchanged in both directions.
type Operators struct {
	toSymbol map[string]string
	toLabel  map[string]string
	choices  []string
}

// NewOperators builds an operator map from label->symbol pairs.
// A nil conditionMap or choices falls back to the defaults.
func NewOperators(conditionMap map[string]string, choices []string) *Operators {
	if conditionMap == nil {
		conditionMap = DefaultConditionMap
	}
	if len(choices) == 0 {
		choices = DefaultChoices
	}

	ops := &Operators{
		toSymbol: make(map[string]string, len(conditionMap)),
		toLabel:  make(map[string]string, len(conditionMap)),
		choices:  append([]string(nil), choices...),
	}
	for label, symbol := range conditionMap {
		ops.toSymbol[label] = symbol
		ops.toLabel[symbol] = label
	}
	return ops
}

// DefaultOperators returns the operator map used when none is configured
func DefaultOperators() *Operators {
	return NewOperators(nil, nil)
}

// Symbol returns the stored form of op, which may be a label or a symbol
func (o *Operators) Symbol(op string) string {
	if s, ok := o.toSymbol[op]; ok {
		return s
	}
	return op
}

// Label returns the display form of op, which may be a label or a symbol
func (o *Operators) Label(op string) string {
	if l, ok := o.toLabel[op]; ok {
		return l
	}
	return op
}

// Choices returns the operator labels offered for selection
func (o *Operators) Choices() []string {
	return append([]string(nil), o.choices...)
}
