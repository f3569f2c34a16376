package ir

// ChoiceRule is the compiled form of a single choice-expression, produced
// by the expr package's compiler and consumed by the Linker/serializer.
// Exactly one of the leaf fields (Variable+Comparator) or the combinator
// fields (And/Or/Not) is populated, mirroring the ASL comparison-operator
// grammar: a rule is either a leaf comparison or a boolean combination of
// other rules.
type ChoiceRule struct {
	// Variable is the JSONPath operand of a leaf comparison, e.g. "$.count".
	Variable string
	// Comparator is the ASL comparator key, e.g. "NumericGreaterThan",
	// "StringEquals", "IsNull", "BooleanEquals".
	Comparator string
	// Value holds the comparison literal for a leaf rule; always true for
	// IsNull, since "is not None" wraps an IsNull=true leaf in Not rather
	// than emitting IsNull=false.
	Value interface{}

	And []*ChoiceRule
	Or  []*ChoiceRule
	Not *ChoiceRule
}

// IsLeaf reports whether r is a single comparison rather than a boolean
// combinator.
func (r *ChoiceRule) IsLeaf() bool {
	return r != nil && r.Comparator != "" && r.And == nil && r.Or == nil && r.Not == nil
}
