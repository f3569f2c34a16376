package ast

import "testing"

func TestSubscriptPath(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want string
		ok   bool
	}{
		{
			name: "single key",
			expr: &Subscript{Value: &Name{Id: "data"}, Index: &StringLit{Value: "result"}},
			want: "result",
			ok:   true,
		},
		{
			name: "nested keys",
			expr: &Subscript{
				Value: &Subscript{Value: &Name{Id: "data"}, Index: &StringLit{Value: "a"}},
				Index: &StringLit{Value: "b"},
			},
			want: "a.b",
			ok:   true,
		},
		{
			name: "not rooted at data",
			expr: &Subscript{Value: &Name{Id: "context"}, Index: &StringLit{Value: "a"}},
			ok:   false,
		},
		{
			name: "non-string index",
			expr: &Subscript{Value: &Name{Id: "data"}, Index: &NumberLit{Value: 0}},
			ok:   false,
		},
		{
			name: "bare name",
			expr: &Name{Id: "data"},
			want: "",
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SubscriptPath(tt.expr)
			if ok != tt.ok {
				t.Fatalf("SubscriptPath() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("SubscriptPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{"name", &Name{Id: "data"}, "data"},
		{"attribute", &Attribute{Value: &Name{Id: "context"}, Attr: "stop_execution"}, "context.stop_execution"},
		{"string literal", &StringLit{Value: "hi"}, `"hi"`},
		{"int literal", &NumberLit{Value: 3}, "3"},
		{"float literal", &NumberLit{Value: 3.5, IsFloat: true}, "3.5"},
		{"bool true", &BoolLit{Value: true}, "True"},
		{"none", &NoneLit{}, "None"},
		{"cast", &CastCall{Cast: "int", Operand: &Name{Id: "x"}}, "int(x)"},
		{"compare", &Compare{Left: &Name{Id: "x"}, Op: CmpGt, Right: &NumberLit{Value: 1}}, "x > 1"},
		{"not", &UnaryNot{Operand: &Name{Id: "x"}}, "not x"},
		{
			"bool op and",
			&BoolOp{Op: BoolAnd, Values: []Expression{&Name{Id: "a"}, &Name{Id: "b"}}},
			"a and b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.expr); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCmpOpString(t *testing.T) {
	if CmpGtE.String() != ">=" {
		t.Errorf("CmpGtE.String() = %q, want >=", CmpGtE.String())
	}
	if CmpIsNot.String() != "is not" {
		t.Errorf("CmpIsNot.String() = %q, want %q", CmpIsNot.String(), "is not")
	}
}
