package table

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Value
	}{
		{name: "Empty", in: "", want: NA()},
		{name: "NALiteral", in: "NA", want: NA()},
		{name: "WhitespaceOnly", in: "   ", want: NA()},
		{name: "Integer", in: "42", want: Number(42)},
		{name: "Float", in: "3.5", want: Number(3.5)},
		{name: "Negative", in: "-1.25", want: Number(-1.25)},
		{name: "PaddedNumber", in: " 7 ", want: Number(7)},
		{name: "Text", in: "math", want: String("math")},
		{name: "LowercaseNa", in: "na", want: String("na")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v (kind %d), want %v (kind %d)",
					tt.in, got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestValueText(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "String", v: String("cs"), want: "cs"},
		{name: "Integer", v: Number(3), want: "3"},
		{name: "Float", v: Number(2.5), want: "2.5"},
		{name: "Missing", v: NA(), want: "NA"},
		{name: "Zero", v: Value{}, want: "NA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueNum(t *testing.T) {
	tests := []struct {
		name   string
		v      Value
		want   float64
		wantOK bool
	}{
		{name: "Number", v: Number(4), want: 4, wantOK: true},
		{name: "NumericString", v: String("4.5"), want: 4.5, wantOK: true},
		{name: "PaddedNumericString", v: String(" 2 "), want: 2, wantOK: true},
		{name: "Text", v: String("bio"), wantOK: false},
		{name: "Missing", v: NA(), wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.Num()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Num() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{name: "MissingBeforeNumber", a: NA(), b: Number(0), want: -1},
		{name: "NumberBeforeString", a: Number(99), b: String("a"), want: -1},
		{name: "NumbersByMagnitude", a: Number(1), b: Number(2), want: -1},
		{name: "StringsLexical", a: String("b"), b: String("a"), want: 1},
		{name: "EqualStrings", a: String("x"), b: String("x"), want: 0},
		{name: "EqualMissing", a: NA(), b: NA(), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("a", ""); err == nil {
		t.Error("New with empty column name: want error, got nil")
	}
	if _, err := New("a", "a"); err == nil {
		t.Error("New with duplicate column: want error, got nil")
	}
}

func TestAppendRowArity(t *testing.T) {
	tb := MustNew("a", "b")
	if err := tb.AppendRow(String("x")); err == nil {
		t.Error("AppendRow with 1 value on 2 columns: want error, got nil")
	}
	if err := tb.AppendRow(String("x"), Number(1)); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if tb.NumRows() != 1 {
		t.Errorf("NumRows() = %d, want 1", tb.NumRows())
	}
}

func TestSelect(t *testing.T) {
	tb := MustNew("id", "sem1", "sem2")
	tb.AppendRow(Number(1), String("math"), String("cs"))
	tb.AppendRow(Number(2), String("bio"), String("cs"))

	sel, err := tb.Select("sem2", "id")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := sel.Columns(); len(got) != 2 || got[0] != "sem2" || got[1] != "id" {
		t.Errorf("Columns() = %v, want [sem2 id]", got)
	}
	if v := sel.CellAt(1, 0); v.Text() != "cs" {
		t.Errorf("CellAt(1,0) = %v, want cs", v)
	}

	if _, err := tb.Select("missing"); err == nil {
		t.Error("Select unknown column: want error, got nil")
	}
}

func TestFilter(t *testing.T) {
	tb := MustNew("n")
	for i := 1; i <= 4; i++ {
		tb.AppendRow(Number(float64(i)))
	}
	even := tb.Filter(func(row int) bool {
		v, _ := tb.CellAt(row, 0).Num()
		return int(v)%2 == 0
	})
	if even.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", even.NumRows())
	}
	if v := even.CellAt(0, 0); v.Text() != "2" {
		t.Errorf("first kept row = %v, want 2", v)
	}
}

func TestRowKeyDistinguishesKinds(t *testing.T) {
	tb := MustNew("a")
	tb.AppendRow(String("1"))
	tb.AppendRow(Number(1))

	k0 := tb.RowKey(0, []string{"a"})
	k1 := tb.RowKey(1, []string{"a"})
	if k0 == k1 {
		t.Errorf("RowKey collides for string %q and number 1: %q", "1", k0)
	}
}

func TestCloneIsDeep(t *testing.T) {
	tb := MustNew("a")
	tb.AppendRow(String("x"))
	c := tb.Clone()
	c.AppendRow(String("y"))
	if tb.NumRows() != 1 {
		t.Errorf("clone mutation leaked: original NumRows() = %d, want 1", tb.NumRows())
	}
}
