package model

import (
	"slices"
	"testing"
)

func TestInferKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []string
		expected Kind
	}{
		{
			name:     "all integers",
			values:   []string{"123", "456", "789"},
			expected: KindInteger,
		},
		{
			name:     "one real demotes to real",
			values:   []string{"123", "45.6", "789"},
			expected: KindReal,
		},
		{
			name:     "all floats",
			values:   []string{"12.3", "45.6", "78.9"},
			expected: KindReal,
		},
		{
			name:     "non numeric token makes text",
			values:   []string{"123", "hello", "789"},
			expected: KindText,
		},
		{
			name:     "all empty values",
			values:   []string{"", "  ", ""},
			expected: KindText,
		},
		{
			name:     "no values",
			values:   nil,
			expected: KindText,
		},
		{
			name:     "integers with empty values",
			values:   []string{"123", "", "789"},
			expected: KindInteger,
		},
		{
			name:     "signed integers",
			values:   []string{"-123", "+456", "-789"},
			expected: KindInteger,
		},
		{
			name:     "scientific notation",
			values:   []string{"1e10", "2.5e-3", "3.14e2"},
			expected: KindReal,
		},
		{
			name:     "integer overflow is real",
			values:   []string{"99999999999999999999"},
			expected: KindReal,
		},
		{
			name:     "booleans any case",
			values:   []string{"true", "FALSE", "True"},
			expected: KindBoolean,
		},
		{
			name:     "boolean mixed with yes is text",
			values:   []string{"true", "false", "yes"},
			expected: KindText,
		},
		{
			name:     "boolean mixed with number is text",
			values:   []string{"true", "1"},
			expected: KindText,
		},
		{
			name:     "nan and inf are text",
			values:   []string{"NaN", "Inf"},
			expected: KindText,
		},
		{
			name:     "surrounding spaces are ignored",
			values:   []string{" 12 ", "13"},
			expected: KindInteger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InferKind(tt.values); got != tt.expected {
				t.Errorf("InferKind(%v) = %v, want %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestInferColumns(t *testing.T) {
	t.Parallel()

	t.Run("kinds follow header order", func(t *testing.T) {
		t.Parallel()

		header := NewHeader([]string{"id_no", "price", "active", "name"})
		rows := []Record{
			{"1", "1.5", "true", "alice"},
			{"2", "2", "false", "bob"},
			{"3"},
		}

		got := InferColumns(header, rows)
		want := Columns{
			{Name: "id_no", Kind: KindInteger},
			{Name: "price", Kind: KindReal},
			{Name: "active", Kind: KindBoolean},
			{Name: "name", Kind: KindText},
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d columns, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("column %d: got %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("header without rows is all text", func(t *testing.T) {
		t.Parallel()

		got := InferColumns(NewHeader([]string{"a", "b"}), nil)
		for _, c := range got {
			if c.Kind != KindText {
				t.Errorf("column %s: expected TEXT, got %v", c.Name, c.Kind)
			}
		}
	})

	t.Run("empty header", func(t *testing.T) {
		t.Parallel()

		if got := InferColumns(nil, []Record{{"1"}}); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestSampler(t *testing.T) {
	t.Parallel()

	s := NewSampler(3)
	if s.Full() {
		t.Fatal("new sampler must not be full")
	}
	if s.Add(Record{"1"}) || s.Add(Record{"2"}) {
		t.Fatal("sampler reported full too early")
	}
	if !s.Add(Record{"3"}) {
		t.Fatal("sampler should be full after capacity rows")
	}
	s.Add(Record{"4"})
	if s.Len() != 3 {
		t.Errorf("expected 3 buffered rows, got %d", s.Len())
	}

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("expected empty buffer after reset, got %d", s.Len())
	}

	if got := NewSampler(0).Capacity(); got != DefaultSampleSize {
		t.Errorf("expected default capacity %d, got %d", DefaultSampleSize, got)
	}
}

func TestSynthesizeHeader(t *testing.T) {
	t.Parallel()

	got := SynthesizeHeader(3)
	if !slices.Equal(got, NewHeader([]string{"column_1", "column_2", "column_3"})) {
		t.Errorf("unexpected header %v", got)
	}
	if len(SynthesizeHeader(0)) != 0 {
		t.Error("expected empty header")
	}
}

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	got := NormalizeHeader(Header{" name ", "", "age", "ID"})
	if !slices.Equal(got, Header{"name", "column_2", "age", "ID_"}) {
		t.Errorf("unexpected header %v", got)
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    Kind
		raw     string
		want    Value
		wantErr bool
	}{
		{name: "blank is null", kind: KindInteger, raw: "  ", want: NullValue()},
		{name: "integer", kind: KindInteger, raw: "42", want: IntegerValue(42)},
		{name: "bad integer", kind: KindInteger, raw: "abc", want: NullValue(), wantErr: true},
		{name: "real", kind: KindReal, raw: "2.5", want: RealValue(2.5)},
		{name: "real rejects nan", kind: KindReal, raw: "NaN", want: NullValue(), wantErr: true},
		{name: "boolean", kind: KindBoolean, raw: "TRUE", want: BooleanValue(true)},
		{name: "bad boolean", kind: KindBoolean, raw: "yes", want: NullValue(), wantErr: true},
		{name: "text keeps raw", kind: KindText, raw: " hi ", want: TextValue(" hi ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Coerce(tt.kind, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Coerce() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Coerce() = %v, want %v", got, tt.want)
			}
		})
	}
}
