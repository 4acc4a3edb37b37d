package textedit

import (
	"reflect"
	"testing"
)

func TestApply_SingleLineReplace(t *testing.T) {
	lines := []string{"foo.bar();"}
	edits := []Edit{
		{StartLine: 0, StartCol: 4, EndLine: 0, EndCol: 7, Text: "baz"},
	}

	got := Apply(lines, edits)
	want := []string{"foo.baz();"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
	if lines[0] != "foo.bar();" {
		t.Error("input was mutated")
	}
}

func TestApply_Insert(t *testing.T) {
	lines := []string{"ab"}
	edits := []Edit{
		{StartLine: 0, StartCol: 1, EndLine: 0, EndCol: 1, Text: "XY"},
	}

	got := Apply(lines, edits)
	if got[0] != "aXYb" {
		t.Errorf("Apply = %q, want aXYb", got[0])
	}
}

func TestApply_MultipleEditsSameLine(t *testing.T) {
	// Both edits address the original coordinates; back-to-front
	// application keeps the earlier edit's offsets valid.
	lines := []string{"aaa bbb ccc"}
	edits := []Edit{
		{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 3, Text: "X"},
		{StartLine: 0, StartCol: 8, EndLine: 0, EndCol: 11, Text: "Y"},
	}

	got := Apply(lines, edits)
	if got[0] != "X bbb Y" {
		t.Errorf("Apply = %q, want %q", got[0], "X bbb Y")
	}
}

func TestApply_MultiLineCollapse(t *testing.T) {
	lines := []string{"func main() {", "	old()", "}"}
	edits := []Edit{
		{StartLine: 0, StartCol: 13, EndLine: 2, EndCol: 0, Text: "\n	new()\n"},
	}

	got := Apply(lines, edits)
	want := []string{"func main() {", "	new()", "}"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}

func TestApply_ReplacementExpandsLines(t *testing.T) {
	lines := []string{"one", "two"}
	edits := []Edit{
		{StartLine: 0, StartCol: 3, EndLine: 0, EndCol: 3, Text: "\na\nb"},
	}

	got := Apply(lines, edits)
	want := []string{"one", "a", "b", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}

func TestApply_ClipsOutOfRange(t *testing.T) {
	lines := []string{"short"}

	tests := []struct {
		name string
		edit Edit
		want []string
	}{
		{
			name: "line beyond buffer clips to last line",
			edit: Edit{StartLine: 5, StartCol: 0, EndLine: 9, EndCol: 0, Text: "X"},
			want: []string{"Xshort"},
		},
		{
			name: "column beyond line clips to line end",
			edit: Edit{StartLine: 0, StartCol: 100, EndLine: 0, EndCol: 200, Text: "!"},
			want: []string{"short!"},
		},
		{
			name: "negative start clips to origin",
			edit: Edit{StartLine: -1, StartCol: -4, EndLine: 0, EndCol: 0, Text: ">"},
			want: []string{">short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(lines, []Edit{tt.edit})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_MalformedEditSkipped(t *testing.T) {
	lines := []string{"hello world"}
	edits := []Edit{
		{StartLine: 0, StartCol: 8, EndLine: 0, EndCol: 2, Text: "BAD"}, // end < start
		{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 5, Text: "howdy"},
	}

	got := Apply(lines, edits)
	if got[0] != "howdy world" {
		t.Errorf("Apply = %q; malformed edit must not abort the batch", got[0])
	}
}

func TestApply_EmptyEditListIdempotent(t *testing.T) {
	lines := []string{"a", "b"}
	got := Apply(lines, nil)
	if !reflect.DeepEqual(got, lines) {
		t.Errorf("Apply = %v, want %v", got, lines)
	}
	got = Apply(got, []Edit{})
	if !reflect.DeepEqual(got, lines) {
		t.Errorf("re-Apply = %v, want %v", got, lines)
	}
}

func TestApply_EmptyBuffer(t *testing.T) {
	got := Apply(nil, []Edit{
		{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 0, Text: "hello"},
	})
	if !reflect.DeepEqual(got, []string{"hello"}) {
		t.Errorf("Apply = %v, want [hello]", got)
	}
}

func TestApply_RuneColumns(t *testing.T) {
	lines := []string{"héllo wörld"}
	edits := []Edit{
		{StartLine: 0, StartCol: 6, EndLine: 0, EndCol: 11, Text: "mönde"},
	}

	got := Apply(lines, edits)
	if got[0] != "héllo mönde" {
		t.Errorf("Apply = %q, want %q (columns are rune offsets)", got[0], "héllo mönde")
	}
}

func TestApply_DeleteAcrossLines(t *testing.T) {
	lines := []string{"keep start", "drop me", "keep end"}
	edits := []Edit{
		{StartLine: 0, StartCol: 4, EndLine: 2, EndCol: 4, Text: ""},
	}

	got := Apply(lines, edits)
	want := []string{"keep end"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}

func TestSpanText(t *testing.T) {
	lines := []string{"alpha", "beta", "gamma"}

	tests := []struct {
		name string
		edit Edit
		want string
	}{
		{"single line", Edit{0, 1, 0, 4, ""}, "lph"},
		{"full line span", Edit{1, 0, 1, 4, ""}, "beta"},
		{"across lines", Edit{0, 3, 2, 2, ""}, "ha\nbeta\nga"},
		{"malformed", Edit{1, 3, 1, 1, ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpanText(lines, tt.edit); got != tt.want {
				t.Errorf("SpanText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvert_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		edits []Edit
	}{
		{
			name:  "single replace",
			lines: []string{"foo.bar();"},
			edits: []Edit{{0, 4, 0, 7, "bazinga"}},
		},
		{
			name:  "two edits one line",
			lines: []string{"aaa bbb ccc"},
			edits: []Edit{
				{0, 0, 0, 3, "X"},
				{0, 8, 0, 11, "YYYY"},
			},
		},
		{
			name:  "multi-line replacement",
			lines: []string{"one", "two", "three"},
			edits: []Edit{{0, 1, 2, 2, "A\nB"}},
		},
		{
			name:  "insert expanding lines",
			lines: []string{"head", "tail"},
			edits: []Edit{{0, 4, 0, 4, "\nmiddle"}},
		},
		{
			name:  "delete across lines",
			lines: []string{"keep start", "drop", "keep end"},
			edits: []Edit{{0, 4, 2, 4, ""}},
		},
		{
			name:  "edits on separate lines",
			lines: []string{"alpha", "beta", "gamma"},
			edits: []Edit{
				{0, 0, 0, 5, "ALPHA"},
				{2, 0, 2, 5, "G"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied := Apply(tt.lines, tt.edits)
			inverse := Invert(tt.lines, tt.edits)
			restored := Apply(applied, inverse)
			if !reflect.DeepEqual(restored, tt.lines) {
				t.Errorf("round trip failed:\noriginal: %v\napplied:  %v\ninverse:  %v\nrestored: %v",
					tt.lines, applied, inverse, restored)
			}
		})
	}
}

func TestInvert_Empty(t *testing.T) {
	if got := Invert([]string{"x"}, nil); got != nil {
		t.Errorf("Invert = %v, want nil", got)
	}
}
