package oracle

import "testing"

// TestMessageAccessors verifies Text and ToolCalls pick the right parts in order.
func TestMessageAccessors(t *testing.T) {
	m := Message{
		Role: RoleAssistant,
		Parts: []Part{
			TextPart{Text: "searching"},
			ToolCallPart{ID: "1", Name: "search_exercises"},
			TextPart{Text: ""},
			ToolCallPart{ID: "2", Name: "search_exercises"},
			TextPart{Text: "done"},
		},
	}
	if got := m.Text(); got != "searching\ndone" {
		t.Errorf("Text() = %q", got)
	}
	calls := m.ToolCalls()
	if len(calls) != 2 || calls[0].ID != "1" || calls[1].ID != "2" {
		t.Errorf("ToolCalls() = %+v", calls)
	}
}

// TestArgReaders verifies tolerant decoding of JSON-shaped tool arguments.
func TestArgReaders(t *testing.T) {
	args := map[string]any{
		"muscle_group":        "chest",
		"equipment_available": []any{"dumbbell", 3.0, "bench"},
		"csv":                 "cable, barbell ,",
		"count":               float64(4),
		"count_str":           " 7 ",
	}

	if s, ok := ArgString(args, "muscle_group"); !ok || s != "chest" {
		t.Errorf("ArgString = %q, %v", s, ok)
	}
	if _, ok := ArgString(args, "missing"); ok {
		t.Error("missing key should report false")
	}

	eq, ok := ArgStrings(args, "equipment_available")
	if !ok || len(eq) != 2 || eq[1] != "bench" {
		t.Errorf("ArgStrings = %v, %v", eq, ok)
	}
	csv, ok := ArgStrings(args, "csv")
	if !ok || len(csv) != 2 || csv[0] != "cable" || csv[1] != "barbell" {
		t.Errorf("ArgStrings(csv) = %v", csv)
	}

	if n, ok := ArgInt(args, "count"); !ok || n != 4 {
		t.Errorf("ArgInt = %d, %v", n, ok)
	}
	if n, ok := ArgInt(args, "count_str"); !ok || n != 7 {
		t.Errorf("ArgInt(str) = %d, %v", n, ok)
	}
}
