package tokens

import (
	"testing"

	"openwork/internal/state"
)

func TestEstimator_Heuristic(t *testing.T) {
	est := &Estimator{fallback: true, encodingName: "cl100k_base"}

	if count := est.CountText("Hello world"); count <= 0 {
		t.Fatalf("heuristic CountText should return > 0, got %d", count)
	}
	if count := est.CountText("你好世界"); count <= 0 {
		t.Fatalf("heuristic CountText for CJK should return > 0, got %d", count)
	}
	if est.CountText("") != 0 {
		t.Fatal("empty text should return 0")
	}
	if est.IsPrecise() {
		t.Fatal("fallback estimator should not be precise")
	}
}

func TestEstimator_CountTranscript(t *testing.T) {
	est := &Estimator{fallback: true, encodingName: "cl100k_base"}

	messages := []state.Message{
		{
			Info:  state.MessageInfo{ID: "m1", Role: "user"},
			Parts: []state.Part{{ID: "p1", Type: "text", Text: "hello"}},
		},
		{
			Info: state.MessageInfo{ID: "m2", Role: "assistant"},
			Parts: []state.Part{
				{ID: "p2", Type: "text", Text: "running the tests"},
				{ID: "p3", Type: "tool", Tool: &state.ToolState{Name: "bash", Output: "ok"}},
			},
		},
	}
	withTool := est.CountTranscript(messages)
	if withTool <= 0 {
		t.Fatalf("CountTranscript should return > 0, got %d", withTool)
	}
	withoutTool := est.CountTranscript(messages[:1])
	if withTool <= withoutTool {
		t.Fatalf("tool parts should add tokens: %d vs %d", withTool, withoutTool)
	}
}

func TestModelToEncoding(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		{"gpt-4o-mini", "o200k_base"},
		{"gpt-5", "o200k_base"},
		{"o1-preview", "o200k_base"},
		{"o3-mini", "o200k_base"},
		{"claude-sonnet-4-5", "cl100k_base"},
		{"qwen-plus", "cl100k_base"},
		{"", "cl100k_base"},
		{"unknown-model", "cl100k_base"},
	}
	for _, tt := range tests {
		got := modelToEncoding(tt.model)
		if got != tt.expected {
			t.Errorf("modelToEncoding(%q) = %q, want %q", tt.model, got, tt.expected)
		}
	}
}

func TestHeuristicCount(t *testing.T) {
	tests := []string{
		"Hello world, this is a test.",
		"你好世界，这是一个测试。",
		"Mixed 混合 text 文本",
	}
	for _, input := range tests {
		if got := heuristicCount(input); got <= 0 {
			t.Errorf("heuristicCount(%q) = %d, want > 0", input, got)
		}
	}
}
