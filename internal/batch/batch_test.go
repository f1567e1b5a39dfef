package batch

import (
	"context"
	"encoding/json"
	"testing"

	"fabula/internal/bible"
	"fabula/internal/blend"
)

func testSelections(n int) []blend.Selection {
	out := make([]blend.Selection, n)
	for i := range out {
		sel := blend.Selection{
			Schemas:   []string{"path", "boundary"},
			Metaphors: []string{"life_is_travel", "raw_cooked"},
			Poles:     map[string]string{"raw_cooked": "raw"},
			Gates:     []string{"bridge"},
			FrameID:   "journey",
		}
		if i%2 == 1 {
			sel.Poles = map[string]string{"raw_cooked": "raw|cooked"}
		}
		out[i] = sel
	}
	return out
}

func TestRunMatchesSerialBlend(t *testing.T) {
	rules, err := bible.DefaultRules()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	selections := testSelections(16)

	got, err := Run(context.Background(), rules, selections, 4)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(selections) {
		t.Fatalf("results = %d, want %d", len(got), len(selections))
	}

	for i, sel := range selections {
		want := blend.Blend(sel, rules)
		wantJSON, _ := json.Marshal(want)
		gotJSON, _ := json.Marshal(got[i])
		if string(wantJSON) != string(gotJSON) {
			t.Errorf("result %d differs from serial blend", i)
		}
	}
}

func TestRunSerialWorkerFloor(t *testing.T) {
	rules, err := bible.DefaultRules()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	got, err := Run(context.Background(), rules, testSelections(3), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("results = %d, want 3", len(got))
	}
}

func TestRunEmptyInput(t *testing.T) {
	rules, err := bible.DefaultRules()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	got, err := Run(context.Background(), rules, nil, 4)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("results = %d, want 0", len(got))
	}
}

func TestRunCancelled(t *testing.T) {
	rules, err := bible.DefaultRules()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, rules, testSelections(8), 2); err == nil {
		t.Fatal("expected context error")
	}
}
