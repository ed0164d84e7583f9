package learning

import (
	"context"
	"testing"

	"github.com/jllopis/substrate/pkg/errors"
)

func TestSupervisedPrediction(t *testing.T) {
	eng := NewEngine()
	eng.AddExample("hello there", "greeting", nil)
	eng.AddExample("goodbye now", "farewell", nil)

	th, err := eng.Process(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	result := th.Content.(map[string]any)
	predictions := result["predictions"].([]any)
	if len(predictions) != 1 || predictions[0] != "greeting" {
		t.Errorf("predictions = %v", predictions)
	}
}

func TestUnsupervisedClustering(t *testing.T) {
	eng := NewEngine()
	if err := eng.SetMode(ModeUnsupervised); err != nil {
		t.Fatalf("set mode: %v", err)
	}

	th, _ := eng.Process(context.Background(), "the weather is nice today")
	result := th.Content.(map[string]any)
	if result["pattern_cluster"] != "the_weather_is" {
		t.Errorf("cluster key = %v", result["pattern_cluster"])
	}
	if result["cluster_size"] != 1 {
		t.Errorf("cluster size = %v", result["cluster_size"])
	}

	th, _ = eng.Process(context.Background(), "the weather is awful")
	result = th.Content.(map[string]any)
	if result["cluster_size"] != 2 {
		t.Errorf("cluster should grow, size = %v", result["cluster_size"])
	}
}

func TestReinforcementVisitsAndReward(t *testing.T) {
	eng := NewEngine()
	_ = eng.SetMode(ModeReinforcement)

	th, _ := eng.Process(context.Background(), "move left")
	result := th.Content.(map[string]any)
	if result["visit_count"] != 1 {
		t.Errorf("visit count = %v", result["visit_count"])
	}
	if result["q_value"] != 0.0 {
		t.Errorf("initial q value = %v", result["q_value"])
	}

	err := eng.Update(context.Background(), map[string]any{
		"reward":       1.0,
		"state_action": "move left",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	q, ok := eng.QValue("move left")
	if !ok {
		t.Fatal("expected q entry for visited state-action")
	}
	// q = 0 + 0.1 * (1 - 0) with the default learning rate.
	if q != 0.1 {
		t.Errorf("q value = %g, want 0.1", q)
	}
}

func TestRewardIgnoredOutsideReinforcement(t *testing.T) {
	eng := NewEngine()
	_ = eng.SetMode(ModeReinforcement)
	_, _ = eng.Process(context.Background(), "move left")
	_ = eng.SetMode(ModeSupervised)

	_ = eng.Update(context.Background(), map[string]any{
		"reward":       1.0,
		"state_action": "move left",
	})
	_ = eng.SetMode(ModeReinforcement)
	if q, _ := eng.QValue("move left"); q != 0 {
		t.Errorf("reward outside reinforcement mode must not apply, q=%g", q)
	}
}

func TestSetModeValidation(t *testing.T) {
	eng := NewEngine()
	err := eng.SetMode(Mode("osmosis"))
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if !errors.IsCode(err, errors.CodeInvalidConfiguration) {
		t.Errorf("expected INVALID_CONFIGURATION, got %v", err)
	}
	if eng.Mode() != ModeSupervised {
		t.Error("failed SetMode must not mutate")
	}
}

func TestSetLearningRateValidation(t *testing.T) {
	eng := NewEngine()
	if err := eng.SetLearningRate(0.5); err != nil {
		t.Fatalf("valid rate rejected: %v", err)
	}
	for _, rate := range []float64{-0.1, 1.5} {
		if err := eng.SetLearningRate(rate); !errors.IsCode(err, errors.CodeInvalidConfiguration) {
			t.Errorf("rate %g: expected INVALID_CONFIGURATION, got %v", rate, err)
		}
	}
}

func TestConfidenceTiers(t *testing.T) {
	eng := NewEngine()

	th, _ := eng.Process(context.Background(), "x")
	if th.Confidence != 0.4 {
		t.Errorf("confidence with no examples = %g, want 0.4", th.Confidence)
	}

	for i := 0; i < 6; i++ {
		eng.AddExample(i, i, nil)
	}
	th, _ = eng.Process(context.Background(), "x")
	if th.Confidence != 0.6 {
		t.Errorf("confidence with 6 examples = %g, want 0.6", th.Confidence)
	}

	for i := 0; i < 5; i++ {
		eng.AddExample(i, i, nil)
	}
	th, _ = eng.Process(context.Background(), "x")
	if th.Confidence != 0.8 {
		t.Errorf("confidence with 11 examples = %g, want 0.8", th.Confidence)
	}
}

func TestAccuracyFeedback(t *testing.T) {
	eng := NewEngine()
	_ = eng.Update(context.Background(), map[string]any{"accuracy": 0.75})
	if got := eng.Metrics()["accuracy"]; got != 0.75 {
		t.Errorf("accuracy = %g, want 0.75", got)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b any
		want float64
	}{
		{"hello world", "hello world", 1.0},
		{"hello world", "hello there", 1.0 / 3.0},
		{"abc", "xyz", 0.0},
		{"", "something", 0.0},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%v, %v) = %g, want %g", tt.a, tt.b, got, tt.want)
		}
	}
}
