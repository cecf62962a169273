package relevance

import (
	"errors"
	"math"
	"testing"
)

func TestSimilarities(t *testing.T) {
	t.Parallel()

	got, err := Similarities("water on mars", []string{
		"Water on Mars!",
		"stock markets rally",
		"mars water ice found by rover",
	})
	if err != nil {
		t.Fatalf("Similarities error: %v", err)
	}
	if math.Abs(got[0]-1) > 1e-9 {
		t.Fatalf("identical text similarity = %f, want 1", got[0])
	}
	if got[1] != 0 {
		t.Fatalf("disjoint text similarity = %f, want 0", got[1])
	}
	if got[2] <= 0 || got[2] >= 1 {
		t.Fatalf("partial overlap similarity out of (0,1): %f", got[2])
	}
}

func TestSimilaritiesEmptyVocabulary(t *testing.T) {
	t.Parallel()

	_, err := Similarities("the of", []string{"and it is", ""})
	if !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("expected ErrEmptyVocabulary, got %v", err)
	}
}

func TestFitVectorSpaceCapsVocabulary(t *testing.T) {
	t.Parallel()

	docs := [][]string{{"alpha", "beta", "beta", "gamma", "gamma", "gamma"}}
	vs, err := fitVectorSpace(docs, 2)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(vs.index) != 2 {
		t.Fatalf("vocabulary size = %d, want 2", len(vs.index))
	}
	if _, ok := vs.index["alpha"]; ok {
		t.Fatalf("least frequent term should be dropped")
	}
}
