package confidence

import (
	"fmt"
	"math"
	"testing"

	"NewsCredibility/internal/domain"
)

func scoredWith(scores ...float64) []domain.ScoredArticle {
	out := make([]domain.ScoredArticle, len(scores))
	for i, s := range scores {
		out[i] = domain.ScoredArticle{
			Article:        domain.Article{SourceName: fmt.Sprintf("source-%d", i)},
			RelevanceScore: s,
			RecencyBonus:   0.5,
		}
	}
	return out
}

func repeat(score float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = score
	}
	return out
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-4 }

func TestFuseEmpty(t *testing.T) {
	t.Parallel()

	got := Fuse(nil)
	if got.CorpusConfidence != 0.1 || got.Verdict != domain.VerdictFalse {
		t.Fatalf("Fuse(empty) = %+v, want 0.1/False", got)
	}
}

func TestFuseTopTwentyStrongCorpus(t *testing.T) {
	t.Parallel()

	got := Fuse(scoredWith(repeat(0.8, 25)...))
	if !approx(got.CorpusConfidence, 0.86) {
		t.Fatalf("confidence = %f, want 0.86", got.CorpusConfidence)
	}
	if got.Verdict != domain.VerdictTrue {
		t.Fatalf("verdict = %s, want True", got.Verdict)
	}
}

func TestFuseWeakCorpus(t *testing.T) {
	t.Parallel()

	got := Fuse(scoredWith(0.3, 0.2, 0.15))
	if !approx(got.CorpusConfidence, 0.1517) {
		t.Fatalf("confidence = %f, want ~0.1517", got.CorpusConfidence)
	}
	if got.Verdict != domain.VerdictFalse {
		t.Fatalf("verdict = %s, want False", got.Verdict)
	}
}

func TestFuseOnlyConsidersTopTwenty(t *testing.T) {
	t.Parallel()

	scores := append(repeat(0.2, 30), repeat(0.9, 20)...)
	got := Fuse(scoredWith(scores...))
	// Top 20 are the 0.9 articles regardless of input order.
	want := Combine(0.9, 1.0)
	if !approx(got.CorpusConfidence, want) {
		t.Fatalf("confidence = %f, want %f", got.CorpusConfidence, want)
	}
}

func TestVerdictThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		conf float64
		want domain.Verdict
	}{
		{0.0, domain.VerdictFalse},
		{0.39, domain.VerdictFalse},
		{0.4, domain.VerdictLikelyFalse},
		{0.69, domain.VerdictLikelyFalse},
		{0.7, domain.VerdictTrue},
		{1.0, domain.VerdictTrue},
	}
	for _, tc := range cases {
		if got := VerdictFor(tc.conf); got != tc.want {
			t.Fatalf("VerdictFor(%.2f) = %s, want %s", tc.conf, got, tc.want)
		}
	}
}

func TestVerdictIsMonotonic(t *testing.T) {
	t.Parallel()

	rank := map[domain.Verdict]int{domain.VerdictFalse: 0, domain.VerdictLikelyFalse: 1, domain.VerdictTrue: 2}
	prev := rank[VerdictFor(0)]
	for i := 1; i <= 1000; i++ {
		cur := rank[VerdictFor(float64(i) / 1000)]
		if cur < prev {
			t.Fatalf("verdict decreased at %.3f", float64(i)/1000)
		}
		prev = cur
	}
}

func TestCombineIsMonotonic(t *testing.T) {
	t.Parallel()

	steps := []float64{0, 0.1, 0.25, 0.5, 0.75, 1}
	for _, a := range steps {
		for _, b := range steps {
			for _, c := range steps {
				for _, d := range steps {
					if a >= c && b >= d && Combine(a, b) < Combine(c, d) {
						t.Fatalf("Combine(%v,%v) < Combine(%v,%v)", a, b, c, d)
					}
				}
			}
		}
	}
}

func TestAggregateConfidence(t *testing.T) {
	t.Parallel()

	if got := AggregateConfidence(nil, "x"); got != 0 {
		t.Fatalf("empty aggregate = %f, want 0", got)
	}
	if got := AggregateConfidence(scoredWith(0.3, 0.2), "x"); got != 0.2 {
		t.Fatalf("no-relevant aggregate = %f, want 0.2", got)
	}

	// 5 articles at 0.8 from 5 sources with recency 0.5:
	// 0.3*0.5 + 0.4*0.8 + 0.2*1 + 0.1*0.5 = 0.72
	got := AggregateConfidence(scoredWith(repeat(0.8, 5)...), "x")
	if !approx(got, 0.72) {
		t.Fatalf("aggregate = %f, want 0.72", got)
	}
}

func TestAggregateDiffersFromFuse(t *testing.T) {
	t.Parallel()

	scored := scoredWith(repeat(0.8, 25)...)
	fused := Fuse(scored).CorpusConfidence
	agg := AggregateConfidence(scored, "Scientists confirm water on Mars")
	// Fuse: 0.86. Aggregate: 0.3*1 + 0.4*0.8 + 0.2*1 + 0.1*0.5 = 0.87.
	if !approx(fused, 0.86) || !approx(agg, 0.87) {
		t.Fatalf("fused=%f aggregate=%f", fused, agg)
	}

	single := scoredWith(0.9)
	if approx(Fuse(single).CorpusConfidence, AggregateConfidence(single, "")) {
		t.Fatalf("formulas should disagree on a single strong article")
	}
}

func TestAggregateSameSourceCountsOnce(t *testing.T) {
	t.Parallel()

	scored := scoredWith(repeat(0.8, 5)...)
	for i := range scored {
		scored[i].Article.SourceName = "Reuters"
	}
	// 0.3*0.5 + 0.4*0.8 + 0.2*0.2 + 0.1*0.5 = 0.56
	if got := AggregateConfidence(scored, ""); !approx(got, 0.56) {
		t.Fatalf("aggregate = %f, want 0.56", got)
	}
}
