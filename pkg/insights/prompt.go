package insights

import (
	"fmt"
	"strings"
)

// buildPrompt renders the concise analysis prompt sent to the model. Kept
// short deliberately; long prompts slow the response without improving the
// three requested points.
func buildPrompt(stats Statistics) string {
	var b strings.Builder

	b.WriteString("Analyze this graph comparison briefly (3-4 sentences):\n\n")
	fmt.Fprintf(&b, "Baseline: Mean=%.2f, Std=%.2f\n",
		stats.BaselineStats.MeanY, stats.BaselineStats.StdY)
	fmt.Fprintf(&b, "Sample (%s): Mean=%.2f, Std=%.2f\n",
		stats.SampleName, stats.SampleStats.MeanY, stats.SampleStats.StdY)
	fmt.Fprintf(&b, "Difference: %.2f\n\n", stats.Differences.MeanDiff)

	if sim := stats.Similarity; sim != nil {
		fmt.Fprintf(&b, "Similarity: SSE=%.2f, Fréchet=%.4f", sim.SSE, sim.FrechetDistance)
		if sim.NormalizedSSE != nil {
			fmt.Fprintf(&b, ", Normalized SSE=%.4f", *sim.NormalizedSSE)
		}
		fmt.Fprintf(&b, ", NSSE similarity=%.1f%%, NFD similarity=%.1f%%\n\n",
			sim.NSSESimilarityPct, sim.NFDSimilarityPct)
	}

	b.WriteString("Provide: 1) Key differences 2) Similarity interpretation 3) Main insight")
	return b.String()
}

// fallbackInsights renders the deterministic statistical summary used when
// the AI service is unavailable or fails.
func fallbackInsights(stats Statistics) string {
	var b strings.Builder

	b.WriteString("**Statistical Analysis Summary**\n\n")
	b.WriteString("**Key Observations:**\n")
	fmt.Fprintf(&b, "- Baseline Mean: %.3f ± %.3f\n",
		stats.BaselineStats.MeanY, stats.BaselineStats.StdY)
	fmt.Fprintf(&b, "- Sample Mean: %.3f ± %.3f\n",
		stats.SampleStats.MeanY, stats.SampleStats.StdY)
	fmt.Fprintf(&b, "- Mean Difference: %.3f\n\n", stats.Differences.MeanDiff)

	if sim := stats.Similarity; sim != nil {
		b.WriteString("**Similarity Metrics:**\n")
		fmt.Fprintf(&b, "- SSE: %.2f\n", sim.SSE)
		fmt.Fprintf(&b, "- RMSE: %.4f\n", sim.RMSE)
		fmt.Fprintf(&b, "- Fréchet Distance: %.4f\n", sim.FrechetDistance)
		fmt.Fprintf(&b, "- NSSE Similarity: %.1f%%\n", sim.NSSESimilarityPct)
		fmt.Fprintf(&b, "- NFD Similarity: %.1f%%\n\n", sim.NFDSimilarityPct)
	}

	b.WriteString("**Note:** AI insights unavailable. Statistical analysis completed successfully.")
	return b.String()
}
