package clustering

import (
	"fmt"
	"strings"
)

const dateFormat = "2006-01-02"

// FormatSummary returns a human-readable summary of voice clusters.
// Outliers are summarized by count only.
func FormatSummary(clusters []Cluster, outliers []Sample) string {
	var sb strings.Builder

	total := len(outliers)
	for _, c := range clusters {
		total += len(c.Samples)
	}

	if len(clusters) == 0 {
		sb.WriteString(fmt.Sprintf("No voice clusters found from %d samples", total))
		if len(outliers) > 0 {
			sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", len(outliers)))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	clusterWord := "cluster"
	if len(clusters) > 1 {
		clusterWord = "clusters"
	}

	sb.WriteString(fmt.Sprintf("Found %d voice %s from %d samples", len(clusters), clusterWord, total))
	if len(outliers) > 0 {
		sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", len(outliers)))
	}
	sb.WriteString("\n")

	for i, c := range clusters {
		sb.WriteString("\n")
		sb.WriteString(formatCluster(i+1, c))
	}

	return sb.String()
}

func formatCluster(num int, c Cluster) string {
	var sb strings.Builder

	sampleWord := "sample"
	if len(c.Samples) > 1 {
		sampleWord = "samples"
	}

	sb.WriteString(fmt.Sprintf("Cluster %d: %s (%d %s, %s to %s)\n",
		num, c.Mood, len(c.Samples), sampleWord,
		c.First.Format(dateFormat), c.Last.Format(dateFormat)))
	sb.WriteString(fmt.Sprintf("  centroid: pitch %.2f, energy %.2f, tempo %.2f\n",
		c.Centroid.Pitch, c.Centroid.Energy, c.Centroid.Tempo))
	if c.Rule != "" {
		sb.WriteString(fmt.Sprintf("  rule: %s\n", c.Rule))
	}

	return sb.String()
}
