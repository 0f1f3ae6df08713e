package clustering

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-moodify/internal/mood"
)

// Config holds voice clustering parameters.
type Config struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Minimum samples per cluster (smaller clusters become outliers)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    3,
		MinClusterSize: 2,
	}
}

// sampleObservation wraps a Sample to implement clusters.Observation.
type sampleObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o sampleObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o sampleObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// ClusterVoices groups samples with k-means over (pitch, energy, tempo) and
// labels every cluster by classifying its centroid.
// Returns clusters ordered by size (largest first) and the outlier samples.
func ClusterVoices(samples []Sample, cfg Config) ([]Cluster, []Sample, error) {
	if len(samples) == 0 {
		return nil, nil, nil
	}

	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}

	// Too few samples to partition: everything is an outlier
	if len(samples) < cfg.NumClusters {
		return nil, slices.Clone(samples), nil
	}

	var obs clusters.Observations
	for i, s := range samples {
		obs = append(obs, sampleObservation{index: i, coords: coordinates(s.Features)})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		return nil, nil, fmt.Errorf("partitioning voice samples: %w", err)
	}

	var (
		out      []Cluster
		outliers []Sample
		assigned = make([]bool, len(samples))
	)
	for _, c := range result {
		var members []Sample
		for _, o := range c.Observations {
			so, ok := o.(sampleObservation)
			if !ok || assigned[so.index] {
				continue
			}
			assigned[so.index] = true
			members = append(members, samples[so.index])
		}

		if len(members) == 0 {
			continue
		}
		if len(members) < cfg.MinClusterSize {
			outliers = append(outliers, members...)
			continue
		}

		slices.SortFunc(members, func(a, b Sample) int {
			return a.RecordedAt.Compare(b.RecordedAt)
		})

		centroid := mean(members)
		label, rule := mood.ExplainVoice(centroid)
		out = append(out, Cluster{
			Mood:     label,
			Rule:     rule,
			Centroid: centroid,
			Samples:  members,
			First:    members[0].RecordedAt,
			Last:     members[len(members)-1].RecordedAt,
		})
	}

	// Every sample lands in exactly one cluster or in outliers.
	for i, ok := range assigned {
		if !ok {
			outliers = append(outliers, samples[i])
		}
	}

	slices.SortFunc(out, func(a, b Cluster) int {
		return cmp.Compare(len(b.Samples), len(a.Samples))
	})

	return out, outliers, nil
}

// coordinates returns the k-means vector for a sample.
func coordinates(f mood.VoiceFeatures) clusters.Coordinates {
	return clusters.Coordinates{f.Pitch, f.Energy, f.Tempo}
}

// mean returns the average features of samples.
func mean(samples []Sample) mood.VoiceFeatures {
	var sum mood.VoiceFeatures
	for _, s := range samples {
		sum.Pitch += s.Features.Pitch
		sum.Energy += s.Features.Energy
		sum.Tempo += s.Features.Tempo
	}
	n := float64(len(samples))
	return mood.VoiceFeatures{Pitch: sum.Pitch / n, Energy: sum.Energy / n, Tempo: sum.Tempo / n}
}
