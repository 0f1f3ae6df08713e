// Package clustering groups recorded voice samples by feature similarity and
// labels each group with the voice classifier's mood.
package clustering

import (
	"time"

	"github.com/justestif/go-moodify/internal/mood"
)

// Sample is one recorded voice analysis.
type Sample struct {
	ID         string
	Features   mood.VoiceFeatures
	RecordedAt time.Time
}

// Cluster is a group of similar voice samples.
type Cluster struct {
	Mood     mood.Label         // label of the centroid
	Rule     string             // voice rule that matched the centroid
	Centroid mood.VoiceFeatures // mean features of the cluster
	Samples  []Sample           // ordered by RecordedAt
	First    time.Time          // earliest sample
	Last     time.Time          // latest sample
}
