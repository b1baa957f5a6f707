package dedupe

import (
	"time"

	"github.com/agentstation/dedupe/pkg/records"
	"github.com/agentstation/dedupe/pkg/resolver"
)

// Stats counts what happened to the rows of one run.
type Stats struct {
	Read         int `json:"read" yaml:"read"`
	FirstSeen    int `json:"first_seen" yaml:"first_seen"`
	Identical    int `json:"identical" yaml:"identical"`
	Conflicts    int `json:"conflicts" yaml:"conflicts"`
	Kept         int `json:"kept" yaml:"kept"`
	Replaced     int `json:"replaced" yaml:"replaced"`
	Merged       int `json:"merged" yaml:"merged"`
	Split        int `json:"split" yaml:"split"`
	Dropped      int `json:"dropped" yaml:"dropped"`
	PassThrough  int `json:"pass_through" yaml:"pass_through"`
	Written      int `json:"written" yaml:"written"`
	DistinctKeys int `json:"distinct_keys" yaml:"distinct_keys"`
}

// Result represents the outcome of a run.
type Result struct {
	// Records are the surviving rows in first-insertion order.
	Records []records.Record

	Stats Stats

	// Metadata
	Policy    resolver.Policy
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Summary is the flattened, serializable view of a Result.
type Summary struct {
	Policy   string `json:"policy" yaml:"policy"`
	Duration string `json:"duration" yaml:"duration"`
	Stats    `yaml:",inline"`
}

// Summary returns the serializable view of r.
func (r *Result) Summary() Summary {
	return Summary{
		Policy:   r.Policy.String(),
		Duration: r.Duration.Round(time.Millisecond).String(),
		Stats:    r.Stats,
	}
}
