package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version" yaml:"-"`
	CodecVersion  int `json:"codec_version" yaml:"-"`
}

// GraphSpec describes a network to build: regions and the links between
// their ports.
type GraphSpec struct {
	Name    string       `json:"name" yaml:"name"`
	Regions []RegionSpec `json:"regions" yaml:"regions"`
	Links   []LinkSpec   `json:"links" yaml:"links"`
}

type RegionSpec struct {
	Name        string             `json:"name" yaml:"name"`
	Kind        string             `json:"kind" yaml:"kind"`
	Nodes       int                `json:"nodes" yaml:"nodes"`
	Type        string             `json:"type,omitempty" yaml:"type,omitempty"`
	Width       int                `json:"width,omitempty" yaml:"width,omitempty"`
	RegionLevel bool               `json:"region_level,omitempty" yaml:"region_level,omitempty"`
	Activation  string             `json:"activation,omitempty" yaml:"activation,omitempty"`
	Params      map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// LinkSpec endpoints use "region.port". SourceNode selects one node slice of
// a per-node output; nil means the whole buffer.
type LinkSpec struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	SourceNode  *int   `json:"source_node,omitempty" yaml:"source_node,omitempty"`
}

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunRecord summarizes one execution of a graph. It is written before the
// first step so snapshots of a failed run stay reachable.
type RunRecord struct {
	VersionedRecord
	ID             string `json:"id"`
	GraphName      string `json:"graph_name"`
	Steps          int    `json:"steps"`
	CompletedSteps int    `json:"completed_steps"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	CreatedAtUTC   string `json:"created_at_utc"`
}

// OutputSnapshot is the content of one Output after one step.
type OutputSnapshot struct {
	VersionedRecord
	RunID       string    `json:"run_id"`
	Step        int       `json:"step"`
	Region      string    `json:"region"`
	Output      string    `json:"output"`
	Type        string    `json:"type"`
	RegionLevel bool      `json:"region_level"`
	NodeWidth   int       `json:"node_width"`
	Values      []float64 `json:"values"`
}
