package layout

import (
	"github.com/strataviz/alluvial/pkg/table"
)

// Tristate is a three-valued option: unset, true, or false.
// It is used for the Decreasing flow ordering, where "unset" means
// "preserve the existing row order" rather than either sort direction.
type Tristate int

const (
	TristateUnset Tristate = iota
	TristateTrue
	TristateFalse
)

// Side marks which end of a link a flow half-record belongs to.
type Side int

const (
	SideStart Side = iota
	SideEnd
)

// String returns "start" or "end".
func (s Side) String() string {
	if s == SideEnd {
		return "end"
	}
	return "start"
}

// Options configures the position calculators.
type Options struct {
	// Weight names the weight column of the (normalized) lodes table.
	// Empty means every row weighs 1.
	Weight string

	// Guidance selects the traversal order used to stack lodes within an
	// axis. The zero value falls back to Zigzag.
	Guidance Guidance

	// Order is an explicit order matrix of shape entities × axes: Order[e][a]
	// is the sort rank of entity e at axis a, with entities indexed in first-
	// appearance order. When non-nil it overrides Guidance. A wrong shape
	// fails eagerly with ORDERING_SHAPE_MISMATCH.
	Order [][]int

	// Aes lists aesthetic columns bound into the record output. With
	// AesBind they also participate in the lode sort, right after the
	// axis's own category key.
	Aes []string

	// AesBind inserts the Aes columns as sort keys ahead of the secondary
	// axes.
	AesBind bool

	// StratumOrder controls the top-to-bottom ordering of strata per axis.
	StratumOrder StratumOrder

	// AggregateWeights merges flows identical across all non-weight columns
	// before computing link geometry (ComputeFlows only).
	AggregateWeights bool

	// Decreasing orders flows within a link by weight: true puts the
	// heaviest flow first (ymin = 0), false the lightest, unset preserves
	// the existing order (ComputeFlows only).
	Decreasing Tristate
}

// LodeRecord positions one entity at one axis. Extents satisfy
// YMax - YMin == Weight and Y == (YMin + YMax) / 2; within a stratum the
// records partition [0, stratum weight) shifted by the stratum offset.
type LodeRecord struct {
	X       int     // 1-based axis position
	Axis    string  // axis label
	Stratum string  // category at this axis
	Entity  string  // entity identifier (canonical text)
	Group   float64 // entity identifier cast to numeric for the renderer
	Weight  float64
	YMin    float64
	YMax    float64
	Y       float64
	Aes     map[string]table.Value // aesthetic passthrough, nil when unused
}

// FlowRecord is one half of a flow ribbon: the geometry of an entity's flow
// at one end of a link between adjacent axes. The two halves of a flow share
// a Group id; every Group id appears exactly twice in the output.
type FlowRecord struct {
	Link    int    // 1-based link index: link l connects axes l and l+1
	X       int    // 1-based axis position of this half (l or l+1)
	Side    Side   // which end of the link this half describes
	Group   string // synthetic link-entity id shared by both halves
	Entity  string // entity identifier, or a synthetic id after aggregation
	Stratum string // category at this side's axis
	Weight  float64
	YMin    float64
	YMax    float64
	Y       float64
	Aes     map[string]table.Value
}
