package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/strataviz/alluvial/pkg/alluvial"
	"github.com/strataviz/alluvial/pkg/table"
)

// flowItem is one flow through a link before geometry: the categories and
// lode weights at both ends plus bound aesthetics.
type flowItem struct {
	entity    string
	catStart  table.Value
	catEnd    table.Value
	wStart    float64
	wEnd      float64
	aes       []table.Value
	inputRank int
}

// ComputeFlows builds the ribbon geometry connecting each entity's lodes at
// adjacent axes. For every link it emits two half-records per flow (one per
// side) sharing a synthetic group id; every group id appears exactly twice
// in the output, which is the renderer's pairing contract.
//
// With opts.AggregateWeights, flows of a link identical across all
// non-weight columns (both categories and bound aesthetics) are merged
// first, weights summed, reducing clutter from many entities sharing an
// exact path. opts.Decreasing then orders flows within the link by weight:
// true stacks the heaviest at the bottom (YMin = 0), false the lightest,
// unset preserves the existing order. Each side of a link is stacked
// independently, grouped by that side's strata first.
func ComputeFlows(ds *alluvial.Dataset, opts Options) ([]FlowRecord, error) {
	f, err := buildFrame(ds, opts)
	if err != nil {
		return nil, err
	}

	ranks := make([]map[string]int, len(f.axes))
	lodeAt := make([]map[int]lode, len(f.axes))
	for a := range f.axes {
		ranks[a] = stratumRanks(f, a, opts.StratumOrder)
		lodeAt[a] = make(map[int]lode, len(f.byAxis[a]))
		for _, l := range f.byAxis[a] {
			lodeAt[a][l.entity] = l
		}
	}

	var out []FlowRecord
	for a := 0; a+1 < len(f.axes); a++ {
		flows := collectFlows(f, lodeAt, a)
		if opts.AggregateWeights {
			flows = aggregateFlows(flows)
		}

		link := a + 1
		out = append(out, linkRecords(f, flows, link, a, SideStart, ranks[a], opts)...)
		out = append(out, linkRecords(f, flows, link, a+1, SideEnd, ranks[a+1], opts)...)
	}
	return out, nil
}

// collectFlows pairs each entity's lode at axis a with its lode at axis a+1.
// Entities missing either side (possible under NADrop) produce no flow.
// Collection order follows the input order of the start-axis lodes.
func collectFlows(f *frame, lodeAt []map[int]lode, a int) []flowItem {
	var flows []flowItem
	for _, start := range f.byAxis[a] {
		end, ok := lodeAt[a+1][start.entity]
		if !ok {
			continue
		}
		flows = append(flows, flowItem{
			entity:    f.entities[start.entity],
			catStart:  start.stratum,
			catEnd:    end.stratum,
			wStart:    start.weight,
			wEnd:      end.weight,
			aes:       start.aes,
			inputRank: len(flows),
		})
	}
	return flows
}

// aggregateFlows merges flows identical across both categories and all
// aesthetic values, summing weights per side. The merged flow keeps the
// first member's entity id and position, so the result is deterministic.
func aggregateFlows(flows []flowItem) []flowItem {
	var merged []flowItem
	index := make(map[string]int)

	for _, fl := range flows {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\x1f%s", fl.catStart.Text(), fl.catEnd.Text())
		for _, v := range fl.aes {
			fmt.Fprintf(&b, "\x1f%s", v.Text())
		}
		key := b.String()

		if i, seen := index[key]; seen {
			merged[i].wStart += fl.wStart
			merged[i].wEnd += fl.wEnd
			continue
		}
		index[key] = len(merged)
		fl.inputRank = len(merged)
		merged = append(merged, fl)
	}
	return merged
}

// linkRecords stacks one side of a link and emits its half-records. The
// sort groups flows by the side's strata first; the Decreasing rule is only
// a tie-break within a stratum, never a value change.
func linkRecords(f *frame, flows []flowItem, link, axis int, side Side, ranks map[string]int, opts Options) []FlowRecord {
	ordered := make([]flowItem, len(flows))
	copy(ordered, flows)

	category := func(fl flowItem) table.Value { return fl.catStart }
	weight := func(fl flowItem) float64 { return fl.wStart }
	if side == SideEnd {
		category = func(fl flowItem) table.Value { return fl.catEnd }
		weight = func(fl flowItem) float64 { return fl.wEnd }
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		ra, rb := ranks[category(a).Text()], ranks[category(b).Text()]
		if ra != rb {
			return ra < rb
		}
		switch opts.Decreasing {
		case TristateTrue:
			if weight(a) != weight(b) {
				return weight(a) > weight(b)
			}
		case TristateFalse:
			if weight(a) != weight(b) {
				return weight(a) < weight(b)
			}
		}
		return a.inputRank < b.inputRank
	})

	out := make([]FlowRecord, 0, len(ordered))
	y := 0.0
	for _, fl := range ordered {
		w := weight(fl)
		out = append(out, FlowRecord{
			Link:    link,
			X:       axis + 1,
			Side:    side,
			Group:   fmt.Sprintf("%d:%s", link, fl.entity),
			Entity:  fl.entity,
			Stratum: category(fl).Text(),
			Weight:  w,
			YMin:    y,
			YMax:    y + w,
			Y:       y + w/2,
			Aes:     f.aesMap(fl.aes),
		})
		y += w
	}
	return out
}
