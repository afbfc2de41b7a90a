// Package cgraph implements the Connection Graph (spec component D), the
// central data structure of a Genetic Code: up to thirteen named rows of
// endpoints connected according to the graph's type, turned from an
// embryonic (partially connected) graph into a stable one by Stabilize.
package cgraph

import "github.com/erasmus-gp/egpcore/iface"

// Row identifies one of the thirteen named rows a CGraph may hold.
type Row string

// The named rows (spec §3.4).
const (
	RowIs Row = "Is" // graph inputs (source)
	RowOd Row = "Od" // graph outputs (destination)
	RowAd Row = "Ad" // sub-graph A inputs (destination)
	RowBd Row = "Bd" // sub-graph B inputs (destination)
	RowAs Row = "As" // sub-graph A outputs (source)
	RowBs Row = "Bs" // sub-graph B outputs (source)
	RowFd Row = "Fd" // conditional selector (destination, single bit)
	RowLs Row = "Ls" // loop feedback (source)
	RowLd Row = "Ld" // loop feedback (destination)
	RowWd Row = "Wd" // loop condition (destination)
	RowPd Row = "Pd" // else-branch inputs (destination)
	RowPs Row = "Ps" // else-branch outputs (source)
	RowUd Row = "Ud" // bit-bucket for unconnected sources (destination)
)

// Class reports whether a row holds a source or destination interface.
func (r Row) Class() iface.Class {
	switch r {
	case RowIs, RowAs, RowBs, RowLs, RowPs:
		return iface.Src
	default:
		return iface.Dst
	}
}

// allRows is the fixed enumeration order used wherever rows must be
// visited deterministically (row validation, JSON encoding).
var allRows = []Row{RowIs, RowOd, RowAd, RowBd, RowAs, RowBs, RowFd, RowLs, RowLd, RowWd, RowPd, RowPs, RowUd}
