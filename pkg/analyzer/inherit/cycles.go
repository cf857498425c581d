package inherit

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/vmsweep/pkg/models"
)

// Cycles returns the groups of ViewModels whose extends clauses form a loop.
// Such source does not compile, but the propagator must still terminate on
// it; the analyzer reports the groups so the operator knows results for
// those classes are unreliable. Each group is sorted, and groups are ordered
// by their first member.
func Cycles(reg *models.Registry) [][]string {
	all := reg.All()
	ids := make(map[string]int64, len(all))
	g := simple.NewDirectedGraph()
	for i, vm := range all {
		ids[vm.FQN] = int64(i)
		g.AddNode(simple.Node(i))
	}

	var selfLoops [][]string
	for _, vm := range all {
		pid, ok := ids[vm.Parent]
		if !ok {
			continue
		}
		if pid == ids[vm.FQN] {
			// simple graphs reject self edges.
			selfLoops = append(selfLoops, []string{vm.FQN})
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(ids[vm.FQN]), T: simple.Node(pid)})
	}

	out := selfLoops
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		group := make([]string, len(scc))
		for i, n := range scc {
			group[i] = all[n.ID()].FQN
		}
		sort.Strings(group)
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
