package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// topoOrder returns a topological order of the node IDs using Kahn's
// algorithm, with queues kept sorted so the order is deterministic.
// If the edge set contains a cycle, the nodes still carrying in-degree are
// reported in the error.
func (w *Workflow) topoOrder() ([]string, error) {
	inDegree := make(map[string]int, len(w.nodes))
	for id := range w.nodes {
		inDegree[id] = 0
	}
	for _, cs := range w.children {
		for _, c := range cs {
			inDegree[c]++
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		successors := append([]string(nil), w.children[n]...)
		sort.Strings(successors)
		for _, succ := range successors {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
		sort.Strings(queue)
	}

	if len(order) != len(w.nodes) {
		var cycleNodes []string
		for id, deg := range inDegree {
			if deg > 0 {
				cycleNodes = append(cycleNodes, id)
			}
		}
		sort.Strings(cycleNodes)
		return nil, fmt.Errorf("workflow contains a cycle involving nodes: %s",
			strings.Join(cycleNodes, ", "))
	}

	return order, nil
}
