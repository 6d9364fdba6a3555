package scene

// Prune removes invisible nodes bottom-up and returns the surviving tree,
// or nil when n itself does not survive. Raster nodes keep no children and
// no text. The input tree is not modified; surviving nodes are shallow
// copies whose Children slices are rebuilt.
//
// Prune is idempotent: pruning an already pruned tree returns an equal tree.
func Prune(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := *n
	if out.IsRaster() {
		out.Children = nil
		out.Text = ""
	} else {
		out.Children = PruneAll(n.Children)
	}
	if !out.Visible() {
		return nil
	}
	return &out
}

// PruneAll prunes each node and keeps the survivors in order.
func PruneAll(nodes []*Node) []*Node {
	var kept []*Node
	for _, n := range nodes {
		if p := Prune(n); p != nil {
			kept = append(kept, p)
		}
	}
	return kept
}
