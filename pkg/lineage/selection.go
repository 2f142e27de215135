package lineage

// Node classes applied by the renderer.
const (
	ClassBase     = "leaf-node"
	ClassCore     = "core"
	ClassSelected = "selected-node"
)

// SelectedNode is the payload shown in the detail panel.
type SelectedNode struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"`
}

// IsZero reports whether nothing is selected.
func (s SelectedNode) IsZero() bool { return s == SelectedNode{} }

// SelectFunc is invoked on every selection transition with whether the
// detail panel is open and the node it shows.
type SelectFunc func(isOpen bool, node SelectedNode)

// Selection tracks which node of a graph is highlighted. It has two states:
// unselected and selected(node). It is independent of layout and is not
// safe for concurrent use.
type Selection struct {
	graph    Graph
	selected SelectedNode
	open     bool
	onSelect SelectFunc
}

// NewSelection starts unselected on g. onSelect may be nil.
func NewSelection(g Graph, onSelect SelectFunc) *Selection {
	return &Selection{graph: g, onSelect: onSelect}
}

// Select highlights the node with the given instance ID, replacing any
// previous selection.
func (s *Selection) Select(nodeID string) (SelectedNode, error) {
	n, ok := s.graph.Node(nodeID)
	if !ok {
		return SelectedNode{}, ErrUnknownNode
	}
	s.selected = n.Selected()
	s.open = true
	s.notify()
	return s.selected, nil
}

// Close clears the selection; the previously selected node reverts to its
// base class.
func (s *Selection) Close() {
	if !s.open {
		return
	}
	s.open = false
	s.notify()
	s.selected = SelectedNode{}
}

// Reset replaces the graph and returns to unselected.
func (s *Selection) Reset(g Graph) {
	s.graph = g
	wasOpen := s.open
	s.open = false
	s.selected = SelectedNode{}
	if wasOpen {
		s.notify()
	}
}

// Current returns the selected node, if any.
func (s *Selection) Current() (SelectedNode, bool) {
	return s.selected, s.open
}

// IsOpen reports whether a node is selected.
func (s *Selection) IsOpen() bool { return s.open }

// IsMainNode reports whether the selection is the focal entity.
func (s *Selection) IsMainNode() bool {
	if !s.open {
		return false
	}
	return s.selected.ID == s.graph.Focal().ID
}

// Graph returns the graph the selection applies to.
func (s *Selection) Graph() Graph { return s.graph }

// Class returns the renderer class for a node instance.
func (s *Selection) Class(nodeID string) string {
	class := ClassBase
	if n, ok := s.graph.Node(nodeID); ok && n.Core {
		class += " " + ClassCore
	}
	if s.open && s.selected.ID == nodeID {
		class += " " + ClassSelected
	}
	return class
}

func (s *Selection) notify() {
	if s.onSelect != nil {
		s.onSelect(s.open, s.selected)
	}
}
