package domain

// Analysis is the result of cycle and reachability analysis over a ModuleGraph.
type Analysis struct {
	// Reachable holds the reachable module set per entry name.
	Reachable map[string]map[ModuleID]bool
	// EntrySets holds, per reachable module, the sorted names of the entries reaching it.
	EntrySets map[ModuleID][]string
	// Components holds every strongly-connected component, members ordered by discovery.
	Components [][]ModuleID
	// ComponentOf maps a module to its index in Components.
	ComponentOf map[ModuleID]int
	// Cycles holds the indexes of the components that form a cycle.
	Cycles []int
	// Discovery is the deterministic first-discovery index of each reachable module.
	Discovery map[ModuleID]int
	// Unreachable holds modules no entry reaches, sorted by identity.
	Unreachable []ModuleID

	parent map[ModuleID]ModuleID
	origin map[ModuleID]string
}

// NewAnalysis creates an empty Analysis.
func NewAnalysis() *Analysis {
	return &Analysis{
		Reachable:   make(map[string]map[ModuleID]bool),
		EntrySets:   make(map[ModuleID][]string),
		ComponentOf: make(map[ModuleID]int),
		Discovery:   make(map[ModuleID]int),
		parent:      make(map[ModuleID]ModuleID),
		origin:      make(map[ModuleID]string),
	}
}

// RecordDiscovery registers id as discovered from parent (zero for entry roots)
// on behalf of the named entry. Only the first discovery of a module counts.
func (a *Analysis) RecordDiscovery(id, parent ModuleID, entry string) bool {
	if _, seen := a.Discovery[id]; seen {
		return false
	}
	a.Discovery[id] = len(a.Discovery)
	a.origin[id] = entry
	if !parent.IsZero() {
		a.parent[id] = parent
	}
	return true
}

// IsReachable reports whether any entry reaches id.
func (a *Analysis) IsReachable(id ModuleID) bool {
	_, ok := a.Discovery[id]
	return ok
}

// Primary returns the first-discovered member of the component containing id.
func (a *Analysis) Primary(id ModuleID) ModuleID {
	idx, ok := a.ComponentOf[id]
	if !ok {
		return id
	}
	return a.Components[idx][0]
}

// InCycle reports whether id belongs to a cyclic component.
func (a *Analysis) InCycle(id ModuleID) bool {
	idx, ok := a.ComponentOf[id]
	if !ok {
		return false
	}
	for _, c := range a.Cycles {
		if c == idx {
			return true
		}
	}
	return false
}

// PathTo returns an entry name and the shortest module chain from that
// entry's root to id. It returns false if id is unreachable.
func (a *Analysis) PathTo(id ModuleID) (string, []ModuleID, bool) {
	entry, ok := a.origin[id]
	if !ok {
		return "", nil, false
	}

	path := []ModuleID{id}
	for cur := id; ; {
		p, ok := a.parent[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return entry, path, true
}
