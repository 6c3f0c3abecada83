package groundtruth

// consumedSet tracks the box ids already materialized into the output,
// enforcing at-most-once materialization across reading-order walking,
// merging, and attachment. Each build owns its own set; it is never shared
// across images.
type consumedSet map[int]struct{}

func (s consumedSet) add(id int) {
	s[id] = struct{}{}
}

func (s consumedSet) has(id int) bool {
	_, ok := s[id]
	return ok
}
