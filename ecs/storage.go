package ecs

// entityStore tracks entity generations and free ids.
type entityStore struct {
	gen  []int
	free []int
}

func (s *entityStore) create() Entity {
	if s == nil {
		return Entity{}
	}
	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		return Entity{ID: id, Gen: s.gen[id-1]}
	}
	s.gen = append(s.gen, 0)
	return Entity{ID: len(s.gen), Gen: 0}
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	s.gen[e.ID-1]++
	s.free = append(s.free, e.ID)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil || e.ID <= 0 || e.ID > len(s.gen) {
		return false
	}
	return s.gen[e.ID-1] == e.Gen
}

func (s *entityStore) alive() int {
	if s == nil {
		return 0
	}
	return len(s.gen) - len(s.free)
}
