package ecs

import "strconv"

// Entity is a generational handle. A handle whose generation no longer
// matches its slot refers to a removed entity.
type Entity struct {
	ID  int
	Gen int
}

func (e Entity) Valid() bool {
	return e.ID > 0
}

// Key packs the handle into a single int that stays unique across slot
// reuse.
func (e Entity) Key() int {
	return e.Gen<<32 | e.ID
}

func (e Entity) String() string {
	return strconv.Itoa(e.ID) + "v" + strconv.Itoa(e.Gen)
}
