package domain

// Snapshot is an immutable point-in-time copy of catalog and alert state.
// Readers receive snapshots only; they never hold references into live
// mutable structures.
type Snapshot struct {
	Objects []SpaceObject `json:"objects"`
	Alerts  []Alert       `json:"alerts"`
}

// Object returns the snapshot entry with the given id, or ErrNotFound.
func (s Snapshot) Object(id string) (SpaceObject, error) {
	for _, o := range s.Objects {
		if o.ID == id {
			return o, nil
		}
	}
	return SpaceObject{}, ErrNotFound
}
