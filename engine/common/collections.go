package common

// ObjectIDSet is a set of object IDs
type ObjectIDSet map[ObjectID]struct{}

// Contains checks if ObjectIDSet contains the object ID
func (s ObjectIDSet) Contains(id ObjectID) bool {
	_, ok := s[id]
	return ok
}

// Add adds the object ID to ObjectIDSet
func (s ObjectIDSet) Add(id ObjectID) {
	s[id] = struct{}{}
}

// Remove removes the object ID from ObjectIDSet
func (s ObjectIDSet) Remove(id ObjectID) {
	delete(s, id)
}

// ToList converts ObjectIDSet to ObjectID slice
func (s ObjectIDSet) ToList() []ObjectID {
	keys := make([]ObjectID, 0, len(s))
	for id := range s {
		keys = append(keys, id)
	}
	return keys
}

// ClientIDSet is a set of client IDs
type ClientIDSet map[ClientID]struct{}

// Contains checks if ClientIDSet contains the client ID
func (s ClientIDSet) Contains(id ClientID) bool {
	_, ok := s[id]
	return ok
}

// Add adds the client ID to ClientIDSet
func (s ClientIDSet) Add(id ClientID) {
	s[id] = struct{}{}
}

// Remove removes the client ID from ClientIDSet
func (s ClientIDSet) Remove(id ClientID) {
	delete(s, id)
}

// ToList converts ClientIDSet to ClientID slice
func (s ClientIDSet) ToList() []ClientID {
	keys := make([]ClientID, 0, len(s))
	for id := range s {
		keys = append(keys, id)
	}
	return keys
}

// ObjectIDList is a list of object IDs (slice)
type ObjectIDList []ObjectID

// Append adds the object ID to the end of ObjectIDList
func (l *ObjectIDList) Append(id ObjectID) {
	*l = append(*l, id)
}

// Remove removes the object ID from ObjectIDList
func (l *ObjectIDList) Remove(id ObjectID) {
	widx := 0
	cpl := *l
	for idx, _id := range cpl {
		if _id == id {
			// ignore this elem by doing nothing
		} else {
			if idx != widx {
				cpl[widx] = _id
			}
			widx += 1
		}
	}

	*l = cpl[:widx]
}

// Find gets the index of object ID in ObjectIDList, returns -1 if not found
func (l *ObjectIDList) Find(id ObjectID) int {
	for idx, _id := range *l {
		if _id == id {
			return idx
		}
	}
	return -1
}
