package common

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestObjectIDList(t *testing.T) {
	var l ObjectIDList
	l.Append(1)
	l.Append(2)
	l.Append(3)
	assert.Equal(t, 3, len(l))
	assert.Equal(t, 1, l.Find(2))
	l.Remove(2)
	assert.Equal(t, ObjectIDList{1, 3}, l)
	assert.Equal(t, -1, l.Find(2))
	l.Remove(100) // removing absent ID is a no-op
	assert.Equal(t, ObjectIDList{1, 3}, l)

	l.Append(1)
	l.Remove(1) // removes every occurrence
	assert.Equal(t, ObjectIDList{3}, l)
}

func TestObjectIDSet(t *testing.T) {
	s := ObjectIDSet{}
	s.Add(7)
	s.Add(7)
	assert.Equal(t, 1, len(s))
	assert.T(t, s.Contains(7))
	s.Remove(7)
	s.Remove(7) // tolerant of double removal
	assert.T(t, !s.Contains(7))
}

func TestClientIDSet(t *testing.T) {
	s := ClientIDSet{}
	s.Add(1)
	s.Add(2)
	assert.T(t, s.Contains(1))
	assert.T(t, !s.Contains(3))
	assert.Equal(t, 2, len(s.ToList()))
}

func TestNilSentinels(t *testing.T) {
	assert.T(t, NilObjectID.IsNil())
	assert.T(t, NilClientID.IsNil())
	assert.T(t, !ObjectID(1).IsNil())
	assert.T(t, !ClientID(1).IsNil())
}
