package object

import "github.com/pkg/errors"

var (
	// ErrNotServer is returned when a server-only operation is attempted on a client registry
	ErrNotServer = errors.New("operation requires server authority")
	// ErrNotSpawned is returned when an operation requires a spawned object
	ErrNotSpawned = errors.New("object is not spawned")
	// ErrAlreadySpawned is returned when spawning an object instance twice
	ErrAlreadySpawned = errors.New("object is already spawned")
	// ErrUnknownPrefab is returned when no factory is registered for a prefab hash
	ErrUnknownPrefab = errors.New("prefab hash is not registered")
)
