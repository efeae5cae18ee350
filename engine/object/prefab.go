package object

import (
	"github.com/netsync/netsync/engine/common"
	"github.com/netsync/netsync/engine/nslog"
	"github.com/pkg/errors"
)

// PrefabFactory instantiates a fresh NetworkObject for a prefab
type PrefabFactory func() *NetworkObject

// SpawnHandler overrides instantiation for incoming spawn messages of a prefab
type SpawnHandler func(prefabHash common.PrefabHash, position common.Vector3, rotationEuler common.Vector3) *NetworkObject

// DestroyHandler overrides disposal of despawned objects of a prefab
type DestroyHandler func(obj *NetworkObject)

// PrefabRegistry maps prefab hashes to factories and handler overrides
type PrefabRegistry struct {
	factories       map[common.PrefabHash]PrefabFactory
	spawnHandlers   map[common.PrefabHash]SpawnHandler
	destroyHandlers map[common.PrefabHash]DestroyHandler
}

// NewPrefabRegistry creates an empty PrefabRegistry
func NewPrefabRegistry() *PrefabRegistry {
	return &PrefabRegistry{
		factories:       map[common.PrefabHash]PrefabFactory{},
		spawnHandlers:   map[common.PrefabHash]SpawnHandler{},
		destroyHandlers: map[common.PrefabHash]DestroyHandler{},
	}
}

// Register registers the factory for a prefab hash
func (pr *PrefabRegistry) Register(hash common.PrefabHash, factory PrefabFactory) {
	if _, ok := pr.factories[hash]; ok {
		nslog.Warnf("PrefabRegistry: prefab %d factory registered twice, overwriting", uint32(hash))
	}
	pr.factories[hash] = factory
}

// Resolve returns the factory registered for a prefab hash
func (pr *PrefabRegistry) Resolve(hash common.PrefabHash) (PrefabFactory, error) {
	factory, ok := pr.factories[hash]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPrefab, "prefab %d", uint32(hash))
	}
	return factory, nil
}

// RegisterSpawnHandler registers a spawn handler override for a prefab hash
func (pr *PrefabRegistry) RegisterSpawnHandler(hash common.PrefabHash, handler SpawnHandler) {
	pr.spawnHandlers[hash] = handler
}

// SpawnHandler returns the spawn handler override for a prefab hash
func (pr *PrefabRegistry) SpawnHandler(hash common.PrefabHash) (SpawnHandler, bool) {
	h, ok := pr.spawnHandlers[hash]
	return h, ok
}

// RegisterDestroyHandler registers a destroy handler override for a prefab hash
func (pr *PrefabRegistry) RegisterDestroyHandler(hash common.PrefabHash, handler DestroyHandler) {
	pr.destroyHandlers[hash] = handler
}

// DestroyHandler returns the destroy handler override for a prefab hash
func (pr *PrefabRegistry) DestroyHandler(hash common.PrefabHash) (DestroyHandler, bool) {
	h, ok := pr.destroyHandlers[hash]
	return h, ok
}
