package board

import (
	"sync/atomic"
	"unsafe"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/vx-labs/boardsync/netaction"
)

// Scenes is the server side registry of loaded scenes. It synchronizes joining connections with
// one load_scene action per scene.
type Scenes struct {
	state *iradix.Tree
}

func NewScenes() *Scenes {
	return &Scenes{state: iradix.New()}
}

func (s *Scenes) load() *iradix.Tree {
	return (*iradix.Tree)(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&s.state))))
}

func (s *Scenes) cas(old, new *iradix.Tree) bool {
	oldPtr := (*unsafe.Pointer)(unsafe.Pointer(&s.state))
	return atomic.CompareAndSwapPointer(oldPtr, unsafe.Pointer(old), unsafe.Pointer(new))
}

// Load registers scene, replacing a scene with the same id.
func (s *Scenes) Load(scene *Scene) {
	stored := &Scene{ID: scene.ID, Title: scene.Title}
	for {
		old := s.load()
		new, _, _ := old.Insert([]byte(scene.ID), stored)
		if s.cas(old, new) {
			return
		}
	}
}

// Unload removes a scene. It returns false if the scene was not loaded.
func (s *Scenes) Unload(id string) bool {
	for {
		old := s.load()
		new, _, ok := old.Delete([]byte(id))
		if !ok {
			return false
		}
		if s.cas(old, new) {
			return true
		}
	}
}

func (s *Scenes) Get(id string) (*Scene, bool) {
	v, ok := s.load().Get([]byte(id))
	if !ok {
		return nil, false
	}
	return v.(*Scene), true
}

// All returns the loaded scenes ordered by id.
func (s *Scenes) All() []*Scene {
	out := []*Scene{}
	s.load().Root().Walk(func(k []byte, v interface{}) bool {
		out = append(out, v.(*Scene))
		return false
	})
	return out
}

func (s *Scenes) Synchronize() []netaction.Action {
	scenes := s.All()
	out := make([]netaction.Action, len(scenes))
	for idx := range scenes {
		out[idx] = &loadScene{payload: scenes[idx], scenes: s}
	}
	return out
}
