package board

import (
	proto "github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/world"
)

const (
	KindCreateBoard  = "create_board"
	KindMoveBoard    = "move_board"
	KindRenameBoard  = "rename_board"
	KindDeleteBoard  = "delete_board"
	KindAddWidget    = "add_widget"
	KindRemoveWidget = "remove_widget"
	KindLoadScene    = "load_scene"
	KindUnloadScene  = "unload_scene"
)

// Register adds the board actions to registry. w receives their effects in the client role,
// scenes tracks loaded scenes in the server role.
func Register(registry *netaction.Registry, w *world.World, scenes *Scenes) error {
	factories := map[string]netaction.Factory{
		KindCreateBoard: func() netaction.Action {
			return &createBoard{payload: &Board{}, world: w}
		},
		KindMoveBoard: func() netaction.Action {
			return &moveBoard{payload: &Move{}, world: w}
		},
		KindRenameBoard: func() netaction.Action {
			return &renameBoard{payload: &Rename{}, world: w}
		},
		KindDeleteBoard: func() netaction.Action {
			return &deleteBoard{payload: &Remove{}, world: w}
		},
		KindAddWidget: func() netaction.Action {
			return &addWidget{payload: &Widget{}, world: w}
		},
		KindRemoveWidget: func() netaction.Action {
			return &removeWidget{payload: &Remove{}, world: w}
		},
		KindLoadScene: func() netaction.Action {
			return &loadScene{payload: &Scene{}, world: w, scenes: scenes}
		},
		KindUnloadScene: func() netaction.Action {
			return &unloadScene{payload: &Remove{}, world: w, scenes: scenes}
		},
	}
	for kind, factory := range factories {
		if err := registry.Register(kind, factory); err != nil {
			return err
		}
	}
	return nil
}

type createBoard struct {
	netaction.Base
	payload *Board
	world   *world.World
}

func (a *createBoard) Kind() string           { return KindCreateBoard }
func (a *createBoard) Payload() proto.Message { return a.payload }
func (a *createBoard) Record() netaction.Record {
	return netaction.Record{Entity: a.payload.ID, Parent: a.payload.Parent}
}
func (a *createBoard) ExecuteOnClient(netaction.Context) error {
	return a.world.Create(a.payload.entity())
}

type moveBoard struct {
	netaction.Base
	payload *Move
	world   *world.World
}

func (a *moveBoard) Kind() string           { return KindMoveBoard }
func (a *moveBoard) Payload() proto.Message { return a.payload }

// Record keeps the last move of each board only.
func (a *moveBoard) Record() netaction.Record {
	return netaction.Record{Entity: a.payload.ID, Slot: a.payload.ID + "#position"}
}
func (a *moveBoard) ExecuteOnClient(netaction.Context) error {
	return a.world.Update(a.payload.ID, func(e world.Entity) world.Entity {
		e.Position = a.payload.position()
		return e
	})
}

type renameBoard struct {
	netaction.Base
	payload *Rename
	world   *world.World
}

func (a *renameBoard) Kind() string           { return KindRenameBoard }
func (a *renameBoard) Payload() proto.Message { return a.payload }
func (a *renameBoard) Record() netaction.Record {
	return netaction.Record{Entity: a.payload.ID, Slot: a.payload.ID + "#title"}
}
func (a *renameBoard) ExecuteOnClient(netaction.Context) error {
	return a.world.Update(a.payload.ID, func(e world.Entity) world.Entity {
		e.Title = a.payload.Title
		return e
	})
}

type deleteBoard struct {
	netaction.Base
	payload *Remove
	world   *world.World
}

func (a *deleteBoard) Kind() string           { return KindDeleteBoard }
func (a *deleteBoard) Payload() proto.Message { return a.payload }
func (a *deleteBoard) Destroys() string       { return a.payload.ID }
func (a *deleteBoard) ExecuteOnClient(netaction.Context) error {
	return a.world.Destroy(a.payload.ID)
}

type addWidget struct {
	netaction.Base
	payload *Widget
	world   *world.World
}

func (a *addWidget) Kind() string           { return KindAddWidget }
func (a *addWidget) Payload() proto.Message { return a.payload }
func (a *addWidget) Record() netaction.Record {
	return netaction.Record{Entity: a.payload.ID, Parent: a.payload.Board}
}
func (a *addWidget) ExecuteOnClient(netaction.Context) error {
	if !a.world.Exists(a.payload.Board) {
		return errors.Wrapf(world.ErrEntityNotFound, "board %q", a.payload.Board)
	}
	return a.world.Create(a.payload.entity())
}

type removeWidget struct {
	netaction.Base
	payload *Remove
	world   *world.World
}

func (a *removeWidget) Kind() string           { return KindRemoveWidget }
func (a *removeWidget) Payload() proto.Message { return a.payload }
func (a *removeWidget) Destroys() string       { return a.payload.ID }
func (a *removeWidget) ExecuteOnClient(netaction.Context) error {
	return a.world.Destroy(a.payload.ID)
}

// loadScene is not journaled: loaded scenes are sent to joining connections by Scenes.
type loadScene struct {
	payload *Scene
	world   *world.World
	scenes  *Scenes
}

func (a *loadScene) Kind() string           { return KindLoadScene }
func (a *loadScene) Payload() proto.Message { return a.payload }
func (a *loadScene) ExecuteOnServer(netaction.Context) error {
	a.scenes.Load(a.payload)
	return nil
}
func (a *loadScene) ExecuteOnClient(netaction.Context) error {
	if a.world.Exists(a.payload.ID) {
		return a.world.Update(a.payload.ID, func(e world.Entity) world.Entity {
			e.Title = a.payload.Title
			return e
		})
	}
	return a.world.Create(world.Entity{ID: a.payload.ID, Kind: world.KindScene, Title: a.payload.Title})
}

// unloadScene destroys a scene and the boards placed in it.
type unloadScene struct {
	payload *Remove
	world   *world.World
	scenes  *Scenes
}

func (a *unloadScene) Kind() string           { return KindUnloadScene }
func (a *unloadScene) Payload() proto.Message { return a.payload }
func (a *unloadScene) Destroys() string       { return a.payload.ID }
func (a *unloadScene) ExecuteOnServer(netaction.Context) error {
	if !a.scenes.Unload(a.payload.ID) {
		return errors.Wrapf(world.ErrEntityNotFound, "scene %q", a.payload.ID)
	}
	return nil
}
func (a *unloadScene) ExecuteOnClient(netaction.Context) error {
	return a.world.Destroy(a.payload.ID)
}
