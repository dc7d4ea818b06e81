package board

import (
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/world"
)

// Executor replicates actions. *session.Session implements it.
type Executor interface {
	LocalID() string
	Execute(action netaction.Action) error
}

// Editor applies board edits to the local world, then replicates them.
type Editor struct {
	world    *world.World
	scenes   *Scenes
	executor Executor
}

func NewEditor(w *world.World, scenes *Scenes, executor Executor) *Editor {
	return &Editor{world: w, scenes: scenes, executor: executor}
}

func (e *Editor) World() *world.World {
	return e.world
}

// apply runs the client hook of action on behalf of the local participant, who never receives
// its own actions back, then replicates it.
func (e *Editor) apply(action netaction.Action) error {
	local := e.executor.LocalID()
	if err := action.ExecuteOnClient(netaction.NewContext(netaction.RoleClient, local, local)); err != nil {
		return err
	}
	return e.executor.Execute(action)
}

// preview moves a board on the local world only.
func (e *Editor) preview(id string, p world.Position) error {
	return e.world.Update(id, func(entity world.Entity) world.Entity {
		entity.Position = p
		return entity
	})
}

func (e *Editor) createBoard(b *Board) netaction.Action {
	return &createBoard{payload: b, world: e.world}
}

func (e *Editor) moveBoard(id string, p world.Position) netaction.Action {
	return &moveBoard{payload: &Move{ID: id, X: p.X, Y: p.Y, Z: p.Z}, world: e.world}
}

func (e *Editor) renameBoard(id, title string) netaction.Action {
	return &renameBoard{payload: &Rename{ID: id, Title: title}, world: e.world}
}

func (e *Editor) deleteBoard(id string) netaction.Action {
	return &deleteBoard{payload: &Remove{ID: id}, world: e.world}
}

func (e *Editor) addWidget(w *Widget) netaction.Action {
	return &addWidget{payload: w, world: e.world}
}

func (e *Editor) removeWidget(id string) netaction.Action {
	return &removeWidget{payload: &Remove{ID: id}, world: e.world}
}

// LoadScene loads a scene, or renames it when it is already loaded.
func (e *Editor) LoadScene(id, title string) error {
	return e.apply(&loadScene{payload: &Scene{ID: id, Title: title}, world: e.world, scenes: e.scenes})
}

// UnloadScene destroys a scene and everything placed in it.
func (e *Editor) UnloadScene(id string) error {
	return e.apply(&unloadScene{payload: &Remove{ID: id}, world: e.world, scenes: e.scenes})
}
