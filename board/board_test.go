package board

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vx-labs/boardsync/history"
	"github.com/vx-labs/boardsync/journal"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/world"
)

var (
	_ history.Reversible = &CreateBoard{}
	_ history.Reversible = &MoveBoard{}
	_ history.Reversible = &RenameBoard{}
	_ history.Reversible = &DeleteBoard{}
	_ history.Reversible = &AddWidget{}
	_ history.Reversible = &RemoveWidget{}
)

// recorder journals executed actions the way the server role does.
type recorder struct {
	journal *journal.Journal
	actions []string
}

func (r *recorder) LocalID() string { return "me" }
func (r *recorder) Execute(action netaction.Action) error {
	env, err := netaction.Encode(action, "me")
	if err != nil {
		return err
	}
	if d, ok := action.(netaction.Destroying); ok {
		if _, err := r.journal.Forget(d.Destroys()); err != nil {
			return err
		}
	}
	if rec, ok := action.(netaction.Recorded); ok {
		if _, err := r.journal.Append("me", rec.Record(), env); err != nil {
			return err
		}
	}
	r.actions = append(r.actions, action.Kind())
	return nil
}

func setup() (*Editor, *recorder, *history.Runner) {
	rec := &recorder{journal: journal.New()}
	e := NewEditor(world.New(), NewScenes(), rec)
	return e, rec, history.NewRunner(history.New(0), nil)
}

func run(t *testing.T, r *history.Runner, command history.Reversible) {
	r.Run(command)
	require.True(t, r.Tick())
}

func position(t *testing.T, w *world.World, id string) world.Position {
	e, err := w.Find(id)
	require.NoError(t, err)
	return e.Position
}

func TestCommands(t *testing.T) {
	t.Run("create undo redo", func(t *testing.T) {
		e, rec, r := setup()
		run(t, r, e.CreateBoard("b1", "", "Roadmap", world.Position{X: 1}))
		board, err := e.World().Find("b1")
		require.NoError(t, err)
		require.Equal(t, "Roadmap", board.Title)
		require.Equal(t, world.KindBoard, board.Kind)
		require.NoError(t, r.Undo())
		require.False(t, e.World().Exists("b1"))
		require.NoError(t, r.Redo())
		require.True(t, e.World().Exists("b1"))
		require.Equal(t, []string{KindCreateBoard, KindDeleteBoard, KindCreateBoard}, rec.actions)
	})
	t.Run("drag preview is local until dropped", func(t *testing.T) {
		e, rec, r := setup()
		run(t, r, e.CreateBoard("b1", "", "", world.Position{}))
		move := e.MoveBoard("b1")
		r.Run(move)
		move.Drag(world.Position{X: 5})
		move.Drag(world.Position{X: 6})
		require.Equal(t, world.Position{X: 6}, position(t, e.World(), "b1"))
		require.False(t, r.Tick())
		require.Equal(t, 1, len(rec.actions))
		move.Drop()
		require.True(t, r.Tick())
		require.Equal(t, []string{KindCreateBoard, KindMoveBoard}, rec.actions)
		require.NoError(t, r.Undo())
		require.Equal(t, world.Position{}, position(t, e.World(), "b1"))
		require.NoError(t, r.Redo())
		require.Equal(t, world.Position{X: 6}, position(t, e.World(), "b1"))
	})
	t.Run("stopping a drag restores the board", func(t *testing.T) {
		e, rec, r := setup()
		run(t, r, e.CreateBoard("b1", "", "", world.Position{Y: 2}))
		move := e.MoveBoard("b1")
		r.Run(move)
		move.Drag(world.Position{X: 5})
		r.Stop()
		require.Equal(t, history.NotStarted, move.State())
		require.Equal(t, world.Position{Y: 2}, position(t, e.World(), "b1"))
		require.Equal(t, 1, len(rec.actions))
		undo, _ := r.History().Depth()
		require.Equal(t, 1, undo)
	})
	t.Run("commands on missing entities do not start", func(t *testing.T) {
		e, _, r := setup()
		rename := e.RenameBoard("nope", "x")
		r.Run(rename)
		require.False(t, r.Tick())
		require.Nil(t, r.Active())
		require.True(t, world.IsNotFound(rename.Err()))
		require.False(t, r.History().CanUndo())
	})
	t.Run("widgets need their board", func(t *testing.T) {
		e, rec, r := setup()
		add := e.AddWidget("w1", "nope", "", world.Position{})
		r.Run(add)
		require.False(t, r.Tick())
		require.Equal(t, netaction.ErrEntityNotFound, errors.Cause(add.Err()))
		require.Empty(t, rec.actions)
	})
	t.Run("undo of a vanished target is dropped", func(t *testing.T) {
		e, _, r := setup()
		run(t, r, e.CreateBoard("b1", "", "", world.Position{}))
		run(t, r, e.RenameBoard("b1", "renamed"))
		require.NoError(t, e.World().Destroy("b1"))
		require.True(t, world.IsNotFound(r.Undo()))
		require.False(t, r.History().CanRedo())
		undo, _ := r.History().Depth()
		require.Equal(t, 1, undo)
	})
	t.Run("deleting a board restores its widgets on undo", func(t *testing.T) {
		e, _, r := setup()
		run(t, r, e.CreateBoard("b1", "", "Roadmap", world.Position{X: 3}))
		run(t, r, e.AddWidget("w1", "b1", "note", world.Position{Y: 1}))
		run(t, r, e.AddWidget("w2", "b1", "chart", world.Position{Y: 2}))
		run(t, r, e.DeleteBoard("b1"))
		require.Empty(t, e.World().All())
		require.NoError(t, r.Undo())
		board, err := e.World().Find("b1")
		require.NoError(t, err)
		require.Equal(t, "Roadmap", board.Title)
		require.Equal(t, world.Position{X: 3}, board.Position)
		widgets := e.World().ByParent("b1")
		require.Equal(t, 2, len(widgets))
		require.Equal(t, "note", widgets[0].Title)
		require.Equal(t, "chart", widgets[1].Title)
	})
	t.Run("deleting a board restores nested boards on undo", func(t *testing.T) {
		e, rec, r := setup()
		run(t, r, e.CreateBoard("parent", "", "Parent", world.Position{}))
		run(t, r, e.CreateBoard("child", "parent", "Child", world.Position{X: 1}))
		run(t, r, e.CreateBoard("grandchild", "child", "Grandchild", world.Position{X: 2}))
		run(t, r, e.AddWidget("w1", "grandchild", "note", world.Position{}))
		before := e.World().All()
		run(t, r, e.DeleteBoard("parent"))
		require.Empty(t, e.World().All())
		require.Equal(t, 0, rec.journal.Len())
		require.NoError(t, r.Undo())
		require.Equal(t, before, e.World().All())
		require.Equal(t, 4, rec.journal.Len())
		require.NoError(t, r.Redo())
		require.Empty(t, e.World().All())
	})
	t.Run("remove widget", func(t *testing.T) {
		e, _, r := setup()
		run(t, r, e.CreateBoard("b1", "", "", world.Position{}))
		run(t, r, e.AddWidget("w1", "b1", "note", world.Position{}))
		run(t, r, e.RemoveWidget("w1"))
		require.False(t, e.World().Exists("w1"))
		require.NoError(t, r.Undo())
		widget, err := e.World().Find("w1")
		require.NoError(t, err)
		require.Equal(t, "b1", widget.Parent)
	})
}

func TestJournalReplay(t *testing.T) {
	e, rec, r := setup()
	run(t, r, e.CreateBoard("b1", "", "first", world.Position{}))
	run(t, r, e.CreateBoard("b2", "", "second", world.Position{}))
	for x := 1; x <= 3; x++ {
		run(t, r, e.MoveBoardTo("b1", world.Position{X: float64(x)}))
	}
	run(t, r, e.RenameBoard("b1", "renamed"))
	run(t, r, e.AddWidget("w1", "b1", "note", world.Position{}))
	run(t, r, e.AddWidget("w2", "b2", "note", world.Position{}))
	run(t, r, e.DeleteBoard("b2"))
	require.Equal(t, 4, rec.journal.Len())

	registry := netaction.NewRegistry()
	replica := world.New()
	require.NoError(t, Register(registry, replica, NewScenes()))
	for _, entry := range rec.journal.All() {
		action, err := registry.Decode(entry.Envelope)
		require.NoError(t, err)
		require.NoError(t, action.ExecuteOnClient(netaction.NewContext(netaction.RoleClient, "joiner", entry.Owner)))
	}
	require.Equal(t, e.World().All(), replica.All())
}

func TestScenes(t *testing.T) {
	scenes := NewScenes()
	scenes.Load(&Scene{ID: "s2", Title: "Lab"})
	scenes.Load(&Scene{ID: "s1", Title: "Lobby"})
	scenes.Load(&Scene{ID: "s2", Title: "Lab 2"})
	require.Equal(t, []*Scene{{ID: "s1", Title: "Lobby"}, {ID: "s2", Title: "Lab 2"}}, scenes.All())
	actions := scenes.Synchronize()
	require.Equal(t, 2, len(actions))
	require.Equal(t, KindLoadScene, actions[0].Kind())
	require.True(t, scenes.Unload("s2"))
	require.False(t, scenes.Unload("s2"))
	_, ok := scenes.Get("s2")
	require.False(t, ok)
	scene, ok := scenes.Get("s1")
	require.True(t, ok)
	require.Equal(t, "Lobby", scene.Title)
}
