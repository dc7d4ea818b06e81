package board

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vx-labs/boardsync/history"
	"github.com/vx-labs/boardsync/session"
	"github.com/vx-labs/boardsync/world"
	"go.uber.org/zap"
)

type participant struct {
	session *session.Session
	world   *world.World
	scenes  *Scenes
	editor  *Editor
	runner  *history.Runner
}

func newParticipant(t *testing.T, name string) *participant {
	w := world.New()
	scenes := NewScenes()
	s := session.New(zap.NewNop(), session.Config{Name: name}, w)
	require.NoError(t, Register(s.Registry(), w, scenes))
	s.AddSynchronizer(scenes)
	return &participant{
		session: s,
		world:   w,
		scenes:  scenes,
		editor:  NewEditor(w, scenes, s),
		runner:  history.NewRunner(history.New(0), nil),
	}
}

func (p *participant) connect(t *testing.T, endpoint string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.session.Connect(ctx, endpoint))
}

func (p *participant) at(id string) (world.Position, bool) {
	e, err := p.world.Find(id)
	if err != nil {
		return world.Position{}, false
	}
	return e.Position, true
}

func tickUntil(t *testing.T, cond func() bool, participants ...*participant) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, p := range participants {
			p.session.Tick()
		}
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.FailNow(t, "participants did not converge in time")
}

func TestCollaboration(t *testing.T) {
	server := newParticipant(t, "server")
	addr, err := server.session.Listen(0)
	require.NoError(t, err)
	endpoint := fmt.Sprintf("127.0.0.1:%d", addr.(*net.TCPAddr).Port)
	a, b, c := newParticipant(t, "a"), newParticipant(t, "b"), newParticipant(t, "c")
	defer func() {
		for _, p := range []*participant{server, a, b, c} {
			p.session.Shutdown()
		}
	}()
	a.connect(t, endpoint)
	b.connect(t, endpoint)
	tickUntil(t, func() bool { return len(server.session.Connections()) == 2 }, server, a, b)

	p0 := world.Position{X: 1, Y: 1}
	p1 := world.Position{X: 4, Y: 2}
	run(t, a.runner, a.editor.CreateBoard("B1", "", "Roadmap", p0))
	tickUntil(t, func() bool { return b.world.Exists("B1") }, server, a, b)

	all := []*participant{server, a, b, c}
	t.Run("late joiner replays the board", func(t *testing.T) {
		c.connect(t, endpoint)
		tickUntil(t, func() bool { return c.world.Exists("B1") }, all...)
		position, _ := c.at("B1")
		require.Equal(t, p0, position)
		require.Equal(t, a.world.ByKind(world.KindBoard), c.world.ByKind(world.KindBoard))
	})
	t.Run("moves reach everyone", func(t *testing.T) {
		run(t, b.runner, b.editor.MoveBoardTo("B1", p1))
		position, _ := b.at("B1")
		require.Equal(t, p1, position)
		tickUntil(t, func() bool {
			pa, _ := a.at("B1")
			pc, _ := c.at("B1")
			return pa == p1 && pc == p1
		}, all...)
	})
	t.Run("undo reaches everyone", func(t *testing.T) {
		require.NoError(t, b.runner.Undo())
		position, _ := b.at("B1")
		require.Equal(t, p0, position)
		tickUntil(t, func() bool {
			pa, _ := a.at("B1")
			pc, _ := c.at("B1")
			return pa == p0 && pc == p0
		}, all...)
	})
	t.Run("scenes are synchronized to joiners", func(t *testing.T) {
		require.NoError(t, a.editor.LoadScene("lobby", "Lobby"))
		tickUntil(t, func() bool {
			_, ok := server.scenes.Get("lobby")
			return ok && b.world.Exists("lobby")
		}, all...)
		d := newParticipant(t, "d")
		defer d.session.Shutdown()
		d.connect(t, endpoint)
		tickUntil(t, func() bool { return d.world.Exists("lobby") && d.world.Exists("B1") }, server, d)
		position, _ := d.at("B1")
		require.Equal(t, p0, position)
		scene, err := d.world.Find("lobby")
		require.NoError(t, err)
		require.Equal(t, world.KindScene, scene.Kind)
	})
	t.Run("unloading a scene forgets everything under it", func(t *testing.T) {
		require.NoError(t, a.editor.LoadScene("lab", "Lab"))
		tickUntil(t, func() bool { return a.world.Exists("lab") }, all...)
		run(t, a.runner, a.editor.CreateBoard("B2", "lab", "Bench", world.Position{}))
		run(t, a.runner, a.editor.MoveBoardTo("B2", p1))
		run(t, a.runner, a.editor.RenameBoard("B2", "Workbench"))
		run(t, a.runner, a.editor.AddWidget("W2", "B2", "note", world.Position{}))
		tickUntil(t, func() bool { return b.world.Exists("W2") }, all...)
		require.NoError(t, b.session.Select("W2", true))
		tickUntil(t, func() bool { return len(server.session.Claims().ByEntity("W2")) == 1 }, all...)

		require.NoError(t, a.editor.UnloadScene("lab"))
		tickUntil(t, func() bool { return !b.world.Exists("lab") && !c.world.Exists("B2") }, all...)
		for _, id := range []string{"lab", "B2", "W2"} {
			require.Empty(t, server.session.Journal().ByEntity(id))
			require.Empty(t, server.session.Claims().ByEntity(id))
		}
		for _, entry := range server.session.Journal().All() {
			require.NotEqual(t, "B2", entry.Parent)
		}

		e := newParticipant(t, "e")
		defer e.session.Shutdown()
		e.connect(t, endpoint)
		tickUntil(t, func() bool { return e.world.Exists("B1") }, server, e)
		require.False(t, e.world.Exists("B2"))
		require.False(t, e.world.Exists("W2"))
	})
}
