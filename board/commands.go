package board

import (
	"github.com/vx-labs/boardsync/history"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/world"
)

// command holds what every board command shares. A command whose gesture fails goes back to
// NotStarted and reports the failure through Err.
type command struct {
	history.Progress
	editor *Editor
	err    error
}

func (c *command) Err() error {
	return c.err
}

func (c *command) conclude(err error) bool {
	if err != nil {
		c.err = err
		c.Abort()
		return false
	}
	c.Complete()
	return true
}

func (c *command) Stop() {
	c.Abort()
}

// CreateBoard creates a board. Undo deletes it.
type CreateBoard struct {
	command
	board *Board
}

func (e *Editor) CreateBoard(id, parent, title string, at world.Position) *CreateBoard {
	return &CreateBoard{
		command: command{editor: e},
		board:   &Board{ID: id, Parent: parent, Title: title, X: at.X, Y: at.Y, Z: at.Z},
	}
}

func (c *CreateBoard) Start() {
	c.Begin()
}

func (c *CreateBoard) Update() bool {
	return c.conclude(c.editor.apply(c.editor.createBoard(c.board)))
}

func (c *CreateBoard) Undo() error {
	return c.editor.apply(c.editor.deleteBoard(c.board.ID))
}

func (c *CreateBoard) Redo() error {
	return c.editor.apply(c.editor.createBoard(c.board))
}

// MoveBoard is a drag gesture. Drag previews positions on the local world, Drop concludes the
// gesture on the next Update and replicates the final position. Stopping a drag restores the
// position the board had when it started.
type MoveBoard struct {
	command
	id       string
	from, to world.Position
	target   *world.Position
	dropped  bool
}

func (e *Editor) MoveBoard(id string) *MoveBoard {
	return &MoveBoard{command: command{editor: e}, id: id}
}

// MoveBoardTo moves a board without a drag preview.
func (e *Editor) MoveBoardTo(id string, to world.Position) *MoveBoard {
	return &MoveBoard{command: command{editor: e}, id: id, target: &to}
}

func (c *MoveBoard) Start() {
	board, err := c.editor.world.Find(c.id)
	if err != nil {
		c.err = err
		return
	}
	c.from = board.Position
	c.to = board.Position
	c.Begin()
	if c.target != nil {
		c.Drag(*c.target)
		c.Drop()
	}
}

func (c *MoveBoard) Drag(p world.Position) {
	if c.State() != history.Running {
		return
	}
	c.to = p
	if err := c.editor.preview(c.id, p); err != nil {
		c.err = err
	}
}

func (c *MoveBoard) Drop() {
	c.dropped = true
}

func (c *MoveBoard) Update() bool {
	if !c.dropped {
		return false
	}
	err := c.editor.apply(c.editor.moveBoard(c.id, c.to))
	if err != nil {
		c.editor.preview(c.id, c.from)
	}
	return c.conclude(err)
}

func (c *MoveBoard) Stop() {
	if c.Abort() {
		c.dropped = false
		c.editor.preview(c.id, c.from)
	}
}

func (c *MoveBoard) Undo() error {
	return c.editor.apply(c.editor.moveBoard(c.id, c.from))
}

func (c *MoveBoard) Redo() error {
	return c.editor.apply(c.editor.moveBoard(c.id, c.to))
}

// RenameBoard changes the title of a board.
type RenameBoard struct {
	command
	id       string
	old, new string
}

func (e *Editor) RenameBoard(id, title string) *RenameBoard {
	return &RenameBoard{command: command{editor: e}, id: id, new: title}
}

func (c *RenameBoard) Start() {
	board, err := c.editor.world.Find(c.id)
	if err != nil {
		c.err = err
		return
	}
	c.old = board.Title
	c.Begin()
}

func (c *RenameBoard) Update() bool {
	return c.conclude(c.editor.apply(c.editor.renameBoard(c.id, c.new)))
}

func (c *RenameBoard) Undo() error {
	return c.editor.apply(c.editor.renameBoard(c.id, c.old))
}

func (c *RenameBoard) Redo() error {
	return c.editor.apply(c.editor.renameBoard(c.id, c.new))
}

// DeleteBoard deletes a board with everything nested under it. Undo recreates the whole
// subtree, parents first.
type DeleteBoard struct {
	command
	id      string
	subtree []world.Entity
}

func (e *Editor) DeleteBoard(id string) *DeleteBoard {
	return &DeleteBoard{command: command{editor: e}, id: id}
}

func (c *DeleteBoard) Start() {
	board, err := c.editor.world.Find(c.id)
	if err != nil {
		c.err = err
		return
	}
	c.subtree = []world.Entity{board}
	for i := 0; i < len(c.subtree); i++ {
		c.subtree = append(c.subtree, c.editor.world.ByParent(c.subtree[i].ID)...)
	}
	c.Begin()
}

func (c *DeleteBoard) Update() bool {
	return c.conclude(c.editor.apply(c.editor.deleteBoard(c.id)))
}

func (c *DeleteBoard) Undo() error {
	for _, entity := range c.subtree {
		var action netaction.Action
		switch entity.Kind {
		case world.KindBoard:
			action = c.editor.createBoard(boardOf(entity))
		case world.KindWidget:
			action = c.editor.addWidget(widgetOf(entity))
		default:
			continue
		}
		if err := c.editor.apply(action); err != nil {
			return err
		}
	}
	return nil
}

func (c *DeleteBoard) Redo() error {
	return c.editor.apply(c.editor.deleteBoard(c.id))
}

// AddWidget places a widget on a board.
type AddWidget struct {
	command
	widget *Widget
}

func (e *Editor) AddWidget(id, board, title string, at world.Position) *AddWidget {
	return &AddWidget{
		command: command{editor: e},
		widget:  &Widget{ID: id, Board: board, Title: title, X: at.X, Y: at.Y, Z: at.Z},
	}
}

func (c *AddWidget) Start() {
	c.Begin()
}

func (c *AddWidget) Update() bool {
	return c.conclude(c.editor.apply(c.editor.addWidget(c.widget)))
}

func (c *AddWidget) Undo() error {
	return c.editor.apply(c.editor.removeWidget(c.widget.ID))
}

func (c *AddWidget) Redo() error {
	return c.editor.apply(c.editor.addWidget(c.widget))
}

// RemoveWidget removes a widget from its board.
type RemoveWidget struct {
	command
	id     string
	widget *Widget
}

func (e *Editor) RemoveWidget(id string) *RemoveWidget {
	return &RemoveWidget{command: command{editor: e}, id: id}
}

func (c *RemoveWidget) Start() {
	widget, err := c.editor.world.Find(c.id)
	if err != nil {
		c.err = err
		return
	}
	c.widget = widgetOf(widget)
	c.Begin()
}

func (c *RemoveWidget) Update() bool {
	return c.conclude(c.editor.apply(c.editor.removeWidget(c.id)))
}

func (c *RemoveWidget) Undo() error {
	return c.editor.apply(c.editor.addWidget(c.widget))
}

func (c *RemoveWidget) Redo() error {
	return c.editor.apply(c.editor.removeWidget(c.id))
}
