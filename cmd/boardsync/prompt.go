package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/format"
	"github.com/vx-labs/boardsync/history"
	"github.com/vx-labs/boardsync/world"
)

var (
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownCommand = errors.New("unknown command, try help")
)

const usage = `create <board> [title] [x y]   create a board
move <board> <x> <y>           move a board
rename <board> <title>         rename a board
delete <board>                 delete a board and its widgets
widget <id> <board> [title]    add a widget to a board
unwidget <id>                  remove a widget
scene <id> [title]             load a scene
unload <id>                    unload a scene
grab|select|hover <id> [off]   set an interaction flag
undo, redo                     walk the local history
ls                             list entities
who                            list connections
quit                           leave
`

// failing is implemented by board commands.
type failing interface {
	Err() error
}

// prompt reads commands from the terminal until the user quits or ctx is done.
func (n *node) prompt(ctx context.Context) {
	fmt.Print(usage)
	for ctx.Err() == nil {
		p := promptui.Prompt{Label: "boardsync"}
		line, err := p.Run()
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		buf := &bytes.Buffer{}
		var execErr error
		err = n.session.Query(ctx, func() {
			execErr = n.exec(buf, fields)
		})
		if err == nil {
			err = execErr
		}
		io.Copy(os.Stdout, buf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func parsePosition(args []string) (world.Position, error) {
	if len(args) < 2 {
		return world.Position{}, errors.Wrap(ErrUsage, "expected x and y")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return world.Position{}, errors.Wrap(ErrUsage, "invalid x")
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return world.Position{}, errors.Wrap(ErrUsage, "invalid y")
	}
	return world.Position{X: x, Y: y}, nil
}

// run starts a command and polls it once, which concludes immediate gestures.
func (n *node) run(command history.Reversible) error {
	n.runner.Run(command)
	n.runner.Tick()
	if f, ok := command.(failing); ok && f.Err() != nil {
		return f.Err()
	}
	return nil
}

// exec runs on the tick loop.
func (n *node) exec(w io.Writer, fields []string) error {
	command, args := fields[0], fields[1:]
	need := func(count int) error {
		if len(args) < count {
			return errors.Wrapf(ErrUsage, "%s expects at least %d arguments", command, count)
		}
		return nil
	}
	switch command {
	case "help":
		fmt.Fprint(w, usage)
		return nil
	case "create":
		if err := need(1); err != nil {
			return err
		}
		title := args[0]
		if len(args) > 1 {
			title = args[1]
		}
		var at world.Position
		if len(args) > 3 {
			var err error
			if at, err = parsePosition(args[2:]); err != nil {
				return err
			}
		}
		return n.run(n.editor.CreateBoard(args[0], "", title, at))
	case "move":
		if err := need(3); err != nil {
			return err
		}
		at, err := parsePosition(args[1:])
		if err != nil {
			return err
		}
		return n.run(n.editor.MoveBoardTo(args[0], at))
	case "rename":
		if err := need(2); err != nil {
			return err
		}
		return n.run(n.editor.RenameBoard(args[0], strings.Join(args[1:], " ")))
	case "delete":
		if err := need(1); err != nil {
			return err
		}
		return n.run(n.editor.DeleteBoard(args[0]))
	case "widget":
		if err := need(2); err != nil {
			return err
		}
		title := args[0]
		if len(args) > 2 {
			title = strings.Join(args[2:], " ")
		}
		return n.run(n.editor.AddWidget(args[0], args[1], title, world.Position{}))
	case "unwidget":
		if err := need(1); err != nil {
			return err
		}
		return n.run(n.editor.RemoveWidget(args[0]))
	case "scene":
		if err := need(1); err != nil {
			return err
		}
		title := args[0]
		if len(args) > 1 {
			title = strings.Join(args[1:], " ")
		}
		return n.editor.LoadScene(args[0], title)
	case "unload":
		if err := need(1); err != nil {
			return err
		}
		return n.editor.UnloadScene(args[0])
	case "grab", "select", "hover":
		if err := need(1); err != nil {
			return err
		}
		value := len(args) < 2 || args[1] != "off"
		switch command {
		case "grab":
			return n.session.Grab(args[0], value)
		case "select":
			return n.session.Select(args[0], value)
		default:
			return n.session.Hover(args[0], value)
		}
	case "undo":
		return n.runner.Undo()
	case "redo":
		return n.runner.Redo()
	case "ls":
		tpl := format.ParseTemplate(format.EntityTemplate)
		for _, entity := range n.world.All() {
			tpl.Execute(w, entity)
		}
		return nil
	case "who":
		for _, c := range n.session.Connections() {
			fmt.Fprintf(w, "%s %s %s upstream=%v\n", c.ID, c.Name, c.RemoteAddress, c.Upstream)
		}
		return nil
	default:
		return errors.Wrap(ErrUnknownCommand, command)
	}
}
