package world

import (
	memdb "github.com/hashicorp/go-memdb"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/netaction"
)

const (
	memdbTable = "entities"
)

const (
	KindParticipant = "participant"
	KindBoard       = "board"
	KindWidget      = "widget"
	KindScene       = "scene"
)

var (
	ErrEntityNotFound = netaction.ErrEntityNotFound
	ErrEntityExists   = errors.New("entity already exists")
)

// IsNotFound reports whether err was caused by a missing entity.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrEntityNotFound
}

type Position struct {
	X, Y, Z float64
}

// Entity is the local representation of a shared object.
type Entity struct {
	ID         string
	Kind       string
	Parent     string
	Owner      string
	Title      string
	Metric     string
	Position   Position
	GrabbedBy  string
	SelectedBy string
	HoveredBy  string
}

// World is the in-memory entity lookup service. Writes are expected from the tick loop only,
// reads are safe from any goroutine.
type World struct {
	db *memdb.MemDB
}

func New() *World {
	db, err := memdb.NewMemDB(&memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			memdbTable: {
				Name: memdbTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:         "id",
						Unique:       true,
						AllowMissing: false,
						Indexer:      &memdb.StringFieldIndex{Field: "ID"},
					},
					"kind": {
						Name:         "kind",
						AllowMissing: false,
						Indexer:      &memdb.StringFieldIndex{Field: "Kind"},
					},
					"parent": {
						Name:         "parent",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Parent"},
					},
					"owner": {
						Name:         "owner",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Owner"},
					},
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return &World{db: db}
}

func (w *World) Create(e Entity) error {
	return w.write(func(tx *memdb.Txn) error {
		old, err := tx.First(memdbTable, "id", e.ID)
		if err != nil {
			return err
		}
		if old != nil {
			return errors.Wrap(ErrEntityExists, e.ID)
		}
		return tx.Insert(memdbTable, &e)
	})
}

func (w *World) Exists(id string) bool {
	_, err := w.Find(id)
	return err == nil
}

func (w *World) Find(id string) (Entity, error) {
	var out Entity
	return out, w.read(func(tx *memdb.Txn) error {
		e, err := first(tx, id)
		if err != nil {
			return err
		}
		out = *e
		return nil
	})
}

// Update replaces the entity with the result of op.
func (w *World) Update(id string, op func(Entity) Entity) error {
	return w.write(func(tx *memdb.Txn) error {
		e, err := first(tx, id)
		if err != nil {
			return err
		}
		updated := op(*e)
		updated.ID = id
		return tx.Insert(memdbTable, &updated)
	})
}

// Destroy removes the entity and, recursively, its children.
func (w *World) Destroy(id string) error {
	return w.write(func(tx *memdb.Txn) error {
		e, err := first(tx, id)
		if err != nil {
			return err
		}
		return destroy(tx, e)
	})
}

func destroy(tx *memdb.Txn, e *Entity) error {
	children, err := list(tx, "parent", e.ID)
	if err != nil {
		return err
	}
	for idx := range children {
		if err := destroy(tx, &children[idx]); err != nil {
			return err
		}
	}
	return tx.Delete(memdbTable, e)
}

func (w *World) ByKind(kind string) []Entity {
	return w.list("kind", kind)
}
func (w *World) ByParent(parent string) []Entity {
	return w.list("parent", parent)
}
func (w *World) ByOwner(owner string) []Entity {
	return w.list("owner", owner)
}
func (w *World) All() []Entity {
	return w.list("id")
}

func (w *World) list(index string, args ...interface{}) []Entity {
	var out []Entity
	w.read(func(tx *memdb.Txn) error {
		var err error
		out, err = list(tx, index, args...)
		return err
	})
	if out == nil {
		out = []Entity{}
	}
	return out
}

func first(tx *memdb.Txn, id string) (*Entity, error) {
	v, err := tx.First(memdbTable, "id", id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.Wrap(ErrEntityNotFound, id)
	}
	return v.(*Entity), nil
}

func list(tx *memdb.Txn, index string, args ...interface{}) ([]Entity, error) {
	out := []Entity{}
	iterator, err := tx.Get(memdbTable, index, args...)
	if err != nil || iterator == nil {
		return out, err
	}
	for {
		payload := iterator.Next()
		if payload == nil {
			return out, nil
		}
		out = append(out, *payload.(*Entity))
	}
}

func (w *World) read(statement func(tx *memdb.Txn) error) error {
	tx := w.db.Txn(false)
	return w.run(tx, statement)
}
func (w *World) write(statement func(tx *memdb.Txn) error) error {
	tx := w.db.Txn(true)
	return w.run(tx, statement)
}
func (w *World) run(tx *memdb.Txn, statement func(tx *memdb.Txn) error) error {
	defer tx.Abort()
	err := statement(tx)
	if err != nil {
		return err
	}
	tx.Commit()
	return nil
}
