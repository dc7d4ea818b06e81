package journal

import (
	"fmt"
	"sort"

	memdb "github.com/hashicorp/go-memdb"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/wire"
)

const (
	memdbTable = "records"
)

// Entry is one journaled action.
type Entry struct {
	Key      string
	Index    uint64
	Entity   string
	Parent   string
	Slot     string
	Owner    string
	Envelope *wire.Envelope
}

// Journal is the ordered log of actions that establish persistent state. It is replayed
// to every connection joining after the fact.
type Journal struct {
	db   *memdb.MemDB
	next uint64
}

func New() *Journal {
	db, err := memdb.NewMemDB(&memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			memdbTable: {
				Name: memdbTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:         "id",
						Unique:       true,
						AllowMissing: false,
						Indexer:      &memdb.StringFieldIndex{Field: "Key"},
					},
					"entity": {
						Name:         "entity",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Entity"},
					},
					"parent": {
						Name:         "parent",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Parent"},
					},
					"slot": {
						Name:         "slot",
						Unique:       true,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Slot"},
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
	return &Journal{db: db}
}

// Append records env. A previous record in the same slot is dropped, so only the latest
// state of a slot gets replayed.
func (j *Journal) Append(owner string, record netaction.Record, env *wire.Envelope) (Entry, error) {
	entry := Entry{
		Key:      fmt.Sprintf("%020d", j.next),
		Index:    j.next,
		Entity:   record.Entity,
		Parent:   record.Parent,
		Slot:     record.Slot,
		Owner:    owner,
		Envelope: env,
	}
	err := j.write(func(tx *memdb.Txn) error {
		if entry.Slot != "" {
			old, err := tx.First(memdbTable, "slot", entry.Slot)
			if err != nil {
				return err
			}
			if old != nil {
				if err := tx.Delete(memdbTable, old); err != nil {
					return err
				}
			}
		}
		return tx.Insert(memdbTable, &entry)
	})
	if err != nil {
		return Entry{}, err
	}
	j.next++
	return entry, nil
}

// Forget drops every record about entity or one of its descendants.
func (j *Journal) Forget(entity string) (int, error) {
	if entity == "" {
		return 0, nil
	}
	count := 0
	err := j.write(func(tx *memdb.Txn) error {
		entities, err := subtree(tx, entity)
		if err != nil {
			return err
		}
		for _, id := range entities {
			for _, index := range []string{"entity", "parent"} {
				n, err := tx.DeleteAll(memdbTable, index, id)
				if err != nil {
					return err
				}
				count += n
			}
		}
		return nil
	})
	return count, err
}

// Subtree returns entity followed by every entity journaled under it, parents first.
func (j *Journal) Subtree(entity string) []string {
	if entity == "" {
		return nil
	}
	var out []string
	j.read(func(tx *memdb.Txn) error {
		var err error
		out, err = subtree(tx, entity)
		return err
	})
	return out
}

func subtree(tx *memdb.Txn, entity string) ([]string, error) {
	out := []string{entity}
	seen := map[string]bool{entity: true}
	for i := 0; i < len(out); i++ {
		iterator, err := tx.Get(memdbTable, "parent", out[i])
		if err != nil {
			return nil, err
		}
		for payload := iterator.Next(); payload != nil; payload = iterator.Next() {
			child := payload.(*Entry).Entity
			if child != "" && !seen[child] {
				seen[child] = true
				out = append(out, child)
			}
		}
	}
	return out, nil
}

func (j *Journal) All() []Entry {
	return j.list("id")
}

func (j *Journal) ByOwner(owner string) []Entry {
	out := j.list("owner", owner)
	sortEntries(out)
	return out
}

func (j *Journal) ByEntity(entity string) []Entry {
	out := j.list("entity", entity)
	sortEntries(out)
	return out
}

func (j *Journal) Len() int {
	return len(j.All())
}

func (j *Journal) list(index string, args ...interface{}) []Entry {
	out := []Entry{}
	j.read(func(tx *memdb.Txn) error {
		iterator, err := tx.Get(memdbTable, index, args...)
		if err != nil || iterator == nil {
			return err
		}
		for {
			payload := iterator.Next()
			if payload == nil {
				return nil
			}
			out = append(out, *payload.(*Entry))
		}
	})
	return out
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, k int) bool {
		return entries[i].Index < entries[k].Index
	})
}

func (j *Journal) read(statement func(tx *memdb.Txn) error) error {
	tx := j.db.Txn(false)
	return j.run(tx, statement)
}
func (j *Journal) write(statement func(tx *memdb.Txn) error) error {
	tx := j.db.Txn(true)
	return j.run(tx, statement)
}
func (j *Journal) run(tx *memdb.Txn, statement func(tx *memdb.Txn) error) error {
	defer tx.Abort()
	err := statement(tx)
	if err != nil {
		return err
	}
	tx.Commit()
	return nil
}
