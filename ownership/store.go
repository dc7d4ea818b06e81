package ownership

import (
	"fmt"
	"sort"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	memdbTable = "claims"
)

type Kind string

const (
	Grab   Kind = "grab"
	Select Kind = "select"
	Hover  Kind = "hover"
)

// Kinds lists claim kinds in the order they are replayed to joining connections.
var Kinds = []Kind{Grab, Select, Hover}

// Claim records that a connection currently grabs, selects or hovers an entity.
type Claim struct {
	ID     string
	Index  uint64
	Kind   string
	Owner  string
	Entity string
}

func claimID(kind Kind, owner, entity string) string {
	return fmt.Sprintf("%s/%s/%s", kind, owner, entity)
}

// Store holds the claims of every connection, server side.
type Store struct {
	db   *memdb.MemDB
	next uint64
}

func NewStore() *Store {
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
					"owner": {
						Name:         "owner",
						AllowMissing: false,
						Indexer:      &memdb.StringFieldIndex{Field: "Owner"},
					},
					"kind": {
						Name:         "kind",
						AllowMissing: false,
						Indexer:      &memdb.StringFieldIndex{Field: "Kind"},
					},
					"entity": {
						Name:         "entity",
						AllowMissing: false,
						Indexer:      &memdb.StringFieldIndex{Field: "Entity"},
					},
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return &Store{db: db}
}

// Set adds or removes the claim of owner over entity. Claims are exclusive per kind: a new
// claim replaces the one another owner held over the same entity.
func (s *Store) Set(kind Kind, owner, entity string, value bool) error {
	id := claimID(kind, owner, entity)
	return s.write(func(tx *memdb.Txn) error {
		if !value {
			old, err := tx.First(memdbTable, "id", id)
			if err != nil || old == nil {
				return err
			}
			return tx.Delete(memdbTable, old)
		}
		iterator, err := tx.Get(memdbTable, "entity", entity)
		if err != nil {
			return err
		}
		stale := []interface{}{}
		for payload := iterator.Next(); payload != nil; payload = iterator.Next() {
			if payload.(*Claim).Kind == string(kind) {
				stale = append(stale, payload)
			}
		}
		for _, old := range stale {
			if err := tx.Delete(memdbTable, old); err != nil {
				return err
			}
		}
		claim := &Claim{
			ID:     id,
			Index:  s.next,
			Kind:   string(kind),
			Owner:  owner,
			Entity: entity,
		}
		s.next++
		return tx.Insert(memdbTable, claim)
	})
}

func (s *Store) Has(kind Kind, owner, entity string) bool {
	found := false
	s.read(func(tx *memdb.Txn) error {
		v, err := tx.First(memdbTable, "id", claimID(kind, owner, entity))
		found = err == nil && v != nil
		return nil
	})
	return found
}

// ByKind returns the claims of kind in the order they were set.
func (s *Store) ByKind(kind Kind) []Claim {
	return s.list("kind", string(kind))
}
func (s *Store) ByOwner(owner string) []Claim {
	return s.list("owner", owner)
}
func (s *Store) ByEntity(entity string) []Claim {
	return s.list("entity", entity)
}
func (s *Store) All() []Claim {
	return s.list("id")
}

// Release drops every claim held by owner and returns them.
func (s *Store) Release(owner string) ([]Claim, error) {
	claims := s.ByOwner(owner)
	return claims, s.write(func(tx *memdb.Txn) error {
		_, err := tx.DeleteAll(memdbTable, "owner", owner)
		return err
	})
}

// Forget drops every claim over the given entities, whoever holds them.
func (s *Store) Forget(entities ...string) error {
	return s.write(func(tx *memdb.Txn) error {
		for _, entity := range entities {
			if _, err := tx.DeleteAll(memdbTable, "entity", entity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) list(index string, args ...interface{}) []Claim {
	out := []Claim{}
	s.read(func(tx *memdb.Txn) error {
		iterator, err := tx.Get(memdbTable, index, args...)
		if err != nil || iterator == nil {
			return err
		}
		for {
			payload := iterator.Next()
			if payload == nil {
				return nil
			}
			out = append(out, *payload.(*Claim))
		}
	})
	sort.Slice(out, func(i, k int) bool {
		return out[i].Index < out[k].Index
	})
	return out
}

func (s *Store) read(statement func(tx *memdb.Txn) error) error {
	tx := s.db.Txn(false)
	return s.run(tx, statement)
}
func (s *Store) write(statement func(tx *memdb.Txn) error) error {
	tx := s.db.Txn(true)
	return s.run(tx, statement)
}
func (s *Store) run(tx *memdb.Txn, statement func(tx *memdb.Txn) error) error {
	defer tx.Abort()
	err := statement(tx)
	if err != nil {
		return err
	}
	tx.Commit()
	return nil
}
