// Package presence keeps the ephemeral who-is-online and who-has-unread
// state. It is the only shared mutable state in the messaging core, so
// every operation is atomic on its own; callers never need a lock.
package presence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"chat-service/pkg/errors"
)

type Store interface {
	AddOnline(userID int64) error
	RemoveOnline(userID int64) error
	ListOnline() ([]int64, error)

	AddUnread(userID, room int64) error
	// RemoveUnread reports whether a flag was actually cleared.
	RemoveUnread(userID, room int64) (bool, error)
	ListUnreadRooms(userID int64) ([]int64, error)

	Close() error
}

// BadgerStore implements Store on a badger keyspace.
//
// Keys:
//
//	online/{userID}        -> ""
//	unread/{userID}/{room} -> ""
//
// Both namespaces are pure set membership; values are empty. Badger
// transactions give per-operation atomicity, and prefix iteration backs
// the list operations.
type BadgerStore struct {
	db *badger.DB
}

// Open opens the store at dir, or in-memory when dir is empty.
func Open(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Unavailable("presence store unavailable", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) AddOnline(userID int64) error {
	return s.set(onlineKey(userID))
}

func (s *BadgerStore) RemoveOnline(userID int64) error {
	_, err := s.delete(onlineKey(userID))
	return err
}

func (s *BadgerStore) ListOnline() ([]int64, error) {
	ids, err := s.listSuffixes("online/")
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *BadgerStore) AddUnread(userID, room int64) error {
	return s.set(unreadKey(userID, room))
}

func (s *BadgerStore) RemoveUnread(userID, room int64) (bool, error) {
	return s.delete(unreadKey(userID, room))
}

func (s *BadgerStore) ListUnreadRooms(userID int64) ([]int64, error) {
	prefix := fmt.Sprintf("unread/%d/", userID)
	suffixes, err := s.listSuffixes(prefix)
	if err != nil {
		return nil, err
	}
	rooms := make([]int64, 0, len(suffixes))
	for _, raw := range suffixes {
		room, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *BadgerStore) set(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), nil)
	})
	if err != nil {
		return errors.Unavailable("presence store unavailable", err)
	}
	return nil
}

// delete removes key and reports whether it existed. Existence is checked
// inside the same transaction as the delete.
func (s *BadgerStore) delete(key string) (bool, error) {
	existed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		existed = true
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return false, errors.Unavailable("presence store unavailable", err)
	}
	return existed, nil
}

func (s *BadgerStore) listSuffixes(prefix string) ([]string, error) {
	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			key := string(it.Item().Key())
			out = append(out, strings.TrimPrefix(key, prefix))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Unavailable("presence store unavailable", err)
	}
	return out, nil
}

func onlineKey(userID int64) string {
	return fmt.Sprintf("online/%d", userID)
}

func unreadKey(userID, room int64) string {
	return fmt.Sprintf("unread/%d/%d", userID, room)
}
