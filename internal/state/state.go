package state

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fhounton/immoctl/immo"
	bolt "go.etcd.io/bbolt"
)

const (
	// stateDirPerm is the permission mode for the state directory (~/.immoctl/).
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the state database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second
)

var (
	sessionBucket = []byte("session")
	tokenKey      = []byte("token")
	userKey       = []byte("user")
)

// State wraps a bbolt database holding the persisted session: the raw
// bearer token and the serialized user record, each under a fixed key.
// Both survive restarts and are removed together on logout.
type State struct {
	db *bolt.DB
}

// Load opens the state database at the given path, or the default
// ~/.immoctl/state.db when path is empty, creating it if needed.
func Load(path string) (*State, error) {
	if path == "" {
		path = defaultDBPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)

		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state db: %w", err)
	}

	return &State{db: db}, nil
}

// Close closes the database.
func (s *State) Close() error {
	return s.db.Close()
}

// SetSession persists the token and user record in a single
// transaction. The two keys are never written independently.
func (s *State) SetSession(token string, user *immo.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("both token and user are required for a session")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("serializing user record: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if err := b.Put(tokenKey, []byte(token)); err != nil {
			return err
		}

		return b.Put(userKey, data)
	})
}

// ClearSession removes the token and user record in a single
// transaction.
func (s *State) ClearSession() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if err := b.Delete(tokenKey); err != nil {
			return err
		}

		return b.Delete(userKey)
	})
}

// Session returns the persisted token and user record. A session is
// only reported when both halves are present and the user record
// decodes; anything else reads as logged out.
func (s *State) Session() (string, *immo.User) {
	var (
		tok  string
		data []byte
	)

	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)

		if v := b.Get(tokenKey); v != nil {
			tok = string(v)
		}

		if v := b.Get(userKey); v != nil {
			data = append(data, v...)
		}

		return nil
	})

	if tok == "" || len(data) == 0 {
		return "", nil
	}

	user := &immo.User{}
	if err := json.Unmarshal(data, user); err != nil {
		return "", nil
	}

	return tok, user
}

// Token returns the persisted bearer token, or empty string when no
// complete session exists.
func (s *State) Token() string {
	tok, _ := s.Session()

	return tok
}

func defaultDBPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		// Fail loudly rather than silently writing the session database
		// to the current directory where it might end up with wrong
		// permissions or inside a source-controlled tree.
		fmt.Fprintf(os.Stderr, "fatal: cannot determine home directory: %v\n", err)
		os.Exit(1)
	}

	return filepath.Join(dir, ".immoctl", "state.db")
}
