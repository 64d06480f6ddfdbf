package users

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-wiki/internal/identity"
)

//go:embed schema.json
var schemaDocument []byte

const schemaName = "users.schema.json"

// FileMode is applied to the users file after every write.
const FileMode fs.FileMode = 0o600

// FileStore reads and writes the users file. The whole array is loaded and
// rewritten on every change; Update serialises changes made by this process.
type FileStore struct {
	path   string
	schema *jsonschema.Schema
	mu     sync.Mutex
}

// NewFileStore returns a store for the JSON array at path. The file does not
// have to exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("users: store path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("users: resolve %q: %w", path, err)
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &FileStore{path: abs, schema: schema}, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaName, bytes.NewReader(schemaDocument)); err != nil {
		return nil, fmt.Errorf("users: load schema: %w", err)
	}
	schema, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("users: compile schema: %w", err)
	}
	return schema, nil
}

// Path returns the absolute path of the users file.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns every user. A missing or empty file is an empty store.
func (s *FileStore) Load(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save replaces the file with users.
func (s *FileStore) Save(ctx context.Context, users []User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, users)
}

// Update loads the users, passes them to fn and saves what fn returns. When
// fn fails nothing is written.
func (s *FileStore) Update(ctx context.Context, fn func([]User) ([]User, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.save(ctx, next)
}

func (s *FileStore) load(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("users: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []User{}, nil
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, &CorruptStoreError{Path: s.path, Cause: err}
	}
	if err := s.schema.Validate(document); err != nil {
		return nil, &CorruptStoreError{Path: s.path, Issues: schemaIssues(err), Cause: err}
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, &CorruptStoreError{Path: s.path, Cause: err}
	}
	for i := range users {
		if users[i].ID == uuid.Nil {
			users[i].ID = identity.UserUUID(users[i].Name)
		}
		if users[i].AuthenticationMethod == "" {
			users[i].AuthenticationMethod = AuthCleartext
		}
	}
	return users, nil
}

func (s *FileStore) save(ctx context.Context, users []User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if users == nil {
		users = []User{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("users: encode: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("users: create directory: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("users: write %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, FileMode); err != nil {
		return fmt.Errorf("users: chmod %s: %w", s.path, err)
	}
	return nil
}

func schemaIssues(err error) []SchemaIssue {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) || validationErr == nil {
		return []SchemaIssue{{Message: err.Error()}}
	}
	var issues []SchemaIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, SchemaIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}
