package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the whole inventory in one JSON document on disk.
// Every write rewrites the document through a temp file and rename.
type FileStore struct {
	FilePath string

	mu sync.Mutex
}

type fileDocument struct {
	Items map[string]Record `json:"items"`
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{FilePath: filePath}
}

func (f *FileStore) Get(ctx context.Context, name string) (Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := doc.Items[name]
	return rec, ok, nil
}

func (f *FileStore) List(ctx context.Context) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return itemsFromMap(doc.Items), nil
}

func (f *FileStore) Put(ctx context.Context, name string, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.Items[name] = rec
	return f.save(doc)
}

func (f *FileStore) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Items[name]; !ok {
		return nil
	}
	delete(doc.Items, name)
	return f.save(doc)
}

// load reads the document; a missing file is an empty inventory.
func (f *FileStore) load() (fileDocument, error) {
	doc := fileDocument{Items: map[string]Record{}}

	b, err := os.ReadFile(f.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read inventory file %s: %w", f.FilePath, err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("parse inventory file %s: %w", f.FilePath, err)
	}
	if doc.Items == nil {
		doc.Items = map[string]Record{}
	}
	return doc, nil
}

func (f *FileStore) save(doc fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	dir := filepath.Dir(f.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create inventory directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".inventory-*.json")
	if err != nil {
		return fmt.Errorf("create temp inventory file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp inventory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp inventory file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.FilePath); err != nil {
		return fmt.Errorf("replace inventory file %s: %w", f.FilePath, err)
	}
	return nil
}
