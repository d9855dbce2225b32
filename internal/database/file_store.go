package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"pizza_back_end/internal/apperr"
)

// FileStore range un fichier JSON par enregistrement :
// <baseDir>/<namespace>/<clé échappée>.json
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) (*FileStore, error) {
	for _, ns := range Namespaces {
		if err := os.MkdirAll(filepath.Join(baseDir, string(ns)), 0o750); err != nil {
			return nil, fmt.Errorf("création du répertoire %s: %w", ns, err)
		}
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(ns Namespace, key string) string {
	return filepath.Join(s.baseDir, string(ns), url.PathEscape(key)+".json")
}

func (s *FileStore) Create(ctx context.Context, ns Namespace, key string, value any) error {
	if err := checkArgs(ctx, ns, key); err != nil {
		return err
	}
	tmp, err := s.writeTemp(ns, value)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	final := s.path(ns, key)
	if ns.exclusiveCreate() {
		// link(2) échoue si la cible existe : création exclusive et atomique.
		if err := os.Link(tmp, final); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return apperr.ErrAlreadyExists
			}
			return fmt.Errorf("create %s: %w", ns, err)
		}
		return nil
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("create %s: %w", ns, err)
	}
	return nil
}

func (s *FileStore) Read(ctx context.Context, ns Namespace, key string, out any) error {
	if err := checkArgs(ctx, ns, key); err != nil {
		return err
	}
	data, err := os.ReadFile(s.path(ns, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("read %s: %w", ns, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", ns, err)
	}
	return nil
}

func (s *FileStore) Update(ctx context.Context, ns Namespace, key string, value any) error {
	if err := checkArgs(ctx, ns, key); err != nil {
		return err
	}
	final := s.path(ns, key)
	if _, err := os.Stat(final); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("update %s: %w", ns, err)
	}
	tmp, err := s.writeTemp(ns, value)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("update %s: %w", ns, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, ns Namespace, key string) error {
	if err := checkArgs(ctx, ns, key); err != nil {
		return err
	}
	if err := os.Remove(s.path(ns, key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", ns, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// writeTemp écrit le document complet dans un fichier temporaire du même
// répertoire, pour que rename/link restent atomiques.
func (s *FileStore) writeTemp(ns Namespace, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", ns, err)
	}
	f, err := os.CreateTemp(filepath.Join(s.baseDir, string(ns)), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", ns, err)
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("write %s: %w", ns, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("write %s: %w", ns, err)
	}
	return name, nil
}
