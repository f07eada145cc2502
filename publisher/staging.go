package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"auto_blog_publisher/generator"
)

const (
	draftPrefix     = "blog_post_"
	archivedSuffix  = "_archived.json"
	imagesSubdir    = "images"
	postsSubdir     = "posts"
	defaultRootName = "blog_generator_temp"
)

// Draft is a staged document awaiting review or publish.
type Draft struct {
	ID   string             `json:"id"`
	Post generator.BlogPost `json:"post"`
}

// Staging is the local scratch tree: draft JSON files at the root, uploaded
// images under images/, rendered posts under posts/.
type Staging struct {
	Root string
}

// NewStaging creates the staging tree, defaulting to a directory under the
// system temp dir.
func NewStaging(root string) (*Staging, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), defaultRootName)
	}
	for _, dir := range []string{root, filepath.Join(root, imagesSubdir), filepath.Join(root, postsSubdir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Staging{Root: root}, nil
}

func (s *Staging) imagesDir() string { return filepath.Join(s.Root, imagesSubdir) }
func (s *Staging) postsDir() string  { return filepath.Join(s.Root, postsSubdir) }

func (s *Staging) draftPath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid draft id %q", id)
	}
	return filepath.Join(s.Root, draftPrefix+id+".json"), nil
}

// SaveDraft persists a post as a draft JSON file and returns its ID.
func (s *Staging) SaveDraft(post generator.BlogPost) (string, error) {
	id := uuid.NewString()
	path, err := s.draftPath(id)
	if err != nil {
		return "", err
	}
	raw, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return id, nil
}

// LoadDraft reads one staged draft by ID.
func (s *Staging) LoadDraft(id string) (generator.BlogPost, error) {
	path, err := s.draftPath(id)
	if err != nil {
		return generator.BlogPost{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return generator.BlogPost{}, err
	}
	var post generator.BlogPost
	if err := json.Unmarshal(raw, &post); err != nil {
		return generator.BlogPost{}, err
	}
	return post, nil
}

// ListDrafts returns all non-archived drafts, ordered by filename. Files that
// fail to decode are skipped rather than failing the listing.
func (s *Staging) ListDrafts() ([]Draft, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, err
	}

	var drafts []Draft
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, draftPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasSuffix(name, archivedSuffix) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.Root, name))
		if err != nil {
			continue
		}
		var post generator.BlogPost
		if err := json.Unmarshal(raw, &post); err != nil {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, draftPrefix), ".json")
		drafts = append(drafts, Draft{ID: id, Post: post})
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].ID < drafts[j].ID })
	return drafts, nil
}

// ArchiveDraft renames a draft so it no longer shows up in listings.
func (s *Staging) ArchiveDraft(id string) error {
	path, err := s.draftPath(id)
	if err != nil {
		return err
	}
	return os.Rename(path, strings.TrimSuffix(path, ".json")+archivedSuffix)
}

// DeleteDraft removes a staged draft.
func (s *Staging) DeleteDraft(id string) error {
	path, err := s.draftPath(id)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// SaveImage stores an uploaded image under images/ with a timestamped name and
// returns its staging-relative path (forward slashes).
func (s *Staging) SaveImage(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" {
		return "", errors.New("image file needs an extension")
	}
	name := fmt.Sprintf("%s.%s", time.Now().Format("20060102_150405"), ext)
	f, err := os.Create(filepath.Join(s.imagesDir(), name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return imagesSubdir + "/" + name, nil
}

// ImagePath resolves a staging-relative image path to the local file.
func (s *Staging) ImagePath(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// WritePost writes a rendered markdown document under posts/ and returns its
// local path.
func (s *Staging) WritePost(filename, content string) (string, error) {
	path := filepath.Join(s.postsDir(), filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Clear removes everything under images/ and posts/, keeping draft JSON files.
func (s *Staging) Clear() error {
	for _, dir := range []string{s.imagesDir(), s.postsDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
