package storage

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/model"
)

// ExportRepo archives export documents.
type ExportRepo struct {
	db *DB
}

// NewExportRepo creates a new export repository.
func NewExportRepo(db *DB) *ExportRepo {
	return &ExportRepo{db: db}
}

// Save archives doc and marks it as the latest export. A document without
// an ID gets a fresh one.
func (r *ExportRepo) Save(doc *model.ExportDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Key = model.ExportKey(doc.ID)
	if err := r.db.SetWithPointer(doc, model.KeyLatest); err != nil {
		return errors.NewSystemErrorWithOp("save export", "failed to archive export", err)
	}
	return nil
}

// Get retrieves an export by ID. A unique ID prefix is accepted.
func (r *ExportRepo) Get(id string) (*model.ExportDocument, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NotFound(errors.ErrExportNotFound, "id", id)
	}

	doc := &model.ExportDocument{}
	err := r.db.Get(model.ExportKey(id), doc)
	if err == nil {
		return doc, nil
	}
	if !IsErrKeyNotFound(err) {
		return nil, errors.NewSystemErrorWithOp("get export", "failed to read export", err)
	}

	key, err := r.resolvePrefix(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Get(key, doc); err != nil {
		return nil, errors.NewSystemErrorWithOp("get export", "failed to read export", err)
	}
	return doc, nil
}

func (r *ExportRepo) resolvePrefix(id string) (string, error) {
	keys, err := r.db.ListByPrefix(model.ExportKey(id))
	if err != nil {
		return "", errors.NewSystemErrorWithOp("get export", "failed to scan exports", err)
	}
	switch len(keys) {
	case 0:
		return "", errors.NotFound(errors.ErrExportNotFound, "id", id)
	case 1:
		return keys[0], nil
	default:
		return "", &errors.UserError{
			Message:    "ambiguous export ID",
			Field:      "id",
			Value:      id,
			Suggestion: "Use more characters of the ID.",
			Err:        errors.ErrExportNotFound,
		}
	}
}

// List returns all archived exports, newest first.
func (r *ExportRepo) List() ([]*model.ExportDocument, error) {
	docs, err := GetAllByPrefix(r.db, model.PrefixExport+":", func() *model.ExportDocument {
		return &model.ExportDocument{}
	})
	if err != nil {
		return nil, errors.NewSystemErrorWithOp("list exports", "failed to list exports", err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ExportedAt.After(docs[j].ExportedAt)
	})
	return docs, nil
}

// Latest returns the most recently saved export, or nil when the archive
// is empty.
func (r *ExportRepo) Latest() (*model.ExportDocument, error) {
	key, err := r.db.GetBytes(model.KeyLatest)
	if err != nil {
		if IsErrKeyNotFound(err) {
			return nil, nil
		}
		return nil, errors.NewSystemErrorWithOp("latest export", "failed to read latest export", err)
	}

	doc := &model.ExportDocument{}
	if err := r.db.Get(string(key), doc); err != nil {
		if IsErrKeyNotFound(err) {
			return nil, nil
		}
		return nil, errors.NewSystemErrorWithOp("latest export", "failed to read latest export", err)
	}
	return doc, nil
}

// Delete removes an export. If it was the latest, the next newest export
// becomes the latest.
func (r *ExportRepo) Delete(id string) (*model.ExportDocument, error) {
	doc, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	latest, err := r.db.GetBytes(model.KeyLatest)
	if err != nil && !IsErrKeyNotFound(err) {
		return nil, errors.NewSystemErrorWithOp("delete export", "failed to read latest export", err)
	}
	if string(latest) != doc.Key {
		if err := r.db.Delete(doc.Key); err != nil {
			return nil, errors.NewSystemErrorWithOp("delete export", "failed to delete export", err)
		}
		return doc, nil
	}

	if err := r.db.Delete(doc.Key, model.KeyLatest); err != nil {
		return nil, errors.NewSystemErrorWithOp("delete export", "failed to delete export", err)
	}
	remaining, err := r.List()
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		if err := r.db.SetBytes(model.KeyLatest, []byte(remaining[0].Key)); err != nil {
			return nil, errors.NewSystemErrorWithOp("delete export", "failed to update latest export", err)
		}
	}
	return doc, nil
}

// Count returns the number of archived exports.
func (r *ExportRepo) Count() (int, error) {
	keys, err := r.db.ListByPrefix(model.PrefixExport + ":")
	return len(keys), err
}
