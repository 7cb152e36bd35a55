package model

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"vobject/src-server/vobject"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DocumentIDCtxKeyType string

const DocumentIDCtxKey DocumentIDCtxKeyType = "document-ids"

// A stored vCard or iCalendar object. Content is always the normalized
// serialization of the parsed tree.
type Document struct {
	bun.BaseModel `bun:"table:documents"`

	ID      string `bun:"id,pk"`            // required
	RootTag string `bun:"root_tag,notnull"` // e.g. VCARD, VCALENDAR
	Content string `bun:"content,notnull"`  // required
	Hash    string `bun:"hash,notnull"`     // sha256 of Content

	SourceURL string `bun:"source_url"` // refreshed periodically when set

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`

	Properties []*DocumentProperty `bun:"rel:has-many,join:id=document_id"`
}

var _ bun.AfterDeleteHook = (*Document)(nil)

// Create a document holding the serialization of `component`. The ID is
// generated; call Upsert to persist it.
func NewDocument(component *vobject.Component) *Document {
	return &Document{
		ID:      uuid.NewString(),
		Content: vobject.WriteComponent(component),
	}
}

// Parse the stored content back into a tree
func (d *Document) Component() (*vobject.Component, error) {
	component, err := vobject.ParseComponent(d.Content)
	if err != nil {
		return nil, fmt.Errorf("(*Document).Component: %w", err)
	}
	return component, nil
}

// Normalize the content, then insert or update the document and rebuild its
// property index. Run it inside a transaction to keep both tables in sync.
func (d *Document) Upsert(ctx context.Context, db bun.IDB) error {
	component, err := vobject.ParseComponent(d.Content)
	if err != nil {
		return fmt.Errorf("(*Document).Upsert: %w", err)
	}
	d.Content = vobject.WriteComponent(component)
	d.RootTag = strings.ToUpper(component.Name)
	d.Hash = fmt.Sprintf("%x", sha256.Sum256([]byte(d.Content)))
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	var createdAt int64
	err = db.NewSelect().
		Model((*Document)(nil)).
		Column("created_at").
		Where("id = ?", d.ID).
		Scan(ctx, &createdAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("(*Document).Upsert: %w", err)
	}

	switch exists := err == nil; exists {
	case true:
		d.CreatedAt = createdAt
		d.UpdatedAt = time.Now().UTC().Unix()
		if _, err := db.NewUpdate().
			Model(d).
			Column("root_tag", "content", "hash", "source_url", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Document).Upsert: %w", err)
		}
		if _, err := db.NewDelete().
			Model((*DocumentProperty)(nil)).
			Where("document_id = ?", d.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Document).Upsert: can't clear property index: %w", err)
		}
	case false:
		if d.CreatedAt == 0 {
			d.CreatedAt = time.Now().UTC().Unix()
		}
		if _, err := db.NewInsert().
			Model(d).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Document).Upsert: %w", err)
		}
	}

	d.Properties = indexComponent(d.ID, component)
	for start := 0; start < len(d.Properties); start += insertBatchSize {
		end := min(start+insertBatchSize, len(d.Properties))
		batch := d.Properties[start:end]
		if _, err := db.NewInsert().
			Model(&batch).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Document).Upsert: can't index properties: %w", err)
		}
	}

	return nil
}

// Cleanup the property index of the deleted documents
func (d *Document) AfterDelete(ctx context.Context, query *bun.DeleteQuery) error {
	if query.DB() == nil {
		return fmt.Errorf("Document.AfterDelete: db is nil")
	}

	switch documentID := ctx.Value(DocumentIDCtxKey).(type) {
	case string:
		if documentID == "" {
			return fmt.Errorf("Document.AfterDelete: document id is blank")
		}
		if _, err := query.DB().NewDelete().
			Model((*DocumentProperty)(nil)).
			Where("document_id = ?", documentID).
			Exec(ctx); err != nil {
			return fmt.Errorf("Document.AfterDelete: can't delete properties: %w", err)
		}
	case []string:
		if len(documentID) == 0 {
			return fmt.Errorf("Document.AfterDelete: document ids are empty")
		}
		if _, err := query.DB().NewDelete().
			Model((*DocumentProperty)(nil)).
			Where("document_id IN (?)", bun.In(documentID)).
			Exec(ctx); err != nil {
			return fmt.Errorf("Document.AfterDelete: can't delete properties: %w", err)
		}
	case nil:
		return fmt.Errorf("Document.AfterDelete: document id is nil")
	default:
		return fmt.Errorf("Document.AfterDelete: wrong document id type | type=%T", documentID)
	}

	return nil
}

// Get a document by ID. The error wraps sql.ErrNoRows when it doesn't exist.
func GetDocument(ctx context.Context, db bun.IDB, id string) (*Document, error) {
	document := new(Document)
	if err := db.NewSelect().
		Model(document).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GetDocument: %w", err)
	}
	return document, nil
}

// Get a stored document and parse it
func LoadComponent(ctx context.Context, db bun.IDB, id string) (*vobject.Component, error) {
	document, err := GetDocument(ctx, db, id)
	if err != nil {
		return nil, fmt.Errorf("LoadComponent: %w", err)
	}
	return document.Component()
}

// Get every document, oldest first, without content
func ListDocuments(ctx context.Context, db bun.IDB) ([]*Document, error) {
	documents := make([]*Document, 0)
	if err := db.NewSelect().
		Model(&documents).
		Column("id", "root_tag", "hash", "source_url", "created_at", "updated_at").
		Order("created_at ASC", "id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListDocuments: %w", err)
	}
	return documents, nil
}

// Get the documents imported from a URL, without content
func ListSourcedDocuments(ctx context.Context, db bun.IDB) ([]*Document, error) {
	documents := make([]*Document, 0)
	if err := db.NewSelect().
		Model(&documents).
		Column("id", "hash", "source_url", "created_at").
		Where("source_url LIKE ? OR source_url LIKE ?", "http://%", "https://%").
		Order("created_at ASC", "id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListSourcedDocuments: %w", err)
	}
	return documents, nil
}

// Get the documents having at least one property named `name`
// (case-insensitive) whose unescaped value equals `value`, oldest first
func FindByProperty(ctx context.Context, db bun.IDB, name, value string) ([]*Document, error) {
	documents := make([]*Document, 0)
	if err := db.NewSelect().
		Model(&documents).
		Where("id IN (?)", db.NewSelect().
			Model((*DocumentProperty)(nil)).
			Column("document_id").
			Where("name = ?", strings.ToUpper(name)).
			Where("value = ?", value)).
		Order("created_at ASC", "id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("FindByProperty: %w", err)
	}
	return documents, nil
}

// Delete documents and, through AfterDelete, their property index.
// Returns the number of deleted documents.
func DeleteDocuments(ctx context.Context, db bun.IDB, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := db.NewDelete().
		Model((*Document)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(context.WithValue(ctx, DocumentIDCtxKey, ids))
	if err != nil {
		return 0, fmt.Errorf("DeleteDocuments: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteDocuments: %w", err)
	}
	return deleted, nil
}
