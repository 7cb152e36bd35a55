package model_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"vobject/src-server/model"
	"vobject/src-server/vobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })

	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	// idempotent
	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	return bundb
}

const testCard = "BEGIN:VCARD\nversion:4.0\nFN:Jane Doe\nEMAIL;TYPE=work:jane@example.com\nNOTE:one\\, two\nEND:VCARD\n"

const testCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\n" +
	"BEGIN:VEVENT\r\nUID:a@test\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nUID:b@test\r\nBEGIN:VALARM\r\nACTION:DISPLAY\r\nEND:VALARM\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestDocument(t *testing.T) {
	ctx := context.Background()
	bundb := newTestDB(t)

	// insert normalizes and indexes
	document := &model.Document{Content: testCard}
	require.NoError(t, document.Upsert(ctx, bundb))
	assert.NotEmpty(t, document.ID)
	assert.Equal(t, "VCARD", document.RootTag)
	assert.Len(t, document.Hash, 64)
	assert.True(t, strings.HasSuffix(document.Content, "END:VCARD\r\n"))
	assert.Contains(t, document.Content, "NOTE:one\\, two\r\n")
	assert.NotZero(t, document.CreatedAt)

	// case: load it back
	func() {
		component, err := model.LoadComponent(ctx, bundb, document.ID)
		require.NoError(t, err)
		note, ok := component.GetOnly("note")
		require.True(t, ok)
		assert.Equal(t, "one, two", note.RawValue)
	}()

	// case: search by unescaped value, name is case-insensitive
	func() {
		found, err := model.FindByProperty(ctx, bundb, "email", "jane@example.com")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, document.ID, found[0].ID)

		found, err = model.FindByProperty(ctx, bundb, "NOTE", "one, two")
		require.NoError(t, err)
		assert.Len(t, found, 1)

		found, err = model.FindByProperty(ctx, bundb, "EMAIL", "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, found)
	}()

	// case: update replaces content and index, keeps the creation time
	func() {
		replacement := &model.Document{
			ID:      document.ID,
			Content: strings.Replace(testCard, "jane@example.com", "doe@example.com", 1),
		}
		require.NoError(t, replacement.Upsert(ctx, bundb))
		assert.NotZero(t, replacement.UpdatedAt)
		assert.Equal(t, document.CreatedAt, replacement.CreatedAt)

		stored, err := model.GetDocument(ctx, bundb, document.ID)
		require.NoError(t, err)
		assert.Equal(t, document.CreatedAt, stored.CreatedAt)

		found, err := model.FindByProperty(ctx, bundb, "EMAIL", "jane@example.com")
		require.NoError(t, err)
		assert.Empty(t, found)
		found, err = model.FindByProperty(ctx, bundb, "EMAIL", "doe@example.com")
		require.NoError(t, err)
		assert.Len(t, found, 1)

		count, err := bundb.NewSelect().
			Model((*model.DocumentProperty)(nil)).
			Where("document_id = ?", document.ID).
			Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	}()

	// case: delete document and property index gone
	func() {
		deleted, err := model.DeleteDocuments(ctx, bundb, document.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		count, err := bundb.NewSelect().
			Model((*model.DocumentProperty)(nil)).
			Where("document_id = ?", document.ID).
			Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		_, err = model.GetDocument(ctx, bundb, document.ID)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	}()
}

func TestDocumentPropertyPaths(t *testing.T) {
	ctx := context.Background()
	bundb := newTestDB(t)

	document := &model.Document{Content: testCalendar}
	require.NoError(t, document.Upsert(ctx, bundb))

	paths := make(map[string]string)
	for _, property := range document.Properties {
		paths[property.Name+"="+property.Value] = property.Path
	}
	assert.Equal(t, "VCALENDAR", paths["PRODID=-//Test//EN"])
	assert.Equal(t, "VCALENDAR/VEVENT[0]", paths["UID=a@test"])
	assert.Equal(t, "VCALENDAR/VEVENT[1]", paths["UID=b@test"])
	assert.Equal(t, "VCALENDAR/VEVENT[1]/VALARM[0]", paths["ACTION=DISPLAY"])

	documents, err := model.ListDocuments(ctx, bundb)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "VCALENDAR", documents[0].RootTag)
}

func TestDocumentUpsertRejectsInvalidContent(t *testing.T) {
	ctx := context.Background()
	bundb := newTestDB(t)

	for _, content := range []string{
		"",
		"BEGIN:VCARD\r\nFN:x\r\n",
		"BEGIN:VCARD\r\nEND:VCALENDAR\r\n",
	} {
		err := (&model.Document{Content: content}).Upsert(ctx, bundb)
		assert.Error(t, err)
	}
	err := (&model.Document{Content: "BEGIN:VCARD\r\nFN:x\r\n"}).Upsert(ctx, bundb)
	assert.ErrorIs(t, err, vobject.ErrUnterminated)

	documents, err := model.ListDocuments(ctx, bundb)
	require.NoError(t, err)
	assert.Empty(t, documents)
}

func TestNewDocument(t *testing.T) {
	ctx := context.Background()
	bundb := newTestDB(t)

	component := vobject.NewComponent("VCARD").
		Push(vobject.NewProperty("VERSION", "4.0")).
		Push(vobject.NewProperty("FN", "John"))
	document := model.NewDocument(component)
	require.NoError(t, document.Upsert(ctx, bundb))

	loaded, err := model.LoadComponent(ctx, bundb, document.ID)
	require.NoError(t, err)
	assert.Equal(t, component, loaded)
}

func TestDocumentKeepsAwkwardParameters(t *testing.T) {
	ctx := context.Background()
	bundb := newTestDB(t)

	document := &model.Document{Content: "BEGIN:VCARD\r\nVERSION:4.0\r\nFN;X-DIR=\"C:\\temp\\\":Jane\r\nEND:VCARD\r\n"}
	require.NoError(t, document.Upsert(ctx, bundb))

	component, err := model.LoadComponent(ctx, bundb, document.ID)
	require.NoError(t, err)
	fn, ok := component.GetOnly("FN")
	require.True(t, ok)
	dir, _ := fn.Param("X-DIR")
	assert.Equal(t, `C:\temp\`, dir)
	assert.Equal(t, "Jane", fn.RawValue)
}
