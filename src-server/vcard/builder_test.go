package vcard_test

import (
	"strings"
	"testing"
	"vobject/src-server/vcard"
	"vobject/src-server/vobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	card := vcard.NewBuilder().
		WithFullName("Jane Doe").
		WithName("Doe", "Jane", "", "", "").
		WithEmail("a@x", vobject.Parameter{Key: "TYPE", Value: "work"}).
		WithEmail("b@x").
		WithOrg("Example Inc.", "Research").
		WithNote("multi\nline, note").
		Build()

	version, err := card.Version()
	require.NoError(t, err)
	assert.Equal(t, vcard.DefaultVersion, version)

	uid, ok := card.Uid()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(uid.Raw(), "urn:uuid:"))

	name, err := card.Name()
	require.NoError(t, err)
	assert.Equal(t, "Doe;Jane;;;", name.Plain())

	// serialized and parsed back, nothing changes
	parsed, err := vcard.Build(card.String())
	require.NoError(t, err)
	assert.Equal(t, card.Component(), parsed.Component())

	emails := parsed.Emails()
	require.Len(t, emails, 2)
	assert.Equal(t, []string{"work"}, emails[0].Types())
	assert.Equal(t, []string{"Example Inc.", "Research"}, parsed.Orgs()[0].Units())
}

func TestBuilderVersionStaysFirst(t *testing.T) {
	card := vcard.NewBuilder().
		WithFullName("x").
		WithVersion("3.0").
		WithUid("fixed").
		Build()

	properties := card.Component().Properties()
	require.Len(t, properties, 3)
	assert.Equal(t, "VERSION", properties[0].Name)
	assert.Equal(t, "3.0", properties[0].RawValue)

	uid, _ := card.Uid()
	assert.Equal(t, "fixed", uid.Raw())
}
