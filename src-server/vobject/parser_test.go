package vobject_test

import (
	"errors"
	"testing"
	"vobject/src-server/vobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProperty(t *testing.T) {
	property, err := vobject.ParseProperty(`FN;TYPE=work:John\, Doe`)
	require.NoError(t, err)

	assert.Equal(t, "FN", property.Name)
	assert.Equal(t, "John, Doe", property.RawValue)
	assert.Equal(t, vobject.Parameters{{Key: "TYPE", Value: "work"}}, property.Params)

	value, ok := property.Param("type")
	assert.True(t, ok)
	assert.Equal(t, "work", value)
}

func TestParsePropertyValueWithColons(t *testing.T) {
	property, err := vobject.ParseProperty("URL:https://example.com:8080/a")
	require.NoError(t, err)
	assert.Equal(t, "URL", property.Name)
	assert.Equal(t, "https://example.com:8080/a", property.RawValue)
	assert.Nil(t, property.Params)
}

func TestParsePropertyQuotedParameter(t *testing.T) {
	property, err := vobject.ParseProperty(`ATTENDEE;DELEGATED-FROM="mailto:a@x";CN="Doe; John":mailto:b@x`)
	require.NoError(t, err)

	assert.Equal(t, "mailto:b@x", property.RawValue)
	assert.Equal(t, vobject.Parameters{
		{Key: "DELEGATED-FROM", Value: "mailto:a@x"},
		{Key: "CN", Value: "Doe; John"},
	}, property.Params)
}

func TestParsePropertyParameters(t *testing.T) {
	property, err := vobject.ParseProperty(`TEL;WORK;TYPE=voice;type=cell:+1 555`)
	require.NoError(t, err)

	// a key without value is kept with an empty value, a repeated key
	// (any case) replaces the earlier value
	assert.Equal(t, vobject.Parameters{
		{Key: "WORK", Value: ""},
		{Key: "TYPE", Value: "cell"},
	}, property.Params)
}

func TestParsePropertyEscapedColon(t *testing.T) {
	property, err := vobject.ParseProperty(`X-A\:B:value`)
	require.NoError(t, err)
	assert.Equal(t, `X-A\:B`, property.Name)
	assert.Equal(t, "value", property.RawValue)
}

func TestParsePropertyErrors(t *testing.T) {
	for _, line := range []string{
		"NO COLON HERE",
		":value without name",
		"X;=v:value",
		"",
	} {
		_, err := vobject.ParseProperty(line)
		require.Error(t, err, line)
		assert.True(t, errors.Is(err, vobject.ErrMalformedLine), line)
		assert.True(t, errors.Is(err, vobject.ErrParser), line)

		var customErr *vobject.CustomError
		require.True(t, errors.As(err, &customErr))
		content, ok := customErr.Arg("content")
		assert.True(t, ok)
		assert.Equal(t, line, content)
	}
}

func TestMalformedLineErrorNamesContent(t *testing.T) {
	_, err := vobject.ParseComponent("BEGIN:VCARD\r\nthis line is broken\r\nEND:VCARD\r\n")
	require.ErrorIs(t, err, vobject.ErrMalformedLine)
	assert.Contains(t, err.Error(), "this line is broken")
	assert.Contains(t, err.Error(), `line: "2"`)
}

func TestFormatProperty(t *testing.T) {
	property := vobject.NewProperty("FN", "John, Doe").
		WithParam("TYPE", "work").
		WithParam("X-NOTE", "a:b").
		WithParam("PREF", "")

	assert.Equal(t, `FN;TYPE=work;X-NOTE="a:b";PREF:John\, Doe`, vobject.FormatProperty(property))
}

func TestWithParamDoesNotAlias(t *testing.T) {
	base := vobject.NewProperty("EMAIL", "a@x").WithParam("TYPE", "home")
	changed := base.WithParam("TYPE", "work")

	value, _ := base.Param("TYPE")
	assert.Equal(t, "home", value)
	value, _ = changed.Param("TYPE")
	assert.Equal(t, "work", value)
}

func TestParsePropertyCaretEncoding(t *testing.T) {
	property, err := vobject.ParseProperty("ATTENDEE;CN=George Herman ^'Babe^' Ruth;X-ADDR=\"115 Federal St^nPittsburgh\";X-RAW=a^b^^c:mailto:x")
	require.NoError(t, err)

	cn, _ := property.Param("CN")
	assert.Equal(t, `George Herman "Babe" Ruth`, cn)
	addr, _ := property.Param("X-ADDR")
	assert.Equal(t, "115 Federal St\nPittsburgh", addr)
	raw, _ := property.Param("X-RAW")
	assert.Equal(t, "a^b^c", raw)
}
