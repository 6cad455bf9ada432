package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBuilderStartTagLowercasesName(t *testing.T) {
	b := NewTokenBuilder()
	b.BeginTag(false)
	for _, r := range "DiV" {
		b.AppendTagName(r)
	}
	tok := b.BuildTag()
	assert.Equal(t, startTagToken, tok.Type)
	assert.Equal(t, "div", tok.TagName)
}

func TestTokenBuilderDuplicateAttributeFirstWins(t *testing.T) {
	b := NewTokenBuilder()
	b.BeginTag(false)
	for _, r := range "div" {
		b.AppendTagName(r)
	}

	b.BeginAttribute()
	for _, r := range "a" {
		b.AppendAttrName(r)
	}
	for _, r := range "1" {
		b.AppendAttrValue(r)
	}
	dup := b.FinishAttribute()
	require.False(t, dup)

	b.BeginAttribute()
	for _, r := range "a" {
		b.AppendAttrName(r)
	}
	for _, r := range "2" {
		b.AppendAttrValue(r)
	}
	dup = b.FinishAttribute()
	assert.True(t, dup)

	tok := b.BuildTag()
	require.Len(t, tok.Attributes, 1)
	assert.Equal(t, Attr{Name: "a", Value: "1"}, tok.Attributes[0])
}

func TestTokenBuilderEndTagDropsAttributesAndSelfClosing(t *testing.T) {
	b := NewTokenBuilder()
	b.BeginTag(true)
	for _, r := range "p" {
		b.AppendTagName(r)
	}
	b.BeginAttribute()
	for _, r := range "x" {
		b.AppendAttrName(r)
	}
	b.FinishAttribute()
	b.SetSelfClosing()

	tok := b.BuildTag()
	assert.Equal(t, endTagToken, tok.Type)
	assert.Equal(t, "p", tok.TagName)
	assert.Empty(t, tok.Attributes)
	assert.False(t, tok.SelfClosing)
}

func TestTokenBuilderDoctypeMissingVsEmptyIdentifier(t *testing.T) {
	b := NewTokenBuilder()
	b.BeginDoctype()
	for _, r := range "html" {
		b.AppendDoctypeName(r)
	}
	b.EnsurePublicIdentifier()

	tok := b.BuildDoctype()
	require.NotNil(t, tok.DoctypeName)
	assert.Equal(t, "html", *tok.DoctypeName)
	require.NotNil(t, tok.PublicIdentifier)
	assert.Equal(t, "", *tok.PublicIdentifier)
	assert.Nil(t, tok.SystemIdentifier)
}

func TestTokenBuilderCommentAppendString(t *testing.T) {
	b := NewTokenBuilder()
	b.BeginComment("")
	b.AppendCommentString("hello")
	assert.Equal(t, "hello", b.BuildComment().CommentData)
}

func TestTokenBuilderCharRefCodeAccumulatesAndSaturates(t *testing.T) {
	b := NewTokenBuilder()
	b.ResetCharRefCode()
	for _, d := range []int{1, 2, 3} {
		b.AccumulateCharRefCode(d, 10)
	}
	assert.Equal(t, 123, b.CharRefCode())

	b.ResetCharRefCode()
	for i := 0; i < 10; i++ {
		b.AccumulateCharRefCode(9, 16)
	}
	assert.Equal(t, maxCharRefCode, b.CharRefCode())
}

func TestAppropriateEndTag(t *testing.T) {
	assert.True(t, appropriateEndTag("script", "script"))
	assert.False(t, appropriateEndTag("script", "style"))
	assert.False(t, appropriateEndTag("", "script"))
}

func TestTokenEqual(t *testing.T) {
	a := CharacterToken('x')
	b := CharacterToken('x')
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(CharacterToken('y')))

	s := "html"
	d1 := Token{Type: doctypeToken, DoctypeName: &s}
	d2 := Token{Type: doctypeToken, DoctypeName: &s}
	assert.True(t, d1.Equal(d2))
	assert.False(t, d1.Equal(Token{Type: doctypeToken}))
}
