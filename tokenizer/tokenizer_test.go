package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, input string, opts ...Option) ([]Token, []ParseError) {
	t.Helper()
	var errs []ParseError
	opts = append(opts, WithErrorSink(func(pe ParseError) { errs = append(errs, pe) }))
	tok := New(strings.NewReader(input), opts...)

	var toks []Token
	for tok.Next() {
		tk, err := tok.Token()
		require.NoError(t, err)
		toks = append(toks, tk)
	}
	return toks, errs
}

func assertTokensEqual(t *testing.T, want, got []Token) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Truef(t, want[i].Equal(got[i]), "token %d: want %+v, got %+v", i, want[i], got[i])
	}
}

func startTag(name string, attrs []Attr, selfClosing bool) Token {
	return Token{Type: startTagToken, TagName: name, Attributes: attrs, SelfClosing: selfClosing}
}

func endTag(name string) Token {
	return Token{Type: endTagToken, TagName: name}
}

func comment(data string) Token {
	return Token{Type: commentToken, CommentData: data}
}

func doctype(name, public, system string, hasPublic, hasSystem, forceQuirks bool) Token {
	tok := Token{Type: doctypeToken, ForceQuirks: forceQuirks}
	n := name
	tok.DoctypeName = &n
	if hasPublic {
		tok.PublicIdentifier = &public
	}
	if hasSystem {
		tok.SystemIdentifier = &system
	}
	return tok
}

func TestScenarioSimpleElement(t *testing.T) {
	toks, errs := drain(t, "<p>hi</p>")
	assertTokensEqual(t, []Token{
		startTag("p", nil, false),
		CharacterToken('h'),
		CharacterToken('i'),
		endTag("p"),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

func TestScenarioUppercaseTagAndAttribute(t *testing.T) {
	toks, errs := drain(t, `<P CLASS="a">x`)
	assertTokensEqual(t, []Token{
		startTag("p", []Attr{{Name: "class", Value: "a"}}, false),
		CharacterToken('x'),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

func TestScenarioSelfClosingTag(t *testing.T) {
	toks, errs := drain(t, "<br/>")
	assertTokensEqual(t, []Token{
		startTag("br", nil, true),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

func TestScenarioComment(t *testing.T) {
	toks, errs := drain(t, "<!--a-->")
	assertTokensEqual(t, []Token{
		comment("a"),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

func TestScenarioDuplicateAttribute(t *testing.T) {
	toks, errs := drain(t, "<div a=1 a=2>")
	assertTokensEqual(t, []Token{
		startTag("div", []Attr{{Name: "a", Value: "1"}}, false),
		EndOfFileToken(),
	}, toks)
	require.Len(t, errs, 1)
	assert.Equal(t, DuplicateAttribute, errs[0].Kind)
}

func TestScenarioNamedCharacterReference(t *testing.T) {
	toks, errs := drain(t, "a&amp;b")
	assertTokensEqual(t, []Token{
		CharacterToken('a'),
		CharacterToken('&'),
		CharacterToken('b'),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

func TestScenarioDoctype(t *testing.T) {
	toks, errs := drain(t, "<!DOCTYPE html>")
	assertTokensEqual(t, []Token{
		doctype("html", "", "", false, false, false),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

// "<\0>" exercises WHATWG's TagOpen default arm (emit '<', reconsume in
// Data) followed by Data's own NUL handling (emit the NUL literally, not
// U+FFFD).
func TestScenarioNullInTagOpen(t *testing.T) {
	toks, errs := drain(t, "<\x00>")
	assertTokensEqual(t, []Token{
		CharacterToken('<'),
		CharacterToken('\x00'),
		CharacterToken('>'),
		EndOfFileToken(),
	}, toks)
	require.Len(t, errs, 2)
	assert.Equal(t, InvalidFirstCharacterOfTagName, errs[0].Kind)
	assert.Equal(t, UnexpectedNullCharacter, errs[1].Kind)
}

func TestEndOfFileIsAlwaysLastAndUnique(t *testing.T) {
	for _, in := range []string{"", "abc", "<p>x</p>", "<!--c-->", "<!DOCTYPE html>", "&amp;"} {
		toks, _ := drain(t, in)
		require.NotEmpty(t, toks)
		for _, tk := range toks[:len(toks)-1] {
			assert.NotEqual(t, endOfFileToken, tk.Type)
		}
		assert.Equal(t, endOfFileToken, toks[len(toks)-1].Type)
	}
}

func TestEndTagNeverCarriesAttributesOrSelfClosing(t *testing.T) {
	toks, _ := drain(t, `<p></p class="x" />`)
	var sawEnd bool
	for _, tk := range toks {
		if tk.Type == endTagToken {
			sawEnd = true
			assert.Empty(t, tk.Attributes)
			assert.False(t, tk.SelfClosing)
		}
	}
	assert.True(t, sawEnd)
}

// drainSwitchingOn behaves like drain, except that immediately after a
// StartTag token named switchOn is produced, it calls SetState(enter) on
// the tokenizer. The tokenizer never infers a tag's content model on its
// own, so tests that exercise RCDATA/RAWTEXT/ScriptData drive the switch
// themselves, exactly as a caller embedding this package would.
func drainSwitchingOn(t *testing.T, input, switchOn string, enter State, opts ...Option) ([]Token, []ParseError) {
	t.Helper()
	var errs []ParseError
	opts = append(opts, WithErrorSink(func(pe ParseError) { errs = append(errs, pe) }))
	tok := New(strings.NewReader(input), opts...)

	var toks []Token
	for tok.Next() {
		tk, err := tok.Token()
		require.NoError(t, err)
		toks = append(toks, tk)
		if tk.Type == startTagToken && tk.TagName == switchOn {
			tok.SetState(enter)
		}
	}
	return toks, errs
}

func TestAppropriateEndTagRetainedAcrossRawtext(t *testing.T) {
	toks, _ := drainSwitchingOn(t, "<script>1;</script>a", "script", ScriptDataState)
	assertTokensEqual(t, []Token{
		startTag("script", nil, false),
		CharacterToken('1'), CharacterToken(';'),
		endTag("script"),
		CharacterToken('a'),
		EndOfFileToken(),
	}, toks)
}

func TestInappropriateEndTagInRawtextIsLiteral(t *testing.T) {
	toks, _ := drainSwitchingOn(t, "<style>a</title>b</style>", "style", RawTextState)
	var gotEndStyle bool
	for _, tk := range toks {
		if tk.Type == endTagToken && tk.TagName == "title" {
			t.Fatalf("unexpected end tag %q emitted inside RAWTEXT", tk.TagName)
		}
		if tk.Type == endTagToken && tk.TagName == "style" {
			gotEndStyle = true
		}
	}
	assert.True(t, gotEndStyle)
}

func TestRcDataExpandsCharacterReferences(t *testing.T) {
	toks, errs := drainSwitchingOn(t, "<title>a&amp;b</title>", "title", RCDataState)
	assertTokensEqual(t, []Token{
		startTag("title", nil, false),
		CharacterToken('a'), CharacterToken('&'), CharacterToken('b'),
		endTag("title"),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

func TestScriptDataEscapedSkipsTags(t *testing.T) {
	toks, _ := drainSwitchingOn(t, "<script><!--var x = '<p>';--></script>", "script", ScriptDataState)
	var chars []rune
	for _, tk := range toks {
		if tk.Type == characterToken {
			chars = append(chars, tk.Data)
		}
	}
	assert.Contains(t, string(chars), "<p>")
}

func TestCDATASectionRequiresPredicate(t *testing.T) {
	toks, errs := drain(t, "<![CDATA[x]]>", WithCDATAAllowed(func() bool { return true }))
	assertTokensEqual(t, []Token{
		CharacterToken('x'),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

func TestCDATASectionWithoutPredicateBecomesBogusComment(t *testing.T) {
	toks, errs := drain(t, "<![CDATA[x]]>")
	require.Len(t, toks, 2)
	assert.Equal(t, commentToken, toks[0].Type)
	assert.Equal(t, "[CDATA[x]]", toks[0].CommentData)
	require.Len(t, errs, 1)
	assert.Equal(t, CDataInHtmlContent, errs[0].Kind)
}

func TestNumericCharacterReferenceDecimalAndHex(t *testing.T) {
	toks, errs := drain(t, "&#65;&#x42;")
	assertTokensEqual(t, []Token{
		CharacterToken('A'),
		CharacterToken('B'),
		EndOfFileToken(),
	}, toks)
	assert.Empty(t, errs)
}

func TestNumericCharacterReferenceWithoutSemicolonIsReconsumed(t *testing.T) {
	toks, errs := drain(t, "&#65x")
	assertTokensEqual(t, []Token{
		CharacterToken('A'),
		CharacterToken('x'),
		EndOfFileToken(),
	}, toks)
	require.Len(t, errs, 1)
	assert.Equal(t, MissingSemicolonAfterCharacterReference, errs[0].Kind)
}

func TestNumericCharacterReferenceNullBecomesReplacementChar(t *testing.T) {
	toks, errs := drain(t, "&#0;")
	assertTokensEqual(t, []Token{
		CharacterToken('�'),
		EndOfFileToken(),
	}, toks)
	require.Len(t, errs, 1)
	assert.Equal(t, NullCharacterReference, errs[0].Kind)
}

func TestNumericCharacterReferenceControlUsesC1Table(t *testing.T) {
	toks, errs := drain(t, "&#128;")
	assertTokensEqual(t, []Token{
		CharacterToken(0x20AC),
		EndOfFileToken(),
	}, toks)
	require.Len(t, errs, 1)
	assert.Equal(t, ControlCharacterReference, errs[0].Kind)
}

func TestAmbiguousAmpersandNoMatch(t *testing.T) {
	toks, _ := drain(t, "&notareference;")
	require.NotEmpty(t, toks)
	assert.Equal(t, endOfFileToken, toks[len(toks)-1].Type)
}

func TestCharacterReferenceInAttributeWithoutSemicolonBeforeAlnumIsLiteral(t *testing.T) {
	toks, errs := drain(t, `<a href="?a=b&amp=1">`)
	require.Len(t, toks, 2)
	require.Equal(t, startTagToken, toks[0].Type)
	require.Len(t, toks[0].Attributes, 1)
	assert.Equal(t, "?a=b&amp=1", toks[0].Attributes[0].Value)
	assert.Empty(t, errs)
}

func TestCharacterReferenceInAttributeWithoutSemicolonAtEOFExpandsNotLiteral(t *testing.T) {
	toks, errs := drain(t, `<a b="&amp`)
	assertTokensEqual(t, []Token{EndOfFileToken()}, toks)
	require.Len(t, errs, 2)
	assert.Equal(t, MissingSemicolonAfterCharacterReference, errs[0].Kind)
	assert.Equal(t, EofInTag, errs[1].Kind)
}

func TestMalformedUTF8ReportsFatalError(t *testing.T) {
	var errs []ParseError
	tok := New(strings.NewReader("ab\xffcd"), WithErrorSink(func(pe ParseError) { errs = append(errs, pe) }))

	var toks []Token
	var lastErr error
	for tok.Next() {
		tk, err := tok.Token()
		toks = append(toks, tk)
		if err != nil {
			lastErr = err
			break
		}
	}

	require.NotEmpty(t, toks)
	assert.Equal(t, endOfFileToken, toks[len(toks)-1].Type)
	require.Error(t, lastErr)
	assert.False(t, tok.Next())

	require.Len(t, errs, 1)
	assert.Equal(t, MalformedInput, errs[0].Kind)
}

func TestWithInitialStateStartsInRawtext(t *testing.T) {
	toks, _ := drain(t, "raw</script>", WithInitialState(ScriptDataState))
	require.NotEmpty(t, toks)
	require.Equal(t, characterToken, toks[0].Type)
	assert.Equal(t, 'r', toks[0].Data)
}

func TestNextFalseAfterEndOfFile(t *testing.T) {
	tok := New(strings.NewReader("a"))
	require.True(t, tok.Next())
	_, err := tok.Token()
	require.NoError(t, err)
	require.True(t, tok.Next())
	last, err := tok.Token()
	require.NoError(t, err)
	assert.Equal(t, endOfFileToken, last.Type)
	assert.False(t, tok.Next())
}
