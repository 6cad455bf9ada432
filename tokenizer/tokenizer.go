package tokenizer

import (
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

// State identifies the current state of the tokenization state machine.
// The zero value is DataState, the machine's initial state.
type State int

const (
	DataState State = iota
	RCDataState
	RawTextState
	ScriptDataState
	PLAINTextState
	TagOpenState
	EndTagOpenState
	TagNameState
	RCDataLessThanSignState
	RCDataEndTagOpenState
	RCDataEndTagNameState
	RawTextLessThanSignState
	RawTextEndTagOpenState
	RawTextEndTagNameState
	ScriptDataLessThanSignState
	ScriptDataEndTagOpenState
	ScriptDataEndTagNameState
	ScriptDataEscapeStartState
	ScriptDataEscapeStartDashState
	ScriptDataEscapedState
	ScriptDataEscapedDashState
	ScriptDataEscapedDashDashState
	ScriptDataEscapedLessThanSignState
	ScriptDataEscapedEndTagOpenState
	ScriptDataEscapedEndTagNameState
	ScriptDataDoubleEscapeStartState
	ScriptDataDoubleEscapedState
	ScriptDataDoubleEscapedDashState
	ScriptDataDoubleEscapedDashDashState
	ScriptDataDoubleEscapedLessThanSignState
	ScriptDataDoubleEscapeEndState
	BeforeAttributeNameState
	AttributeNameState
	AfterAttributeNameState
	BeforeAttributeValueState
	AttributeValueDoubleQuotedState
	AttributeValueSingleQuotedState
	AttributeValueUnquotedState
	AfterAttributeValueQuotedState
	SelfClosingStartTagState
	BogusCommentState
	MarkupDeclarationOpenState
	CommentStartState
	CommentStartDashState
	CommentState
	CommentLessThanSignState
	CommentLessThanSignBangState
	CommentLessThanSignBangDashState
	CommentLessThanSignBangDashDashState
	CommentEndDashState
	CommentEndState
	CommentEndBangState
	DoctypeState
	BeforeDoctypeNameState
	DoctypeNameState
	AfterDoctypeNameState
	AfterDoctypePublicKeywordState
	BeforeDoctypePublicIdentifierState
	DoctypePublicIdentifierDoubleQuotedState
	DoctypePublicIdentifierSingleQuotedState
	AfterDoctypePublicIdentifierState
	BetweenDoctypePublicAndSystemIdentifiersState
	AfterDoctypeSystemKeywordState
	BeforeDoctypeSystemIdentifierState
	DoctypeSystemIdentifierDoubleQuotedState
	DoctypeSystemIdentifierSingleQuotedState
	AfterDoctypeSystemIdentifierState
	BogusDoctypeState
	CDATASectionState
	CDATASectionBracketState
	CDATASectionEndState
	CharacterReferenceState
	NamedCharacterReferenceState
	AmbiguousAmpersandState
	NumericCharacterReferenceState
	HexadecimalCharacterReferenceStartState
	DecimalCharacterReferenceStartState
	HexadecimalCharacterReferenceState
	DecimalCharacterReferenceState
	NumericCharacterReferenceEndState
)

var stateNames = [...]string{
	"Data", "RCData", "RawText", "ScriptData", "PLAINText",
	"TagOpen", "EndTagOpen", "TagName",
	"RCDataLessThanSign", "RCDataEndTagOpen", "RCDataEndTagName",
	"RawTextLessThanSign", "RawTextEndTagOpen", "RawTextEndTagName",
	"ScriptDataLessThanSign", "ScriptDataEndTagOpen", "ScriptDataEndTagName",
	"ScriptDataEscapeStart", "ScriptDataEscapeStartDash",
	"ScriptDataEscaped", "ScriptDataEscapedDash", "ScriptDataEscapedDashDash",
	"ScriptDataEscapedLessThanSign", "ScriptDataEscapedEndTagOpen", "ScriptDataEscapedEndTagName",
	"ScriptDataDoubleEscapeStart", "ScriptDataDoubleEscaped", "ScriptDataDoubleEscapedDash",
	"ScriptDataDoubleEscapedDashDash", "ScriptDataDoubleEscapedLessThanSign", "ScriptDataDoubleEscapeEnd",
	"BeforeAttributeName", "AttributeName", "AfterAttributeName",
	"BeforeAttributeValue", "AttributeValueDoubleQuoted", "AttributeValueSingleQuoted",
	"AttributeValueUnquoted", "AfterAttributeValueQuoted",
	"SelfClosingStartTag", "BogusComment", "MarkupDeclarationOpen",
	"CommentStart", "CommentStartDash", "Comment",
	"CommentLessThanSign", "CommentLessThanSignBang", "CommentLessThanSignBangDash", "CommentLessThanSignBangDashDash",
	"CommentEndDash", "CommentEnd", "CommentEndBang",
	"Doctype", "BeforeDoctypeName", "DoctypeName", "AfterDoctypeName",
	"AfterDoctypePublicKeyword", "BeforeDoctypePublicIdentifier",
	"DoctypePublicIdentifierDoubleQuoted", "DoctypePublicIdentifierSingleQuoted",
	"AfterDoctypePublicIdentifier", "BetweenDoctypePublicAndSystemIdentifiers",
	"AfterDoctypeSystemKeyword", "BeforeDoctypeSystemIdentifier",
	"DoctypeSystemIdentifierDoubleQuoted", "DoctypeSystemIdentifierSingleQuoted",
	"AfterDoctypeSystemIdentifier", "BogusDoctype",
	"CDATASection", "CDATASectionBracket", "CDATASectionEnd",
	"CharacterReference", "NamedCharacterReference", "AmbiguousAmpersand",
	"NumericCharacterReference", "HexadecimalCharacterReferenceStart", "DecimalCharacterReferenceStart",
	"HexadecimalCharacterReference", "DecimalCharacterReference", "NumericCharacterReferenceEnd",
}

func (s State) String() string {
	if int(s) < 0 || int(s) >= len(stateNames) {
		return "State(?)"
	}
	return stateNames[s] + " state"
}

// stateHandler is the signature every state-dispatch function shares: it
// receives the current code point (meaningless when eof is true) and
// returns whether the same code point must be reconsumed in the returned
// state.
type stateHandler func(r rune, eof bool) (reconsume bool, next State)

// Option configures a Tokenizer at construction time.
type Option func(*Tokenizer)

// WithErrorSink registers the callback that receives parse errors as
// they are discovered. Without this option, parse errors are silently
// discarded.
func WithErrorSink(sink ErrorSink) Option {
	return func(t *Tokenizer) { t.sink = sink }
}

// WithLogger registers a logrus.Ext1FieldLogger (a logrus.FieldLogger with
// the Trace-level methods added) for Trace/Debug-level diagnostic output. Without this option, logging is a no-op logger.
func WithLogger(log logrus.Ext1FieldLogger) Option {
	return func(t *Tokenizer) { t.log = log }
}

// WithNamedCharacterReferences overrides the table used for named
// character reference expansion. Without this option,
// DefaultNamedCharacterReferences is used.
func WithNamedCharacterReferences(table NamedCharacterReferences) Option {
	return func(t *Tokenizer) { t.names = table }
}

// WithCDATAAllowed registers the predicate WHATWG calls the "adjusted
// current node is not in the HTML namespace" check, consulted on
// MarkupDeclarationOpen when the literal "[CDATA[" is seen. Without this
// option, CDATA sections are never entered (the predicate always reports
// false), matching a tokenizer with no tree-construction collaborator
// attached.
func WithCDATAAllowed(allowed func() bool) Option {
	return func(t *Tokenizer) { t.cdataAllowed = allowed }
}

// WithInitialState overrides the state the machine starts in. Without
// this option, tokenization begins in DataState. This exists for
// compliance-suite-style tests that seed the tokenizer directly into
// RAWTEXT/RCDATA/PLAINTEXT/ScriptData/CDATASection to test those regions
// in isolation.
func WithInitialState(s State) Option {
	return func(t *Tokenizer) { t.state = s }
}

// Tokenizer pulls code points from a Reader and produces a lazy sequence
// of Tokens.
type Tokenizer struct {
	r *Reader

	state, returnState State
	lastStartTagName    string

	tb *TokenBuilder

	cdataAllowed func() bool
	names        NamedCharacterReferences
	sink         ErrorSink
	log          logrus.Ext1FieldLogger

	pending []Token
	done    bool
}

// New constructs a Tokenizer reading from src.
func New(src io.Reader, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		r:     NewReader(src),
		state: DataState,
		tb:    NewTokenBuilder(),
		names: DefaultNamedCharacterReferences(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.cdataAllowed == nil {
		t.cdataAllowed = func() bool { return false }
	}
	if t.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		t.log = l
	}
	return t
}

// Next reports whether Token has more tokens to produce. It returns false
// only after the terminating EndOfFile token has been returned by Token.
func (t *Tokenizer) Next() bool {
	return !t.done
}

// SetState switches the tokenizer's state between Token calls. This is the
// hook a tree-construction collaborator uses to put the tokenizer into
// RCDataState/RawTextState/ScriptDataState/PLAINTextState after consuming a
// StartTag named "title"/"textarea" (RCDATA), "style"/"xmp"/"iframe"/
// "noembed"/"noframes" (RAWTEXT), "script" (ScriptData), or "plaintext"
// (PLAINTEXT). The tokenizer never makes this decision unassisted — it has
// no notion of which tags carry which content model.
func (t *Tokenizer) SetState(s State) {
	t.state = s
}

// Token returns the next token in the stream, pulling code points from
// the underlying Reader as needed. It returns a non-nil error only for
// the fatal MalformedInput condition; recoverable parse errors are
// reported through the ErrorSink instead.
func (t *Tokenizer) Token() (Token, error) {
	for {
		if len(t.pending) > 0 {
			tok := t.pending[0]
			t.pending = t.pending[1:]
			if tok.Type == endOfFileToken {
				t.done = true
			}
			return tok, nil
		}
		r, eof := t.r.Read()
		if eof && t.r.Err() != nil {
			t.reportError(MalformedInput)
			t.done = true
			return EndOfFileToken(), t.r.Err()
		}
		t.step(r, eof)
	}
}

func (t *Tokenizer) step(r rune, eof bool) {
	reconsume := true
	for reconsume {
		var next State
		reconsume, next = t.dispatch(t.state)(r, eof)
		t.log.WithField("state", t.state).WithField("next", next).Tracef("rune=%q eof=%v", r, eof)
		t.state = next
	}
}

func (t *Tokenizer) reportError(kind ParseErrorKind) {
	pe := ParseError{Kind: kind, Pos: t.r.Pos()}
	t.log.WithField("pos", pe.Pos).Debug(pe.Kind)
	if t.sink != nil {
		t.sink(pe)
	}
}

func (t *Tokenizer) emit(toks ...Token) {
	for _, tok := range toks {
		if tok.Type == startTagToken {
			t.lastStartTagName = tok.TagName
		}
		t.pending = append(t.pending, tok)
		t.log.Tracef("emit %s", spew.Sdump(tok))
	}
}

func (t *Tokenizer) emitCurrentTag() State {
	tok := t.tb.BuildTag()
	t.emit(tok)
	return DataState
}

func (t *Tokenizer) finishAttribute() {
	if t.tb.FinishAttribute() {
		t.reportError(DuplicateAttribute)
	}
}

func (t *Tokenizer) isAppropriateEndTag() bool {
	return appropriateEndTag(t.lastStartTagName, t.tb.TagName())
}

func wasConsumedByAttribute(s State) bool {
	switch s {
	case AttributeValueDoubleQuotedState, AttributeValueSingleQuotedState, AttributeValueUnquotedState:
		return true
	}
	return false
}

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIAlphanumeric(r rune) bool {
	return isASCIIAlpha(r) || (r >= '0' && r <= '9')
}

func isASCIIWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\f', ' ':
		return true
	}
	return false
}

func isC0Control(r rune) bool {
	return r >= 0x00 && r <= 0x1F
}

func isControl(r rune) bool {
	return isC0Control(r) || (r >= 0x7F && r <= 0x9F)
}

func isSurrogate(r rune) bool {
	return r >= 0xD800 && r <= 0xDFFF
}

func isNonCharacter(r rune) bool {
	if r >= 0xFDD0 && r <= 0xFDEF {
		return true
	}
	switch r {
	case 0xFFFE, 0xFFFF, 0x1FFFE, 0x1FFFF, 0x2FFFE, 0x2FFFF, 0x3FFFE, 0x3FFFF,
		0x4FFFE, 0x4FFFF, 0x5FFFE, 0x5FFFF, 0x6FFFE, 0x6FFFF, 0x7FFFE, 0x7FFFF,
		0x8FFFE, 0x8FFFF, 0x9FFFE, 0x9FFFF, 0xAFFFE, 0xAFFFF, 0xBFFFE, 0xBFFFF,
		0xCFFFE, 0xCFFFF, 0xDFFFE, 0xDFFFF, 0xEFFFE, 0xEFFFF, 0xFFFFE, 0xFFFFF,
		0x10FFFE, 0x10FFFF:
		return true
	}
	return false
}

// numericReferenceC1Replacements is WHATWG's fixed table over the 32 C1
// code points 0x80-0x9F, substituted for Windows-1252 control codes misused
// as numeric character references. 27 of the 32 have a replacement;
// 0x81, 0x8D, 0x8F, 0x90 and 0x9D are absent and pass through unchanged.
var numericReferenceC1Replacements = map[int]rune{
	0x80: 0x20AC, 0x82: 0x201A, 0x83: 0x0192, 0x84: 0x201E,
	0x85: 0x2026, 0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02C6,
	0x89: 0x2030, 0x8A: 0x0160, 0x8B: 0x2039, 0x8C: 0x0152,
	0x8E: 0x017D, 0x91: 0x2018, 0x92: 0x2019, 0x93: 0x201C,
	0x94: 0x201D, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
	0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161, 0x9B: 0x203A,
	0x9C: 0x0153, 0x9E: 0x017E, 0x9F: 0x0178,
}

func (t *Tokenizer) flushCodePointsAsCharacterReference() {
	if wasConsumedByAttribute(t.returnState) {
		for _, r := range t.tb.Temp() {
			t.tb.AppendAttrValue(r)
		}
		return
	}
	for _, r := range t.tb.Temp() {
		t.emit(CharacterToken(r))
	}
}

func (t *Tokenizer) dispatch(state State) stateHandler {
	switch state {
	case DataState:
		return t.dataStateHandler
	case RCDataState:
		return t.rcDataStateHandler
	case RawTextState:
		return t.rawTextStateHandler
	case ScriptDataState:
		return t.scriptDataStateHandler
	case PLAINTextState:
		return t.plaintextStateHandler
	case TagOpenState:
		return t.tagOpenStateHandler
	case EndTagOpenState:
		return t.endTagOpenStateHandler
	case TagNameState:
		return t.tagNameStateHandler
	case RCDataLessThanSignState:
		return t.rcDataLessThanSignStateHandler
	case RCDataEndTagOpenState:
		return t.rcDataEndTagOpenStateHandler
	case RCDataEndTagNameState:
		return t.rcDataEndTagNameStateHandler
	case RawTextLessThanSignState:
		return t.rawTextLessThanSignStateHandler
	case RawTextEndTagOpenState:
		return t.rawTextEndTagOpenStateHandler
	case RawTextEndTagNameState:
		return t.rawTextEndTagNameStateHandler
	case ScriptDataLessThanSignState:
		return t.scriptDataLessThanSignStateHandler
	case ScriptDataEndTagOpenState:
		return t.scriptDataEndTagOpenStateHandler
	case ScriptDataEndTagNameState:
		return t.scriptDataEndTagNameStateHandler
	case ScriptDataEscapeStartState:
		return t.scriptDataEscapeStartStateHandler
	case ScriptDataEscapeStartDashState:
		return t.scriptDataEscapeStartDashStateHandler
	case ScriptDataEscapedState:
		return t.scriptDataEscapedStateHandler
	case ScriptDataEscapedDashState:
		return t.scriptDataEscapedDashStateHandler
	case ScriptDataEscapedDashDashState:
		return t.scriptDataEscapedDashDashStateHandler
	case ScriptDataEscapedLessThanSignState:
		return t.scriptDataEscapedLessThanSignStateHandler
	case ScriptDataEscapedEndTagOpenState:
		return t.scriptDataEscapedEndTagOpenStateHandler
	case ScriptDataEscapedEndTagNameState:
		return t.scriptDataEscapedEndTagNameStateHandler
	case ScriptDataDoubleEscapeStartState:
		return t.scriptDataDoubleEscapeStartStateHandler
	case ScriptDataDoubleEscapedState:
		return t.scriptDataDoubleEscapedStateHandler
	case ScriptDataDoubleEscapedDashState:
		return t.scriptDataDoubleEscapedDashStateHandler
	case ScriptDataDoubleEscapedDashDashState:
		return t.scriptDataDoubleEscapedDashDashStateHandler
	case ScriptDataDoubleEscapedLessThanSignState:
		return t.scriptDataDoubleEscapedLessThanSignStateHandler
	case ScriptDataDoubleEscapeEndState:
		return t.scriptDataDoubleEscapeEndStateHandler
	case BeforeAttributeNameState:
		return t.beforeAttributeNameStateHandler
	case AttributeNameState:
		return t.attributeNameStateHandler
	case AfterAttributeNameState:
		return t.afterAttributeNameStateHandler
	case BeforeAttributeValueState:
		return t.beforeAttributeValueStateHandler
	case AttributeValueDoubleQuotedState:
		return t.attributeValueDoubleQuotedStateHandler
	case AttributeValueSingleQuotedState:
		return t.attributeValueSingleQuotedStateHandler
	case AttributeValueUnquotedState:
		return t.attributeValueUnquotedStateHandler
	case AfterAttributeValueQuotedState:
		return t.afterAttributeValueQuotedStateHandler
	case SelfClosingStartTagState:
		return t.selfClosingStartTagStateHandler
	case BogusCommentState:
		return t.bogusCommentStateHandler
	case MarkupDeclarationOpenState:
		return t.markupDeclarationOpenStateHandler
	case CommentStartState:
		return t.commentStartStateHandler
	case CommentStartDashState:
		return t.commentStartDashStateHandler
	case CommentState:
		return t.commentStateHandler
	case CommentLessThanSignState:
		return t.commentLessThanSignStateHandler
	case CommentLessThanSignBangState:
		return t.commentLessThanSignBangStateHandler
	case CommentLessThanSignBangDashState:
		return t.commentLessThanSignBangDashStateHandler
	case CommentLessThanSignBangDashDashState:
		return t.commentLessThanSignBangDashDashStateHandler
	case CommentEndDashState:
		return t.commentEndDashStateHandler
	case CommentEndState:
		return t.commentEndStateHandler
	case CommentEndBangState:
		return t.commentEndBangStateHandler
	case DoctypeState:
		return t.doctypeStateHandler
	case BeforeDoctypeNameState:
		return t.beforeDoctypeNameStateHandler
	case DoctypeNameState:
		return t.doctypeNameStateHandler
	case AfterDoctypeNameState:
		return t.afterDoctypeNameStateHandler
	case AfterDoctypePublicKeywordState:
		return t.afterDoctypePublicKeywordStateHandler
	case BeforeDoctypePublicIdentifierState:
		return t.beforeDoctypePublicIdentifierStateHandler
	case DoctypePublicIdentifierDoubleQuotedState:
		return t.doctypePublicIdentifierDoubleQuotedStateHandler
	case DoctypePublicIdentifierSingleQuotedState:
		return t.doctypePublicIdentifierSingleQuotedStateHandler
	case AfterDoctypePublicIdentifierState:
		return t.afterDoctypePublicIdentifierStateHandler
	case BetweenDoctypePublicAndSystemIdentifiersState:
		return t.betweenDoctypePublicAndSystemIdentifiersStateHandler
	case AfterDoctypeSystemKeywordState:
		return t.afterDoctypeSystemKeywordStateHandler
	case BeforeDoctypeSystemIdentifierState:
		return t.beforeDoctypeSystemIdentifierStateHandler
	case DoctypeSystemIdentifierDoubleQuotedState:
		return t.doctypeSystemIdentifierDoubleQuotedStateHandler
	case DoctypeSystemIdentifierSingleQuotedState:
		return t.doctypeSystemIdentifierSingleQuotedStateHandler
	case AfterDoctypeSystemIdentifierState:
		return t.afterDoctypeSystemIdentifierStateHandler
	case BogusDoctypeState:
		return t.bogusDoctypeStateHandler
	case CDATASectionState:
		return t.cdataSectionStateHandler
	case CDATASectionBracketState:
		return t.cdataSectionBracketStateHandler
	case CDATASectionEndState:
		return t.cdataSectionEndStateHandler
	case CharacterReferenceState:
		return t.characterReferenceStateHandler
	case NamedCharacterReferenceState:
		return t.namedCharacterReferenceStateHandler
	case AmbiguousAmpersandState:
		return t.ambiguousAmpersandStateHandler
	case NumericCharacterReferenceState:
		return t.numericCharacterReferenceStateHandler
	case HexadecimalCharacterReferenceStartState:
		return t.hexadecimalCharacterReferenceStartStateHandler
	case DecimalCharacterReferenceStartState:
		return t.decimalCharacterReferenceStartStateHandler
	case HexadecimalCharacterReferenceState:
		return t.hexadecimalCharacterReferenceStateHandler
	case DecimalCharacterReferenceState:
		return t.decimalCharacterReferenceStateHandler
	case NumericCharacterReferenceEndState:
		return t.numericCharacterReferenceEndStateHandler
	}
	panic("tokenizer: unhandled state")
}

// --- §13.2.5.1-5: Data / RCDATA / RAWTEXT / ScriptData / PLAINTEXT ---

func (t *Tokenizer) dataStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '&':
		t.returnState = DataState
		return false, CharacterReferenceState
	case '<':
		return false, TagOpenState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken(r))
		return false, DataState
	default:
		t.emit(CharacterToken(r))
		return false, DataState
	}
}

func (t *Tokenizer) rcDataStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '&':
		t.returnState = RCDataState
		return false, CharacterReferenceState
	case '<':
		return false, RCDataLessThanSignState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, RCDataState
	default:
		t.emit(CharacterToken(r))
		return false, RCDataState
	}
}

func (t *Tokenizer) rawTextStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '<':
		return false, RawTextLessThanSignState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, RawTextState
	default:
		t.emit(CharacterToken(r))
		return false, RawTextState
	}
}

func (t *Tokenizer) scriptDataStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '<':
		return false, ScriptDataLessThanSignState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, ScriptDataState
	default:
		t.emit(CharacterToken(r))
		return false, ScriptDataState
	}
}

func (t *Tokenizer) plaintextStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, PLAINTextState
	default:
		t.emit(CharacterToken(r))
		return false, PLAINTextState
	}
}

// --- tag open / names ---

func (t *Tokenizer) tagOpenStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofBeforeTagName)
		t.emit(CharacterToken('<'), EndOfFileToken())
		return false, DataState
	}
	switch {
	case r == '!':
		return false, MarkupDeclarationOpenState
	case r == '/':
		return false, EndTagOpenState
	case isASCIIAlpha(r):
		t.tb.BeginTag(false)
		return true, TagNameState
	case r == '?':
		t.reportError(UnexpectedQuestionMarkInsteadOfTagName)
		t.tb.BeginComment("")
		return true, BogusCommentState
	default:
		t.reportError(InvalidFirstCharacterOfTagName)
		t.emit(CharacterToken('<'))
		return true, DataState
	}
}

func (t *Tokenizer) endTagOpenStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofBeforeTagName)
		t.emit(CharacterToken('<'), CharacterToken('/'), EndOfFileToken())
		return false, DataState
	}
	switch {
	case isASCIIAlpha(r):
		t.tb.BeginTag(true)
		return true, TagNameState
	case r == '>':
		t.reportError(MissingEndTagName)
		return false, DataState
	default:
		t.reportError(InvalidFirstCharacterOfTagName)
		t.tb.BeginComment("")
		return true, BogusCommentState
	}
}

func (t *Tokenizer) tagNameStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInTag)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch {
	case isASCIIWhitespace(r):
		return false, BeforeAttributeNameState
	case r == '/':
		return false, SelfClosingStartTagState
	case r == '>':
		return false, t.emitCurrentTag()
	case r == '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.AppendTagName('�')
		return false, TagNameState
	default:
		t.tb.AppendTagName(r)
		return false, TagNameState
	}
}

// --- RCDATA end tag detection ---

func (t *Tokenizer) rcDataLessThanSignStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r == '/' {
		t.tb.ResetTemp()
		return false, RCDataEndTagOpenState
	}
	t.emit(CharacterToken('<'))
	return true, RCDataState
}

func (t *Tokenizer) rcDataEndTagOpenStateHandler(r rune, eof bool) (bool, State) {
	if !eof && isASCIIAlpha(r) {
		t.tb.BeginTag(true)
		return true, RCDataEndTagNameState
	}
	t.emit(CharacterToken('<'), CharacterToken('/'))
	return true, RCDataState
}

func (t *Tokenizer) rcDataEndTagNameStateHandler(r rune, eof bool) (bool, State) {
	return t.genericEndTagNameStateHandler(r, eof, RCDataEndTagNameState, RCDataState)
}

func (t *Tokenizer) rawTextLessThanSignStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r == '/' {
		t.tb.ResetTemp()
		return false, RawTextEndTagOpenState
	}
	t.emit(CharacterToken('<'))
	return true, RawTextState
}

func (t *Tokenizer) rawTextEndTagOpenStateHandler(r rune, eof bool) (bool, State) {
	if !eof && isASCIIAlpha(r) {
		t.tb.BeginTag(true)
		return true, RawTextEndTagNameState
	}
	t.emit(CharacterToken('<'), CharacterToken('/'))
	return true, RawTextState
}

func (t *Tokenizer) rawTextEndTagNameStateHandler(r rune, eof bool) (bool, State) {
	return t.genericEndTagNameStateHandler(r, eof, RawTextEndTagNameState, RawTextState)
}

func (t *Tokenizer) scriptDataLessThanSignStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		switch r {
		case '/':
			t.tb.ResetTemp()
			return false, ScriptDataEndTagOpenState
		case '!':
			t.emit(CharacterToken('<'), CharacterToken('!'))
			return false, ScriptDataEscapeStartState
		}
	}
	t.emit(CharacterToken('<'))
	return true, ScriptDataState
}

func (t *Tokenizer) scriptDataEndTagOpenStateHandler(r rune, eof bool) (bool, State) {
	if !eof && isASCIIAlpha(r) {
		t.tb.BeginTag(true)
		return true, ScriptDataEndTagNameState
	}
	t.emit(CharacterToken('<'), CharacterToken('/'))
	return true, ScriptDataState
}

func (t *Tokenizer) scriptDataEndTagNameStateHandler(r rune, eof bool) (bool, State) {
	return t.genericEndTagNameStateHandler(r, eof, ScriptDataEndTagNameState, ScriptDataState)
}

// genericEndTagNameStateHandler implements the RCDATA/RAWTEXT/ScriptData
// end-tag-name states, which are identical except for which state they
// fall back to when the "appropriate end tag" check fails.
func (t *Tokenizer) genericEndTagNameStateHandler(r rune, eof bool, self, fallback State) (bool, State) {
	fail := func() (bool, State) {
		t.emit(CharacterToken('<'), CharacterToken('/'))
		for _, c := range t.tb.Temp() {
			t.emit(CharacterToken(c))
		}
		return true, fallback
	}
	if eof {
		return fail()
	}
	switch {
	case isASCIIWhitespace(r):
		if t.isAppropriateEndTag() {
			return false, BeforeAttributeNameState
		}
		return fail()
	case r == '/':
		if t.isAppropriateEndTag() {
			return false, SelfClosingStartTagState
		}
		return fail()
	case r == '>':
		if t.isAppropriateEndTag() {
			return false, t.emitCurrentTag()
		}
		return fail()
	case isASCIIAlpha(r):
		t.tb.AppendTemp(r)
		t.tb.AppendTagName(r)
		return false, self
	default:
		return fail()
	}
}

// --- script data escape states ---

func (t *Tokenizer) scriptDataEscapeStartStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r == '-' {
		t.emit(CharacterToken('-'))
		return false, ScriptDataEscapeStartDashState
	}
	return true, ScriptDataState
}

func (t *Tokenizer) scriptDataEscapeStartDashStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r == '-' {
		t.emit(CharacterToken('-'))
		return false, ScriptDataEscapedDashDashState
	}
	return true, ScriptDataState
}

func (t *Tokenizer) scriptDataEscapedStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInScriptHtmlCommentLikeText)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '-':
		t.emit(CharacterToken('-'))
		return false, ScriptDataEscapedDashState
	case '<':
		return false, ScriptDataEscapedLessThanSignState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, ScriptDataEscapedState
	default:
		t.emit(CharacterToken(r))
		return false, ScriptDataEscapedState
	}
}

func (t *Tokenizer) scriptDataEscapedDashStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInScriptHtmlCommentLikeText)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '-':
		t.emit(CharacterToken('-'))
		return false, ScriptDataEscapedDashDashState
	case '<':
		return false, ScriptDataEscapedLessThanSignState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, ScriptDataEscapedState
	default:
		t.emit(CharacterToken(r))
		return false, ScriptDataEscapedState
	}
}

func (t *Tokenizer) scriptDataEscapedDashDashStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInScriptHtmlCommentLikeText)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '-':
		t.emit(CharacterToken('-'))
		return false, ScriptDataEscapedDashDashState
	case '<':
		return false, ScriptDataEscapedLessThanSignState
	case '>':
		t.emit(CharacterToken('>'))
		return false, ScriptDataState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, ScriptDataEscapedState
	default:
		t.emit(CharacterToken(r))
		return false, ScriptDataEscapedState
	}
}

func (t *Tokenizer) scriptDataEscapedLessThanSignStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		if r == '/' {
			t.tb.ResetTemp()
			return false, ScriptDataEscapedEndTagOpenState
		}
		if isASCIIAlpha(r) {
			t.tb.ResetTemp()
			t.emit(CharacterToken('<'))
			return true, ScriptDataDoubleEscapeStartState
		}
	}
	t.emit(CharacterToken('<'))
	return true, ScriptDataEscapedState
}

func (t *Tokenizer) scriptDataEscapedEndTagOpenStateHandler(r rune, eof bool) (bool, State) {
	if !eof && isASCIIAlpha(r) {
		t.tb.BeginTag(true)
		return true, ScriptDataEscapedEndTagNameState
	}
	t.emit(CharacterToken('<'), CharacterToken('/'))
	return true, ScriptDataEscapedState
}

func (t *Tokenizer) scriptDataEscapedEndTagNameStateHandler(r rune, eof bool) (bool, State) {
	return t.genericEndTagNameStateHandler(r, eof, ScriptDataEscapedEndTagNameState, ScriptDataEscapedState)
}

func (t *Tokenizer) scriptDataDoubleEscapeStartStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		switch {
		case isASCIIWhitespace(r) || r == '/' || r == '>':
			t.emit(CharacterToken(r))
			if t.tb.TempString() == "script" {
				return false, ScriptDataDoubleEscapedState
			}
			return false, ScriptDataEscapedState
		case isASCIIAlpha(r):
			t.emit(CharacterToken(r))
			t.tb.AppendTemp(foldASCIIUpper(r))
			return false, ScriptDataDoubleEscapeStartState
		}
	}
	return true, ScriptDataEscapedState
}

func (t *Tokenizer) scriptDataDoubleEscapedStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInScriptHtmlCommentLikeText)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '-':
		t.emit(CharacterToken('-'))
		return false, ScriptDataDoubleEscapedDashState
	case '<':
		t.emit(CharacterToken('<'))
		return false, ScriptDataDoubleEscapedLessThanSignState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, ScriptDataDoubleEscapedState
	default:
		t.emit(CharacterToken(r))
		return false, ScriptDataDoubleEscapedState
	}
}

func (t *Tokenizer) scriptDataDoubleEscapedDashStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInScriptHtmlCommentLikeText)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '-':
		t.emit(CharacterToken('-'))
		return false, ScriptDataDoubleEscapedDashDashState
	case '<':
		t.emit(CharacterToken('<'))
		return false, ScriptDataDoubleEscapedLessThanSignState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, ScriptDataDoubleEscapedState
	default:
		t.emit(CharacterToken(r))
		return false, ScriptDataDoubleEscapedState
	}
}

func (t *Tokenizer) scriptDataDoubleEscapedDashDashStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInScriptHtmlCommentLikeText)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '-':
		t.emit(CharacterToken('-'))
		return false, ScriptDataDoubleEscapedDashDashState
	case '<':
		t.emit(CharacterToken('<'))
		return false, ScriptDataDoubleEscapedLessThanSignState
	case '>':
		t.emit(CharacterToken('>'))
		return false, ScriptDataState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.emit(CharacterToken('�'))
		return false, ScriptDataDoubleEscapedState
	default:
		t.emit(CharacterToken(r))
		return false, ScriptDataDoubleEscapedState
	}
}

func (t *Tokenizer) scriptDataDoubleEscapedLessThanSignStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r == '/' {
		t.tb.ResetTemp()
		t.emit(CharacterToken('/'))
		return false, ScriptDataDoubleEscapeEndState
	}
	return true, ScriptDataDoubleEscapedState
}

func (t *Tokenizer) scriptDataDoubleEscapeEndStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		switch {
		case isASCIIWhitespace(r) || r == '/' || r == '>':
			t.emit(CharacterToken(r))
			if t.tb.TempString() == "script" {
				return false, ScriptDataEscapedState
			}
			return false, ScriptDataDoubleEscapedState
		case isASCIIAlpha(r):
			t.emit(CharacterToken(r))
			t.tb.AppendTemp(foldASCIIUpper(r))
			return false, ScriptDataDoubleEscapeEndState
		}
	}
	return true, ScriptDataDoubleEscapedState
}

// --- attributes ---

func (t *Tokenizer) beforeAttributeNameStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		return true, AfterAttributeNameState
	}
	switch {
	case isASCIIWhitespace(r):
		return false, BeforeAttributeNameState
	case r == '/' || r == '>':
		return true, AfterAttributeNameState
	case r == '=':
		t.reportError(UnexpectedEqualsSignBeforeAttributeName)
		t.tb.BeginAttribute()
		t.tb.AppendAttrName(r)
		return false, AttributeNameState
	default:
		t.tb.BeginAttribute()
		return true, AttributeNameState
	}
}

func (t *Tokenizer) attributeNameStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.finishAttribute()
		return true, AfterAttributeNameState
	}
	switch {
	case isASCIIWhitespace(r):
		return true, AfterAttributeNameState
	case r == '/' || r == '>':
		t.finishAttribute()
		return true, AfterAttributeNameState
	case r == '=':
		return false, BeforeAttributeValueState
	case r == '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.AppendAttrName('�')
		return false, AttributeNameState
	case r == '"' || r == '\'' || r == '<':
		t.reportError(UnexpectedCharacterInAttributeName)
		t.tb.AppendAttrName(r)
		return false, AttributeNameState
	default:
		t.tb.AppendAttrName(r)
		return false, AttributeNameState
	}
}

func (t *Tokenizer) afterAttributeNameStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInTag)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch {
	case isASCIIWhitespace(r):
		return false, AfterAttributeNameState
	case r == '/':
		t.finishAttribute()
		return false, SelfClosingStartTagState
	case r == '=':
		return false, BeforeAttributeValueState
	case r == '>':
		t.finishAttribute()
		return false, t.emitCurrentTag()
	default:
		t.finishAttribute()
		t.tb.BeginAttribute()
		return true, AttributeNameState
	}
}

func (t *Tokenizer) beforeAttributeValueStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		switch r {
		case '\t', '\n', '\f', ' ':
			return false, BeforeAttributeValueState
		case '"':
			return false, AttributeValueDoubleQuotedState
		case '\'':
			return false, AttributeValueSingleQuotedState
		case '>':
			t.reportError(MissingAttributeValue)
			t.finishAttribute()
			return false, t.emitCurrentTag()
		}
	}
	return true, AttributeValueUnquotedState
}

func (t *Tokenizer) attributeValueDoubleQuotedStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInTag)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '"':
		t.finishAttribute()
		return false, AfterAttributeValueQuotedState
	case '&':
		t.returnState = AttributeValueDoubleQuotedState
		return false, CharacterReferenceState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.AppendAttrValue('�')
		return false, AttributeValueDoubleQuotedState
	default:
		t.tb.AppendAttrValue(r)
		return false, AttributeValueDoubleQuotedState
	}
}

func (t *Tokenizer) attributeValueSingleQuotedStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInTag)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\'':
		t.finishAttribute()
		return false, AfterAttributeValueQuotedState
	case '&':
		t.returnState = AttributeValueSingleQuotedState
		return false, CharacterReferenceState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.AppendAttrValue('�')
		return false, AttributeValueSingleQuotedState
	default:
		t.tb.AppendAttrValue(r)
		return false, AttributeValueSingleQuotedState
	}
}

func (t *Tokenizer) attributeValueUnquotedStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInTag)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		t.finishAttribute()
		return false, BeforeAttributeNameState
	case '&':
		t.returnState = AttributeValueUnquotedState
		return false, CharacterReferenceState
	case '>':
		t.finishAttribute()
		return false, t.emitCurrentTag()
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.AppendAttrValue('�')
		return false, AttributeValueUnquotedState
	case '"', '\'', '<', '=', '`':
		t.reportError(UnexpectedCharacterInUnquotedAttributeValue)
		t.tb.AppendAttrValue(r)
		return false, AttributeValueUnquotedState
	default:
		t.tb.AppendAttrValue(r)
		return false, AttributeValueUnquotedState
	}
}

func (t *Tokenizer) afterAttributeValueQuotedStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInTag)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		return false, BeforeAttributeNameState
	case '/':
		return false, SelfClosingStartTagState
	case '>':
		return false, t.emitCurrentTag()
	default:
		t.reportError(MissingWhitespaceBetweenAttributes)
		return true, BeforeAttributeNameState
	}
}

func (t *Tokenizer) selfClosingStartTagStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInTag)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	if r == '>' {
		t.tb.SetSelfClosing()
		return false, t.emitCurrentTag()
	}
	t.reportError(UnexpectedSolidusInTag)
	return true, BeforeAttributeNameState
}

// --- bogus comment / markup declaration open ---

func (t *Tokenizer) bogusCommentStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.emit(t.tb.BuildComment(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '>':
		t.emit(t.tb.BuildComment())
		return false, DataState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.AppendComment('�')
		return false, BogusCommentState
	default:
		t.tb.AppendComment(r)
		return false, BogusCommentState
	}
}

func foldEqual(rs []rune, s string) bool {
	if len(rs) != len(s) {
		return false
	}
	for i, r := range rs {
		c := rune(s[i])
		if r >= 'A' && r <= 'Z' {
			r += 0x20
		}
		if c >= 'A' && c <= 'Z' {
			c += 0x20
		}
		if c != r {
			return false
		}
	}
	return true
}

func exactEqual(rs []rune, s string) bool {
	if len(rs) != len(s) {
		return false
	}
	for i, r := range rs {
		if r != rune(s[i]) {
			return false
		}
	}
	return true
}

func (t *Tokenizer) markupDeclarationOpenStateHandler(r rune, eof bool) (bool, State) {
	bogus := func() (bool, State) {
		t.reportError(IncorrectlyOpenedComment)
		t.tb.BeginComment("")
		return true, BogusCommentState
	}
	if eof {
		return bogus()
	}
	switch r {
	case '-':
		buf := make([]rune, 1)
		if t.r.PeekN(buf) == 1 && buf[0] == '-' {
			t.r.ReadN(buf)
			t.tb.BeginComment("")
			return false, CommentStartState
		}
		return bogus()
	case 'D', 'd':
		buf := make([]rune, 6)
		if t.r.PeekN(buf) == 6 && foldEqual(buf, "OCTYPE") {
			t.r.ReadN(buf)
			return false, DoctypeState
		}
		return bogus()
	case '[':
		buf := make([]rune, 6)
		if t.r.PeekN(buf) == 6 && exactEqual(buf, "CDATA[") {
			t.r.ReadN(buf)
			if t.cdataAllowed() {
				return false, CDATASectionState
			}
			t.reportError(CDataInHtmlContent)
			t.tb.BeginComment("[CDATA[")
			return false, BogusCommentState
		}
		return bogus()
	default:
		return bogus()
	}
}

// --- comments ---

func (t *Tokenizer) commentStartStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		switch r {
		case '-':
			return false, CommentStartDashState
		case '>':
			t.reportError(AbruptClosingOfEmptyComment)
			t.emit(t.tb.BuildComment())
			return false, DataState
		}
	}
	return true, CommentState
}

func (t *Tokenizer) commentStartDashStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInComment)
		t.emit(t.tb.BuildComment(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '-':
		return false, CommentEndState
	case '>':
		t.reportError(AbruptClosingOfEmptyComment)
		t.emit(t.tb.BuildComment())
		return false, DataState
	default:
		t.tb.AppendComment('-')
		return true, CommentState
	}
}

func (t *Tokenizer) commentStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInComment)
		t.emit(t.tb.BuildComment(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '<':
		t.tb.AppendComment(r)
		return false, CommentLessThanSignState
	case '-':
		return false, CommentEndDashState
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.AppendComment('�')
		return false, CommentState
	default:
		t.tb.AppendComment(r)
		return false, CommentState
	}
}

func (t *Tokenizer) commentLessThanSignStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		switch r {
		case '!':
			t.tb.AppendComment(r)
			return false, CommentLessThanSignBangState
		case '<':
			t.tb.AppendComment(r)
			return false, CommentLessThanSignState
		}
	}
	return true, CommentState
}

func (t *Tokenizer) commentLessThanSignBangStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r == '-' {
		return false, CommentLessThanSignBangDashState
	}
	return true, CommentState
}

func (t *Tokenizer) commentLessThanSignBangDashStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r == '-' {
		return false, CommentLessThanSignBangDashDashState
	}
	return true, CommentEndDashState
}

func (t *Tokenizer) commentLessThanSignBangDashDashStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r != '>' {
		t.reportError(NestedComment)
	}
	return true, CommentEndState
}

func (t *Tokenizer) commentEndDashStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInComment)
		t.emit(t.tb.BuildComment(), EndOfFileToken())
		return false, DataState
	}
	if r == '-' {
		return false, CommentEndState
	}
	t.tb.AppendComment('-')
	return true, CommentState
}

func (t *Tokenizer) commentEndStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInComment)
		t.emit(t.tb.BuildComment(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '>':
		t.emit(t.tb.BuildComment())
		return false, DataState
	case '!':
		return false, CommentEndBangState
	case '-':
		t.tb.AppendComment('-')
		return false, CommentEndState
	default:
		t.tb.AppendCommentString("--")
		return true, CommentState
	}
}

func (t *Tokenizer) commentEndBangStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInComment)
		t.emit(t.tb.BuildComment(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '-':
		t.tb.AppendCommentString("--!")
		return false, CommentEndDashState
	case '>':
		t.reportError(IncorrectlyClosedComment)
		t.emit(t.tb.BuildComment())
		return false, DataState
	default:
		t.tb.AppendCommentString("--!")
		return true, CommentState
	}
}

// --- DOCTYPE ---

func (t *Tokenizer) doctypeStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.BeginDoctype()
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	if isASCIIWhitespace(r) {
		return false, BeforeDoctypeNameState
	}
	t.reportError(MissingWhitespaceBeforeDoctypeName)
	return true, BeforeDoctypeNameState
}

func (t *Tokenizer) beforeDoctypeNameStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.BeginDoctype()
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch {
	case isASCIIWhitespace(r):
		return false, BeforeDoctypeNameState
	case r == '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.BeginDoctype()
		t.tb.AppendDoctypeName('�')
		return false, DoctypeNameState
	case r == '>':
		t.reportError(MissingDoctypeName)
		t.tb.BeginDoctype()
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	default:
		t.tb.BeginDoctype()
		t.tb.AppendDoctypeName(r)
		return false, DoctypeNameState
	}
}

func (t *Tokenizer) doctypeNameStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch {
	case isASCIIWhitespace(r):
		return false, AfterDoctypeNameState
	case r == '>':
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	case r == '\x00':
		t.reportError(UnexpectedNullCharacter)
		t.tb.AppendDoctypeName('�')
		return false, DoctypeNameState
	default:
		t.tb.AppendDoctypeName(r)
		return false, DoctypeNameState
	}
}

func (t *Tokenizer) afterDoctypeNameStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch {
	case isASCIIWhitespace(r):
		return false, AfterDoctypeNameState
	case r == '>':
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	default:
		buf := make([]rune, 5)
		n := t.r.PeekN(buf)
		word := append([]rune{r}, buf[:n]...)
		if foldEqual(word, "PUBLIC") {
			t.r.ReadN(buf[:n])
			return false, AfterDoctypePublicKeywordState
		}
		if foldEqual(word, "SYSTEM") {
			t.r.ReadN(buf[:n])
			return false, AfterDoctypeSystemKeywordState
		}
		t.reportError(InvalidCharacterSequenceAfterDoctypeName)
		t.tb.SetForceQuirks()
		return true, BogusDoctypeState
	}
}

func (t *Tokenizer) afterDoctypePublicKeywordStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		return false, BeforeDoctypePublicIdentifierState
	case '"':
		t.reportError(MissingWhitespaceAfterDoctypePublicKeyword)
		t.tb.EnsurePublicIdentifier()
		return false, DoctypePublicIdentifierDoubleQuotedState
	case '\'':
		t.reportError(MissingWhitespaceAfterDoctypePublicKeyword)
		t.tb.EnsurePublicIdentifier()
		return false, DoctypePublicIdentifierSingleQuotedState
	case '>':
		t.reportError(MissingDoctypePublicIdentifier)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	default:
		t.reportError(MissingQuoteBeforeDoctypePublicIdentifier)
		t.tb.SetForceQuirks()
		return true, BogusDoctypeState
	}
}

func (t *Tokenizer) beforeDoctypePublicIdentifierStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		return false, BeforeDoctypePublicIdentifierState
	case '"':
		t.tb.EnsurePublicIdentifier()
		return false, DoctypePublicIdentifierDoubleQuotedState
	case '\'':
		t.tb.EnsurePublicIdentifier()
		return false, DoctypePublicIdentifierSingleQuotedState
	case '>':
		t.reportError(MissingDoctypePublicIdentifier)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	default:
		t.reportError(MissingQuoteBeforeDoctypePublicIdentifier)
		t.tb.SetForceQuirks()
		return true, BogusDoctypeState
	}
}

func (t *Tokenizer) doctypePublicIdentifierDoubleQuotedStateHandler(r rune, eof bool) (bool, State) {
	return t.doctypeIdentifierQuotedStateHandler(r, eof, '"', DoctypePublicIdentifierDoubleQuotedState, AfterDoctypePublicIdentifierState, AbruptDoctypePublicIdentifier, t.tb.AppendPublicIdentifier)
}

func (t *Tokenizer) doctypePublicIdentifierSingleQuotedStateHandler(r rune, eof bool) (bool, State) {
	return t.doctypeIdentifierQuotedStateHandler(r, eof, '\'', DoctypePublicIdentifierSingleQuotedState, AfterDoctypePublicIdentifierState, AbruptDoctypePublicIdentifier, t.tb.AppendPublicIdentifier)
}

func (t *Tokenizer) doctypeSystemIdentifierDoubleQuotedStateHandler(r rune, eof bool) (bool, State) {
	return t.doctypeIdentifierQuotedStateHandler(r, eof, '"', DoctypeSystemIdentifierDoubleQuotedState, AfterDoctypeSystemIdentifierState, AbruptDoctypeSystemIdentifier, t.tb.AppendSystemIdentifier)
}

func (t *Tokenizer) doctypeSystemIdentifierSingleQuotedStateHandler(r rune, eof bool) (bool, State) {
	return t.doctypeIdentifierQuotedStateHandler(r, eof, '\'', DoctypeSystemIdentifierSingleQuotedState, AfterDoctypeSystemIdentifierState, AbruptDoctypeSystemIdentifier, t.tb.AppendSystemIdentifier)
}

// doctypeIdentifierQuotedStateHandler implements the four (public/system
// x double/single quoted) DOCTYPE identifier states, which are identical
// apart from the quote character, the completion state, the abrupt-close
// error kind, and which identifier they append to.
func (t *Tokenizer) doctypeIdentifierQuotedStateHandler(r rune, eof bool, quote rune, self, done State, abrupt ParseErrorKind, appendRune func(rune)) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case quote:
		return false, done
	case '\x00':
		t.reportError(UnexpectedNullCharacter)
		appendRune('�')
		return false, self
	case '>':
		t.reportError(abrupt)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	default:
		appendRune(r)
		return false, self
	}
}

func (t *Tokenizer) afterDoctypePublicIdentifierStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		return false, BetweenDoctypePublicAndSystemIdentifiersState
	case '>':
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	case '"':
		t.reportError(MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers)
		t.tb.EnsureSystemIdentifier()
		return false, DoctypeSystemIdentifierDoubleQuotedState
	case '\'':
		t.reportError(MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers)
		t.tb.EnsureSystemIdentifier()
		return false, DoctypeSystemIdentifierSingleQuotedState
	default:
		t.reportError(MissingQuoteBeforeDoctypeSystemIdentifier)
		t.tb.SetForceQuirks()
		return true, BogusDoctypeState
	}
}

func (t *Tokenizer) betweenDoctypePublicAndSystemIdentifiersStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		return false, BetweenDoctypePublicAndSystemIdentifiersState
	case '>':
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	case '"':
		t.tb.EnsureSystemIdentifier()
		return false, DoctypeSystemIdentifierDoubleQuotedState
	case '\'':
		t.tb.EnsureSystemIdentifier()
		return false, DoctypeSystemIdentifierSingleQuotedState
	default:
		t.reportError(MissingQuoteBeforeDoctypeSystemIdentifier)
		t.tb.SetForceQuirks()
		return true, BogusDoctypeState
	}
}

func (t *Tokenizer) afterDoctypeSystemKeywordStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		return false, BeforeDoctypeSystemIdentifierState
	case '"':
		t.reportError(MissingWhitespaceAfterDoctypeSystemKeyword)
		t.tb.EnsureSystemIdentifier()
		return false, DoctypeSystemIdentifierDoubleQuotedState
	case '\'':
		t.reportError(MissingWhitespaceAfterDoctypeSystemKeyword)
		t.tb.EnsureSystemIdentifier()
		return false, DoctypeSystemIdentifierSingleQuotedState
	case '>':
		t.reportError(MissingDoctypeSystemIdentifier)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	default:
		t.reportError(MissingQuoteBeforeDoctypeSystemIdentifier)
		t.tb.SetForceQuirks()
		return true, BogusDoctypeState
	}
}

func (t *Tokenizer) beforeDoctypeSystemIdentifierStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		return false, BeforeDoctypeSystemIdentifierState
	case '"':
		t.tb.EnsureSystemIdentifier()
		return false, DoctypeSystemIdentifierDoubleQuotedState
	case '\'':
		t.tb.EnsureSystemIdentifier()
		return false, DoctypeSystemIdentifierSingleQuotedState
	case '>':
		t.reportError(MissingDoctypeSystemIdentifier)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	default:
		t.reportError(MissingQuoteBeforeDoctypeSystemIdentifier)
		t.tb.SetForceQuirks()
		return true, BogusDoctypeState
	}
}

func (t *Tokenizer) afterDoctypeSystemIdentifierStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInDoctype)
		t.tb.SetForceQuirks()
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	switch r {
	case '\t', '\n', '\f', ' ':
		return false, AfterDoctypeSystemIdentifierState
	case '>':
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	default:
		t.reportError(UnexpectedCharacterAfterDoctypeSystemIdentifier)
		return true, BogusDoctypeState
	}
}

func (t *Tokenizer) bogusDoctypeStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.emit(t.tb.BuildDoctype(), EndOfFileToken())
		return false, DataState
	}
	if r == '>' {
		t.emit(t.tb.BuildDoctype())
		return false, DataState
	}
	return false, BogusDoctypeState
}

// --- CDATA ---

func (t *Tokenizer) cdataSectionStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(EofInCdata)
		t.emit(EndOfFileToken())
		return false, DataState
	}
	if r == ']' {
		return false, CDATASectionBracketState
	}
	t.emit(CharacterToken(r))
	return false, CDATASectionState
}

func (t *Tokenizer) cdataSectionBracketStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r == ']' {
		return false, CDATASectionEndState
	}
	t.emit(CharacterToken(']'))
	return true, CDATASectionState
}

func (t *Tokenizer) cdataSectionEndStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		switch r {
		case ']':
			t.emit(CharacterToken(']'))
			return false, CDATASectionEndState
		case '>':
			return false, DataState
		}
	}
	t.emit(CharacterToken(']'), CharacterToken(']'))
	return true, CDATASectionState
}

// --- character references ---

func (t *Tokenizer) characterReferenceStateHandler(r rune, eof bool) (bool, State) {
	t.tb.ResetTemp()
	t.tb.AppendTemp('&')
	if !eof {
		if isASCIIAlphanumeric(r) {
			return true, NamedCharacterReferenceState
		}
		if r == '#' {
			t.tb.AppendTemp(r)
			return false, NumericCharacterReferenceState
		}
	}
	t.flushCodePointsAsCharacterReference()
	return true, t.returnState
}

func (t *Tokenizer) namedCharacterReferenceStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.flushCodePointsAsCharacterReference()
		return false, t.returnState
	}

	candidate := make([]rune, 1, maxNamedReferenceKeyLen)
	candidate[0] = r
	lookahead := make([]rune, maxNamedReferenceKeyLen-1)
	n := t.r.PeekN(lookahead)
	candidate = append(candidate, lookahead[:n]...)

	expansion, matchLen, ok := longestMatch(t.names, candidate)
	if !ok {
		t.tb.AppendTemp(r)
		t.flushCodePointsAsCharacterReference()
		return false, AmbiguousAmpersandState
	}

	extra := matchLen - 1
	if extra > 0 {
		t.r.ReadN(lookahead[:extra])
	}
	consumed := candidate[:matchLen]
	endsInSemicolon := consumed[len(consumed)-1] == ';'

	if wasConsumedByAttribute(t.returnState) && !endsInSemicolon {
		next, nEOF := t.r.Peek()
		if !nEOF && (next == '=' || isASCIIAlphanumeric(next)) {
			for _, c := range consumed {
				t.tb.AppendTemp(c)
			}
			t.flushCodePointsAsCharacterReference()
			return false, t.returnState
		}
	}

	if !endsInSemicolon {
		t.reportError(MissingSemicolonAfterCharacterReference)
	}
	t.tb.ResetTemp()
	for _, c := range expansion {
		t.tb.AppendTemp(c)
	}
	t.flushCodePointsAsCharacterReference()
	return false, t.returnState
}

func (t *Tokenizer) ambiguousAmpersandStateHandler(r rune, eof bool) (bool, State) {
	if !eof {
		switch {
		case isASCIIAlphanumeric(r):
			if wasConsumedByAttribute(t.returnState) {
				t.tb.AppendAttrValue(r)
			} else {
				t.emit(CharacterToken(r))
			}
			return false, AmbiguousAmpersandState
		case r == ';':
			t.reportError(UnknownNamedCharacterReference)
			return true, t.returnState
		}
	}
	return true, t.returnState
}

func (t *Tokenizer) numericCharacterReferenceStateHandler(r rune, eof bool) (bool, State) {
	t.tb.ResetCharRefCode()
	if !eof && (r == 'x' || r == 'X') {
		t.tb.AppendTemp(r)
		return false, HexadecimalCharacterReferenceStartState
	}
	return true, DecimalCharacterReferenceStartState
}

func (t *Tokenizer) hexadecimalCharacterReferenceStartStateHandler(r rune, eof bool) (bool, State) {
	if !eof && isHexDigit(r) {
		return true, HexadecimalCharacterReferenceState
	}
	t.reportError(AbsenceOfDigitsInNumericCharacterReference)
	t.flushCodePointsAsCharacterReference()
	return true, t.returnState
}

func (t *Tokenizer) decimalCharacterReferenceStartStateHandler(r rune, eof bool) (bool, State) {
	if !eof && r >= '0' && r <= '9' {
		return true, DecimalCharacterReferenceState
	}
	t.reportError(AbsenceOfDigitsInNumericCharacterReference)
	t.flushCodePointsAsCharacterReference()
	return true, t.returnState
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') || (r >= 'a' && r <= 'f')
}

func hexDigitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	default:
		return int(r-'a') + 10
	}
}

func (t *Tokenizer) hexadecimalCharacterReferenceStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(MissingSemicolonAfterCharacterReference)
		return true, NumericCharacterReferenceEndState
	}
	switch {
	case isHexDigit(r):
		t.tb.AccumulateCharRefCode(hexDigitValue(r), 16)
		return false, HexadecimalCharacterReferenceState
	case r == ';':
		return false, NumericCharacterReferenceEndState
	default:
		t.reportError(MissingSemicolonAfterCharacterReference)
		return true, NumericCharacterReferenceEndState
	}
}

func (t *Tokenizer) decimalCharacterReferenceStateHandler(r rune, eof bool) (bool, State) {
	if eof {
		t.reportError(MissingSemicolonAfterCharacterReference)
		return true, NumericCharacterReferenceEndState
	}
	switch {
	case r >= '0' && r <= '9':
		t.tb.AccumulateCharRefCode(int(r-'0'), 10)
		return false, DecimalCharacterReferenceState
	case r == ';':
		return false, NumericCharacterReferenceEndState
	default:
		t.reportError(MissingSemicolonAfterCharacterReference)
		return true, NumericCharacterReferenceEndState
	}
}

// numericCharacterReferenceEndStateHandler clamps/maps the accumulated
// reference code to its final character and then always reconsumes
// whatever rune triggered entry into this state in the return state: the
// rune is irrelevant to this state's own decision (it never inspects r),
// but still belongs to whatever comes next. The reconsume-via-return-value
// loop in step() hands that rune back automatically, so no explicit
// Reader.Backtrack is needed here, unlike a single-character-pushback
// reader.
func (t *Tokenizer) numericCharacterReferenceEndStateHandler(r rune, eof bool) (bool, State) {
	code := rune(t.tb.CharRefCode())
	switch {
	case code == 0:
		t.reportError(NullCharacterReference)
		code = 0xFFFD
	case code > 0x10FFFF:
		t.reportError(CharacterReferenceOutsideUnicodeRange)
		code = 0xFFFD
	case isSurrogate(code):
		t.reportError(SurrogateCharacterReference)
		code = 0xFFFD
	case isNonCharacter(code):
		t.reportError(NoncharacterCharacterReference)
	case code == 0x0D || (isControl(code) && !isASCIIWhitespace(code)):
		t.reportError(ControlCharacterReference)
		if repl, ok := numericReferenceC1Replacements[int(code)]; ok {
			code = repl
		}
	}

	t.tb.ResetTemp()
	t.tb.AppendTemp(code)
	t.flushCodePointsAsCharacterReference()
	return true, t.returnState
}
