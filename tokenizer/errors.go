package tokenizer

import "strconv"

// ParseErrorKind names a recoverable deviation from well-formed HTML, or
// (MalformedInput) the single fatal condition that ends tokenization early.
// Every recoverable kind is one of WHATWG HTML §13.2.5's parse errors, but
// not every WHATWG parse error has a kind here (for example, an end tag
// carrying attributes is not reported).
type ParseErrorKind int

const (
	UnexpectedNullCharacter ParseErrorKind = iota
	UnexpectedQuestionMarkInsteadOfTagName
	EofBeforeTagName
	InvalidFirstCharacterOfTagName
	MissingEndTagName
	EofInTag
	EofInComment
	EofInDoctype
	EofInScriptHtmlCommentLikeText
	EofInCdata
	AbruptClosingOfEmptyComment
	IncorrectlyOpenedComment
	IncorrectlyClosedComment
	NestedComment
	MissingAttributeValue
	MissingWhitespaceBetweenAttributes
	UnexpectedEqualsSignBeforeAttributeName
	UnexpectedCharacterInAttributeName
	UnexpectedCharacterInUnquotedAttributeValue
	UnexpectedSolidusInTag
	DuplicateAttribute
	UnknownNamedCharacterReference
	MissingSemicolonAfterCharacterReference
	AbsenceOfDigitsInNumericCharacterReference
	NullCharacterReference
	CharacterReferenceOutsideUnicodeRange
	SurrogateCharacterReference
	NoncharacterCharacterReference
	ControlCharacterReference
	CDataInHtmlContent
	MissingWhitespaceBeforeDoctypeName
	MissingDoctypeName
	MissingDoctypePublicIdentifier
	MissingDoctypeSystemIdentifier
	MissingQuoteBeforeDoctypePublicIdentifier
	MissingQuoteBeforeDoctypeSystemIdentifier
	AbruptDoctypePublicIdentifier
	AbruptDoctypeSystemIdentifier
	MissingWhitespaceAfterDoctypePublicKeyword
	MissingWhitespaceAfterDoctypeSystemKeyword
	MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers
	UnexpectedCharacterAfterDoctypeSystemIdentifier
	InvalidCharacterSequenceAfterDoctypeName
	// MalformedInput is the only fatal kind: the byte source produced bytes
	// the reader could not decode as UTF-8. It is reported through the same
	// ErrorSink as every other kind, immediately before the terminating
	// EndOfFile token.
	MalformedInput
)

var parseErrorKindNames = [...]string{
	"UnexpectedNullCharacter",
	"UnexpectedQuestionMarkInsteadOfTagName",
	"EofBeforeTagName",
	"InvalidFirstCharacterOfTagName",
	"MissingEndTagName",
	"EofInTag",
	"EofInComment",
	"EofInDoctype",
	"EofInScriptHtmlCommentLikeText",
	"EofInCdata",
	"AbruptClosingOfEmptyComment",
	"IncorrectlyOpenedComment",
	"IncorrectlyClosedComment",
	"NestedComment",
	"MissingAttributeValue",
	"MissingWhitespaceBetweenAttributes",
	"UnexpectedEqualsSignBeforeAttributeName",
	"UnexpectedCharacterInAttributeName",
	"UnexpectedCharacterInUnquotedAttributeValue",
	"UnexpectedSolidusInTag",
	"DuplicateAttribute",
	"UnknownNamedCharacterReference",
	"MissingSemicolonAfterCharacterReference",
	"AbsenceOfDigitsInNumericCharacterReference",
	"NullCharacterReference",
	"CharacterReferenceOutsideUnicodeRange",
	"SurrogateCharacterReference",
	"NoncharacterCharacterReference",
	"ControlCharacterReference",
	"CDataInHtmlContent",
	"MissingWhitespaceBeforeDoctypeName",
	"MissingDoctypeName",
	"MissingDoctypePublicIdentifier",
	"MissingDoctypeSystemIdentifier",
	"MissingQuoteBeforeDoctypePublicIdentifier",
	"MissingQuoteBeforeDoctypeSystemIdentifier",
	"AbruptDoctypePublicIdentifier",
	"AbruptDoctypeSystemIdentifier",
	"MissingWhitespaceAfterDoctypePublicKeyword",
	"MissingWhitespaceAfterDoctypeSystemKeyword",
	"MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers",
	"UnexpectedCharacterAfterDoctypeSystemIdentifier",
	"InvalidCharacterSequenceAfterDoctypeName",
	"MalformedInput",
}

func (k ParseErrorKind) String() string {
	if k < 0 || int(k) >= len(parseErrorKindNames) {
		return "ParseErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
	return parseErrorKindNames[k]
}

// ParseError pairs a ParseErrorKind with the reader's position at the
// moment the error is reported, which is just past the last code point
// consumed (normally the one that triggered it).
type ParseError struct {
	Kind ParseErrorKind
	Pos  Position
}

func (e ParseError) Error() string {
	return e.Kind.String() + " at " + e.Pos.String()
}

// String renders a Position as "line:byteCol/charCol", a compact format
// suited to inline debug logging of rune positions.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.ByteCol) + "/" + strconv.Itoa(p.CharCol)
}

// ErrorSink receives parse errors as they are discovered. It is a pure
// side channel: it is called synchronously from within Token and
// MUST NOT panic or block for long, since it runs on the tokenizer's only
// thread of control.
type ErrorSink func(ParseError)
