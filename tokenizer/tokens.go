package tokenizer

// tokenType discriminates the variants of Token.
type tokenType int

const (
	characterToken tokenType = iota
	startTagToken
	endTagToken
	commentToken
	doctypeToken
	endOfFileToken
)

var tokenTypeNames = [...]string{
	"Character",
	"StartTag",
	"EndTag",
	"Comment",
	"Doctype",
	"EndOfFile",
}

func (t tokenType) String() string {
	if int(t) < 0 || int(t) >= len(tokenTypeNames) {
		return "tokenType(?)"
	}
	return tokenTypeNames[t]
}

// Attr is one name/value pair on a start or end tag. Names are lowercased
// during construction; values are taken verbatim.
type Attr struct {
	Name  string
	Value string
}

// Token is a tagged union over the six kinds of HTML token. Only the
// fields relevant to Type are meaningful; the zero value of the others is
// never inspected by a correct consumer.
type Token struct {
	Type tokenType

	// Character
	Data rune

	// StartTag / EndTag
	TagName     string
	Attributes  []Attr
	SelfClosing bool

	// Comment
	CommentData string

	// Doctype. nil means "missing"; a non-nil pointer to "" means
	// "present but empty" — WHATWG distinguishes the two for the name and
	// the public/system identifiers.
	DoctypeName      *string
	PublicIdentifier *string
	SystemIdentifier *string
	ForceQuirks      bool
}

// Equal reports whether two tokens are the same observable token, used by
// tests in place of reflect.DeepEqual so that, e.g., two nil Attributes
// slices of different underlying capacity still compare equal.
func (t Token) Equal(o Token) bool {
	if t.Type != o.Type {
		return false
	}
	switch t.Type {
	case characterToken:
		return t.Data == o.Data
	case startTagToken, endTagToken:
		if t.TagName != o.TagName || t.SelfClosing != o.SelfClosing {
			return false
		}
		if len(t.Attributes) != len(o.Attributes) {
			return false
		}
		for i := range t.Attributes {
			if t.Attributes[i] != o.Attributes[i] {
				return false
			}
		}
		return true
	case commentToken:
		return t.CommentData == o.CommentData
	case doctypeToken:
		return eqStringPtr(t.DoctypeName, o.DoctypeName) &&
			eqStringPtr(t.PublicIdentifier, o.PublicIdentifier) &&
			eqStringPtr(t.SystemIdentifier, o.SystemIdentifier) &&
			t.ForceQuirks == o.ForceQuirks
	case endOfFileToken:
		return true
	default:
		return false
	}
}

func eqStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// TokenBuilder accumulates partial tag/attribute/comment/doctype state
// across a run of state-machine transitions and produces finished Tokens
// on demand. It is owned exclusively by a single Tokenizer. The Build*
// methods do not clear it; each Begin* method resets the state of the
// token kind it starts.
type TokenBuilder struct {
	tagName     []rune
	isEndTag    bool
	selfClosing bool

	attrs     []Attr
	attrNames map[string]bool

	attrName     []rune
	attrValue    []rune
	hasPendingAttr bool

	commentData []rune

	doctypeName    []rune
	hasDoctypeName bool
	publicID       []rune
	hasPublicID    bool
	systemID       []rune
	hasSystemID    bool
	forceQuirks    bool

	tempBuffer  []rune
	charRefCode int
}

// NewTokenBuilder returns a ready-to-use, empty builder.
func NewTokenBuilder() *TokenBuilder {
	return &TokenBuilder{}
}

// --- tag construction ---

// BeginTag starts a new partial tag, discarding any previous partial tag
// state. end selects whether it is an end tag.
func (b *TokenBuilder) BeginTag(end bool) {
	b.tagName = b.tagName[:0]
	b.isEndTag = end
	b.selfClosing = false
	b.attrs = nil
	b.attrNames = nil
	b.attrName = nil
	b.attrValue = nil
	b.hasPendingAttr = false
}

// AppendTagName appends r, lowercased, to the current tag name.
func (b *TokenBuilder) AppendTagName(r rune) {
	b.tagName = append(b.tagName, foldASCIIUpper(r))
}

// TagName returns the tag name accumulated so far.
func (b *TokenBuilder) TagName() string {
	return string(b.tagName)
}

// SetSelfClosing marks the partial tag self-closing.
func (b *TokenBuilder) SetSelfClosing() {
	b.selfClosing = true
}

// --- attribute construction ---

// BeginAttribute starts a new pending attribute. It does not commit a
// previously pending attribute: one that was not closed out with
// FinishAttribute is discarded. Call this on entering AttributeName.
func (b *TokenBuilder) BeginAttribute() {
	b.attrName = nil
	b.attrValue = nil
	b.hasPendingAttr = true
}

// AppendAttrName appends r, lowercased, to the pending attribute's name.
func (b *TokenBuilder) AppendAttrName(r rune) {
	b.attrName = append(b.attrName, foldASCIIUpper(r))
}

// AppendAttrValue appends r, unmodified, to the pending attribute's
// value.
func (b *TokenBuilder) AppendAttrValue(r rune) {
	b.attrValue = append(b.attrValue, r)
}

// FinishAttribute closes out the pending attribute: if its name
// duplicates one already attached to this tag, the new attribute (name
// and value both) is discarded and duplicate reports true; otherwise it
// is appended, in order, to the tag's attribute list. Calling
// FinishAttribute with no pending attribute is a no-op.
func (b *TokenBuilder) FinishAttribute() (duplicate bool) {
	if !b.hasPendingAttr {
		return false
	}
	b.hasPendingAttr = false
	name := string(b.attrName)
	if b.attrNames == nil {
		b.attrNames = make(map[string]bool)
	}
	if b.attrNames[name] {
		return true
	}
	b.attrNames[name] = true
	b.attrs = append(b.attrs, Attr{Name: name, Value: string(b.attrValue)})
	return false
}

// BuildTag finishes any pending attribute and returns the completed
// StartTag or EndTag token. An end tag is always emitted with no
// attributes and self-closing cleared, even if some were parsed —
// WHATWG discards them for end tags rather than rejecting the markup.
func (b *TokenBuilder) BuildTag() Token {
	b.FinishAttribute()
	if b.isEndTag {
		return Token{Type: endTagToken, TagName: b.TagName()}
	}
	return Token{
		Type:        startTagToken,
		TagName:     b.TagName(),
		Attributes:  b.attrs,
		SelfClosing: b.selfClosing,
	}
}

// --- comment construction ---

// BeginComment starts a new partial comment, optionally seeded with
// initial data (used by the markup-declaration-open bogus-comment path,
// which seeds "[CDATA[").
func (b *TokenBuilder) BeginComment(seed string) {
	b.commentData = []rune(seed)
}

// AppendComment appends r to the comment under construction.
func (b *TokenBuilder) AppendComment(r rune) {
	b.commentData = append(b.commentData, r)
}

// AppendCommentString appends every rune of s to the comment under
// construction.
func (b *TokenBuilder) AppendCommentString(s string) {
	b.commentData = append(b.commentData, []rune(s)...)
}

// BuildComment returns the completed Comment token.
func (b *TokenBuilder) BuildComment() Token {
	return Token{Type: commentToken, CommentData: string(b.commentData)}
}

// --- doctype construction ---

// BeginDoctype starts a new partial DOCTYPE with all fields missing.
func (b *TokenBuilder) BeginDoctype() {
	b.doctypeName = nil
	b.hasDoctypeName = false
	b.publicID = nil
	b.hasPublicID = false
	b.systemID = nil
	b.hasSystemID = false
	b.forceQuirks = false
}

// AppendDoctypeName appends r, lowercased, to the DOCTYPE name and marks
// the name present.
func (b *TokenBuilder) AppendDoctypeName(r rune) {
	b.hasDoctypeName = true
	b.doctypeName = append(b.doctypeName, foldASCIIUpper(r))
}

// EnsurePublicIdentifier marks the public identifier present (possibly
// empty) without appending any character; call on the opening quote.
func (b *TokenBuilder) EnsurePublicIdentifier() {
	b.hasPublicID = true
}

// AppendPublicIdentifier appends r to the public identifier.
func (b *TokenBuilder) AppendPublicIdentifier(r rune) {
	b.hasPublicID = true
	b.publicID = append(b.publicID, r)
}

// EnsureSystemIdentifier marks the system identifier present (possibly
// empty) without appending any character; call on the opening quote.
func (b *TokenBuilder) EnsureSystemIdentifier() {
	b.hasSystemID = true
}

// AppendSystemIdentifier appends r to the system identifier.
func (b *TokenBuilder) AppendSystemIdentifier(r rune) {
	b.hasSystemID = true
	b.systemID = append(b.systemID, r)
}

// SetForceQuirks sets the force-quirks flag on the DOCTYPE under
// construction.
func (b *TokenBuilder) SetForceQuirks() {
	b.forceQuirks = true
}

// BuildDoctype returns the completed Doctype token.
func (b *TokenBuilder) BuildDoctype() Token {
	tok := Token{Type: doctypeToken, ForceQuirks: b.forceQuirks}
	if b.hasDoctypeName {
		name := string(b.doctypeName)
		tok.DoctypeName = &name
	}
	if b.hasPublicID {
		id := string(b.publicID)
		tok.PublicIdentifier = &id
	}
	if b.hasSystemID {
		id := string(b.systemID)
		tok.SystemIdentifier = &id
	}
	return tok
}

// --- character / end-of-file tokens ---

// CharacterToken returns a Character token for r.
func CharacterToken(r rune) Token {
	return Token{Type: characterToken, Data: r}
}

// EndOfFileToken returns the terminating EndOfFile token.
func EndOfFileToken() Token {
	return Token{Type: endOfFileToken}
}

// --- temporary buffer ---

// AppendTemp appends r to the temporary buffer.
func (b *TokenBuilder) AppendTemp(r rune) {
	b.tempBuffer = append(b.tempBuffer, r)
}

// Temp returns the temporary buffer's contents.
func (b *TokenBuilder) Temp() []rune {
	return b.tempBuffer
}

// TempString returns the temporary buffer's contents as a string.
func (b *TokenBuilder) TempString() string {
	return string(b.tempBuffer)
}

// ResetTemp empties the temporary buffer.
func (b *TokenBuilder) ResetTemp() {
	b.tempBuffer = b.tempBuffer[:0]
}

// --- character reference code accumulator ---

const maxCharRefCode = 0x10FFFF + 1

// ResetCharRefCode zeroes the numeric character reference accumulator.
func (b *TokenBuilder) ResetCharRefCode() {
	b.charRefCode = 0
}

// AccumulateCharRefCode folds one more digit (already converted to its
// numeric value) in the given base into the accumulator, saturating at
// maxCharRefCode so a pathologically long sequence of digits cannot
// overflow an int.
func (b *TokenBuilder) AccumulateCharRefCode(digit, base int) {
	if b.charRefCode >= maxCharRefCode {
		return
	}
	b.charRefCode = b.charRefCode*base + digit
	if b.charRefCode >= maxCharRefCode {
		b.charRefCode = maxCharRefCode
	}
}

// CharRefCode returns the accumulated numeric character reference value.
func (b *TokenBuilder) CharRefCode() int {
	return b.charRefCode
}

// foldASCIIUpper lowercases r if it is an ASCII upper-alpha code point;
// every other code point passes through unchanged.
func foldASCIIUpper(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 0x20
	}
	return r
}

// appropriateEndTag reports whether tagName is the "appropriate end tag"
// given the name of the most recently emitted start tag: an end tag
// matches only a start tag of the identical, case-folded name.
func appropriateEndTag(lastStartTagName, tagName string) bool {
	return lastStartTagName != "" && lastStartTagName == tagName
}
