// Package tokenizer implements the tokenization stage of the WHATWG HTML
// Standard, §13.2.5. It turns a stream of bytes into a lazy sequence of
// tokens (characters, start/end tags with attributes, comments, DOCTYPEs,
// and end-of-file) plus a side channel of parse errors.
//
// Tree construction, the DOM, and the named character reference table
// itself are out of scope: this package consumes the named-reference table
// as an injected dictionary and leaves the CDATA-section entry decision to
// an injected predicate, exactly as WHATWG specifies for an "adjusted
// current node" check that only tree construction can answer.
package tokenizer
