// Package xmldoc loads the console's small XML descriptors into an etree
// document and writes them back in one fixed layout.
//
// The layout matches what the console's own tooling produced when the
// baseline digests were recorded:
//
//   - a `<?xml version="1.0"?>` declaration, whatever the input declared
//   - comments, processing instructions and doctypes dropped
//   - whitespace-only text dropped, other text kept verbatim
//   - two-space indentation, one element per line
//   - leaf elements written inline: `<a k="v">text</a>`
//   - childless elements written as `<a k="v" />`
//   - UTF-8 output with a trailing newline
//   - tabs, newlines and carriage returns in attribute values written as spaces
//
// The last rule has one known gap. The console's tooling turned only raw
// whitespace in attribute values into spaces and wrote whitespace given as a
// character reference (&#9;, &#10;, &#13;) back as that reference. The parser
// resolves both forms to the same character, so such a reference comes out
// as a space here and the file hashes differently. None of the descriptors
// with recorded baselines carry one.
//
// Serialize is a pure function of the tree, so repeated calls on the same
// document return identical bytes.
package xmldoc
