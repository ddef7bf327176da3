// Package atf parses ATF cuneiform transliterations into a structured document tree.
//
// ATF is a line-oriented format: directives beginning with "&", "@", "#", "$" or ">>"
// describe the inscribed object, its surfaces and columns, and attach metadata, while
// numbered lines carry the transliterated text itself.
//
// # Document Tree
//
// Parsing produces a strictly owned tree:
//
//   - Document: header metadata plus an ordered list of surfaces
//   - Surface: one physical face (obverse, reverse, edge, ...)
//   - Column: a subdivision of a surface; number 0 marks an implicit column
//   - Line: either a StateLine ("beginning broken") or a ContentLine
//   - Word: Punctuation, Broken, Logogram, Determinative or PlainWord
//
// Composite references and inline translations are copied by value onto the
// content line they follow; the document also keeps a flat log of every
// composite reference it saw.
//
// # Permissive Parsing
//
// Transliterations are hand-entered and irregular. Parse never returns an error:
// a line that matches no known pattern is dropped, an unrecognized character
// inside a content line is skipped, and an unterminated "[", "_" or "{" span is
// scanned as ordinary text. Callers that need a "no transliteration" state check
// Document.Empty.
//
// # Lookup Keys
//
// Every word that can be looked up in a dictionary carries a key produced by
// Normalize. The function is pure, so identical display text always yields the
// same key and callers may cache glosses by key.
//
// # Example
//
//	doc, legend := atf.ParseWithLegend("&P000001 = Example\n@obverse\n1. {d}inana lugal{ki}")
//	for _, s := range doc.Surfaces {
//	    fmt.Println(s.Label, len(s.Columns))
//	}
//	_ = legend
package atf
