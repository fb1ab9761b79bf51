// Package engine evaluates book-source rules against fetched payloads.
//
// A rule locates values inside an HTML or JSON document using one of three
// dialects, chosen from its literal prefix:
//   - segment dialect: "@css:" or no prefix, "@"-separated steps such as
//     "class.item.0@tag.a@href"
//   - XPath: "@XPath:" or a leading "//"
//   - JSONPath: "@json:" or a leading "$."
//
// Rules combine with "||" (first non-empty), "&&" (concatenate) and "%%"
// (ordered intersection), and may end in "##pattern##replacement" pairs
// applied to every result.
//
// Built on:
//   - goquery: segment dialect over the shared HTML tree
//   - htmlquery + antchfx/xpath: XPath over the same tree
//   - ojg/jp: JSONPath over sonic-decoded values
//   - regexp2: multiline, dot-all regex post-processing
//
// Malformed rules and malformed payloads never fail an extraction; they
// produce empty values.
//
// Example Usage:
//
//	doc := engine.NewDocument(body)
//	for _, item := range doc.List("@css:.book-list > li") {
//		name := doc.Pick(item, "@css:.name@text", engine.Options{})
//		link := doc.Pick(item, "@css:a@href", engine.Options{BaseURL: pageURL, ResolveURL: true})
//	}
package engine
