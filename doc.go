// Package htmlsanitizer provides a resilient, policy-driven HTML
// sanitizer for Go applications.
//
// # Overview
//
// htmlsanitizer does not build a DOM. It splits an untrusted HTML
// fragment into lexical tokens, walks them with its own permissive
// tokenizer (never erroring, always making forward progress), and
// feeds the resulting start-tag/end-tag/text events to a balancing
// sanitizer that checks every tag and attribute against a [Schema]
// before emitting well-formed output. There is no tree construction:
// nesting is repaired locally against an open-element stack, not by
// HTML5 foster-parenting or adoption-agency rules.
//
// # Policies
//
// A [Policy] controls:
//   - Which elements and attributes are permitted, via its [Schema]
//   - How href/src-style URIs are rewritten or rejected, via
//     [Policy.URIRewriter]
//   - How id/class/name tokens are rewritten or rejected, via
//     [Policy.NMTokenPolicy]
//   - Zero or more [Transformer] callbacks that can mutate or drop an
//     allowed tag's attributes
//   - Whether plain-text URLs in text are turned into clickable links
//     ([Policy.Linkify])
//   - A maximum open-element stack depth ([Policy.MaxDepth])
//
// Two built-in policies are provided:
//   - [DefaultPolicy] — a permissive but safe policy covering common
//     content tags. Good starting point for blog posts, articles, etc.
//   - [StrictPolicy] — a minimal policy allowing only basic
//     formatting, paragraph and list tags, with no attribute other
//     than id. Good for comment sections.
//
// # Security
//
// htmlsanitizer defends against common XSS vectors including:
//   - Script injection via <script> elements
//   - Event handler attributes (onclick, onerror, etc.), typed SCRIPT
//     in the attribute schema and always deleted
//   - javascript: and other non-http(s)/mailto URL schemes
//   - CSS expression injection via style attributes (dropped unless a
//     [CSSSchema] collaborator is configured)
//
// It does NOT provide a Content Security Policy header; pair with
// proper HTTP headers for defence in depth.
//
// # Thread Safety
//
// [Sanitize], [SanitizeWithPolicy] and [StripTags] are safe for
// concurrent use. Policy and Schema values should not be mutated
// after first use.
//
// # Example
//
//	p := htmlsanitizer.DefaultPolicy()
//	clean := htmlsanitizer.Sanitize(userInput, p)
package htmlsanitizer
