// Package rag implements lexical retrieval over the document corpus and
// prepares the grounding context handed to the language model.
//
// Scoring is a case-insensitive literal substring test of the whole query
// against each document:
//   - +10 when the title contains the query
//   - +5 when at least one key finding contains it
//   - +2 when the content contains it
//
// Bonuses add up. Documents scoring zero are dropped, the rest are ranked
// by score (ties keep corpus order) and capped at MaxResults. An empty
// query is a substring of everything and therefore returns the first
// MaxResults documents.
package rag
