// Package cache keeps tokenized and parsed Hlang sources so unchanged
// modules skip the tokenizer and parser. Entries are addressed by the hash of
// the source text and the tab width it was tokenized with.
package cache
