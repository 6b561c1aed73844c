// Package resolution turns one artifact into canonical license keys.
//
// Names are taken from the first source that yields any (override,
// declared metadata, info files, external registry) and each name is
// canonicalized by an ordered chain of key matchers.
package resolution
