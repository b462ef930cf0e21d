// Package catalog loads exercise catalogues.
//
// A catalogue is a YAML document with global start and end messages and an
// ordered list of exercises. Loading is strict: unknown fields, bad regexes,
// contradictory conditions and unknown hooks are all reported together as an
// *AggregateError.
package catalog
