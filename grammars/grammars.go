// Package grammars ships ready-made transducer configurations for
// common structural-text tasks. They double as end-to-end examples of
// wiring symbol groups, tables and stack configuration together.
package grammars

import (
	parfst "github.com/biggeezerdevelopment/parfst-go"
)

// Bracket and sentinel symbols shared by the builders.
const (
	EmptyStack = '_'
	readMarker = 0x01
)

// Identity returns a single-state grammar over the four bracket symbols
// whose translation table maps every symbol to itself, with the
// catch-all group rendered as a space. Transducing any input reproduces
// it verbatim (modulo catch-all symbols), with an index entry per
// position.
func Identity() parfst.Grammar {
	groups := []parfst.SymbolGroup{
		{Name: "OBC", Members: []byte("{")},
		{Name: "OBT", Members: []byte("[")},
		{Name: "CBC", Members: []byte("}")},
		{Name: "CBT", Members: []byte("]")},
	}
	// One state, five columns (catch-all last).
	return parfst.Grammar{
		Groups:      groups,
		Transitions: [][]uint8{{0, 0, 0, 0, 0}},
		Translations: [][][]byte{{
			[]byte("{"), []byte("["), []byte("}"), []byte("]"), []byte(" "),
		}},
		StartState: 0,
	}
}

// Transducer states of the string-aware bracket grammar.
const (
	stateOutside = 0 // outside any quoted string
	stateString  = 1 // inside a quoted string
	stateEscape  = 2 // immediately after a backslash inside a string
)

// Brackets returns a string-aware bracket filter plus the matching
// stack configuration. The transducer copies brackets through while
// outside quoted strings and swallows everything else; a quote flips
// into the in-string state, where brackets no longer count and a
// backslash shields the following symbol. Feeding the transduced output
// to the resolver therefore tracks nesting of the raw input with quoted
// text ignored.
func Brackets() (parfst.Grammar, parfst.StackConfig) {
	groups := []parfst.SymbolGroup{
		{Name: "OBC", Members: []byte("{")},
		{Name: "OBT", Members: []byte("[")},
		{Name: "CBC", Members: []byte("}")},
		{Name: "CBT", Members: []byte("]")},
		{Name: "QTE", Members: []byte(`"`)},
		{Name: "ESC", Members: []byte(`\`)},
	}
	none := []byte(nil)

	g := parfst.Grammar{
		Groups: groups,
		// Columns: OBC OBT CBC CBT QTE ESC other
		Transitions: [][]uint8{
			stateOutside: {stateOutside, stateOutside, stateOutside, stateOutside, stateString, stateOutside, stateOutside},
			stateString:  {stateString, stateString, stateString, stateString, stateOutside, stateEscape, stateString},
			stateEscape:  {stateString, stateString, stateString, stateString, stateString, stateString, stateString},
		},
		Translations: [][][]byte{
			stateOutside: {[]byte("{"), []byte("["), []byte("}"), []byte("]"), none, none, none},
			stateString:  {none, none, none, none, none, none, none},
			stateEscape:  {none, none, none, none, none, none, none},
		},
		StartState: stateOutside,
	}

	cfg := parfst.StackConfig{
		PushSymbols:   []byte("{["),
		PopSymbols:    []byte("}]"),
		EmptySentinel: EmptyStack,
		ReadMarker:    readMarker,
	}
	return g, cfg
}
