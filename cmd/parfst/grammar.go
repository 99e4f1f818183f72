package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	parfst "github.com/biggeezerdevelopment/parfst-go"
	"github.com/biggeezerdevelopment/parfst-go/grammars"
)

// grammarFile is the on-disk yaml schema of a grammar. Single-character
// concerns (sentinels) are written as one-character strings.
type grammarFile struct {
	Groups []struct {
		Name    string `yaml:"name"`
		Members string `yaml:"members"`
	} `yaml:"groups"`
	Start        uint8      `yaml:"start"`
	Transitions  [][]uint8  `yaml:"transitions"`
	Translations [][]string `yaml:"translations"`
	Stack        *struct {
		Push      string `yaml:"push"`
		Pop       string `yaml:"pop"`
		Empty     string `yaml:"empty"`
		Marker    string `yaml:"marker"`
		LevelBits int    `yaml:"level_bits"`
	} `yaml:"stack"`
}

// loadGrammar resolves a builtin grammar name or reads a yaml grammar
// file. The stack configuration is nil when the grammar has none.
func loadGrammar(name string) (parfst.Grammar, *parfst.StackConfig, error) {
	switch name {
	case "identity":
		return grammars.Identity(), nil, nil
	case "brackets":
		g, cfg := grammars.Brackets()
		return g, &cfg, nil
	}

	raw, err := os.ReadFile(name)
	if err != nil {
		return parfst.Grammar{}, nil, errors.Wrap(err, "can not read grammar file")
	}
	var gf grammarFile
	if err := yaml.Unmarshal(raw, &gf); err != nil {
		return parfst.Grammar{}, nil, errors.Wrap(err, "can not parse grammar file")
	}

	g := parfst.Grammar{
		StartState:   gf.Start,
		Transitions:  gf.Transitions,
		Translations: make([][][]byte, len(gf.Translations)),
	}
	g.Groups = make([]parfst.SymbolGroup, len(gf.Groups))
	for i, grp := range gf.Groups {
		g.Groups[i] = parfst.SymbolGroup{Name: grp.Name, Members: []byte(grp.Members)}
	}
	for s, row := range gf.Translations {
		cells := make([][]byte, len(row))
		for i, out := range row {
			if out != "" {
				cells[i] = []byte(out)
			}
		}
		g.Translations[s] = cells
	}

	if gf.Stack == nil {
		return g, nil, nil
	}
	cfg := parfst.StackConfig{
		PushSymbols: []byte(gf.Stack.Push),
		PopSymbols:  []byte(gf.Stack.Pop),
		LevelBits:   gf.Stack.LevelBits,
	}
	if len(gf.Stack.Empty) != 1 || len(gf.Stack.Marker) != 1 {
		return parfst.Grammar{}, nil, fmt.Errorf("stack sentinels must be single characters")
	}
	cfg.EmptySentinel = gf.Stack.Empty[0]
	cfg.ReadMarker = gf.Stack.Marker[0]
	return g, &cfg, nil
}

// readInput reads a source file, stdin for "-", transparently
// decompressing zstd payloads.
func readInput(path string) ([]byte, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "can not read input")
	}
	if strings.HasSuffix(path, ".zst") || strings.HasSuffix(path, ".zstd") {
		raw, err = zstd.Decompress(nil, raw)
		if err != nil {
			return nil, errors.Wrap(err, "can not decompress input")
		}
	}
	return raw, nil
}
