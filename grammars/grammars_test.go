package grammars_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parfst "github.com/biggeezerdevelopment/parfst-go"
	"github.com/biggeezerdevelopment/parfst-go/grammars"
)

func TestIdentity_ReproducesInput(t *testing.T) {
	eng, err := parfst.NewEngine(grammars.Identity())
	require.NoError(t, err)

	input := []byte("{[ ] }")
	res, err := eng.Transduce(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, input, res.Output)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, res.Positions)
}

func TestBrackets_FiltersToStructure(t *testing.T) {
	g, cfg := grammars.Brackets()
	eng, err := parfst.NewEngine(g, parfst.WithStack(cfg))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"k":1}`, "{}"},
		{"nested", `{"k":[1,2,{}]}`, "{[{}]}"},
		{"bracket in string ignored", `{"k":"a}b"}`, "{}"},
		{"escaped quote stays in string", `{"k":"a\"}","m":[]}`, "{[]}"},
		{"escaped backslash ends escape", `{"k":"a\\","m":[]}`, "{[]}"},
		{"brackets only", "{[]}", "{[]}"},
		{"no structure", `"just text"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := eng.Transduce(context.Background(), []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(res.Output))
		})
	}
}

func TestBrackets_PositionsPointAtSource(t *testing.T) {
	g, cfg := grammars.Brackets()
	eng, err := parfst.NewEngine(g, parfst.WithStack(cfg))
	require.NoError(t, err)

	input := []byte(`{"a":[null]}`)
	res, err := eng.Transduce(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "{[]}", string(res.Output))
	for i, pos := range res.Positions {
		assert.Equal(t, res.Output[i], input[pos], "position %d", i)
	}
}

func TestBrackets_EndToEndStackResolution(t *testing.T) {
	g, cfg := grammars.Brackets()
	eng, err := parfst.NewEngine(g, parfst.WithStack(cfg))
	require.NoError(t, err)

	// Brackets inside the quoted string must not disturb nesting.
	input := []byte(`{"k":"a}b","v":[1]}`)
	tape, err := eng.ResolveInput(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, tape, 4) // structure is {[]}

	assert.Equal(t, byte('{'), tape[0])
	assert.Equal(t, byte('['), tape[1])
	assert.Equal(t, byte('{'), tape[2])
	assert.Equal(t, byte(grammars.EmptyStack), tape[3])
}
