package benchmarks

import (
	"bytes"
	"context"
	"testing"

	parfst "github.com/biggeezerdevelopment/parfst-go"
	"github.com/biggeezerdevelopment/parfst-go/grammars"
)

var (
	smallInput = []byte(`{"name":"John","tags":["a","b"],"profile":{"city":"New York"}}`)

	mediumInput []byte

	largeInput []byte
)

func init() {
	record := []byte(`{"id":12345,"name":"User {Name} Here","tags":["tag1","tag2"],"profile":{"bio":"text with ] inside","active":true}},`)

	mediumInput = append([]byte{'['}, bytes.Repeat(record, 100)...)
	mediumInput[len(mediumInput)-1] = ']'

	largeInput = append([]byte{'['}, bytes.Repeat(record, 10_000)...)
	largeInput[len(largeInput)-1] = ']'
}

// sequentialFilter is the plain one-pass baseline the parallel transducer
// competes with: copy structural brackets, skip quoted strings.
func sequentialFilter(input []byte) []byte {
	out := make([]byte, 0, len(input)/4)
	inString, escaped := false, false
	for _, c := range input {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '}', '[', ']':
			out = append(out, c)
		}
	}
	return out
}

// sequentialResolve is the stack-walk baseline for the resolver.
func sequentialResolve(input []byte) []byte {
	tape := make([]byte, len(input))
	stack := make([]byte, 0, 64)
	for i, c := range input {
		switch c {
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
		if len(stack) > 0 {
			tape[i] = stack[len(stack)-1]
		} else {
			tape[i] = grammars.EmptyStack
		}
	}
	return tape
}

func newEngine(b *testing.B, lanes int) *parfst.Engine {
	b.Helper()
	g, cfg := grammars.Brackets()
	eng, err := parfst.NewEngine(g, parfst.WithStack(cfg), parfst.WithLanes(lanes))
	if err != nil {
		b.Fatal(err)
	}
	return eng
}

// Transduce benchmarks

func BenchmarkTransduceSmall_Sequential(b *testing.B) {
	b.SetBytes(int64(len(smallInput)))
	for i := 0; i < b.N; i++ {
		_ = sequentialFilter(smallInput)
	}
}

func BenchmarkTransduceSmall_ParFST(b *testing.B) {
	eng := newEngine(b, 0)
	ctx := context.Background()
	b.SetBytes(int64(len(smallInput)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.Transduce(ctx, smallInput); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTransduceMedium_Sequential(b *testing.B) {
	b.SetBytes(int64(len(mediumInput)))
	for i := 0; i < b.N; i++ {
		_ = sequentialFilter(mediumInput)
	}
}

func BenchmarkTransduceMedium_ParFST(b *testing.B) {
	eng := newEngine(b, 0)
	ctx := context.Background()
	b.SetBytes(int64(len(mediumInput)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.Transduce(ctx, mediumInput); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTransduceLarge_Sequential(b *testing.B) {
	b.SetBytes(int64(len(largeInput)))
	for i := 0; i < b.N; i++ {
		_ = sequentialFilter(largeInput)
	}
}

func BenchmarkTransduceLarge_ParFST(b *testing.B) {
	eng := newEngine(b, 0)
	ctx := context.Background()
	b.SetBytes(int64(len(largeInput)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.Transduce(ctx, largeInput); err != nil {
			b.Fatal(err)
		}
	}
}

// Resolve benchmarks run on the transduced structural output.

func BenchmarkResolveLarge_Sequential(b *testing.B) {
	structure := sequentialFilter(largeInput)
	b.SetBytes(int64(len(structure)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sequentialResolve(structure)
	}
}

func BenchmarkResolveLarge_ParFST(b *testing.B) {
	eng := newEngine(b, 0)
	ctx := context.Background()
	structure := sequentialFilter(largeInput)
	b.SetBytes(int64(len(structure)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.ResolveInput(ctx, structure); err != nil {
			b.Fatal(err)
		}
	}
}

// Full pipeline: filter then resolve.

func BenchmarkPipelineLarge_Sequential(b *testing.B) {
	b.SetBytes(int64(len(largeInput)))
	for i := 0; i < b.N; i++ {
		_ = sequentialResolve(sequentialFilter(largeInput))
	}
}

func BenchmarkPipelineLarge_ParFST(b *testing.B) {
	eng := newEngine(b, 0)
	ctx := context.Background()
	b.SetBytes(int64(len(largeInput)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := eng.Transduce(ctx, largeInput)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := eng.ResolveInput(ctx, res.Output); err != nil {
			b.Fatal(err)
		}
	}
}
