package main

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	parfst "github.com/biggeezerdevelopment/parfst-go"
	"github.com/biggeezerdevelopment/parfst-go/grammars"
)

var benchFlags = struct {
	repeats *int
	iters   *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare single-lane and full-width kernel throughput",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchFlags.repeats = cmd.Flags().Int("repeats", 1<<16, "number of pattern repetitions in the synthetic input")
	benchFlags.iters = cmd.Flags().Int("iters", 8, "iterations per measurement")
	rootCmd.AddCommand(cmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	g, stackCfg := grammars.Brackets()
	input := bytes.Repeat([]byte(`{"k":[1,"a}b",{}]} `), *benchFlags.repeats)
	ctx := context.Background()

	rows := pterm.TableData{{"kernel", "lanes", "input MB", "best", "MB/s"}}
	for _, lanes := range []int{1, runtime.NumCPU()} {
		engine, err := parfst.NewEngine(g, parfst.WithLanes(lanes), parfst.WithStack(stackCfg))
		if err != nil {
			return err
		}

		best, err := measure(*benchFlags.iters, func() error {
			_, err := engine.Transduce(ctx, input)
			return err
		})
		if err != nil {
			return err
		}
		rows = append(rows, benchRow("transduce", lanes, len(input), best))

		best, err = measure(*benchFlags.iters, func() error {
			_, err := engine.ResolveInput(ctx, input)
			return err
		})
		if err != nil {
			return err
		}
		rows = append(rows, benchRow("resolve", lanes, len(input), best))
	}

	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func measure(iters int, f func() error) (time.Duration, error) {
	best := time.Duration(0)
	for i := 0; i < iters; i++ {
		start := time.Now()
		if err := f(); err != nil {
			return 0, err
		}
		if d := time.Since(start); best == 0 || d < best {
			best = d
		}
	}
	return best, nil
}

func benchRow(kernel string, lanes, size int, best time.Duration) []string {
	mb := float64(size) / (1 << 20)
	return []string{
		kernel,
		fmt.Sprintf("%d", lanes),
		fmt.Sprintf("%.1f", mb),
		best.String(),
		fmt.Sprintf("%.1f", mb/best.Seconds()),
	}
}
