package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	parfst "github.com/biggeezerdevelopment/parfst-go"
)

var transduceFlags = struct {
	source    *string
	grammar   *string
	positions *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "transduce",
		Short:   "Run a grammar's transducer over an input stream",
		Example: `  cat src.json | parfst transduce --grammar brackets`,
		Args:    cobra.NoArgs,
		RunE:    runTransduce,
	}
	transduceFlags.source = cmd.Flags().StringP("source", "s", "-", "source file path, - for stdin (.zst supported)")
	transduceFlags.grammar = cmd.Flags().StringP("grammar", "g", "identity", "builtin grammar name or yaml grammar file")
	transduceFlags.positions = cmd.Flags().Bool("positions", false, "print the index tape instead of the output tape")
	rootCmd.AddCommand(cmd)
}

func runTransduce(cmd *cobra.Command, args []string) error {
	log, lanes, err := newRunLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	g, stackCfg, err := loadGrammar(*transduceFlags.grammar)
	if err != nil {
		return err
	}
	input, err := readInput(*transduceFlags.source)
	if err != nil {
		return err
	}

	opts := []parfst.Option{parfst.WithLanes(lanes), parfst.WithLogger(log.SugaredLogger)}
	if stackCfg != nil {
		opts = append(opts, parfst.WithStack(*stackCfg))
	}
	engine, err := parfst.NewEngine(g, opts...)
	if err != nil {
		return err
	}

	res, err := engine.Transduce(context.Background(), input)
	if err != nil {
		return err
	}
	log.Infow("transduced", "input", len(input), "output", len(res.Output), "emitting", res.Count)

	if *transduceFlags.positions {
		for _, pos := range res.Positions {
			fmt.Fprintln(os.Stdout, pos)
		}
		return nil
	}
	_, err = os.Stdout.Write(res.Output)
	return err
}
