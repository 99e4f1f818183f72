package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	parfst "github.com/biggeezerdevelopment/parfst-go"
)

var resolveFlags = struct {
	source  *string
	grammar *string
	check   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "resolve",
		Short:   "Dump the top-of-stack tape of an input stream",
		Example: `  cat src.json | parfst resolve --grammar brackets`,
		Args:    cobra.NoArgs,
		RunE:    runResolve,
	}
	resolveFlags.source = cmd.Flags().StringP("source", "s", "-", "source file path, - for stdin (.zst supported)")
	resolveFlags.grammar = cmd.Flags().StringP("grammar", "g", "brackets", "builtin grammar name or yaml grammar file with a stack section")
	resolveFlags.check = cmd.Flags().Bool("check", false, "also verify push/pop balance and set the exit code")
	rootCmd.AddCommand(cmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	log, lanes, err := newRunLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	g, stackCfg, err := loadGrammar(*resolveFlags.grammar)
	if err != nil {
		return err
	}
	if stackCfg == nil {
		return fmt.Errorf("grammar %q has no stack configuration", *resolveFlags.grammar)
	}
	input, err := readInput(*resolveFlags.source)
	if err != nil {
		return err
	}

	engine, err := parfst.NewEngine(g,
		parfst.WithLanes(lanes),
		parfst.WithLogger(log.SugaredLogger),
		parfst.WithStack(*stackCfg),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tape, err := engine.ResolveInput(ctx, input)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(tape); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)

	if *resolveFlags.check {
		ok, err := engine.Balanced(ctx, input)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("input is not balanced")
		}
		log.Infow("input balanced", "positions", len(tape))
	}
	return nil
}
