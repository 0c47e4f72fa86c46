package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sierra2casm/internal/invocations"
	"sierra2casm/internal/sierra"
)

var libfuncsCmd = &cobra.Command{
	Use:   "libfuncs [name [template-args...]]",
	Short: "List libfuncs, or show the signature and gas of one instantiation",
	Example: `  sierra2casm libfuncs
  sierra2casm libfuncs get_gas 5
  sierra2casm libfuncs tuple_pack felt felt`,
	RunE: runLibfuncs,
}

func runLibfuncs(cmd *cobra.Command, args []string) error {
	if _, err := setupColor(cmd); err != nil {
		return err
	}
	ctx := invocations.DefaultContext()
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, name := range ctx.Extensions.Names() {
			status := color.GreenString("lowered")
			if !invocations.Lowered(name) {
				status = color.YellowString("oracle only")
			}
			fmt.Fprintf(out, "%-24s %s\n", name, status)
		}
		return nil
	}
	return describeLibfunc(out, ctx, args[0], args[1:])
}

func describeLibfunc(out io.Writer, ctx invocations.Context, name string, rawArgs []string) error {
	ext, ok := ctx.Extensions.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown libfunc %q", name)
	}
	targs, err := sierra.ParseTemplateArgs(rawArgs)
	if err != nil {
		return err
	}
	sig, err := ext.Signature(targs)
	if err != nil {
		return err
	}
	effects, err := ext.Effects(targs, ctx.Types)
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	fmt.Fprintf(out, "%s%s %s\n", bold.Sprint(name), sierra.FormatArgs(targs), sierra.FormatTypes(sig.Args))
	for i, results := range sig.Branches {
		label := fmt.Sprintf("branch %d", i)
		if i == sig.Fallthrough {
			label += " (fallthrough)"
		}
		gas := int64(0)
		if i < len(effects) {
			gas = effects[i].GasUsage
		}
		fmt.Fprintf(out, "  %-18s -> %s  gas %d\n", label, sierra.FormatTypes(results), gas)
	}
	return nil
}
