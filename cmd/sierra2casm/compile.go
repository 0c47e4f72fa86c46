package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sierra2casm/internal/casm"
	"sierra2casm/internal/compiler"
	"sierra2casm/internal/config"
	"sierra2casm/internal/diag"
	"sierra2casm/internal/observ"
	"sierra2casm/internal/program"
)

var compileCmd = &cobra.Command{
	Use:   "compile <program>",
	Short: "Compile a Sierra program (.toml or .mp) to CASM",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().IntP("jobs", "j", 0, "functions compiled in parallel (0 = GOMAXPROCS)")
	compileCmd.Flags().Bool("check-gas", true, "solve gas requirements")
	compileCmd.Flags().Int64("max-gas", 0, "per-function entry gas budget (0 = unlimited)")
	compileCmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
	compileCmd.Flags().String("format", "casm", "output format (casm|json)")
	compileCmd.Flags().Bool("annotate", false, "prefix each statement's code with a comment")
}

// applyCompilerFlags overrides cfg with the compile flags that were set.
func applyCompilerFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("jobs") {
		v, err := flags.GetInt("jobs")
		if err != nil {
			return err
		}
		cfg.Compiler.Jobs = v
	}
	if flags.Changed("check-gas") {
		v, err := flags.GetBool("check-gas")
		if err != nil {
			return err
		}
		cfg.Compiler.CheckGas = v
	}
	if flags.Changed("max-gas") {
		v, err := flags.GetInt64("max-gas")
		if err != nil {
			return err
		}
		cfg.Compiler.MaxGas = v
	}
	return cfg.Validate()
}

func runCompile(cmd *cobra.Command, args []string) (err error) {
	path := args[0]
	useColor, err := setupColor(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCompilerFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := overrideTrace(cmd, &cfg); err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "casm" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be casm or json)", format)
	}
	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	timer := observ.NewTimer()
	defer printTimings(cmd, timer)

	var prog *compiler.Program
	if err := timer.Track("decode", func() error {
		var loadErr error
		prog, loadErr = program.Load(path)
		return loadErr
	}); err != nil {
		return report(cmd, path, diag.IOLoadFailed, err, useColor)
	}

	res, err := compiler.Compile(cmd.Context(), prog, compiler.Options{
		Jobs:     cfg.Compiler.Jobs,
		CheckGas: cfg.Compiler.CheckGas,
		MaxGas:   cfg.Compiler.MaxGas,
		Timer:    timer,
	})
	if err != nil {
		return report(cmd, path, diag.UnknownCode, err, useColor)
	}

	out, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	annotate, err := cmd.Flags().GetBool("annotate")
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(out, res)
	}
	return writeCASM(out, prog, res, annotate)
}

// report prints err as diagnostics. fallback is used for errors no
// package-specific code covers.
func report(cmd *cobra.Command, path string, fallback diag.Code, err error, useColor bool) error {
	maxDiags, flagErr := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if flagErr != nil || maxDiags <= 0 {
		maxDiags = 100
	}
	bag := diag.NewBag(maxDiags)
	for _, d := range diag.FromError(path, err) {
		if d.Code == diag.UnknownCode {
			d.Code = fallback
		}
		bag.Add(d)
	}
	bag.Dedup()
	bag.Sort()
	if perr := diag.Pretty(cmd.ErrOrStderr(), bag.Items(), useColor); perr != nil {
		return perr
	}
	return reportedError{err}
}

func openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}

func writeCASM(w io.Writer, prog *compiler.Program, res *compiler.Result, annotate bool) error {
	if !annotate {
		_, err := io.WriteString(w, casm.Format(res.Instructions))
		return err
	}
	entries := make(map[compiler.StatementID][]compiler.Function)
	for _, fn := range prog.Functions {
		entries[fn.Entry] = append(entries[fn.Entry], fn)
	}
	byPC := make(map[int][]int)
	for id, pc := range res.StatementPC {
		if pc >= 0 {
			byPC[pc] = append(byPC[pc], id)
		}
	}
	var sb strings.Builder
	pc := 0
	emitComments := func(pc int) {
		for _, id := range byPC[pc] {
			for _, fn := range entries[compiler.StatementID(id)] {
				fmt.Fprintf(&sb, "// fn %s", fn.Name)
				if gas, ok := res.Gas.Functions[fn.Name]; ok {
					fmt.Fprintf(&sb, " (gas %d)", gas)
				}
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "// %d: %s\n", id, prog.Statements[id])
		}
	}
	for _, in := range res.Instructions {
		emitComments(pc)
		sb.WriteString(in.String())
		sb.WriteString(";\n")
		pc += in.Size()
	}
	// statements without code at the very end, e.g. a trailing tuple_pack
	emitComments(pc)
	_, err := io.WriteString(w, sb.String())
	return err
}

type compileOutput struct {
	Instructions []string         `json:"instructions"`
	StatementPC  []int            `json:"statement_pc"`
	FunctionPC   map[string]int   `json:"function_pc"`
	Gas          map[string]int64 `json:"gas,omitempty"`
}

func writeJSON(w io.Writer, res *compiler.Result) error {
	out := compileOutput{
		Instructions: make([]string, 0, len(res.Instructions)),
		StatementPC:  res.StatementPC,
		FunctionPC:   res.FunctionPC,
		Gas:          res.Gas.Functions,
	}
	for _, in := range res.Instructions {
		out.Instructions = append(out.Instructions, in.String())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printTimings(cmd *cobra.Command, timer *observ.Timer) {
	show, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil || !show {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
}
