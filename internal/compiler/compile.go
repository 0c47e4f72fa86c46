// Package compiler drives a whole program through lowering: it assigns
// statements to functions, compiles each function, solves gas and links the
// result into one instruction stream.
package compiler

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"sierra2casm/internal/invocations"
	"sierra2casm/internal/observ"
	"sierra2casm/internal/trace"
)

// Options configures Compile.
type Options struct {
	Jobs     int   // parallel functions; 0 = GOMAXPROCS
	CheckGas bool  // run the gas solver
	MaxGas   int64 // entry budget per function; 0 = unlimited
	Timer    *observ.Timer
	Context  invocations.Context
}

// Result is a compiled program.
type Result struct {
	Linked
	Statements map[StatementID]CompiledStatement
	Gas        GasInfo
	// FunctionPC is the pc of each function's entry, by name.
	FunctionPC map[string]int
}

func (o *Options) context() invocations.Context {
	if o.Context.Extensions == nil || o.Context.Types == nil {
		def := invocations.DefaultContext()
		if o.Context.Extensions != nil {
			def.Extensions = o.Context.Extensions
		}
		if o.Context.Types != nil {
			def.Types = o.Context.Types
		}
		return def
	}
	return o.Context
}

func (o *Options) begin(name string) int {
	if o.Timer == nil {
		return -1
	}
	return o.Timer.Begin(name)
}

func (o *Options) end(idx int, note string) {
	if o.Timer != nil {
		o.Timer.End(idx, note)
	}
}

// Compile lowers every function of p.
func Compile(ctx context.Context, p *Program, opts Options) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("nil program")
	}
	ictx := opts.context()
	ctx, root := trace.Start(ctx, trace.ScopeDriver, "compile")
	defer root.End("")

	_, pass := trace.Start(ctx, trace.ScopePass, "ownership")
	t := opts.begin("ownership")
	owner, err := owners(p)
	opts.end(t, "")
	pass.End("")
	if err != nil {
		return nil, err
	}

	lowerCtx, pass := trace.Start(ctx, trace.ScopePass, "lower")
	t = opts.begin("lower")
	stmts, err := compileFunctions(lowerCtx, p, owner, ictx, opts.Jobs)
	opts.end(t, fmt.Sprintf("%d functions", len(p.Functions)))
	pass.WithExtra("functions", strconv.Itoa(len(p.Functions))).End("")
	if err != nil {
		return nil, err
	}

	res := &Result{Statements: stmts}
	if opts.CheckGas {
		var gasCtx context.Context
		gasCtx, pass = trace.Start(ctx, trace.ScopePass, "gas")
		t = opts.begin("gas")
		res.Gas, err = SolveGas(p, ictx, opts.MaxGas)
		opts.end(t, "")
		if err == nil {
			for _, fn := range p.Functions {
				trace.Point(gasCtx, trace.ScopeFunction, "gas", strconv.FormatInt(res.Gas.Functions[fn.Name], 10), trace.InFunction(fn.Name))
			}
		}
		pass.End("")
		if err != nil {
			return nil, err
		}
	}

	_, pass = trace.Start(ctx, trace.ScopePass, "link")
	t = opts.begin("link")
	res.Linked, err = Link(p, stmts)
	opts.end(t, fmt.Sprintf("%d instructions", len(res.Instructions)))
	pass.WithExtra("instructions", strconv.Itoa(len(res.Instructions))).End("")
	if err != nil {
		return nil, err
	}
	res.FunctionPC = make(map[string]int, len(p.Functions))
	for _, fn := range p.Functions {
		res.FunctionPC[fn.Name] = res.StatementPC[fn.Entry]
	}
	return res, nil
}

// compileFunctions lowers functions in parallel. Functions own disjoint
// statement sets, so each worker writes only its own result slot.
func compileFunctions(ctx context.Context, p *Program, owner []int, ictx invocations.Context, jobs int) (map[StatementID]CompiledStatement, error) {
	if len(p.Functions) == 0 {
		return map[StatementID]CompiledStatement{}, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]map[StatementID]CompiledStatement, len(p.Functions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(p.Functions)))
	for i := range p.Functions {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fn := &p.Functions[i]
			fctx, span := trace.Start(gctx, trace.ScopeFunction, "function:"+fn.Name, trace.InFunction(fn.Name))
			fc := &funcCompiler{
				ictx:   ictx,
				prog:   p,
				fn:     fn,
				fi:     i,
				owner:  owner,
				states: make(map[StatementID]frame),
				out:    make(map[StatementID]CompiledStatement),
			}
			err := fc.run(fctx)
			span.End(fmt.Sprintf("%d statements", len(fc.out)))
			if err != nil {
				return err
			}
			results[i] = fc.out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	merged := make(map[StatementID]CompiledStatement)
	for _, r := range results {
		for id, cs := range r {
			merged[id] = cs
		}
	}
	return merged, nil
}
