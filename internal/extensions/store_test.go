package extensions

import (
	"reflect"
	"testing"

	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

func TestStoreTemp(t *testing.T) {
	types := layout.Builtin()
	args := []sierra.TemplateArg{sierra.TypeArg(sierra.ArrayType(sierra.FeltType()))}

	params, results, err := (storeTemp{}).Signature(args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !params[0].Equal(sierra.AsDeferred(results[0])) {
		t.Fatalf("got %v -> %v", params, results)
	}

	refs, err := (storeTemp{}).RefValues(args, types, []sierra.RefValue{sierra.Final(sierra.Local(0))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refs[0] != sierra.Final(sierra.Temp(-2)) {
		t.Fatalf("got %v", refs[0])
	}

	effects, err := (storeTemp{}).Effects(args, types)
	if err != nil || effects.GasUsage != 2 {
		t.Fatalf("got %+v, %v", effects, err)
	}

	out, err := (storeTemp{}).Exec(args, Env{Types: types}, [][]int64{{4, 9}})
	if err != nil || !reflect.DeepEqual(out, [][]int64{{4, 9}}) {
		t.Fatalf("got %v, %v", out, err)
	}
}
