package extensions

import "sort"

// Libfunc names of the built-in extensions.
const (
	GetGas               = "get_gas"
	RefundGas            = "refund_gas"
	TuplePack            = "tuple_pack"
	TupleUnpack          = "tuple_unpack"
	CallContract         = "call_contract"
	ContractAddressConst = "contract_address_const"
	StoreTemp            = "store_temp"
)

// Registry maps libfunc names to their implementations.
type Registry struct {
	byName map[string]Extension
	names  []string
}

// NewRegistry builds the registry of every built-in libfunc.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Extension, 8)}
	r.add(GetGas, getGas{})
	r.add(RefundGas, WrapNonBranch(refundGas{}))
	r.add(TuplePack, WrapNonBranch(tuplePack{}))
	r.add(TupleUnpack, WrapNonBranch(tupleUnpack{}))
	r.add(CallContract, callContract{})
	r.add(ContractAddressConst, WrapNonBranch(contractAddressConst{}))
	r.add(StoreTemp, WrapNonBranch(storeTemp{}))
	sort.Strings(r.names)
	return r
}

func (r *Registry) add(name string, ext Extension) {
	if _, dup := r.byName[name]; dup {
		panic("extensions: duplicate libfunc " + name)
	}
	r.byName[name] = ext
	r.names = append(r.names, name)
}

// Lookup returns the implementation of name.
func (r *Registry) Lookup(name string) (Extension, bool) {
	ext, ok := r.byName[name]
	return ext, ok
}

// Names lists every libfunc in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
