package sierra

// Effects is the resource delta of one branch of a libfunc. A positive
// GasUsage consumes budget, a negative one supplies it.
type Effects struct {
	GasUsage int64
}

// NoEffects is the zero delta.
func NoEffects() Effects { return Effects{} }

// GasUsage returns an effect consuming n units.
func GasUsage(n int64) Effects { return Effects{GasUsage: n} }

// Add composes two effects along a straight-line path.
func (e Effects) Add(o Effects) Effects {
	return Effects{GasUsage: e.GasUsage + o.GasUsage}
}

// PathEffects sums the effects of consecutive steps.
func PathEffects(steps ...Effects) Effects {
	var total Effects
	for _, s := range steps {
		total = total.Add(s)
	}
	return total
}
