package script

import (
	"errors"

	"go.starlark.net/starlark"

	"github.com/ezrec/awl/cpu"
)

// applySpecs updates 'specs' from the script's specs dictionary.
func applySpecs(specs *cpu.Specs, value starlark.Value) (err error) {
	dict, ok := value.(*starlark.Dict)
	if !ok {
		err = ErrSpecs
		return
	}

	sizes := map[string]*int{
		"accus":       &specs.NrAccus,
		"timers":      &specs.NrTimers,
		"counters":    &specs.NrCounters,
		"flags":       &specs.NrFlags,
		"inputs":      &specs.NrInputs,
		"outputs":     &specs.NrOutputs,
		"peripheral":  &specs.NrPeripheral,
		"local":       &specs.NrLocal,
		"call_depth":  &specs.CallStackDepth,
		"paren_depth": &specs.ParenStackDepth,
	}

	for _, item := range dict.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			err = ErrSpecsKey(item[0].String())
			return
		}
		if size, ok := sizes[key]; ok {
			*size, err = starlark.AsInt32(item[1])
			if err != nil {
				err = errors.Join(ErrSpecsKey(key), err)
				return
			}
			continue
		}

		switch key {
		case "cycle_time":
			specs.CycleTimeLimit, err = asDuration(item[1])
		case "extended":
			specs.ExtendedInsns = bool(item[1].Truth())
		case "mnemonics":
			name, _ := starlark.AsString(item[1])
			specs.Mnemonics, err = cpu.ParseMnemonics(name)
		default:
			err = ErrSpecsKey(key)
			return
		}
		if err != nil {
			err = errors.Join(ErrSpecsKey(key), err)
			return
		}
	}
	return
}
