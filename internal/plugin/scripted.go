package plugin

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/me/godp/internal/algorithm"
	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/pkg/model"
)

// scripted adapts a plugin script to the Algorithm contract. Each instance
// owns its own JavaScript runtime; instances are bound to a single task and
// never shared across goroutines.
type scripted struct {
	algorithm.Base
	source string
	params map[string]string
	vm     *goja.Runtime
	obj    *goja.Object
}

func newScripted(name, description, source string, kinds []model.DataKind) *scripted {
	return &scripted{
		Base:   algorithm.NewBase(name, description, kinds...),
		source: source,
		params: make(map[string]string),
	}
}

func (s *scripted) SetParameter(key, value string) bool {
	s.params[key] = value
	return s.Base.SetParameter(key, value)
}

// Initialize runs the script and, when the plugin declares an initialize
// function, calls it with the task parameters. A thrown exception or a
// false return rejects the task.
func (s *scripted) Initialize() bool {
	if err := s.setup(); err != nil {
		return false
	}

	initVal := s.obj.Get("initialize")
	initFn, ok := goja.AssertFunction(initVal)
	if !ok {
		return true
	}

	ret, err := initFn(s.obj, s.vm.ToValue(s.params))
	if err != nil {
		return false
	}
	return ret.ToBoolean()
}

func (s *scripted) Execute(ds dataset.Dataset) model.Result {
	if !s.Supports(ds.Kind()) {
		return model.FailureResult(fmt.Sprintf(
			"dataset type mismatch: %s does not support %s datasets", s.Type(), ds.Kind()))
	}
	if ds.IsEmpty() {
		return model.FailureResult("empty dataset")
	}
	if s.vm == nil {
		if err := s.setup(); err != nil {
			return model.FailureResult(err.Error())
		}
	}

	input, err := scriptInput(ds)
	if err != nil {
		return model.FailureResult(err.Error())
	}

	execFn, _ := goja.AssertFunction(s.obj.Get("execute"))
	ret, err := execFn(s.obj, s.vm.ToValue(input))
	if err != nil {
		return model.FailureResult(fmt.Sprintf("plugin %s: %v", s.Type(), err))
	}

	return exportResult(ret)
}

func (s *scripted) setup() error {
	vm := goja.New()
	if _, err := vm.RunString(s.source); err != nil {
		return fmt.Errorf("plugin %s: script error: %w", s.Type(), err)
	}
	obj := vm.Get("plugin").ToObject(vm)

	s.vm = vm
	s.obj = obj
	return nil
}

// scriptInput builds the value handed to the plugin's execute function.
func scriptInput(ds dataset.Dataset) (map[string]any, error) {
	switch ds.Kind() {
	case model.KindNumeric:
		src, ok := ds.(dataset.NumericSource)
		if !ok {
			return nil, fmt.Errorf("NUMERIC dataset lacks numeric accessors")
		}
		return map[string]any{
			"values": src.Values(),
			"mean":   src.Mean(),
			"stddev": src.StdDev(),
			"min":    src.Min(),
			"max":    src.Max(),
		}, nil
	case model.KindText:
		src, ok := ds.(dataset.TextSource)
		if !ok {
			return nil, fmt.Errorf("TEXT dataset lacks text accessors")
		}
		return map[string]any{
			"lines":         src.Lines(),
			"wordFrequency": src.WordFrequency(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported dataset kind %s", ds.Kind())
	}
}

// exportResult maps a script return value to a Result. Strings become the
// result data; objects may set message and data separately.
func exportResult(val goja.Value) model.Result {
	exported := val.Export()
	switch v := exported.(type) {
	case string:
		return model.SuccessResult(v)
	case map[string]any:
		data, _ := v["data"].(string)
		res := model.SuccessResult(data)
		if msg, ok := v["message"].(string); ok {
			res.Message = msg
		}
		return res
	default:
		return model.FailureResult(fmt.Sprintf("plugin returned unsupported value type %T", exported))
	}
}
