package jsruntime

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/standardbeagle/navpatch/internal/types"
)

// labelBridge adapts label to the script calling convention: it receives a
// self-closing or opening markup node and returns its label. It runs while
// the caller already holds the host lock.
func (h *Host) labelBridge(api *goja.Object, label types.LabelFormatter) func(goja.FunctionCall) goja.Value {
	isAttribute, _ := goja.AssertFunction(api.Get("isJsxAttribute"))
	isString, _ := goja.AssertFunction(api.Get("isStringLiteral"))

	return func(call goja.FunctionCall) goja.Value {
		node, ok := call.Argument(0).(*goja.Object)
		if !ok {
			panic(h.vm.NewTypeError("markup node expected"))
		}
		tag, err := h.nodeText(node.Get("tagName"))
		if err != nil {
			panic(h.vm.NewGoError(err))
		}

		var attrs []types.MarkupAttribute
		if attributes, ok := node.Get("attributes").(*goja.Object); ok {
			if properties, ok := attributes.Get("properties").(*goja.Object); ok {
				attrs, err = h.markupAttributes(properties, isAttribute, isString)
				if err != nil {
					panic(h.vm.NewGoError(err))
				}
			}
		}
		return h.vm.ToValue(label(tag, attrs))
	}
}

func (h *Host) markupAttributes(properties *goja.Object, isAttribute, isString goja.Callable) ([]types.MarkupAttribute, error) {
	length := properties.Get("length")
	if length == nil {
		return nil, nil
	}

	var attrs []types.MarkupAttribute
	for i := int64(0); i < length.ToInteger(); i++ {
		attr, ok := properties.Get(fmt.Sprint(i)).(*goja.Object)
		if !ok {
			continue
		}
		if isAttribute != nil && !h.truthy(isAttribute, attr) {
			continue
		}
		init, ok := attr.Get("initializer").(*goja.Object)
		if !ok {
			continue
		}
		name, err := h.nodeText(attr.Get("name"))
		if err != nil || name == "" {
			continue
		}

		a := types.MarkupAttribute{Name: name}
		if isString != nil && h.truthy(isString, init) {
			a.Literal = true
			if text := init.Get("text"); text != nil {
				a.Value = text.String()
			}
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func (h *Host) truthy(fn goja.Callable, arg goja.Value) bool {
	v, err := fn(goja.Undefined(), arg)
	return err == nil && v.ToBoolean()
}

// nodeText returns node.getText().
func (h *Host) nodeText(v goja.Value) (string, error) {
	node, ok := v.(*goja.Object)
	if !ok {
		return "", nil
	}
	getText, ok := goja.AssertFunction(node.Get("getText"))
	if !ok {
		return "", fmt.Errorf("node has no getText method")
	}
	text, err := getText(node)
	if err != nil {
		return "", err
	}
	return text.String(), nil
}
