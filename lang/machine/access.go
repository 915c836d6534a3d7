package machine

// getField resolves `obj.name`, used by both LOAD_PROPERTY and GET_SUPER's
// non-invoke path.
func getField(obj Value, name string) (Value, error) {
	attr, ok := obj.(Attributable)
	if !ok {
		return nil, runtimeErrorf("%s value has no properties", obj.Type())
	}
	v, ok := attr.GetField(name)
	if !ok {
		return nil, runtimeErrorf("undefined property '%s'", name)
	}
	return v, nil
}

// setField resolves `obj.name = v`.
func setField(obj Value, name string, v Value) error {
	settable, ok := obj.(SettableFields)
	if !ok {
		return runtimeErrorf("%s value does not support field assignment", obj.Type())
	}
	return settable.SetField(name, v)
}

// getIndex resolves `obj[key]`.
func getIndex(obj Value, key Value) (Value, error) {
	sub, ok := obj.(Subscriptable)
	if !ok {
		return nil, runtimeErrorf("%s value is not subscriptable", obj.Type())
	}
	return sub.GetIndex(key)
}

// setIndex resolves `obj[key] = v`.
func setIndex(obj Value, key Value, v Value) error {
	settable, ok := obj.(SettableIndex)
	if !ok {
		return runtimeErrorf("%s value does not support index assignment", obj.Type())
	}
	return settable.SetIndex(key, v)
}
