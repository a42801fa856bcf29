package cache

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrUnhashableArgument is returned when a key argument has no stable encoding
var ErrUnhashableArgument = errors.New("unhashable cache key argument")

// Key identifies a cached call: the method plus its normalized arguments
type Key struct {
	Method string
	args   string
}

func (k Key) String() string {
	return k.Method + "(" + k.args + ")"
}

// Named is a keyword argument. Named arguments are ordered by name in the
// key, so the order they are passed in does not matter.
type Named struct {
	Name  string
	Value any
}

// Arg is shorthand for Named{Name: name, Value: value}
func Arg(name string, value any) Named {
	return Named{Name: name, Value: value}
}

// NewKey builds the key for method called with args. Positional arguments
// keep their order; Named arguments are sorted by name after them.
// Supported values are strings, bools, numbers, time.Time, fmt.Stringer,
// pointers to those (nil allowed) and slices or arrays of those.
func NewKey(method string, args ...any) (Key, error) {
	var positional []string
	var named []Named

	for i, arg := range args {
		if n, ok := arg.(Named); ok {
			named = append(named, n)
			continue
		}
		enc, err := encodeArg(arg)
		if err != nil {
			return Key{}, fmt.Errorf("%s: argument %d: %w", method, i, err)
		}
		positional = append(positional, enc)
	}

	slices.SortStableFunc(named, func(a, b Named) int {
		return strings.Compare(a.Name, b.Name)
	})
	for _, n := range named {
		enc, err := encodeArg(n.Value)
		if err != nil {
			return Key{}, fmt.Errorf("%s: argument %s: %w", method, n.Name, err)
		}
		positional = append(positional, n.Name+"="+enc)
	}

	return Key{Method: method, args: strings.Join(positional, ",")}, nil
}

func encodeArg(arg any) (string, error) {
	switch v := arg.(type) {
	case nil:
		return "nil", nil
	case string:
		return strconv.Quote(v), nil
	case time.Time:
		// Responses render times in their offset, so the offset is part of the key.
		return "t:" + v.Format(time.RFC3339Nano), nil
	case *time.Location:
		if v == nil {
			return "nil", nil
		}
		return "loc:" + strconv.Quote(v.String()), nil
	}
	return encodeValue(reflect.ValueOf(arg))
}

func encodeValue(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		// Named string types such as metric keys.
		return strconv.Quote(v.String()), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "i:" + strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "u:" + strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return "f:" + strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case reflect.Pointer:
		if v.IsNil() {
			return "nil", nil
		}
		inner, err := encodeArg(v.Elem().Interface())
		if err != nil {
			return "", err
		}
		return "&" + inner, nil
	case reflect.Slice, reflect.Array:
		parts := make([]string, v.Len())
		for i := range parts {
			enc, err := encodeArg(v.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = enc
		}
		return "[" + strings.Join(parts, ",") + "]", nil
	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			return encodeArg(t)
		}
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return "s:" + strconv.Quote(s.String()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnhashableArgument, v.Type())
}
