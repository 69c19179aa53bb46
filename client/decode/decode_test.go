package decode_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/reqflow/client/decode"
	"github.com/adamwoolhether/reqflow/errs"
)

type user struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age"`
}

func TestDynamic(t *testing.T) {
	testCases := map[string]struct {
		data []byte
		exp  any
		err  error
	}{
		"object": {
			data: []byte(`{"name":"Ann","tags":["a","b"],"n":1}`),
			exp:  map[string]any{"name": "Ann", "tags": []any{"a", "b"}, "n": float64(1)},
		},
		"array":    {data: []byte(`[1,true,null]`), exp: []any{float64(1), true, nil}},
		"scalar":   {data: []byte(`"hi"`), exp: "hi"},
		"empty":    {data: []byte{}, err: errs.ErrObjectDecode},
		"broken":   {data: []byte(`{"name":`), err: errs.ErrObjectDecode},
		"trailing": {data: []byte(`{} {}`), err: errs.ErrObjectDecode},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := decode.Dynamic(tc.data)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("exp err %v, got: %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("value mismatch (-exp +got):\n%s", diff)
			}
		})
	}
}

func TestDynamicNumbers(t *testing.T) {
	got, err := decode.DynamicNumbers([]byte(`{"id":12345678901234567}`))
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	obj, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("exp object, got %T", got)
	}

	n, ok := obj["id"].(json.Number)
	if !ok {
		t.Fatalf("exp json.Number, got %T", obj["id"])
	}
	if n.String() != "12345678901234567" {
		t.Errorf("exp 12345678901234567, got %s", n)
	}
}

func TestTyped(t *testing.T) {
	testCases := map[string]struct {
		data []byte
		exp  user
		err  error
	}{
		"match":        {data: []byte(`{"name":"Ann","age":3}`), exp: user{Name: "Ann", Age: 3}},
		"emptyObject":  {data: []byte(`{}`), err: errs.ErrDecode},
		"wrongType":    {data: []byte(`{"name":7}`), err: errs.ErrDecode},
		"array":        {data: []byte(`[]`), err: errs.ErrDecode},
		"notJSON":      {data: []byte(`<html>`), err: errs.ErrDecode},
		"trailingJunk": {data: []byte(`{"name":"Ann"}x`), err: errs.ErrDecode},
	}

	decodeUser := decode.Typed[user]()

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := decodeUser(tc.data)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("exp err %v, got: %v", tc.err, err)
				}
				if kind := errs.KindOf(err); kind != errs.KindDecode {
					t.Errorf("exp decode kind, got %v", kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("value mismatch (-exp +got):\n%s", diff)
			}
		})
	}
}

func TestTyped_NonStruct(t *testing.T) {
	got, err := decode.Typed[[]int]()([]byte(`[1,2,3]`))
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("value mismatch (-exp +got):\n%s", diff)
	}
}
