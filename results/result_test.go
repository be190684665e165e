package results

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	require := require.New(t)

	r := New(1, nil)
	require.True(r.Success)
	require.Equal(1, r.Data)
	require.NoError(r.Error)

	r = Success[int, error](2)
	require.True(r.Success)
	require.Equal(2, r.Data)
	require.NoError(r.Error)

	errTest := errors.New("test err")
	r = Failure[int](errTest)
	require.False(r.Success)
	require.Equal(0, r.Data)
	require.ErrorIs(r.Error, errTest)

	r = New(3, errTest)
	require.False(r.Success)
	require.ErrorIs(r.Error, errTest)
}

func TestUnwrap(t *testing.T) {
	require := require.New(t)

	v, err := Unwrap(Success[string, error]("ok"))
	require.NoError(err)
	require.Equal("ok", v)

	errTest := errors.New("test err")
	v, err = Unwrap(Result[string, error]{Data: "ignored", Error: errTest})
	require.ErrorIs(err, errTest)
	require.Equal("", v)
}

func TestGet(t *testing.T) {
	require := require.New(t)

	v, e, ok := Success[int, string](42).Get()
	require.True(ok)
	require.Equal(42, v)
	require.Equal("", e)

	v, e, ok = Failure[int]("boom").Get()
	require.False(ok)
	require.Equal(0, v)
	require.Equal("boom", e)
}

type opError struct {
	Op string
}

func (e *opError) Error() string { return e.Op + " failed" }

func TestMarshalJSONNilErrorPayload(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(Failure[int, *opError](nil))
	require.NoError(err)
	require.JSONEq(`{"success":false,"error":null}`, string(b))

	b, err = json.Marshal(Failure[int, *opError](&opError{Op: "dial"}))
	require.NoError(err)
	require.JSONEq(`{"success":false,"error":"dial failed"}`, string(b))
}

func TestUnmarshalJSONConcreteError(t *testing.T) {
	require := require.New(t)

	var r Result[int, *opError]
	err := json.Unmarshal([]byte(`{"success":false,"error":"dial failed"}`), &r)
	require.ErrorIs(err, ErrUndecodableError)

	// a null payload needs no decoding
	require.NoError(json.Unmarshal([]byte(`{"success":false,"error":null}`), &r))
	require.False(r.Success)
	require.Nil(r.Error)
}

func TestMarshalJSON(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(Success[int, error](42))
	require.NoError(err)
	require.JSONEq(`{"success":true,"data":42}`, string(b))

	b, err = json.Marshal(Success[*int, error](nil))
	require.NoError(err)
	require.JSONEq(`{"success":true,"data":null}`, string(b))

	b, err = json.Marshal(Failure[int](errors.New("network down")))
	require.NoError(err)
	require.JSONEq(`{"success":false,"error":"network down"}`, string(b))

	b, err = json.Marshal(Failure[int, any](map[string]int{"code": 7}))
	require.NoError(err)
	require.JSONEq(`{"success":false,"error":{"code":7}}`, string(b))
}

func TestUnmarshalJSON(t *testing.T) {
	require := require.New(t)

	var r Result[string, error]
	require.NoError(json.Unmarshal([]byte(`{"success":true,"data":"ok"}`), &r))
	require.Equal(Success[string, error]("ok"), r)

	require.NoError(json.Unmarshal([]byte(`{"success":false,"error":"network down"}`), &r))
	require.False(r.Success)
	require.EqualError(r.Error, "network down")

	var raw Result[int, any]
	require.NoError(json.Unmarshal([]byte(`{"success":false,"error":"boom"}`), &raw))
	require.Equal(Failure[int, any]("boom"), raw)

	var bad Result[int, string]
	require.Error(json.Unmarshal([]byte(`{"success":true,"data":"nope"}`), &bad))
}
