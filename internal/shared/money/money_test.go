package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsGarbage(t *testing.T) {
	_, err := New("ten")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMulQuantity_IsExact(t *testing.T) {
	price := MustNew("19.30")
	assert.Equal(t, "57.90", price.MulQuantity(3).Round().String())
	assert.Equal(t, "30.00", MustNew("10").MulQuantity(3).Round().String())
}

func TestFromFloat_UsesShortestRepresentation(t *testing.T) {
	a := FromFloat(10.05)
	assert.True(t, a.Equal(MustNew("10.05")))
	assert.Equal(t, "30.15", a.MulQuantity(3).Round().String())
}

func TestRound_HalfToEven(t *testing.T) {
	cases := map[string]string{
		"0.125":  "0.12",
		"0.135":  "0.14",
		"2.675":  "2.68",
		"1.005":  "1.00",
		"-0.125": "-0.12",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, MustNew(in).Round().String())
		})
	}
}

func TestPrecision(t *testing.T) {
	cases := []struct {
		in                    string
		digits, places, whole int
	}{
		{"999.99", 5, 2, 3},
		{"10.50", 4, 2, 2},
		{"10", 2, 0, 2},
		{"0.05", 2, 2, 0},
		{"1000.00", 6, 2, 4},
		{"4.999", 4, 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			a := MustNew(tc.in)
			assert.Equal(t, tc.digits, a.Digits())
			assert.Equal(t, tc.places, a.DecimalPlaces())
			assert.Equal(t, tc.whole, a.WholeDigits())
		})
	}
}

func TestJSON_AcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 35.99, "b": "11.50"}`), &payload))
	assert.Equal(t, "35.99", payload.A.String())
	assert.Equal(t, 2, payload.B.DecimalPlaces())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"35.99","b":"11.50"}`, string(out))
}

func TestJSON_RejectsInvalid(t *testing.T) {
	var a Amount
	require.ErrorIs(t, json.Unmarshal([]byte(`"abc"`), &a), ErrInvalidAmount)
	require.Error(t, a.UnmarshalJSON([]byte(`""`)))
}

func TestScan(t *testing.T) {
	for _, src := range []any{"19.30", []byte("19.30"), 19.3} {
		var a Amount
		require.NoError(t, a.Scan(src))
		assert.Equal(t, "19.30", a.String())
	}
	var a Amount
	require.NoError(t, a.Scan(int64(7)))
	assert.Equal(t, "7.00", a.String())

	v, err := MustNew("5.00").Value()
	require.NoError(t, err)
	assert.Equal(t, "5", v)
}
