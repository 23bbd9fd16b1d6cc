package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Payload
	}{
		{
			name:  "dev without version",
			input: `{"t":"dev","cid":"A1B2","name":"AC1"}`,
			want:  &DevPayload{T: KindDev, CID: "A1B2", Name: "AC1"},
		},
		{
			name:  "dev v2",
			input: `{"t":"dev","cid":"","mac":"c8f742000001","name":"AC2","ver":"V2.0.0","brand":"gree"}`,
			want:  &DevPayload{T: KindDev, Mac: "c8f742000001", Name: "AC2", Ver: "V2.0.0", Brand: "gree"},
		},
		{
			name:  "bindok",
			input: `{"t":"bindok","mac":"abc","key":"0123456789abcdef","r":200}`,
			want:  &BindOKPayload{T: KindBindOK, Mac: "abc", Key: "0123456789abcdef", R: 200},
		},
		{
			name:  "dat",
			input: `{"t":"dat","cols":["Pow","SetTem"],"dat":[1,24]}`,
			want:  &DatPayload{T: KindDat, Cols: []string{"Pow", "SetTem"}, Dat: []any{1, 24}},
		},
		{
			name:  "res with val only",
			input: `{"t":"res","opt":["Pow"],"val":[0]}`,
			want:  &ResPayload{T: KindRes, Opt: []string{"Pow"}, Val: []any{0}},
		},
		{
			name:  "dat with string and float",
			input: `{"t":"dat","cols":["hid","x"],"dat":["362001000762+U-CS532AE(LT)V3.31.bin",1.5]}`,
			want:  &DatPayload{T: KindDat, Cols: []string{"hid", "x"}, Dat: []any{"362001000762+U-CS532AE(LT)V3.31.bin", 1.5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePayloadUnknown(t *testing.T) {
	got, err := ParsePayload([]byte(`{"t":"hb","x":1}`))
	require.NoError(t, err)

	u, ok := got.(*UnknownPayload)
	require.True(t, ok)
	assert.Equal(t, Kind("hb"), u.Kind())
	assert.JSONEq(t, `{"t":"hb","x":1}`, string(u.Raw))
}

func TestParsePayloadMalformed(t *testing.T) {
	for _, in := range []string{`{`, `{"t":"dat","cols":"Pow"}`} {
		_, err := ParsePayload([]byte(in))
		assert.True(t, IsDecodeError(err), "input %s", in)
	}
}

func TestResValues(t *testing.T) {
	primary := &ResPayload{T: KindRes, P: []any{1}, Val: []any{2}}
	assert.Equal(t, []any{1}, primary.Values())

	alternate := &ResPayload{T: KindRes, Val: []any{2}}
	assert.Equal(t, []any{2}, alternate.Values())

	emptyPrimary := &ResPayload{T: KindRes, P: []any{}, Val: []any{2}}
	assert.Equal(t, []any{}, emptyPrimary.Values())
}

func TestDeclaredID(t *testing.T) {
	assert.Equal(t, "cid", (&DevPayload{T: KindDev, CID: "cid", Mac: "mac"}).DeclaredID())
	assert.Equal(t, "mac", (&DevPayload{T: KindDev, Mac: "mac"}).DeclaredID())
	assert.Equal(t, "", (&DevPayload{}).DeclaredID())
}

func TestNewCommandRequest(t *testing.T) {
	req, err := NewCommandRequest([]string{"Pow", "Mod"}, []int{1, 4})
	require.NoError(t, err)
	assert.Equal(t, KindCmd, req.T)
	assert.Equal(t, []string{"Pow", "Mod"}, req.Opt)
	assert.Equal(t, []int{1, 4}, req.P)

	_, err = NewCommandRequest([]string{"Pow"}, []int{1, 2})
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = NewCommandRequest(nil, nil)
	assert.True(t, errors.Is(err, ErrEmptyCommand))
}
