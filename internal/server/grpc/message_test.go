package grpcserver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructConversion(t *testing.T) {
	t.Parallel()

	type msg struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Tags  []string `json:"tags"`
		On    bool     `json:"on"`
	}
	in := msg{Name: "x", Count: 3, Tags: []string{"a", "b"}, On: true}

	st, err := ToStruct(in)
	require.NoError(t, err)
	require.Equal(t, "x", st.GetFields()["name"].GetStringValue())
	require.InDelta(t, 3, st.GetFields()["count"].GetNumberValue(), 0)

	var out msg
	require.NoError(t, FromStruct(st, &out))
	require.Equal(t, in, out)

	empty, err := ToStruct(nil)
	require.NoError(t, err)
	require.Empty(t, empty.GetFields())

	_, err = ToStruct([]int{1})
	require.Error(t, err, "only objects fit in a Struct")

	require.NoError(t, FromStruct(nil, &out))
}
