package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomOf_Symmetry(t *testing.T) {
	pairs := [][2]int64{
		{1, 2},
		{100, 2},
		{7, 7654},
		{1234, 5678},
		{99999, 3},
	}

	for _, p := range pairs {
		require.Equal(t, RoomOf(p[0], p[1]), RoomOf(p[1], p[0]),
			"RoomOf(%d,%d) must equal RoomOf(%d,%d)", p[0], p[1], p[1], p[0])
	}
}

func TestRoomOf_Padding(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want int64
	}{
		{"both single digit", 1, 2, 20001000},
		{"mixed widths", 100, 2, 10002000},
		{"four digit ids unpadded", 1234, 5678, 56781234},
		{"wide id stays unpadded", 12345, 6, 123456000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RoomOf(tt.a, tt.b))
		})
	}
}

func TestRoomOf_WidestAcceptedIDs(t *testing.T) {
	// two nine-digit ids are the widest the scheme accepts; their
	// eighteen-digit concatenation must still come back intact
	require.Equal(t, int64(999999999888888888), RoomOf(888888888, 999999999))
	require.Equal(t, RoomOf(999999999, 888888888), RoomOf(888888888, 999999999))
}

func TestRoomOf_OutOfRangeNeverYieldsReservedRoom(t *testing.T) {
	// ids past MaxID would overflow the concatenation; the result must
	// never collapse into the common room or any other reserved number
	require.Equal(t, int64(-1), RoomOf(9999999999, 8888888888))
	require.Equal(t, int64(-1), RoomOf(MaxID+1, 2))
	require.Equal(t, int64(-1), RoomOf(0, 5))
	require.NotEqual(t, CommonRoom, RoomOf(9999999999, 8888888888))
}

func TestRoomOf_DisjointFromReservedRooms(t *testing.T) {
	// derived rooms are at least eight digits, far above any named room
	for a := int64(1); a < 50; a++ {
		for b := a + 1; b < 50; b++ {
			require.GreaterOrEqual(t, RoomOf(a, b), int64(10000000))
		}
	}
}
