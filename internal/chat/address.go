// Package chat holds the pure conversation-addressing logic shared by the
// message and presence services.
package chat

import (
	"strconv"
	"strings"
)

// CommonRoom is the only room that may be addressed explicitly. Every other
// room number is derived from a participant pair.
const CommonRoom int64 = 0

const minDigits = 4

// MaxID is the largest participant id the addressing scheme accepts.
// Two nine-digit ids concatenate to at most eighteen digits, which still
// fits an int64 room; a tenth digit would overflow. Constructors reject
// ids above this bound before a room is ever derived.
const MaxID int64 = 999_999_999

// RoomOf maps an unordered pair of participant ids to the number of their
// direct room. Each id is right-padded with zeros to at least four decimal
// digits, then the larger id's digits are concatenated before the smaller
// id's and the result parsed back to an integer. Ordering by value rather
// than by argument position makes the function symmetric, and the minimum
// width keeps every derived room at eight digits or more, clear of the
// small reserved room numbers.
//
// The scheme is a compatibility default, not a bijection: sufficiently
// large ids can collide (see RoomOf(1, x) vs RoomOf(1000, x)). Inputs
// beyond MaxID yield -1, which is never a valid or reserved room.
func RoomOf(a, b int64) int64 {
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi > MaxID || lo <= 0 {
		return -1
	}
	room, err := strconv.ParseInt(padID(hi)+padID(lo), 10, 64)
	if err != nil {
		return -1
	}
	return room
}

func padID(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) >= minDigits {
		return s
	}
	return s + strings.Repeat("0", minDigits-len(s))
}
