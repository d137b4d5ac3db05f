package agenda

// DefaultRoomCapacities is the static seat count per room id. Rooms missing
// from the table have no known capacity and resolve to an explicit zero.
var DefaultRoomCapacities = map[string]int{
	"RB105":   404,
	"RB101":   38,
	"RB102":   84,
	"TR209":   96,
	"TR210":   48,
	"TR211":   108,
	"TR212":   108,
	"TR213":   108,
	"TR214":   108,
	"TR313":   108,
	"TR409-2": 68,
	"TR410":   68,
	"TR411":   38,
	"TR412-3": 40,
	"TR412-2": 38,
	"TR413-1": 38,
	"TR510":   38,
	"TR511":   38,
	"TR512":   38,
	"TR513":   38,
	"TR514":   38,
	"TR609":   38,
	"TR610":   38,
	"TR611":   38,
	"TR613":   38,
	"TR614":   38,
	"TR615":   38,
	"TR616":   36,
}

// CapacityFor looks up a room capacity in the given table, returning zero
// for rooms the table does not know about.
func CapacityFor(capacities map[string]int, roomID string) int {
	if capacities == nil {
		return 0
	}
	return capacities[roomID]
}
