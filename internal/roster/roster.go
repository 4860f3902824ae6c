// Package roster generates the demo student roster used to provision a
// fresh hostel database.
package roster

import (
	"fmt"
	"math/rand"

	"hostel/internal/hostel"
)

// DefaultSize is the number of students seeded by default; it fills every room.
const DefaultSize = 200

var (
	firstNames = []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry", "Ivy", "Jack",
		"Kate", "Liam", "Mia", "Noah", "Olivia", "Peter", "Quinn", "Ryan", "Sara", "Tom"}
	lastNames = []string{"Smith", "Jones", "Williams", "Brown", "Davis", "Miller", "Wilson", "Moore", "Taylor", "Anderson"}
)

// Rooms returns the hostel's rooms: blocks A and B, numbers 101 to 200.
func Rooms() []string {
	rooms := make([]string, 0, 200)
	for _, block := range []string{"A", "B"} {
		for n := 101; n <= 200; n++ {
			rooms = append(rooms, fmt.Sprintf("%s%03d", block, n))
		}
	}
	return rooms
}

// Generate builds n students with shuffled room assignments and sequential
// registration numbers starting at R100000. It fails if n exceeds the
// number of rooms.
func Generate(n int, rng *rand.Rand) ([]hostel.Student, error) {
	rooms := Rooms()
	if n < 0 || n > len(rooms) {
		return nil, fmt.Errorf("roster size %d out of range 0..%d", n, len(rooms))
	}
	rng.Shuffle(len(rooms), func(i, j int) { rooms[i], rooms[j] = rooms[j], rooms[i] })

	students := make([]hostel.Student, n)
	for i := range students {
		phone := fmt.Sprintf("9%d-%d-%d", 100+rng.Intn(900), 100+rng.Intn(900), 1000+rng.Intn(9000))
		students[i] = hostel.Student{
			RegNumber: fmt.Sprintf("R%06d", i+100000),
			Name:      firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
			Room:      rooms[i],
			Phone:     &phone,
		}
	}
	return students, nil
}
