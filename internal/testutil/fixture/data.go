package fixture

import (
	"time"

	"github.com/yshengliao/antoree/api"
)

// Secret signs the tokens of the fake backend
const Secret = "test-secret"

// Password is accepted for every fixture account; anything else is refused
const Password = "correct-horse"

// SampleStudent returns the student account used across tests
func SampleStudent() api.User {
	return api.User{
		ID:    "stu-1",
		Email: "lan@example.com",
		Name:  "Nguyen Lan",
		Role:  "student",
		Phone: "+84 912 345 678",
	}
}

// SampleTeachers returns the teachers served by the fake backend
func SampleTeachers() []api.Teacher {
	return []api.Teacher{
		{
			ID:          "t-1",
			Name:        "Emily Carter",
			Nationality: "GB",
			Languages:   []string{"en"},
			Specialties: []string{"ielts", "business"},
			HourlyRate:  15,
			Currency:    "USD",
			Rating:      4.9,
			ReviewCount: 120,
			Verified:    true,
		},
		{
			ID:          "t-2",
			Name:        "Mark Dela Cruz",
			Nationality: "PH",
			Languages:   []string{"en", "tl"},
			Specialties: []string{"kids"},
			HourlyRate:  8,
			Currency:    "USD",
			Rating:      4.7,
			ReviewCount: 56,
			Verified:    true,
		},
		{
			ID:          "t-3",
			Name:        "Tran Minh",
			Nationality: "VN",
			Languages:   []string{"vi", "en"},
			Specialties: []string{"toeic"},
			HourlyRate:  150000,
			Currency:    "VND",
			Rating:      4.5,
			ReviewCount: 18,
		},
	}
}

// SampleSlots returns count hourly slots starting at start
func SampleSlots(start time.Time, count int) []api.TimeSlot {
	slots := make([]api.TimeSlot, 0, count)
	for i := 0; i < count; i++ {
		from := start.Add(time.Duration(i) * time.Hour)
		slots = append(slots, api.TimeSlot{Start: from, End: from.Add(time.Hour), Available: i%2 == 0})
	}
	return slots
}

// SampleError returns an error body in the backend's shape
func SampleError(message string) map[string]any {
	return map[string]any{
		"success": false,
		"message": message,
	}
}
