package api

import (
	"time"
)

// User is the account returned by the auth endpoints
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// AuthResponse carries the session token issued by login, register and
// refresh.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LoginRequest is the body of Auth.Login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest is the body of Auth.Register
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`
}

// ForgotPasswordRequest asks for a reset link
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password with a reset token
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// Message is the body of endpoints that only acknowledge
type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Teacher is a public teacher profile
type Teacher struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Avatar      string   `json:"avatar,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	HourlyRate  float64  `json:"hourlyRate"`
	Currency    string   `json:"currency,omitempty"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
	Verified    bool     `json:"verified"`
}

// TeacherFilters narrow Teachers.List and Teachers.Search
type TeacherFilters struct {
	Query     string   `validate:"max=200"`
	Language  string   `validate:"omitempty,max=50"`
	Specialty []string `validate:"max=10"`
	MinPrice  float64  `validate:"gte=0"`
	MaxPrice  float64  `validate:"gte=0"`
	MinRating float64  `validate:"gte=0,lte=5"`
	Page      int      `validate:"gte=0"`
	Limit     int      `validate:"gte=0,lte=100"`
}

// query renders the non-zero filters
func (f TeacherFilters) query() map[string]any {
	q := map[string]any{}
	if f.Query != "" {
		q["q"] = f.Query
	}
	if f.Language != "" {
		q["language"] = f.Language
	}
	if len(f.Specialty) > 0 {
		q["specialty"] = f.Specialty
	}
	if f.MinPrice > 0 {
		q["minPrice"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		q["maxPrice"] = f.MaxPrice
	}
	if f.MinRating > 0 {
		q["minRating"] = f.MinRating
	}
	if f.Page > 0 {
		q["page"] = f.Page
	}
	if f.Limit > 0 {
		q["limit"] = f.Limit
	}
	return q
}

// Page is one page of a listing
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// TeacherProfileUpdate is the body of Teachers.UpdateProfile; zero fields
// are left unchanged.
type TeacherProfileUpdate struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,max=100"`
	Bio         string   `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Languages   []string `json:"languages,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	HourlyRate  float64  `json:"hourlyRate,omitempty" validate:"gte=0"`
	Currency    string   `json:"currency,omitempty" validate:"omitempty,currency"`
}

// TimeSlot is a bookable interval
type TimeSlot struct {
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required,gtfield=Start"`
	Available bool      `json:"available"`
}

// Availability lists a teacher's open slots
type Availability struct {
	TeacherID string     `json:"teacherId"`
	Slots     []TimeSlot `json:"slots"`
}

// Student is a student profile
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Level string `json:"level,omitempty"`
	Goals string `json:"goals,omitempty"`
}

// StudentProfileUpdate is the body of Students.UpdateProfile
type StudentProfileUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,phone"`
	Level string `json:"level,omitempty" validate:"omitempty,oneof=beginner elementary intermediate upper-intermediate advanced"`
	Goals string `json:"goals,omitempty" validate:"omitempty,max=1000"`
}

// Booking statuses
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking is a scheduled lesson
type Booking struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacherId"`
	StudentID string    `json:"studentId"`
	StartTime time.Time `json:"startTime"`
	Duration  int       `json:"duration"`
	Status    string    `json:"status"`
	Trial     bool      `json:"trial"`
	Notes     string    `json:"notes,omitempty"`
}

// TrialBookingRequest books a trial lesson
type TrialBookingRequest struct {
	TeacherID string    `json:"teacherId" validate:"required"`
	StartTime time.Time `json:"startTime" validate:"required"`
	Duration  int       `json:"duration" validate:"lessonminutes"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone" validate:"required,phone"`
	Notes     string    `json:"notes,omitempty" validate:"max=1000"`
}

// BookingRequest books a regular lesson of a purchased course
type BookingRequest struct {
	TeacherID string    `json:"teacherId" validate:"required"`
	CourseID  string    `json:"courseId" validate:"required"`
	StartTime time.Time `json:"startTime" validate:"required"`
	Duration  int       `json:"duration" validate:"lessonminutes"`
	Notes     string    `json:"notes,omitempty" validate:"max=1000"`
}

// RescheduleRequest moves a booking
type RescheduleRequest struct {
	StartTime time.Time `json:"startTime" validate:"required"`
	Reason    string    `json:"reason,omitempty" validate:"max=500"`
}

// Schedule is a teacher's weekly calendar
type Schedule struct {
	TeacherID string     `json:"teacherId"`
	Timezone  string     `json:"timezone,omitempty"`
	Slots     []TimeSlot `json:"slots"`
}

// ScheduleUpdate replaces a teacher's slots
type ScheduleUpdate struct {
	Timezone string     `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Slots    []TimeSlot `json:"slots" validate:"dive"`
}

// Review is a student's rating of a teacher
type Review struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacherId"`
	StudentID string    `json:"studentId"`
	BookingID string    `json:"bookingId,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewRequest is the body of Reviews.Create
type ReviewRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	BookingID string `json:"bookingId,omitempty"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment,omitempty" validate:"max=1000"`
}

// ContactRequest is the body of Contact.Submit
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phone"`
	Subject string `json:"subject,omitempty" validate:"max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// Payment is a checkout session
type Payment struct {
	ID          string  `json:"id"`
	BookingID   string  `json:"bookingId,omitempty"`
	CourseID    string  `json:"courseId,omitempty"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	CheckoutURL string  `json:"checkoutUrl,omitempty"`
}

// CoursePaymentRequest starts the checkout of a course package
type CoursePaymentRequest struct {
	CourseID string  `json:"courseId" validate:"required"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency" validate:"required,currency"`
	Method   string  `json:"method" validate:"required,oneof=card bank_transfer momo zalopay"`
}

// TrialPaymentRequest starts the checkout of a trial lesson
type TrialPaymentRequest struct {
	BookingID string  `json:"bookingId" validate:"required"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	Currency  string  `json:"currency" validate:"required,currency"`
	Method    string  `json:"method" validate:"required,oneof=card bank_transfer momo zalopay"`
}
