package backend

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yshengliao/antoree/api"
	"github.com/yshengliao/antoree/internal/testutil/fixture"
)

func (b *Backend) routes() {
	g := b.echo.Group("/api")
	protected := g.Group("", b.requireAuth)

	g.POST("/auth/login", b.login)
	g.POST("/auth/register", b.register)
	g.POST("/auth/forgot-password", ok("Reset email sent"))
	g.POST("/auth/reset-password", ok("Password updated"))
	protected.POST("/auth/logout", ok("Logged out"))
	protected.GET("/auth/me", b.me)
	protected.POST("/auth/refresh", b.refresh)

	g.GET("/teachers", b.listTeachers)
	g.GET("/teachers/search", b.listTeachers)
	g.GET("/teachers/:id", b.getTeacher)
	g.GET("/teachers/:id/availability", b.availability)
	g.GET("/teachers/:id/reviews", b.reviews)
	protected.PUT("/teachers/:id", b.updateTeacher)

	protected.GET("/students/:id", b.getStudent)
	protected.PUT("/students/:id", b.getStudent)
	protected.GET("/students/:id/bookings", b.listBookings)

	protected.POST("/bookings/trial", b.createBooking(true))
	protected.POST("/bookings", b.createBooking(false))
	protected.GET("/bookings", b.listBookings)
	protected.GET("/bookings/:id", b.getBooking)
	protected.DELETE("/bookings/:id", b.cancelBooking)
	protected.PATCH("/bookings/:id/reschedule", b.rescheduleBooking)

	g.GET("/schedule/:teacherId", b.getSchedule)
	protected.PUT("/schedule/:teacherId", b.updateSchedule)

	protected.POST("/reviews", b.createReview)
	g.GET("/reviews/teacher/:teacherId", b.reviews)

	g.POST("/contact", ok("Thanks, we will be in touch"))

	protected.POST("/payments/course", b.createPayment)
	protected.POST("/payments/trial", b.createPayment)
	protected.GET("/payments/:id/status", b.paymentStatus)
	protected.POST("/payments/:id/confirm", b.confirmPayment)

	// Non-JSON and failing endpoints for client tests
	g.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	g.GET("/broken", func(c echo.Context) error { return c.NoContent(http.StatusBadGateway) })
}

func ok(message string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, api.Message{Success: true, Message: message})
	}
}

func (b *Backend) issue(c echo.Context, status int, u api.User) error {
	token, err := b.Issuer.Issue(u.ID, u.Email, u.Name, u.Role)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(status, api.AuthResponse{Token: token, User: u})
}

func (b *Backend) login(c echo.Context) error {
	var req api.LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid body")
	}
	u := fixture.SampleStudent()
	if req.Email != u.Email || req.Password != fixture.Password {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	return b.issue(c, http.StatusOK, u)
}

func (b *Backend) register(c echo.Context) error {
	var req api.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid body")
	}
	if req.Email == fixture.SampleStudent().Email {
		return fail(c, http.StatusConflict, "Email already registered")
	}
	b.mu.Lock()
	id := b.newID("usr")
	b.mu.Unlock()
	return b.issue(c, http.StatusCreated, api.User{ID: id, Email: req.Email, Name: req.Name, Role: req.Role, Phone: req.Phone})
}

func (b *Backend) me(c echo.Context) error {
	claims := claimsOf(c)
	return c.JSON(http.StatusOK, api.User{ID: claims.UserID, Email: claims.Email, Name: claims.Name, Role: claims.Role})
}

func (b *Backend) refresh(c echo.Context) error {
	claims := claimsOf(c)
	return b.issue(c, http.StatusOK, api.User{ID: claims.UserID, Email: claims.Email, Name: claims.Name, Role: claims.Role})
}

func (b *Backend) listTeachers(c echo.Context) error {
	q := strings.ToLower(c.QueryParam("q"))
	lang := c.QueryParam("language")
	specialties := c.QueryParams()["specialty"]

	var items []api.Teacher
	for _, t := range fixture.SampleTeachers() {
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) {
			continue
		}
		if lang != "" && !contains(t.Languages, lang) {
			continue
		}
		if len(specialties) > 0 && !containsAny(t.Specialties, specialties) {
			continue
		}
		items = append(items, t)
	}

	page, limit := paging(c)
	return c.JSON(http.StatusOK, api.Page[api.Teacher]{Items: window(items, page, limit), Total: len(items), Page: page, Limit: limit})
}

func (b *Backend) getTeacher(c echo.Context) error {
	for _, t := range fixture.SampleTeachers() {
		if t.ID == c.Param("id") {
			return c.JSON(http.StatusOK, t)
		}
	}
	return fail(c, http.StatusNotFound, "Teacher not found")
}

func (b *Backend) updateTeacher(c echo.Context) error {
	var update api.TeacherProfileUpdate
	if err := c.Bind(&update); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid body")
	}
	if claimsOf(c).Role != "teacher" {
		return fail(c, http.StatusForbidden, "Only teachers can edit profiles")
	}
	return c.JSON(http.StatusOK, api.Teacher{ID: c.Param("id"), Name: update.Name, Bio: update.Bio})
}

func (b *Backend) availability(c echo.Context) error {
	from := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	return c.JSON(http.StatusOK, api.Availability{TeacherID: c.Param("id"), Slots: fixture.SampleSlots(from, 4)})
}

func (b *Backend) reviews(c echo.Context) error {
	teacherID := c.Param("id")
	if teacherID == "" {
		teacherID = c.Param("teacherId")
	}
	items := []api.Review{
		{ID: "r-1", TeacherID: teacherID, StudentID: "stu-1", Rating: 5, Comment: "Great lesson"},
		{ID: "r-2", TeacherID: teacherID, StudentID: "stu-2", Rating: 4},
	}
	page, limit := paging(c)
	return c.JSON(http.StatusOK, api.Page[api.Review]{Items: window(items, page, limit), Total: len(items), Page: page, Limit: limit})
}

func (b *Backend) getStudent(c echo.Context) error {
	claims := claimsOf(c)
	if claims.UserID != c.Param("id") {
		return fail(c, http.StatusForbidden, "Forbidden")
	}
	u := fixture.SampleStudent()
	st := api.Student{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
	if c.Request().Method == http.MethodPut {
		var update api.StudentProfileUpdate
		if err := c.Bind(&update); err != nil {
			return fail(c, http.StatusBadRequest, "Invalid body")
		}
		if update.Name != "" {
			st.Name = update.Name
		}
		st.Level = update.Level
		st.Goals = update.Goals
	}
	return c.JSON(http.StatusOK, st)
}

func (b *Backend) createBooking(trial bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			TeacherID string    `json:"teacherId"`
			StartTime time.Time `json:"startTime"`
			Duration  int       `json:"duration"`
			Notes     string    `json:"notes"`
		}
		if err := c.Bind(&req); err != nil {
			return fail(c, http.StatusBadRequest, "Invalid body")
		}

		b.mu.Lock()
		booking := api.Booking{
			ID:        b.newID("bk"),
			TeacherID: req.TeacherID,
			StudentID: claimsOf(c).UserID,
			StartTime: req.StartTime,
			Duration:  req.Duration,
			Status:    api.BookingPending,
			Trial:     trial,
			Notes:     req.Notes,
		}
		b.bookings[booking.ID] = booking
		b.mu.Unlock()

		return c.JSON(http.StatusCreated, booking)
	}
}

func (b *Backend) listBookings(c echo.Context) error {
	status := c.QueryParam("status")
	b.mu.Lock()
	items := make([]api.Booking, 0, len(b.bookings))
	for _, bk := range b.bookings {
		if status == "" || bk.Status == status {
			items = append(items, bk)
		}
	}
	b.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return c.JSON(http.StatusOK, items)
}

func (b *Backend) booking(c echo.Context, update func(*api.Booking)) error {
	b.mu.Lock()
	bk, found := b.bookings[c.Param("id")]
	if found && update != nil {
		update(&bk)
		b.bookings[bk.ID] = bk
	}
	b.mu.Unlock()
	if !found {
		return fail(c, http.StatusNotFound, "Booking not found")
	}
	return c.JSON(http.StatusOK, bk)
}

func (b *Backend) getBooking(c echo.Context) error {
	return b.booking(c, nil)
}

func (b *Backend) cancelBooking(c echo.Context) error {
	return b.booking(c, func(bk *api.Booking) { bk.Status = api.BookingCancelled })
}

func (b *Backend) rescheduleBooking(c echo.Context) error {
	var req api.RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid body")
	}
	return b.booking(c, func(bk *api.Booking) { bk.StartTime = req.StartTime })
}

func (b *Backend) getSchedule(c echo.Context) error {
	id := c.Param("teacherId")
	b.mu.Lock()
	sc, found := b.schedule[id]
	b.mu.Unlock()
	if !found {
		sc = api.Schedule{TeacherID: id, Timezone: "Asia/Ho_Chi_Minh", Slots: []api.TimeSlot{}}
	}
	return c.JSON(http.StatusOK, sc)
}

func (b *Backend) updateSchedule(c echo.Context) error {
	var update api.ScheduleUpdate
	if err := c.Bind(&update); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid body")
	}
	sc := api.Schedule{TeacherID: c.Param("teacherId"), Timezone: update.Timezone, Slots: update.Slots}
	b.mu.Lock()
	b.schedule[sc.TeacherID] = sc
	b.mu.Unlock()
	return c.JSON(http.StatusOK, sc)
}

func (b *Backend) createReview(c echo.Context) error {
	var req api.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid body")
	}
	b.mu.Lock()
	id := b.newID("r")
	b.mu.Unlock()
	return c.JSON(http.StatusCreated, api.Review{
		ID:        id,
		TeacherID: req.TeacherID,
		StudentID: claimsOf(c).UserID,
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	})
}

func (b *Backend) createPayment(c echo.Context) error {
	var req struct {
		CourseID  string  `json:"courseId"`
		BookingID string  `json:"bookingId"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid body")
	}
	b.mu.Lock()
	p := api.Payment{
		ID:        b.newID("pay"),
		CourseID:  req.CourseID,
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    api.PaymentPending,
	}
	p.CheckoutURL = "https://pay.example/checkout/" + p.ID
	b.payments[p.ID] = p
	b.mu.Unlock()
	return c.JSON(http.StatusCreated, p)
}

func (b *Backend) payment(c echo.Context, update func(*api.Payment)) error {
	b.mu.Lock()
	p, found := b.payments[c.Param("id")]
	if found && update != nil {
		update(&p)
		b.payments[p.ID] = p
	}
	b.mu.Unlock()
	if !found {
		return fail(c, http.StatusNotFound, "Payment not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (b *Backend) paymentStatus(c echo.Context) error {
	return b.payment(c, nil)
}

func (b *Backend) confirmPayment(c echo.Context) error {
	return b.payment(c, func(p *api.Payment) { p.Status = api.PaymentSucceeded })
}

func paging(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

func window[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsAny(list, wanted []string) bool {
	for _, w := range wanted {
		if contains(list, w) {
			return true
		}
	}
	return false
}
