package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshengliao/antoree/api"
	"github.com/yshengliao/antoree/auth"
	"github.com/yshengliao/antoree/internal/testutil/backend"
	"github.com/yshengliao/antoree/internal/testutil/fixture"
	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/pkg/storage"
	"github.com/yshengliao/antoree/pkg/validation"
	"github.com/yshengliao/antoree/router"
)

type harness struct {
	api     *api.API
	client  *httpclient.Client
	session *auth.Session
	store   *storage.MemoryStore
	backend *backend.Backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := backend.New(t)
	client := httpclient.New(httpclient.Config{BaseURL: b.BaseURL(), Timeout: 2 * time.Second})
	store := storage.NewMemoryStore()
	session := auth.NewSession(client, store, nil)
	return &harness{
		api:     api.New(router.New(client), api.WithTokenStore(session)),
		client:  client,
		session: session,
		store:   store,
		backend: b,
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.api.Auth.Login(context.Background(), api.LoginRequest{
		Email:    fixture.SampleStudent().Email,
		Password: fixture.Password,
	})
	require.NoError(t, err)
}

func TestAuth_LoginStoresToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.api.Auth.Login(ctx, api.LoginRequest{Email: fixture.SampleStudent().Email, Password: fixture.Password})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, fixture.SampleStudent().ID, res.User.ID)

	token, ok := h.client.AuthToken()
	require.True(t, ok)
	assert.Equal(t, res.Token, token)

	stored, err := h.store.Get(ctx, storage.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, res.Token, stored)

	me, err := h.api.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixture.SampleStudent().Email, me.Email)
}

func TestAuth_LoginRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.api.Auth.Login(context.Background(), api.LoginRequest{Email: fixture.SampleStudent().Email, Password: "wrong-pass"})
	apiErr, ok := apierrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)

	_, has := h.client.AuthToken()
	assert.False(t, has)
}

func TestAuth_LoginValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.api.Auth.Login(context.Background(), api.LoginRequest{Email: "not-an-email", Password: "x"})
	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "email")
	assert.Contains(t, verr.Errors, "password")
	assert.Empty(t, h.backend.Requests())
}

func TestAuth_RegisterRefreshLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.api.Auth.Register(ctx, api.RegisterRequest{
		Name:     "Pham Huong",
		Email:    "huong@example.com",
		Password: "longenough",
		Role:     "student",
	})
	require.NoError(t, err)
	assert.Equal(t, "huong@example.com", res.User.Email)

	refreshed, err := h.api.Auth.RefreshToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, res.Token, refreshed.Token)
	token, _ := h.client.AuthToken()
	assert.Equal(t, refreshed.Token, token)

	require.NoError(t, h.api.Auth.Logout(ctx))
	_, has := h.client.AuthToken()
	assert.False(t, has)
	_, err = h.store.Get(ctx, storage.KeyAuthToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Protected calls are refused locally afterwards
	_, err = h.api.Auth.Me(ctx)
	assert.ErrorIs(t, err, apierrors.ErrAuthRequired)
}

func TestAuth_LogoutWithoutSessionStillClears(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, storage.KeyAuthToken, "stale"))

	err := h.api.Auth.Logout(ctx)
	assert.ErrorIs(t, err, apierrors.ErrAuthRequired)
	_, err = h.store.Get(ctx, storage.KeyAuthToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAuth_PasswordReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	msg, err := h.api.Auth.ForgotPassword(ctx, "lan@example.com")
	require.NoError(t, err)
	assert.True(t, msg.Success)

	msg, err = h.api.Auth.ResetPassword(ctx, api.ResetPasswordRequest{Token: "reset", Password: "new-password"})
	require.NoError(t, err)
	assert.Equal(t, "Password updated", msg.Message)
}

func TestTeachers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	page, err := h.api.Teachers.List(ctx, api.TeacherFilters{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	page, err = h.api.Teachers.Search(ctx, api.TeacherFilters{Query: "emily", Specialty: []string{"ielts", "toeic"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "t-1", page.Items[0].ID)
	last, _ := h.backend.LastRequest()
	assert.Equal(t, "/teachers/search", last.Path)
	assert.Equal(t, "q=emily&specialty=ielts&specialty=toeic", last.Query)

	teacher, err := h.api.Teachers.Get(ctx, "t-2")
	require.NoError(t, err)
	assert.Equal(t, "Mark Dela Cruz", teacher.Name)

	_, err = h.api.Teachers.Get(ctx, "t-404")
	assert.True(t, apierrors.IsNotFound(err))

	_, err = h.api.Teachers.Get(ctx, "")
	assert.ErrorIs(t, err, apierrors.ErrUnresolvedParam)

	from := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	avail, err := h.api.Teachers.Availability(ctx, "t-1", from, time.Time{})
	require.NoError(t, err)
	assert.Len(t, avail.Slots, 4)
	assert.True(t, avail.Slots[0].Start.Equal(from))

	reviews, err := h.api.Teachers.Reviews(ctx, "t-1", 1, 1)
	require.NoError(t, err)
	assert.Len(t, reviews.Items, 1)
	assert.Equal(t, 2, reviews.Total)

	_, err = h.api.Teachers.List(ctx, api.TeacherFilters{MinRating: 6})
	assert.Error(t, err)
}

func TestTeachers_UpdateProfileRequiresAuth(t *testing.T) {
	h := newHarness(t)

	_, err := h.api.Teachers.UpdateProfile(context.Background(), "t-1", api.TeacherProfileUpdate{Bio: "hi"})
	assert.ErrorIs(t, err, apierrors.ErrAuthRequired)

	h.login(t)
	_, err = h.api.Teachers.UpdateProfile(context.Background(), "t-1", api.TeacherProfileUpdate{Bio: "hi"})
	assert.True(t, apierrors.IsForbidden(err))
}

func TestStudents(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()
	id := fixture.SampleStudent().ID

	st, err := h.api.Students.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fixture.SampleStudent().Name, st.Name)

	st, err = h.api.Students.UpdateProfile(ctx, id, api.StudentProfileUpdate{Level: "advanced", Goals: "IELTS 7.5"})
	require.NoError(t, err)
	assert.Equal(t, "advanced", st.Level)

	_, err = h.api.Students.UpdateProfile(ctx, id, api.StudentProfileUpdate{Level: "expert"})
	assert.Error(t, err)

	bookings, err := h.api.Students.Bookings(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookings(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	trial, err := h.api.Bookings.CreateTrial(ctx, api.TrialBookingRequest{
		TeacherID: "t-1",
		StartTime: start,
		Duration:  25,
		Name:      "Nguyen Lan",
		Email:     "lan@example.com",
		Phone:     "+84 912 345 678",
	})
	require.NoError(t, err)
	assert.True(t, trial.Trial)
	assert.Equal(t, api.BookingPending, trial.Status)

	_, err = h.api.Bookings.Create(ctx, api.BookingRequest{TeacherID: "t-1", CourseID: "c-1", StartTime: start, Duration: 30})
	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "duration")

	regular, err := h.api.Bookings.Create(ctx, api.BookingRequest{TeacherID: "t-1", CourseID: "c-1", StartTime: start, Duration: 45})
	require.NoError(t, err)
	assert.False(t, regular.Trial)

	got, err := h.api.Bookings.Get(ctx, trial.ID)
	require.NoError(t, err)
	assert.Equal(t, trial.ID, got.ID)

	moved, err := h.api.Bookings.Reschedule(ctx, trial.ID, api.RescheduleRequest{StartTime: start.Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.True(t, moved.StartTime.Equal(start.Add(24*time.Hour)))
	last, _ := h.backend.LastRequest()
	assert.Equal(t, http.MethodPatch, last.Method)

	cancelled, err := h.api.Bookings.Cancel(ctx, regular.ID)
	require.NoError(t, err)
	assert.Equal(t, api.BookingCancelled, cancelled.Status)
	last, _ = h.backend.LastRequest()
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Empty(t, last.Body)

	all, err := h.api.Bookings.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := h.api.Bookings.List(ctx, api.BookingPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestBookings_TrialRateLimit(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()
	req := api.TrialBookingRequest{
		TeacherID: "t-2",
		StartTime: time.Now().Add(48 * time.Hour),
		Duration:  25,
		Name:      "Nguyen Lan",
		Email:     "lan@example.com",
		Phone:     "0912345678",
	}

	for i := 0; i < 3; i++ {
		_, err := h.api.Bookings.CreateTrial(ctx, req)
		require.NoError(t, err)
	}
	_, err := h.api.Bookings.CreateTrial(ctx, req)
	assert.ErrorIs(t, err, apierrors.ErrRateLimitExceeded)
}

func TestSchedule(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	sc, err := h.api.Schedule.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Empty(t, sc.Slots)

	slots := fixture.SampleSlots(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), 2)
	_, err = h.api.Schedule.Update(ctx, "t-1", api.ScheduleUpdate{Slots: slots})
	assert.ErrorIs(t, err, apierrors.ErrAuthRequired)

	h.login(t)
	updated, err := h.api.Schedule.Update(ctx, "t-1", api.ScheduleUpdate{Slots: slots})
	require.NoError(t, err)
	assert.Len(t, updated.Slots, 2)

	bad := []api.TimeSlot{{Start: slots[0].End, End: slots[0].Start}}
	_, err = h.api.Schedule.Update(ctx, "t-1", api.ScheduleUpdate{Slots: bad})
	assert.Error(t, err)
}

func TestReviews(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	page, err := h.api.Reviews.List(ctx, "t-3", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "t-3", page.Items[0].TeacherID)

	h.login(t)
	r, err := h.api.Reviews.Create(ctx, api.ReviewRequest{TeacherID: "t-3", Rating: 5, Comment: "Clear and patient"})
	require.NoError(t, err)
	assert.Equal(t, fixture.SampleStudent().ID, r.StudentID)

	_, err = h.api.Reviews.Create(ctx, api.ReviewRequest{TeacherID: "t-3", Rating: 0})
	assert.Error(t, err)
}

func TestContact(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := api.ContactRequest{Name: "Lan", Email: "lan@example.com", Message: "Do you teach kids?"}

	// No token needed
	msg, err := h.api.Contact.Submit(ctx, req)
	require.NoError(t, err)
	assert.True(t, msg.Success)

	last, _ := h.backend.LastRequest()
	var body map[string]any
	require.NoError(t, json.Unmarshal(last.Body, &body))
	assert.Equal(t, "Do you teach kids?", body["message"])

	_, err = h.api.Contact.Submit(ctx, req)
	require.NoError(t, err)
	_, err = h.api.Contact.Submit(ctx, req)
	assert.ErrorIs(t, err, apierrors.ErrRateLimitExceeded)
}

func TestPayments(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	p, err := h.api.Payments.CreateCoursePayment(ctx, api.CoursePaymentRequest{
		CourseID: "c-1",
		Amount:   2_400_000,
		Currency: "VND",
		Method:   "momo",
	})
	require.NoError(t, err)
	assert.Equal(t, api.PaymentPending, p.Status)
	assert.NotEmpty(t, p.CheckoutURL)

	_, err = h.api.Payments.CreateTrialPayment(ctx, api.TrialPaymentRequest{BookingID: "bk-1", Currency: "BTC", Method: "card"})
	assert.Error(t, err)

	trial, err := h.api.Payments.CreateTrialPayment(ctx, api.TrialPaymentRequest{BookingID: "bk-1", Currency: "USD", Method: "card"})
	require.NoError(t, err)
	assert.Equal(t, "bk-1", trial.BookingID)

	st, err := h.api.Payments.Status(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, api.PaymentPending, st.Status)

	confirmed, err := h.api.Payments.Confirm(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, api.PaymentSucceeded, confirmed.Status)

	// confirm allows one call per 5s
	_, err = h.api.Payments.Confirm(ctx, p.ID)
	assert.ErrorIs(t, err, apierrors.ErrRateLimitExceeded)
}

func TestTeachers_ReadCache(t *testing.T) {
	b := backend.New(t)
	client := httpclient.New(httpclient.Config{BaseURL: b.BaseURL(), Timeout: 2 * time.Second, CacheSize: 16, Language: "vi"})
	facade := api.New(router.New(client), api.WithReadCache(httpclient.CacheForce))
	ctx := context.Background()

	teacherGets := func() int {
		n := 0
		for _, r := range b.Requests() {
			if r.Method == http.MethodGet && r.Path == "/teachers/t-1" {
				n++
			}
		}
		return n
	}

	_, err := facade.Teachers.Get(ctx, "t-1")
	require.NoError(t, err)
	_, err = facade.Teachers.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 1, teacherGets())

	// Another language is another response
	client.SetLanguage("en")
	_, err = facade.Teachers.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 2, teacherGets())
	last, _ := b.LastRequest()
	assert.Equal(t, "en", last.Header.Get("Accept-Language"))

	client.SetLanguage("vi")
	_, err = facade.Teachers.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 2, teacherGets())

	// A profile edit drops the cached reads
	token, err := b.Issuer.Issue("t-1", "emily@example.com", "Emily Carter", auth.RoleTeacher)
	require.NoError(t, err)
	client.SetAuthToken(token)
	_, err = facade.Teachers.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 3, teacherGets())

	_, err = facade.Teachers.UpdateProfile(ctx, "t-1", api.TeacherProfileUpdate{Bio: "Updated"})
	require.NoError(t, err)
	_, err = facade.Teachers.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 4, teacherGets())
}

func TestTeachers_NoReadCacheByDefault(t *testing.T) {
	b := backend.New(t)
	client := httpclient.New(httpclient.Config{BaseURL: b.BaseURL(), Timeout: 2 * time.Second, CacheSize: 16})
	facade := api.New(router.New(client))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := facade.Teachers.List(ctx, api.TeacherFilters{})
		require.NoError(t, err)
	}
	assert.Len(t, b.Requests(), 2)
}
