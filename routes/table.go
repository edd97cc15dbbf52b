package routes

// Action names of the built-in route table
const (
	ActionLogin          = "login"
	ActionRegister       = "register"
	ActionLogout         = "logout"
	ActionMe             = "me"
	ActionRefreshToken   = "refreshToken"
	ActionForgotPassword = "forgotPassword"
	ActionResetPassword  = "resetPassword"

	ActionList          = "list"
	ActionSearch        = "search"
	ActionGet           = "get"
	ActionAvailability  = "availability"
	ActionReviews       = "reviews"
	ActionUpdateProfile = "updateProfile"
	ActionBookings      = "bookings"

	ActionCreateTrial = "createTrial"
	ActionCreate      = "create"
	ActionCancel      = "cancel"
	ActionReschedule  = "reschedule"

	ActionUpdate = "update"
	ActionSubmit = "submit"

	ActionCreateCoursePayment = "createCoursePayment"
	ActionCreateTrialPayment  = "createTrialPayment"
	ActionStatus              = "status"
	ActionConfirm             = "confirm"
)

var defaultTable = Registry{
	AUTH: {
		ActionLogin: {
			Method:    POST,
			Path:      "/auth/login",
			RateLimit: &RateLimit{Requests: 5, WindowMs: 60_000},
		},
		ActionRegister: {
			Method:    POST,
			Path:      "/auth/register",
			RateLimit: &RateLimit{Requests: 3, WindowMs: 60_000},
		},
		ActionLogout:       {Method: POST, Path: "/auth/logout", RequiresAuth: true},
		ActionMe:           {Method: GET, Path: "/auth/me", RequiresAuth: true},
		ActionRefreshToken: {Method: POST, Path: "/auth/refresh", RequiresAuth: true},
		ActionForgotPassword: {
			Method:    POST,
			Path:      "/auth/forgot-password",
			RateLimit: &RateLimit{Requests: 3, WindowMs: 300_000},
		},
		ActionResetPassword: {Method: POST, Path: "/auth/reset-password"},
	},
	TEACHERS: {
		ActionList:          {Method: GET, Path: "/teachers"},
		ActionSearch:        {Method: GET, Path: "/teachers/search"},
		ActionGet:           {Method: GET, Path: "/teachers/:id"},
		ActionAvailability:  {Method: GET, Path: "/teachers/:id/availability"},
		ActionReviews:       {Method: GET, Path: "/teachers/:id/reviews"},
		ActionUpdateProfile: {Method: PUT, Path: "/teachers/:id", RequiresAuth: true},
	},
	STUDENTS: {
		ActionGet:           {Method: GET, Path: "/students/:id", RequiresAuth: true},
		ActionUpdateProfile: {Method: PUT, Path: "/students/:id", RequiresAuth: true},
		ActionBookings:      {Method: GET, Path: "/students/:id/bookings", RequiresAuth: true},
	},
	BOOKINGS: {
		ActionCreateTrial: {
			Method:       POST,
			Path:         "/bookings/trial",
			RequiresAuth: true,
			RateLimit:    &RateLimit{Requests: 3, WindowMs: 60_000},
		},
		ActionCreate:     {Method: POST, Path: "/bookings", RequiresAuth: true},
		ActionGet:        {Method: GET, Path: "/bookings/:id", RequiresAuth: true},
		ActionList:       {Method: GET, Path: "/bookings", RequiresAuth: true},
		ActionCancel:     {Method: DELETE, Path: "/bookings/:id", RequiresAuth: true},
		ActionReschedule: {Method: PATCH, Path: "/bookings/:id/reschedule", RequiresAuth: true},
	},
	SCHEDULE: {
		ActionGet:    {Method: GET, Path: "/schedule/:teacherId"},
		ActionUpdate: {Method: PUT, Path: "/schedule/:teacherId", RequiresAuth: true},
	},
	REVIEWS: {
		ActionCreate: {Method: POST, Path: "/reviews", RequiresAuth: true},
		ActionList:   {Method: GET, Path: "/reviews/teacher/:teacherId"},
	},
	CONTACT: {
		ActionSubmit: {
			Method:     POST,
			Path:       "/contact",
			Middleware: []string{"rateLimit", "logging"},
			RateLimit:  &RateLimit{Requests: 2, WindowMs: 60_000},
		},
	},
	PAYMENTS: {
		ActionCreateCoursePayment: {Method: POST, Path: "/payments/course", RequiresAuth: true},
		ActionCreateTrialPayment:  {Method: POST, Path: "/payments/trial", RequiresAuth: true},
		ActionStatus:              {Method: GET, Path: "/payments/:id/status", RequiresAuth: true},
		ActionConfirm: {
			Method:       POST,
			Path:         "/payments/:id/confirm",
			RequiresAuth: true,
			RateLimit:    &RateLimit{Requests: 1, WindowMs: 5_000},
		},
	},
}

// Default returns a copy of the built-in route table
func Default() Registry {
	return defaultTable.Clone()
}
