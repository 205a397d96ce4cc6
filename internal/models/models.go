package models

// Roles a user can register with.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Course lifecycle statuses. New courses start pending; only an admin moves
// them to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Material types.
const (
	MaterialVideo = "video"
	MaterialPDF   = "pdf"
	MaterialLink  = "link"
	MaterialText  = "text"
)

// User is a registered account. Password is stored in clear text on purpose:
// the app is a single-user local tool and real authentication is out of scope.
// Flagged as an open issue, do not reuse this model elsewhere.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// Course is the top-level marketplace entity. LiveSessions and Materials are
// owned by composition: they have no lifecycle outside their course.
type Course struct {
	ID                 string           `json:"id"`
	ProviderID         string           `json:"providerId"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Price              float64          `json:"price"`
	Status             string           `json:"status"`
	EnrolledStudentIDs []string         `json:"enrolledStudentIds"`
	LiveSessions       []LiveSession    `json:"liveSessions"`
	Materials          []CourseMaterial `json:"materials"`
	CreatedAt          string           `json:"createdAt"`
}

// Free reports whether enrolling skips the simulated payment step.
func (c Course) Free() bool { return c.Price <= 0 }

// IsEnrolled reports whether the given student id is in the enrolled set.
func (c Course) IsEnrolled(studentID string) bool {
	for _, id := range c.EnrolledStudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// LiveSession is a scheduled online meeting attached to a course. The list on
// the course is kept sorted by DateTime ascending. ScheduledAt records when the
// session was created and drives the "new session" notification flag.
type LiveSession struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	DateTime    string `json:"dateTime"`
	MeetingLink string `json:"meetingLink"`
	ScheduledAt string `json:"scheduledAt"`
}

// CourseMaterial is an attachment on a course. URL is required (and must be a
// valid URL) for every type except text; text materials require a description.
type CourseMaterial struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Message is a direct message between two users. Conversations are derived,
// never stored: the support thread is the set of messages where either side is
// an admin account.
type Message struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
	Read        bool   `json:"read"`
}

// ValidRole reports whether r is one of the registrable roles.
func ValidRole(r string) bool {
	return r == RoleClient || r == RoleProvider || r == RoleAdmin
}

// ValidMaterialType reports whether t is a known material type.
func ValidMaterialType(t string) bool {
	return t == MaterialVideo || t == MaterialPDF || t == MaterialLink || t == MaterialText
}
