package tracker

import (
	"strings"
	"time"

	"github.com/kidandcat/badiri/internal/db"
)

// Task and subtask statuses.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Statuses lists the task statuses in display order.
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted}

// User roles.
const (
	RoleStandard = "Standard"
	RoleAdmin    = "Admin"
	RoleViewer   = "Viewer Only"
)

var Roles = []string{RoleStandard, RoleAdmin, RoleViewer}

// User account statuses.
const (
	UserActive    = "Active"
	UserSuspended = "Suspended"
	UserBlocked   = "Blocked"
)

var UserStatuses = []string{UserActive, UserSuspended, UserBlocked}

// Unassigned is offered as the only assignee when no user is active.
const Unassigned = "Unassigned"

// Time layouts used in persisted values.
const (
	TimestampLayout = "2006-01-02 15:04"
	DateLayout      = "2006-01-02"
	ChatLayout      = "02 Jan 15:04"
)

// Column sets per table. Order is the persisted order.
var (
	TaskColumns    = []string{"Project", "Task Name", "Assignee", "Status", "Date Added", "Due Date", "Comments", "Attachments"}
	SubtaskColumns = []string{"Project", "Parent Task", "Subtask Name", "Assignee", "Status", "Date Added", "Due Date", "Comments", "Attachments"}
	UserColumns    = []string{"Full Name", "Email", "Phone Number", "Status", "Role", "Password"}
	ChatColumns    = []string{"Timestamp", "User", "Message"}
	MailColumns    = []string{"Timestamp", "From", "To", "Subject", "Message", "Read"}
)

// Kind tells tasks and subtasks apart.
type Kind string

const (
	KindTask    Kind = "task"
	KindSubtask Kind = "subtask"
)

func (k Kind) table() string {
	if k == KindSubtask {
		return db.Subtasks
	}
	return db.Tasks
}

func (k Kind) columns() []string {
	if k == KindSubtask {
		return SubtaskColumns
	}
	return TaskColumns
}

func (k Kind) nameColumn() string {
	if k == KindSubtask {
		return "Subtask Name"
	}
	return "Task Name"
}

// Valid reports whether k names a known kind.
func (k Kind) Valid() bool { return k == KindTask || k == KindSubtask }

// Ref addresses a task or subtask as the client last saw it.
type Ref struct {
	Kind  Kind
	Index int
	Name  string
}

// Item is a task or subtask row with the name field unified.
type Item struct {
	Kind        Kind
	Index       int
	Project     string
	Parent      string // subtasks only
	Name        string
	Assignee    string
	Status      string
	DateAdded   string
	DueDate     string
	Comments    string
	Attachments []string
}

// Ref returns the address of it.
func (it Item) Ref() Ref { return Ref{Kind: it.Kind, Index: it.Index, Name: it.Name} }

// AssignedTo reports whether the item belongs to user.
func (it Item) AssignedTo(user string) bool { return it.Assignee == user }

// Unacknowledged is true for pending items the user has never commented on.
func (it Item) Unacknowledged(user string) bool {
	return it.Status == StatusPending && !strings.Contains(it.Comments, user)
}

// InInbox reports whether the item waits for user's acknowledgment.
func (it Item) InInbox(user string) bool {
	return it.AssignedTo(user) && it.Unacknowledged(user)
}

// Active reports whether the item is acknowledged work in progress for user.
func (it Item) Active(user string) bool {
	return it.AssignedTo(user) && it.Status != StatusCompleted && !it.Unacknowledged(user)
}

// Due parses DueDate in loc.
func (it Item) Due(loc *time.Location) (time.Time, bool) { return parseDue(it.DueDate, loc) }

func itemFromRow(k Kind, i int, r db.Row) Item {
	return Item{
		Kind:        k,
		Index:       i,
		Project:     r["Project"],
		Parent:      r["Parent Task"],
		Name:        r[k.nameColumn()],
		Assignee:    r["Assignee"],
		Status:      r["Status"],
		DateAdded:   r["Date Added"],
		DueDate:     r["Due Date"],
		Comments:    r["Comments"],
		Attachments: splitAttachments(r["Attachments"]),
	}
}

func splitAttachments(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, k := range strings.Split(s, "|") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// User is a team member account.
type User struct {
	Index    int
	FullName string
	Email    string
	Phone    string
	Status   string
	Role     string
	Password string
}

func userFromRow(i int, r db.Row) User {
	return User{
		Index:    i,
		FullName: r["Full Name"],
		Email:    r["Email"],
		Phone:    r["Phone Number"],
		Status:   r["Status"],
		Role:     r["Role"],
		Password: r["Password"],
	}
}

func (u User) row() db.Row {
	return db.Row{
		"Full Name":    u.FullName,
		"Email":        u.Email,
		"Phone Number": u.Phone,
		"Status":       u.Status,
		"Role":         u.Role,
		"Password":     u.Password,
	}
}

// ChatMessage is one line of the team chat.
type ChatMessage struct {
	Timestamp string
	User      string
	Message   string
}

// Mail is an internal message between users.
type Mail struct {
	Index     int
	Timestamp string
	From      string
	To        string
	Subject   string
	Message   string
	Read      bool
}

func mailFromRow(i int, r db.Row) Mail {
	return Mail{
		Index:     i,
		Timestamp: r["Timestamp"],
		From:      r["From"],
		To:        r["To"],
		Subject:   r["Subject"],
		Message:   r["Message"],
		Read:      r["Read"] == "Yes",
	}
}

// Identity is the logged-in principal.
type Identity struct {
	Name    string
	Role    string
	IsAdmin bool
}

// CanEdit is false for read-only viewers.
func (id Identity) CanEdit() bool { return id.Role != RoleViewer }

func validStatus(s string) bool { return oneOf(s, Statuses) }

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
