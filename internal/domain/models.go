package domain

import "time"

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

type User struct {
	ID          string
	Email       string
	Name        string
	Role        UserRole
	Status      UserStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

type UserWithPassword struct {
	User
	PasswordHash string
}

type BlogPost struct {
	ID          string
	Slug        string
	Title       string
	Summary     string
	Body        string
	AuthorID    string
	AuthorName  string
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Company   string
	Message   string
	ClientIP  string
	CreatedAt time.Time
}

// InvestorMetric is one quarterly data point of a named series
// (e.g. revenue_usd, headcount). The investor relations page charts
// these client-side.
type InvestorMetric struct {
	Series  string
	Quarter string
	Value   float64
}
