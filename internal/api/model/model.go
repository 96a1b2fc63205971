package model

import (
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
)

type User struct {
	ID           int64       `db:"id"`
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	Role         domain.Role `db:"role"`
	FullName     string      `db:"full_name"`
	CreatedAt    time.Time   `db:"created_at"`
}

// DisplayName is what other users see in messages and notifications.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

type Job struct {
	ID               int64            `db:"id"`
	EmployerID       int64            `db:"employer_id"`
	Title            string           `db:"title"`
	Description      string           `db:"description"`
	SkillsRequired   string           `db:"skills_required"`
	JobType          string           `db:"job_type"`
	LocationCity     string           `db:"location_city"`
	LocationState    string           `db:"location_state"`
	SalaryMin        *int64           `db:"salary_min"`
	SalaryMax        *int64           `db:"salary_max"`
	Status           domain.JobStatus `db:"status"`
	Deadline         *time.Time       `db:"deadline"`
	Views            int64            `db:"views"`
	CreatedAt        time.Time        `db:"created_at"`
	ApplicationCount int64            `db:"application_count"`
}

type JobApplication struct {
	ID             int64                    `db:"id"`
	JobID          int64                    `db:"job_id"`
	ApplicantID    int64                    `db:"applicant_id"`
	Status         domain.ApplicationStatus `db:"status"`
	CoverLetter    string                   `db:"cover_letter"`
	PortfolioLink  string                   `db:"portfolio_link"`
	Version        int64                    `db:"version"`
	CreatedAt      time.Time                `db:"created_at"`
	UpdatedAt      time.Time                `db:"updated_at"`
	ApplicantName  string                   `db:"applicant_name"`
	ApplicantEmail string                   `db:"applicant_email"`
	JobTitle       string                   `db:"job_title"`
	EmployerID     int64                    `db:"employer_id"`
}

type Message struct {
	ID            int64     `db:"id"`
	SenderID      int64     `db:"sender_id"`
	RecipientID   int64     `db:"recipient_id"`
	Content       string    `db:"content"`
	IsRead        bool      `db:"is_read"`
	CreatedAt     time.Time `db:"created_at"`
	SenderName    string    `db:"sender_name"`
	RecipientName string    `db:"recipient_name"`
}

// Conversation is one row of the grouped conversation query: the counterpart,
// the latest message in either direction, and the caller's unread count.
type Conversation struct {
	CounterpartID       int64       `db:"counterpart_id"`
	CounterpartUsername string      `db:"counterpart_username"`
	CounterpartFullName string      `db:"counterpart_full_name"`
	CounterpartRole     domain.Role `db:"counterpart_role"`
	LastMessageID       int64       `db:"last_message_id"`
	LastSenderID        int64       `db:"last_sender_id"`
	LastContent         string      `db:"last_content"`
	LastCreatedAt       time.Time   `db:"last_created_at"`
	LastIsRead          bool        `db:"last_is_read"`
	UnreadCount         int64       `db:"unread_count"`
}

type Notification struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	Message     string     `db:"message"`
	Link        string     `db:"link"`
	IsRead      bool       `db:"is_read"`
	CreatedAt   time.Time  `db:"created_at"`
	DeliveredAt *time.Time `db:"delivered_at"`
}
