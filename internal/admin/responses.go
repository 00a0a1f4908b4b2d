package admin

import (
	"time"

	usermodels "academy/internal/users/models"
	audit "academy/pkg/platform/audit"
)

// UserResponse is a holder as offered by the issuance form's user picker.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UsersListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int             `json:"total"`
}

type AuditEventResponse struct {
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	Action     string            `json:"action"`
	Subject    string            `json:"subject,omitempty"`
	ActorID    string            `json:"actor_id,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Browser    string            `json:"browser,omitempty"`
	OS         string            `json:"os,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type AuditEventsResponse struct {
	Events []*AuditEventResponse `json:"events"`
}

func toUsersListResponse(users []*usermodels.User) *UsersListResponse {
	out := &UsersListResponse{Users: make([]*UserResponse, 0, len(users)), Total: len(users)}
	for _, u := range users {
		out.Users = append(out.Users, &UserResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email})
	}
	return out
}

// Client IPs stay out of the admin listing; they remain in the sinks.
func toAuditEventsResponse(events []audit.Event) *AuditEventsResponse {
	out := &AuditEventsResponse{Events: make([]*AuditEventResponse, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, &AuditEventResponse{
			Timestamp:  e.Timestamp,
			Category:   string(e.Category),
			Action:     e.Action,
			Subject:    e.Subject,
			ActorID:    e.ActorID,
			RequestID:  e.RequestID,
			Browser:    e.Browser,
			OS:         e.OS,
			Attributes: e.Attributes,
		})
	}
	return out
}
