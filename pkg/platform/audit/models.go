package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers changes to issued certificates: the record a
	// third party relies on when verifying a credential.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers failed verifications and throttling, which feed
	// enumeration detection.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine catalog maintenance and successful
	// verifications. These can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory     `json:"category"`
	Timestamp  time.Time         `json:"timestamp"`
	Action     string            `json:"action"`
	Subject    string            `json:"subject,omitempty"`
	ActorID    string            `json:"actor_id,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	ClientIP   string            `json:"client_ip,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Browser    string            `json:"browser,omitempty"`
	OS         string            `json:"os,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type AuditEvent string

const (
	// Catalog events
	EventCourseCreated       AuditEvent = "course_created"
	EventCourseUpdated       AuditEvent = "course_updated"
	EventCourseDeleted       AuditEvent = "course_deleted"
	EventCourseToggled       AuditEvent = "course_toggled"
	EventCoursesReordered    AuditEvent = "courses_reordered"
	EventSubCourseCreated    AuditEvent = "sub_course_created"
	EventSubCourseUpdated    AuditEvent = "sub_course_updated"
	EventSubCourseDeleted    AuditEvent = "sub_course_deleted"
	EventSubCourseToggled    AuditEvent = "sub_course_toggled"
	EventSubCoursesReordered AuditEvent = "sub_courses_reordered"

	// Certificate events
	EventCertificateIssued          AuditEvent = "certificate_issued"
	EventCertificateUpdated         AuditEvent = "certificate_updated"
	EventCertificateCodeRegenerated AuditEvent = "certificate_code_regenerated"
	EventCertificateDeleted         AuditEvent = "certificate_deleted"

	// Verification events
	EventCertificateVerified           AuditEvent = "certificate_verified"
	EventCertificateVerificationFailed AuditEvent = "certificate_verification_failed"
	EventVerifyRateLimitExceeded       AuditEvent = "verify_rate_limit_exceeded"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventCertificateIssued:          CategoryCompliance,
	EventCertificateUpdated:         CategoryCompliance,
	EventCertificateCodeRegenerated: CategoryCompliance,
	EventCertificateDeleted:         CategoryCompliance,

	EventCertificateVerificationFailed: CategorySecurity,
	EventVerifyRateLimitExceeded:       CategorySecurity,

	EventCertificateVerified: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events, including all catalog events, default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
