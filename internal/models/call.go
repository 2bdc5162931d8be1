package models

import "time"

// CallStatus is the lifecycle state of a classroom call.
type CallStatus string

const (
	CallActive CallStatus = "active"
	CallEnded  CallStatus = "ended"
)

// VideoQuality is the enumerated quality tier a participant can request.
type VideoQuality string

const (
	QualityLow    VideoQuality = "low"
	QualityMedium VideoQuality = "medium"
	QualityHigh   VideoQuality = "high"
)

// ValidQuality reports whether q is one of the known tiers.
func ValidQuality(q string) bool {
	switch VideoQuality(q) {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	}
	return false
}

// Call is a video call bound to one classroom. It is created through the
// REST side and transitions to "ended" either explicitly (end_call) or
// when the last participant disconnects.
type Call struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Status      CallStatus `gorm:"type:text;not null" json:"status"`
	ClassroomID uint       `gorm:"not null;index" json:"classroom_id"`
	CreatedAt   time.Time  `json:"created_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

// CallParticipant is one user's membership in one call, including the
// mutable media state mirrored in the cache. At most one row per
// (call, user) is currently joined (LeftAt == nil); rejoining clears
// LeftAt instead of inserting a duplicate.
type CallParticipant struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	CallID   uint `gorm:"not null;index:idx_call_user" json:"call_id"`
	UserID   uint `gorm:"not null;index:idx_call_user" json:"user_id"`
	Role     Role `gorm:"type:text;not null" json:"role"`

	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`

	MicStatus     bool   `gorm:"default:true" json:"mic_status"`
	CameraStatus  bool   `gorm:"default:true" json:"camera_status"`
	ScreenSharing bool   `gorm:"default:false" json:"screen_sharing"`
	VideoQuality  string `gorm:"default:medium" json:"video_quality"`
}

// ParticipantStatus is the cached projection of a participant's media
// state, keyed by call:{call_id}:participant:{user_id}. The participant
// row stays canonical; this is acceleration only.
type ParticipantStatus struct {
	MicStatus     bool   `json:"mic_status"`
	CameraStatus  bool   `json:"camera_status"`
	ScreenSharing bool   `json:"screen_sharing"`
	VideoQuality  string `json:"video_quality"`
}

// Status returns the cacheable projection of the participant row.
func (p *CallParticipant) Status() ParticipantStatus {
	return ParticipantStatus{
		MicStatus:     p.MicStatus,
		CameraStatus:  p.CameraStatus,
		ScreenSharing: p.ScreenSharing,
		VideoQuality:  p.VideoQuality,
	}
}
