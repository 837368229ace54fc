package models

import "time"

type LeadStatus string

const (
	StatusPending    LeadStatus = "PENDING"
	StatusInProgress LeadStatus = "IN_PROGRESS"
	StatusDone       LeadStatus = "DONE"
	StatusFailed     LeadStatus = "FAILED"
)

const (
	ResponseInterested    = "INTERESTED"
	ResponseNotInterested = "NOT_INTERESTED"
	ResponseNoInput       = "NO_INPUT"
	ResponseCallFailed    = "CALL_FAILED"
	ResponseNoAnswerPref  = "NO_ANSWER_"
)

type Lead struct {
	ID       string     `json:"id"`
	Phone    string     `json:"phone"`
	Project  string     `json:"project"`
	Language string     `json:"language"`
	Status   LeadStatus `json:"status"`
	Response string     `json:"response"`
}

type LeadUpdate struct {
	ID       string     `json:"id"`
	Status   LeadStatus `json:"status"`
	Response string     `json:"response"`
}

// CallEvent is one journal row: a provider callback and what was decided for it.
type CallEvent struct {
	ID         int64      `json:"id"`
	LeadID     string     `json:"lead_id"`
	CallSID    string     `json:"call_sid"`
	Kind       string     `json:"kind"`
	RawStatus  string     `json:"raw_status,omitempty"`
	Duration   int        `json:"duration"`
	Digits     string     `json:"digits,omitempty"`
	Speech     string     `json:"speech,omitempty"`
	Status     LeadStatus `json:"status,omitempty"`
	Response   string     `json:"response,omitempty"`
	Applied    bool       `json:"applied"`
	ReceivedAt time.Time  `json:"received_at"`
}
