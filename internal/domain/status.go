package domain

import "strings"

type PlanStatus string

const (
	PlanPending    PlanStatus = "pending"
	PlanInProgress PlanStatus = "in_progress"
	PlanCompleted  PlanStatus = "completed"
	PlanExpired    PlanStatus = "expired"
	PlanCancelled  PlanStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s PlanStatus) Terminal() bool {
	return s == PlanCompleted || s == PlanExpired || s == PlanCancelled
}

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentExpired InstallmentStatus = "expired"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationExpired   ReservationStatus = "expired"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Terminal() bool {
	return s != ReservationActive
}

var planStatusLabels = map[PlanStatus]string{
	PlanPending:    "Pending",
	PlanInProgress: "In progress",
	PlanCompleted:  "Completed",
	PlanExpired:    "Expired",
	PlanCancelled:  "Cancelled",
}

// PlanStatusLabel returns a human-readable label for a plan status.
func PlanStatusLabel(status PlanStatus) string {
	if label, ok := planStatusLabels[status]; ok {
		return label
	}
	return "Unknown"
}

// ParsePlanStatus parses a plan status (case-insensitive).
func ParsePlanStatus(raw string) (PlanStatus, bool) {
	status := PlanStatus(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := planStatusLabels[status]
	return status, ok
}

// ParseReservationStatus parses a reservation status (case-insensitive).
func ParseReservationStatus(raw string) (ReservationStatus, bool) {
	switch status := ReservationStatus(strings.ToLower(strings.TrimSpace(raw))); status {
	case ReservationActive, ReservationCompleted, ReservationExpired, ReservationCancelled:
		return status, true
	}
	return "", false
}
