package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/easyreserv/attendance-backend-go/internal/domain/attendance"
)

const (
	// Elapsed durations above this are treated as data corruption (clock
	// skew, missed checkout) rather than a real shift.
	anomalyThresholdHours = 16.0
	anomalyFallbackHours  = 6.0
)

// WorkedHoursResult is the output of the worked-hours calculator.
type WorkedHoursResult struct {
	WorkedHours   float64
	OvertimeHours float64
	AnomalyNotice *string
}

// ComputeWorkedHours turns a check-in/check-out pair and the planned hours
// into worked and overtime hours. Pure; no persistence involved.
func ComputeWorkedHours(checkIn, checkOut time.Time, plannedHours float64) (WorkedHoursResult, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return WorkedHoursResult{}, attendance.NewError(
			attendance.CodeInvalidDateFormat,
			"check-in and check-out must be valid instants",
			fmt.Sprintf("checkIn=%v checkOut=%v", checkIn, checkOut),
		)
	}

	// Overnight shifts come in with checkout before checkin.
	if checkOut.Before(checkIn) {
		checkOut = checkOut.Add(24 * time.Hour)
	}

	rawHours := checkOut.Sub(checkIn).Hours()

	// Sanitize rather than reject: the member still gets checked out, the
	// record just carries a notice for auditors.
	if rawHours > anomalyThresholdHours {
		notice := fmt.Sprintf(
			"computed duration of %.2f hours exceeds the %.0f hour limit; worked hours capped to %.0f",
			rawHours, anomalyThresholdHours, anomalyFallbackHours,
		)
		return WorkedHoursResult{
			WorkedHours:   anomalyFallbackHours,
			OvertimeHours: 0,
			AnomalyNotice: &notice,
		}, nil
	}

	// Unplanned schedule: every elapsed hour counts as worked time.
	if plannedHours == 0 {
		return WorkedHoursResult{WorkedHours: rawHours}, nil
	}

	return WorkedHoursResult{
		WorkedHours:   math.Min(rawHours, plannedHours),
		OvertimeHours: math.Max(0, rawHours-plannedHours),
	}, nil
}
