package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"coachhub/internal/adapters/drafts"
	"coachhub/internal/adapters/identity"
	"coachhub/internal/adapters/storage"
	bookingStore "coachhub/internal/adapters/storage/booking"
	cityStore "coachhub/internal/adapters/storage/city"
	coachStore "coachhub/internal/adapters/storage/coach"
	serviceStore "coachhub/internal/adapters/storage/coachservice"
	courtStore "coachhub/internal/adapters/storage/court"
	sportStore "coachhub/internal/adapters/storage/sport"
	userStore "coachhub/internal/adapters/storage/user"
	"coachhub/internal/application/listutil"
	"coachhub/internal/application/orchestrators"
	"coachhub/internal/application/projections"
	"coachhub/internal/domain/account"
	"coachhub/internal/domain/availability"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/city"
	"coachhub/internal/domain/coach"
	"coachhub/internal/domain/coachservice"
	"coachhub/internal/domain/court"
	"coachhub/internal/domain/draft"
	"coachhub/internal/domain/review"
	"coachhub/internal/domain/sport"
	"coachhub/internal/domain/timeoff"
	"coachhub/internal/domain/timeslot"
	"coachhub/internal/domain/user"
)

// errBadRequest marks malformed bodies and query strings.
var errBadRequest = errors.New("malformed request")

var unauthorized = []error{
	orchestrators.ErrUnauthenticated,
	identity.ErrInvalidCredentials,
	identity.ErrInvalidAccessToken,
}

var forbidden = []error{
	orchestrators.ErrForbidden,
	projections.ErrForbidden,
	booking.ErrNotAllowed,
	identity.ErrEmailNotConfirmed,
	identity.ErrAccountLocked,
}

var notFound = []error{
	storage.ErrNotFound,
	drafts.ErrNotFound,
	identity.ErrUserNotFound,
	coach.ErrProfileNotPublished,
}

var conflicts = []error{
	bookingStore.ErrSlotConflict,
	bookingStore.ErrCourtConflict,
	bookingStore.ErrStaleStatus,
	review.ErrAlreadyReviewed,
	orchestrators.ErrEmailAlreadyExists,
	orchestrators.ErrServiceHasBookings,
	orchestrators.ErrTerminalEntry,
	identity.ErrUserExists,
	identity.ErrAlreadyConfirmed,
	userStore.ErrEmailTaken,
	coachStore.ErrExists,
	serviceStore.ErrReferenced,
	sportStore.ErrDuplicate,
	sportStore.ErrInUse,
	cityStore.ErrDuplicate,
	cityStore.ErrInUse,
	courtStore.ErrInUse,
}

// badRequests are the validation failures whose message is safe to show.
var badRequests = []error{
	errBadRequest,
	listutil.ErrInvalidDateRange,
	orchestrators.ErrSignupRole,
	orchestrators.ErrUnknownBookingAction,
	orchestrators.ErrServiceNotOffered,
	orchestrators.ErrOutsideAvailability,
	orchestrators.ErrCoachUnavailable,
	orchestrators.ErrCourtSport,
	projections.ErrServiceNotOffered,
	identity.ErrTokenInvalid,
	identity.ErrTokenExpired,
	account.ErrInvalidEmail, account.ErrEmptyEmail, account.ErrEmailTooLong,
	account.ErrEmptyPassword, account.ErrPasswordTooShort,
	user.ErrEmptyID, user.ErrEmptyFullName, user.ErrNameTooLong, user.ErrInvalidRole,
	user.ErrPhoneTooLong, user.ErrInvalidPhone,
	coach.ErrEmptyDisplayName, coach.ErrDisplayNameTooLong, coach.ErrBioTooLong,
	coach.ErrNegativeRate, coach.ErrInvalidExperience, coach.ErrDuplicateSport,
	coach.ErrInvalidAvatarURL, coach.ErrIncompleteProfile,
	coachservice.ErrEmptySportID, coachservice.ErrEmptyTitle, coachservice.ErrTitleTooLong,
	coachservice.ErrDescriptionTooLong, coachservice.ErrInvalidDuration,
	coachservice.ErrNegativePrice, coachservice.ErrInactive,
	sport.ErrEmptyName, sport.ErrNameTooLong,
	city.ErrEmptyName, city.ErrEmptyCountry,
	court.ErrEmptyName, court.ErrNameTooLong, court.ErrAddressTooLong,
	court.ErrEmptyCityID, court.ErrEmptySportID,
	availability.ErrInvalidDay, availability.ErrOverlapping, availability.ErrTooManyWindows,
	availability.ErrOutsideSchedule,
	timeoff.ErrInvalidDates, timeoff.ErrEmptyStartDate, timeoff.ErrEmptyEndDate,
	timeoff.ErrReasonTooLong, timeoff.ErrTooLong,
	booking.ErrEmptyServiceID, booking.ErrSelfBooking, booking.ErrInvalidStatus,
	booking.ErrNotesTooLong, booking.ErrInvalidTransition, booking.ErrAlreadyStarted,
	booking.ErrNotFinished, booking.ErrInPast,
	review.ErrInvalidRating, review.ErrCommentTooLong, review.ErrNotReviewable,
	draft.ErrInvalidStep, draft.ErrNoCoach,
	timeslot.ErrInvalidClock, timeslot.ErrInvalidDate, timeslot.ErrEmptyRange,
	timeslot.ErrCrossesMidnight,
}

func matchAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor classifies err. Unknown errors are internal.
func statusFor(err error) int {
	switch {
	case matchAny(err, unauthorized):
		return http.StatusUnauthorized
	case matchAny(err, forbidden):
		return http.StatusForbidden
	case matchAny(err, notFound):
		return http.StatusNotFound
	case matchAny(err, conflicts):
		return http.StatusConflict
	case errors.Is(err, identity.ErrUnavailable):
		return http.StatusServiceUnavailable
	case matchAny(err, badRequests):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError answers with the status statusFor picks and err's message,
// except for internal errors which are logged and answered generically.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		internalError(w, err)
	case http.StatusNotFound:
		http.Error(w, "not found", status)
	case http.StatusServiceUnavailable:
		slog.Warn("dependency_unavailable", "error", err.Error())
		http.Error(w, "service temporarily unavailable", status)
	default:
		http.Error(w, err.Error(), status)
	}
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write_json_failed", "error", err)
	}
}

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
