package services

import (
	"errors"

	"github.com/teamaptiv/volunteer-hub/pkg/core/ledger"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
)

// Operation names a request-surface operation. Also used as a metrics label.
type Operation string

const (
	OpCreateEvent     Operation = "create_event"
	OpCreateSeries    Operation = "create_event_series"
	OpReserveSlots    Operation = "reserve_slots"
	OpCancelSlots     Operation = "cancel_slots"
	OpDonate          Operation = "donate"
	OpDonateToOrg     Operation = "donate_org"
	OpCancelEvent     Operation = "cancel_event"
	OpRescheduleEvent Operation = "reschedule_event"
	OpRegisterUser    Operation = "register_user"
	OpRegisterAdmin   Operation = "register_admin"
	OpDeactivateUser  Operation = "deactivate_user"
	OpActivateUser    Operation = "activate_user"
	OpViewProfile     Operation = "view_profile"
	OpViewEvents      Operation = "view_events"
	OpEnsureOrg       Operation = "ensure_org"
)

// Notification keys shown to users
const (
	KeySuccessCreated              = "successCreated"
	KeyFailureNotCreated           = "failureNotCreated"
	KeySuccessCancelled            = "successCancelled"
	KeySuccessVolunteeredOrDonated = "successVolunteeredOrDonated"
	KeyAlreadyVolunteered          = "alreadyVolunteered"
	KeyPermissionDenied            = "permissionDenied"
	KeyThanksForDonation           = "thanksForDonation"
	KeyAlreadyCreated              = "alreadyCreated"
	KeyNotFound                    = "notFound"
	KeyInvalidInput                = "invalidInput"
	KeyTryAgain                    = "tryAgain"
)

// Notification is a user-facing message keyed for the presentation layer
type Notification struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

var successNotifications = map[Operation]Notification{
	OpCreateEvent:     {KeySuccessCreated, "Event created"},
	OpCreateSeries:    {KeySuccessCreated, "Events created"},
	OpReserveSlots:    {KeySuccessVolunteeredOrDonated, "You have signed up for the event timeslot(s)"},
	OpCancelSlots:     {KeySuccessCancelled, "You have cancelled your time(s)."},
	OpDonate:          {KeySuccessVolunteeredOrDonated, "Thank you for your donation"},
	OpDonateToOrg:     {KeyThanksForDonation, "Thank you for your donation!"},
	OpCancelEvent:     {KeySuccessCancelled, "You have cancelled the event."},
	OpRescheduleEvent: {KeySuccessCancelled, "You have rescheduled the event."},
	OpRegisterUser:    {KeySuccessCreated, "Account created"},
	OpRegisterAdmin:   {KeySuccessCreated, "Admin account created"},
	OpDeactivateUser:  {KeySuccessCancelled, "You have deactivated the user account."},
	OpActivateUser:    {KeySuccessCancelled, "You have activated the user account."},
	OpEnsureOrg:       {KeySuccessCreated, "Organisation saved"},
}

// NotificationFor returns the notification to show after op finished with err.
// A nil err gives the operation's success message.
func NotificationFor(op Operation, err error) Notification {
	if err == nil {
		if n, ok := successNotifications[op]; ok {
			return n
		}
		return Notification{}
	}

	creating := op == OpCreateEvent || op == OpCreateSeries

	switch {
	case errors.Is(err, ErrAccountInactive):
		return Notification{KeyAlreadyCreated, "Your account has been deactivated. Contact admin for assistance"}
	case errors.Is(err, ErrEventInactive):
		return Notification{KeyPermissionDenied, "This event has been cancelled."}
	case errors.Is(err, model.ErrPermissionDenied):
		return Notification{KeyPermissionDenied, "You cannot access that page"}
	case errors.Is(err, model.ErrNoSelection) && op == OpCancelSlots:
		return Notification{KeyPermissionDenied, "Please select at least one checkbox"}
	case errors.Is(err, model.ErrNoSelection):
		return Notification{KeyAlreadyVolunteered, "Please select at least one checkbox"}
	case errors.Is(err, model.ErrConflict):
		return Notification{KeyAlreadyVolunteered, "Cannot sign up. You have a time conflict with another event."}
	case errors.Is(err, model.ErrAlreadyExists) && (op == OpRegisterUser || op == OpRegisterAdmin):
		return Notification{KeyAlreadyCreated, "Cannot use that account"}
	case errors.Is(err, model.ErrConcurrentUpdate):
		return Notification{KeyTryAgain, "Someone else changed this at the same time. Please try again."}
	case creating:
		return Notification{KeyFailureNotCreated, "Failed to create event"}
	case errors.Is(err, ledger.ErrSlotUnavailable):
		return Notification{KeyNotFound, "That time slot is no longer available."}
	case errors.Is(err, model.ErrNotFound):
		return Notification{KeyNotFound, "That could not be found."}
	case errors.Is(err, model.ErrFormat):
		return Notification{KeyInvalidInput, "Please check the details you entered."}
	default:
		return Notification{KeyTryAgain, "Something went wrong. Please try again."}
	}
}
