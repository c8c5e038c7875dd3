package service

import "errors"

var (
	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropoffLocation is returned when dropoff coordinates are invalid.
	ErrInvalidDropoffLocation = errors.New("invalid dropoff location")

	// ErrInvalidDistance is returned when a distance is negative.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidAmount is returned when a wallet amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPrice is returned when a price is negative.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInsufficientFunds is returned when a driver with a non-positive
	// wallet balance tries to accept a trip. Not retryable without a top-up.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrTripTaken is returned when accept loses the race: the trip is no
	// longer pending. Safe to retry after re-reading trip state.
	ErrTripTaken = errors.New("trip already taken")

	// ErrTripNotAccepted is returned when start finds the trip outside the
	// accepted state.
	ErrTripNotAccepted = errors.New("trip not in accepted state")

	// ErrTripNotInProgress is returned when complete finds the trip outside
	// the in-progress state, including a second completion attempt.
	ErrTripNotInProgress = errors.New("trip not in progress")

	// ErrTripNotCancellable is returned when cancel finds the trip already
	// started, completed or cancelled.
	ErrTripNotCancellable = errors.New("trip cannot be cancelled in current state")

	// ErrInvalidRuleUpdate is returned when a pricing rule update carries
	// negative rates or an empty vehicle type.
	ErrInvalidRuleUpdate = errors.New("invalid pricing rule")
)
