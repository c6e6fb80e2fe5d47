package repository

import "errors"

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrSeatTaken means a claim lost the race: the seat had an occupant
	// at compare-and-set time.
	ErrSeatTaken = errors.New("seat already taken")

	// ErrStale means a compare-and-set missed because the entity is
	// already in a terminal state (hand lowered, turn closed).
	ErrStale = errors.New("entity already in terminal state")
)
