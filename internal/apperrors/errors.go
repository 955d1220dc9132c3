package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidTransition indicates a lifecycle operation attempted on a budget
// in the wrong status (e.g. activating a CLOSED budget).
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrMissingPrerequisite indicates an activation attempt on a budget that has
// no segment values or no budget amounts yet.
var ErrMissingPrerequisite = errors.New("missing activation prerequisite")

// ErrInsufficientFunds indicates a consumption attempt beyond the available budget.
var ErrInsufficientFunds = errors.New("insufficient budget")

// ErrOverRelease indicates a release or reversal amount larger than the
// counter being decremented.
var ErrOverRelease = errors.New("release exceeds consumed amount")

// ErrInactiveBudget indicates consumption attempted against an inactive budget.
var ErrInactiveBudget = errors.New("budget is not active")

// ErrImportValidation indicates a rejected bulk import batch or row.
var ErrImportValidation = errors.New("import validation error")
