// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Dice errors
	CodeInvalidNotation Code = "INVALID_NOTATION"
	CodeInvalidDiceSpec Code = "INVALID_DICE_SPEC"

	// Chronicle errors
	CodeNoActiveScene    Code = "NO_ACTIVE_SCENE"
	CodeSceneEnded       Code = "SCENE_ENDED"
	CodeEventTypeUnknown Code = "EVENT_TYPE_UNKNOWN"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"

	// Tool registry errors
	CodeToolNotFound Code = "TOOL_NOT_FOUND"
	CodeToolInvalid  Code = "TOOL_INVALID"
)
