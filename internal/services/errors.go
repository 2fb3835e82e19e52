package services

// Service errors
var (
	ErrInvalidLimit          = &ServiceError{Message: "limit must be between 1 and the configured maximum"}
	ErrInvalidClassification = &ServiceError{Message: "classification must be 0 (early), 1 (perfect) or 2 (late)"}
	ErrMissingTiming         = &ServiceError{Message: "classification or both ts_release and ts_apex are required"}
	ErrFeedURLNotConfigured  = &ServiceError{Message: "feed URL not configured"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
