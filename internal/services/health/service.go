package health

// Service encapsulates health-related checks.
type Service struct{}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{}
}

// Status returns the health payload.
func (s *Service) Status() map[string]any {
	return map[string]any{
		"ok":      true,
		"service": "bookstudio-backend",
		"version": "v1",
	}
}
