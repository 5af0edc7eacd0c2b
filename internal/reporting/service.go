// internal/reporting/service.go
package reporting

import "context"

// Service defines the interface for the patron reporting service.
type Service interface {
	StatusReport(ctx context.Context, patronID string) (*PatronReport, error)
}
