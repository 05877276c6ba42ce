package telemetry

import (
	"fmt"

	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// InstrumentDB registers the otelgorm plugin so every query becomes a child
// span of the calling service span. Query variables are never attached.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(db.Dialector.Name()),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("failed to register otelgorm: %w", err)
	}
	return nil
}
