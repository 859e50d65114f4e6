package telemetry

import (
	"database/sql"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
)

// OpenDB opens a database/sql handle whose queries are traced. system is the
// semconv db.system attribute, e.g. semconv.DBSystemSqlite.
func OpenDB(driverName, dsn string, system attribute.KeyValue) (*sql.DB, error) {
	return otelsql.Open(driverName, dsn,
		otelsql.WithAttributes(system),
	)
}
