package health

import (
	"context"
	"database/sql"
	"time"
)

// DBChecker pings the relational store with a short timeout.
func DBChecker(db *sql.DB) Checker {
	return func(ctx context.Context) Status {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			return Status{Name: "database", Healthy: false, Detail: err.Error()}
		}
		return Status{Name: "database", Healthy: true}
	}
}

// ArtifactsChecker reports the versions of the loaded scoring artifacts.
// Artifacts are immutable after startup, so a loaded scorer is always
// healthy; the detail surfaces which versions are serving.
func ArtifactsChecker(modelVersion, scalerVersion string) Checker {
	return func(_ context.Context) Status {
		return Status{
			Name:    "artifacts",
			Healthy: true,
			Detail:  "model=" + modelVersion + " scaler=" + scalerVersion,
		}
	}
}
