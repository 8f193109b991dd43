package domain

// MigrationResult describes what Migrate found in the stored version marker.
type MigrationResult struct {
	Previous string
	Current  string
	FirstRun bool
	Migrated bool
}
