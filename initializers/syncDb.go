package initializers

import (
	"log/slog"

	"github.com/Kariqs/goutam-store/store"
	"gorm.io/gorm"
)

func SyncDatabase(db *gorm.DB) error {
	if err := store.Migrate(db); err != nil {
		return err
	}
	slog.Debug("Database synced successfully.")
	return nil
}
