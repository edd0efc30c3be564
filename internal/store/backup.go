package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kayz/muse/internal/logger"
)

// Backup archives the published image and post metadata under dir. Each
// backup gets a fresh uuid so reruns on the same day never collide.
func Backup(dir string, rec PostRecord, text string, image []byte) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	id := uuid.New().String()
	stamp := time.Now().UTC().Format("2006-01-02")
	base := fmt.Sprintf("%s-%s", stamp, id)

	meta := struct {
		PostRecord
		Text string `json:"text"`
	}{PostRecord: rec, Text: text}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, base+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write backup metadata: %w", err)
	}

	if len(image) > 0 {
		if err := os.WriteFile(filepath.Join(dir, base+".jpg"), image, 0644); err != nil {
			return fmt.Errorf("failed to write backup image: %w", err)
		}
	}

	logger.Debug("backed up post as %s", base)
	return nil
}
