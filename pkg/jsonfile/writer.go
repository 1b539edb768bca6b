// Package jsonfile writes pretty-printed JSON documents to disk, with an
// atomic-publish variant that never lets an external reader observe a
// truncated file.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
)

// Write creates or truncates path and writes a pretty-printed JSON encoding
// of value. It offers no atomicity beyond the filesystem's own
// create-then-write behavior.
func Write(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Update publishes a new version of path such that an external reader
// opening path at any instant observes either the previous committed
// content or the new committed content, never a partial write.
//
// Protocol:
//  1. If path exists, rename it to path+".old".
//  2. Write the new content to path via Write.
//  3. On success, remove path+".old".
//  4. On failure of step 2, rename path+".old" back to path (rollback) and
//     return the error.
func Update(path string, value interface{}) error {
	oldPath := path + ".old"

	hadPrevious := false
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, oldPath); err != nil {
			return fmt.Errorf("rename %s to %s: %w", path, oldPath, err)
		}
		hadPrevious = true
	}

	if err := Write(path, value); err != nil {
		if hadPrevious {
			if rollbackErr := os.Rename(oldPath, path); rollbackErr != nil {
				return fmt.Errorf("write %s failed (%v) and rollback from %s failed: %w", path, err, oldPath, rollbackErr)
			}
		}
		return fmt.Errorf("update %s: %w", path, err)
	}

	if hadPrevious {
		if err := os.Remove(oldPath); err != nil {
			return fmt.Errorf("remove sidecar %s: %w", oldPath, err)
		}
	}
	return nil
}
