package mux

import (
	"fmt"
	"os"
	"path/filepath"

	"kani/internal/media"
)

// Intermediates lists all temporary files a plan produced: the raw
// video stream and the subtitle scripts. Output files are never
// included.
func Intermediates(plan media.MuxPlan) []string {
	files := []string{plan.VideoFile}
	for _, sub := range plan.Subtitles {
		files = append(files, sub.File)
	}
	return files
}

// Cleanup removes the intermediate files of a plan. With keep set the
// files are moved into trashDir instead of being deleted.
func Cleanup(plan media.MuxPlan, keep bool, trashDir string) error {
	for _, file := range Intermediates(plan) {
		if file == "" {
			continue
		}
		if !keep {
			if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %s: %w", file, err)
			}
			continue
		}
		if err := os.MkdirAll(trashDir, 0o755); err != nil {
			return fmt.Errorf("creating trash dir: %w", err)
		}
		dest := filepath.Join(trashDir, filepath.Base(file))
		if err := os.Rename(file, dest); err != nil {
			return fmt.Errorf("moving %s to trash: %w", file, err)
		}
	}
	return nil
}
