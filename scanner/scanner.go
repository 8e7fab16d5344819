package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"assetConverter/config"
	"assetConverter/task"
)

// Extensions recognized by each scan rule (lowercase, with leading dot).
var (
	backgroundExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".avif": true,
	}
	coverExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
	fontExtensions = map[string]bool{
		".ttf":   true,
		".otf":   true,
		".woff":  true,
		".woff2": true,
	}
)

type Scanner struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewScanner(cfg *config.Config, logger *zap.Logger) *Scanner {
	return &Scanner{cfg: cfg, logger: logger}
}

// ResetTarget destroys and recreates the target directory so no stale
// files from a previous run survive. Callers must verify the source root
// first so a misconfigured run never touches the target.
func ResetTarget(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear target directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}
	return nil
}

// Scan walks the source tree and returns the complete task list. It has
// no filesystem side effects. The source root must exist; a missing
// jpgs/background or fonts subtree just yields no tasks for that rule.
func (s *Scanner) Scan() ([]task.Task, error) {
	if _, err := os.Stat(s.cfg.SourceRoot); err != nil {
		return nil, fmt.Errorf("source root %s not accessible: %w", s.cfg.SourceRoot, err)
	}

	var tasks []task.Task

	bg, err := s.scanBackgrounds()
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, bg...)

	covers, err := s.scanCovers()
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, covers...)

	fonts, err := s.scanFonts()
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, fonts...)

	if err := checkTargetUniqueness(tasks); err != nil {
		return nil, err
	}

	s.logger.Info("Scan complete",
		zap.Int("backgrounds", len(bg)),
		zap.Int("covers", len(covers)),
		zap.Int("fonts", len(fonts)),
	)

	return tasks, nil
}

// scanBackgrounds handles <source>/jpgs/background: AVIF sources pass
// through as copies, everything else is transcoded. Alpha is kept for
// PNG sources only.
func (s *Scanner) scanBackgrounds() ([]task.Task, error) {
	dir := filepath.Join(s.cfg.SourceRoot, "jpgs", "background")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	targetDir := filepath.Join(s.cfg.TargetRoot, "backgrounds")
	var tasks []task.Task
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !backgroundExtensions[ext] {
			continue
		}

		source := filepath.Join(dir, entry.Name())
		if ext == ".avif" {
			tasks = append(tasks, task.Task{
				ID:         uuid.New(),
				Kind:       task.KindCopy,
				Category:   task.CategoryImage,
				SourcePath: source,
				TargetPath: filepath.Join(targetDir, entry.Name()),
			})
			continue
		}

		tasks = append(tasks, task.Task{
			ID:            uuid.New(),
			Kind:          task.KindTranscode,
			Category:      task.CategoryImage,
			SourcePath:    source,
			TargetPath:    filepath.Join(targetDir, replaceExt(entry.Name(), ".avif")),
			Quality:       s.cfg.BackgroundQuality,
			PreserveAlpha: ext == ".png",
		})
	}
	return tasks, nil
}

// scanCovers handles files directly under <source>/jpgs (subdirectories
// excluded). PNG icons get higher quality and keep their alpha channel;
// JPEG covers are flattened.
func (s *Scanner) scanCovers() ([]task.Task, error) {
	dir := filepath.Join(s.cfg.SourceRoot, "jpgs")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	targetDir := filepath.Join(s.cfg.TargetRoot, "covers")
	var tasks []task.Task
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !coverExtensions[ext] {
			continue
		}

		quality := s.cfg.CoverQualityJPEG
		preserveAlpha := false
		if ext == ".png" {
			quality = s.cfg.CoverQualityPNG
			preserveAlpha = true
		}

		tasks = append(tasks, task.Task{
			ID:            uuid.New(),
			Kind:          task.KindTranscode,
			Category:      task.CategoryImage,
			SourcePath:    filepath.Join(dir, entry.Name()),
			TargetPath:    filepath.Join(targetDir, replaceExt(entry.Name(), ".avif")),
			Quality:       quality,
			PreserveAlpha: preserveAlpha,
		})
	}
	return tasks, nil
}

// scanFonts walks <source>/fonts recursively and copies every font file,
// preserving its path relative to the fonts subtree.
func (s *Scanner) scanFonts() ([]task.Task, error) {
	dir := filepath.Join(s.cfg.SourceRoot, "fonts")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	targetDir := filepath.Join(s.cfg.TargetRoot, "fonts")
	var tasks []task.Task
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !fontExtensions[ext] {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		tasks = append(tasks, task.Task{
			ID:         uuid.New(),
			Kind:       task.KindCopy,
			Category:   task.CategoryFont,
			SourcePath: path,
			TargetPath: filepath.Join(targetDir, rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return tasks, nil
}

// checkTargetUniqueness rejects task lists where two tasks resolve to the
// same output file. The target tree is partitioned by task; a collision
// here would mean a silent last-writer-wins race at run time.
func checkTargetUniqueness(tasks []task.Task) error {
	seen := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if prev, ok := seen[t.TargetPath]; ok {
			return fmt.Errorf("target collision: %s and %s both map to %s", prev, t.SourcePath, t.TargetPath)
		}
		seen[t.TargetPath] = t.SourcePath
	}
	return nil
}

func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
