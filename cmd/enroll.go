package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jjaoguedes/facegate/internal/access"
	"github.com/jjaoguedes/facegate/internal/actuator"
	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/extractor"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [photo]",
	Short: "Enroll identities from reference photos",
	Long: `Enroll identities into the access controller.

Single enrollment takes a photo path and --name:
  facegate enroll --name "Joao Silva" joao.jpg

Bulk enrollment reads every image in a directory, using each file name
(without extension) as the subject name:
  facegate enroll --dir ./photos`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Subject name for single enrollment")
	enrollCmd.Flags().String("dir", "", "Directory of reference photos for bulk enrollment")
}

// imageExtensions are the file types considered during bulk enrollment.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	dir := mustGetString(cmd, "dir")

	if dir == "" && len(args) != 1 {
		return errors.New("either a photo path with --name or --dir is required")
	}

	cfg := config.Load()
	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ext := extractor.NewClient(cfg.Extractor.URL, cfg.Extractor.Timeout)
	service := access.NewService(store, ext, actuator.Noop{}, cfg)

	if dir != "" {
		return enrollDirectory(ctx, service, dir)
	}

	if name == "" {
		return errors.New("--name is required for single enrollment")
	}
	return enrollFile(ctx, service, name, args[0], true)
}

// enrollFile enrolls one subject from one photo.
func enrollFile(ctx context.Context, service *access.Service, name, path string, verbose bool) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	identity, err := service.Enroll(ctx, name, image)
	if err != nil {
		return fmt.Errorf("enrolling %q: %w", name, err)
	}

	if verbose {
		fmt.Printf("Enrolled %q (id %d)\n", identity.Name, identity.ID)
	}
	return nil
}

// enrollDirectory bulk-enrolls every image in dir, one subject per file.
func enrollDirectory(ctx context.Context, service *access.Service, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var photos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			photos = append(photos, entry.Name())
		}
	}
	if len(photos) == 0 {
		fmt.Println("No photos found.")
		return nil
	}

	fmt.Printf("Found %d photos to enroll\n\n", len(photos))
	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var failed []string
	for _, photo := range photos {
		name := strings.TrimSuffix(photo, filepath.Ext(photo))
		if err := enrollFile(ctx, service, name, filepath.Join(dir, photo), false); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", photo, err))
		}
		bar.Add(1)
	}
	fmt.Println()

	if len(failed) > 0 {
		fmt.Printf("%d enrollments failed:\n", len(failed))
		for _, failure := range failed {
			fmt.Printf("  %s\n", failure)
		}
	}
	fmt.Printf("Enrolled %d of %d photos\n", len(photos)-len(failed), len(photos))
	return nil
}
