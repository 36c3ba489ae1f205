package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/trungnq/frontdesk/internal/config"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <dir>",
	Short: "Enroll customers from a directory of face photos",
	Long: `Enroll customers from a directory tree. Each subdirectory holds the face
photos of one person; photos are run through the recognition pipeline, so a
person already known to the store is matched instead of duplicated.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func readPersonImages(dir string) ([][]byte, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var images [][]byte
	var refs []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		images = append(images, data)
		refs = append(refs, path)
	}
	return images, refs, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := buildService(ctx, cfg, store)
	if err != nil {
		return err
	}

	root := args[0]
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("reading %s: %w", root, err)
	}

	var persons []string
	for _, entry := range entries {
		if entry.IsDir() {
			persons = append(persons, entry.Name())
		}
	}
	sort.Strings(persons)

	if len(persons) == 0 {
		return fmt.Errorf("no person directories found in %s", root)
	}

	bar := progressbar.NewOptions(len(persons),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("persons"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var created, matched, failed int
	for _, person := range persons {
		images, refs, err := readPersonImages(filepath.Join(root, person))
		if err != nil {
			return err
		}

		result, err := svc.Recognize(ctx, images, refs)
		if err != nil {
			failed++
			fmt.Printf("\n%s: %v\n", person, err)
			_ = bar.Add(1)
			continue
		}

		if result.Created {
			created++
		} else {
			matched++
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\nEnrolled %d new, matched %d existing, %d failed\n", created, matched, failed)
	return nil
}
