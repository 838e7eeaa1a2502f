package classify

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sharelist/sharelist/internal/repository"
)

// SeedCategories loads the category lookup tables from a CSV file of
// "category,subcategory" rows (header optional, subcategory may be empty)
// and upserts them, so re-running on startup is idempotent.
func SeedCategories(ctx context.Context, path string, repo repository.CategoryRepository, logger *logrus.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open category seed file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows, skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read category seed file: %w", err)
		}

		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" || strings.EqualFold(name, "category") {
			skipped++
			continue
		}

		category, err := repo.UpsertCategory(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
		rows++

		if len(record) > 1 {
			sub := strings.TrimSpace(record[1])
			if sub != "" {
				if _, err := repo.UpsertSubCategory(ctx, sub, category.ID); err != nil {
					return fmt.Errorf("failed to seed sub-category %q: %w", sub, err)
				}
			}
		}
	}

	logger.Infof("Seeded %d category rows (%d skipped)", rows, skipped)
	return nil
}
