package migration

import (
	"context"
	"fmt"

	"aamigrate/internal/catalog"
	"aamigrate/internal/logger"
	"aamigrate/internal/model"
	"aamigrate/internal/source"
)

// Run extracts the model at path as of from and as of to, then compares them.
// Nothing is returned unless both extractions and the comparison succeed.
func Run(ctx context.Context, src source.Source, path string, from, to source.Revision, cat catalog.Catalog) (*Script, error) {
	ex := model.NewExtractor(src)

	before, err := ex.Extract(ctx, path, from)
	if err != nil {
		return nil, fmt.Errorf("extract %s at %s: %w", path, from, err)
	}
	after, err := ex.Extract(ctx, path, to)
	if err != nil {
		return nil, fmt.Errorf("extract %s at %s: %w", path, to, err)
	}
	logger.Debug("%s: columns %v at %s, %v at %s", after.TableName, before.Names(), from, after.Names(), to)

	d, err := Compare(before, after)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", path, err)
	}
	logger.Info("%s: %d added, %d removed, %d kept (%s)", after.TableName, len(d.Added), len(d.Removed), len(d.Common), d.Mode())
	return Generate(d, cat), nil
}
