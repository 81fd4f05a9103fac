// Package grants builds the grant directory from the metadata spreadsheet.
package grants

import (
	"context"
	"log"
	"slices"

	"golang.org/x/sync/singleflight"

	"github.com/gitcoinco/grant-claims/internal/apperr"
)

// Source yields the raw values of the directory sheet, header row first.
type Source interface {
	FetchFirstSheet(ctx context.Context) ([][]string, error)
}

// Alerter is told when the directory could not be fetched after retries.
type Alerter interface {
	NotifyDirectoryUnavailable(ctx context.Context, reason string) error
}

// Directory fetches and normalizes the grant list. Nothing is cached:
// concurrent callers share one in-flight fetch, later callers refetch.
type Directory struct {
	source  Source
	alerter Alerter
	group   singleflight.Group
}

func NewDirectory(source Source, alerter Alerter) *Directory {
	return &Directory{source: source, alerter: alerter}
}

// List returns the deduplicated grant rows.
func (d *Directory) List(ctx context.Context) ([]Row, error) {
	ch := d.group.DoChan("directory", func() (any, error) {
		return d.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]Row)), nil
	}
}

func (d *Directory) fetch(ctx context.Context) ([]Row, error) {
	values, err := d.source.FetchFirstSheet(ctx)
	if err != nil {
		log.Printf("grants: fetch directory: %v", err)
		if d.alerter != nil && apperr.HasCode(err, apperr.CodeUnavailable) {
			if aerr := d.alerter.NotifyDirectoryUnavailable(ctx, apperr.MessageOf(err)); aerr != nil {
				log.Printf("grants: alert: %v", aerr)
			}
		}
		return nil, err
	}
	return Normalize(values), nil
}
