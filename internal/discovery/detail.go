package discovery

import (
	"context"
	"errors"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/i18n"
)

// OpenProduct loads a product detail and records the visit in the recently
// viewed list. A failure to record is logged, not surfaced.
func (v *View) OpenProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := v.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			v.notifier.Error(i18n.MsgProductNotFound)
		} else {
			v.notifier.Error(i18n.MsgRequestFailed)
		}
		return nil, err
	}
	if v.recent != nil {
		if _, err := v.recent.PushRecentlyViewed(ctx, p.ID); err != nil {
			v.logger.Printf("WARN: discovery: record recently viewed %s: %v", p.ID, err)
		}
	}
	return p, nil
}

// RecentlyViewed returns the recorded product ids, most recent first.
func (v *View) RecentlyViewed(ctx context.Context) ([]string, error) {
	if v.recent == nil {
		return []string{}, nil
	}
	return v.recent.RecentlyViewed(ctx)
}
