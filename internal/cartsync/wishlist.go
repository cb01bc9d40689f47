package cartsync

import (
	"context"

	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/i18n"
)

// InWishlist reports local wishlist membership.
func (s *Sync) InWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.wishlist[productID]
	return ok
}

// ToggleWishlist flips membership of productID and returns the new state.
// On failure the wishlist is refetched and the returned state is whatever the
// server holds.
func (s *Sync) ToggleWishlist(ctx context.Context, productID string) (bool, error) {
	if err := s.requireAuth(); err != nil {
		return s.InWishlist(productID), err
	}
	key := "wish:" + productID
	if err := s.acquire(key); err != nil {
		return s.InWishlist(productID), err
	}
	defer s.release(key)

	s.mu.Lock()
	before := s.wishlistLocked()
	_, was := s.wishlist[productID]
	if was {
		delete(s.wishlist, productID)
		s.order = without(s.order, productID)
	} else {
		s.wishlist[productID] = struct{}{}
		s.order = append(s.order, productID)
	}
	optimistic := s.wishlistLocked()
	s.mu.Unlock()
	s.publishWishlist(optimistic)

	var (
		wish *domain.Wishlist
		err  error
	)
	if was {
		wish, err = s.api.RemoveFromWishlist(ctx, productID)
	} else {
		wish, err = s.api.AddToWishlist(ctx, productID)
	}
	if err != nil {
		s.logger.Printf("WARN: cartsync: toggle wishlist %s failed: %v", productID, err)
		s.notifier.Error(i18n.MsgWishlistFailed)
		s.refetchWishlist(ctx, before)
		return s.InWishlist(productID), err
	}
	s.adoptWishlist(*wish)
	if was {
		s.notifier.Success(i18n.MsgWishlistRemoved)
	} else {
		s.notifier.Success(i18n.MsgWishlistAdded)
	}
	return !was, nil
}

func (s *Sync) refetchWishlist(ctx context.Context, fallback domain.Wishlist) {
	wish, err := s.api.GetWishlist(ctx)
	if err != nil {
		s.logger.Printf("WARN: cartsync: refetch wishlist failed: %v", err)
		s.adoptWishlist(fallback)
		return
	}
	s.adoptWishlist(*wish)
}

func (s *Sync) adoptWishlist(w domain.Wishlist) {
	s.mu.Lock()
	s.wishlist = make(map[string]struct{}, len(w.ProductIDs))
	s.order = make([]string, 0, len(w.ProductIDs))
	for _, id := range w.ProductIDs {
		if _, dup := s.wishlist[id]; dup {
			continue
		}
		s.wishlist[id] = struct{}{}
		s.order = append(s.order, id)
	}
	snap := s.wishlistLocked()
	s.mu.Unlock()
	s.publishWishlist(snap)
}

func (s *Sync) publishWishlist(w domain.Wishlist) {
	for _, o := range s.observers {
		o.SetWishlist(w)
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
