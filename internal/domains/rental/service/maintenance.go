package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bookModel "bookrental-backend/internal/domains/book/model"
	"bookrental-backend/internal/domains/rental/model"
	"bookrental-backend/internal/shared/utils"
)

// SweepOverdue refreshes the stored status column. Reads never depend on it.
func (s *rentalService) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.SweepOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateStatistics(ctx)
	}
	log.Info().Int64("updated", n).Msg("Overdue sweep finished")
	return n, nil
}

// ReconcileInventory compares copies out (total - available) with the number
// of unreturned rentals for every book. The two counts are read without a
// shared snapshot, so a create or return in between shows up as a one-off
// difference. Only a book that disagrees by the same amount on two
// consecutive runs is reported. It never rewrites counters.
func (s *rentalService) ReconcileInventory(ctx context.Context) ([]model.InventoryMismatch, error) {
	candidates, seen, err := s.inventoryDifferences(ctx)
	if err != nil {
		return nil, err
	}

	s.reconcileMu.Lock()
	previous := s.suspects
	s.suspects = make(map[uuid.UUID]int, len(candidates))
	confirmed := make([]model.InventoryMismatch, 0)
	for _, m := range candidates {
		drift := m.CopiesOut - m.UnreturnedRentals
		s.suspects[m.BookID] = drift
		if prev, ok := previous[m.BookID]; ok && prev == drift {
			confirmed = append(confirmed, m)
			continue
		}
		log.Warn().
			Str("book_id", m.BookID.String()).
			Int("copies_out", m.CopiesOut).
			Int("unreturned_rentals", m.UnreturnedRentals).
			Msg("[Reconcile] inventory difference, rechecking next run")
	}
	s.reconcileMu.Unlock()

	for _, m := range confirmed {
		log.Error().
			Str("book_id", m.BookID.String()).
			Int("copies_out", m.CopiesOut).
			Int("unreturned_rentals", m.UnreturnedRentals).
			Msg("[Reconcile] inventory mismatch")
	}
	log.Info().Int("books", seen).Int("mismatches", len(confirmed)).Msg("Inventory reconciliation finished")
	return confirmed, nil
}

// inventoryDifferences lists every book whose counters disagree right now
func (s *rentalService) inventoryDifferences(ctx context.Context) ([]model.InventoryMismatch, int, error) {
	open, err := s.repo.CountUnreturnedByBook(ctx)
	if err != nil {
		return nil, 0, err
	}

	filter := bookModel.BookFilter{IncludeInactive: true, Page: 1, Limit: utils.MaxLimit}
	mismatches := make([]model.InventoryMismatch, 0)
	seen := 0

	for {
		books, total, err := s.books.ListBooks(ctx, filter)
		if err != nil {
			return nil, 0, fmt.Errorf("list books: %w", err)
		}

		for i := range books {
			b := &books[i]
			out, rented := b.RentedCopies(), open[b.ID]
			delete(open, b.ID)
			if out == rented {
				continue
			}
			mismatches = append(mismatches, model.InventoryMismatch{
				BookID:            b.ID,
				Title:             b.Title,
				CopiesOut:         out,
				UnreturnedRentals: rented,
			})
		}

		seen += len(books)
		if len(books) == 0 || seen >= total {
			break
		}
		filter.Page++
	}

	// rentals pointing at books that no longer list
	for bookID, rented := range open {
		mismatches = append(mismatches, model.InventoryMismatch{BookID: bookID, UnreturnedRentals: rented})
	}

	return mismatches, seen, nil
}
