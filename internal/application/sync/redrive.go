package sync

import "context"

// ProcessPending re-runs delivery for up to maxCount records whose last send
// did not succeed, oldest created first. Records are processed sequentially
// and independently: one failure never aborts the sweep.
func (uc *NomenclatureUseCase) ProcessPending(ctx context.Context, maxCount int) (succeeded, failed int, err error) {
	if maxCount <= 0 {
		maxCount = 10
	}

	pending, err := uc.nomRepo.ListUnsent(ctx, maxCount)
	if err != nil {
		return 0, 0, err
	}

	for _, n := range pending {
		products, perr := uc.nomRepo.GetProducts(ctx, n.ID)
		if perr != nil {
			uc.log.Error().Str("external_id", n.ExternalID).Err(perr).Msg("redrive: failed to load products")
			failed++
			continue
		}
		if uc.Deliver(ctx, n, products) {
			succeeded++
		} else {
			failed++
		}
	}

	uc.log.Info().Int("succeeded", succeeded).Int("failed", failed).Msg("redrive sweep finished")
	return succeeded, failed, nil
}
