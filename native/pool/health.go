package pool

import (
	"math/big"

	"blendpool/fixedpoint"
	"blendpool/oracle"
)

// HealthResult is the outcome of a health-factor evaluation (spec.md §4.4).
type HealthResult struct {
	CollateralValue *big.Int
	LiabilityValue  *big.Int
	Solvent         bool
	BorrowHealthy   bool
}

// ReserveView is the minimal read surface the health calculator needs: the
// per-index reserve state and its asset symbol for oracle lookups.
type ReserveView interface {
	Get(index uint32) (*Reserve, string, bool)
}

// EvaluateHealth computes coll_val/liab_val and the solvency/borrow-healthy
// predicates described in spec.md §4.4, using oracle prices no older than
// maxAgeSeconds relative to now.
func EvaluateHealth(positions *Positions, reserves ReserveView, px oracle.Oracle, borrowBufferBps uint64, minCollateral *big.Int, maxAgeSeconds, now uint64) (HealthResult, error) {
	collVal := big.NewInt(0)
	for index, shares := range positions.Collateral {
		reserve, asset, ok := reserves.Get(index)
		if !ok {
			return HealthResult{}, ErrReserveNotFound
		}
		price, err := freshPrice(px, asset, maxAgeSeconds, now)
		if err != nil {
			return HealthResult{}, err
		}
		assetAmount := fixedpoint.ToAssetFromB(shares, reserve.BRate)
		effective := fixedpoint.EffectiveCollateral(assetAmount, bpsToScalar7(reserve.Config.CFactorBps))
		contribution := new(big.Int).Mul(price.Value, effective)
		collVal.Add(collVal, contribution)
	}

	liabVal := big.NewInt(0)
	for index, shares := range positions.Liabilities {
		reserve, asset, ok := reserves.Get(index)
		if !ok {
			return HealthResult{}, ErrReserveNotFound
		}
		price, err := freshPrice(px, asset, maxAgeSeconds, now)
		if err != nil {
			return HealthResult{}, err
		}
		assetAmount := fixedpoint.ToAssetFromD(shares, reserve.DRate)
		effective := fixedpoint.EffectiveLiability(assetAmount, bpsToScalar7(reserve.Config.LFactorBps))
		contribution := new(big.Int).Mul(price.Value, effective)
		liabVal.Add(liabVal, contribution)
	}

	result := HealthResult{CollateralValue: collVal, LiabilityValue: liabVal}
	result.Solvent = collVal.Cmp(liabVal) >= 0

	buffered := new(big.Int).Set(liabVal)
	if borrowBufferBps > 0 {
		extra := fixedpoint.MulFloor(liabVal, new(big.Int).SetUint64(borrowBufferBps), fixedpoint.SCALAR7)
		buffered.Add(buffered, extra)
	}
	meetsMin := minCollateral == nil || minCollateral.Sign() == 0 || liabVal.Cmp(minCollateral) >= 0
	result.BorrowHealthy = collVal.Cmp(buffered) >= 0 && meetsMin

	return result, nil
}

func freshPrice(px oracle.Oracle, asset string, maxAgeSeconds, now uint64) (oracle.Price, error) {
	price, ok := px.LastPrice(asset)
	if !ok {
		return oracle.Price{}, ErrInvalidPrice
	}
	if maxAgeSeconds > 0 && now > price.Timestamp && now-price.Timestamp > maxAgeSeconds {
		return oracle.Price{}, ErrInvalidPrice
	}
	return price, nil
}
