package pool

import (
	"math/big"

	"blendpool/fixedpoint"
	"blendpool/native/pool/auction"
	"blendpool/oracle"
)

// LiquidationTargetFactorBps is the "just over-collateralized" target the
// liquidation-factor formula solves for (spec.md §4.3: "1.1, configurable").
const LiquidationTargetFactorBps = 11_000

// NewUserLiquidationAuction implements spec.md §4.3 Type 0 creation: the bid
// is percent% of the user's liabilities in bidAssets (effective terms), and
// the lot is sized across lotAssets so a 50%-scaled fill at block 200 leaves
// the user just over-collateralized at LiquidationTargetFactorBps.
func NewUserLiquidationAuction(positions *Positions, reserves ReserveView, px oracle.Oracle, cfg PoolConfig, now uint64, bidAssets, lotAssets []uint32, percent uint64, currentBlock uint64) (*auction.Auction, error) {
	if percent == 0 {
		return nil, ErrInvalidLiquidationSmall
	}
	if percent > 100 {
		return nil, ErrInvalidLiquidationLarge
	}
	health, err := EvaluateHealth(positions, reserves, px, cfg.BorrowHealthBufferBps, cfg.MinCollateral, cfg.OracleMaxAgeSeconds, now)
	if err != nil {
		return nil, err
	}
	if health.Solvent {
		return nil, ErrInvalidLiquidation
	}

	bid := make(map[uint32]*big.Int)
	for _, index := range bidAssets {
		shares, ok := positions.Liabilities[index]
		if !ok {
			return nil, ErrInvalidBid
		}
		portion := fixedpoint.DivFloor(new(big.Int).Mul(shares, big.NewInt(int64(percent))), big.NewInt(1), big.NewInt(100))
		bid[index] = portion
	}
	for _, index := range lotAssets {
		if _, ok := positions.Collateral[index]; !ok {
			return nil, ErrInvalidLot
		}
	}

	// Effective liability value removed by the bid at 100% fill.
	effBidValue := big.NewInt(0)
	for index, shares := range bid {
		reserve, asset, ok := reserves.Get(index)
		if !ok {
			return nil, ErrReserveNotFound
		}
		price, perr := freshPrice(px, asset, cfg.OracleMaxAgeSeconds, now)
		if perr != nil {
			return nil, perr
		}
		assetAmount := fixedpoint.ToAssetFromD(shares, reserve.DRate)
		eff := fixedpoint.EffectiveLiability(assetAmount, bpsToScalar7(reserve.Config.LFactorBps))
		effBidValue.Add(effBidValue, new(big.Int).Mul(price.Value, eff))
	}

	// Target: effColl_after = factor * effLiab_after, solved for the
	// effective lot value to remove.
	target := new(big.Int).Sub(health.LiabilityValue, effBidValue)
	target = fixedpoint.MulFloor(target, big.NewInt(LiquidationTargetFactorBps), big.NewInt(10_000))
	effLotTarget := new(big.Int).Sub(health.CollateralValue, target)
	if effLotTarget.Sign() < 0 {
		effLotTarget = big.NewInt(0)
	}

	// Distribute the target lot value proportionally across lotAssets by
	// their share of the user's total effective collateral value.
	type lotAssetInfo struct {
		index     uint32
		effValue  *big.Int
		price     *big.Int
		reserve   *Reserve
		cFactor   *big.Int
	}
	infos := make([]lotAssetInfo, 0, len(lotAssets))
	totalEff := big.NewInt(0)
	for _, index := range lotAssets {
		reserve, asset, ok := reserves.Get(index)
		if !ok {
			return nil, ErrReserveNotFound
		}
		price, perr := freshPrice(px, asset, cfg.OracleMaxAgeSeconds, now)
		if perr != nil {
			return nil, perr
		}
		shares := positions.Collateral[index]
		assetAmount := fixedpoint.ToAssetFromB(shares, reserve.BRate)
		cFactor := bpsToScalar7(reserve.Config.CFactorBps)
		eff := fixedpoint.EffectiveCollateral(assetAmount, cFactor)
		effValue := new(big.Int).Mul(price.Value, eff)
		infos = append(infos, lotAssetInfo{index, effValue, price.Value, reserve, cFactor})
		totalEff.Add(totalEff, effValue)
	}

	lot := make(map[uint32]*big.Int)
	if totalEff.Sign() > 0 {
		for _, info := range infos {
			shareOfTarget := new(big.Int).Mul(effLotTarget, info.effValue)
			shareOfTarget.Quo(shareOfTarget, totalEff)
			if shareOfTarget.Cmp(info.effValue) > 0 {
				shareOfTarget = info.effValue
			}
			// Convert the effective asset value back to b-token shares:
			// value -> asset amount (undo c_factor, undo price) -> shares.
			assetAmount := fixedpoint.DivFloor(shareOfTarget, fixedpoint.SCALAR7, info.cFactor)
			if info.price.Sign() > 0 {
				assetAmount = new(big.Int).Quo(assetAmount, info.price)
			}
			shares := fixedpoint.ToBUp(assetAmount, info.reserve.BRate)
			if shares.Cmp(positions.Collateral[info.index]) > 0 {
				shares = new(big.Int).Set(positions.Collateral[info.index])
			}
			if shares.Sign() > 0 {
				lot[info.index] = shares
			}
		}
	}

	return auction.New(auction.KindUserLiquidation, "", bid, lot, currentBlock), nil
}

// NewBadDebtAuction implements spec.md §4.3 Type 1 creation: bid is the
// backstop's full liability positions in bidAssets (100% only); lot is a
// backstop-share-token amount worth 1.25x the bid's asset value.
func NewBadDebtAuction(backstopPositions *Positions, reserves ReserveView, px oracle.Oracle, cfg PoolConfig, now uint64, bidAssets []uint32, backstopSharePrice *big.Int, currentBlock uint64) (*auction.Auction, error) {
	bid := make(map[uint32]*big.Int)
	bidValue := big.NewInt(0)
	for _, index := range bidAssets {
		shares, ok := backstopPositions.Liabilities[index]
		if !ok {
			return nil, ErrInvalidBid
		}
		bid[index] = new(big.Int).Set(shares)
		reserve, asset, ok := reserves.Get(index)
		if !ok {
			return nil, ErrReserveNotFound
		}
		price, perr := freshPrice(px, asset, cfg.OracleMaxAgeSeconds, now)
		if perr != nil {
			return nil, perr
		}
		assetAmount := fixedpoint.ToAssetFromD(shares, reserve.DRate)
		bidValue.Add(bidValue, new(big.Int).Mul(price.Value, assetAmount))
	}
	lotValue := fixedpoint.MulFloor(bidValue, big.NewInt(125), big.NewInt(100))
	lotShares := big.NewInt(0)
	if backstopSharePrice != nil && backstopSharePrice.Sign() > 0 {
		lotShares = new(big.Int).Quo(lotValue, backstopSharePrice)
	}
	lot := map[uint32]*big.Int{0: lotShares}
	return auction.New(auction.KindBadDebt, "", bid, lot, currentBlock), nil
}

// NewInterestAuction implements spec.md §4.3 Type 2 creation: lot is the
// accrued backstop_credit across lotAssets; bid is a backstop-share-token
// amount worth 1.4x the lot's asset value.
func NewInterestAuction(reserves map[uint32]*Reserve, px oracle.Oracle, cfg PoolConfig, now uint64, lotAssets []uint32, assetSymbols map[uint32]string, backstopSharePrice *big.Int, currentBlock uint64) (*auction.Auction, error) {
	lot := make(map[uint32]*big.Int)
	lotValue := big.NewInt(0)
	for _, index := range lotAssets {
		reserve, ok := reserves[index]
		if !ok {
			return nil, ErrReserveNotFound
		}
		if reserve.BackstopCredit.Sign() <= 0 {
			continue
		}
		lot[index] = new(big.Int).Set(reserve.BackstopCredit)
		price, perr := freshPrice(px, assetSymbols[index], cfg.OracleMaxAgeSeconds, now)
		if perr != nil {
			return nil, perr
		}
		lotValue.Add(lotValue, new(big.Int).Mul(price.Value, reserve.BackstopCredit))
	}
	if lotValue.Sign() == 0 {
		return nil, ErrInterestTooSmall
	}
	bidValue := fixedpoint.MulFloor(lotValue, big.NewInt(140), big.NewInt(100))
	bidShares := big.NewInt(0)
	if backstopSharePrice != nil && backstopSharePrice.Sign() > 0 {
		bidShares = new(big.Int).Quo(bidValue, backstopSharePrice)
	}
	bid := map[uint32]*big.Int{0: bidShares}
	return auction.New(auction.KindInterest, "", bid, lot, currentBlock), nil
}
