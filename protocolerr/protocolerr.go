// Package protocolerr maps the sentinel errors native/pool and
// native/backstop return onto the numeric wire codes described in spec.md
// §7, so RPC responses stay wire-compatible with the original contract
// error taxonomy while Go call sites keep using errors.Is/errors.As.
package protocolerr

import (
	"errors"

	"blendpool/native/backstop"
	"blendpool/native/pool"
)

// Code is a protocol-level numeric error code.
type Code uint32

const (
	CodeUnknown Code = 0

	CodeInternal                Code = 1
	CodeAlreadyInitialized      Code = 3
	CodeUnauthorized            Code = 4
	CodeNegativeAmount          Code = 8
	CodeBalanceError            Code = 10
	CodeOverflow                Code = 11
	CodeBadRequest              Code = 1200
	CodeInvalidPoolInitArgs     Code = 1201
	CodeInvalidReserveMetadata  Code = 1202
	CodeStaleAction             Code = 1203
	CodeInvalidHf               Code = 1204
	CodeInvalidPoolStatus       Code = 1205
	CodeInvalidUtilRate         Code = 1206
	CodeMaxPositions            Code = 1207
	CodeInternalReserveNotFound Code = 1208
	CodeReserveDisabled         Code = 1209
	CodeSupplyCapExceeded       Code = 1210
	CodeMinCollateralNotMet     Code = 1211
	CodeInvalidLiquidation      Code = 1212
	CodeInvalidLiqTooLarge      Code = 1213
	CodeInvalidLiqTooSmall      Code = 1214
	CodeInterestTooSmall        Code = 1215
	CodeInvalidBid              Code = 1216
	CodeInvalidLot              Code = 1217
	CodeInvalidBTokenMint       Code = 1218
	CodeInvalidBTokenBurn       Code = 1219
	CodeInvalidDTokenMint       Code = 1220
	CodeInvalidDTokenBurn       Code = 1221
	CodeAuctionInProgress       Code = 1222

	CodeInsufficientShares     Code = 1300
	CodeInsufficientTokens     Code = 1301
	CodeQ4WNotMatured          Code = 1302
	CodeQ4WQueueFull           Code = 1303
	CodeQ4WEmpty               Code = 1304
	CodeQ4WInsufficient        Code = 1305
	CodeNotInRewardZone        Code = 1306
	CodeRewardZoneFull         Code = 1307
	CodeBelowThreshold         Code = 1308
	CodeRewardZoneSwapTooSmall Code = 1309
)

var poolCodes = map[error]Code{
	pool.ErrBadRequest:              CodeBadRequest,
	pool.ErrInvalidPoolConfigArgs:   CodeInvalidPoolInitArgs,
	pool.ErrInvalidReserveMetadata:  CodeInvalidReserveMetadata,
	pool.ErrStatusNotAllowed:        CodeStaleAction,
	pool.ErrInvalidHealthFactor:     CodeInvalidHf,
	pool.ErrInvalidPoolStatus:       CodeInvalidPoolStatus,
	pool.ErrInvalidUtilizationRate:  CodeInvalidUtilRate,
	pool.ErrMaxPositionsExceeded:    CodeMaxPositions,
	pool.ErrReserveNotFound:         CodeInternalReserveNotFound,
	pool.ErrReserveDisabled:         CodeReserveDisabled,
	pool.ErrExceededSupplyCap:       CodeSupplyCapExceeded,
	pool.ErrMinCollateralNotMet:     CodeMinCollateralNotMet,
	pool.ErrInvalidLiquidation:      CodeInvalidLiquidation,
	pool.ErrInvalidLiquidationLarge: CodeInvalidLiqTooLarge,
	pool.ErrInvalidLiquidationSmall: CodeInvalidLiqTooSmall,
	pool.ErrInterestTooSmall:        CodeInterestTooSmall,
	pool.ErrInvalidBid:              CodeInvalidBid,
	pool.ErrInvalidLot:              CodeInvalidLot,
	pool.ErrInvalidBTokenMint:       CodeInvalidBTokenMint,
	pool.ErrInvalidBTokenBurn:       CodeInvalidBTokenBurn,
	pool.ErrInvalidDTokenMint:       CodeInvalidDTokenMint,
	pool.ErrInvalidDTokenBurn:       CodeInvalidDTokenBurn,
	pool.ErrAuctionInProgress:       CodeAuctionInProgress,
	pool.ErrInvalidAmount:           CodeNegativeAmount,
	pool.ErrInsufficientBalance:     CodeBalanceError,
	pool.ErrInsufficientLiquidity:   CodeBalanceError,
	pool.ErrUnauthorized:            CodeUnauthorized,
}

var backstopCodes = map[error]Code{
	backstop.ErrInvalidAmount:          CodeNegativeAmount,
	backstop.ErrInsufficientShares:     CodeInsufficientShares,
	backstop.ErrInsufficientTokens:     CodeInsufficientTokens,
	backstop.ErrQ4WNotMatured:          CodeQ4WNotMatured,
	backstop.ErrQ4WQueueFull:           CodeQ4WQueueFull,
	backstop.ErrQ4WEmpty:               CodeQ4WEmpty,
	backstop.ErrQ4WInsufficient:        CodeQ4WInsufficient,
	backstop.ErrPoolNotInRewardZone:    CodeNotInRewardZone,
	backstop.ErrRewardZoneFull:         CodeRewardZoneFull,
	backstop.ErrUnauthorized:           CodeUnauthorized,
	backstop.ErrBelowThreshold:         CodeBelowThreshold,
	backstop.ErrRewardZoneSwapTooSmall: CodeRewardZoneSwapTooSmall,
	backstop.ErrBadRequest:             CodeBadRequest,
	backstop.ErrDuplicatePoolInClaim:   CodeBadRequest,
}

// CodeOf resolves the wire code for an error returned by native/pool or
// native/backstop, falling back to CodeInternal for anything unrecognized
// (including wrapped errors not produced by either module).
func CodeOf(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	for sentinel, code := range poolCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	for sentinel, code := range backstopCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeInternal
}
