package pool

import (
	"fmt"
	"math/big"

	"github.com/BurntSushi/toml"
)

// genesisReserveConfig mirrors ReserveConfig but with the *big.Int fields
// toml cannot decode replaced by their decimal string form, the way the
// teacher keeps its own genesis loaders string-typed for large numbers.
type genesisReserveConfig struct {
	Asset      string `toml:"Asset"`
	Index      uint32 `toml:"Index"`
	Decimals   uint8  `toml:"Decimals"`
	CFactorBps uint64 `toml:"CFactorBps"`
	LFactorBps uint64 `toml:"LFactorBps"`

	UtilTargetBps uint64 `toml:"UtilTargetBps"`
	MaxUtilBps    uint64 `toml:"MaxUtilBps"`

	RBaseBps  uint64 `toml:"RBaseBps"`
	ROneBps   uint64 `toml:"ROneBps"`
	RTwoBps   uint64 `toml:"RTwoBps"`
	RThreeBps uint64 `toml:"RThreeBps"`

	ReactivityBps uint64 `toml:"ReactivityBps"`

	SupplyCap string `toml:"SupplyCap"`
	Enabled   bool   `toml:"Enabled"`

	ConfigTimelockSeconds uint64 `toml:"ConfigTimelockSeconds"`
}

type genesisPoolConfig struct {
	BstopRateBps          uint64 `toml:"BstopRateBps"`
	MaxPositions          uint32 `toml:"MaxPositions"`
	MinCollateral         string `toml:"MinCollateral"`
	FlashLoanFeeBps       uint64 `toml:"FlashLoanFeeBps"`
	BorrowHealthBufferBps uint64 `toml:"BorrowHealthBufferBps"`
	OracleMaxAgeSeconds   uint64 `toml:"OracleMaxAgeSeconds"`
}

type genesisFile struct {
	Pool     genesisPoolConfig     `toml:"Pool"`
	Reserves []genesisReserveConfig `toml:"Reserves"`
}

// ReserveSeed pairs a reserve's asset symbol with its parsed static config,
// ready for PutReserve/PutPoolConfig at bootstrap.
type ReserveSeed struct {
	Asset  string
	Config ReserveConfig
}

// LoadGenesis reads a pool's static configuration (pool-wide knobs plus the
// reserve list) from a TOML file, the format the teacher's own node config
// uses via BurntSushi/toml.
func LoadGenesis(path string) (PoolConfig, []ReserveSeed, error) {
	var file genesisFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return PoolConfig{}, nil, fmt.Errorf("pool: decode genesis %s: %w", path, err)
	}

	minCollateral, err := parseDecimal(file.Pool.MinCollateral, "Pool.MinCollateral")
	if err != nil {
		return PoolConfig{}, nil, err
	}
	cfg := PoolConfig{
		BstopRateBps:          file.Pool.BstopRateBps,
		MaxPositions:          file.Pool.MaxPositions,
		MinCollateral:         minCollateral,
		FlashLoanFeeBps:       file.Pool.FlashLoanFeeBps,
		BorrowHealthBufferBps: file.Pool.BorrowHealthBufferBps,
		OracleMaxAgeSeconds:   file.Pool.OracleMaxAgeSeconds,
	}

	seeds := make([]ReserveSeed, 0, len(file.Reserves))
	for _, r := range file.Reserves {
		supplyCap, err := parseDecimal(r.SupplyCap, fmt.Sprintf("Reserves[%d].SupplyCap", r.Index))
		if err != nil {
			return PoolConfig{}, nil, err
		}
		seeds = append(seeds, ReserveSeed{
			Asset: r.Asset,
			Config: ReserveConfig{
				Index:                 r.Index,
				Decimals:              r.Decimals,
				CFactorBps:            r.CFactorBps,
				LFactorBps:            r.LFactorBps,
				UtilTargetBps:         r.UtilTargetBps,
				MaxUtilBps:            r.MaxUtilBps,
				RBaseBps:              r.RBaseBps,
				ROneBps:               r.ROneBps,
				RTwoBps:               r.RTwoBps,
				RThreeBps:             r.RThreeBps,
				ReactivityBps:         r.ReactivityBps,
				SupplyCap:             supplyCap,
				Enabled:               r.Enabled,
				ConfigTimelockSeconds: r.ConfigTimelockSeconds,
			},
		})
	}
	return cfg, seeds, nil
}

func parseDecimal(raw, field string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("pool: invalid decimal for %s: %q", field, raw)
	}
	return value, nil
}
