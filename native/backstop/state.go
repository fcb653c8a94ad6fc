package backstop

import "blendpool/native/emission"

// EngineState is the persistence port the backstop Engine reads and writes
// through, mirroring native/pool.EngineState's shape.
type EngineState interface {
	GetPoolData(poolID string) (*PoolBackstopData, bool, error)
	PutPoolData(poolID string, data *PoolBackstopData) error

	GetUserBalance(poolID, user string) (*UserBalance, error)
	PutUserBalance(poolID, user string, balance *UserBalance) error

	GetRewardZone() (*RewardZone, error)
	PutRewardZone(zone *RewardZone) error

	GetEmissionTracker(poolID string) (*emission.Tracker, error)
	PutEmissionTracker(poolID string, tracker *emission.Tracker) error
	GetEmissionConfig(poolID string) (emission.Config, error)
	PutEmissionConfig(poolID string, cfg emission.Config) error

	GetUserEmissionPosition(poolID, user string) (*emission.UserPosition, error)
	PutUserEmissionPosition(poolID, user string, pos *emission.UserPosition) error

	GetRzEmissions(poolID string) (*RzEmissions, error)
	PutRzEmissions(poolID string, rz *RzEmissions) error

	GetLastDistributionTime() (uint64, error)
	PutLastDistributionTime(now uint64) error
}
