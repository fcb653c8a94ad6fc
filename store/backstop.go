package store

import (
	"fmt"

	"blendpool/native/backstop"
	"blendpool/native/emission"
)

// BackstopStore adapts Store to backstop.EngineState.
type BackstopStore struct {
	s *Store
}

// NewBackstopStore wraps s for backstop-module persistence.
func NewBackstopStore(s *Store) *BackstopStore { return &BackstopStore{s: s} }

func poolDataKey(poolID string) string { return fmt.Sprintf("backstop:%s:pooldata", poolID) }

func (bs *BackstopStore) GetPoolData(poolID string) (*backstop.PoolBackstopData, bool, error) {
	var data backstop.PoolBackstopData
	ok, err := getJSON(bs.s.db, poolDataKey(poolID), &data)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &data, true, nil
}

func (bs *BackstopStore) PutPoolData(poolID string, data *backstop.PoolBackstopData) error {
	return putJSON(bs.s.db, poolDataKey(poolID), data)
}

func userBalanceKey(poolID, user string) string {
	return fmt.Sprintf("backstop:%s:balance:%s", poolID, user)
}

func (bs *BackstopStore) GetUserBalance(poolID, user string) (*backstop.UserBalance, error) {
	var balance backstop.UserBalance
	ok, err := getJSON(bs.s.db, userBalanceKey(poolID, user), &balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &balance, nil
}

func (bs *BackstopStore) PutUserBalance(poolID, user string, balance *backstop.UserBalance) error {
	return putJSON(bs.s.db, userBalanceKey(poolID, user), balance)
}

const rewardZoneKey = "backstop:rewardzone"

func (bs *BackstopStore) GetRewardZone() (*backstop.RewardZone, error) {
	var zone backstop.RewardZone
	ok, err := getJSON(bs.s.db, rewardZoneKey, &zone)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &zone, nil
}

func (bs *BackstopStore) PutRewardZone(zone *backstop.RewardZone) error {
	return putJSON(bs.s.db, rewardZoneKey, zone)
}

func emissionTrackerKey(poolID string) string {
	return fmt.Sprintf("backstop:%s:emission_tracker", poolID)
}

func (bs *BackstopStore) GetEmissionTracker(poolID string) (*emission.Tracker, error) {
	var tracker emission.Tracker
	ok, err := getJSON(bs.s.db, emissionTrackerKey(poolID), &tracker)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &tracker, nil
}

func (bs *BackstopStore) PutEmissionTracker(poolID string, tracker *emission.Tracker) error {
	return putJSON(bs.s.db, emissionTrackerKey(poolID), tracker)
}

func emissionConfigKey(poolID string) string {
	return fmt.Sprintf("backstop:%s:emission_config", poolID)
}

func (bs *BackstopStore) GetEmissionConfig(poolID string) (emission.Config, error) {
	var cfg emission.Config
	_, err := getJSON(bs.s.db, emissionConfigKey(poolID), &cfg)
	return cfg, err
}

func (bs *BackstopStore) PutEmissionConfig(poolID string, cfg emission.Config) error {
	return putJSON(bs.s.db, emissionConfigKey(poolID), cfg)
}

func userEmissionPosKey(poolID, user string) string {
	return fmt.Sprintf("backstop:%s:emission_pos:%s", poolID, user)
}

func (bs *BackstopStore) GetUserEmissionPosition(poolID, user string) (*emission.UserPosition, error) {
	var pos emission.UserPosition
	ok, err := getJSON(bs.s.db, userEmissionPosKey(poolID, user), &pos)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

func (bs *BackstopStore) PutUserEmissionPosition(poolID, user string, pos *emission.UserPosition) error {
	return putJSON(bs.s.db, userEmissionPosKey(poolID, user), pos)
}

func rzEmissionsKey(poolID string) string { return fmt.Sprintf("backstop:%s:rz_emissions", poolID) }

func (bs *BackstopStore) GetRzEmissions(poolID string) (*backstop.RzEmissions, error) {
	var rz backstop.RzEmissions
	ok, err := getJSON(bs.s.db, rzEmissionsKey(poolID), &rz)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &rz, nil
}

func (bs *BackstopStore) PutRzEmissions(poolID string, rz *backstop.RzEmissions) error {
	return putJSON(bs.s.db, rzEmissionsKey(poolID), rz)
}

const lastDistributionTimeKey = "backstop:last_distribution_time"

func (bs *BackstopStore) GetLastDistributionTime() (uint64, error) {
	var ts uint64
	_, err := getJSON(bs.s.db, lastDistributionTimeKey, &ts)
	return ts, err
}

func (bs *BackstopStore) PutLastDistributionTime(now uint64) error {
	return putJSON(bs.s.db, lastDistributionTimeKey, now)
}
