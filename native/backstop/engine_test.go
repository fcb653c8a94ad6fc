package backstop

import (
	"math/big"
	"testing"

	"blendpool/fixedpoint"
	nativecommon "blendpool/native/common"
	"blendpool/native/emission"
)

type mockEngineState struct {
	pools      map[string]*PoolBackstopData
	balances   map[string]*UserBalance
	zone       *RewardZone
	trackers   map[string]*emission.Tracker
	emissCfg   map[string]emission.Config
	userPos    map[string]*emission.UserPosition
	rzEmis     map[string]*RzEmissions
	lastDistAt uint64
}

func newMockEngineState() *mockEngineState {
	return &mockEngineState{
		pools:    make(map[string]*PoolBackstopData),
		balances: make(map[string]*UserBalance),
		trackers: make(map[string]*emission.Tracker),
		emissCfg: make(map[string]emission.Config),
		userPos:  make(map[string]*emission.UserPosition),
		rzEmis:   make(map[string]*RzEmissions),
	}
}

func balanceKey(poolID, user string) string { return poolID + "\x00" + user }

func (s *mockEngineState) GetPoolData(poolID string) (*PoolBackstopData, bool, error) {
	data, ok := s.pools[poolID]
	return data, ok, nil
}

func (s *mockEngineState) PutPoolData(poolID string, data *PoolBackstopData) error {
	s.pools[poolID] = data
	return nil
}

func (s *mockEngineState) GetUserBalance(poolID, user string) (*UserBalance, error) {
	return s.balances[balanceKey(poolID, user)], nil
}

func (s *mockEngineState) PutUserBalance(poolID, user string, balance *UserBalance) error {
	s.balances[balanceKey(poolID, user)] = balance
	return nil
}

func (s *mockEngineState) GetRewardZone() (*RewardZone, error) {
	return s.zone, nil
}

func (s *mockEngineState) PutRewardZone(zone *RewardZone) error {
	s.zone = zone
	return nil
}

func (s *mockEngineState) GetEmissionTracker(poolID string) (*emission.Tracker, error) {
	return s.trackers[poolID], nil
}

func (s *mockEngineState) PutEmissionTracker(poolID string, tracker *emission.Tracker) error {
	s.trackers[poolID] = tracker
	return nil
}

func (s *mockEngineState) GetEmissionConfig(poolID string) (emission.Config, error) {
	return s.emissCfg[poolID], nil
}

func (s *mockEngineState) PutEmissionConfig(poolID string, cfg emission.Config) error {
	s.emissCfg[poolID] = cfg
	return nil
}

func (s *mockEngineState) GetUserEmissionPosition(poolID, user string) (*emission.UserPosition, error) {
	return s.userPos[balanceKey(poolID, user)], nil
}

func (s *mockEngineState) PutUserEmissionPosition(poolID, user string, pos *emission.UserPosition) error {
	s.userPos[balanceKey(poolID, user)] = pos
	return nil
}

func (s *mockEngineState) GetRzEmissions(poolID string) (*RzEmissions, error) {
	return s.rzEmis[poolID], nil
}

func (s *mockEngineState) PutRzEmissions(poolID string, rz *RzEmissions) error {
	s.rzEmis[poolID] = rz
	return nil
}

func (s *mockEngineState) GetLastDistributionTime() (uint64, error) {
	return s.lastDistAt, nil
}

func (s *mockEngineState) PutLastDistributionTime(now uint64) error {
	s.lastDistAt = now
	return nil
}

// mockToken is a bare-bones in-memory token.Token used only to exercise the
// backstop Engine's transfer call sites.
type mockToken struct {
	moduleBalance *big.Int
	holders       map[string]*big.Int
}

func newMockToken() *mockToken {
	return &mockToken{moduleBalance: big.NewInt(0), holders: make(map[string]*big.Int)}
}

func (t *mockToken) holderBalance(addr string) *big.Int {
	bal, ok := t.holders[addr]
	if !ok {
		bal = big.NewInt(0)
		t.holders[addr] = bal
	}
	return bal
}

func (t *mockToken) Transfer(to string, amount *big.Int) error {
	if t.moduleBalance.Cmp(amount) < 0 {
		return ErrInsufficientTokens
	}
	t.moduleBalance.Sub(t.moduleBalance, amount)
	bal := t.holderBalance(to)
	bal.Add(bal, amount)
	return nil
}

func (t *mockToken) TransferFrom(from string, amount *big.Int) error {
	bal := t.holderBalance(from)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientTokens
	}
	bal.Sub(bal, amount)
	t.moduleBalance.Add(t.moduleBalance, amount)
	return nil
}

func (t *mockToken) BalanceOf(holder string) (*big.Int, error) {
	return t.holderBalance(holder), nil
}

// mockLPPool is a 1:1 LPPool stand-in, same shape as PassthroughLPPool,
// kept separate so tests stay independent of the production collaborator.
type mockLPPool struct{}

func (mockLPPool) SingleSidedDeposit(amountIn, minLPOut *big.Int) (*big.Int, error) {
	lpOut := new(big.Int).Set(amountIn)
	if minLPOut != nil && minLPOut.Sign() > 0 && lpOut.Cmp(minLPOut) < 0 {
		return nil, ErrBelowThreshold
	}
	return lpOut, nil
}

func newTestEngine(state *mockEngineState, tok *mockToken) *Engine {
	return NewEngine(state, tok, mockLPPool{}, nil, DefaultConfig())
}

func TestEngineDepositPullsTokensAndMintsShares(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	tok.holderBalance("alice").Add(tok.holderBalance("alice"), big.NewInt(1_000))
	e := newTestEngine(state, tok)

	shares, err := e.Deposit("pool-1", "alice", big.NewInt(1_000))
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if shares.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("genesis deposit minted %s shares, want 1000", shares)
	}
	if tok.holderBalance("alice").Sign() != 0 {
		t.Fatalf("alice token balance = %s, want 0 after deposit", tok.holderBalance("alice"))
	}
	if tok.moduleBalance.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("module balance = %s, want 1000", tok.moduleBalance)
	}
}

func TestEngineDepositRejectsWhenModulePaused(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	registry := nativecommon.NewPauseRegistry()
	registry.SetPaused(moduleName, true)
	e.SetPauses(registry)

	if _, err := e.Deposit("pool-1", "alice", big.NewInt(100)); err == nil {
		t.Fatal("Deposit while paused = nil error, want pause error")
	}
}

func TestEngineQueueAndWithdrawRoundTrip(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	tok.holderBalance("alice").Add(tok.holderBalance("alice"), big.NewInt(1_000))
	e := newTestEngine(state, tok)

	if _, err := e.Deposit("pool-1", "alice", big.NewInt(1_000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if err := e.QueueWithdrawal("pool-1", "alice", big.NewInt(1_000), 0); err != nil {
		t.Fatalf("QueueWithdrawal: %v", err)
	}
	if _, err := e.Withdraw("pool-1", "alice", big.NewInt(1_000), Q4WLockSeconds-1); err != ErrQ4WNotMatured {
		t.Fatalf("early Withdraw = %v, want ErrQ4WNotMatured", err)
	}
	tokens, err := e.Withdraw("pool-1", "alice", big.NewInt(1_000), Q4WLockSeconds)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if tokens.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("Withdraw released %s tokens, want 1000", tokens)
	}
	if tok.holderBalance("alice").Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("alice token balance after withdraw = %s, want 1000", tok.holderBalance("alice"))
	}
}

func TestEngineDequeueWithdrawalRestoresAvailableShares(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	tok.holderBalance("alice").Add(tok.holderBalance("alice"), big.NewInt(500))
	e := newTestEngine(state, tok)

	if _, err := e.Deposit("pool-1", "alice", big.NewInt(500)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if err := e.QueueWithdrawal("pool-1", "alice", big.NewInt(500), 0); err != nil {
		t.Fatalf("QueueWithdrawal: %v", err)
	}
	if err := e.DequeueWithdrawal("pool-1", "alice", big.NewInt(500)); err != nil {
		t.Fatalf("DequeueWithdrawal: %v", err)
	}
	balance, err := state.GetUserBalance("pool-1", "alice")
	if err != nil {
		t.Fatalf("GetUserBalance: %v", err)
	}
	if len(balance.Q4W) != 0 {
		t.Fatalf("Q4W = %+v, want empty after full dequeue", balance.Q4W)
	}
	if err := e.QueueWithdrawal("pool-1", "alice", big.NewInt(500), 0); err != nil {
		t.Fatalf("re-QueueWithdrawal after dequeue: %v", err)
	}
}

func TestEngineDonateRaisesShareValueWithoutMinting(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	tok.holderBalance("alice").Add(tok.holderBalance("alice"), big.NewInt(1_000))
	tok.holderBalance("donor").Add(tok.holderBalance("donor"), big.NewInt(1_000))
	e := newTestEngine(state, tok)

	if _, err := e.Deposit("pool-1", "alice", big.NewInt(1_000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if err := e.Donate("pool-1", "donor", big.NewInt(1_000)); err != nil {
		t.Fatalf("Donate: %v", err)
	}
	data, ok, err := state.GetPoolData("pool-1")
	if err != nil || !ok {
		t.Fatalf("GetPoolData: %v, ok=%v", err, ok)
	}
	if data.TotalShares.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("Donate must not mint shares, TotalShares = %s", data.TotalShares)
	}
	if data.TotalTokens.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("TotalTokens = %s, want 2000 after donation", data.TotalTokens)
	}
}

func TestEngineDrawPaysRecipientAndRejectsOverBalance(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	tok.holderBalance("alice").Add(tok.holderBalance("alice"), big.NewInt(1_000))
	e := newTestEngine(state, tok)

	if _, err := e.Deposit("pool-1", "alice", big.NewInt(1_000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if err := e.Draw("pool-1", "auctioneer", big.NewInt(2_000)); err != ErrInsufficientTokens {
		t.Fatalf("over-Draw = %v, want ErrInsufficientTokens", err)
	}
	if err := e.Draw("pool-1", "auctioneer", big.NewInt(400)); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if tok.holderBalance("auctioneer").Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("auctioneer balance = %s, want 400", tok.holderBalance("auctioneer"))
	}
}

func TestEngineSettleBadDebtFillMovesSharesFromPoolHoldingsToFiller(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	state.balances[balanceKey("pool-1", poolHoldingsKey)] = &UserBalance{Shares: big.NewInt(1_000)}

	if err := e.SettleBadDebtFill("pool-1", "filler", big.NewInt(300)); err != nil {
		t.Fatalf("SettleBadDebtFill: %v", err)
	}
	poolBalance, _ := state.GetUserBalance("pool-1", poolHoldingsKey)
	fillerBalance, _ := state.GetUserBalance("pool-1", "filler")
	if poolBalance.Shares.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("pool holdings shares = %s, want 700", poolBalance.Shares)
	}
	if fillerBalance.Shares.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("filler shares = %s, want 300", fillerBalance.Shares)
	}
}

func TestEngineSettleBadDebtFillRejectsInsufficientPoolHoldings(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	state.balances[balanceKey("pool-1", poolHoldingsKey)] = &UserBalance{Shares: big.NewInt(100)}

	if err := e.SettleBadDebtFill("pool-1", "filler", big.NewInt(300)); err != ErrInsufficientShares {
		t.Fatalf("SettleBadDebtFill over-fill = %v, want ErrInsufficientShares", err)
	}
}

func TestEngineSettleInterestFillMovesSharesFromFillerToPoolHoldings(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	state.balances[balanceKey("pool-1", "filler")] = &UserBalance{Shares: big.NewInt(500)}

	if err := e.SettleInterestFill("pool-1", "filler", big.NewInt(200)); err != nil {
		t.Fatalf("SettleInterestFill: %v", err)
	}
	fillerBalance, _ := state.GetUserBalance("pool-1", "filler")
	poolBalance, _ := state.GetUserBalance("pool-1", poolHoldingsKey)
	if fillerBalance.Shares.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("filler shares = %s, want 300", fillerBalance.Shares)
	}
	if poolBalance.Shares.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("pool holdings shares = %s, want 200", poolBalance.Shares)
	}
}

func TestEngineAddRewardZoneFillsUpToCapacity(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	state.pools["pool-1"] = &PoolBackstopData{TotalShares: big.NewInt(0), TotalTokens: big.NewInt(1_000), TotalQ4W: big.NewInt(0)}

	if err := e.AddRewardZone("pool-1", ""); err != nil {
		t.Fatalf("AddRewardZone: %v", err)
	}
	zone, err := state.GetRewardZone()
	if err != nil {
		t.Fatalf("GetRewardZone: %v", err)
	}
	if !zone.Contains("pool-1") {
		t.Fatal("reward zone does not contain pool-1 after admission")
	}
}

func TestEngineRemoveRewardZoneEvictsMember(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	state.pools["pool-1"] = &PoolBackstopData{TotalShares: big.NewInt(0), TotalTokens: big.NewInt(1_000), TotalQ4W: big.NewInt(0)}
	if err := e.AddRewardZone("pool-1", ""); err != nil {
		t.Fatalf("AddRewardZone: %v", err)
	}
	if err := e.RemoveRewardZone("pool-1"); err != nil {
		t.Fatalf("RemoveRewardZone: %v", err)
	}
	zone, _ := state.GetRewardZone()
	if zone.Contains("pool-1") {
		t.Fatal("reward zone still contains pool-1 after removal")
	}
}

func TestEngineDistributeAllocatesAcrossRewardZoneProRataToTotalTokens(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	state.pools["pool-1"] = &PoolBackstopData{TotalShares: big.NewInt(1_000), TotalTokens: big.NewInt(3_000), TotalQ4W: big.NewInt(0)}
	state.pools["pool-2"] = &PoolBackstopData{TotalShares: big.NewInt(1_000), TotalTokens: big.NewInt(1_000), TotalQ4W: big.NewInt(0)}
	state.zone = &RewardZone{Pools: []string{"pool-1", "pool-2"}}

	total, err := e.Distribute(100)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	wantTotal := fixedpoint.MulFloor(e.cfg.EmitterRate, big.NewInt(100), fixedpoint.SCALAR7)
	if total.Cmp(wantTotal) != 0 {
		t.Fatalf("Distribute returned %s, want %s", total, wantTotal)
	}

	rz1, err := state.GetRzEmissions("pool-1")
	if err != nil || rz1 == nil {
		t.Fatalf("GetRzEmissions(pool-1): %v, %v", rz1, err)
	}
	rz2, err := state.GetRzEmissions("pool-2")
	if err != nil || rz2 == nil {
		t.Fatalf("GetRzEmissions(pool-2): %v, %v", rz2, err)
	}
	// pool-1 holds 3/4 of the zone's tokens, pool-2 holds 1/4.
	if rz1.Accrued.Cmp(rz2.Accrued) <= 0 {
		t.Fatalf("pool-1 accrued %s <= pool-2 accrued %s, want pool-1 > pool-2", rz1.Accrued, rz2.Accrued)
	}
	sum := new(big.Int).Add(rz1.Accrued, rz2.Accrued)
	if sum.Cmp(total) > 0 {
		t.Fatalf("sum of allocated backfill %s exceeds distributed total %s", sum, total)
	}

	// A second call at the same timestamp distributes nothing further.
	again, err := e.Distribute(100)
	if err != nil {
		t.Fatalf("second Distribute: %v", err)
	}
	if again.Sign() != 0 {
		t.Fatalf("Distribute at same timestamp = %s, want 0", again)
	}
}

func TestEngineGulpEmissionsSplitsSeventyThirty(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	state.pools["pool-1"] = &PoolBackstopData{TotalShares: big.NewInt(1_000), TotalTokens: big.NewInt(1_000), TotalQ4W: big.NewInt(0)}
	state.rzEmis["pool-1"] = &RzEmissions{Accrued: big.NewInt(1_000), LastTime: 0}

	backstopEmis, poolEmis, err := e.GulpEmissions("pool-1", 100)
	if err != nil {
		t.Fatalf("GulpEmissions: %v", err)
	}
	if backstopEmis.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("backstopEmis = %s, want 700", backstopEmis)
	}
	if poolEmis.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("poolEmis = %s, want 300", poolEmis)
	}
	rz, err := state.GetRzEmissions("pool-1")
	if err != nil {
		t.Fatalf("GetRzEmissions: %v", err)
	}
	if rz.Accrued.Sign() != 0 {
		t.Fatalf("RzEmissions.Accrued = %s after gulp, want drained to 0", rz.Accrued)
	}
	cfg, err := state.GetEmissionConfig("pool-1")
	if err != nil {
		t.Fatalf("GetEmissionConfig: %v", err)
	}
	if cfg.EPS == nil || cfg.EPS.Sign() <= 0 {
		t.Fatalf("new emission config EPS = %v, want > 0", cfg.EPS)
	}
	if cfg.ExpTime != 100+EmissionWindowSeconds {
		t.Fatalf("new emission config ExpTime = %d, want %d", cfg.ExpTime, 100+EmissionWindowSeconds)
	}

	// A second gulp with nothing accrued is a no-op.
	again1, again2, err := e.GulpEmissions("pool-1", 200)
	if err != nil {
		t.Fatalf("second GulpEmissions: %v", err)
	}
	if again1.Sign() != 0 || again2.Sign() != 0 {
		t.Fatalf("second GulpEmissions with empty backlog = (%s, %s), want (0, 0)", again1, again2)
	}
}

func TestEngineDropEvictsPoolAndZeroesBackfill(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)
	state.pools["pool-1"] = &PoolBackstopData{TotalShares: big.NewInt(0), TotalTokens: big.NewInt(1_000), TotalQ4W: big.NewInt(0)}
	if err := e.AddRewardZone("pool-1", ""); err != nil {
		t.Fatalf("AddRewardZone: %v", err)
	}
	state.rzEmis["pool-1"] = &RzEmissions{Accrued: big.NewInt(500), LastTime: 10}

	if err := e.Drop("pool-1"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	zone, err := state.GetRewardZone()
	if err != nil {
		t.Fatalf("GetRewardZone: %v", err)
	}
	if zone.Contains("pool-1") {
		t.Fatal("reward zone still contains pool-1 after Drop")
	}
	rz, err := state.GetRzEmissions("pool-1")
	if err != nil {
		t.Fatalf("GetRzEmissions: %v", err)
	}
	if rz.Accrued.Sign() != 0 {
		t.Fatalf("RzEmissions.Accrued = %s after Drop, want 0", rz.Accrued)
	}
}

func TestEngineClaimRejectsEmptyAndDuplicatePools(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)

	if _, err := e.Claim("alice", nil, nil, 100); err != ErrBadRequest {
		t.Fatalf("Claim with no pools = %v, want ErrBadRequest", err)
	}
	if _, err := e.Claim("alice", []string{"pool-1", "pool-1"}, nil, 100); err != ErrDuplicatePoolInClaim {
		t.Fatalf("Claim with duplicate pool = %v, want ErrDuplicatePoolInClaim", err)
	}
}

func TestEngineClaimReinvestsAcrossPoolsProRata(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := newTestEngine(state, tok)

	state.pools["pool-1"] = &PoolBackstopData{TotalShares: big.NewInt(1_000), TotalTokens: big.NewInt(1_000), TotalQ4W: big.NewInt(0)}
	state.pools["pool-2"] = &PoolBackstopData{TotalShares: big.NewInt(1_000), TotalTokens: big.NewInt(1_000), TotalQ4W: big.NewInt(0)}
	state.balances[balanceKey("pool-1", "alice")] = &UserBalance{Shares: big.NewInt(1_000)}
	state.balances[balanceKey("pool-2", "alice")] = &UserBalance{Shares: big.NewInt(1_000)}
	state.emissCfg["pool-1"] = emission.Config{EPS: big.NewInt(1_0000000), ExpTime: 0}
	state.trackers["pool-1"] = emission.NewTracker(0)
	state.emissCfg["pool-2"] = emission.Config{EPS: big.NewInt(3_0000000), ExpTime: 0}
	state.trackers["pool-2"] = emission.NewTracker(0)

	lpMinted, err := e.Claim("alice", []string{"pool-1", "pool-2"}, nil, 1_000)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if lpMinted.Sign() <= 0 {
		t.Fatalf("lpMinted = %s, want > 0", lpMinted)
	}

	bal1, err := state.GetUserBalance("pool-1", "alice")
	if err != nil {
		t.Fatalf("GetUserBalance(pool-1): %v", err)
	}
	bal2, err := state.GetUserBalance("pool-2", "alice")
	if err != nil {
		t.Fatalf("GetUserBalance(pool-2): %v", err)
	}
	if bal1.Shares.Cmp(big.NewInt(1_000)) <= 0 {
		t.Fatalf("pool-1 shares after claim = %s, want > 1000 (reinvested)", bal1.Shares)
	}
	if bal2.Shares.Cmp(big.NewInt(1_000)) <= 0 {
		t.Fatalf("pool-2 shares after claim = %s, want > 1000 (reinvested)", bal2.Shares)
	}
	// pool-2 ran 3x pool-1's eps, so it should have earned the larger
	// reinvestment.
	pool2Gain := new(big.Int).Sub(bal2.Shares, big.NewInt(1_000))
	pool1Gain := new(big.Int).Sub(bal1.Shares, big.NewInt(1_000))
	if pool2Gain.Cmp(pool1Gain) <= 0 {
		t.Fatalf("pool-2 gain %s <= pool-1 gain %s, want pool-2 (3x eps) larger", pool2Gain, pool1Gain)
	}

	// A second claim at the same timestamp has nothing new to reinvest.
	second, err := e.Claim("alice", []string{"pool-1", "pool-2"}, nil, 1_000)
	if err != nil {
		t.Fatalf("second Claim: %v", err)
	}
	if second.Sign() != 0 {
		t.Fatalf("immediate second Claim at same timestamp = %s, want 0", second)
	}
}

func TestEngineClaimWithoutLPPoolConfiguredErrors(t *testing.T) {
	state := newMockEngineState()
	tok := newMockToken()
	e := NewEngine(state, tok, nil, nil, DefaultConfig())
	state.pools["pool-1"] = &PoolBackstopData{TotalShares: big.NewInt(1_000), TotalTokens: big.NewInt(1_000), TotalQ4W: big.NewInt(0)}
	state.balances[balanceKey("pool-1", "alice")] = &UserBalance{Shares: big.NewInt(1_000)}
	state.emissCfg["pool-1"] = emission.Config{EPS: big.NewInt(1_0000000), ExpTime: 0}
	state.trackers["pool-1"] = emission.NewTracker(0)

	if _, err := e.Claim("alice", []string{"pool-1"}, nil, 1_000); err != ErrLPPoolNotConfigured {
		t.Fatalf("Claim with no lpPool = %v, want ErrLPPoolNotConfigured", err)
	}
}
