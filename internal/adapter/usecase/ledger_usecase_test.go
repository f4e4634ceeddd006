package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"crowdfund/internal/adapter/memory"
	"crowdfund/internal/core/domain"
	"crowdfund/internal/core/port"

	"github.com/stretchr/testify/mock"
)

const admin = domain.Principal("treasury-admin")

// testClock is a manually driven time source; tests move it by assigning now.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type treasuryMock struct {
	mock.Mock
}

func (m *treasuryMock) Transfer(ctx context.Context, to domain.Principal, amount int64, reference string) error {
	args := m.Called(ctx, to, amount, reference)
	return args.Error(0)
}

func newTestLedger(t *testing.T, owner domain.Principal) (*Ledger, *memory.Store, *treasuryMock, *testClock) {
	t.Helper()

	repo := memory.NewStore()
	treasury := &treasuryMock{}
	treasury.Test(t)
	clk := &testClock{now: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}

	ledger := NewLedger(repo, treasury, owner)
	ledger.now = clk.Now
	return ledger, repo, treasury, clk
}

func createCampaign(t *testing.T, ledger *Ledger, goal int64, duration time.Duration) domain.Campaign {
	t.Helper()

	campaign, err := ledger.CreateCampaign(context.Background(), port.CreateCampaignInput{
		Title:       "clean water",
		Description: "wells for the valley",
		Beneficiary: "ben",
		Goal:        goal,
		Duration:    duration,
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	return campaign
}

func TestCreateCampaignAssignsSequentialIDs(t *testing.T) {
	ledger, _, _, clk := newTestLedger(t, admin)
	ctx := context.Background()

	for want := int64(0); want < 3; want++ {
		campaign := createCampaign(t, ledger, 100, time.Hour)
		if campaign.ID != want {
			t.Fatalf("campaign ID: got %d, want %d", campaign.ID, want)
		}
		if !campaign.Deadline.Equal(clk.now.Add(time.Hour)) {
			t.Fatalf("deadline: got %v, want %v", campaign.Deadline, clk.now.Add(time.Hour))
		}
		if campaign.AmountRaised != 0 || campaign.Ended {
			t.Fatalf("new campaign not pristine: %+v", campaign)
		}
	}

	count, err := ledger.CampaignCount(ctx)
	if err != nil {
		t.Fatalf("CampaignCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("campaign count: got %d, want 3", count)
	}
}

func TestCreateCampaignRejectsBadInput(t *testing.T) {
	ledger, _, _, _ := newTestLedger(t, admin)
	ctx := context.Background()

	cases := []struct {
		name string
		in   port.CreateCampaignInput
	}{
		{"zero goal", port.CreateCampaignInput{Title: "x", Beneficiary: "ben", Goal: 0, Duration: time.Hour}},
		{"negative goal", port.CreateCampaignInput{Title: "x", Beneficiary: "ben", Goal: -5, Duration: time.Hour}},
		{"zero duration", port.CreateCampaignInput{Title: "x", Beneficiary: "ben", Goal: 10, Duration: 0}},
		{"negative duration", port.CreateCampaignInput{Title: "x", Beneficiary: "ben", Goal: 10, Duration: -time.Minute}},
		{"blank beneficiary", port.CreateCampaignInput{Title: "x", Beneficiary: "  ", Goal: 10, Duration: time.Hour}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ledger.CreateCampaign(ctx, tc.in); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("got %v, want ErrInvalidArgument", err)
			}
		})
	}

	// Nothing was created by the failed attempts.
	count, err := ledger.CampaignCount(ctx)
	if err != nil {
		t.Fatalf("CampaignCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("campaign count after failures: got %d, want 0", count)
	}
}

func TestDonateAccumulatesPerCampaignAndContributor(t *testing.T) {
	ledger, _, _, _ := newTestLedger(t, admin)
	ctx := context.Background()

	campaign := createCampaign(t, ledger, 1000, time.Hour)

	donations := []struct {
		contributor domain.Principal
		amount      int64
	}{
		{"alice", 40}, {"bob", 30}, {"alice", 25}, {"carol", 5},
	}
	for _, d := range donations {
		if err := ledger.Donate(ctx, campaign.ID, d.contributor, d.amount); err != nil {
			t.Fatalf("Donate(%s, %d): %v", d.contributor, d.amount, err)
		}
	}

	got, err := ledger.Campaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Campaign: %v", err)
	}
	if got.AmountRaised != 100 {
		t.Fatalf("amount raised: got %d, want 100", got.AmountRaised)
	}

	for contributor, want := range map[domain.Principal]int64{"alice": 65, "bob": 30, "carol": 5, "mallory": 0} {
		total, err := ledger.Contribution(ctx, campaign.ID, contributor)
		if err != nil {
			t.Fatalf("Contribution(%s): %v", contributor, err)
		}
		if total != want {
			t.Fatalf("contribution of %s: got %d, want %d", contributor, total, want)
		}
	}
}

func TestDonateFailures(t *testing.T) {
	ledger, repo, _, clk := newTestLedger(t, admin)
	ctx := context.Background()

	campaign := createCampaign(t, ledger, 1000, time.Hour)

	if err := ledger.Donate(ctx, 42, "alice", 10); !errors.Is(err, domain.ErrCampaignNotFound) {
		t.Fatalf("unknown campaign: got %v, want ErrCampaignNotFound", err)
	}
	if err := ledger.Donate(ctx, campaign.ID, "alice", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("zero amount: got %v, want ErrInvalidArgument", err)
	}
	if err := ledger.Donate(ctx, campaign.ID, "alice", -7); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("negative amount: got %v, want ErrInvalidArgument", err)
	}
	if err := ledger.Donate(ctx, campaign.ID, "", 10); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("blank contributor: got %v, want ErrInvalidArgument", err)
	}

	// The ended flag closes donations on its own, even while the deadline
	// is still in the future.
	if err := repo.SetCampaignEnded(ctx, campaign.ID, true, clk.now); err != nil {
		t.Fatalf("SetCampaignEnded: %v", err)
	}
	if err := ledger.Donate(ctx, campaign.ID, "alice", 10); !errors.Is(err, domain.ErrCampaignClosed) {
		t.Fatalf("ended campaign: got %v, want ErrCampaignClosed", err)
	}
	if err := repo.SetCampaignEnded(ctx, campaign.ID, false, clk.now); err != nil {
		t.Fatalf("SetCampaignEnded: %v", err)
	}

	// Exactly at the deadline the campaign no longer accepts value.
	clk.now = campaign.Deadline
	if err := ledger.Donate(ctx, campaign.ID, "alice", 10); !errors.Is(err, domain.ErrCampaignClosed) {
		t.Fatalf("donate at deadline: got %v, want ErrCampaignClosed", err)
	}

	// Checks run in a fixed order: a closed campaign wins over a bad
	// amount, and a missing campaign wins over everything.
	if err := ledger.Donate(ctx, campaign.ID, "alice", -1); !errors.Is(err, domain.ErrCampaignClosed) {
		t.Fatalf("closed beats invalid amount: got %v, want ErrCampaignClosed", err)
	}
	if err := ledger.Donate(ctx, 42, "", -1); !errors.Is(err, domain.ErrCampaignNotFound) {
		t.Fatalf("missing beats invalid input: got %v, want ErrCampaignNotFound", err)
	}
}

func TestDonateRejectsOverflowingTotal(t *testing.T) {
	ledger, _, _, _ := newTestLedger(t, admin)
	ctx := context.Background()

	campaign := createCampaign(t, ledger, 1000, time.Hour)
	if err := ledger.Donate(ctx, campaign.ID, "whale", math.MaxInt64-5); err != nil {
		t.Fatalf("Donate near the maximum: %v", err)
	}

	// One more unit than the total can hold must fail, not wrap negative.
	if err := ledger.Donate(ctx, campaign.ID, "minnow", 6); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("overflowing donation: got %v, want ErrInvalidArgument", err)
	}

	got, err := ledger.Campaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Campaign: %v", err)
	}
	if got.AmountRaised != math.MaxInt64-5 {
		t.Fatalf("amount raised after rejection: got %d, want %d", got.AmountRaised, int64(math.MaxInt64-5))
	}

	// Filling the total to exactly the maximum is still a valid donation.
	if err := ledger.Donate(ctx, campaign.ID, "minnow", 5); err != nil {
		t.Fatalf("Donate to the exact maximum: %v", err)
	}
}

// TestLedgerLifecycle walks one campaign through its whole life: funded
// before the deadline, refused too-early finalization, paid out exactly once
// at the deadline, closed to everything afterwards.
func TestLedgerLifecycle(t *testing.T) {
	ledger, _, treasury, clk := newTestLedger(t, admin)
	ctx := context.Background()
	start := clk.now

	campaign := createCampaign(t, ledger, 100, time.Hour)

	clk.now = start.Add(10 * time.Second)
	if err := ledger.Donate(ctx, campaign.ID, "alice", 40); err != nil {
		t.Fatalf("donate 40: %v", err)
	}
	clk.now = start.Add(20 * time.Second)
	if err := ledger.Donate(ctx, campaign.ID, "bob", 30); err != nil {
		t.Fatalf("donate 30: %v", err)
	}

	clk.now = start.Add(3599 * time.Second)
	if _, err := ledger.Finalize(ctx, campaign.ID); !errors.Is(err, domain.ErrTooEarly) {
		t.Fatalf("finalize before deadline: got %v, want ErrTooEarly", err)
	}

	treasury.On("Transfer", mock.Anything, domain.Principal("ben"), int64(70), "campaign/0/payout").
		Return(nil).
		Once()

	clk.now = start.Add(3600 * time.Second)
	released, err := ledger.Finalize(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("finalize at deadline: %v", err)
	}
	if released != 70 {
		t.Fatalf("released: got %d, want 70", released)
	}

	got, err := ledger.Campaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Campaign: %v", err)
	}
	if !got.Ended {
		t.Fatalf("campaign not marked ended after finalize")
	}

	clk.now = start.Add(3601 * time.Second)
	if err := ledger.Donate(ctx, campaign.ID, "carol", 5); !errors.Is(err, domain.ErrCampaignClosed) {
		t.Fatalf("donate after end: got %v, want ErrCampaignClosed", err)
	}
	if _, err := ledger.Finalize(ctx, campaign.ID); !errors.Is(err, domain.ErrAlreadyFinalized) {
		t.Fatalf("second finalize: got %v, want ErrAlreadyFinalized", err)
	}

	treasury.AssertExpectations(t)
}

func TestFinalizeUnknownCampaign(t *testing.T) {
	ledger, _, _, _ := newTestLedger(t, admin)

	if _, err := ledger.Finalize(context.Background(), 9); !errors.Is(err, domain.ErrCampaignNotFound) {
		t.Fatalf("got %v, want ErrCampaignNotFound", err)
	}
}

func TestFinalizeZeroRaisedSkipsTransfer(t *testing.T) {
	ledger, _, treasury, clk := newTestLedger(t, admin)
	ctx := context.Background()

	campaign := createCampaign(t, ledger, 100, time.Hour)
	clk.now = campaign.Deadline

	released, err := ledger.Finalize(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if released != 0 {
		t.Fatalf("released: got %d, want 0", released)
	}

	got, err := ledger.Campaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Campaign: %v", err)
	}
	if !got.Ended {
		t.Fatalf("campaign not ended")
	}

	// No expectation was registered, so any Transfer call would have
	// failed the test already; this also verifies none slipped through.
	treasury.AssertExpectations(t)
}

func TestFinalizeRollsBackWhenTransferFails(t *testing.T) {
	ledger, _, treasury, clk := newTestLedger(t, admin)
	ctx := context.Background()

	campaign := createCampaign(t, ledger, 100, time.Hour)
	if err := ledger.Donate(ctx, campaign.ID, "alice", 70); err != nil {
		t.Fatalf("Donate: %v", err)
	}
	clk.now = campaign.Deadline

	treasury.On("Transfer", mock.Anything, domain.Principal("ben"), int64(70), "campaign/0/payout").
		Return(errors.New("settlement rejected")).
		Once()

	if _, err := ledger.Finalize(ctx, campaign.ID); !errors.Is(err, domain.ErrTransferFailed) {
		t.Fatalf("got %v, want ErrTransferFailed", err)
	}

	// The failed payout reopened the campaign, so a retry can succeed and
	// still pays out exactly the original total.
	got, err := ledger.Campaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Campaign: %v", err)
	}
	if got.Ended {
		t.Fatalf("campaign left ended after failed payout")
	}
	if got.AmountRaised != 70 {
		t.Fatalf("amount raised after rollback: got %d, want 70", got.AmountRaised)
	}

	treasury.On("Transfer", mock.Anything, domain.Principal("ben"), int64(70), "campaign/0/payout").
		Return(nil).
		Once()

	released, err := ledger.Finalize(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("retry Finalize: %v", err)
	}
	if released != 70 {
		t.Fatalf("released on retry: got %d, want 70", released)
	}

	treasury.AssertExpectations(t)
}

// TestConcurrentFinalize hammers Finalize from many goroutines and verifies
// the payout happens exactly once, with every other caller told the campaign
// is already finalized.
func TestConcurrentFinalize(t *testing.T) {
	ledger, _, treasury, clk := newTestLedger(t, admin)
	ctx := context.Background()

	campaign := createCampaign(t, ledger, 100, time.Hour)
	if err := ledger.Donate(ctx, campaign.ID, "alice", 70); err != nil {
		t.Fatalf("Donate: %v", err)
	}
	clk.now = campaign.Deadline

	treasury.On("Transfer", mock.Anything, domain.Principal("ben"), int64(70), "campaign/0/payout").
		Return(nil).
		Once()

	var (
		mu               sync.Mutex
		releasedTotal    int64
		successes        int
		alreadyFinalized int
	)

	wg := sync.WaitGroup{}
	count := 10
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer wg.Done()

			released, err := ledger.Finalize(ctx, campaign.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
				releasedTotal += released
			case errors.Is(err, domain.ErrAlreadyFinalized):
				alreadyFinalized++
			default:
				t.Errorf("unexpected finalize error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successful finalizations: got %d, want 1", successes)
	}
	if releasedTotal != 70 {
		t.Fatalf("released total: got %d, want 70", releasedTotal)
	}
	if alreadyFinalized != count-1 {
		t.Fatalf("already-finalized errors: got %d, want %d", alreadyFinalized, count-1)
	}

	treasury.AssertExpectations(t)
}

// TestFinalizeReentryPaysOnce drives a treasury whose Transfer calls straight
// back into the ledger before returning. The payout runs with the ledger
// unlocked and the ended flag already committed, so the callback must not
// deadlock and must find the campaign finalized: no second payout, no late
// donation.
func TestFinalizeReentryPaysOnce(t *testing.T) {
	ledger, _, treasury, clk := newTestLedger(t, admin)
	ctx := context.Background()

	campaign := createCampaign(t, ledger, 100, time.Hour)
	if err := ledger.Donate(ctx, campaign.ID, "alice", 70); err != nil {
		t.Fatalf("Donate: %v", err)
	}
	clk.now = campaign.Deadline

	var (
		innerReleased int64
		innerFinalize error
		innerDonate   error
	)
	treasury.On("Transfer", mock.Anything, domain.Principal("ben"), int64(70), "campaign/0/payout").
		Run(func(mock.Arguments) {
			innerReleased, innerFinalize = ledger.Finalize(ctx, campaign.ID)
			innerDonate = ledger.Donate(ctx, campaign.ID, "carol", 5)
		}).
		Return(nil).
		Once()

	released, err := ledger.Finalize(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if released != 70 {
		t.Fatalf("released: got %d, want 70", released)
	}

	if !errors.Is(innerFinalize, domain.ErrAlreadyFinalized) {
		t.Fatalf("finalize from inside the payout: got %v, want ErrAlreadyFinalized", innerFinalize)
	}
	if innerReleased != 0 {
		t.Fatalf("released from inside the payout: got %d, want 0", innerReleased)
	}
	if !errors.Is(innerDonate, domain.ErrCampaignClosed) {
		t.Fatalf("donate from inside the payout: got %v, want ErrCampaignClosed", innerDonate)
	}

	got, err := ledger.Campaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Campaign: %v", err)
	}
	if !got.Ended || got.AmountRaised != 70 {
		t.Fatalf("campaign after payout: %+v", got)
	}

	// Once() makes a second Transfer fail the test on the spot.
	treasury.AssertExpectations(t)
}

func TestSweepResidual(t *testing.T) {
	ledger, _, treasury, _ := newTestLedger(t, admin)
	ctx := context.Background()

	if _, err := ledger.SweepResidual(ctx, "mallory"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-admin sweep: got %v, want ErrUnauthorized", err)
	}
	if _, err := ledger.SweepResidual(ctx, admin); !errors.Is(err, domain.ErrNothingToSweep) {
		t.Fatalf("empty sweep: got %v, want ErrNothingToSweep", err)
	}

	if _, err := ledger.RecordResidual(ctx, admin, 55, "stray settlement"); err != nil {
		t.Fatalf("RecordResidual: %v", err)
	}

	treasury.On("Transfer", mock.Anything, admin, int64(55), "residual/sweep").
		Return(nil).
		Once()

	swept, err := ledger.SweepResidual(ctx, admin)
	if err != nil {
		t.Fatalf("SweepResidual: %v", err)
	}
	if swept != 55 {
		t.Fatalf("swept: got %d, want 55", swept)
	}

	balance, err := ledger.ResidualBalance(ctx, admin)
	if err != nil {
		t.Fatalf("ResidualBalance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("residual after sweep: got %d, want 0", balance)
	}

	if _, err := ledger.SweepResidual(ctx, admin); !errors.Is(err, domain.ErrNothingToSweep) {
		t.Fatalf("second sweep: got %v, want ErrNothingToSweep", err)
	}

	treasury.AssertExpectations(t)
}

func TestSweepResidualRestoresBalanceWhenTransferFails(t *testing.T) {
	ledger, _, treasury, _ := newTestLedger(t, admin)
	ctx := context.Background()

	if _, err := ledger.RecordResidual(ctx, admin, 80, "chargeback remainder"); err != nil {
		t.Fatalf("RecordResidual: %v", err)
	}

	treasury.On("Transfer", mock.Anything, admin, int64(80), "residual/sweep").
		Return(errors.New("settlement rejected")).
		Once()

	if _, err := ledger.SweepResidual(ctx, admin); !errors.Is(err, domain.ErrTransferFailed) {
		t.Fatalf("got %v, want ErrTransferFailed", err)
	}

	balance, err := ledger.ResidualBalance(ctx, admin)
	if err != nil {
		t.Fatalf("ResidualBalance: %v", err)
	}
	if balance != 80 {
		t.Fatalf("residual after failed sweep: got %d, want 80", balance)
	}

	treasury.On("Transfer", mock.Anything, admin, int64(80), "residual/sweep").
		Return(nil).
		Once()

	swept, err := ledger.SweepResidual(ctx, admin)
	if err != nil {
		t.Fatalf("retry SweepResidual: %v", err)
	}
	if swept != 80 {
		t.Fatalf("swept on retry: got %d, want 80", swept)
	}

	treasury.AssertExpectations(t)
}

// TestSweepResidualReentrySeesEmptyBalance is the sweep side of the reentry
// check: the balance is debited before the transfer leaves the ledger, so a
// callback arriving mid-transfer has nothing left to sweep.
func TestSweepResidualReentrySeesEmptyBalance(t *testing.T) {
	ledger, _, treasury, _ := newTestLedger(t, admin)
	ctx := context.Background()

	if _, err := ledger.RecordResidual(ctx, admin, 80, "stray settlement"); err != nil {
		t.Fatalf("RecordResidual: %v", err)
	}

	var innerSweep error
	treasury.On("Transfer", mock.Anything, admin, int64(80), "residual/sweep").
		Run(func(mock.Arguments) {
			_, innerSweep = ledger.SweepResidual(ctx, admin)
		}).
		Return(nil).
		Once()

	swept, err := ledger.SweepResidual(ctx, admin)
	if err != nil {
		t.Fatalf("SweepResidual: %v", err)
	}
	if swept != 80 {
		t.Fatalf("swept: got %d, want 80", swept)
	}
	if !errors.Is(innerSweep, domain.ErrNothingToSweep) {
		t.Fatalf("sweep from inside the transfer: got %v, want ErrNothingToSweep", innerSweep)
	}

	balance, err := ledger.ResidualBalance(ctx, admin)
	if err != nil {
		t.Fatalf("ResidualBalance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("residual after sweep: got %d, want 0", balance)
	}

	treasury.AssertExpectations(t)
}

func TestReceiveTransferAlwaysRejected(t *testing.T) {
	ledger, _, _, _ := newTestLedger(t, admin)
	ctx := context.Background()

	if err := ledger.ReceiveTransfer(ctx, "stranger", 500); !errors.Is(err, domain.ErrDirectTransfer) {
		t.Fatalf("got %v, want ErrDirectTransfer", err)
	}

	// Rejected value never lands anywhere, including the residual balance.
	balance, err := ledger.ResidualBalance(ctx, admin)
	if err != nil {
		t.Fatalf("ResidualBalance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("residual after rejected transfer: got %d, want 0", balance)
	}
}

func TestRecordResidual(t *testing.T) {
	ledger, _, _, _ := newTestLedger(t, admin)
	ctx := context.Background()

	if _, err := ledger.RecordResidual(ctx, "mallory", 10, "x"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-admin record: got %v, want ErrUnauthorized", err)
	}
	if _, err := ledger.RecordResidual(ctx, admin, 0, "x"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("zero amount: got %v, want ErrInvalidArgument", err)
	}
	if _, err := ledger.RecordResidual(ctx, admin, -3, "x"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("negative amount: got %v, want ErrInvalidArgument", err)
	}

	balance, err := ledger.RecordResidual(ctx, admin, 30, "stray settlement")
	if err != nil {
		t.Fatalf("RecordResidual: %v", err)
	}
	if balance != 30 {
		t.Fatalf("balance: got %d, want 30", balance)
	}
	balance, err = ledger.RecordResidual(ctx, admin, 12, "rounding remainder")
	if err != nil {
		t.Fatalf("RecordResidual: %v", err)
	}
	if balance != 42 {
		t.Fatalf("balance: got %d, want 42", balance)
	}

	if _, err := ledger.ResidualBalance(ctx, "mallory"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-admin balance read: got %v, want ErrUnauthorized", err)
	}
}

func TestCampaignEventsTellTheWholeStory(t *testing.T) {
	ledger, _, treasury, clk := newTestLedger(t, admin)
	ctx := context.Background()

	campaign := createCampaign(t, ledger, 100, time.Hour)
	if err := ledger.Donate(ctx, campaign.ID, "alice", 40); err != nil {
		t.Fatalf("Donate: %v", err)
	}
	if err := ledger.Donate(ctx, campaign.ID, "bob", 30); err != nil {
		t.Fatalf("Donate: %v", err)
	}

	treasury.On("Transfer", mock.Anything, domain.Principal("ben"), int64(70), "campaign/0/payout").
		Return(nil).
		Once()
	clk.now = campaign.Deadline
	if _, err := ledger.Finalize(ctx, campaign.ID); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	events, err := ledger.CampaignEvents(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("CampaignEvents: %v", err)
	}

	wantTypes := []domain.EventType{
		domain.EventCampaignCreated,
		domain.EventDonationReceived,
		domain.EventDonationReceived,
		domain.EventCampaignEnded,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("event count: got %d, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Fatalf("event %d: got %s, want %s", i, events[i].Type, want)
		}
	}

	var created domain.CampaignCreatedPayload
	if err := json.Unmarshal(events[0].Payload, &created); err != nil {
		t.Fatalf("unmarshal created payload: %v", err)
	}
	if created.Goal != 100 || created.Beneficiary != "ben" || !created.Deadline.Equal(campaign.Deadline) {
		t.Fatalf("created payload: %+v", created)
	}

	var ended domain.CampaignEndedPayload
	if err := json.Unmarshal(events[3].Payload, &ended); err != nil {
		t.Fatalf("unmarshal ended payload: %v", err)
	}
	if ended.AmountReleased != 70 || ended.Beneficiary != "ben" {
		t.Fatalf("ended payload: %+v", ended)
	}

	if _, err := ledger.CampaignEvents(ctx, 42); !errors.Is(err, domain.ErrCampaignNotFound) {
		t.Fatalf("events of unknown campaign: got %v, want ErrCampaignNotFound", err)
	}

	treasury.AssertExpectations(t)
}

func TestOverview(t *testing.T) {
	ledger, _, treasury, clk := newTestLedger(t, admin)
	ctx := context.Background()

	first := createCampaign(t, ledger, 100, time.Hour)
	second := createCampaign(t, ledger, 500, 2*time.Hour)

	if err := ledger.Donate(ctx, first.ID, "alice", 70); err != nil {
		t.Fatalf("Donate: %v", err)
	}
	if err := ledger.Donate(ctx, second.ID, "bob", 200); err != nil {
		t.Fatalf("Donate: %v", err)
	}
	if _, err := ledger.RecordResidual(ctx, admin, 9, "stray"); err != nil {
		t.Fatalf("RecordResidual: %v", err)
	}

	treasury.On("Transfer", mock.Anything, domain.Principal("ben"), int64(70), "campaign/0/payout").
		Return(nil).
		Once()
	clk.now = first.Deadline
	if _, err := ledger.Finalize(ctx, first.ID); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	stats, err := ledger.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	want := port.LedgerStats{
		Campaigns:          2,
		OpenCampaigns:      1,
		FinalizedCampaigns: 1,
		TotalRaised:        270,
		TotalReleased:      70,
		ResidualBalance:    9,
	}
	if *stats != want {
		t.Fatalf("overview: got %+v, want %+v", *stats, want)
	}

	treasury.AssertExpectations(t)
}
